package middleware

import (
	"crypto/rand"
	"encoding/hex"
	"strconv"
	"time"

	"base62num.local/gee"
)

const RequestIDHeader = "X-Request-ID"

// ReqID 透传或生成请求 ID，同时写回请求头（供日志/错误响应读取）和响应头。
func ReqID() gee.HandlerFunc {
	return func(ctx *gee.Context) {
		id := ctx.Req.Header.Get(RequestIDHeader)
		if id == "" || len(id) > 128 {
			id = GenerateReqID()
			ctx.Req.Header.Set(RequestIDHeader, id)
		}
		ctx.SetHeader(RequestIDHeader, id)
		ctx.Next()
	}
}

// GenerateReqID 返回 32 个十六进制字符；随机源失败时退化为纳秒时间戳。
func GenerateReqID() string {
	src := make([]byte, 16)
	if _, err := rand.Read(src); err != nil {
		return strconv.FormatInt(time.Now().UnixNano(), 10)
	}
	return hex.EncodeToString(src)
}
