package gee

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

const maxBodyBytes = 1 << 20

var ErrEmptyBody = errors.New("empty body")

// ShouldBindJSON 只解析单个 JSON 值，拒绝未知字段，不写响应。
func (c *Context) ShouldBindJSON(dst any) error {
	body := http.MaxBytesReader(c.Writer, c.Req.Body, maxBodyBytes)
	decoder := json.NewDecoder(body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return ErrEmptyBody
		}
		return err
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return errors.New("body must contain only one JSON value")
	}
	return nil
}

// BindJSON 解析失败时直接写 400 并中断。
func (c *Context) BindJSON(dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.AbortWithError(http.StatusBadRequest, "invalid json")
		return err
	}
	return nil
}
