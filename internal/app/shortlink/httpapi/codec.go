package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"base62num.local/base62"
	"base62num.local/gee"
	"base62num.local/internal/app/shortlink"
	"base62num.local/internal/platform/metrics"
)

type EncodeResponse struct {
	Number uint64 `json:"number"`
	Code   string `json:"code"`
}

type DecodeResponse struct {
	Code   string `json:"code"`
	Number uint64 `json:"number"`
}

// DecodeError 解码失败时的响应体，reason 是 invalid_character / overflow / empty。
type DecodeError struct {
	gee.ErrorResponse
	Reason   string `json:"reason"`
	Position int    `json:"position"`
}

func NewEncodeHandler() gee.HandlerFunc {
	return func(ctx *gee.Context) {
		raw := ctx.Param("n")
		n, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			ctx.AbortWithError(http.StatusBadRequest, "n must be an unsigned 64-bit integer")
			return
		}
		ctx.JSON(http.StatusOK, EncodeResponse{Number: n, Code: base62.Encode(n)})
	}
}

// NewDecodeHandler 解码任意 uint64 范围的 Base62，不要求是合法的 link id。
func NewDecodeHandler() gee.HandlerFunc {
	return func(ctx *gee.Context) {
		code := ctx.Param("code")
		n, err := base62.Parse(code)
		if err != nil {
			reason := shortlink.Reason(err)
			metrics.CodecDecodeFailures.WithLabelValues(reason).Inc()
			body := DecodeError{
				ErrorResponse: gee.NewErrorResponse(ctx, http.StatusBadRequest, err.Error()),
				Reason:        reason,
			}
			var numErr *base62.NumError
			if errors.As(err, &numErr) {
				body.Position = numErr.Pos
			}
			ctx.AbortWithStatusJSON(http.StatusBadRequest, body)
			return
		}
		ctx.JSON(http.StatusOK, DecodeResponse{Code: code, Number: n})
	}
}
