package gee

// ErrorResponse 是所有失败响应的统一 JSON 结构。
type ErrorResponse struct {
	Code      int    `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

func NewErrorResponse(c *Context, code int, message string) ErrorResponse {
	return ErrorResponse{
		Code:      code,
		Message:   message,
		RequestID: c.Req.Header.Get("X-Request-ID"),
	}
}
