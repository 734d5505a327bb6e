package gee

import "net/http"

// ResponseWriter 记录状态码与写出字节数，供访问日志和指标使用。
type ResponseWriter struct {
	http.ResponseWriter
	statusCode  int
	size        int
	wroteHeader bool
}

func NewResponseWriter(w http.ResponseWriter) *ResponseWriter {
	return &ResponseWriter{
		ResponseWriter: w,
		statusCode:     http.StatusOK,
	}
}

// WriteHeader 只生效一次，重复调用被忽略。
func (rw *ResponseWriter) WriteHeader(code int) {
	if rw.wroteHeader {
		return
	}
	rw.statusCode = code
	rw.wroteHeader = true
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *ResponseWriter) Write(b []byte) (int, error) {
	if !rw.wroteHeader {
		rw.WriteHeader(http.StatusOK)
	}
	n, err := rw.ResponseWriter.Write(b)
	rw.size += n
	return n, err
}

func (rw *ResponseWriter) SetHeader(key string, value string) {
	rw.ResponseWriter.Header().Set(key, value)
}

func (rw *ResponseWriter) Status() int { return rw.statusCode }

func (rw *ResponseWriter) Size() int { return rw.size }

func (rw *ResponseWriter) Written() bool { return rw.wroteHeader }

// Unwrap 让 http.ResponseController 能拿到底层 writer。
func (rw *ResponseWriter) Unwrap() http.ResponseWriter { return rw.ResponseWriter }
