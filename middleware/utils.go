package middleware

import (
	"fmt"
	"net"
	"net/http"
	"strings"
)

// clientIPHeaders are consulted in order before falling back to RemoteAddr.
// A comma-separated value contributes only its first entry.
var clientIPHeaders = []string{ //nolint:gochecknoglobals // read-only lookup table
	"X-Real-IP",
	"X-Forwarded-For",
	"Cf-Connecting-Ip",
	"True-Client-Ip",
}

// ClientIP extracts the originating client IP from proxy headers or the
// connection's remote address.
func ClientIP(req *http.Request) string {
	for _, header := range clientIPHeaders {
		value := req.Header.Get(header)
		if value == "" {
			continue
		}

		// Proxy chains list the original client first
		if first, _, found := strings.Cut(value, ","); found {
			value = first
		}

		if value = strings.TrimSpace(value); value != "" {
			return value
		}
	}

	host, _, err := net.SplitHostPort(req.RemoteAddr)
	if err != nil {
		return req.RemoteAddr
	}

	return host
}

// ResponseWriter wraps http.ResponseWriter to capture the status code and
// the number of body bytes written.
type ResponseWriter struct {
	http.ResponseWriter

	statusCode   int
	bytesWritten int64
}

// NewResponseWriter wraps w. The status defaults to 200 until WriteHeader is called.
func NewResponseWriter(w http.ResponseWriter) *ResponseWriter {
	if rw, ok := w.(*ResponseWriter); ok {
		return rw
	}

	return &ResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

// WriteHeader records the status code before delegating.
func (rw *ResponseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *ResponseWriter) Write(data []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(data)
	rw.bytesWritten += int64(n)

	if err != nil {
		return n, fmt.Errorf("failed to write response data: %w", err)
	}

	return n, nil
}

// StatusCode returns the status code sent to the client.
func (rw *ResponseWriter) StatusCode() int {
	return rw.statusCode
}

// BytesWritten returns the number of body bytes sent to the client.
func (rw *ResponseWriter) BytesWritten() int64 {
	return rw.bytesWritten
}

// Unwrap exposes the underlying writer to http.ResponseController.
func (rw *ResponseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}
