package http

import (
	"io"
	"net/http"
	"strings"
)

// Request describes one outgoing exchange. Body may be nil, a string,
// a []byte, a *bytes.Buffer, a *bytes.Reader, a *strings.Reader or any
// io.Reader.
type Request struct {
	Method string
	URL    string
	Body   interface{}
	Header http.Header
}

type Response struct {
	Proto      string
	Status     string // e.g. "404 Not Found"
	StatusCode int
	Header     http.Header

	ContentLength int64
	Body          io.ReadCloser
}

// Reason returns the reason phrase of the status line, "Not Found" for
// a "404 Not Found" status.
func (r *Response) Reason() string {
	if r == nil {
		return ""
	}
	_, reason, ok := strings.Cut(r.Status, " ")
	if !ok {
		return ""
	}
	return reason
}
