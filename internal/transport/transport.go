package transport

import (
	"context"
	"io"

	"github.com/frankli0324/go-ajax/internal/http"
)

type Transport interface {
	Write(ctx context.Context, w io.Writer, req *http.PreparedRequest) error
	Read(ctx context.Context, r io.Reader, req *http.PreparedRequest, resp *http.Response) error
}

// RoundTrip writes req to rw and reads the response head from it. The
// response body keeps reading from rw, closing it closes rw.
func RoundTrip(ctx context.Context, t Transport, rw io.ReadWriteCloser, req *http.PreparedRequest, resp *http.Response) error {
	stop := watchContext(ctx, rw)
	defer stop()
	if err := t.Write(ctx, rw, req); err != nil {
		return err
	}
	return t.Read(ctx, rw, req, resp)
}

// watchContext closes rw when ctx is done before stop is called, which
// unblocks pending reads and writes on it.
func watchContext(ctx context.Context, rw io.Closer) (stop func()) {
	if ctx.Done() == nil {
		return func() {}
	}
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			rw.Close()
		case <-done:
		}
	}()
	return func() { close(done) }
}
