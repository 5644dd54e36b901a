package transport

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/textproto"
	"sort"
	"strconv"
	"strings"

	"github.com/frankli0324/go-ajax/internal/http"
	"github.com/frankli0324/go-ajax/internal/transport/chunked"
)

var ErrMalformedResponse = errors.New("malformed HTTP response")

type bodyCloser struct {
	io.Reader
	close func() error
}

func (b bodyCloser) Close() error { return b.close() }

type HTTP1 struct{}

func (t HTTP1) Write(ctx context.Context, w io.Writer, r *http.PreparedRequest) error {
	body, err := r.GetBody() // can write body
	if err != nil {
		return err
	}
	hasBody := body != nil && body != http.NoBody
	if body != nil {
		defer body.Close() // request body is ALWAYS closed
	}
	chunk := hasBody && r.ContentLength == -1

	bw := bufio.NewWriter(w) // default bufsize is 4096
	if err := t.writeHeader(bw, r, chunk); err != nil {
		return err
	}
	if hasBody {
		if chunk {
			cw := chunked.NewChunkedWriter(bw)
			if _, err := io.Copy(cw, body); err != nil {
				return err
			}
			if err := cw.CloseWithTrailer(nil); err != nil {
				return err
			}
		} else if n, err := io.Copy(bw, body); err != nil {
			return err
		} else if n != r.ContentLength {
			return fmt.Errorf("http: request body length %d does not match content-length %d", n, r.ContentLength)
		}
	}
	return bw.Flush()
}

// writeHeader writes the request line and header part of an http 1.1 request
// e.g.:
//
//	GET / HTTP/1.1\r\n
//	Host: www.google.com\r\n
//	X-Xx-Yy: cccccc\r\n
//	\r\n
func (t HTTP1) writeHeader(w *bufio.Writer, r *http.PreparedRequest, chunk bool) error {
	w.WriteString(r.Method)
	w.WriteByte(' ')
	w.WriteString(requestTarget(r))
	w.WriteString(" HTTP/1.1\r\n")

	w.WriteString("Host: ")
	w.WriteString(r.HeaderHost)
	w.WriteString("\r\n")
	if chunk {
		w.WriteString("Transfer-Encoding: chunked\r\n")
	} else if r.ContentLength != -1 {
		w.WriteString("Content-Length: ")
		w.WriteString(strconv.FormatInt(r.ContentLength, 10))
		w.WriteString("\r\n")
	}

	keys := make([]string, 0, len(r.Header))
	for k := range r.Header {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		for _, v := range r.Header[k] {
			w.WriteString(k)
			w.WriteString(": ")
			w.WriteString(v)
			w.WriteString("\r\n")
		}
	}
	_, err := w.WriteString("\r\n")
	return err
}

func requestTarget(r *http.PreparedRequest) string {
	if r.Method == "CONNECT" {
		return r.U.Host
	}
	return r.U.RequestURI()
}

func (t HTTP1) Read(ctx context.Context, r io.Reader, req *http.PreparedRequest, resp *http.Response) (err error) {
	closer := io.NopCloser
	if cr, ok := r.(io.Closer); ok {
		closer = func(r io.Reader) io.ReadCloser { return bodyCloser{r, cr.Close} }
	}
	tp := textproto.NewReader(bufio.NewReader(r))

	for {
		if err := t.readHead(tp, resp); err != nil {
			return err
		}
		// interim responses are skipped, except for protocol switches
		if resp.StatusCode < 100 || resp.StatusCode >= 200 || resp.StatusCode == 101 {
			break
		}
	}
	return t.readTransfer(tp.R, req, resp, closer)
}

func (t HTTP1) readHead(tp *textproto.Reader, resp *http.Response) error {
	line, err := tp.ReadLine()
	if err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return err
	}
	proto, status, ok := strings.Cut(line, " ")
	if !ok || !strings.HasPrefix(proto, "HTTP/") {
		return ErrMalformedResponse
	}
	resp.Proto = proto
	resp.Status = strings.TrimLeft(status, " ")

	statusCode, _, _ := strings.Cut(resp.Status, " ")
	if len(statusCode) != 3 {
		return errors.New("malformed HTTP status code " + statusCode)
	}
	resp.StatusCode, err = strconv.Atoi(statusCode)
	if err != nil || resp.StatusCode < 0 {
		return errors.New("malformed HTTP status code")
	}

	// Parse the response headers.
	mimeHeader, err := tp.ReadMIMEHeader()
	if err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return err
	}
	if hp, ok := mimeHeader["Pragma"]; ok && len(hp) > 0 && hp[0] == "no-cache" {
		if _, presentcc := mimeHeader["Cache-Control"]; !presentcc {
			mimeHeader["Cache-Control"] = []string{"no-cache"}
		}
	}
	resp.Header = http.Header(mimeHeader)
	return nil
}

func (t HTTP1) readTransfer(r *bufio.Reader, req *http.PreparedRequest, resp *http.Response, closer func(io.Reader) io.ReadCloser) error {
	contentLens := resp.Header["Content-Length"]

	// Hardening against HTTP request smuggling, taken from standard library
	if len(contentLens) > 1 {
		// Per RFC 7230 Section 3.3.2
		first := textproto.TrimString(contentLens[0])
		for _, ct := range contentLens[1:] {
			if first != textproto.TrimString(ct) {
				return fmt.Errorf("http: message cannot contain multiple Content-Length headers; got %q", contentLens)
			}
		}

		// deduplicate Content-Length
		resp.Header.Del("Content-Length")
		resp.Header.Add("Content-Length", first)

		contentLens = resp.Header["Content-Length"]
	}

	cl := int64(-1)
	if len(contentLens) > 0 {
		n, err := strconv.ParseUint(textproto.TrimString(contentLens[0]), 10, 63)
		if err != nil {
			return fmt.Errorf("http: bad Content-Length %q", contentLens[0])
		}
		cl = int64(n)
	}

	if !bodyAllowed(req, resp.StatusCode) {
		resp.ContentLength = 0
		resp.Body = closer(http.NoBody)
		return nil
	}

	if isChunked(resp.Header) {
		resp.Header.Del("Content-Length")
		resp.ContentLength = -1
		resp.Body = closer(chunked.NewChunkedReader(r))
		return nil
	}

	resp.ContentLength = cl
	switch {
	case cl > 0:
		resp.Body = closer(&fixedReader{r, cl})
	case cl == 0:
		resp.Body = closer(http.NoBody)
	default: // read until the server closes the connection
		resp.Body = closer(r)
	}
	return nil
}

// bodyAllowed reports whether a response to req with the given status
// carries a message body, per RFC9112 section 6.3
func bodyAllowed(req *http.PreparedRequest, status int) bool {
	if req != nil && req.Method == "HEAD" {
		return false
	}
	if req != nil && req.Method == "CONNECT" && status/100 == 2 {
		return false
	}
	return !(status/100 == 1 || status == 204 || status == 304)
}

func isChunked(h http.Header) bool {
	te := h.Values("Transfer-Encoding")
	if len(te) == 0 {
		return false
	}
	last := te[len(te)-1]
	if i := strings.LastIndexByte(last, ','); i >= 0 {
		last = last[i+1:]
	}
	return strings.EqualFold(textproto.TrimString(last), "chunked")
}

// fixedReader reads exactly n bytes, reporting a short body as
// [io.ErrUnexpectedEOF] instead of a clean [io.EOF]
type fixedReader struct {
	r io.Reader
	n int64
}

func (f *fixedReader) Read(p []byte) (int, error) {
	if f.n <= 0 {
		return 0, io.EOF
	}
	if int64(len(p)) > f.n {
		p = p[:f.n]
	}
	n, err := f.r.Read(p)
	f.n -= int64(n)
	if err == io.EOF && f.n > 0 {
		err = io.ErrUnexpectedEOF
	} else if err == nil && f.n == 0 {
		err = io.EOF
	}
	return n, err
}
