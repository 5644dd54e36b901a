package transport_test

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frankli0324/go-ajax/internal/http"
	"github.com/frankli0324/go-ajax/internal/transport"
)

type trackingCloser struct {
	io.Reader
	closed bool
}

func (c *trackingCloser) Close() error {
	c.closed = true
	return nil
}

func prepare(t *testing.T, req *http.Request) *http.PreparedRequest {
	t.Helper()
	pr, err := req.Prepare()
	require.NoError(t, err)
	return pr
}

func TestHTTP1Write(t *testing.T) {
	for name, tc := range map[string]struct {
		req  *http.Request
		wire string
	}{
		"NoBody": {
			&http.Request{Method: "DELETE", URL: "http://example.com/posts/1"},
			"DELETE /posts/1 HTTP/1.1\r\nHost: example.com\r\n\r\n",
		},
		"JSONBody": {
			&http.Request{
				Method: "POST", URL: "http://example.com/posts/",
				Header: http.Header{"Content-Type": {"application/json; charset=utf-8"}},
				Body:   []byte(`{"a":1}`),
			},
			"POST /posts/ HTTP/1.1\r\nHost: example.com\r\nContent-Length: 7\r\n" +
				"Content-Type: application/json; charset=utf-8\r\n\r\n{\"a\":1}",
		},
		"SortedHeaders": {
			&http.Request{
				Method: "GET", URL: "http://example.com:8080/",
				Header: http.Header{"X-B": {"2"}, "X-A": {"1", "3"}},
			},
			"GET / HTTP/1.1\r\nHost: example.com:8080\r\nX-A: 1\r\nX-A: 3\r\nX-B: 2\r\n\r\n",
		},
		"ChunkedUnknownLength": {
			&http.Request{Method: "PUT", URL: "http://example.com/", Body: io.MultiReader(strings.NewReader("abc"))},
			"PUT / HTTP/1.1\r\nHost: example.com\r\nTransfer-Encoding: chunked\r\n\r\n3\r\nabc\r\n0\r\n\r\n",
		},
	} {
		tc := tc
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, transport.HTTP1{}.Write(context.Background(), &buf, prepare(t, tc.req)))
			assert.Equal(t, tc.wire, buf.String())
		})
	}
}

func TestHTTP1WriteConnect(t *testing.T) {
	pr := prepare(t, &http.Request{Method: "CONNECT", URL: "http://example.com:443"})
	var buf bytes.Buffer
	require.NoError(t, transport.HTTP1{}.Write(context.Background(), &buf, pr))
	assert.Equal(t, "CONNECT example.com:443 HTTP/1.1\r\nHost: example.com:443\r\n\r\n", buf.String())
}

func TestHTTP1Read(t *testing.T) {
	for name, tc := range map[string]struct {
		method     string
		wire       string
		status     string
		code       int
		body       string
		contentLen int64
	}{
		"ContentLength": {"GET", "HTTP/1.1 200 OK\r\nContent-Length: 22\r\n\r\n{\"id\":1,\"text\":\"Blah\"}", "200 OK", 200, `{"id":1,"text":"Blah"}`, 22},
		"NotFound":      {"DELETE", "HTTP/1.1 404 Not Found\r\nContent-Length: 2\r\n\r\n{}", "404 Not Found", 404, "{}", 2},
		"Chunked":       {"GET", "HTTP/1.1 200 OK\r\nTransfer-Encoding: chunked\r\n\r\n2\r\n[]\r\n0\r\n\r\n", "200 OK", 200, "[]", -1},
		"UntilClose":    {"GET", "HTTP/1.0 200 OK\r\n\r\nrest of stream", "200 OK", 200, "rest of stream", -1},
		"NoContent":     {"DELETE", "HTTP/1.1 204 No Content\r\n\r\n", "204 No Content", 204, "", 0},
		"Head":          {"HEAD", "HTTP/1.1 200 OK\r\nContent-Length: 10\r\n\r\n", "200 OK", 200, "", 0},
		"SkipContinue":  {"POST", "HTTP/1.1 100 Continue\r\n\r\nHTTP/1.1 201 Created\r\nContent-Length: 1\r\n\r\n1", "201 Created", 201, "1", 1},
		"DupLength":     {"GET", "HTTP/1.1 200 OK\r\nContent-Length: 1\r\nContent-Length: 1\r\n\r\nx", "200 OK", 200, "x", 1},
	} {
		tc := tc
		t.Run(name, func(t *testing.T) {
			conn := &trackingCloser{Reader: strings.NewReader(tc.wire)}
			req := prepare(t, &http.Request{Method: tc.method, URL: "http://example.com/"})
			resp := &http.Response{}
			require.NoError(t, transport.HTTP1{}.Read(context.Background(), conn, req, resp))
			assert.Equal(t, tc.status, resp.Status)
			assert.Equal(t, tc.code, resp.StatusCode)
			assert.Equal(t, tc.contentLen, resp.ContentLength)

			b, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			assert.Equal(t, tc.body, string(b))
			require.NoError(t, resp.Body.Close())
			assert.True(t, conn.closed, "closing the body should close the stream")
		})
	}
}

func TestHTTP1ReadErrors(t *testing.T) {
	for name, wire := range map[string]string{
		"Empty":          "",
		"NotHTTP":        "SSH-2.0-OpenSSH\r\n\r\n",
		"ShortCode":      "HTTP/1.1 20 OK\r\n\r\n",
		"NonNumericCode": "HTTP/1.1 2xx OK\r\n\r\n",
		"TruncatedHead":  "HTTP/1.1 200 OK\r\nContent-Length: 1\r\n",
		"ConflictingLen": "HTTP/1.1 200 OK\r\nContent-Length: 1\r\nContent-Length: 2\r\n\r\nx",
		"BadLen":         "HTTP/1.1 200 OK\r\nContent-Length: -1\r\n\r\n",
	} {
		wire := wire
		t.Run(name, func(t *testing.T) {
			req := prepare(t, &http.Request{URL: "http://example.com/"})
			err := transport.HTTP1{}.Read(context.Background(), strings.NewReader(wire), req, &http.Response{})
			assert.Error(t, err)
		})
	}
}

func TestHTTP1ShortBody(t *testing.T) {
	req := prepare(t, &http.Request{URL: "http://example.com/"})
	resp := &http.Response{}
	wire := "HTTP/1.1 200 OK\r\nContent-Length: 10\r\n\r\nabc"
	require.NoError(t, transport.HTTP1{}.Read(context.Background(), strings.NewReader(wire), req, resp))
	b, err := io.ReadAll(resp.Body)
	assert.Equal(t, "abc", string(b))
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

type pipeConn struct {
	io.Reader
	io.Writer
	closed bool
}

func (p *pipeConn) Close() error {
	p.closed = true
	return nil
}

func TestRoundTrip(t *testing.T) {
	var sent bytes.Buffer
	conn := &pipeConn{
		Reader: strings.NewReader("HTTP/1.1 201 Created\r\nContent-Length: 2\r\n\r\n{}"),
		Writer: &sent,
	}
	req := prepare(t, &http.Request{Method: "POST", URL: "http://example.com/posts/", Body: "{}"})
	resp := &http.Response{}
	require.NoError(t, transport.RoundTrip(context.Background(), transport.HTTP1{}, conn, req, resp))
	assert.Equal(t, "POST /posts/ HTTP/1.1\r\nHost: example.com\r\nContent-Length: 2\r\n\r\n{}", sent.String())
	assert.Equal(t, 201, resp.StatusCode)
	assert.Equal(t, "Created", resp.Reason())
	resp.Body.Close()
	assert.True(t, conn.closed)
}
