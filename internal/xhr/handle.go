package xhr

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/http/httpguts"

	"github.com/frankli0324/go-ajax/internal/http"
)

// Doer performs one exchange, the response body is left for the caller
// to read and close.
type Doer interface {
	CtxDo(ctx context.Context, req *http.Request) (*http.Response, error)
}

type handle struct {
	doer Doer
	log  logrus.FieldLogger

	mu          sync.Mutex
	state       ReadyState
	sent        bool
	async       bool
	method, url string
	header      http.Header
	onChange    func()

	status       int
	statusText   string
	responseText string
}

// New returns an unsent handle performing its exchange through d.
func New(d Doer, log logrus.FieldLogger) Handle {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &handle{doer: d, log: log}
}

func (h *handle) Open(method, url string, async bool) error {
	if !httpguts.ValidHeaderFieldName(method) {
		return fmt.Errorf("xhr: invalid method %q", method)
	}
	h.mu.Lock()
	if h.state != Unsent {
		h.mu.Unlock()
		return ErrInvalidState
	}
	h.method, h.url, h.async = method, url, async
	h.header = http.Header{}
	h.mu.Unlock()

	h.setState(Opened)
	return nil
}

func (h *handle) SetRequestHeader(name, value string) error {
	if !httpguts.ValidHeaderFieldName(name) || !httpguts.ValidHeaderFieldValue(value) {
		return fmt.Errorf("xhr: invalid header %q", name)
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.state != Opened || h.sent {
		return ErrInvalidState
	}
	h.header.Add(name, value)
	return nil
}

func (h *handle) OnReadyStateChange(fn func()) {
	h.mu.Lock()
	h.onChange = fn
	h.mu.Unlock()
}

func (h *handle) Send(body []byte) error {
	h.mu.Lock()
	if h.state != Opened || h.sent {
		h.mu.Unlock()
		return ErrInvalidState
	}
	h.sent = true
	req := &http.Request{Method: h.method, URL: h.url, Header: h.header.Clone()}
	async := h.async
	h.mu.Unlock()

	if body != nil {
		req.Body = body
	}
	if async {
		go h.exchange(req)
		return nil
	}
	return h.exchange(req)
}

// exchange runs the request to completion. failures before the full
// response arrived leave the handle short of Done.
func (h *handle) exchange(req *http.Request) error {
	entry := h.log.WithFields(logrus.Fields{"method": req.Method, "url": req.URL})
	resp, err := h.doer.CtxDo(context.Background(), req)
	if err != nil {
		entry.WithError(err).Warn("request failed before a response arrived")
		return err
	}
	defer resp.Body.Close()

	h.mu.Lock()
	h.status, h.statusText = resp.StatusCode, resp.Reason()
	h.mu.Unlock()
	h.setState(HeadersReceived)
	h.setState(Loading)

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		entry.WithError(err).WithField("status", resp.StatusCode).Warn("response body interrupted")
		return err
	}
	h.mu.Lock()
	h.responseText = string(b)
	h.mu.Unlock()
	h.setState(Done)
	return nil
}

func (h *handle) setState(s ReadyState) {
	h.mu.Lock()
	h.state = s
	fn := h.onChange
	h.mu.Unlock()
	if fn != nil {
		fn()
	}
}

func (h *handle) Status() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.status
}

func (h *handle) StatusText() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.statusText
}

func (h *handle) ResponseText() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.responseText
}

func (h *handle) ReadyState() ReadyState {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}
