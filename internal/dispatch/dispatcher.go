// Package dispatch turns one method/url/payload triple into a single
// asynchronous exchange and reports its outcome to exactly one of two
// callbacks.
package dispatch

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/frankli0324/go-ajax/internal/xhr"
)

var ErrTransportUnavailable = xhr.ErrTransportUnavailable

// SuccessFunc receives the decoded response body, nil when it was empty.
type SuccessFunc func(result any)

// ErrorFunc receives the outcome of an exchange whose status is not in
// the success set.
type ErrorFunc func(err *ErrorResult)

// ErrorResult describes a response classified as an error. ErrorDetail
// is the raw response body, it is never decoded.
type ErrorResult struct {
	Status      int    `json:"status"`
	StatusText  string `json:"statusText"`
	ErrorDetail string `json:"error_detail"`
}

func (e *ErrorResult) Error() string {
	return fmt.Sprintf("http status %d %s: %s", e.Status, e.StatusText, e.ErrorDetail)
}

// MalformedBodyError is raised when a response with a success status
// carries a body that is not valid JSON. It is not reported through
// ErrorFunc.
type MalformedBodyError struct {
	Status int
	Body   string
	Err    error
}

func (e *MalformedBodyError) Error() string {
	return fmt.Sprintf("malformed JSON body on status %d: %v", e.Status, e.Err)
}

func (e *MalformedBodyError) Unwrap() error { return e.Err }

type Dispatcher struct {
	factory xhr.Factory
	success StatusSet
	log     logrus.FieldLogger
	onFault func(error)
}

type Option func(*Dispatcher)

// WithSuccessStatus replaces the success allow-list.
func WithSuccessStatus(s StatusSet) Option {
	return func(d *Dispatcher) {
		d.success = NewStatusSet(s.Codes()...)
	}
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(d *Dispatcher) {
		d.log = log
	}
}

// WithFaultHandler sets the function receiving faults that have no
// callback of their own, i.e. *MalformedBodyError. Without one they panic.
func WithFaultHandler(fn func(error)) Option {
	return func(d *Dispatcher) {
		d.onFault = fn
	}
}

// New returns a dispatcher obtaining its request handles from factory.
func New(factory xhr.Factory, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		factory: factory,
		success: DefaultSuccessStatus(),
		log:     logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch sends one request and returns without waiting for it. Once
// the response is complete, onSuccess or onError is called on the
// goroutine performing the exchange; a nil callback drops the outcome.
//
// The returned error is non-nil only when no request could be started:
// no transport (ErrTransportUnavailable), an unencodable payload or a
// rejected method. Exchanges failing on the network report nothing.
func (d *Dispatcher) Dispatch(method, url string, onSuccess SuccessFunc, onError ErrorFunc, payload any) error {
	h, err := d.newHandle()
	if err != nil {
		return err
	}
	body, err := encodePayload(payload)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}

	var once sync.Once
	h.OnReadyStateChange(func() {
		if h.ReadyState() != xhr.Done {
			return
		}
		once.Do(func() { d.complete(h, method, url, onSuccess, onError) })
	})

	if err := h.Open(method, url, true); err != nil {
		return err
	}
	if truthy(payload) {
		if err := h.SetRequestHeader("Content-Type", contentTypeJSON); err != nil {
			return err
		}
	}
	return h.Send(body)
}

func (d *Dispatcher) newHandle() (xhr.Handle, error) {
	if d == nil || d.factory == nil {
		return nil, ErrTransportUnavailable
	}
	h, err := d.factory.NewHandle()
	switch {
	case errors.Is(err, ErrTransportUnavailable):
		return nil, err
	case err != nil:
		return nil, fmt.Errorf("%w: %w", ErrTransportUnavailable, err)
	case h == nil:
		return nil, ErrTransportUnavailable
	}
	return h, nil
}

func (d *Dispatcher) complete(h xhr.Handle, method, url string, onSuccess SuccessFunc, onError ErrorFunc) {
	status := h.Status()
	entry := d.log.WithFields(logrus.Fields{"method": method, "url": url, "status": status})

	if !d.success.Contains(status) {
		e := &ErrorResult{
			Status:      status,
			StatusText:  h.StatusText(),
			ErrorDetail: h.ResponseText(),
		}
		entry.Debug("request completed with error status")
		if onError != nil {
			onError(e)
		}
		return
	}

	var result any
	if text := h.ResponseText(); len(text) > 0 {
		if err := json.Unmarshal([]byte(text), &result); err != nil {
			d.fault(&MalformedBodyError{Status: status, Body: text, Err: err})
			return
		}
	}
	entry.WithField("result", result).Debug("request succeeded")
	if onSuccess != nil {
		onSuccess(result)
	}
}

func (d *Dispatcher) fault(err error) {
	if d.onFault == nil {
		panic(err)
	}
	d.onFault(err)
}
