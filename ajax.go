// Package ajax sends HTTP requests whose JSON outcome is delivered to
// one of two callbacks. Statuses 200 through 206 count as success and
// get the decoded body, every other status gets an [ErrorResult]
// carrying the raw body.
//
//	err := ajax.Get("http://localhost/posts/1", func(v any) {
//		fmt.Println(v)
//	}, func(e *ajax.ErrorResult) {
//		fmt.Println(e.Status, e.StatusText)
//	})
//
// Callbacks run on the goroutine performing the exchange. Exchanges
// that fail on the network call neither of them.
package ajax

import (
	"sync/atomic"

	"github.com/frankli0324/go-ajax/internal/dispatch"
	"github.com/frankli0324/go-ajax/internal/xhr"
)

type (
	SuccessFunc        = dispatch.SuccessFunc
	ErrorFunc          = dispatch.ErrorFunc
	ErrorResult        = dispatch.ErrorResult
	MalformedBodyError = dispatch.MalformedBodyError
	Dispatcher         = dispatch.Dispatcher
	Option             = dispatch.Option
	StatusSet          = dispatch.StatusSet
)

type (
	Handle      = xhr.Handle
	Factory     = xhr.Factory
	FactoryFunc = xhr.FactoryFunc
	ReadyState  = xhr.ReadyState
)

const (
	Unsent          = xhr.Unsent
	Opened          = xhr.Opened
	HeadersReceived = xhr.HeadersReceived
	Loading         = xhr.Loading
	Done            = xhr.Done
)

var (
	ErrTransportUnavailable = dispatch.ErrTransportUnavailable
	ErrInvalidState         = xhr.ErrInvalidState
)

var (
	NewStatusSet         = dispatch.NewStatusSet
	DefaultSuccessStatus = dispatch.DefaultSuccessStatus

	WithSuccessStatus = dispatch.WithSuccessStatus
	WithLogger        = dispatch.WithLogger
	WithFaultHandler  = dispatch.WithFaultHandler
)

// New returns a dispatcher obtaining handles from factory. A nil factory
// is accepted, every request then fails with ErrTransportUnavailable.
func New(factory Factory, opts ...Option) *Dispatcher {
	return dispatch.New(factory, opts...)
}

var std atomic.Pointer[Dispatcher]

func init() {
	std.Store(New(&Client{}))
}

// Default returns the dispatcher used by the package level verbs.
func Default() *Dispatcher { return std.Load() }

// SetDefault replaces the dispatcher used by the package level verbs.
// nil is ignored.
func SetDefault(d *Dispatcher) {
	if d != nil {
		std.Store(d)
	}
}

// Dispatch sends method to url through [Default], see [Dispatcher.Dispatch].
func Dispatch(method, url string, onSuccess SuccessFunc, onError ErrorFunc, payload any) error {
	return Default().Dispatch(method, url, onSuccess, onError, payload)
}

func Get(url string, onSuccess SuccessFunc, onError ErrorFunc) error {
	return Default().Get(url, onSuccess, onError)
}

func Post(url string, onSuccess SuccessFunc, onError ErrorFunc, data any) error {
	return Default().Post(url, onSuccess, onError, data)
}

func Put(url string, onSuccess SuccessFunc, onError ErrorFunc, data any) error {
	return Default().Put(url, onSuccess, onError, data)
}

func Patch(url string, onSuccess SuccessFunc, onError ErrorFunc, data any) error {
	return Default().Patch(url, onSuccess, onError, data)
}

// Del sends a DELETE request without a body.
func Del(url string, onSuccess SuccessFunc, onError ErrorFunc) error {
	return Default().Del(url, onSuccess, onError)
}
