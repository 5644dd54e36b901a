// Package xhr models one HTTP exchange as a handle that is opened, sent
// and then reports its progress through ready state notifications, the
// way browser request objects do.
package xhr

import "errors"

// ReadyState is the progress of a [Handle].
type ReadyState int

const (
	Unsent ReadyState = iota
	Opened
	HeadersReceived
	Loading
	Done // terminal, the full response has been received
)

func (s ReadyState) String() string {
	switch s {
	case Unsent:
		return "UNSENT"
	case Opened:
		return "OPENED"
	case HeadersReceived:
		return "HEADERS_RECEIVED"
	case Loading:
		return "LOADING"
	case Done:
		return "DONE"
	}
	return "UNKNOWN"
}

var (
	// ErrInvalidState is returned when a handle method is called out of
	// order, e.g. Send before Open or Open twice.
	ErrInvalidState = errors.New("xhr: invalid state")
	// ErrTransportUnavailable is returned by a [Factory] that cannot
	// produce handles.
	ErrTransportUnavailable = errors.New("xhr: request transport unavailable")
)

// Handle is one request/response exchange.
type Handle interface {
	// Open sets method and url. With async false, Send blocks until the
	// exchange reaches Done or fails.
	Open(method, url string, async bool) error
	SetRequestHeader(name, value string) error
	// Send starts the exchange. A nil body sends no body at all.
	Send(body []byte) error

	Status() int
	StatusText() string
	ResponseText() string
	ReadyState() ReadyState

	// OnReadyStateChange registers fn, called after every state change.
	// Must be called before Open to observe Opened.
	OnReadyStateChange(fn func())
}

// Factory produces request handles.
type Factory interface {
	NewHandle() (Handle, error)
}

// FactoryFunc adapts a function to [Factory].
type FactoryFunc func() (Handle, error)

func (f FactoryFunc) NewHandle() (Handle, error) {
	if f == nil {
		return nil, ErrTransportUnavailable
	}
	return f()
}
