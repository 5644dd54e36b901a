package internal

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/frankli0324/go-ajax/internal/dialer"
	"github.com/frankli0324/go-ajax/internal/http"
	"github.com/frankli0324/go-ajax/internal/transport"
	"github.com/frankli0324/go-ajax/internal/xhr"
)

type Handler = func(ctx context.Context, req *http.PreparedRequest) (*http.Response, error)
type Middleware func(next Handler) Handler

// Client sends each request over a connection of its own, the
// connection is closed together with the response body.
//
// the zero value is ready to use.
type Client struct {
	middlewares []Middleware
	dialer      dialer.Dialer

	Logger logrus.FieldLogger
}

// Use appends mw to the end of the chain. The first "Use"d mw executes first
func (c *Client) Use(mws ...Middleware) {
	c.middlewares = append(c.middlewares, mws...)
}

// UseDialer replaces the dialer with the one returned by f, which
// receives the current one.
func (c *Client) UseDialer(f func(dialer.Dialer) dialer.Dialer) {
	c.dialer = f(c.getDialer())
}

// UseCoreDialer lets f adjust a copy of the innermost *dialer.CoreDialer.
// the dialer f returns replaces the current one when no wrapping dialer
// sits in front of the core one.
func (c *Client) UseCoreDialer(f func(*dialer.CoreDialer) dialer.Dialer) {
	c.UseDialer(func(d dialer.Dialer) dialer.Dialer {
		if cd, ok := d.(*dialer.CoreDialer); ok {
			return f(cd.Clone())
		}
		return d
	})
}

func (c *Client) getDialer() dialer.Dialer {
	if c.dialer == nil {
		d := dialer.Default()
		d.Logger = c.Logger
		return d
	}
	return c.dialer
}

func (c *Client) log() logrus.FieldLogger {
	if c.Logger != nil {
		return c.Logger
	}
	return logrus.StandardLogger()
}

func (c *Client) CtxDo(ctx context.Context, req *http.Request) (*http.Response, error) {
	pr, err := req.Prepare()
	if err != nil {
		return nil, err
	}
	next := func(ctx context.Context, pr *http.PreparedRequest) (*http.Response, error) {
		conn, err := c.getDialer().Dial(ctx, pr)
		if err != nil {
			return nil, fmt.Errorf("dial %s: %w", pr.U.Host, err)
		}
		resp := &http.Response{}
		if err := transport.RoundTrip(ctx, transport.HTTP1{}, conn, pr, resp); err != nil {
			conn.Close()
			return nil, err
		}
		return resp, nil
	}
	for i := len(c.middlewares) - 1; i >= 0; i-- {
		next = c.middlewares[i](next)
	}
	return next(ctx, pr)
}

// NewHandle implements [xhr.Factory], handles send through c.
func (c *Client) NewHandle() (xhr.Handle, error) {
	if c == nil {
		return nil, xhr.ErrTransportUnavailable
	}
	return xhr.New(c, c.log()), nil
}
