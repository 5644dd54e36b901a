package internal

import (
	"context"
	"crypto/tls"

	"github.com/frankli0324/go-ajax/internal/dialer"
	"github.com/frankli0324/go-ajax/internal/http"
)

// CoreDialer walks the Unwrap chain of the current dialer and returns the
// innermost *dialer.CoreDialer, or nil if a custom dialer replaced it.
// it is not a copy, changes to it affect in-flight dials.
func (c *Client) CoreDialer() *dialer.CoreDialer {
	d := c.getDialer()
	for d != nil {
		if cd, ok := d.(*dialer.CoreDialer); ok {
			return cd
		}
		d = d.Unwrap()
	}
	return nil
}

// UseProxy routes requests through the proxy url returned by getProxy,
// see [dialer.ProxyFromEnvironment]
func (c *Client) UseProxy(getProxy func(ctx context.Context, r *http.Request) (string, error)) {
	c.UseCoreDialer(func(cd *dialer.CoreDialer) dialer.Dialer {
		cd.GetProxy = getProxy
		return cd
	})
}

func (c *Client) UseTLSConfig(cfg *tls.Config) {
	c.UseCoreDialer(func(cd *dialer.CoreDialer) dialer.Dialer {
		cd.TLSConfig = cfg
		return cd
	})
}

func (c *Client) UseResolveConfig(cfg *dialer.ResolveConfig) {
	c.UseCoreDialer(func(cd *dialer.CoreDialer) dialer.Dialer {
		cd.ResolveConfig = cfg
		return cd
	})
}
