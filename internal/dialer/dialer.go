package dialer

import (
	"context"
	"crypto/tls"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/frankli0324/go-ajax/internal/http"
)

// Dialers handle pretty much everything related to the actual connection,
// including setting a proxy for each request, setting resolvers, etc.
type Dialer interface {
	// Dial returns a stream for writing the request and reading the response.
	// closing the stream tears down the connection, nothing is kept alive.
	Dial(ctx context.Context, r *http.PreparedRequest) (io.ReadWriteCloser, error)
	Unwrap() Dialer
}

type CoreDialer struct {
	ResolveConfig *ResolveConfig

	TLSConfig *tls.Config // the config to use

	// GetProxy returns the proxy url for r, "" dials directly.
	// http, https, socks5 and socks5h proxies are supported
	GetProxy    func(ctx context.Context, r *http.Request) (string, error)
	ProxyConfig *ProxyConfig

	Logger logrus.FieldLogger
}

// Default returns a fresh *CoreDialer carrying the default configuration.
func Default() *CoreDialer {
	return &CoreDialer{
		TLSConfig: &tls.Config{},
		ProxyConfig: &ProxyConfig{
			ResolveLocally: false,
		},
	}
}

func (d *CoreDialer) Clone() *CoreDialer {
	return &CoreDialer{
		ResolveConfig: d.ResolveConfig.Clone(),
		TLSConfig:     d.TLSConfig.Clone(),
		GetProxy:      d.GetProxy,
		ProxyConfig:   d.ProxyConfig.Clone(),
		Logger:        d.Logger,
	}
}

func (d *CoreDialer) Unwrap() Dialer {
	return nil
}

func (d *CoreDialer) log() logrus.FieldLogger {
	if d.Logger != nil {
		return d.Logger
	}
	return logrus.StandardLogger()
}
