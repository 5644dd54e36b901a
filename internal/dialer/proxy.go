package dialer

import (
	"context"
	"crypto/tls"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/url"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/http/httpproxy"
	"golang.org/x/net/proxy"

	"github.com/frankli0324/go-ajax/internal/http"
	"github.com/frankli0324/go-ajax/internal/transport"
)

var ErrUnsupportedProxy = errors.New("unsupported proxy scheme")

type ProxyConfig struct {
	TLSConfig      *tls.Config    // the [*tls.Config] to use with proxy, if nil, *[CoreDialer.TLSConfig] will be used
	ResolveLocally bool           // resolve the remote host before asking an http(s) proxy to CONNECT
	ResolveConfig  *ResolveConfig // overrides the resolver config for dialer for proxy
}

func (c *ProxyConfig) Clone() *ProxyConfig {
	if c == nil {
		return nil
	}
	return &ProxyConfig{
		TLSConfig:      c.TLSConfig.Clone(),
		ResolveLocally: c.ResolveLocally,
		ResolveConfig:  c.ResolveConfig.Clone(),
	}
}

var (
	h1Transport = transport.HTTP1{}
)

// ProxyFromEnvironment returns a [CoreDialer.GetProxy] honoring
// HTTP_PROXY, HTTPS_PROXY and NO_PROXY (and their lowercase versions).
// the environment is read once, when this is called
func ProxyFromEnvironment() func(ctx context.Context, r *http.Request) (string, error) {
	return ProxyFromConfig(httpproxy.FromEnvironment())
}

// ProxyFromConfig is like [ProxyFromEnvironment] with an explicit configuration
func ProxyFromConfig(cfg *httpproxy.Config) func(ctx context.Context, r *http.Request) (string, error) {
	pf := cfg.ProxyFunc()
	return func(ctx context.Context, r *http.Request) (string, error) {
		u, err := url.Parse(r.URL)
		if err != nil {
			return "", err
		}
		p, err := pf(u)
		if err != nil || p == nil {
			return "", err
		}
		return p.String(), nil
	}
}

func (d *CoreDialer) tryDialProxy(ctx context.Context, r *http.PreparedRequest) (net.Conn, error) {
	if d.GetProxy == nil {
		return nil, nil
	}
	p, err := d.GetProxy(ctx, r.Request)
	if err != nil || p == "" {
		return nil, err
	}
	proxyU, err := url.Parse(p)
	if err != nil {
		return nil, err
	}
	d.log().WithFields(logrus.Fields{
		"proxy": proxyU.Redacted(), "host": r.U.Host,
	}).Debug("dialing through proxy")
	return d.DialContextOverProxy(ctx, r.U, proxyU)
}

// DialContextOverProxy creates a connection over http/socks proxy.
// This part of logic may be reused when wrapping *[CoreDialer] into
// a new custom [Dialer]
func (d *CoreDialer) DialContextOverProxy(ctx context.Context, remote, proxyU *url.URL) (net.Conn, error) {
	addr, port := hostPort(remote)
	switch proxyU.Scheme {
	case "http", "https":
		if d.ProxyConfig != nil && d.ProxyConfig.ResolveLocally {
			ip, err := d.resolveForProxy(ctx, addr)
			if err != nil {
				return nil, err
			}
			addr = ip
		}
		return d.dialConnect(ctx, proxyU, net.JoinHostPort(addr, port))
	case "socks5", "socks":
		// the client resolves the name for plain socks5
		ip, err := d.resolveForProxy(ctx, addr)
		if err != nil {
			return nil, err
		}
		return d.dialSOCKS(ctx, proxyU, net.JoinHostPort(ip, port))
	case "socks5h":
		return d.dialSOCKS(ctx, proxyU, net.JoinHostPort(addr, port))
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedProxy, proxyU.Scheme)
}

func (d *CoreDialer) resolveForProxy(ctx context.Context, addr string) (string, error) {
	if ip := net.ParseIP(addr); ip != nil {
		return addr, nil
	}
	var dnsCfg *ResolveConfig
	if d.ProxyConfig != nil {
		dnsCfg = d.ProxyConfig.ResolveConfig
	}
	dnsCfg = dnsCfg.Merge(d.ResolveConfig)

	ips, err := d.lookup(ctx, dnsCfg, addr)
	if err != nil {
		return "", err
	}
	if len(ips) == 0 || ips[0] == nil {
		return "", fmt.Errorf("no address found for %s", addr)
	}
	return ips[rand.Intn(len(ips))].String(), nil
}

func (d *CoreDialer) dialSOCKS(ctx context.Context, proxyU *url.URL, target string) (net.Conn, error) {
	var auth *proxy.Auth
	if u := proxyU.User; u != nil {
		pw, _ := u.Password()
		auth = &proxy.Auth{User: u.Username(), Password: pw}
	}
	host, port := hostPort(proxyU)
	sd, err := proxy.SOCKS5("tcp", net.JoinHostPort(host, port), auth, &zeroDialer)
	if err != nil {
		return nil, err
	}
	cd, ok := sd.(proxy.ContextDialer)
	if !ok {
		return nil, errors.New("socks dialer does not accept a context")
	}
	return cd.DialContext(ctx, "tcp", target)
}

// dialConnect opens a tunnel to target with an HTTP CONNECT request
func (d *CoreDialer) dialConnect(ctx context.Context, proxyU *url.URL, target string) (net.Conn, error) {
	host, port := hostPort(proxyU)
	conn, err := zeroDialer.DialContext(ctx, "tcp", net.JoinHostPort(host, port))
	if err != nil {
		return nil, err
	}

	if proxyU.Scheme == "https" {
		var tlsCfg *tls.Config
		if d.ProxyConfig != nil {
			tlsCfg = d.ProxyConfig.TLSConfig
		}
		if tlsCfg == nil {
			tlsCfg = d.TLSConfig
		}
		tlsCfg = tlsCfg.Clone()
		if tlsCfg == nil {
			tlsCfg = &tls.Config{}
		}
		if tlsCfg.ServerName == "" {
			tlsCfg.ServerName = host
		}
		c := tls.Client(conn, tlsCfg)
		if err := c.HandshakeContext(ctx); err != nil {
			conn.Close()
			return nil, err
		}
		conn = c
	}

	connReq := &http.PreparedRequest{
		Request:       &http.Request{Method: "CONNECT"},
		HeaderHost:    target,
		U:             &url.URL{Host: target},
		GetBody:       func() (io.ReadCloser, error) { return http.NoBody, nil },
		ContentLength: -1,
	}
	if u := proxyU.User; u != nil {
		pw, _ := u.Password()
		connReq.Header = http.Header{
			"Proxy-Authorization": {"Basic " + base64.StdEncoding.EncodeToString([]byte(u.Username()+":"+pw))},
		}
	}
	if err := h1Transport.Write(ctx, conn, connReq); err != nil {
		conn.Close()
		return nil, err
	}
	resp := &http.Response{}
	if err := h1Transport.Read(ctx, conn, connReq, resp); err != nil {
		conn.Close()
		return nil, err
	}
	if resp.StatusCode != 200 {
		s, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, fmt.Errorf("proxy server returned error. status:%d, body:%s", resp.StatusCode, string(s))
	}
	return conn, nil
}
