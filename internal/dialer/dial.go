package dialer

import (
	"context"
	"crypto/tls"
	"io"
	"net"
	"net/url"

	"github.com/frankli0324/go-ajax/internal/http"
)

var schemes = map[string]string{
	"http": "80", "https": "443", "socks": "1080", "socks5": "1080", "socks5h": "1080",
}

var zeroDialer net.Dialer
var customDnsDialer = net.Dialer{
	Resolver: &customServerResolver,
}

// hostPort splits the authority of u, filling in the scheme's default port
func hostPort(u *url.URL) (host, port string) {
	host, port = u.Hostname(), u.Port()
	if port == "" {
		port = schemes[u.Scheme]
	}
	return
}

func (d *CoreDialer) Dial(ctx context.Context, r *http.PreparedRequest) (io.ReadWriteCloser, error) {
	conn, err := d.tryDialProxy(ctx, r)
	if err != nil {
		return nil, err
	}
	if conn == nil {
		addr, port := hostPort(r.U)
		if conn, err = d.dialDirect(ctx, addr, port); err != nil {
			return nil, err
		}
	}
	if r.U.Scheme == "https" {
		c := tls.Client(conn, d.tlsConfig(r.U.Hostname()))
		if err := c.HandshakeContext(ctx); err != nil {
			conn.Close()
			return nil, err
		}
		conn = c
	}
	return conn, nil
}

func (d *CoreDialer) dialDirect(ctx context.Context, addr, port string) (net.Conn, error) {
	network, dialer, dialctx := d.ResolveConfig.tcpNetwork(), &zeroDialer, ctx
	dst := net.JoinHostPort(addr, port)
	if static, ok := d.ResolveConfig.staticHost(addr); ok {
		dst = net.JoinHostPort(static, port)
	}
	if dns := d.ResolveConfig.dnsServer(); dns != "" {
		dialctx = dnsServerCtx{dialctx, dns}
		dialer = &customDnsDialer
	}
	return dialer.DialContext(dialctx, network, dst)
}

// tlsConfig clones the configured *tls.Config for one handshake. "h2"
// is never offered since responses are read as HTTP/1.1
func (d *CoreDialer) tlsConfig(serverName string) *tls.Config {
	config := d.TLSConfig.Clone()
	if config == nil {
		config = &tls.Config{}
	}
	if config.ServerName == "" {
		config.ServerName = serverName
	}
	protos := config.NextProtos[:0:0]
	for _, p := range config.NextProtos {
		if p != "h2" {
			protos = append(protos, p)
		}
	}
	config.NextProtos = protos
	return config
}
