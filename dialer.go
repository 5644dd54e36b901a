package ajax

import (
	"github.com/frankli0324/go-ajax/dialer"
)

type Dialer = dialer.Dialer
type CoreDialer = dialer.CoreDialer

type ProxyConfig = dialer.ProxyConfig
type ResolveConfig = dialer.ResolveConfig

var ProxyFromEnvironment = dialer.ProxyFromEnvironment
