package ajax

import (
	"github.com/frankli0324/go-ajax/internal"
	"github.com/frankli0324/go-ajax/internal/http"
)

// Client performs exchanges over HTTP/1.1, one connection per request.
// *Client is the default [Factory]. the zero value is ready to use.
type Client = internal.Client
type Handler = internal.Handler
type Middleware = internal.Middleware

type Header = http.Header
type Request = http.Request
type PreparedRequest = http.PreparedRequest
type Response = http.Response
