// package http holds the request and response types shared by the
// client, the dialers and the wire codec. they are re-exported from the
// top level package, so the package name is kept as "http" for IDEs to
// pick them up under the same name.
//
// a few aliases from the standard library live here as well, to spare
// callers another net/http import
package http

import (
	"net/http"
)

type Header = http.Header

var NoBody = http.NoBody

// StatusText returns the reason phrase registered for code, or "" for
// unknown codes.
func StatusText(code int) string {
	return http.StatusText(code)
}
