// package transport writes requests to and reads responses from an
// established stream, following the HTTP/1.1 message syntax of RFC9112.
// Message semantics (RFC9110) are borrowed from net/http: [net/http.Header],
// status texts, etc.
//
// only HTTP/1.1 is spoken here. the dialer hands out raw TCP or TLS
// streams and never negotiates h2.
package transport
