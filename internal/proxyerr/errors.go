// Package proxyerr defines the sentinel error kinds that the request
// pipeline can produce, each paired with the HTTP status the Error
// Responder should surface for it.
package proxyerr

import "errors"

// ErrMalformedRequest indicates the request line was unparsable, or a
// URI component exceeded its buffer budget. Pair with a 400 response.
var ErrMalformedRequest = errors.New("malformed request")

// ErrUnsupportedMethod indicates the request method was not GET. Pair
// with a 501 response.
var ErrUnsupportedMethod = errors.New("unsupported method")

// ErrUpstreamConnectFailure indicates the origin host could not be
// resolved or connected to. Pair with a 502 response.
var ErrUpstreamConnectFailure = errors.New("upstream connect failure")

// ErrUpstreamIOFailure indicates a read or write to the origin failed
// mid-stream. The client may already have received partial bytes; no
// response status is owed at this point, and the object must not be
// admitted to cache.
var ErrUpstreamIOFailure = errors.New("upstream i/o failure")

// ErrClientWriteFailure indicates a write to the client failed (most
// likely EPIPE). Further client writes are abandoned, but the origin
// read may continue so that an eligible object can still be admitted.
var ErrClientWriteFailure = errors.New("client write failure")
