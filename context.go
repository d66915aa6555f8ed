package gemini

import (
	"crypto/x509"
	"net"
	"net/url"
)

// HookContext is the immutable per-request data passed to pre/post-route
// callbacks and to every attached module's OnPreRoute/OnPostRoute.
type HookContext struct {
	// PeerAddr is the remote socket address, if the underlying
	// transport exposes one.
	PeerAddr net.Addr

	// URL is the absolute URL sent by the client.
	URL *url.URL

	// Params holds the path parameters captured by the router, if any
	// route matched. It is nil when no route matched.
	Params map[string]string

	// PeerCertificate is the client's TLS certificate, if one was
	// presented during the handshake.
	PeerCertificate *x509.Certificate
}

// RequestContext is passed to a matched route's handler. It carries the
// same fields as HookContext, captured once after routing.
type RequestContext struct {
	PeerAddr        net.Addr
	URL             *url.URL
	Params          map[string]string
	PeerCertificate *x509.Certificate
}

// ErrorContext is passed to the server's error handler when no route
// matches the request. It never carries path parameters.
type ErrorContext struct {
	PeerAddr        net.Addr
	URL             *url.URL
	PeerCertificate *x509.Certificate
}

func (h *HookContext) requestContext() *RequestContext {
	return &RequestContext{
		PeerAddr:        h.PeerAddr,
		URL:             h.URL,
		Params:          h.Params,
		PeerCertificate: h.PeerCertificate,
	}
}

func (h *HookContext) errorContext() *ErrorContext {
	return &ErrorContext{
		PeerAddr:        h.PeerAddr,
		URL:             h.URL,
		PeerCertificate: h.PeerCertificate,
	}
}
