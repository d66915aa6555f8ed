/*
Package gemini implements the core of a Gemini protocol server framework.

A Gemini server accepts a TLS connection, reads a single CRLF-terminated
request line containing a URL, and writes a single response line followed
by an optional body. This package provides the concurrent TLS server loop,
a path router with named parameters, a response model covering every
Gemini status class, and a pre/post hook pipeline (modules, callbacks,
header/footer partials) around each handler invocation.

A minimal server:

	var s gemini.Server
	s.SetCertificateFile("cert.pem")
	s.SetPrivateKeyFile("key.pem")
	s.Mount("/", func(ctx *gemini.RequestContext) gemini.ResponseModel {
		return gemini.Success("Hello, world!")
	})
	log.Fatal(s.Run())

Routes may bind named parameters:

	s.Mount("/names/:first/:last", func(ctx *gemini.RequestContext) gemini.ResponseModel {
		return gemini.Success(ctx.Params["first"] + " " + ctx.Params["last"])
	})
*/
package gemini
