package gemini

import (
	"bufio"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"net/url"
	"sync"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Server is a concurrent Gemini TLS server: a route table, a pre/post
// hook pipeline, and the listener loop that drives them. The zero value
// is a usable server listening on the default port with no routes (every
// request gets the default error handler).
type Server struct {
	// Logger receives connection-level failures (handshake errors, read/
	// write errors, recovered handler panics). If nil, the zerolog
	// package-level default logger is used, matching the zero-value
	// Server being fully usable without setup.
	Logger *zerolog.Logger

	// Sniffer is consulted by BinarySuccessAuto responses. If nil,
	// BinarySuccessAuto responses fail with ErrNoSniffer.
	Sniffer MimeSniffer

	privateKeyFile  string
	certificateFile string

	mu           sync.Mutex // guards lazy init of router
	router       *Router
	errorHandler ErrorHandler

	errorHandlerMu sync.Mutex

	headersMu sync.Mutex
	headers   []Partial
	footersMu sync.Mutex
	footers   []Partial

	preMu  sync.Mutex
	pre    PreRouteCallback
	postMu sync.Mutex
	post   PostRouteCallback

	modulesMu    sync.Mutex
	modules      []*moduleCell
	asyncModules []*asyncModuleCell

	charset   string
	languages []string
	port      int
	fixPath   bool

	started atomic.Bool
}

func (s *Server) ensureRouter() *Router {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.router == nil {
		s.router = NewRouter()
	}
	return s.router
}

// log returns the logger to use for connection-level diagnostics,
// falling back to zerolog's package-level default when none was
// configured.
func (s *Server) log() *zerolog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return &log.Logger
}

// SetPrivateKeyFile configures the PEM-encoded private key file the
// server will load at Run time.
func (s *Server) SetPrivateKeyFile(path string) { s.privateKeyFile = path }

// SetCertificateFile configures the PEM-encoded certificate file the
// server will load at Run time.
func (s *Server) SetCertificateFile(path string) { s.certificateFile = path }

// SetCharacterSet sets the default charset applied to status-20
// responses that do not specify their own.
func (s *Server) SetCharacterSet(charset string) { s.charset = charset }

// SetLanguages sets the default language list applied to status-20
// responses that do not specify their own.
func (s *Server) SetLanguages(langs []string) { s.languages = langs }

// SetPort sets the TCP port the server listens on. Ignored if Addr-style
// configuration is added by an embedder; Run always binds
// "0.0.0.0:<port>".
func (s *Server) SetPort(port int) { s.port = port }

// SetFixPath enables or disables relaxed (case/trailing-slash tolerant)
// route lookup when the exact path does not match.
func (s *Server) SetFixPath(fixPath bool) { s.fixPath = fixPath }

// SetErrorHandler replaces the handler invoked when no route matches a
// request. It is held under a lock so it may safely close over mutable
// state (e.g. an error counter) shared across requests.
func (s *Server) SetErrorHandler(h ErrorHandler) {
	s.errorHandlerMu.Lock()
	defer s.errorHandlerMu.Unlock()
	s.errorHandler = h
}

// AddHeader appends a header partial. Headers run, in registration
// order, before the handler of a matched route; their output is inserted
// only into status-20 responses.
func (s *Server) AddHeader(p Partial) {
	s.mustNotBeStarted("AddHeader")
	s.headersMu.Lock()
	defer s.headersMu.Unlock()
	s.headers = append(s.headers, p)
}

// AddFooter appends a footer partial. Footers run, in registration
// order, after the handler on status-20 responses.
func (s *Server) AddFooter(p Partial) {
	s.mustNotBeStarted("AddFooter")
	s.footersMu.Lock()
	defer s.footersMu.Unlock()
	s.footers = append(s.footers, p)
}

// SetPreRouteCallback installs the single callback invoked, under lock,
// before any attached module's OnPreRoute.
func (s *Server) SetPreRouteCallback(cb PreRouteCallback) {
	s.preMu.Lock()
	defer s.preMu.Unlock()
	s.pre = cb
}

// SetPostRouteCallback installs the single callback invoked, under lock,
// after every attached module's OnPostRoute. It receives the final
// ResponseModel by pointer and may mutate it; mutations are honored in
// the wire output.
func (s *Server) SetPostRouteCallback(cb PostRouteCallback) {
	s.postMu.Lock()
	defer s.postMu.Unlock()
	s.post = cb
}

// Mount registers handler for pattern. handler may be a Handler, an
// AsyncHandler, or a bare func(*RequestContext) ResponseModel /
// func(*RequestContext) <-chan ResponseModel. Mount returns the same
// *RouteConflictError Router.Insert would, rather than panicking;
// callers that want fail-fast startup behavior wrap the call themselves.
func (s *Server) Mount(pattern string, handler interface{}, opts ...RouteOption) error {
	if err := s.mustNotBeStartedErr("Mount"); err != nil {
		return err
	}
	h, err := normalizeHandler(handler)
	if err != nil {
		return err
	}
	return s.ensureRouter().Insert(pattern, h, opts...)
}

// Attach registers a stateful Module: OnAttach runs immediately, and
// OnPreRoute/OnPostRoute run around every subsequent request, each under
// the module's own lock.
func (s *Server) Attach(m Module) error {
	if err := s.mustNotBeStartedErr("Attach"); err != nil {
		return err
	}
	if err := m.OnAttach(s); err != nil {
		return err
	}
	s.modulesMu.Lock()
	defer s.modulesMu.Unlock()
	s.modules = append(s.modules, &moduleCell{mod: m, name: moduleName(m, fmt.Sprintf("module#%d", len(s.modules)))})
	return nil
}

// AttachAsync registers a stateful AsyncModule.
func (s *Server) AttachAsync(m AsyncModule) error {
	if err := s.mustNotBeStartedErr("AttachAsync"); err != nil {
		return err
	}
	if err := m.OnAttach(s); err != nil {
		return err
	}
	s.modulesMu.Lock()
	defer s.modulesMu.Unlock()
	s.asyncModules = append(s.asyncModules, &asyncModuleCell{mod: m, name: moduleName(m, fmt.Sprintf("async-module#%d", len(s.asyncModules)))})
	return nil
}

// AttachStateless invokes fn immediately, giving it the chance to
// register routes, headers, footers, or an error handler against s. It
// holds no state of its own and is not tracked as a module.
func (s *Server) AttachStateless(fn StatelessModule) {
	fn(s)
}

func (s *Server) mustNotBeStarted(op string) {
	if err := s.mustNotBeStartedErr(op); err != nil {
		panic(err)
	}
}

func (s *Server) mustNotBeStartedErr(op string) error {
	if s.started.Load() {
		return fmt.Errorf("gemini: %s called after Run: route table and pipeline are read-only once serving has started", op)
	}
	return nil
}

// Run binds the server's configured port on all interfaces and serves
// until a fatal listener error occurs. Failure to load the certificate/
// key pair or to bind the port is returned as a *ConfigurationError; the
// accept error that ends serving is returned as is.
func (s *Server) Run() error {
	cert, err := tls.LoadX509KeyPair(s.certificateFile, s.privateKeyFile)
	if err != nil {
		return &ConfigurationError{Reason: "loading certificate/key pair", Err: err}
	}

	port := s.port
	if port == 0 {
		port = 1965
	}
	addr := fmt.Sprintf("0.0.0.0:%d", port)

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return &ConfigurationError{Reason: "binding " + addr, Err: err}
	}
	defer ln.Close()

	tlsConfig := &tls.Config{
		Certificates: []tls.Certificate{cert},
		ClientAuth:   tls.RequestClientCert,
		MinVersion:   tls.VersionTLS12,
	}

	return s.Serve(tls.NewListener(ln, tlsConfig))
}

// Serve accepts and dispatches connections from an already-configured
// listener (typically a *tls.Listener). Use this in place of Run to
// supply TLS material from a source other than two PEM file paths.
func (s *Server) Serve(l net.Listener) error {
	s.started.Store(true)
	var tempDelay time.Duration
	for {
		conn, err := l.Accept()
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				if tempDelay == 0 {
					tempDelay = 5 * time.Millisecond
				} else {
					tempDelay *= 2
				}
				if max := time.Second; tempDelay > max {
					tempDelay = max
				}
				s.log().Warn().Err(err).Dur("retry_in", tempDelay).Msg("accept error, retrying")
				time.Sleep(tempDelay)
				continue
			}
			return err
		}
		tempDelay = 0
		go s.handleConn(conn)
	}
}

const maxRequestLine = 1024

// handleConn owns one accepted connection end to end: TLS handshake,
// bounded request-line read, dispatch, framed write, close. All errors
// here are connection-local per §7; none of them propagate out of Serve.
func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()
	defer func() {
		if r := recover(); r != nil {
			s.log().Error().Interface("panic", r).Msg("recovered panic while handling request")
		}
	}()

	tlsConn, ok := conn.(*tls.Conn)
	if ok {
		if err := tlsConn.Handshake(); err != nil {
			s.log().Debug().Err(err).Str("remote", conn.RemoteAddr().String()).Msg("tls handshake failed")
			return
		}
	}

	br := bufio.NewReaderSize(conn, maxRequestLine+2)
	line, err := readRequestLine(br)
	if err != nil {
		var malformed *MalformedRequestError
		if !errors.As(err, &malformed) {
			s.log().Debug().Err(err).Msg("read error")
			return
		}
		bw := bufio.NewWriter(conn)
		s.writeResponse(bw, BadRequest(malformed.Error()))
		bw.Flush()
		return
	}

	resp, peerCert := s.dispatch(conn, tlsConn, line)

	bw := bufio.NewWriter(conn)
	if err := s.writeResponse(bw, resp); err != nil {
		s.log().Debug().Err(err).Msg("write error")
		return
	}
	if err := bw.Flush(); err != nil {
		s.log().Debug().Err(err).Msg("flush error")
		return
	}
	_ = peerCert
}

// readRequestLine reads up to maxRequestLine+2 bytes looking for a CRLF
// terminator, returning the UTF-8 decoded request line (without the
// CRLF). The size bound matches §6's "total header <= 1024 octets"
// applied symmetrically to the request.
func readRequestLine(br *bufio.Reader) (string, error) {
	b, err := br.ReadSlice('\n')
	if err == bufio.ErrBufferFull {
		return "", &MalformedRequestError{Reason: "request line exceeds 1024 octets", Err: ErrInvalidRequest}
	}
	if err != nil {
		return "", err
	}
	raw := string(b)
	if len(raw) < 2 || raw[len(raw)-2] != '\r' {
		return "", &MalformedRequestError{Reason: "request line not terminated by CRLF", Err: ErrInvalidRequest}
	}
	raw = raw[:len(raw)-2]
	if len(raw) > maxRequestLine {
		return "", &MalformedRequestError{Reason: "request line exceeds 1024 octets", Err: ErrInvalidRequest}
	}
	if !utf8.ValidString(raw) {
		return "", &MalformedRequestError{Reason: "request line is not valid UTF-8", Err: ErrInvalidRequest}
	}
	return raw, nil
}

// dispatch runs the full request-handling algorithm from §4.2 steps
// 3-8 against an already-read request line, returning the framed
// ResponseModel (and the peer certificate, for callers that want it).
func (s *Server) dispatch(conn net.Conn, tlsConn *tls.Conn, line string) (ResponseModel, *x509.Certificate) {
	u, err := url.Parse(line)
	if err != nil {
		return BadRequest("malformed request: " + err.Error()), nil
	}
	if u.User != nil {
		return BadRequest(ErrInvalidURL.Error()), nil
	}

	var peerCert *x509.Certificate
	if tlsConn != nil {
		state := tlsConn.ConnectionState()
		if len(state.PeerCertificates) > 0 {
			peerCert = state.PeerCertificates[0]
		}
	}

	lookupPath := u.Path
	if s.fixPath {
		if fixed, ok := s.ensureRouter().FixPath(u.Path); ok {
			lookupPath = fixed
		} else {
			lookupPath = NormalizePath(u.Path)
		}
	} else {
		lookupPath = NormalizePath(u.Path)
	}

	handler, params, matched := s.ensureRouter().At(lookupPath)

	hookCtx := &HookContext{
		PeerAddr:        conn.RemoteAddr(),
		URL:             u,
		Params:          params,
		PeerCertificate: peerCert,
	}

	s.runPreRoute(hookCtx)

	var resp ResponseModel
	if matched {
		reqCtx := hookCtx.requestContext()

		headers := s.snapshotHeaders()
		footers := s.snapshotFooters()
		header := composeHeader(reqCtx, headers)

		resp = <-asFuture(handler)(reqCtx)

		if resp.Status == StatusSuccess {
			footer := composeFooter(reqCtx, footers)
			resp.Body = composeBody(header, resp.Body, footer)
		}
	} else {
		errCtx := hookCtx.errorContext()
		resp = s.serveError(errCtx)
	}

	if resp.Status == statusBinarySuccessAuto && resp.Mime == "" {
		if s.Sniffer == nil {
			resp = TemporaryFailure(ErrNoSniffer.Error())
		} else {
			resp.Mime = s.Sniffer.Sniff(resp.Body)
		}
	}

	s.runPostRoute(hookCtx, &resp)

	return resp, peerCert
}

func (s *Server) serveError(ctx *ErrorContext) ResponseModel {
	s.errorHandlerMu.Lock()
	defer s.errorHandlerMu.Unlock()
	if s.errorHandler == nil {
		return defaultErrorHandler.ServeGeminiError(ctx)
	}
	return s.errorHandler.ServeGeminiError(ctx)
}

func (s *Server) snapshotHeaders() []Partial {
	s.headersMu.Lock()
	defer s.headersMu.Unlock()
	out := make([]Partial, len(s.headers))
	copy(out, s.headers)
	return out
}

func (s *Server) snapshotFooters() []Partial {
	s.footersMu.Lock()
	defer s.footersMu.Unlock()
	out := make([]Partial, len(s.footers))
	copy(out, s.footers)
	return out
}

func (s *Server) runPreRoute(ctx *HookContext) {
	func() {
		s.preMu.Lock()
		defer s.preMu.Unlock()
		if s.pre != nil {
			s.pre(ctx)
		}
	}()

	s.modulesMu.Lock()
	asyncMods := append([]*asyncModuleCell(nil), s.asyncModules...)
	syncMods := append([]*moduleCell(nil), s.modules...)
	s.modulesMu.Unlock()

	for _, m := range asyncMods {
		m.preRoute(ctx)
	}
	for _, m := range syncMods {
		m.preRoute(ctx)
	}
}

func (s *Server) runPostRoute(ctx *HookContext, resp *ResponseModel) {
	s.modulesMu.Lock()
	asyncMods := append([]*asyncModuleCell(nil), s.asyncModules...)
	syncMods := append([]*moduleCell(nil), s.modules...)
	s.modulesMu.Unlock()

	for _, m := range asyncMods {
		m.postRoute(ctx, resp)
	}
	for _, m := range syncMods {
		m.postRoute(ctx, resp)
	}

	s.postMu.Lock()
	defer s.postMu.Unlock()
	if s.post != nil {
		s.post(ctx, resp)
	}
}

// writeResponse frames resp onto the wire: a status line, then, if the
// status class carries one, the body. Status-20 responses that don't
// specify their own charset/languages fall back to the server's
// configured defaults, falling back further to "utf-8"/["en"] for a
// zero-value Server.
func (s *Server) writeResponse(w *bufio.Writer, resp ResponseModel) error {
	charset := s.charset
	if charset == "" {
		charset = "utf-8"
	}
	languages := s.languages
	if languages == nil {
		languages = []string{"en"}
	}
	header, hasBody := resp.header(charset, languages)
	if _, err := w.WriteString(header); err != nil {
		return err
	}
	if hasBody {
		if _, err := w.Write(resp.Body); err != nil {
			return err
		}
	} else if len(resp.Body) > 0 {
		return ErrBodyNotAllowed
	}
	return nil
}

// normalizeHandler adapts any supported handler shape into a Handler.
func normalizeHandler(v interface{}) (Handler, error) {
	switch h := v.(type) {
	case Handler:
		return h, nil
	case AsyncHandler:
		return asyncHandlerAdapter{h}, nil
	case func(*RequestContext) ResponseModel:
		return HandlerFunc(h), nil
	case func(*RequestContext) <-chan ResponseModel:
		return asyncHandlerAdapter{AsyncHandlerFunc(h)}, nil
	default:
		return nil, fmt.Errorf("gemini: %T is not a valid handler", v)
	}
}

type asyncHandlerAdapter struct {
	AsyncHandler
}

func (a asyncHandlerAdapter) ServeGemini(ctx *RequestContext) ResponseModel {
	return <-a.ServeGeminiAsync(ctx)
}
