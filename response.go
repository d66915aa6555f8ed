package gemini

import (
	"strconv"
	"strings"
)

const defaultMimeType = "text/gemini"

// ResponseModel describes one Gemini reply: a status, a META string, and
// for status-20 class replies, an optional body with MIME/charset/
// language parameters. It is pure data; the dispatcher is responsible for
// applying header/footer partials and framing it onto the wire.
type ResponseModel struct {
	Status    int
	Meta      string
	Body      []byte
	Mime      string
	Charset   string
	Languages []string
}

// HasBody reports whether this status class carries a response body.
func (r ResponseModel) HasBody() bool {
	switch r.Status {
	case StatusSuccess, statusBinarySuccess, statusBinarySuccessAuto:
		return true
	}
	return false
}

// WithMime sets an explicit MIME type on a status-20 response.
func (r ResponseModel) WithMime(mime string) ResponseModel {
	r.Mime = mime
	return r
}

// WithCharacterSet sets the charset parameter on a status-20 response.
func (r ResponseModel) WithCharacterSet(charset string) ResponseModel {
	r.Charset = charset
	return r
}

// WithLanguages sets the lang parameter on a status-20 response.
func (r ResponseModel) WithLanguages(langs []string) ResponseModel {
	r.Languages = langs
	return r
}

// Input constructs a StatusInput response prompting the user for input.
func Input(prompt string) ResponseModel {
	return ResponseModel{Status: StatusInput, Meta: prompt}
}

// SensitiveInput constructs a StatusSensitiveInput response, for prompts
// whose answer a client should not echo (e.g. a password).
func SensitiveInput(prompt string) ResponseModel {
	return ResponseModel{Status: StatusSensitiveInput, Meta: prompt}
}

// Success constructs a text/gemini StatusSuccess response with the given
// body string. Use WithMime/WithCharacterSet/WithLanguages to override
// the defaults applied at framing time.
func Success(body string) ResponseModel {
	return ResponseModel{Status: StatusSuccess, Body: []byte(body)}
}

// BinarySuccess constructs a StatusSuccess response whose body is
// arbitrary bytes with a caller-supplied MIME type. No charset or
// language parameters are emitted.
func BinarySuccess(body []byte, mime string) ResponseModel {
	return ResponseModel{Status: statusBinarySuccess, Body: body, Mime: mime}
}

// BinarySuccessAuto constructs a StatusSuccess response whose MIME type
// is derived from the body by a MimeSniffer at framing time. Callers
// invoking this directly (outside of a Server dispatch, e.g. in tests)
// must resolve the Mime field themselves before writing the response to
// the wire; Server.dispatch does so via its configured Sniffer.
func BinarySuccessAuto(body []byte) ResponseModel {
	return ResponseModel{Status: statusBinarySuccessAuto, Body: body}
}

// TemporaryRedirect constructs a StatusRedirect response to target.
func TemporaryRedirect(target string) ResponseModel {
	return ResponseModel{Status: StatusRedirect, Meta: target}
}

// PermanentRedirect constructs a StatusRedirectPermanent response to target.
func PermanentRedirect(target string) ResponseModel {
	return ResponseModel{Status: StatusRedirectPermanent, Meta: target}
}

// TemporaryFailure constructs a StatusTemporaryFailure response.
func TemporaryFailure(message string) ResponseModel {
	return ResponseModel{Status: StatusTemporaryFailure, Meta: message}
}

// ServerUnavailable constructs a StatusServerUnavailable response.
func ServerUnavailable(message string) ResponseModel {
	return ResponseModel{Status: StatusServerUnavailable, Meta: message}
}

// CGIError constructs a StatusCGIError response.
func CGIError(message string) ResponseModel {
	return ResponseModel{Status: StatusCGIError, Meta: message}
}

// ProxyError constructs a StatusProxyError response.
func ProxyError(message string) ResponseModel {
	return ResponseModel{Status: StatusProxyError, Meta: message}
}

// SlowDown constructs a StatusSlowDown response.
func SlowDown(message string) ResponseModel {
	return ResponseModel{Status: StatusSlowDown, Meta: message}
}

// PermanentFailure constructs a StatusPermanentFailure response.
func PermanentFailure(message string) ResponseModel {
	return ResponseModel{Status: StatusPermanentFailure, Meta: message}
}

// NotFound constructs a StatusNotFound response.
func NotFound(message string) ResponseModel {
	if message == "" {
		message = "Not found"
	}
	return ResponseModel{Status: StatusNotFound, Meta: message}
}

// Gone constructs a StatusGone response.
func Gone(message string) ResponseModel {
	if message == "" {
		message = "Gone"
	}
	return ResponseModel{Status: StatusGone, Meta: message}
}

// ProxyRefused constructs a StatusProxyRequestRefused response.
func ProxyRefused(message string) ResponseModel {
	return ResponseModel{Status: StatusProxyRequestRefused, Meta: message}
}

// BadRequest constructs a StatusBadRequest response.
func BadRequest(message string) ResponseModel {
	return ResponseModel{Status: StatusBadRequest, Meta: message}
}

// ClientCertificateRequired constructs a StatusCertificateRequired response.
func ClientCertificateRequired(message string) ResponseModel {
	if message == "" {
		message = "Certificate required"
	}
	return ResponseModel{Status: StatusCertificateRequired, Meta: message}
}

// CertificateNotAuthorised constructs a StatusCertificateNotAuthorized response.
func CertificateNotAuthorised(message string) ResponseModel {
	if message == "" {
		message = "Certificate not authorized"
	}
	return ResponseModel{Status: StatusCertificateNotAuthorized, Meta: message}
}

// CertificateNotValid constructs a StatusCertificateNotValid response.
func CertificateNotValid(message string) ResponseModel {
	if message == "" {
		message = "Certificate not valid"
	}
	return ResponseModel{Status: StatusCertificateNotValid, Meta: message}
}

// header returns the wire status line for r, and whether a body follows.
func (r ResponseModel) header(defaultCharset string, defaultLanguages []string) (string, bool) {
	switch r.Status {
	case StatusSuccess:
		mime := r.Mime
		if mime == "" {
			mime = defaultMimeType
		}
		charset := r.Charset
		if charset == "" {
			charset = defaultCharset
		}
		langs := r.Languages
		if langs == nil {
			langs = defaultLanguages
		}
		meta := mime
		if charset != "" {
			meta += "; charset=" + charset
		}
		if len(langs) > 0 {
			meta += "; lang=" + strings.Join(langs, ",")
		}
		return strconv.Itoa(StatusSuccess) + " " + meta + "\r\n", true
	case statusBinarySuccess, statusBinarySuccessAuto:
		return strconv.Itoa(StatusSuccess) + " " + r.Mime + "\r\n", true
	default:
		return strconv.Itoa(r.Status) + " " + r.Meta + "\r\n", false
	}
}
