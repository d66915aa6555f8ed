package gemini

import "net/http"

// MimeSniffer deduces a MIME type from a byte payload. It is consulted
// only by BinarySuccessAuto responses, via a Server's configured Sniffer.
type MimeSniffer interface {
	Sniff(body []byte) string
}

// DetectContentTypeSniffer is the default MimeSniffer, backed by the
// standard library's content sniffing algorithm (the same family of
// facility the teacher's file server used for extension-based MIME
// lookup, applied here to bytes instead of file names).
type DetectContentTypeSniffer struct{}

func (DetectContentTypeSniffer) Sniff(body []byte) string {
	return http.DetectContentType(body)
}
