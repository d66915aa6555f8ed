package gemini

import (
	"os"

	"github.com/rs/zerolog"
)

// newDefaultLogger builds the console-pretty zerolog.Logger used when
// Config.DefaultLogger requests one explicitly (see config.go). A Server
// left with a nil Logger field falls back to the zerolog package-level
// default logger instead (see (*Server).log in server.go), which is the
// zero-config convention the retrieval pack's own zerolog usage follows.
func newDefaultLogger() zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
}
