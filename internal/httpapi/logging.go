package httpapi

import (
	"github.com/rs/zerolog"
)

// zlog is the structured logger used by the HTTP layer. Defaults to a
// no-op logger until SetLogger installs the process logger.
var zlog = zerolog.Nop()

// SetLogger installs a structured logger used by the HTTP layer.
func SetLogger(l zerolog.Logger) { zlog = l }
