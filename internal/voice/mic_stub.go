//go:build !voice

package voice

import (
	"io"

	"github.com/mj1618/desktop-agent/internal/config"
	"go.uber.org/zap"
)

// NewTranscriber always fails without the voice build tag.
func NewTranscriber(config.VoiceConfig) (Transcriber, error) {
	return nil, ErrUnavailable
}

// NewListener always fails without the voice build tag.
func NewListener(config.VoiceConfig, *zap.Logger, io.Writer) (Listener, error) {
	return nil, ErrUnavailable
}
