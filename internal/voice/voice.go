// Package voice captures spoken commands from the microphone and turns them
// into text. Microphone capture and speech-to-text need cgo libraries and are
// only compiled with the "voice" build tag; audio decoding and utterance
// detection are always available.
package voice

import (
	"context"
	"errors"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/mj1618/desktop-agent/internal/config"
)

// SampleRate is the rate, in Hz, of every PCM buffer this package produces.
const SampleRate = 16000

// FrameSize is the number of samples read per microphone frame (20ms).
const FrameSize = 320

const frameDuration = time.Second * FrameSize / SampleRate

// ErrUnavailable is returned when the binary was built without voice support.
var ErrUnavailable = errors.New("voice input not available in this build (rebuild with -tags voice)")

// Listener captures one spoken command per call. An empty string with a nil
// error means nothing intelligible was heard.
type Listener interface {
	Listen(ctx context.Context) (string, error)
	Close() error
}

// Transcriber converts 16kHz mono PCM in [-1, 1] to text.
type Transcriber interface {
	Transcribe(ctx context.Context, pcm []float32) (string, error)
	Close() error
}

// Detector segments a microphone stream into one utterance. Frames are
// dropped until one is louder than the threshold; the utterance ends after
// a run of quiet frames or when the frame budget is spent.
type Detector struct {
	threshold     float64
	silenceFrames int
	maxFrames     int

	speaking bool
	quiet    int
	frames   int
	out      []float32
}

// NewDetector builds a Detector from the voice settings.
func NewDetector(cfg config.VoiceConfig) *Detector {
	threshold := cfg.Threshold
	if threshold <= 0 {
		threshold = 0.015
	}
	silence := cfg.Silence
	if silence <= 0 {
		silence = 600 * time.Millisecond
	}
	maxSeconds := cfg.MaxSeconds
	if maxSeconds <= 0 {
		maxSeconds = 10
	}
	return &Detector{
		threshold:     threshold,
		silenceFrames: int(math.Ceil(float64(silence) / float64(frameDuration))),
		maxFrames:     maxSeconds * SampleRate / FrameSize,
		out:           make([]float32, 0, SampleRate*3),
	}
}

// Feed consumes one frame and reports whether the utterance is complete.
// The frame is copied.
func (d *Detector) Feed(frame []float32) bool {
	d.frames++
	if RMS(frame) > d.threshold {
		d.speaking = true
		d.quiet = 0
		d.out = append(d.out, frame...)
	} else if d.speaking {
		d.quiet++
		if d.quiet >= d.silenceFrames {
			return true
		}
		d.out = append(d.out, frame...)
	}
	return d.frames >= d.maxFrames
}

// Heard reports whether any frame crossed the threshold.
func (d *Detector) Heard() bool { return d.speaking }

// Samples returns the captured utterance.
func (d *Detector) Samples() []float32 { return d.out }

// RMS returns the root mean square of f.
func RMS(f []float32) float64 {
	if len(f) == 0 {
		return 0
	}
	var s float64
	for _, x := range f {
		s += float64(x) * float64(x)
	}
	return math.Sqrt(s / float64(len(f)))
}

var annotation = regexp.MustCompile(`\[[^\]]*\]|\([^)]*\)`)

// CleanTranscript strips non-speech annotations such as "[BLANK_AUDIO]" or
// "(music)" and collapses whitespace.
func CleanTranscript(text string) string {
	text = annotation.ReplaceAllString(text, " ")
	return strings.Join(strings.Fields(text), " ")
}
