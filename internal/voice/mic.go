//go:build voice

package voice

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
	"github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"
	"github.com/gordonklaus/portaudio"
	"github.com/mj1618/desktop-agent/internal/config"
	"go.uber.org/zap"
)

// Whisper transcribes with a local whisper.cpp model.
type Whisper struct {
	model    whisper.Model
	language string
}

// NewTranscriber loads the whisper model named in cfg.
func NewTranscriber(cfg config.VoiceConfig) (Transcriber, error) {
	if cfg.Model == "" {
		return nil, errors.New("voice.model is not set")
	}
	m, err := whisper.New(config.ExpandPath(cfg.Model))
	if err != nil {
		return nil, fmt.Errorf("load whisper model: %w", err)
	}
	lang := cfg.Language
	if lang == "" {
		lang = "auto"
	}
	return &Whisper{model: m, language: lang}, nil
}

func (w *Whisper) Transcribe(ctx context.Context, pcm []float32) (string, error) {
	if len(pcm) == 0 {
		return "", nil
	}
	wctx, err := w.model.NewContext()
	if err != nil {
		return "", fmt.Errorf("whisper context: %w", err)
	}
	if err := wctx.SetLanguage(w.language); err != nil {
		return "", fmt.Errorf("set language: %w", err)
	}
	wctx.SetThreads(uint(runtime.NumCPU()))
	if err := wctx.Process(pcm, nil, nil, nil); err != nil {
		return "", fmt.Errorf("whisper process: %w", err)
	}

	var parts []string
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		seg, err := wctx.NextSegment()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("next segment: %w", err)
		}
		parts = append(parts, seg.Text)
	}
	return CleanTranscript(strings.Join(parts, " ")), nil
}

func (w *Whisper) Close() error { return w.model.Close() }

// Mic records one utterance from the default input device per Listen call
// and transcribes it.
type Mic struct {
	cfg         config.VoiceConfig
	transcriber Transcriber
	logger      *zap.Logger
	out         io.Writer

	speakerOnce sync.Once
	speakerRate beep.SampleRate
	speakerErr  error
}

// NewListener opens the audio device and loads the speech model.
func NewListener(cfg config.VoiceConfig, logger *zap.Logger, out io.Writer) (Listener, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("init portaudio: %w", err)
	}
	t, err := NewTranscriber(cfg)
	if err != nil {
		portaudio.Terminate()
		return nil, err
	}
	return &Mic{cfg: cfg, transcriber: t, logger: logger, out: out}, nil
}

func (m *Mic) Listen(ctx context.Context) (string, error) {
	fmt.Fprintln(m.out, "Listening... Speak now!")
	m.cue(ctx)

	pcm, heard, err := m.record(ctx)
	if err != nil {
		return "", err
	}
	if !heard {
		fmt.Fprintln(m.out, "No speech detected within timeout")
		return "", nil
	}
	m.dump(pcm)

	fmt.Fprintln(m.out, "Processing speech...")
	start := time.Now()
	text, err := m.transcriber.Transcribe(ctx, pcm)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		m.logger.Error("transcription failed", zap.Error(err))
		fmt.Fprintf(m.out, "Could not transcribe audio; %v\n", err)
		return "", nil
	}
	m.logger.Debug("transcribed", zap.Duration("elapsed", time.Since(start)), zap.Int("samples", len(pcm)))
	if text == "" {
		fmt.Fprintln(m.out, "Could not understand audio")
	}
	return text, nil
}

func (m *Mic) record(ctx context.Context) ([]float32, bool, error) {
	buf := make([]float32, FrameSize)
	stream, err := portaudio.OpenDefaultStream(1, 0, SampleRate, len(buf), buf)
	if err != nil {
		return nil, false, fmt.Errorf("open input stream: %w", err)
	}
	defer stream.Close()
	if err := stream.Start(); err != nil {
		return nil, false, fmt.Errorf("start input stream: %w", err)
	}
	defer stream.Stop()

	d := NewDetector(m.cfg)
	for {
		if err := ctx.Err(); err != nil {
			return nil, false, err
		}
		if err := stream.Read(); err != nil {
			return nil, false, fmt.Errorf("read input stream: %w", err)
		}
		if d.Feed(buf) {
			break
		}
	}
	return d.Samples(), d.Heard(), nil
}

// cue plays the configured "listening" sound. Playback problems are logged
// and otherwise ignored.
func (m *Mic) cue(ctx context.Context) {
	if m.cfg.CueFile == "" {
		return
	}
	f, err := os.Open(config.ExpandPath(m.cfg.CueFile))
	if err != nil {
		m.logger.Debug("cue file not readable", zap.String("path", m.cfg.CueFile), zap.Error(err))
		return
	}
	streamer, format, err := mp3.Decode(f)
	if err != nil {
		f.Close()
		m.logger.Warn("cue file not decodable", zap.String("path", m.cfg.CueFile), zap.Error(err))
		return
	}
	defer streamer.Close()

	m.speakerOnce.Do(func() {
		m.speakerRate = format.SampleRate
		m.speakerErr = speaker.Init(format.SampleRate, format.SampleRate.N(time.Second/10))
	})
	if m.speakerErr != nil {
		m.logger.Warn("speaker unavailable", zap.Error(m.speakerErr))
		return
	}

	var s beep.Streamer = streamer
	if format.SampleRate != m.speakerRate {
		s = beep.Resample(4, format.SampleRate, m.speakerRate, streamer)
	}
	done := make(chan struct{})
	speaker.Play(beep.Seq(s, beep.Callback(func() { close(done) })))
	select {
	case <-done:
	case <-ctx.Done():
		speaker.Clear()
	}
}

func (m *Mic) dump(pcm []float32) {
	if m.cfg.DumpDir == "" {
		return
	}
	path := filepath.Join(m.cfg.DumpDir, fmt.Sprintf("utterance_%d.wav", time.Now().UnixNano()))
	if err := WriteWAV(path, pcm); err != nil {
		m.logger.Warn("utterance dump failed", zap.String("path", path), zap.Error(err))
		return
	}
	m.logger.Debug("utterance saved", zap.String("path", path))
}

func (m *Mic) Close() error {
	err := m.transcriber.Close()
	if termErr := portaudio.Terminate(); termErr != nil && err == nil {
		err = termErr
	}
	return err
}
