package agent

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/mj1618/desktop-agent/internal/voice"
)

// Input yields one user command per call. It returns io.EOF when no more
// input will arrive.
type Input interface {
	Read(ctx context.Context) (string, error)
	Close() error
}

type line struct {
	text string
	err  error
}

// TextInput reads commands line by line, printing a prompt before each.
type TextInput struct {
	r      io.Reader
	out    io.Writer
	prompt string

	once  sync.Once
	lines chan line
	done  chan struct{}
}

// NewTextInput reads from r and writes the prompt to out.
func NewTextInput(r io.Reader, out io.Writer, prompt string) *TextInput {
	return &TextInput{
		r:      r,
		out:    out,
		prompt: prompt,
		lines:  make(chan line),
		done:   make(chan struct{}),
	}
}

// Read waits for the next line. A blocked read is abandoned when ctx ends.
func (t *TextInput) Read(ctx context.Context) (string, error) {
	t.once.Do(func() { go t.scan() })
	if t.prompt != "" {
		fmt.Fprint(t.out, t.prompt)
	}
	select {
	case l, ok := <-t.lines:
		if !ok {
			return "", io.EOF
		}
		return l.text, l.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (t *TextInput) scan() {
	defer close(t.lines)
	sc := bufio.NewScanner(t.r)
	for sc.Scan() {
		select {
		case t.lines <- line{text: sc.Text()}:
		case <-t.done:
			return
		}
	}
	if err := sc.Err(); err != nil {
		select {
		case t.lines <- line{err: err}:
		case <-t.done:
		}
	}
}

// Close stops delivering lines. A scanner blocked in the underlying reader
// exits once that read returns.
func (t *TextInput) Close() error {
	select {
	case <-t.done:
	default:
		close(t.done)
	}
	return nil
}

// VoiceInput reads commands from a microphone listener.
type VoiceInput struct {
	listener voice.Listener
}

func NewVoiceInput(l voice.Listener) *VoiceInput { return &VoiceInput{listener: l} }

func (v *VoiceInput) Read(ctx context.Context) (string, error) { return v.listener.Listen(ctx) }

func (v *VoiceInput) Close() error { return v.listener.Close() }
