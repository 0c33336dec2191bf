// Package locator finds named UI components on screen by OCR anchor text
// or by template matching against reference images.
package locator

import (
	"context"
	"fmt"
	"image"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/mj1618/desktop-agent/internal/config"
	"github.com/mj1618/desktop-agent/internal/model"
	"github.com/mj1618/desktop-agent/internal/platform"
	"go.uber.org/zap"
)

// Strategies a component may be located by.
const (
	StrategyOCR      = "ocr"
	StrategyTemplate = "template"
)

// Match describes where a component was found.
type Match struct {
	Component string
	Target    model.ScreenTarget
	Box       image.Rectangle
	Score     float64
	Source    string // anchor text or reference image path
}

// Locator resolves component names to screen coordinates.
type Locator struct {
	frames     *FrameCache
	ocr        Engine
	components map[string]config.ComponentConfig
	scale      float64
	interval   time.Duration
	logger     *zap.Logger

	mu        sync.Mutex
	templates map[string]image.Image
}

// New creates a locator that captures frames from screen.
func New(screen platform.Screenshotter, ocr Engine, cfg config.LocatorConfig, logger *zap.Logger) *Locator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Locator{
		frames:     NewFrameCache(screen, cfg.FrameTTL),
		ocr:        ocr,
		components: cfg.Components,
		scale:      cfg.MatchScale,
		interval:   cfg.Interval,
		logger:     logger,
		templates:  make(map[string]image.Image),
	}
}

// Components returns the configured component names, sorted.
func (l *Locator) Components() []string {
	names := make([]string, 0, len(l.components))
	for name := range l.components {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has reports whether name is a configured component.
func (l *Locator) Has(name string) bool {
	_, ok := l.components[name]
	return ok
}

// Frame returns the current (possibly cached) screen frame.
func (l *Locator) Frame() (*Frame, error) {
	return l.frames.Frame()
}

// Locate makes a single attempt to find the component. Errors are logged
// and reported as not found.
func (l *Locator) Locate(ctx context.Context, name string) (model.ScreenTarget, bool) {
	m, ok := l.Find(ctx, name)
	return m.Target, ok
}

// Find is like Locate but returns the full match.
func (l *Locator) Find(ctx context.Context, name string) (Match, bool) {
	comp, ok := l.components[name]
	if !ok {
		l.logger.Warn("unknown component", zap.String("component", name))
		return Match{}, false
	}
	m, ok, err := l.find(ctx, name, comp)
	if err != nil {
		l.logger.Error("locate failed", zap.String("component", name), zap.Error(err))
		return Match{}, false
	}
	if ok {
		l.logger.Debug("component found",
			zap.String("component", name),
			zap.Int("x", m.Target.X),
			zap.Int("y", m.Target.Y),
			zap.Float64("score", m.Score),
		)
	}
	return m, ok
}

// Wait polls for the component until its configured timeout elapses.
func (l *Locator) Wait(ctx context.Context, name string) (model.ScreenTarget, bool) {
	timeout := 15 * time.Second
	if comp, ok := l.components[name]; ok && comp.Timeout > 0 {
		timeout = comp.Timeout
	}
	t, ok := Poll(ctx, timeout, l.interval, func(ctx context.Context) (model.ScreenTarget, bool) {
		return l.Locate(ctx, name)
	})
	if !ok {
		l.logger.Warn("component not found before timeout",
			zap.String("component", name), zap.Duration("timeout", timeout))
	}
	return t, ok
}

func (l *Locator) find(ctx context.Context, name string, comp config.ComponentConfig) (Match, bool, error) {
	frame, err := l.frames.Frame()
	if err != nil {
		return Match{}, false, err
	}
	switch comp.Strategy {
	case StrategyOCR:
		return l.findText(ctx, name, comp, frame)
	case StrategyTemplate:
		return l.findTemplate(name, comp, frame)
	}
	return Match{}, false, fmt.Errorf("unknown strategy %q", comp.Strategy)
}

func (l *Locator) findText(ctx context.Context, name string, comp config.ComponentConfig, frame *Frame) (Match, bool, error) {
	if l.ocr == nil {
		return Match{}, false, fmt.Errorf("no OCR engine configured")
	}
	words, err := l.ocr.Words(ctx, frame.Raw)
	if err != nil {
		return Match{}, false, err
	}
	w, ok := FindAnchor(words, comp.Anchor)
	if !ok {
		return Match{}, false, nil
	}
	return Match{
		Component: name,
		Target:    w.Origin().Offset(comp.OffsetX, comp.OffsetY),
		Box:       image.Rect(w.Left, w.Top, w.Left+w.Width, w.Top+w.Height),
		Score:     w.Confidence / 100,
		Source:    w.Text,
	}, true, nil
}

func (l *Locator) findTemplate(name string, comp config.ComponentConfig, frame *Frame) (Match, bool, error) {
	for _, path := range comp.Templates {
		tmpl, err := l.template(path)
		if err != nil {
			l.logger.Debug("skipping reference image", zap.String("path", path), zap.Error(err))
			continue
		}
		tm, ok := MatchTemplate(frame.Image, tmpl, l.scale)
		if !ok || tm.Score < comp.Threshold {
			continue
		}
		c := tm.Box.Min.Add(tm.Box.Size().Div(2))
		return Match{
			Component: name,
			Target:    model.ScreenTarget{X: c.X, Y: c.Y},
			Box:       tm.Box,
			Score:     tm.Score,
			Source:    path,
		}, true, nil
	}
	return Match{}, false, nil
}

// template loads and caches a decoded reference image.
func (l *Locator) template(path string) (image.Image, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if img, ok := l.templates[path]; ok {
		return img, nil
	}
	f, err := os.Open(config.ExpandPath(path))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	l.templates[path] = img
	return img, nil
}
