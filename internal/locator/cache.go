package locator

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"sync"
	"time"

	"github.com/mj1618/desktop-agent/internal/platform"
)

// Frame is one captured screen image.
type Frame struct {
	Image    image.Image
	Raw      []byte
	Captured time.Time
}

// FrameCache provides a TTL-based cache for the most recent screen capture,
// so several lookups within one poll tick share a single screenshot.
type FrameCache struct {
	mu     sync.Mutex
	screen platform.Screenshotter
	ttl    time.Duration
	now    func() time.Time
	last   *Frame
}

// NewFrameCache creates a new cache. A ttl of 0 disables caching.
func NewFrameCache(screen platform.Screenshotter, ttl time.Duration) *FrameCache {
	return &FrameCache{screen: screen, ttl: ttl, now: time.Now}
}

// Frame returns the cached frame if within TTL, otherwise captures fresh.
func (c *FrameCache) Frame() (*Frame, error) {
	c.mu.Lock()
	if c.ttl > 0 && c.last != nil && c.now().Sub(c.last.Captured) < c.ttl {
		f := c.last
		c.mu.Unlock()
		return f, nil
	}
	c.mu.Unlock()

	if c.screen == nil {
		return nil, fmt.Errorf("screen capture not available on this platform")
	}
	raw, err := c.screen.CaptureScreen(platform.ScreenshotOptions{Format: "png"})
	if err != nil {
		return nil, fmt.Errorf("capture screen: %w", err)
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode screenshot: %w", err)
	}
	f := &Frame{Image: img, Raw: raw, Captured: c.now()}

	c.mu.Lock()
	c.last = f
	c.mu.Unlock()
	return f, nil
}

// Invalidate drops the cached frame.
func (c *FrameCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.last = nil
}
