// Package planner turns a natural-language command into a Plan by asking a
// chat language model.
package planner

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/mj1618/desktop-agent/internal/config"
	"github.com/mj1618/desktop-agent/internal/model"
	"golang.org/x/net/proxy"
)

// Backend sends a chat transcript to a language model and returns the
// reply text.
type Backend interface {
	Name() string
	Complete(ctx context.Context, messages []model.Message) (string, error)
}

// NewBackend builds the backend selected by cfg.Mode.
func NewBackend(cfg config.PlannerConfig) (Backend, error) {
	httpClient, err := NewHTTPClient(cfg.Proxy, cfg.Timeout)
	if err != nil {
		return nil, err
	}
	switch cfg.Mode {
	case config.ModeLocal:
		return NewOllama(cfg.Local, httpClient)
	case config.ModeRemote:
		return NewRemote(cfg.Remote, httpClient)
	}
	return nil, fmt.Errorf("unknown planner mode %q", cfg.Mode)
}

// NewHTTPClient returns an HTTP client with the given timeout, dialing
// through a SOCKS5 proxy when socksAddr is set.
func NewHTTPClient(socksAddr string, timeout time.Duration) (*http.Client, error) {
	if socksAddr == "" {
		return &http.Client{Timeout: timeout}, nil
	}
	dialer, err := proxy.SOCKS5("tcp", socksAddr, nil, proxy.Direct)
	if err != nil {
		return nil, fmt.Errorf("socks proxy %s: %w", socksAddr, err)
	}
	transport := &http.Transport{
		DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			if cd, ok := dialer.(proxy.ContextDialer); ok {
				return cd.DialContext(ctx, network, addr)
			}
			return dialer.Dial(network, addr)
		},
	}
	return &http.Client{Transport: transport, Timeout: timeout}, nil
}
