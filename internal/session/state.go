// Package session tracks what the agent believes is open on the desktop and
// the recent conversation with the planner.
package session

import (
	"fmt"
	"strings"

	"github.com/mj1618/desktop-agent/internal/model"
	"github.com/mj1618/desktop-agent/internal/registry"
)

// maxRecentWebsites bounds State.RecentWebsites.
const maxRecentWebsites = 20

// State is the agent's belief about the desktop, derived from executed
// steps only.
type State struct {
	BrowserOpen    bool     `yaml:"browser_open"              json:"browser_open"`
	TerminalOpen   bool     `yaml:"terminal_open"             json:"terminal_open"`
	SpotifyActive  bool     `yaml:"spotify_active"            json:"spotify_active"`
	OpenTabs       []string `yaml:"open_tabs,omitempty"       json:"open_tabs,omitempty"`
	RecentWebsites []string `yaml:"recent_websites,omitempty" json:"recent_websites,omitempty"`
	LastVolume     *int     `yaml:"last_volume,omitempty"     json:"last_volume,omitempty"`
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	c := s
	c.OpenTabs = append([]string(nil), s.OpenTabs...)
	c.RecentWebsites = append([]string(nil), s.RecentWebsites...)
	if s.LastVolume != nil {
		v := *s.LastVolume
		c.LastVolume = &v
	}
	return c
}

// Summary renders the state as one human-readable line for the planner.
func (s State) Summary() string {
	var parts []string
	if s.BrowserOpen {
		parts = append(parts, "Web browser is currently open")
	}
	if s.TerminalOpen {
		parts = append(parts, "Terminal is currently open")
	}
	if s.SpotifyActive {
		parts = append(parts, "Spotify is currently active in browser")
	}
	if len(s.OpenTabs) > 0 {
		parts = append(parts, "Open browser tabs: "+strings.Join(s.OpenTabs, ", "))
	}
	if s.LastVolume != nil {
		parts = append(parts, fmt.Sprintf("System volume is set to %d%%", *s.LastVolume))
	}
	if n := len(s.RecentWebsites); n > 0 {
		recent := s.RecentWebsites
		if n > 3 {
			recent = recent[n-3:]
		}
		parts = append(parts, "Recently visited: "+strings.Join(recent, ", "))
	}
	if len(parts) == 0 {
		return "No applications or browser tabs are currently open."
	}
	return strings.Join(parts, " | ")
}

// Rules names the applications state tracking cares about.
type Rules struct {
	Browsers  []string
	Terminals []string
}

// Apply updates s from steps that actually succeeded. Step commands must
// already be canonical kind names.
func (s *State) Apply(steps []model.Step, rules Rules) {
	for _, step := range steps {
		param := strings.TrimSpace(step.Parameters.String())
		lower := strings.ToLower(param)

		switch registry.Kind(step.Command) {
		case registry.Type, registry.Shell:
			if strings.Contains(lower, "taskkill") || strings.Contains(lower, "pkill") {
				if mentions(lower, rules.Browsers) {
					s.closeBrowser()
				}
				if mentions(lower, rules.Terminals) {
					s.TerminalOpen = false
				}
				continue
			}
			if registry.Kind(step.Command) == registry.Type {
				s.opened(lower, rules)
			}
		case registry.Open:
			s.opened(lower, rules)
		case registry.Close:
			if isOneOf(lower, rules.Browsers) {
				s.closeBrowser()
			}
			if isOneOf(lower, rules.Terminals) {
				s.TerminalOpen = false
			}
		case registry.Website:
			if !strings.HasPrefix(lower, "https://") && !strings.HasPrefix(lower, "http://") {
				continue
			}
			s.OpenTabs = append(s.OpenTabs, param)
			s.RecentWebsites = append(s.RecentWebsites, param)
			if n := len(s.RecentWebsites); n > maxRecentWebsites {
				s.RecentWebsites = append([]string(nil), s.RecentWebsites[n-maxRecentWebsites:]...)
			}
			if strings.Contains(lower, "spotify.com") {
				s.SpotifyActive = true
			}
		case registry.Spotify:
			s.BrowserOpen = true
			s.SpotifyActive = true
		case registry.Volume:
			if n, ok := step.Parameters.Number(); ok && n >= 0 && n <= 100 {
				v := int(n)
				s.LastVolume = &v
			}
		}
	}
}

func (s *State) opened(name string, rules Rules) {
	if isOneOf(name, rules.Browsers) {
		s.BrowserOpen = true
	}
	if isOneOf(name, rules.Terminals) {
		s.TerminalOpen = true
	}
}

func (s *State) closeBrowser() {
	s.BrowserOpen = false
	s.OpenTabs = nil
	s.SpotifyActive = false
}

// isOneOf reports whether name is one of names, ignoring a trailing ".exe".
func isOneOf(name string, names []string) bool {
	name = strings.TrimSuffix(name, ".exe")
	for _, n := range names {
		if name == strings.ToLower(n) {
			return true
		}
	}
	return false
}

func mentions(text string, names []string) bool {
	for _, n := range names {
		if n != "" && strings.Contains(text, strings.ToLower(n)) {
			return true
		}
	}
	return false
}
