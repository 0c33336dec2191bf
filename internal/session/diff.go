package session

import (
	"fmt"
	"strings"
)

// Change is one field that differs between two states.
type Change struct {
	Field string `yaml:"field" json:"field"`
	From  string `yaml:"from"  json:"from"`
	To    string `yaml:"to"    json:"to"`
}

func (c Change) String() string {
	return fmt.Sprintf("%s: %s -> %s", c.Field, c.From, c.To)
}

// Diff compares two states and returns the changed fields in a fixed order.
func Diff(prev, curr State) []Change {
	var changes []Change
	add := func(field, from, to string) {
		if from != to {
			changes = append(changes, Change{Field: field, From: from, To: to})
		}
	}
	add("browser_open", fmt.Sprint(prev.BrowserOpen), fmt.Sprint(curr.BrowserOpen))
	add("terminal_open", fmt.Sprint(prev.TerminalOpen), fmt.Sprint(curr.TerminalOpen))
	add("spotify_active", fmt.Sprint(prev.SpotifyActive), fmt.Sprint(curr.SpotifyActive))
	add("open_tabs", listString(prev.OpenTabs), listString(curr.OpenTabs))
	add("recent_websites", listString(prev.RecentWebsites), listString(curr.RecentWebsites))
	add("last_volume", volumeString(prev.LastVolume), volumeString(curr.LastVolume))
	return changes
}

func listString(l []string) string {
	return "[" + strings.Join(l, ", ") + "]"
}

func volumeString(v *int) string {
	if v == nil {
		return "unset"
	}
	return fmt.Sprint(*v)
}
