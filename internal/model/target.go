package model

import (
	"fmt"
	"strconv"
	"strings"
)

// ScreenTarget is an absolute pixel coordinate on the primary display.
type ScreenTarget struct {
	X int `yaml:"x" json:"x"`
	Y int `yaml:"y" json:"y"`
}

func (t ScreenTarget) String() string {
	return fmt.Sprintf("(%d, %d)", t.X, t.Y)
}

// Offset returns t shifted by dx, dy.
func (t ScreenTarget) Offset(dx, dy int) ScreenTarget {
	return ScreenTarget{X: t.X + dx, Y: t.Y + dy}
}

// ParseTarget parses an "x,y" coordinate pair.
func ParseTarget(s string) (ScreenTarget, bool) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return ScreenTarget{}, false
	}
	x, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return ScreenTarget{}, false
	}
	y, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return ScreenTarget{}, false
	}
	return ScreenTarget{X: x, Y: y}, true
}

// Word is one OCR token with its bounding box in screen pixels.
type Word struct {
	Text       string  `yaml:"text"       json:"text"`
	Left       int     `yaml:"left"       json:"left"`
	Top        int     `yaml:"top"        json:"top"`
	Width      int     `yaml:"width"      json:"width"`
	Height     int     `yaml:"height"     json:"height"`
	Confidence float64 `yaml:"confidence" json:"confidence"`
}

// Origin is the top-left corner of the word's box.
func (w Word) Origin() ScreenTarget {
	return ScreenTarget{X: w.Left, Y: w.Top}
}
