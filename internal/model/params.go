package model

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Params is the parameters payload of a plan step. Planners send either a
// string or a number; anything else is kept as its compact JSON text.
type Params struct {
	text  string
	num   float64
	isNum bool
	set   bool
}

// StringParams wraps a textual parameter.
func StringParams(s string) Params {
	return Params{text: s, set: true}
}

// NumberParams wraps a numeric parameter.
func NumberParams(n float64) Params {
	return Params{num: n, isNum: true, set: true, text: strconv.FormatFloat(n, 'f', -1, 64)}
}

// String returns the parameter as text. Numbers are rendered without a
// trailing ".0"; an absent parameter is "".
func (p Params) String() string {
	return p.text
}

// Number returns the numeric value of the parameter. A string parameter that
// is itself a number ("50", " 12.5 ") also counts.
func (p Params) Number() (float64, bool) {
	if p.isNum {
		return p.num, true
	}
	if !p.set {
		return 0, false
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(p.text), 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// IsNumber reports whether the planner sent a JSON number.
func (p Params) IsNumber() bool { return p.isNum }

// IsZero reports whether the parameter was absent or null.
func (p Params) IsZero() bool { return !p.set }

func (p *Params) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*p = Params{}
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*p = StringParams(s)
		return nil
	case '{', '[':
		var buf bytes.Buffer
		if err := json.Compact(&buf, data); err != nil {
			return err
		}
		*p = StringParams(buf.String())
		return nil
	}
	if n, err := strconv.ParseFloat(string(data), 64); err == nil {
		*p = NumberParams(n)
		return nil
	}
	*p = StringParams(string(data))
	return nil
}

func (p Params) MarshalJSON() ([]byte, error) {
	switch {
	case !p.set:
		return []byte("null"), nil
	case p.isNum:
		return []byte(strconv.FormatFloat(p.num, 'f', -1, 64)), nil
	default:
		return json.Marshal(p.text)
	}
}

func (p Params) MarshalYAML() (interface{}, error) {
	switch {
	case !p.set:
		return nil, nil
	case p.isNum:
		return p.num, nil
	default:
		return p.text, nil
	}
}
