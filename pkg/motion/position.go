package motion

import (
	"fmt"
	"strconv"
	"strings"
)

type anchor int

const (
	anchorEnd anchor = iota
	anchorAbsolute
	anchorLabel
	anchorRecentStart
	anchorRecentEnd
)

// Position places a child on a timeline. The zero value appends at the end.
//
// Textual positions are parsed once by ParsePosition:
//
//	"3"         absolute time 3
//	"+=1", "-=1" relative to the end of the timeline
//	"intro"     the label intro, created at the end when missing
//	"intro+=2"  relative to a label
//	"<", ">"    start or end of the most recently added child
//	"<0.5", ">-1", "<+=0.5"
//	"<50%"      offset as a percentage of the recent child's total duration
//	"<+=50%", "+=25%" offset as a percentage of the inserted child
type Position struct {
	anchor   anchor
	value    float64
	label    string
	percent  bool
	ofChild  bool
	source   string
	parseErr error
}

// End appends after the last child.
func End() Position { return Position{} }

// At is an absolute time.
func At(t float64) Position { return Position{anchor: anchorAbsolute, value: t} }

// Label is the time of a label; missing labels are created at the end.
func Label(name string) Position { return Position{anchor: anchorLabel, label: name} }

// Pos parses s, deferring any error to the moment the position is used;
// an invalid position is reported and falls back to End.
func Pos(s string) Position {
	p, err := ParsePosition(s)
	if err != nil {
		return Position{source: s, parseErr: err}
	}
	return p
}

// ParsePosition parses the position mini-language.
func ParsePosition(s string) (Position, error) {
	src := s
	s = strings.TrimSpace(s)
	if s == "" {
		return Position{source: src}, nil
	}
	bad := func(why string) (Position, error) {
		return Position{}, fmt.Errorf("%w: %q: %s", ErrBadPosition, src, why)
	}

	if s[0] == '<' || s[0] == '>' {
		p := Position{anchor: anchorRecentStart, source: src}
		if s[0] == '>' {
			p.anchor = anchorRecentEnd
		}
		rest := s[1:]
		hasEq := strings.Contains(rest, "=")
		rest = strings.Replace(rest, "=", "", 1)
		off, pct, err := parseOffset(rest)
		if err != nil {
			return bad(err.Error())
		}
		p.value, p.percent, p.ofChild = off, pct, pct && hasEq
		return p, nil
	}

	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return Position{anchor: anchorAbsolute, value: v, source: src}, nil
	}

	i := strings.IndexByte(s, '=')
	if i < 0 {
		if strings.ContainsAny(s, "<>%") {
			return bad("unexpected character in label")
		}
		return Position{anchor: anchorLabel, label: s, source: src}, nil
	}
	if i == 0 || (s[i-1] != '+' && s[i-1] != '-') {
		return bad("expected += or -=")
	}
	off, pct, err := parseOffset(s[i+1:])
	if err != nil || strings.TrimSpace(s[i+1:]) == "" {
		return bad("bad offset")
	}
	if s[i-1] == '-' {
		off = -off
	}
	p := Position{value: off, percent: pct, ofChild: pct, source: src}
	if i > 1 {
		p.anchor = anchorLabel
		p.label = strings.TrimSpace(s[:i-1])
	}
	return p, nil
}

func parseOffset(s string) (float64, bool, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false, nil
	}
	pct := strings.HasSuffix(s, "%")
	if pct {
		s = strings.TrimSpace(s[:len(s)-1])
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false, fmt.Errorf("offset %q is not a number", s)
	}
	return v, pct, nil
}

func (p Position) String() string {
	if p.source != "" {
		return p.source
	}
	switch p.anchor {
	case anchorAbsolute:
		return strconv.FormatFloat(p.value, 'f', -1, 64)
	case anchorLabel:
		return p.label
	}
	return "end"
}

// Err is the parse error of a position built with Pos.
func (p Position) Err() error { return p.parseErr }

// resolve turns p into a time on tl. child is the animation being inserted,
// or nil.
func (tl *Timeline) resolve(p Position, child animator) float64 {
	if p.parseErr != nil {
		tl.e.report(p.parseErr)
	}

	recent := tl.recent
	clipped := tl.Duration()
	if clipped >= tl.e.cfg.InfiniteDuration && recent != nil {
		clipped = recent.EndTime(false)
	}

	offset := func(base animator) float64 {
		if !p.percent {
			return p.value
		}
		if base == nil {
			return 0
		}
		return p.value / 100 * base.totalDuration()
	}

	switch p.anchor {
	case anchorAbsolute:
		return p.value
	case anchorRecentStart, anchorRecentEnd:
		base := recent
		if p.ofChild {
			base = child
		}
		off := offset(base)
		if recent == nil {
			return off
		}
		if p.anchor == anchorRecentStart {
			return recent.StartTime() + off
		}
		return recent.EndTime(recent.core().repeat >= 0) + off
	case anchorLabel:
		t, ok := tl.labels[p.label]
		if !ok {
			t = clipped
			tl.labels[p.label] = t
		}
		return t + offset(child)
	}
	return clipped + offset(child)
}
