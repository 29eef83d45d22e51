package motion

import (
	"errors"
	"testing"
)

func TestParsePosition(t *testing.T) {
	tests := []struct {
		in      string
		anchor  anchor
		value   float64
		label   string
		percent bool
		ofChild bool
	}{
		{"", anchorEnd, 0, "", false, false},
		{"2.5", anchorAbsolute, 2.5, "", false, false},
		{"-1", anchorAbsolute, -1, "", false, false},
		{"+=1", anchorEnd, 1, "", false, false},
		{"-=0.5", anchorEnd, -0.5, "", false, false},
		{"intro", anchorLabel, 0, "intro", false, false},
		{"intro+=2", anchorLabel, 2, "intro", false, false},
		{"intro-=2", anchorLabel, -2, "intro", false, false},
		{"<", anchorRecentStart, 0, "", false, false},
		{">", anchorRecentEnd, 0, "", false, false},
		{"<0.5", anchorRecentStart, 0.5, "", false, false},
		{">-1", anchorRecentEnd, -1, "", false, false},
		{"<+=0.5", anchorRecentStart, 0.5, "", false, false},
		{"<50%", anchorRecentStart, 50, "", true, false},
		{"<+=50%", anchorRecentStart, 50, "", true, true},
		{"+=25%", anchorEnd, 25, "", true, true},
	}

	for _, tt := range tests {
		p, err := ParsePosition(tt.in)
		if err != nil {
			t.Errorf("%q: unexpected error %v", tt.in, err)
			continue
		}
		if p.anchor != tt.anchor || p.value != tt.value || p.label != tt.label ||
			p.percent != tt.percent || p.ofChild != tt.ofChild {
			t.Errorf("%q: got %+v", tt.in, p)
		}
	}
}

func TestParsePositionErrors(t *testing.T) {
	for _, in := range []string{"=5", "*=2", "<abc", "+=abc", "intro+=", "a%b"} {
		if _, err := ParsePosition(in); !errors.Is(err, ErrBadPosition) {
			t.Errorf("%q: expected ErrBadPosition, got %v", in, err)
		}
	}
}

func TestResolvePosition(t *testing.T) {
	tests := []struct {
		pos  string
		want float64
	}{
		{"", 5},
		{"1", 1},
		{"+=1", 6},
		{"-=1", 4},
		{"<", 2},
		{">", 5},
		{"<0.5", 2.5},
		{">-1", 4},
		{"<+=0.5", 2.5},
		{"mid", 1},
		{"mid+=2", 3},
		{"<50%", 3.5},
		{"<+=50%", 2.5},
		{"+=50%", 5.5},
		{"fresh", 5},
	}

	for _, tt := range tests {
		e, _ := newTestEngine(t)
		tl := e.Timeline(TimelineOptions{Paused: true})
		tl.To(&box{}, Props{"X": 1}, TweenOptions{Duration: 3}, At(2))
		tl.AddLabel("mid", At(1))

		tw := tl.To(&box{}, Props{"X": 1}, TweenOptions{Duration: 1}, Pos(tt.pos))
		if got := tw.StartTime(); got != tt.want {
			t.Errorf("%q: expected start %v, got %v", tt.pos, tt.want, got)
		}
	}
}

func TestResolveCreatesMissingLabel(t *testing.T) {
	e, _ := newTestEngine(t)
	tl := e.Timeline(TimelineOptions{Paused: true})
	tl.To(&box{}, Props{"X": 1}, TweenOptions{Duration: 2}, End())
	tl.To(&box{}, Props{"X": 1}, TweenOptions{Duration: 1}, Pos("outro+=1"))

	if at, ok := tl.LabelTime("outro"); !ok || at != 2 {
		t.Errorf("expected label outro at 2, got %v %v", at, ok)
	}
}

func TestBadPositionAppends(t *testing.T) {
	e, diags := newTestEngine(t)
	tl := e.Timeline(TimelineOptions{Paused: true})
	tl.To(&box{}, Props{"X": 1}, TweenOptions{Duration: 2}, End())

	tw := tl.To(&box{}, Props{"X": 1}, TweenOptions{Duration: 1}, Pos("*=2"))
	if tw.StartTime() != 2 {
		t.Errorf("expected append at 2, got %v", tw.StartTime())
	}
	found := false
	for _, err := range *diags {
		if errors.Is(err, ErrBadPosition) {
			found = true
		}
	}
	if !found {
		t.Error("expected a bad position diagnostic")
	}
}
