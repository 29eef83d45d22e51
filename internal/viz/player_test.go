package viz

import (
	"errors"
	"io"
	"log"
	"math"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	. "github.com/onsi/gomega"

	"github.com/san-kum/tempo/internal/config"
	"github.com/san-kum/tempo/internal/scene"
	"github.com/san-kum/tempo/pkg/motion"
	"github.com/san-kum/tempo/pkg/ticker"
)

const slide = `name: slide
objects:
  box: {x: 0, fill: "#000000"}
timeline:
  labels: {mid: 1}
  steps:
    - {op: to, target: box, props: {x: 100}, duration: 2, ease: none}
`

type stepClock struct{ now time.Time }

func (c *stepClock) Now() time.Time { return c.now }

type harness struct {
	clock *stepClock
	loads int
	fail  error
}

func (h *harness) load() (*scene.Stage, error) {
	h.loads++
	if h.fail != nil {
		return nil, h.fail
	}
	sc, err := scene.Parse([]byte(slide))
	if err != nil {
		return nil, err
	}
	e := motion.New(motion.DefaultConfig(),
		motion.WithLogger(log.New(io.Discard, "", 0)),
		motion.WithTicker(ticker.New(ticker.DefaultConfig(), h.clock)),
	)
	return scene.Build(e, sc, nil)
}

func newHarness(t *testing.T) (*Player, *harness) {
	t.Helper()
	h := &harness{clock: &stepClock{now: time.Unix(0, 0)}}
	p, err := NewPlayer(config.DefaultConfig().Player, h.load, nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(p.Close)
	return p, h
}

func (h *harness) frame(p *Player, d time.Duration) {
	h.clock.now = h.clock.now.Add(d)
	p.Update(TickMsg(h.clock.now))
}

func press(p *Player, key string) tea.Cmd {
	var msg tea.KeyMsg
	switch key {
	case " ":
		msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "tab":
		msg = tea.KeyMsg{Type: tea.KeyTab}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	_, cmd := p.Update(msg)
	return cmd
}

func boxX(p *Player) float64 {
	x, _ := p.Stage().Object("box").Property("x")
	return x
}

func TestPlayerAdvancesWithTicker(t *testing.T) {
	g := NewWithT(t)
	p, h := newHarness(t)

	h.frame(p, 250*time.Millisecond)
	g.Expect(boxX(p)).To(BeNumerically("~", 12.5, 1e-6))

	h.frame(p, 250*time.Millisecond)
	g.Expect(boxX(p)).To(BeNumerically("~", 25, 1e-6))
	g.Expect(p.History("box.x")).To(HaveLen(2))
	g.Expect(p.History("box.missing")).To(BeNil())
}

func TestPlayerPause(t *testing.T) {
	g := NewWithT(t)
	p, h := newHarness(t)

	h.frame(p, 250*time.Millisecond)
	press(p, " ")
	h.frame(p, 250*time.Millisecond)
	g.Expect(boxX(p)).To(BeNumerically("~", 12.5, 1e-6))
	g.Expect(p.View()).To(ContainSubstring("PAUSED"))

	press(p, " ")
	h.frame(p, 250*time.Millisecond)
	g.Expect(boxX(p)).To(BeNumerically("~", 25, 1e-6))
}

func TestPlayerSeekAndLabels(t *testing.T) {
	g := NewWithT(t)
	p, _ := newHarness(t)
	press(p, " ")

	press(p, "l")
	g.Expect(boxX(p)).To(BeNumerically("~", 50, 1e-6))
	g.Expect(p.Stage().Timeline.CurrentLabel()).To(Equal("mid"))

	_, _ = p.Update(tea.KeyMsg{Type: tea.KeyRight})
	g.Expect(p.Stage().Timeline.Time()).To(BeNumerically("~", 1+seekStep, 1e-6))

	_, _ = p.Update(tea.KeyMsg{Type: tea.KeyLeft})
	_, _ = p.Update(tea.KeyMsg{Type: tea.KeyLeft})
	g.Expect(p.Stage().Timeline.Time()).To(BeNumerically("~", 1-seekStep, 1e-6))

	press(p, "l")
	g.Expect(boxX(p)).To(BeNumerically("~", 50, 1e-6))
}

func TestPlayerSpeedAndDirection(t *testing.T) {
	p, _ := newHarness(t)
	tl := p.Stage().Timeline

	press(p, "]")
	if tl.TimeScale() != 2 {
		t.Errorf("expected time scale 2, got %v", tl.TimeScale())
	}
	for i := 0; i < 10; i++ {
		press(p, "[")
	}
	if tl.TimeScale() != minTimeScale {
		t.Errorf("expected time scale clamped to %v, got %v", minTimeScale, tl.TimeScale())
	}

	press(p, "<")
	if !tl.Reversed() {
		t.Error("expected the timeline to play backwards")
	}
	if math.Abs(tl.TimeScale()) != minTimeScale {
		t.Errorf("reversing changed the speed: %v", tl.TimeScale())
	}
}

func TestPlayerRestart(t *testing.T) {
	g := NewWithT(t)
	p, h := newHarness(t)

	h.frame(p, 250*time.Millisecond)
	h.frame(p, 250*time.Millisecond)
	press(p, "r")
	g.Expect(boxX(p)).To(Equal(0.0))
	g.Expect(p.History("box.x")).To(BeEmpty())
}

func TestPlayerThemeCycle(t *testing.T) {
	p, _ := newHarness(t)
	first := p.Theme().Name
	press(p, "t")
	if p.Theme().Name == first {
		t.Errorf("theme did not change from %s", first)
	}
	for range len(Themes) - 1 {
		press(p, "t")
	}
	if p.Theme().Name != first {
		t.Errorf("expected to wrap back to %s, got %s", first, p.Theme().Name)
	}
}

func TestPlayerQuit(t *testing.T) {
	p, _ := newHarness(t)
	cmd := press(p, "q")
	if cmd == nil {
		t.Fatal("expected a quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

func TestPlayerReload(t *testing.T) {
	g := NewWithT(t)
	p, h := newHarness(t)
	old := p.Stage()

	p.Update(ReloadMsg("scenes/slide.yaml"))
	g.Expect(h.loads).To(Equal(2))
	g.Expect(p.Stage()).NotTo(BeIdenticalTo(old))
	g.Expect(old.Timeline.Killed()).To(BeTrue())
	g.Expect(p.Err()).NotTo(HaveOccurred())

	h.fail = errors.New("bad yaml")
	current := p.Stage()
	p.Update(ReloadMsg("scenes/slide.yaml"))
	g.Expect(p.Err()).To(MatchError(ContainSubstring("bad yaml")))
	g.Expect(p.Stage()).To(BeIdenticalTo(current))
	g.Expect(current.Timeline.Killed()).To(BeFalse())
}

func TestPlayerView(t *testing.T) {
	p, h := newHarness(t)
	h.frame(p, 250*time.Millisecond)
	h.frame(p, 250*time.Millisecond)

	view := p.View()
	for _, want := range []string{"box", "fill", "Q:Quit"} {
		if !strings.Contains(view, want) {
			t.Errorf("view is missing %q", want)
		}
	}
}
