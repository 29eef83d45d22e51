package viz

import (
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/tempo/internal/config"
	"github.com/san-kum/tempo/internal/scene"
)

const (
	seekStep     = 0.25
	minTimeScale = 0.125
	maxTimeScale = 8
	graphHeight  = 6
)

type TickMsg time.Time

// ReloadMsg carries the path of a changed scene file.
type ReloadMsg string

// Loader builds a fresh stage, each on its own engine.
type Loader func() (*scene.Stage, error)

// Player plays a stage in real time. Every frame ticks the stage engine's
// ticker, which renders the engine's root timeline.
type Player struct {
	cfg     config.PlayerConfig
	load    Loader
	changes <-chan string
	stage   *scene.Stage
	styles  styles

	channels []scene.Channel
	index    map[string]int
	history  [][]float64
	selected int

	status string
	err    error
	width  int
}

// NewPlayer loads the first stage and starts its timeline. When changes
// is not nil every path received on it rebuilds the stage.
func NewPlayer(cfg config.PlayerConfig, load Loader, changes <-chan string) (*Player, error) {
	st, err := load()
	if err != nil {
		return nil, err
	}
	p := &Player{
		cfg:     cfg,
		load:    load,
		changes: changes,
		styles:  newStyles(GetTheme(cfg.Theme)),
		width:   80,
	}
	p.attach(st)
	return p, nil
}

func (p *Player) attach(st *scene.Stage) {
	p.stage = st
	p.channels = st.Channels()
	p.index = make(map[string]int, len(p.channels))
	for i, c := range p.channels {
		p.index[c.String()] = i
	}
	p.history = make([][]float64, len(p.channels))
	if p.selected >= len(p.channels) {
		p.selected = 0
	}
	st.Timeline.Play()
}

// Stage is the stage currently playing.
func (p *Player) Stage() *scene.Stage { return p.stage }

// Theme is the active color theme.
func (p *Player) Theme() Theme { return p.styles.theme }

// History returns the recorded values of one channel, oldest first.
func (p *Player) History(channel string) []float64 {
	i, ok := p.index[channel]
	if !ok {
		return nil
	}
	return p.history[i]
}

// Err is the last reload error, cleared by a successful reload.
func (p *Player) Err() error { return p.err }

// Close stops the current stage and detaches its engine.
func (p *Player) Close() {
	p.stage.Close()
	p.stage.Engine.Close()
}

func (p *Player) Init() tea.Cmd {
	return tea.Batch(p.tick(), p.waitForChange())
}

func (p *Player) tick() tea.Cmd {
	fps := p.cfg.FPS
	if fps <= 0 {
		fps = config.DefaultFPS
	}
	return tea.Tick(time.Second/time.Duration(fps), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (p *Player) waitForChange() tea.Cmd {
	if p.changes == nil {
		return nil
	}
	ch := p.changes
	return func() tea.Msg {
		path, ok := <-ch
		if !ok {
			return nil
		}
		return ReloadMsg(path)
	}
}

func (p *Player) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return p, p.handleKey(msg)
	case tea.WindowSizeMsg:
		p.width = msg.Width
	case TickMsg:
		p.step()
		return p, p.tick()
	case ReloadMsg:
		p.reload(string(msg))
		return p, p.waitForChange()
	}
	return p, nil
}

func (p *Player) handleKey(msg tea.KeyMsg) tea.Cmd {
	tl := p.stage.Timeline
	switch msg.String() {
	case "q", "ctrl+c":
		return tea.Quit
	case " ":
		if tl.Paused() {
			tl.Resume()
			p.status = "resumed"
		} else {
			tl.Pause()
			p.status = "paused"
		}
	case "r":
		tl.Restart(false)
		p.clearHistory()
		p.status = "restarted"
	case "left":
		p.seek(-seekStep)
	case "right":
		p.seek(seekStep)
	case "[":
		p.scaleBy(0.5)
	case "]":
		p.scaleBy(2)
	case "<":
		tl.SetReversed(!tl.Reversed())
		if tl.Reversed() {
			p.status = "reversed"
		} else {
			p.status = "forward"
		}
	case "l":
		p.nextLabel()
	case "tab":
		if len(p.channels) > 0 {
			p.selected = (p.selected + 1) % len(p.channels)
		}
	case "t":
		p.styles = newStyles(NextTheme(p.styles.theme.Name))
		p.status = "theme " + p.styles.theme.Name
	}
	return nil
}

func (p *Player) step() {
	p.stage.Engine.Ticker().Tick(true)
	p.record()
}

func (p *Player) record() {
	limit := p.cfg.History
	if limit <= 0 {
		limit = config.DefaultHistory
	}
	for i, c := range p.channels {
		v, _ := p.stage.Read(c)
		h := append(p.history[i], v)
		if len(h) > limit {
			h = h[len(h)-limit:]
		}
		p.history[i] = h
	}
}

func (p *Player) clearHistory() {
	for i := range p.history {
		p.history[i] = p.history[i][:0]
	}
}

func (p *Player) seek(d float64) {
	tl := p.stage.Timeline
	t := math.Max(0, math.Min(tl.TotalTime()+d, tl.TotalDuration()))
	tl.Seek(t)
	p.status = fmt.Sprintf("seek %.2fs", t)
}

func (p *Player) scaleBy(f float64) {
	tl := p.stage.Timeline
	s := math.Abs(tl.TimeScale()) * f
	if s == 0 {
		s = 1
	}
	s = math.Max(minTimeScale, math.Min(s, maxTimeScale))
	if tl.Reversed() {
		s = -s
	}
	tl.SetTimeScale(s)
	p.status = fmt.Sprintf("speed x%g", math.Abs(s))
}

func (p *Player) nextLabel() {
	tl := p.stage.Timeline
	name, ok := tl.NextLabel(tl.Time())
	if !ok {
		name, ok = tl.NextLabel(math.Inf(-1))
	}
	if !ok {
		p.status = "no labels"
		return
	}
	if err := tl.SeekLabel(name); err != nil {
		p.err = err
		return
	}
	p.status = "label " + name
}

func (p *Player) reload(path string) {
	st, err := p.load()
	if err != nil {
		p.err = fmt.Errorf("reload %s: %w", filepath.Base(path), err)
		return
	}
	p.Close()
	p.err = nil
	p.attach(st)
	p.status = "reloaded " + filepath.Base(path)
}

func (p *Player) View() string {
	s := p.styles
	t := s.theme
	tl := p.stage.Timeline

	var b strings.Builder
	name := p.stage.Scene.Name
	if name == "" {
		name = "scene"
	}
	b.WriteString(GradientText(strings.ToUpper(name), t.From, t.To))
	if d := p.stage.Scene.Description; d != "" {
		b.WriteString("  " + s.muted.Render(d))
	}
	b.WriteString("\n\n")

	b.WriteString(p.stateLine() + "\n")
	b.WriteString(ProgressBar(tl.Progress(), 40, t))
	b.WriteString(s.value.Render(fmt.Sprintf(" %5.1f%%", tl.Progress()*100)) + "\n\n")

	panels := make([]string, 0, len(p.stage.Objects()))
	for _, o := range p.stage.Objects() {
		panels = append(panels, p.objectPanel(o))
	}
	if len(panels) > 0 {
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, panels...) + "\n")
	}

	if len(p.channels) > 0 {
		c := p.channels[p.selected]
		if h := p.history[p.selected]; len(h) > 1 {
			w := max(20, min(p.width-12, len(h)))
			b.WriteString(s.graph.Render(PlotSeries(h, c.String(), w, graphHeight)) + "\n")
		}
	}

	if p.err != nil {
		b.WriteString(s.err.Render("error: "+p.err.Error()) + "\n")
	}
	b.WriteString(Separator(40, t) + "\n")
	b.WriteString(s.help.Render("SP:Pause R:Restart ←→:Seek [ ]:Speed <:Reverse\nL:Label Tab:Graph T:Theme Q:Quit"))
	return b.String()
}

func (p *Player) stateLine() string {
	s := p.styles
	tl := p.stage.Timeline

	var state string
	switch {
	case tl.Paused():
		state = s.paused.Render("PAUSED")
	case !tl.IsActive():
		state = s.muted.Render("IDLE")
	case tl.Reversed():
		state = s.playing.Render("REVERSE")
	default:
		state = s.playing.Render("PLAYING")
	}

	line := fmt.Sprintf("%s  %s  %s",
		state,
		s.value.Render(fmt.Sprintf("%.2fs / %.2fs", tl.Time(), tl.Duration())),
		s.muted.Render(fmt.Sprintf("x%g", math.Abs(tl.TimeScale()))),
	)
	if it := tl.Iteration(); it > 1 {
		line += s.muted.Render(fmt.Sprintf("  pass %d", it))
	}
	if label := tl.CurrentLabel(); label != "" {
		line += "  " + s.active.Render("@"+label)
	}
	if p.status != "" {
		line += "  " + s.muted.Render(p.status)
	}
	return line
}

func (p *Player) objectPanel(o *scene.Object) string {
	s := p.styles
	var b strings.Builder
	b.WriteString(s.title.Render(o.Name) + "\n")
	for _, k := range o.Keys() {
		v, _ := o.Value(k)
		key := scene.Channel{Object: o.Name, Property: k}.String()
		line := s.label.Render(k) + s.value.Render(formatValue(v))
		if i, ok := p.index[key]; ok {
			style := s.muted
			if i == p.selected {
				style = s.active
			}
			line += " " + style.Render(Sparkline(p.history[i], 12))
		}
		b.WriteString(line + "\n")
	}
	return s.panel.Render(strings.TrimRight(b.String(), "\n"))
}

func formatValue(v any) string {
	switch x := v.(type) {
	case float64:
		return fmt.Sprintf("%10s", strconv.FormatFloat(x, 'f', 2, 64))
	case string:
		return fmt.Sprintf("%10s", x)
	}
	return fmt.Sprint(v)
}

// Run plays p full screen until the user quits.
func Run(p *Player) error {
	defer p.Close()
	_, err := tea.NewProgram(p, tea.WithAltScreen()).Run()
	return err
}
