// Package tui shows the linked views in a terminal. Markers are braille
// dots; dragging with the left mouse button draws a lasso.
package tui

import (
	"context"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/lassoview/internal/scene"
	"github.com/matzehuels/lassoview/pkg/data"
	"github.com/matzehuels/lassoview/pkg/errors"
	"github.com/matzehuels/lassoview/pkg/geom"
	"github.com/matzehuels/lassoview/pkg/lasso"
	"github.com/matzehuels/lassoview/pkg/render"
	"github.com/matzehuels/lassoview/pkg/selection"
)

const (
	headerLines = 1
	footerLines = 2
)

// Marker area inside a pane, in braille dots.
var paneMargins = render.Margins{Top: 4, Right: 3, Bottom: 4, Left: 3}

// Options configures a [Model].
type Options struct {
	Title       string
	Scene       scene.Options
	MinDistance float64
	Logger      *log.Logger
}

type pane struct {
	id   string
	view *render.View
	x, y int // first inner cell on screen
	w, h int // inner size in cells
}

func (p *pane) contains(x, y int) bool {
	return x >= p.x && x < p.x+p.w && y >= p.y && y < p.y+p.h
}

// micro maps a screen cell to the dot at the center of that cell.
func (p *pane) micro(x, y int) geom.Point {
	return geom.Pt(float64((x-p.x)*2+1), float64((y-p.y)*4+2))
}

type networkMsg struct {
	view *render.View
	err  error
}

// Model is the bubbletea model.
type Model struct {
	sc     *scene.Scene
	opts   Options
	logger *log.Logger
	help   help.Model

	width, height int
	panes         []*pane
	group         *selection.Group
	active        string // surface with a gesture in progress

	network    *render.View
	networkErr error
	sel        *selectionState
}

// selectionState is shared by every copy of the model so coordinator
// callbacks can update it.
type selectionState struct {
	mask   lasso.Mask
	status string
}

// New creates a model for sc.
func New(sc *scene.Scene, opts Options) Model {
	if opts.Logger == nil {
		opts.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if opts.Title == "" {
		opts.Title = "lassoview"
	}
	return Model{
		sc:     sc,
		opts:   opts,
		logger: opts.Logger,
		help:   help.New(),
		sel:    &selectionState{status: fmt.Sprintf("%d records", len(sc.Records))},
	}
}

// Init waits for the network layout.
func (m Model) Init() tea.Cmd {
	if !m.sc.NetworkEnabled() {
		return nil
	}
	sc := m.sc
	return func() tea.Msg {
		v, err := sc.Wait(context.Background())
		return networkMsg{view: v, err: err}
	}
}

// Update handles window, key, mouse and layout messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.relayout()
	case networkMsg:
		if msg.err != nil {
			m.networkErr = msg.err
			m.logger.Warn("network view unavailable", "err", msg.err)
		} else {
			m.network = msg.view
		}
		m.relayout()
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Cancel):
			if m.group != nil {
				m.group.CancelAll()
			}
			m.active = ""
		case key.Matches(msg, keys.Reset):
			if m.group != nil {
				m.group.CancelAll()
				m.active = ""
				if err := m.group.Coordinator().Reset(); err != nil {
					m.sel.status = errors.UserMessage(err)
				}
			}
		case key.Matches(msg, keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		}
	case tea.MouseMsg:
		m.mouse(msg)
	}
	return m, nil
}

func (m *Model) mouse(msg tea.MouseMsg) {
	if m.group == nil {
		return
	}
	p := m.paneAt(msg.X, msg.Y)
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft || p == nil {
			return
		}
		m.active = p.id
		m.dispatch(p.id, lasso.EventPress, p.micro(msg.X, msg.Y))
	case tea.MouseActionMotion:
		if m.active == "" {
			return
		}
		if p == nil || p.id != m.active {
			m.dispatch(m.active, lasso.EventLeave, geom.Point{})
			m.active = ""
			return
		}
		m.dispatch(p.id, lasso.EventMove, p.micro(msg.X, msg.Y))
	case tea.MouseActionRelease:
		if m.active == "" {
			return
		}
		if p == nil || p.id != m.active {
			m.dispatch(m.active, lasso.EventLeave, geom.Point{})
		} else {
			m.dispatch(p.id, lasso.EventRelease, p.micro(msg.X, msg.Y))
		}
		m.active = ""
	}
}

func (m *Model) dispatch(id string, kind lasso.EventKind, pt geom.Point) {
	if err := m.group.Dispatch(id, lasso.Event{Kind: kind, Point: pt}); err != nil {
		m.logger.Debug("dispatch", "surface", id, "err", err)
	}
}

func (m *Model) paneAt(x, y int) *pane {
	for _, p := range m.panes {
		if p.contains(x, y) {
			return p
		}
	}
	return nil
}

// relayout sizes the panes to the window and rebuilds their views and the
// selection group. The last selection is carried over.
func (m *Model) relayout() {
	m.panes, m.group, m.active = nil, nil, ""
	ids := []string{scene.ScatterID}
	if m.network != nil {
		ids = append(ids, scene.NetworkID)
	}
	n := len(ids)
	outerW := (m.width - (n - 1)) / n
	innerW, innerH := outerW-2, m.height-headerLines-footerLines-2
	if innerW < 4 || innerH < 2 {
		return
	}

	views := make([]*render.View, 0, n)
	for i, id := range ids {
		v, err := m.buildView(id, innerW, innerH)
		if err != nil {
			m.sel.status = errors.UserMessage(err)
			return
		}
		views = append(views, v)
		m.panes = append(m.panes, &pane{id: id, view: v, x: i*(outerW+1) + 1, y: headerLines + 1, w: innerW, h: innerH})
	}

	group, err := scene.Link(m.opts.Scene.Palette, m.opts.MinDistance, m.logger, views...)
	if err != nil {
		m.sel.status = errors.UserMessage(err)
		m.panes = nil
		return
	}
	m.group = group
	coord := group.Coordinator()
	if m.sel.mask.Any() {
		_, _ = coord.Apply("", m.sel.mask)
	}
	sel := m.sel
	coord.OnApplied(func(res selection.Result) {
		sel.mask = res.Mask
		sel.status = fmt.Sprintf("%d of %d selected", res.Mask.Count(), len(res.Mask))
	})
}

func (m *Model) buildView(id string, w, h int) (*render.View, error) {
	size := []render.Option{
		render.WithID(id),
		render.WithSize(float64(w*2), float64(h*4)),
		render.WithMargins(paneMargins),
		render.WithAxes(false, false),
		render.WithFill(render.Constant(m.opts.Scene.Palette.Reset)),
	}
	if id == scene.ScatterID {
		return render.New(m.sc.Records, append(append([]render.Option(nil), m.opts.Scene.Scatter...), size...)...)
	}
	opts := []render.Option{
		render.WithX(data.Field("x")),
		render.WithY(data.Field("y")),
		render.WithLinks(m.network.Links()),
	}
	return render.New(m.network.Records(), append(opts, size...)...)
}

// View renders the header, the panes and the footer.
func (m Model) View() string {
	if m.width == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.opts.Title))
	b.WriteString(dimStyle.Render("  " + m.networkStatus()))
	b.WriteByte('\n')

	if len(m.panes) == 0 {
		b.WriteString(dimStyle.Render("window too small"))
	} else {
		boxes := make([]string, 0, 2*len(m.panes))
		for i, p := range m.panes {
			if i > 0 {
				boxes = append(boxes, " ")
			}
			boxes = append(boxes, boxStyle.Render(m.renderPane(p)))
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, boxes...))
	}
	b.WriteByte('\n')
	b.WriteString(m.sel.status)
	b.WriteByte('\n')
	b.WriteString(m.help.View(keys))
	return b.String()
}

func (m Model) networkStatus() string {
	switch {
	case !m.sc.NetworkEnabled():
		return "scatterplot"
	case m.networkErr != nil:
		return errorStyle.Render("network unavailable: " + errors.UserMessage(m.networkErr))
	case m.network == nil:
		return "scatterplot · laying out network..."
	default:
		return "scatterplot · network"
	}
}

func (m Model) renderPane(p *pane) string {
	c := newCanvas(p.w, p.h)
	pts := p.view.Points()
	for _, l := range p.view.Links() {
		a, b := pts[l.Source], pts[l.Target]
		c.line(round(a.X), round(a.Y), round(b.X), round(b.Y), linkInk)
	}
	for _, mk := range p.view.Markers() {
		x, y := round(mk.Center.X), round(mk.Center.Y)
		col := string(mk.Fill)
		c.dot(x, y, col)
		c.dot(x+1, y, col)
		c.dot(x, y+1, col)
		c.dot(x+1, y+1, col)
	}
	if m.active == p.id && m.group != nil {
		if ctrl, ok := m.group.Controller(p.id); ok {
			path := ctrl.Path()
			for i := 1; i < len(path); i++ {
				c.line(round(path[i-1].X), round(path[i-1].Y), round(path[i].X), round(path[i].Y), trailInk)
			}
		}
	}
	return c.render()
}

func round(f float64) int { return int(math.Round(f)) }

// Run starts the program on the alternate screen with mouse motion.
func Run(ctx context.Context, sc *scene.Scene, opts Options) error {
	p := tea.NewProgram(New(sc, opts), tea.WithContext(ctx), tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "run terminal ui")
	}
	return nil
}
