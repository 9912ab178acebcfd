package tui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/lassoview/internal/scene"
	"github.com/matzehuels/lassoview/pkg/data"
	"github.com/matzehuels/lassoview/pkg/lasso"
	"github.com/matzehuels/lassoview/pkg/layout"
	"github.com/matzehuels/lassoview/pkg/render"
	"github.com/matzehuels/lassoview/pkg/selection"
)

func TestCanvasDot(t *testing.T) {
	tests := []struct {
		x, y int
		want rune
	}{
		{0, 0, '⠁'},
		{1, 0, '⠈'},
		{0, 3, '⡀'},
		{1, 3, '⢀'},
	}
	for _, tt := range tests {
		c := newCanvas(1, 1)
		c.dot(tt.x, tt.y, "#ffffff")
		if got := []rune(c.runes()[0])[0]; got != tt.want {
			t.Errorf("dot(%d,%d) = %q, want %q", tt.x, tt.y, got, tt.want)
		}
	}

	c := newCanvas(1, 1)
	c.dot(5, 5, "#ffffff")
	c.dot(-1, 0, "#ffffff")
	if c.runes()[0] != " " {
		t.Errorf("off-canvas dots drawn: %q", c.runes()[0])
	}
}

func TestCanvasLine(t *testing.T) {
	c := newCanvas(2, 1)
	c.line(0, 0, 3, 0, "#ffffff")
	if got := c.runes()[0]; got != "⠉⠉" {
		t.Errorf("horizontal line = %q", got)
	}
	c = newCanvas(1, 1)
	c.line(0, 0, 0, 3, "#ffffff")
	if got := c.runes()[0]; got != "⡇" {
		t.Errorf("vertical line = %q", got)
	}
}

func diagonal(n int) []data.Record {
	out := make([]data.Record, n)
	for i := range out {
		out[i] = data.Record{"x": float64(i), "y": float64(i)}
	}
	return out
}

func newModel(t *testing.T, engine layout.Engine) Model {
	t.Helper()
	sc, err := scene.Build(context.Background(), diagonal(6), scene.Options{
		Palette: selection.DefaultPalette, Engine: engine, Links: 3, Seed: 1,
	})
	if err != nil {
		t.Fatal(err)
	}
	m := New(sc, Options{Scene: scene.Options{Palette: selection.DefaultPalette}})
	if cmd := m.Init(); cmd != nil {
		next, _ := m.Update(cmd())
		m = next.(Model)
	}
	next, _ := m.Update(tea.WindowSizeMsg{Width: 60, Height: 20})
	return next.(Model)
}

func send(m Model, msgs ...tea.Msg) Model {
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

// around returns a gesture circling the whole inner area of p.
func around(p *pane) []tea.Msg {
	l, r, top, bot := p.x, p.x+p.w-1, p.y, p.y+p.h-1
	return []tea.Msg{
		tea.MouseMsg{X: l, Y: top, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft},
		tea.MouseMsg{X: r, Y: top, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft},
		tea.MouseMsg{X: r, Y: bot, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft},
		tea.MouseMsg{X: l, Y: bot, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft},
		tea.MouseMsg{X: l, Y: bot, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft},
	}
}

func allFills(t *testing.T, m Model, want render.Color) {
	t.Helper()
	for _, p := range m.panes {
		for i, f := range p.view.Fills() {
			if f != want {
				t.Errorf("%s[%d] = %s, want %s", p.id, i, f, want)
			}
		}
	}
}

func TestModel_Layout(t *testing.T) {
	m := newModel(t, layout.Spring{Seed: 1})
	if len(m.panes) != 2 {
		t.Fatalf("panes = %d, want 2", len(m.panes))
	}
	a, b := m.panes[0], m.panes[1]
	if a.id != scene.ScatterID || b.id != scene.NetworkID {
		t.Errorf("pane ids = %s, %s", a.id, b.id)
	}
	if a.x+a.w >= b.x {
		t.Errorf("panes overlap: %+v %+v", *a, *b)
	}
	out := m.View()
	if !strings.Contains(out, "lassoview") || !strings.Contains(out, "6 records") {
		t.Errorf("view missing header or status:\n%s", out)
	}
}

func TestModel_Lasso(t *testing.T) {
	m := newModel(t, layout.Spring{Seed: 1})
	p := selection.DefaultPalette

	m = send(m, around(m.panes[0])...)
	allFills(t, m, p.Highlight)
	if !strings.Contains(m.View(), "6 of 6 selected") {
		t.Error("status should count the selection")
	}

	// The selection survives a resize.
	m = send(m, tea.WindowSizeMsg{Width: 80, Height: 24})
	allFills(t, m, p.Highlight)

	m = send(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})
	allFills(t, m, p.Reset)
}

func TestModel_CancelAndLeave(t *testing.T) {
	m := newModel(t, nil)
	if len(m.panes) != 1 {
		t.Fatalf("panes = %d, want 1", len(m.panes))
	}
	pn := m.panes[0]
	press := tea.MouseMsg{X: pn.x, Y: pn.y, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}
	move := tea.MouseMsg{X: pn.x + pn.w - 1, Y: pn.y, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft}

	m = send(m, press, move)
	ctrl, _ := m.group.Controller(scene.ScatterID)
	if ctrl.State() != lasso.Drawing {
		t.Fatalf("state = %s, want drawing", ctrl.State())
	}
	m = send(m, tea.KeyMsg{Type: tea.KeyEsc})
	if ctrl.State() != lasso.Idle || m.active != "" {
		t.Errorf("esc should cancel the gesture")
	}

	outside := tea.MouseMsg{X: 0, Y: 0, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft}
	m = send(m, press, move, outside)
	if ctrl.State() != lasso.Idle {
		t.Errorf("leaving the pane should cancel the gesture")
	}
	allFills(t, m, selection.DefaultPalette.Reset)
}

func TestModel_TooSmall(t *testing.T) {
	m := newModel(t, nil)
	m = send(m, tea.WindowSizeMsg{Width: 5, Height: 4})
	if len(m.panes) != 0 || !strings.Contains(m.View(), "too small") {
		t.Error("tiny window should show a notice")
	}
}
