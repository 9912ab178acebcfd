package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// dotBits maps a micro-pixel within a cell (2 wide, 4 tall) to its braille
// bit.
var dotBits = [2][4]uint8{
	{0x01, 0x02, 0x04, 0x40},
	{0x08, 0x10, 0x20, 0x80},
}

// canvas is a braille buffer with one color per cell. The last dot drawn
// into a cell decides its color.
type canvas struct {
	w, h  int // in cells
	mask  [][]uint8
	color [][]string
}

func newCanvas(w, h int) *canvas {
	c := &canvas{w: w, h: h, mask: make([][]uint8, h), color: make([][]string, h)}
	for i := range c.mask {
		c.mask[i] = make([]uint8, w)
		c.color[i] = make([]string, w)
	}
	return c
}

// dot sets the micro-pixel (mx, my). Points off the canvas are ignored.
func (c *canvas) dot(mx, my int, color string) {
	if mx < 0 || my < 0 {
		return
	}
	cx, cy := mx/2, my/4
	if cx >= c.w || cy >= c.h {
		return
	}
	c.mask[cy][cx] |= dotBits[mx%2][my%4]
	c.color[cy][cx] = color
}

// line draws from (x0, y0) to (x1, y1) with Bresenham's algorithm.
func (c *canvas) line(x0, y0, x1, y1 int, color string) {
	dx := abs(x1 - x0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	dy := -abs(y1 - y0)
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx + dy
	for {
		c.dot(x0, y0, color)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// runes returns the uncolored braille rows.
func (c *canvas) runes() []string {
	out := make([]string, c.h)
	for y := range c.mask {
		row := make([]rune, c.w)
		for x, m := range c.mask[y] {
			row[x] = cellRune(m)
		}
		out[y] = string(row)
	}
	return out
}

// render returns the rows with runs of equally colored cells styled
// together.
func (c *canvas) render() string {
	var b strings.Builder
	for y := range c.mask {
		if y > 0 {
			b.WriteByte('\n')
		}
		var run []rune
		cur := ""
		flush := func() {
			if len(run) == 0 {
				return
			}
			if cur == "" {
				b.WriteString(string(run))
			} else {
				b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(cur)).Render(string(run)))
			}
			run = run[:0]
		}
		for x, m := range c.mask[y] {
			color := c.color[y][x]
			if m == 0 {
				color = ""
			}
			if color != cur {
				flush()
				cur = color
			}
			run = append(run, cellRune(m))
		}
		flush()
	}
	return b.String()
}

func cellRune(m uint8) rune {
	if m == 0 {
		return ' '
	}
	return rune(0x2800 + int(m))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
