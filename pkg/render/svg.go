package render

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"strconv"

	svg "github.com/ajstarks/svgo"
)

const (
	tickSize    = 6
	tickSpacing = 80 // px per x tick
	rowSpacing  = 50 // px per y tick
	axisFont    = `font-size="10"`
	axisInk     = `fill="currentColor"`
	surfaceCSS  = `style="max-width: 100%; height: auto; height: intrinsic;"`
)

// WriteSVG writes the surface as a standalone SVG document.
func (v *View) WriteSVG(w io.Writer) error {
	_, err := w.Write(v.SVG())
	return err
}

// SVG returns the surface as a standalone SVG document.
func (v *View) SVG() []byte {
	v.mu.RLock()
	fills := append([]Color(nil), v.fills...)
	v.mu.RUnlock()

	var buf bytes.Buffer
	canvas := svg.New(&buf)
	width, height := v.cfg.width, v.cfg.height
	canvas.Start(int(math.Round(width)), int(math.Round(height)),
		fmt.Sprintf(`id="%s"`, v.cfg.id),
		fmt.Sprintf(`viewBox="0 0 %s %s"`, num(width), num(height)),
		surfaceCSS)

	if v.cfg.showXAxis {
		v.writeXAxis(canvas)
	}
	if v.cfg.showYAxis {
		v.writeYAxis(canvas)
	}
	if len(v.cfg.links) > 0 {
		v.writeLinks(canvas)
	}
	v.writeMarkers(canvas, fills)

	canvas.End()
	return buf.Bytes()
}

func (v *View) writeXAxis(canvas *svg.SVG) {
	m := v.cfg.margins
	y := v.cfg.height - m.Bottom
	canvas.Gtransform(fmt.Sprintf("translate(0,%s)", num(y)))
	canvas.Group(`class="x-axis"`, axisInk, axisFont, `text-anchor="middle"`)
	canvas.Line(px(m.Left), 0, px(v.cfg.width-m.Right), 0, `stroke="currentColor"`)
	for _, t := range v.xScale.Ticks(int(v.cfg.width / tickSpacing)) {
		x := px(v.xScale.Map(t))
		canvas.Line(x, 0, x, tickSize, `stroke="currentColor"`)
		canvas.Text(x, tickSize+3, tickLabel(t), `dy="0.71em"`)
	}
	if v.cfg.xLabel != "" {
		canvas.Text(px(v.cfg.width-m.Right), px(m.Bottom-4), v.cfg.xLabel, `text-anchor="end"`)
	}
	canvas.Gend()
	canvas.Gend()
}

func (v *View) writeYAxis(canvas *svg.SVG) {
	m := v.cfg.margins
	canvas.Gtransform(fmt.Sprintf("translate(%s,0)", num(m.Left)))
	canvas.Group(`class="y-axis"`, axisInk, axisFont, `text-anchor="end"`)
	canvas.Line(0, px(m.Top), 0, px(v.cfg.height-m.Bottom), `stroke="currentColor"`)
	for _, t := range v.yScale.Ticks(int(v.cfg.height / rowSpacing)) {
		y := px(v.yScale.Map(t))
		canvas.Line(-tickSize, y, 0, y, `stroke="currentColor"`)
		canvas.Text(-tickSize-3, y, tickLabel(t), `dy="0.32em"`)
	}
	if v.cfg.yLabel != "" {
		canvas.Text(px(-m.Left), px(m.Top-8), v.cfg.yLabel, `text-anchor="start"`)
	}
	canvas.Gend()
	canvas.Gend()
}

func (v *View) writeLinks(canvas *svg.SVG) {
	canvas.Group(`class="links"`,
		fmt.Sprintf(`stroke="%s"`, v.cfg.linkStroke),
		fmt.Sprintf(`stroke-width="%s"`, num(v.cfg.linkWidth)),
		fmt.Sprintf(`stroke-opacity="%s"`, num(v.cfg.linkOpacity)))
	for _, l := range v.cfg.links {
		a, b := v.centers[l.Source], v.centers[l.Target]
		fmt.Fprintf(canvas.Writer, `<line x1="%s" y1="%s" x2="%s" y2="%s"/>`+"\n",
			num(a.X), num(a.Y), num(b.X), num(b.Y))
	}
	canvas.Gend()
}

func (v *View) writeMarkers(canvas *svg.SVG, fills []Color) {
	canvas.Group(`class="markers"`,
		fmt.Sprintf(`stroke="%s"`, v.cfg.stroke),
		fmt.Sprintf(`stroke-width="%s"`, num(v.cfg.strokeWidth)))
	for i, c := range v.centers {
		fmt.Fprintf(canvas.Writer, `<circle data-index="%d" cx="%s" cy="%s" r="%s" fill="%s"/>`+"\n",
			i, num(c.X), num(c.Y), num(v.radii[i]), fills[i])
	}
	canvas.Gend()
}

func px(f float64) int { return int(math.Round(f)) }

// num formats a coordinate with at most two decimals.
func num(f float64) string { return strconv.FormatFloat(math.Round(f*100)/100, 'f', -1, 64) }

func tickLabel(t float64) string { return fmt.Sprintf("%.6g", t) }
