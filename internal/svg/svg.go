// Package svg renders a session's live geometry into an SVG document for
// the `svg/dump` route (spec.md §4.7). Grounded on original_source's
// `crates/executor/src/svg.rs`: same two-pass bounds-then-scale
// algorithm, same three CSS classes, same viewBox padding, re-expressed
// against github.com/ajstarks/svgo instead of the `svg` crate.
package svg

import (
	"bytes"
	"fmt"
	"math"

	ajsvg "github.com/ajstarks/svgo"

	"github.com/kotfind/geomserver/internal/graph"
	"github.com/kotfind/geomserver/internal/types"
)

const (
	strokeWidth    = 1.0
	ptRadius       = 4.0
	viewboxPadding = 10.0

	ptClass   = "pt"
	lineClass = "line"
	circClass = "circ"
)

// bounds is (minX, minY, maxX, maxY); present reports whether any
// boundable value has been folded in yet, since an empty scope has no
// natural bounds.
type bounds struct {
	minX, minY, maxX, maxY float64
	present                bool
}

func (b bounds) extend(x, y float64) bounds {
	if !b.present {
		return bounds{x, y, x, y, true}
	}
	return bounds{
		minX:    math.Min(b.minX, x),
		minY:    math.Min(b.minY, y),
		maxX:    math.Max(b.maxX, x),
		maxY:    math.Max(b.maxY, y),
		present: true,
	}
}

// Render walks every bound name in s and produces the SVG document
// string for the session's current geometry.
func Render(s *graph.ExecScope) string {
	values := collectValues(s)
	bnds, scale := boundsAndScale(values)

	var buf bytes.Buffer
	doc := ajsvg.New(&buf)

	vbMinX := scale*bnds.minX - viewboxPadding
	vbMinY := scale*bnds.minY - viewboxPadding
	vbWid := scale*(bnds.maxX-bnds.minX) + 2*viewboxPadding
	vbHei := scale*(bnds.maxY-bnds.minY) + 2*viewboxPadding

	doc.Startview(int(math.Round(vbWid)), int(math.Round(vbHei)),
		int(math.Round(vbMinX)), int(math.Round(vbMinY)),
		int(math.Round(vbWid)), int(math.Round(vbHei)))
	doc.Style("text/css", style())

	for _, v := range values {
		populate(doc, v, scale)
	}

	doc.End()
	return buf.String()
}

func collectValues(s *graph.ExecScope) []types.Value {
	var out []types.Value
	for _, name := range s.Names() {
		n, ok := s.GetNode(name)
		if !ok {
			continue
		}
		out = append(out, n.GetValue())
	}
	return out
}

// boundsAndScale mirrors get_bounds_and_scale: fold every drawable
// value's extent, then pick a scale that maps the smaller non-zero
// dimension of that extent to 1000 units. An empty scene gets a zero-size
// bounding box at the origin; when both dimensions are zero (empty or
// pointlike scene) the dimension used is 1, so the scale is 1000.
func boundsAndScale(values []types.Value) (bounds, float64) {
	var b bounds
	for _, v := range values {
		b = updateBounds(v, b)
	}
	if !b.present {
		b = bounds{0, 0, 0, 0, true}
	}

	wid := b.maxX - b.minX
	hei := b.maxY - b.minY

	res := math.Inf(1)
	for _, d := range []float64{wid, hei} {
		if d != 0 && d < res {
			res = d
		}
	}
	if math.IsInf(res, 1) {
		res = 1.0
	}

	return b, 1000.0 / res
}

func updateBounds(v types.Value, b bounds) bounds {
	if !v.Present() {
		return b
	}
	switch v.Type() {
	case types.Pt:
		return ptBounds(v.AsPt(), b)
	case types.Line:
		l := v.AsLine()
		b = ptBounds(l.P1, b)
		return ptBounds(l.P2, b)
	case types.Circ:
		c := v.AsCirc()
		b = ptBounds(c.O, b)
		b = ptBounds(types.PtVal{X: c.O.X + c.R, Y: c.O.Y}, b)
		b = ptBounds(types.PtVal{X: c.O.X - c.R, Y: c.O.Y}, b)
		b = ptBounds(types.PtVal{X: c.O.X, Y: c.O.Y + c.R}, b)
		return ptBounds(types.PtVal{X: c.O.X, Y: c.O.Y - c.R}, b)
	default:
		return b
	}
}

func ptBounds(p types.PtVal, b bounds) bounds {
	return b.extend(p.X, p.Y)
}

func populate(doc *ajsvg.SVG, v types.Value, scale float64) {
	if !v.Present() {
		return
	}
	switch v.Type() {
	case types.Pt:
		drawPt(doc, v.AsPt(), scale)
	case types.Line:
		drawLine(doc, v.AsLine(), scale)
	case types.Circ:
		drawCirc(doc, v.AsCirc(), scale)
	}
}

// drawPt renders a point as a zero-length, round-capped line, same trick
// the original uses (an SvgLine from a point to itself, styled by the
// `.pt` class's line-cap).
func drawPt(doc *ajsvg.SVG, p types.PtVal, scale float64) {
	x := round(scale * p.X)
	y := round(scale * p.Y)
	doc.Line(x, y, x, y, classAttr(ptClass))
}

func drawLine(doc *ajsvg.SVG, l types.LineVal, scale float64) {
	doc.Line(
		round(scale*l.P1.X), round(scale*l.P1.Y),
		round(scale*l.P2.X), round(scale*l.P2.Y),
		classAttr(lineClass),
	)
}

func drawCirc(doc *ajsvg.SVG, c types.CircVal, scale float64) {
	doc.Circle(round(scale*c.O.X), round(scale*c.O.Y), round(scale*c.R), classAttr(circClass))
}

func round(f float64) int { return int(math.Round(f)) }

func classAttr(class string) string { return fmt.Sprintf(`class="%s"`, class) }

func style() string {
	return fmt.Sprintf(`
.%s {
	fill: black;
	stroke: black;
	stroke-width: %g;
	stroke-linecap: round;
}

.%s {
	fill: black;
	stroke: black;
	stroke-width: %g;
	stroke-linecap: round;
}

.%s {
	fill: none;
	stroke: black;
	stroke-width: %g;
}
`, lineClass, strokeWidth, ptClass, ptRadius, circClass, strokeWidth)
}
