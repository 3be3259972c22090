package nae

import "math"

const (
	minCircleSegments = 8
	maxCircleSegments = 1024
)

// kappa places cubic control points for a quarter circle.
const kappa = 0.5522847498

// Rect fills an axis-aligned rectangle.
func (d *Draw) Rect(x, y, w, h float64) {
	d.mustRecord("Draw.Rect")
	d.pushGeometry(d.tess.FillPolygon(d.rectPoints(x, y, w, h), NonZero))
}

// StrokeRect outlines a rectangle with mitered corners.
func (d *Draw) StrokeRect(x, y, w, h, lineWidth float64) {
	d.mustRecord("Draw.StrokeRect")
	d.pushGeometry(d.tess.StrokePolyline(d.rectPoints(x, y, w, h), true, d.strokeOptions(lineWidth)))
}

// Circle fills a circle.
func (d *Draw) Circle(x, y, radius float64) {
	d.mustRecord("Draw.Circle")
	d.pushGeometry(d.tess.FillPolygon(d.ellipsePoints(x, y, radius, radius), NonZero))
}

// StrokeCircle outlines a circle.
func (d *Draw) StrokeCircle(x, y, radius, lineWidth float64) {
	d.mustRecord("Draw.StrokeCircle")
	d.pushGeometry(d.tess.StrokePolyline(d.ellipsePoints(x, y, radius, radius), true, d.strokeOptions(lineWidth)))
}

// Ellipse fills an axis-aligned ellipse centred on (x, y).
func (d *Draw) Ellipse(x, y, rx, ry float64) {
	d.mustRecord("Draw.Ellipse")
	d.pushGeometry(d.tess.FillPolygon(d.ellipsePoints(x, y, rx, ry), NonZero))
}

// StrokeEllipse outlines an axis-aligned ellipse.
func (d *Draw) StrokeEllipse(x, y, rx, ry, lineWidth float64) {
	d.mustRecord("Draw.StrokeEllipse")
	d.pushGeometry(d.tess.StrokePolyline(d.ellipsePoints(x, y, rx, ry), true, d.strokeOptions(lineWidth)))
}

// Triangle fills the triangle (x1,y1) (x2,y2) (x3,y3).
func (d *Draw) Triangle(x1, y1, x2, y2, x3, y3 float64) {
	d.mustRecord("Draw.Triangle")
	d.points = append(d.points[:0], Pt(x1, y1), Pt(x2, y2), Pt(x3, y3))
	d.pushGeometry(d.tess.FillPolygon(d.points, NonZero))
}

// StrokeTriangle outlines a triangle.
func (d *Draw) StrokeTriangle(x1, y1, x2, y2, x3, y3, lineWidth float64) {
	d.mustRecord("Draw.StrokeTriangle")
	d.points = append(d.points[:0], Pt(x1, y1), Pt(x2, y2), Pt(x3, y3))
	d.pushGeometry(d.tess.StrokePolyline(d.points, true, d.strokeOptions(lineWidth)))
}

// Line draws a butt-capped segment.
func (d *Draw) Line(x1, y1, x2, y2, lineWidth float64) {
	d.mustRecord("Draw.Line")
	d.points = append(d.points[:0], Pt(x1, y1), Pt(x2, y2))
	d.pushGeometry(d.tess.StrokePolyline(d.points, false, d.strokeOptions(lineWidth)))
}

// Polygon fills an arbitrary polygon under the nonzero rule.
func (d *Draw) Polygon(points []Point) {
	d.mustRecord("Draw.Polygon")
	d.pushGeometry(d.tess.FillPolygon(points, NonZero))
}

// Polyline strokes an open polyline.
func (d *Draw) Polyline(points []Point, lineWidth float64) {
	d.mustRecord("Draw.Polyline")
	d.pushGeometry(d.tess.StrokePolyline(points, false, d.strokeOptions(lineWidth)))
}

// RoundedRect fills a rectangle whose corners are quarter circles of the
// given radius, clamped to half the shorter side.
func (d *Draw) RoundedRect(x, y, w, h, radius float64) {
	d.mustRecord("Draw.RoundedRect")
	opts := DefaultFillOptions().WithFillRule(NonZero).WithTolerance(d.localTolerance(DefaultTolerance))
	d.pushGeometry(d.tess.Fill(roundedRectSegments(x, y, w, h, radius), opts))
}

// StrokeRoundedRect outlines a rounded rectangle.
func (d *Draw) StrokeRoundedRect(x, y, w, h, radius, lineWidth float64) {
	d.mustRecord("Draw.StrokeRoundedRect")
	d.pushGeometry(d.tess.Stroke(roundedRectSegments(x, y, w, h, radius), true, d.strokeOptions(lineWidth)))
}

func (d *Draw) strokeOptions(lineWidth float64) StrokeOptions {
	return DefaultStrokeOptions().
		WithLineWidth(lineWidth).
		WithTolerance(d.localTolerance(DefaultTolerance))
}

func (d *Draw) rectPoints(x, y, w, h float64) []Point {
	d.points = append(d.points[:0], Pt(x, y), Pt(x+w, y), Pt(x+w, y+h), Pt(x, y+h))
	return d.points
}

func (d *Draw) ellipsePoints(cx, cy, rx, ry float64) []Point {
	n := d.circleSegments(math.Max(math.Abs(rx), math.Abs(ry)))
	d.points = d.points[:0]
	step := 2 * math.Pi / float64(n)
	for i := 0; i < n; i++ {
		sin, cos := math.Sincos(step * float64(i))
		d.points = append(d.points, Pt(cx+rx*cos, cy+ry*sin))
	}
	return d.points
}

// circleSegments returns how many chords keep a circle of radius r within
// the circle tolerance once transformed.
func (d *Draw) circleSegments(r float64) int {
	return circleSegments(r*d.transform.Current().MaxScale(), d.opts.circleTolerance)
}

func circleSegments(r, tol float64) int {
	if r <= tol {
		return minCircleSegments
	}
	n := int(math.Ceil(math.Pi / math.Acos(1-tol/r)))
	return max(minCircleSegments, min(maxCircleSegments, n))
}

func roundedRectSegments(x, y, w, h, r float64) []Segment {
	r = math.Max(0, math.Min(r, math.Min(math.Abs(w), math.Abs(h))/2))
	if r == 0 {
		return []Segment{
			Straight{Pt(x, y), Pt(x+w, y)},
			Straight{Pt(x+w, y), Pt(x+w, y+h)},
			Straight{Pt(x+w, y+h), Pt(x, y+h)},
		}
	}
	k := kappa * r
	return []Segment{
		Straight{Pt(x+r, y), Pt(x+w-r, y)},
		Cubic{Pt(x+w-r, y), Pt(x+w-r+k, y), Pt(x+w, y+r-k), Pt(x+w, y+r)},
		Straight{Pt(x+w, y+r), Pt(x+w, y+h-r)},
		Cubic{Pt(x+w, y+h-r), Pt(x+w, y+h-r+k), Pt(x+w-r+k, y+h), Pt(x+w-r, y+h)},
		Straight{Pt(x+w-r, y+h), Pt(x+r, y+h)},
		Cubic{Pt(x+r, y+h), Pt(x+r-k, y+h), Pt(x, y+h-r+k), Pt(x, y+h-r)},
		Straight{Pt(x, y+h-r), Pt(x, y+r)},
		Cubic{Pt(x, y+r), Pt(x, y+r-k), Pt(x+r-k, y), Pt(x+r, y)},
	}
}
