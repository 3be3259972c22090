package path

// Edge is a directed line segment from P0 to P1.
type Edge struct {
	P0, P1 Point
}

// EdgeIter walks the edges of flattened contours without ever joining two
// different contours. Zero-length edges are skipped.
type EdgeIter struct {
	contours   []Contour
	forceClose bool
	ci, pi     int
}

// NewEdgeIter iterates contours. With forceClose, open contours also get
// their closing edge, as filling requires.
func NewEdgeIter(contours []Contour, forceClose bool) *EdgeIter {
	return &EdgeIter{contours: contours, forceClose: forceClose}
}

// Next returns the next edge, or false when done.
func (it *EdgeIter) Next() (Edge, bool) {
	for it.ci < len(it.contours) {
		c := it.contours[it.ci]
		n := len(c.Points)
		last := n - 1
		if c.Closed || it.forceClose {
			last = n
		}
		if n < 2 || it.pi >= last {
			it.ci++
			it.pi = 0
			continue
		}
		p0 := c.Points[it.pi]
		p1 := c.Points[(it.pi+1)%n]
		it.pi++
		if p0 == p1 {
			continue
		}
		return Edge{P0: p0, P1: p1}, true
	}
	return Edge{}, false
}
