// Package stroke expands polylines into fill outlines.
//
// Each polyline is offset by half the stroke width on both sides. The
// outline walks the forward offset, the end cap, the reversed backward
// offset and the start cap. Inner sides of joins pass through the join
// point itself, so every loop in the outline has the same orientation and
// a nonzero fill of the result covers exactly the stroked area.
//
// Closed polylines produce two contours (outer ring and inner ring with
// opposite direction) and no caps.
//
// The construction follows kurbo's stroke expander: joins are skipped when
// the turn is below 2*tolerance/width, miters fall back to bevels past the
// miter limit, and round joins and caps are emitted as polyline arcs whose
// chord error stays below the tolerance.
package stroke
