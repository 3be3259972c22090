// Package tess triangulates flattened outlines under a fill rule.
//
// Simple polygons (one contour, no self-intersections) are triangulated in
// place: convex ones as a fan and the rest by ear clipping, so the output
// reuses the input points and has exactly n-2 triangles.
//
// Everything else goes through a scanline trapezoid decomposition. Every
// vertex y and every edge intersection y becomes an event; between two
// events no edges cross, so sorting the edges that span a band by their x
// at mid-band and accumulating winding numbers yields the inside spans
// exactly. Each span is a trapezoid emitted as one or two triangles. The
// triangles never overlap and leave no gaps, under both even-odd and
// nonzero rules.
package tess
