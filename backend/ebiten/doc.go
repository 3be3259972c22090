// Package ebiten draws nae frames with Ebitengine.
//
// The Sink converts batches into ebiten.DrawTriangles calls on the screen
// image handed to it by the game loop. Window wires a nae.Draw and the
// sink into an ebiten.Game so a program only supplies update and draw
// callbacks.
package ebiten
