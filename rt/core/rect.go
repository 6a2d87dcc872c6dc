package core

import "github.com/go-gl/mathgl/mgl32"

// Rect is an axis-aligned rectangle in normalized screen space, [0,1] on both axes.
// Row 0 is the bottom of the screen.
type Rect struct {
	Min mgl32.Vec2
	Max mgl32.Vec2
}

func FullScreen() Rect {
	return Rect{Min: mgl32.Vec2{0, 0}, Max: mgl32.Vec2{1, 1}}
}

func (r Rect) Width() float32  { return r.Max.X() - r.Min.X() }
func (r Rect) Height() float32 { return r.Max.Y() - r.Min.Y() }

// Overlaps reports whether the interiors of r and o intersect.
func (r Rect) Overlaps(o Rect) bool {
	return r.Min.X() < o.Max.X() && r.Max.X() > o.Min.X() &&
		r.Min.Y() < o.Max.Y() && r.Max.Y() > o.Min.Y()
}

func (r Rect) Clamp01() Rect {
	return Rect{
		Min: mgl32.Vec2{mgl32.Clamp(r.Min.X(), 0, 1), mgl32.Clamp(r.Min.Y(), 0, 1)},
		Max: mgl32.Vec2{mgl32.Clamp(r.Max.X(), 0, 1), mgl32.Clamp(r.Max.Y(), 0, 1)},
	}
}
