package render

import (
	"image/color"
	"math"

	"github.com/lao-tseu-is-alive/go-flocking-ripples/pkg/geometry"
	"github.com/lucasb-eyer/go-colorful"
)

var (
	// white fading into light sky blue
	skyTop    = colorful.Color{R: 1, G: 1, B: 1}
	skyBottom = colorful.Color{R: 135.0 / 255, G: 206.0 / 255, B: 250.0 / 255}
	rippleRGB = colorful.Color{R: 0.10, G: 0.35, B: 0.65}

)

// gradientPixels is a w x h RGBA image blending top into bottom in Lab
// space, row by row.
func gradientPixels(w, h int, top, bottom colorful.Color) []byte {
	pix := make([]byte, 4*w*h)
	for y := 0; y < h; y++ {
		t := 0.0
		if h > 1 {
			t = float64(y) / float64(h-1)
		}
		r, g, b := top.BlendLab(bottom, t).Clamped().RGB255()
		row := pix[4*w*y : 4*w*(y+1)]
		for x := 0; x < w; x++ {
			row[4*x], row[4*x+1], row[4*x+2], row[4*x+3] = r, g, b, 0xff
		}
	}
	return pix
}

// Boid tint: saturated and dark enough to read against the pale sky.
const (
	boidSaturation = 0.85
	boidValue      = 0.55
)

// headingColor tints a boid by its direction of travel.
func headingColor(heading float64) colorful.Color {
	deg := math.Mod(heading*180/math.Pi+360, 360)
	return colorful.Hsv(deg, boidSaturation, boidValue)
}

// rippleColor fades the ring out over the ripple's life. The result is
// alpha premultiplied, as image/color expects.
func rippleColor(progress float64) color.RGBA {
	alpha := 1 - math.Max(0, math.Min(1, progress))
	r, g, b := rippleRGB.RGB255()
	a := alpha * 0.8
	return color.RGBA{
		R: uint8(float64(r) * a),
		G: uint8(float64(g) * a),
		B: uint8(float64(b) * a),
		A: uint8(255 * a),
	}
}

// boidTriangle is the marker of one agent: a dart pointing along heading.
func boidTriangle(pos geometry.Vector2D, heading, size float64) [3]geometry.Vector2D {
	return [3]geometry.Vector2D{
		pos.Add(geometry.NewVectorPolar(size, heading)),
		pos.Add(geometry.NewVectorPolar(size*0.8, heading+2.5)),
		pos.Add(geometry.NewVectorPolar(size*0.8, heading-2.5)),
	}
}
