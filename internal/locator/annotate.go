package locator

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Annotate draws the match box and its click target label on a copy of img.
func Annotate(img image.Image, matches ...Match) *image.RGBA {
	rgba := ImageToRGBA(img)

	boxColor := color.RGBA{R: 255, G: 0, B: 0, A: 255}
	textColor := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	outlineColor := color.RGBA{R: 0, G: 0, B: 0, A: 200}

	for _, m := range matches {
		b := m.Box
		drawRectangle(rgba, b.Min.X, b.Min.Y, b.Max.X, b.Max.Y, boxColor)
		drawCross(rgba, m.Target.X, m.Target.Y, boxColor)
		label := fmt.Sprintf("%s (%d,%d)", m.Component, m.Target.X, m.Target.Y)
		drawTextWithOutline(rgba, label, m.Target.X, m.Target.Y-12, textColor, outlineColor)
	}
	return rgba
}

// ImageToRGBA converts any image to RGBA.
func ImageToRGBA(img image.Image) *image.RGBA {
	bounds := img.Bounds()
	rgba := image.NewRGBA(bounds)
	draw.Draw(rgba, bounds, img, bounds.Min, draw.Src)
	return rgba
}

func drawRectangle(img *image.RGBA, x1, y1, x2, y2 int, c color.Color) {
	r := image.Rect(x1, y1, x2, y2).Intersect(img.Bounds())
	if r.Empty() {
		return
	}
	for x := r.Min.X; x < r.Max.X; x++ {
		img.Set(x, r.Min.Y, c)
		img.Set(x, r.Max.Y-1, c)
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		img.Set(r.Min.X, y, c)
		img.Set(r.Max.X-1, y, c)
	}
}

func drawCross(img *image.RGBA, x, y int, c color.Color) {
	bounds := img.Bounds()
	for d := -6; d <= 6; d++ {
		if p := image.Pt(x+d, y); p.In(bounds) {
			img.Set(p.X, p.Y, c)
		}
		if p := image.Pt(x, y+d); p.In(bounds) {
			img.Set(p.X, p.Y, c)
		}
	}
}

// drawTextWithOutline centers text at (x, y) using basicfont.Face7x13.
func drawTextWithOutline(img *image.RGBA, text string, x, y int, textColor, outlineColor color.Color) {
	offsetX := x - len(text)*7/2
	offsetY := y + 13/2

	draw1 := func(dx, dy int, c color.Color) {
		d := &font.Drawer{
			Dst:  img,
			Src:  image.NewUniform(c),
			Face: basicfont.Face7x13,
			Dot:  fixed.P(offsetX+dx, offsetY+dy),
		}
		d.DrawString(text)
	}
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			if dx != 0 || dy != 0 {
				draw1(dx, dy, outlineColor)
			}
		}
	}
	draw1(0, 0, textColor)
}
