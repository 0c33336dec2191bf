package locator

import (
	"image"
	"math"

	"golang.org/x/image/draw"
)

// grayMatrix is a row-major grayscale image with float intensities.
type grayMatrix struct {
	w, h int
	pix  []float64
}

// toGray converts img to grayscale, scaling it by factor when factor < 1.
func toGray(img image.Image, factor float64) grayMatrix {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if factor > 0 && factor < 1 {
		w = int(math.Max(1, math.Round(float64(w)*factor)))
		h = int(math.Max(1, math.Round(float64(h)*factor)))
	}
	dst := image.NewGray(image.Rect(0, 0, w, h))
	if w == b.Dx() && h == b.Dy() {
		draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	} else {
		draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	}
	m := grayMatrix{w: w, h: h, pix: make([]float64, w*h)}
	for y := 0; y < h; y++ {
		row := dst.Pix[y*dst.Stride : y*dst.Stride+w]
		for x, v := range row {
			m.pix[y*w+x] = float64(v)
		}
	}
	return m
}

// integral holds summed-area tables of pixel values and their squares.
type integral struct {
	stride int
	sum    []float64
	sq     []float64
}

func newIntegral(m grayMatrix) integral {
	stride := m.w + 1
	in := integral{stride: stride, sum: make([]float64, stride*(m.h+1)), sq: make([]float64, stride*(m.h+1))}
	for y := 0; y < m.h; y++ {
		var rowSum, rowSq float64
		for x := 0; x < m.w; x++ {
			v := m.pix[y*m.w+x]
			rowSum += v
			rowSq += v * v
			i := (y+1)*stride + x + 1
			in.sum[i] = in.sum[i-stride] + rowSum
			in.sq[i] = in.sq[i-stride] + rowSq
		}
	}
	return in
}

func (in integral) rect(table []float64, x, y, w, h int) float64 {
	s := in.stride
	return table[(y+h)*s+x+w] - table[y*s+x+w] - table[(y+h)*s+x] + table[y*s+x]
}

// matchTemplate slides tmpl over screen and returns the top-left position
// and score of the best normalized cross-correlation. ok is false when the
// template is larger than the screen or has no contrast.
func matchTemplate(screen, tmpl grayMatrix) (x, y int, score float64, ok bool) {
	tw, th := tmpl.w, tmpl.h
	if tw == 0 || th == 0 || tw > screen.w || th > screen.h {
		return 0, 0, 0, false
	}
	n := float64(tw * th)

	var tMean float64
	for _, v := range tmpl.pix {
		tMean += v
	}
	tMean /= n
	dev := make([]float64, len(tmpl.pix))
	var tVar float64
	for i, v := range tmpl.pix {
		dev[i] = v - tMean
		tVar += dev[i] * dev[i]
	}
	if tVar < 1e-9 {
		return 0, 0, 0, false
	}

	in := newIntegral(screen)
	best := math.Inf(-1)
	for sy := 0; sy+th <= screen.h; sy++ {
		for sx := 0; sx+tw <= screen.w; sx++ {
			sum := in.rect(in.sum, sx, sy, tw, th)
			sq := in.rect(in.sq, sx, sy, tw, th)
			sVar := sq - sum*sum/n
			if sVar < 1e-9 {
				continue
			}
			var cross float64
			for j := 0; j < th; j++ {
				row := screen.pix[(sy+j)*screen.w+sx : (sy+j)*screen.w+sx+tw]
				d := dev[j*tw : j*tw+tw]
				for i, v := range row {
					cross += v * d[i]
				}
			}
			s := cross / math.Sqrt(sVar*tVar)
			if s > best {
				best, x, y = s, sx, sy
			}
		}
	}
	if math.IsInf(best, -1) {
		return 0, 0, 0, false
	}
	return x, y, best, true
}

// TemplateMatch is the best placement of a reference image on screen, in
// screen pixel coordinates.
type TemplateMatch struct {
	Box   image.Rectangle
	Score float64
}

// MatchTemplate finds tmpl inside screen after scaling both by factor.
func MatchTemplate(screen, tmpl image.Image, factor float64) (TemplateMatch, bool) {
	if factor <= 0 || factor > 1 {
		factor = 1
	}
	sm := toGray(screen, factor)
	tm := toGray(tmpl, factor)
	x, y, score, ok := matchTemplate(sm, tm)
	if !ok {
		return TemplateMatch{}, false
	}
	origin := screen.Bounds().Min
	tb := tmpl.Bounds()
	min := image.Pt(
		origin.X+int(math.Round(float64(x)/factor)),
		origin.Y+int(math.Round(float64(y)/factor)),
	)
	return TemplateMatch{
		Box:   image.Rectangle{Min: min, Max: min.Add(image.Pt(tb.Dx(), tb.Dy()))},
		Score: score,
	}, true
}
