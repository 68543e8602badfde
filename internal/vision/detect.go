package vision

import (
	"image"
)

// Box is an axis-aligned bounding box in pixel coordinates.
// X and Y are inclusive; X+W and Y+H are one past the last pixel.
type Box struct {
	X, Y, W, H int
}

// binary is a row-major foreground mask.
type binary struct {
	w, h int
	px   []bool
}

func newBinary(w, h int) *binary {
	return &binary{w: w, h: h, px: make([]bool, w*h)}
}

func (b *binary) at(x, y int) bool {
	return b.px[y*b.w+x]
}

func (b *binary) set(x, y int, v bool) {
	b.px[y*b.w+x] = v
}

// adaptiveThreshold marks pixels of the inverted image that are brighter
// than the mean of their block x block neighbourhood plus c. Dark strokes
// on a light background become foreground.
func adaptiveThreshold(gray *image.Gray, block int, c float64) *binary {
	w, h := gray.Rect.Dx(), gray.Rect.Dy()
	out := newBinary(w, h)
	if w == 0 || h == 0 {
		return out
	}

	// integral image of the inverted intensities
	integral := make([]int64, (w+1)*(h+1))
	for y := 0; y < h; y++ {
		var rowSum int64
		for x := 0; x < w; x++ {
			rowSum += int64(255 - gray.Pix[y*gray.Stride+x])
			integral[(y+1)*(w+1)+x+1] = integral[y*(w+1)+x+1] + rowSum
		}
	}

	r := block / 2
	for y := 0; y < h; y++ {
		y0, y1 := max(0, y-r), min(h, y+r+1)
		for x := 0; x < w; x++ {
			x0, x1 := max(0, x-r), min(w, x+r+1)
			sum := integral[y1*(w+1)+x1] - integral[y0*(w+1)+x1] - integral[y1*(w+1)+x0] + integral[y0*(w+1)+x0]
			mean := float64(sum) / float64((x1-x0)*(y1-y0))
			inv := float64(255 - gray.Pix[y*gray.Stride+x])
			out.set(x, y, inv > mean+c)
		}
	}
	return out
}

// openHorizontal keeps horizontal foreground runs at least k pixels long.
// This equals erosion followed by dilation with a k x 1 line element.
func openHorizontal(src *binary, k int) *binary {
	out := newBinary(src.w, src.h)
	for y := 0; y < src.h; y++ {
		x := 0
		for x < src.w {
			if !src.at(x, y) {
				x++
				continue
			}
			start := x
			for x < src.w && src.at(x, y) {
				x++
			}
			if x-start >= k {
				for i := start; i < x; i++ {
					out.set(i, y, true)
				}
			}
		}
	}
	return out
}

// openVertical keeps vertical foreground runs at least k pixels long.
func openVertical(src *binary, k int) *binary {
	out := newBinary(src.w, src.h)
	for x := 0; x < src.w; x++ {
		y := 0
		for y < src.h {
			if !src.at(x, y) {
				y++
				continue
			}
			start := y
			for y < src.h && src.at(x, y) {
				y++
			}
			if y-start >= k {
				for i := start; i < y; i++ {
					out.set(x, i, true)
				}
			}
		}
	}
	return out
}

func union(a, b *binary) *binary {
	out := newBinary(a.w, a.h)
	for i := range out.px {
		out.px[i] = a.px[i] || b.px[i]
	}
	return out
}

var (
	neighbours8 = [][2]int{{-1, -1}, {0, -1}, {1, -1}, {-1, 0}, {1, 0}, {-1, 1}, {0, 1}, {1, 1}}
	neighbours4 = [][2]int{{0, -1}, {-1, 0}, {1, 0}, {0, 1}}
)

// components returns bounding boxes of connected regions whose pixels equal
// value. With skipBorder, regions touching the image edge are dropped.
func components(m *binary, value bool, conn [][2]int, skipBorder bool) []Box {
	seen := make([]bool, len(m.px))
	var boxes []Box
	var stack []int

	for start := range m.px {
		if seen[start] || m.px[start] != value {
			continue
		}
		seen[start] = true
		stack = append(stack[:0], start)
		minX, minY, maxX, maxY := m.w, m.h, -1, -1
		touches := false

		for len(stack) > 0 {
			p := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			x, y := p%m.w, p/m.w
			minX, maxX = min(minX, x), max(maxX, x)
			minY, maxY = min(minY, y), max(maxY, y)
			if x == 0 || y == 0 || x == m.w-1 || y == m.h-1 {
				touches = true
			}
			for _, d := range conn {
				nx, ny := x+d[0], y+d[1]
				if nx < 0 || ny < 0 || nx >= m.w || ny >= m.h {
					continue
				}
				q := ny*m.w + nx
				if !seen[q] && m.px[q] == value {
					seen[q] = true
					stack = append(stack, q)
				}
			}
		}

		if skipBorder && touches {
			continue
		}
		boxes = append(boxes, Box{X: minX, Y: minY, W: maxX - minX + 1, H: maxY - minY + 1})
	}
	return boxes
}

// contourBoxes returns the bounding boxes of every outer and inner contour
// of the mask: one box per foreground region and one per enclosed hole.
// Hole boxes are grown by one pixel so they sit on the surrounding stroke.
func contourBoxes(m *binary) []Box {
	boxes := components(m, true, neighbours8, false)
	for _, hole := range components(m, false, neighbours4, true) {
		boxes = append(boxes, Box{X: hole.X - 1, Y: hole.Y - 1, W: hole.W + 2, H: hole.H + 2})
	}
	return boxes
}

// DetectLineBoxes finds candidate table grid fragments in a grayscale image:
// bounding boxes of long horizontal and vertical strokes (and the cells they
// enclose) that are wider than cfg.MinBoxWidth and taller than cfg.MinBoxHeight.
func DetectLineBoxes(gray *image.Gray, cfg Config) []Box {
	gray = Grayscale(gray)
	w, h := gray.Rect.Dx(), gray.Rect.Dy()
	if w == 0 || h == 0 {
		return nil
	}
	divisor := max(cfg.KernelDivisor, 1)

	mask := adaptiveThreshold(gray, cfg.BlockSize, cfg.ThresholdC)
	horizontal := openHorizontal(mask, max(1, w/divisor))
	vertical := openVertical(mask, max(1, h/divisor))

	var kept []Box
	for _, b := range contourBoxes(union(horizontal, vertical)) {
		if b.W > cfg.MinBoxWidth && b.H > cfg.MinBoxHeight {
			kept = append(kept, b)
		}
	}
	return kept
}
