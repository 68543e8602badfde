package vision

import (
	"regexp"
	"sort"
	"strings"
)

// noiseChars are glyphs tesseract hallucinates from cell borders.
var noiseChars = regexp.MustCompile(`[|\]\[}{I™]+`)

// ClusterPositions merges nearby 1-D positions into separator lines.
// Positions are sorted; a position further than threshold from the current
// cluster's first position starts a new cluster. Each cluster is represented
// by its first (smallest) position.
func ClusterPositions(positions []int, threshold int) []int {
	if len(positions) == 0 {
		return nil
	}
	sorted := append([]int(nil), positions...)
	sort.Ints(sorted)

	clustered := []int{sorted[0]}
	for _, p := range sorted[1:] {
		if p-clustered[len(clustered)-1] > threshold {
			clustered = append(clustered, p)
		}
	}
	return clustered
}

// separators returns the clustered row and column separator lines of boxes.
func separators(boxes []Box, threshold int) (rows, cols []int) {
	ys := make([]int, 0, 2*len(boxes))
	xs := make([]int, 0, 2*len(boxes))
	for _, b := range boxes {
		ys = append(ys, b.Y, b.Y+b.H)
		xs = append(xs, b.X, b.X+b.W)
	}
	return ClusterPositions(ys, threshold), ClusterPositions(xs, threshold)
}

// CleanTable strips noise characters, trims every cell and drops rows and
// columns that are entirely empty. The result is rectangular.
func CleanTable(table [][]string) [][]string {
	width := 0
	for _, row := range table {
		width = max(width, len(row))
	}

	cleaned := make([][]string, 0, len(table))
	for _, row := range table {
		out := make([]string, width)
		empty := true
		for j, cell := range row {
			out[j] = strings.TrimSpace(noiseChars.ReplaceAllString(cell, ""))
			if out[j] != "" {
				empty = false
			}
		}
		if !empty {
			cleaned = append(cleaned, out)
		}
	}
	if len(cleaned) == 0 {
		return nil
	}

	var keep []int
	for j := 0; j < width; j++ {
		for _, row := range cleaned {
			if row[j] != "" {
				keep = append(keep, j)
				break
			}
		}
	}
	if len(keep) == width {
		return cleaned
	}
	for i, row := range cleaned {
		out := make([]string, len(keep))
		for k, j := range keep {
			out[k] = row[j]
		}
		cleaned[i] = out
	}
	return cleaned
}
