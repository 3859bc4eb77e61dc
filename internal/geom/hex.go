package geom

// Tile grid cell geometry. Hex cells are flat-topped and every odd column
// is pushed down by half a cell.

// HexOrigin returns the pixel top-left of the hex box at (col, row).
func HexOrigin(col, row, cell int) (int, int) {
	dx := float64(col*cell) * 0.75
	dy := row * cell
	if col%2 != 0 {
		dy += cell / 2
	}
	return int(dx), dy
}

// HexPoints returns the six vertices of the hex whose box starts at (x, y).
func HexPoints(x, y, cell int) []Point {
	q, h := cell/4, cell/2
	return []Point{
		Pt(x+q, y),
		Pt(x+q*3, y),
		Pt(x+cell, y+h),
		Pt(x+q*3, y+cell),
		Pt(x+q, y+cell),
		Pt(x, y+h),
	}
}

// PixelToHex maps a pixel to the hex cell that contains its box, clamped
// to a cols×rows grid.
func PixelToHex(px, py, cols, rows, cell int) (col, row int) {
	col = int(float64(px) / (float64(cell) * 0.75))
	offset := 0
	if col%2 != 0 {
		offset = cell / 2
	}
	row = int(float64(py-offset) / float64(cell))
	return clamp(col, 0, cols-1), clamp(row, 0, rows-1)
}

// RectOrigin returns the pixel top-left of a square cell.
func RectOrigin(col, row, cell int) (int, int) {
	return col * cell, row * cell
}

// PixelToRect maps a pixel to a square cell without clamping. Negative
// pixels map to negative cells.
func PixelToRect(px, py, cell int) (col, row int) {
	return floorDiv(px, cell), floorDiv(py, cell)
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
