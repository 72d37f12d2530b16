package render

import (
	"math"
	"strings"
)

// ASCIIRenderer outputs ASCII art format. Each character cell covers
// CellWidth by CellHeight device pixels of the scene.
type ASCIIRenderer struct {
	CellWidth  float64
	CellHeight float64
	// Border frames the picture.
	Border bool
}

// Name returns the name of the renderer
func (r *ASCIIRenderer) Name() string {
	return "ASCII Renderer"
}

// Description returns a description of the renderer
func (r *ASCIIRenderer) Description() string {
	return "Renders the current view as ASCII art for terminal output"
}

// Size returns the number of columns and rows for the scene.
func (r *ASCIIRenderer) Size(s *Scene) (cols, rows int) {
	cw, ch := r.cell()
	return max(int(s.Width/cw), 1), max(int(s.Height/ch), 1)
}

func (r *ASCIIRenderer) cell() (w, h float64) {
	w, h = r.CellWidth, r.CellHeight
	if w <= 0 {
		w = 1
	}
	if h <= 0 {
		h = 2
	}
	return w, h
}

// Lines draws the scene into one string per row.
func (r *ASCIIRenderer) Lines(s *Scene) []string {
	cols, rows := r.Size(s)
	cw, ch := r.cell()

	grid := make([][]rune, rows)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(" ", cols))
	}
	toCell := func(x, y float64) (int, int) {
		return int(math.Floor(x / cw)), int(math.Floor(y / ch))
	}

	clip := s.clip()
	for _, e := range s.Graph.Edges() {
		a, b, ok := s.edgeSegment(e)
		if !ok {
			continue
		}
		a, b = a.Scale(s.Scale).Add(s.Translate), b.Scale(s.Scale).Add(s.Translate)
		if !visible(clip, a, b) {
			continue
		}
		x1, y1 := toCell(a.X, a.Y)
		x2, y2 := toCell(b.X, b.Y)
		drawLine(grid, x1, y1, x2, y2, '.')
	}

	type label struct {
		x, y int
		text string
	}
	var labels []label
	for _, id := range s.Graph.Nodes() {
		n := s.Graph.Node(id)
		p := s.Project(n.Pos)
		x, y := toCell(p.X, p.Y)
		if x < 0 || x >= cols || y < 0 || y >= rows {
			continue
		}
		highlighted := s.Highlighted(id)
		switch {
		case highlighted:
			grid[y][x] = '@'
		case n.Mass >= 4:
			grid[y][x] = 'O'
		default:
			grid[y][x] = 'o'
		}
		if highlighted || s.Labels {
			labels = append(labels, label{x + 2, y, n.Label})
		}
	}
	// highlighted labels are written last so they stay on top
	for _, l := range labels {
		for i, c := range []rune(l.text) {
			if x := l.x + i; x < cols {
				grid[l.y][x] = c
			}
		}
	}

	if r.Border && cols > 2 && rows > 2 {
		for i := 0; i < cols; i++ {
			grid[0][i] = '-'
			grid[rows-1][i] = '-'
		}
		for i := 0; i < rows; i++ {
			grid[i][0] = '|'
			grid[i][cols-1] = '|'
		}
		grid[0][0] = '+'
		grid[0][cols-1] = '+'
		grid[rows-1][0] = '+'
		grid[rows-1][cols-1] = '+'
	}
	if s.Caption != "" && rows > 1 {
		row := 0
		if r.Border {
			row = 1
		}
		for i, c := range []rune(s.Caption) {
			if x := i + 2; x < cols-2 {
				grid[row][x] = c
			}
		}
	}

	out := make([]string, rows)
	for i, row := range grid {
		out[i] = string(row)
	}
	return out
}

// Render creates an ASCII representation of the scene
func (r *ASCIIRenderer) Render(s *Scene) ([]byte, error) {
	var b strings.Builder
	for _, line := range r.Lines(s) {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return []byte(b.String()), nil
}

// drawLine plots a line on the grid with Bresenham's algorithm, leaving
// non-blank cells alone. Points outside the grid are skipped.
func drawLine(grid [][]rune, x1, y1, x2, y2 int, c rune) {
	dx := abs(x2 - x1)
	dy := -abs(y2 - y1)
	sx, sy := 1, 1
	if x1 >= x2 {
		sx = -1
	}
	if y1 >= y2 {
		sy = -1
	}
	err := dx + dy

	for {
		if y1 >= 0 && y1 < len(grid) && x1 >= 0 && x1 < len(grid[y1]) && grid[y1][x1] == ' ' {
			grid[y1][x1] = c
		}
		if x1 == x2 && y1 == y2 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x1 += sx
		}
		if e2 <= dx {
			err += dx
			y1 += sy
		}
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
