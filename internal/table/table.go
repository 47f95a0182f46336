// Package table renders a header row and body rows as a bordered,
// left-aligned text table.
//
//	------------------
//	| name  | age    |
//	==================
//	| alice | 42     |
//	------------------
//
// Rendering is two-pass: every cell is measured before the first line is
// drawn, so a wide cell late in the body widens its whole column.
package table

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

var (
	// ErrNoColumns is returned when the header is empty.
	ErrNoColumns = errors.New("table has no columns")

	// ErrRowShape is matched by every *ShapeError.
	ErrRowShape = errors.New("row length does not match column count")
)

// ShapeError reports a body row whose cell count differs from the header.
type ShapeError struct {
	Row  int // zero-based body row index
	Got  int
	Want int
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("row %d has %d cells, want %d", e.Row, e.Got, e.Want)
}

// Is makes errors.Is(err, ErrRowShape) hold for any *ShapeError.
func (e *ShapeError) Is(target error) bool {
	return target == ErrRowShape
}

const (
	borderRule = "-"
	headerRule = "="
)

// Renderer draws tables using a configurable width measure.
type Renderer struct {
	// Width measures a cell. Nil means RuneCount.
	Width WidthFunc
}

var defaultRenderer = &Renderer{}

// Render draws columns and rows with the default renderer.
func Render(columns []string, rows [][]string) ([]string, error) {
	return defaultRenderer.Render(columns, rows)
}

// Render returns the table as lines without trailing newlines: top border,
// header, double rule, one line per row, bottom border. Shape violations are
// reported before anything is drawn.
func (r *Renderer) Render(columns []string, rows [][]string) ([]string, error) {
	if err := checkShape(columns, rows); err != nil {
		return nil, err
	}

	width := r.Width
	if width == nil {
		width = RuneCount
	}

	widths := Widths(columns, rows, width)
	total := RuleWidth(widths)

	lines := make([]string, 0, len(rows)+4)
	lines = append(lines, strings.Repeat(borderRule, total))
	lines = append(lines, formatLine(columns, widths, width))
	lines = append(lines, strings.Repeat(headerRule, total))
	for _, row := range rows {
		lines = append(lines, formatLine(row, widths, width))
	}
	lines = append(lines, strings.Repeat(borderRule, total))

	return lines, nil
}

func checkShape(columns []string, rows [][]string) error {
	if len(columns) == 0 {
		return ErrNoColumns
	}
	for i, row := range rows {
		if len(row) != len(columns) {
			return &ShapeError{Row: i, Got: len(row), Want: len(columns)}
		}
	}
	return nil
}

// Widths returns the widest cell of each column across the header and every
// row. Rows must already match the header length.
func Widths(columns []string, rows [][]string, width WidthFunc) []int {
	if width == nil {
		width = RuneCount
	}
	widths := make([]int, len(columns))
	for i, c := range columns {
		widths[i] = width(c)
	}
	for _, row := range rows {
		for i, cell := range row {
			if w := width(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}
	return widths
}

// RuleWidth is the length of every border and cell line for the given
// column widths: each column takes its width plus "| " and a trailing space,
// and the line closes with "|".
func RuleWidth(widths []int) int {
	if len(widths) == 0 {
		return 0
	}
	sum := 0
	for _, w := range widths {
		sum += w
	}
	return sum + 4 + 3*(len(widths)-1)
}

func formatLine(cells []string, widths []int, width WidthFunc) string {
	var b strings.Builder
	for i, cell := range cells {
		b.WriteString("| ")
		b.WriteString(cell)
		b.WriteString(strings.Repeat(" ", widths[i]-width(cell)))
		b.WriteString(" ")
	}
	b.WriteString("|")
	return b.String()
}

// Write emits lines to w, each followed by a newline.
func Write(w io.Writer, lines []string) error {
	for _, line := range lines {
		if _, err := io.WriteString(w, line+"\n"); err != nil {
			return err
		}
	}
	return nil
}
