package cli

import (
	"io"
	"os"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/term"
)

// terminalWidth returns the column count of w when it is a terminal.
func terminalWidth(w io.Writer) (int, bool) {
	f, ok := w.(*os.File)
	if !ok {
		return 0, false
	}
	fd := int(f.Fd())
	if !term.IsTerminal(fd) {
		return 0, false
	}
	width, _, err := term.GetSize(fd)
	if err != nil || width <= 0 {
		return 0, false
	}
	return width, true
}

// warnIfWide logs a warning when the table will wrap on the terminal behind
// w. The table itself is never truncated.
func warnIfWide(w io.Writer, lines []string, logger *zap.Logger) {
	if len(lines) == 0 {
		return
	}
	cols, ok := terminalWidth(w)
	if !ok {
		return
	}
	// The top border spans the full table width.
	if tableWidth := utf8.RuneCountInString(lines[0]); tableWidth > cols {
		logger.Warn("Table is wider than the terminal",
			zap.Int("table_width", tableWidth),
			zap.Int("terminal_width", cols))
	}
}
