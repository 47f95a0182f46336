package table

import (
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
)

// WidthFunc measures how many columns a cell occupies.
type WidthFunc func(string) int

// RuneCount counts Unicode scalar values. It is the default measure.
func RuneCount(s string) int {
	return utf8.RuneCountInString(s)
}

// displayCond measures terminal cells. Ambiguous-width runes are narrow
// whatever the locale says, so output does not depend on the environment.
var displayCond = func() *runewidth.Condition {
	c := runewidth.NewCondition()
	c.EastAsianWidth = false
	c.StrictEmojiNeutral = true
	return c
}()

// DisplayWidth counts the terminal cells s occupies: wide and fullwidth
// runes take two, combining marks and format characters take none. This
// keeps CJK and decomposed text aligned in a terminal.
func DisplayWidth(s string) int {
	return displayCond.StringWidth(s)
}

// WidthByName maps a configuration value to a measure. Unknown names return
// nil and false.
func WidthByName(name string) (WidthFunc, bool) {
	switch name {
	case "", "chars":
		return RuneCount, true
	case "display":
		return DisplayWidth, true
	default:
		return nil, false
	}
}
