package util

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// GetDisplayWidth calculates the actual display width of a string, accounting for emojis
func GetDisplayWidth(text string) int {
	return runewidth.StringWidth(text)
}

// Underline returns a rule of ch as wide as text renders on a terminal.
func Underline(text string, ch string) string {
	return strings.Repeat(ch, GetDisplayWidth(text))
}
