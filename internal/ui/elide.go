package ui

import (
	runewidth "github.com/mattn/go-runewidth"
)

// ElideMiddle shortens s to at most max display cells by dropping runes
// from the middle, keeping the head and the tail visible. Version and
// frame fields live near the end of a path, so the tail is favored when
// max is odd.
func ElideMiddle(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= max {
		return s
	}
	const ellipsis = "…"
	if max <= runewidth.StringWidth(ellipsis) {
		return runewidth.Truncate(s, max, "")
	}
	budget := max - runewidth.StringWidth(ellipsis)
	headMax := budget / 2
	tailMax := budget - headMax

	runes := []rune(s)
	head := ""
	for _, r := range runes {
		w := runewidth.RuneWidth(r)
		if runewidth.StringWidth(head)+w > headMax {
			break
		}
		head += string(r)
	}
	tail := ""
	for i := len(runes) - 1; i >= 0; i-- {
		w := runewidth.RuneWidth(runes[i])
		if runewidth.StringWidth(tail)+w > tailMax {
			break
		}
		tail = string(runes[i]) + tail
	}
	return head + ellipsis + tail
}
