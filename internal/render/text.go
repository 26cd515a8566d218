package render

import (
	"strings"

	"github.com/rivo/uniseg"
)

const ellipsis = "…"

func graphemes(s string) []string {
	var out []string
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		out = append(out, g.Str())
	}
	return out
}

func isSpace(c string) bool {
	return strings.TrimSpace(c) == ""
}

// wrapText breaks text into lines no wider than maxWidth. It breaks at the
// last space when one is available and between grapheme clusters otherwise,
// which is how CJK names without spaces wrap. When more than maxLines result,
// the last kept line has its final cluster replaced by an ellipsis, dropping
// further clusters until it fits.
func wrapText(text string, maxWidth float64, maxLines int, measure func(string) float64) []string {
	text = strings.TrimSpace(text)
	if text == "" || maxLines <= 0 {
		return nil
	}

	var lines []string
	var cur []string
	flush := func(cl []string) {
		if line := strings.TrimRight(strings.Join(cl, ""), " \t"); line != "" {
			lines = append(lines, line)
		}
	}

	for _, c := range graphemes(text) {
		if len(cur) == 0 && isSpace(c) {
			continue
		}
		if len(cur) == 0 || measure(strings.Join(cur, "")+c) <= maxWidth {
			cur = append(cur, c)
			continue
		}
		if isSpace(c) {
			flush(cur)
			cur = nil
			continue
		}
		if sp := lastSpace(cur); sp > 0 {
			flush(cur[:sp])
			cur = append([]string(nil), cur[sp+1:]...)
			if len(cur) == 0 || measure(strings.Join(cur, "")+c) <= maxWidth {
				cur = append(cur, c)
				continue
			}
		}
		flush(cur)
		cur = []string{c}
	}
	flush(cur)

	if len(lines) > maxLines {
		lines = lines[:maxLines]
		lines[maxLines-1] = ellipsize(lines[maxLines-1], maxWidth, measure)
	}
	return lines
}

func lastSpace(cl []string) int {
	for i := len(cl) - 1; i >= 0; i-- {
		if isSpace(cl[i]) {
			return i
		}
	}
	return -1
}

func ellipsize(line string, maxWidth float64, measure func(string) float64) string {
	cl := graphemes(line)
	for n := len(cl) - 1; n > 0; n-- {
		s := strings.TrimRight(strings.Join(cl[:n], ""), " \t") + ellipsis
		if measure(s) <= maxWidth {
			return s
		}
	}
	return ellipsis
}

// displayName picks the name for the card; a blank secondary name falls back to the primary one.
func displayName(mode NameMode, primary string, secondary *string) string {
	switch mode {
	case NamesPrimary:
		return primary
	case NamesSecondary:
		if secondary != nil && strings.TrimSpace(*secondary) != "" {
			return *secondary
		}
		return primary
	default:
		return ""
	}
}
