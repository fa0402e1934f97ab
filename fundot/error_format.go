package fundot

import (
	"fmt"
	"strconv"
	"strings"
)

// codeFrame quotes the source line holding pos and underlines width runes
// from it. The underline is clipped to the end of the line, so a segment
// or string running onto later lines marks only its first line.
//
//	1 | (get [1 2] 0)
//	  |       ^^^
func codeFrame(source string, pos Position, width int) string {
	line, ok := sourceLine(source, pos.Line)
	if !ok {
		return ""
	}
	runes := []rune(line)
	start := min(max(pos.Column, 1), len(runes)+1) - 1
	end := min(start+max(width, 1), max(len(runes), start+1))

	gutter := strconv.Itoa(pos.Line)
	var b strings.Builder
	fmt.Fprintf(&b, "%s | %s\n", gutter, line)
	fmt.Fprintf(&b, "%s | ", strings.Repeat(" ", len(gutter)))
	// Tabs before the marker are kept so it lines up under the atom.
	for _, r := range runes[:start] {
		if r == '\t' {
			b.WriteByte('\t')
		} else {
			b.WriteByte(' ')
		}
	}
	b.WriteString(strings.Repeat("^", end-start))
	return b.String()
}

func sourceLine(source string, n int) (string, bool) {
	if source == "" || n <= 0 {
		return "", false
	}
	for i := 1; ; i++ {
		line, rest, more := strings.Cut(source, "\n")
		if i == n {
			return strings.TrimSuffix(line, "\r"), true
		}
		if !more {
			return "", false
		}
		source = rest
	}
}
