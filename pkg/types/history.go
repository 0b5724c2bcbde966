package types

import "strings"

// historyPrefixes lists the first characters of input lines worth keeping:
// commands, forward searches and backward searches.
const historyPrefixes = ":/?"

// IsHistoryLine reports whether line is retained in the input history: a
// single line starting with one of the command prefixes.
func IsHistoryLine(line string) bool {
	if line == "" || strings.ContainsAny(line, "\r\n") {
		return false
	}
	return strings.IndexByte(historyPrefixes, line[0]) >= 0
}

// DedupHistory returns lines filtered to retained entries with each line kept
// only at its last position, preserving the relative order of the survivors.
func DedupHistory(lines []string) []string {
	last := make(map[string]int, len(lines))
	for i, l := range lines {
		last[l] = i
	}
	out := make([]string, 0, len(last))
	for i, l := range lines {
		if !IsHistoryLine(l) || last[l] != i {
			continue
		}
		out = append(out, l)
	}
	return out
}
