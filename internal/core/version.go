package core

import (
	"sort"
	"strconv"
	"strings"
)

// NumberDelimiter separates the segments of an indicator number.
const NumberDelimiter = "."

// NormalizeNumber trims s and appends the trailing delimiter when missing.
// Empty input stays empty.
func NormalizeNumber(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || strings.HasSuffix(s, NumberDelimiter) {
		return s
	}
	return s + NumberDelimiter
}

// NumberSegments splits a normalized number into its segments.
// "1.2." yields ["1", "2"].
func NumberSegments(number string) []string {
	return strings.Split(strings.TrimSuffix(number, NumberDelimiter), NumberDelimiter)
}

// CompareNumbers orders indicator numbers segment by segment as integers.
// Non-numeric segments count as 0 and the shorter operand is padded with
// zeros, so "1." and "1.0." compare equal. It returns -1, 0 or +1.
func CompareNumbers(a, b string) int {
	as := strings.Split(a, NumberDelimiter)
	bs := strings.Split(b, NumberDelimiter)

	n := len(as)
	if len(bs) > n {
		n = len(bs)
	}
	for i := 0; i < n; i++ {
		x, y := segmentAt(as, i), segmentAt(bs, i)
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
	}
	return 0
}

func segmentAt(segs []string, i int) uint64 {
	if i >= len(segs) {
		return 0
	}
	v, err := strconv.ParseUint(strings.TrimSpace(segs[i]), 10, 64)
	if err != nil {
		return 0
	}
	return v
}

// SortIndicators orders records by number. Equal numbers keep their
// relative order.
func SortIndicators(list []Indicator) {
	sort.SliceStable(list, func(i, j int) bool {
		return CompareNumbers(list[i].Number, list[j].Number) < 0
	})
}
