package version

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Range is an inclusive range of version indices.
type Range struct {
	Min int
	Max int
}

// Contains reports whether v is in the range.
func (r Range) Contains(v int) bool {
	return v >= r.Min && v <= r.Max
}

func (r Range) String() string {
	if r.Min == r.Max {
		return FormatVersion(r.Min)
	}
	return FormatVersion(r.Min) + "-" + FormatVersion(r.Max)
}

// RangeList is a sorted list of disjoint, non-adjacent ranges.
type RangeList []Range

// ParseRangeList parses expressions like "01-04, 06, 10-15".
// Expressions that mention "cs" (console-only charts) yield an empty list.
func ParseRangeList(expr string) (RangeList, error) {
	if strings.Contains(expr, "cs") {
		return RangeList{}, nil
	}

	var ranges []Range
	for token := range strings.SplitSeq(expr, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		r, err := parseRange(token)
		if err != nil {
			return nil, fmt.Errorf("invalid version range expression %q: %w", expr, err)
		}
		ranges = append(ranges, r)
	}

	slices.SortFunc(ranges, func(a, b Range) int { return a.Min - b.Min })

	list := make(RangeList, 0, len(ranges))
	for _, r := range ranges {
		if n := len(list); n > 0 && r.Min <= list[n-1].Max+1 {
			list[n-1].Max = max(list[n-1].Max, r.Max)
			continue
		}
		list = append(list, r)
	}
	return list, nil
}

func parseRange(token string) (Range, error) {
	switch len(token) {
	case 2:
		v, err := parseVersionToken(token)
		if err != nil {
			return Range{}, err
		}
		return Range{Min: v, Max: v}, nil
	case 5:
		if token[2] != '-' {
			return Range{}, fmt.Errorf("token %q", token)
		}
		lo, err := parseVersionToken(token[:2])
		if err != nil {
			return Range{}, err
		}
		hi, err := parseVersionToken(token[3:])
		if err != nil {
			return Range{}, err
		}
		if hi < lo {
			return Range{}, fmt.Errorf("token %q is reversed", token)
		}
		return Range{Min: lo, Max: hi}, nil
	}
	return Range{}, fmt.Errorf("token %q", token)
}

func parseVersionToken(s string) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("version %q", s)
	}
	return v, nil
}

// Contains reports whether any range contains v.
func (l RangeList) Contains(v int) bool {
	_, ok := l.Find(v)
	return ok
}

// Find returns the range that contains v.
func (l RangeList) Find(v int) (Range, bool) {
	for _, r := range l {
		if r.Contains(v) {
			return r, true
		}
	}
	return Range{}, false
}

// Versions expands the list into individual version indices.
func (l RangeList) Versions() []int {
	var versions []int
	for _, r := range l {
		for v := r.Min; v <= r.Max; v++ {
			versions = append(versions, v)
		}
	}
	return versions
}

func (l RangeList) String() string {
	parts := make([]string, len(l))
	for i, r := range l {
		parts[i] = r.String()
	}
	return strings.Join(parts, ", ")
}
