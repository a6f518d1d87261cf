package report

import (
	"fmt"
	"regexp"
	"strconv"
)

var numberPattern = regexp.MustCompile(`^(\D*)(\d+)$`)

// GapResult lists invoice numbers missing from the observed numeric
// sequence. PrefixAmbiguous is set when the observed numbers carried more
// than one distinct prefix; the missing identifiers are then emitted
// without any prefix.
type GapResult struct {
	Missing         []string
	PrefixAmbiguous bool
}

// DetectGaps parses each number as (non-digit prefix)(digit suffix) and
// reports every integer absent between the observed minimum and maximum.
// Numbers that do not match the shape are ignored. Fewer than two parseable
// numbers yields an empty result.
func DetectGaps(numbers []string) GapResult {
	type parsed struct {
		prefix string
		value  int64
		digits int
	}

	var entries []parsed
	prefixes := make(map[string]struct{})
	seen := make(map[int64]struct{})

	for _, number := range numbers {
		match := numberPattern.FindStringSubmatch(number)
		if match == nil {
			continue
		}
		value, err := strconv.ParseInt(match[2], 10, 64)
		if err != nil {
			continue
		}
		entries = append(entries, parsed{prefix: match[1], value: value, digits: len(match[2])})
		prefixes[match[1]] = struct{}{}
		seen[value] = struct{}{}
	}

	if len(entries) < 2 {
		return GapResult{}
	}

	min, max := entries[0].value, entries[0].value
	width := entries[0].digits
	for _, entry := range entries[1:] {
		if entry.value < min {
			min = entry.value
		}
		if entry.value > max {
			max = entry.value
			width = entry.digits
		}
	}

	prefix := entries[0].prefix
	ambiguous := len(prefixes) > 1
	if ambiguous {
		prefix = ""
	}

	var missing []string
	for value := min; value <= max; value++ {
		if _, ok := seen[value]; ok {
			continue
		}
		missing = append(missing, fmt.Sprintf("%s%0*d", prefix, width, value))
	}

	return GapResult{Missing: missing, PrefixAmbiguous: ambiguous}
}
