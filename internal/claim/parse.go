package claim

import (
	"strconv"
	"strings"
)

// Label synonyms accepted in the "key: value" format. Keys are matched
// case-insensitively; both Russian and transliterated spellings occur in
// the wild.
var (
	nameKeys  = []string{"фио", "фамилия имя", "имя фамилия", "fio"}
	yearKeys  = []string{"год", "год выпуска", "year"}
	klassKeys = []string{"класс", "class", "группа"}
)

// Parse extracts a membership claim from free text. Two strategies are
// tried in order: labeled lines ("ФИО: …", "Год: …", "Класс: …") and the
// one-line freeform format ("Федоров Сергей 2010 2"). Incomplete or
// unrecognized input yields ok=false; Parse never fails with an error —
// callers route incomplete input to the step-by-step flow instead.
func Parse(text string) (Claim, bool) {
	if c, ok, sawLabel := parseLabeled(text); sawLabel {
		// Once a known label is seen the input is labeled-format;
		// falling through to freeform would read the remaining label
		// words as name material.
		return c, ok
	}
	return parseFreeform(text)
}

func parseLabeled(text string) (c Claim, ok, sawLabel bool) {
	var name, year, klass string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		// First colon on the line is the split point.
		key, val, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		val = strings.TrimSpace(val)
		switch {
		case containsKey(nameKeys, key):
			sawLabel = true
			name = val
		case containsKey(yearKeys, key):
			sawLabel = true
			year = val
		case containsKey(klassKeys, key):
			sawLabel = true
			klass = val
		}
	}
	if name == "" || year == "" || klass == "" {
		return Claim{}, false, sawLabel
	}
	y, err := strconv.Atoi(year)
	if err != nil {
		return Claim{}, false, sawLabel
	}
	k, err := strconv.Atoi(klass)
	if err != nil {
		return Claim{}, false, sawLabel
	}
	return Claim{FullName: name, Year: y, Klass: k}, true, true
}

func parseFreeform(text string) (Claim, bool) {
	parts := strings.Fields(text)
	if len(parts) < 3 {
		return Claim{}, false
	}
	var year, klass int
	var nameParts []string
	for _, part := range parts {
		if !isDigits(part) {
			nameParts = append(nameParts, part)
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			nameParts = append(nameParts, part)
			continue
		}
		switch {
		case len(part) == 4 && YearInRange(n):
			year = n
		case len(part) <= 2 && KlassInRange(n):
			klass = n
		default:
			// Unclassified numbers count as name material.
			nameParts = append(nameParts, part)
		}
	}
	if year == 0 || klass == 0 || len(nameParts) < 2 {
		return Claim{}, false
	}
	return Claim{FullName: strings.Join(nameParts, " "), Year: year, Klass: klass}, true
}

func containsKey(keys []string, key string) bool {
	for _, k := range keys {
		if k == key {
			return true
		}
	}
	return false
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
