package rendering

import (
	"regexp"
	"strconv"
	"strings"
)

var monthAbbrev = map[string]string{
	"january": "Jan", "february": "Feb", "march": "Mar", "april": "Apr",
	"may": "May", "june": "Jun", "july": "Jul", "august": "Aug",
	"september": "Sep", "sept": "Sep", "october": "Oct", "november": "Nov", "december": "Dec",
	"jan": "Jan", "feb": "Feb", "mar": "Mar", "apr": "Apr", "jun": "Jun",
	"jul": "Jul", "aug": "Aug", "sep": "Sep", "oct": "Oct", "nov": "Nov", "dec": "Dec",
}

var monthByNumber = []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

var (
	presentWord  = regexp.MustCompile(`(?i)^(present|current|now|today|ongoing)$`)
	yearOnly     = regexp.MustCompile(`^\d{4}$`)
	monthYear    = regexp.MustCompile(`^([A-Za-z]+)\.?\s+(\d{4})$`)
	numericMonth = regexp.MustCompile(`^(\d{1,2})/(\d{4})$`)
	isoMonth     = regexp.MustCompile(`^(\d{4})-(\d{1,2})(?:-\d{1,2})?$`)
	rangeSplit   = regexp.MustCompile(`\s*(?:-|–|—|−|\bto\b)\s*`)
	// spaced separators win so ISO months like 2020-03 stay whole
	spacedSplit = regexp.MustCompile(`\s+(?:-|–|—|−|to)\s+`)
)

// StandardizeDate rewrites a single date or a date range as "MMM YYYY" or
// "MMM YYYY - MMM YYYY". A bare year range becomes "Jan YYYY - Dec YYYY", a
// lone year is left alone, and present-style words become "Present". Input
// that cannot be parsed is returned trimmed but otherwise unchanged.
func StandardizeDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if d, ok := parseDate(s, false); ok {
		return d
	}

	parts := splitRange(s)
	if len(parts) != 2 {
		return s
	}
	start, ok := parseDate(parts[0], false)
	if !ok {
		return s
	}
	end, ok := parseDate(parts[1], true)
	if !ok {
		return s
	}
	if yearOnly.MatchString(start) {
		start = "Jan " + start
	}
	return start + " - " + end
}

// FormatDateRange joins separate start and end dates. A missing end date
// means the role is current.
func FormatDateRange(start, end string) string {
	start, end = strings.TrimSpace(start), strings.TrimSpace(end)
	switch {
	case start == "" && end == "":
		return ""
	case start == "":
		return StandardizeDate(end)
	case end == "":
		end = "Present"
	}
	return StandardizeDate(start + " - " + end)
}

func splitRange(s string) []string {
	if loc := spacedSplit.FindStringIndex(s); loc != nil {
		return []string{s[:loc[0]], s[loc[1]:]}
	}
	return rangeSplit.Split(s, 2)
}

// parseDate normalizes one side of a range. A bare year at the end of a range
// means December.
func parseDate(s string, end bool) (string, bool) {
	s = strings.TrimSpace(s)
	switch {
	case presentWord.MatchString(s):
		return "Present", true
	case yearOnly.MatchString(s):
		if end {
			return "Dec " + s, true
		}
		return s, true
	}
	if m := monthYear.FindStringSubmatch(s); m != nil {
		if abbr, ok := monthAbbrev[strings.ToLower(m[1])]; ok {
			return abbr + " " + m[2], true
		}
		return "", false
	}
	if m := numericMonth.FindStringSubmatch(s); m != nil {
		if month, ok := monthName(m[1]); ok {
			return month + " " + m[2], true
		}
		return "", false
	}
	if m := isoMonth.FindStringSubmatch(s); m != nil {
		if month, ok := monthName(m[2]); ok {
			return month + " " + m[1], true
		}
	}
	return "", false
}

func monthName(num string) (string, bool) {
	n, err := strconv.Atoi(num)
	if err != nil || n < 1 || n > 12 {
		return "", false
	}
	return monthByNumber[n-1], true
}
