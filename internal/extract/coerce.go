package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Explicit date layouts tried in order before the permissive fallback.
var dateLayouts = []string{
	"2006-01-02",
	"01/02/2006",
	"01/02/06",
	"01-02-2006",
	"01-02-06",
	"2006/01/02",
	"02-Jan-2006",
	"Jan 2, 2006",
	"Jan 2,2006",
	"January 2, 2006",
	"January 2,2006",
}

var (
	looseDateRe = regexp.MustCompile(`^\s*(\d{1,2})[./-](\d{1,2})[./-](\d{2,4})\s*$`)
	isoDateRe   = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	moneyJunkRe = regexp.MustCompile(`[^0-9.\-+]`)
)

// ParseDate coerces free-form date text into ISO YYYY-MM-DD. It tries a
// fixed list of explicit layouts, then a permissive M/D/Y numeric
// pattern with a two-digit-year pivot (yy < 100 means 2000+yy), and
// finally passes an already-ISO string through unchanged. Anything else
// yields nil, never an error.
func ParseDate(s string) *string {
	xs := strings.TrimSpace(s)
	if xs == "" {
		return nil
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, xs); err == nil {
			iso := t.Format("2006-01-02")
			return &iso
		}
	}

	if m := looseDateRe.FindStringSubmatch(xs); m != nil {
		mm, _ := strconv.Atoi(m[1])
		dd, _ := strconv.Atoi(m[2])
		yy, _ := strconv.Atoi(m[3])
		if yy < 100 {
			yy = 2000 + yy
		}
		iso := fmt.Sprintf("%04d-%02d-%02d", yy, mm, dd)
		return &iso
	}

	if isoDateRe.MatchString(xs) {
		return &xs
	}

	return nil
}

// CleanMoney strips currency symbols and thousands separators from a
// money string, negates the value when a "cr" or "credit" marker is
// present, and parses it as a decimal. Credit detection is a
// case-insensitive substring check, so "4.50CR" and "$5.00 Credit" both
// come out negative. Unparsable strings yield nil.
func CleanMoney(s string) *float64 {
	if strings.TrimSpace(s) == "" {
		return nil
	}

	credit := strings.Contains(strings.ToLower(s), "cr")
	cleaned := strings.ReplaceAll(s, "$", "")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	cleaned = moneyJunkRe.ReplaceAllString(cleaned, "")
	cleaned = strings.TrimSpace(cleaned)

	n, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return nil
	}
	if credit {
		n = -n
	}
	return &n
}

// ParseAmount is a best-effort numeric coercion for values that should
// already be plain numbers. Failure yields nil silently.
func ParseAmount(s string) *float64 {
	n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return nil
	}
	return &n
}
