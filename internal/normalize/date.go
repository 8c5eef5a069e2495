package normalize

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Day-first layouts must come before month-first to avoid misparsing
// Indian disclosure dates.
var dateLayouts = []string{
	"02/01/2006", "02/01/06", "2/1/2006", "2/1/06",
	"02-01-2006", "02-01-06", "2-1-2006", "2-1-06",
	"02.01.2006", "2.1.2006",
	"02-Jan-2006", "02-Jan-06", "2-Jan-2006", "2-Jan-06",
	"02/Jan/2006", "02/Jan/06",
	"02 Jan 2006", "2 Jan 2006", "02 January 2006", "2 January 2006",
	"Jan 02, 2006", "January 02, 2006", "January 2, 2006",
	"2006-01-02", "2006/01/02", "2006.01.02",
	"01/02/2006", "1/2/2006",
}

// ParseDate parses a disclosure date cell, preferring day-first layouts,
// then falling back to Excel serial numbers.
func ParseDate(s string) (time.Time, error) {
	s = CleanText(s)
	if s == "" {
		return time.Time{}, errors.New("empty date string")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			if t.Year() < 100 {
				t = t.AddDate(2000, 0, 0)
			}
			return t, nil
		}
	}
	if t, err := ParseExcelSerialDate(s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("could not parse date: %s", s)
}

// ParseExcelSerialDate converts an Excel serial date into a time.Time.
// Excel counts from 1899-12-30 and includes a fake 1900-02-29 day.
func ParseExcelSerialDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errors.New("empty excel serial")
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return time.Time{}, err
	}
	if f < 61 || f > 219146 { // plausible band, 1900-03-01 .. 2500
		return time.Time{}, fmt.Errorf("implausible excel serial: %s", s)
	}
	days := int(f)
	frac := f - float64(days)
	// The 1899-12-30 base absorbs Excel's fake 1900-02-29 for serials past
	// it, which the plausibility band guarantees.
	base := time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)
	d := base.AddDate(0, 0, days)
	d = d.Add(time.Duration(frac * float64(24*time.Hour)))
	return d, nil
}

var (
	matCodeRe    = regexp.MustCompile(`(?i)\bMAT\s*(\d{6})\b`)
	parenDateRe  = regexp.MustCompile(`\(([^()]*\d{1,2}[-/. ][A-Za-z0-9]{2,9}[-/. ]\d{2,4}[^()]*)\)`)
	taggedDateRe = regexp.MustCompile(`(?i)\bMaturity\s*[:\-]\s*([0-9A-Za-z ./\-]{6,20})`)
	bareDateRe   = regexp.MustCompile(`\b(\d{1,2}[-/.](?:\d{1,2}|[A-Za-z]{3,9})[-/.]\d{2,4})\b`)
	callTokenRe  = regexp.MustCompile(`(?i)\b(call|ytc)\b`)
)

// ParseMaturityDate pulls a maturity date out of free instrument-name text.
// Tried in order: the MAT DDMMYY numeric code, a parenthesised date, an
// explicit "Maturity:" tag, then a bare day-first date pattern. Text carrying
// a Call/YTC token describes a call date, not a maturity, and yields null.
// Absent or ambiguous matches yield null, never an error.
func ParseMaturityDate(text string) *time.Time {
	text = CleanText(text)
	if text == "" {
		return nil
	}
	if callTokenRe.MatchString(text) {
		return nil
	}
	if m := matCodeRe.FindStringSubmatch(text); m != nil {
		if t, ok := decodeMATCode(m[1]); ok {
			return &t
		}
	}
	if m := parenDateRe.FindStringSubmatch(text); m != nil {
		if t, err := ParseDate(strings.TrimSpace(m[1])); err == nil {
			return &t
		}
		if d := bareDateRe.FindString(m[1]); d != "" {
			if t, err := ParseDate(d); err == nil {
				return &t
			}
		}
	}
	if m := taggedDateRe.FindStringSubmatch(text); m != nil {
		if t, err := ParseDate(strings.TrimSpace(m[1])); err == nil {
			return &t
		}
	}
	if d := bareDateRe.FindString(text); d != "" {
		if t, err := ParseDate(d); err == nil {
			return &t
		}
	}
	return nil
}

// decodeMATCode decodes the DDMMYY maturity code one issuer embeds in
// instrument names, e.g. "MAT 181139" is 2039-11-18. YY below 50 is 20YY,
// 50 and above is 19YY.
func decodeMATCode(code string) (time.Time, bool) {
	if len(code) != 6 {
		return time.Time{}, false
	}
	day, _ := strconv.Atoi(code[0:2])
	month, _ := strconv.Atoi(code[2:4])
	yy, _ := strconv.Atoi(code[4:6])
	if day < 1 || day > 31 || month < 1 || month > 12 {
		return time.Time{}, false
	}
	year := 2000 + yy
	if yy >= 50 {
		year = 1900 + yy
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day || t.Month() != time.Month(month) {
		return time.Time{}, false
	}
	return t, true
}
