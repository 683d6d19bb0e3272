package ingest

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var zeroSeconds = decimal.New(0, -3)

// ParseSeconds converts a time-like string to fixed-point seconds with
// millisecond precision. Accepted shapes:
//
//	"MM:SS" or "MM:SS.ffffff"
//	"HH:MM:SS" or "HH:MM:SS.ffffff"
//	"YYYY-MM-DD HH:MM:SS[.ffffff]" (only the time part is used)
//	a bare seconds value such as "1044.360"
//
// A comma decimal separator is accepted when no period is present. Fractional
// seconds are truncated/padded to microseconds before rounding half-up to
// three places. Anything unparseable yields 0.000 — lossy ingestion is
// preferred over a hard failure for this field.
func ParseSeconds(raw string) decimal.Decimal {
	s := strings.TrimSpace(raw)
	if s == "" {
		return zeroSeconds
	}
	// Full datetimes carry the clock after the last space.
	if i := strings.LastIndexByte(s, ' '); i >= 0 {
		s = s[i+1:]
	}
	if strings.ContainsRune(s, ',') && !strings.ContainsRune(s, '.') {
		s = strings.ReplaceAll(s, ",", ".")
	}
	parts := strings.Split(s, ":")
	if len(parts) == 1 {
		d, err := decimal.NewFromString(parts[0])
		if err != nil {
			return zeroSeconds
		}
		return d.Round(3)
	}
	if len(parts) > 3 {
		return zeroSeconds
	}
	var hours, minutes int64
	var err error
	secPart := parts[len(parts)-1]
	if len(parts) == 2 {
		if minutes, err = strconv.ParseInt(parts[0], 10, 64); err != nil {
			return zeroSeconds
		}
	} else {
		if hours, err = strconv.ParseInt(parts[0], 10, 64); err != nil {
			return zeroSeconds
		}
		if minutes, err = strconv.ParseInt(parts[1], 10, 64); err != nil {
			return zeroSeconds
		}
	}
	var secs, micros int64
	if dot := strings.IndexByte(secPart, '.'); dot >= 0 {
		if secs, err = strconv.ParseInt(secPart[:dot], 10, 64); err != nil {
			return zeroSeconds
		}
		frac := secPart[dot+1:]
		if len(frac) > 6 {
			frac = frac[:6]
		}
		frac = frac + strings.Repeat("0", 6-len(frac))
		if micros, err = strconv.ParseInt(frac, 10, 64); err != nil {
			return zeroSeconds
		}
	} else {
		if secs, err = strconv.ParseInt(secPart, 10, 64); err != nil {
			return zeroSeconds
		}
	}
	total := decimal.NewFromInt(hours*3600 + minutes*60 + secs)
	total = total.Add(decimal.New(micros, -6))
	return total.Round(3)
}

// FormatSeconds renders a seconds value the way exports expect it: three
// decimal places, always.
func FormatSeconds(d decimal.Decimal) string {
	return d.StringFixed(3)
}
