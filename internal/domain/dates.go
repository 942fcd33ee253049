package domain

import (
	"strings"
	"time"
)

const (
	// SourceDateLayout is the M/D/YY layout of day labels in the source tables.
	SourceDateLayout = "1/2/06"

	// DayLayout is the canonical YYYY-MM-DD layout used by every query.
	DayLayout = "2006-01-02"
)

// NormalizeDateLabels maps each raw source day label to its canonical
// YYYY-MM-DD form. Labels already in canonical form map to themselves, so the
// mapping is stable when applied to its own output. The first label that does
// not parse aborts normalization with a *DateFormatError.
func NormalizeDateLabels(rawLabels []string) (map[string]string, error) {
	out := make(map[string]string, len(rawLabels))
	for _, label := range rawLabels {
		day, err := normalizeDateLabel(label)
		if err != nil {
			return nil, err
		}
		out[label] = day
	}
	return out, nil
}

func normalizeDateLabel(label string) (string, error) {
	s := strings.TrimSpace(label)
	if t, err := time.Parse(DayLayout, s); err == nil {
		return t.Format(DayLayout), nil
	}
	t, err := time.Parse(SourceDateLayout, s)
	if err != nil {
		return "", &DateFormatError{Label: label, Err: err}
	}
	return t.Format(DayLayout), nil
}

// CanonicalDay strips an optional time suffix ("2020-03-30T00:00:00") and
// validates the remaining YYYY-MM-DD date. Date pickers send the suffixed form.
func CanonicalDay(day string) (string, bool) {
	d, _, _ := strings.Cut(strings.TrimSpace(day), "T")
	t, err := time.Parse(DayLayout, d)
	if err != nil {
		return "", false
	}
	return t.Format(DayLayout), true
}
