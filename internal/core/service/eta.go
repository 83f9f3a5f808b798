package service

import (
	"fmt"
	"time"

	"github.com/parcelwatch/parcel-tracker/internal/core/domain"
	"github.com/parcelwatch/parcel-tracker/internal/core/ports"
)

// Upstream date bounds arrive in a handful of formats; RFC3339 with and
// without sub-second precision dominates, bare dates show up occasionally.
var etaDateFormats = []string{
	time.RFC3339,
	"2006-01-02T15:04:05.000Z07:00",
	"2006-01-02",
}

// ParseETA normalizes the variable-shape upstream ETA sub-payload into a
// single window with both a day-count pair and a date pair, or reports
// absence. It accepts a single day count, a day min/max pair, a date pair,
// or nothing at all; whichever pair is missing is derived from the other so
// the result is always fully populated. Inverted upstream bounds are swapped
// rather than propagated.
//
// A nil result with a non-nil error means data was present but unparseable;
// the caller logs it and carries on, it never fails a refresh.
func ParseETA(payload *ports.ETAPayload, now time.Time) (*domain.ETA, error) {
	if payload == nil {
		return nil, nil
	}

	daysMin, daysMax, haveDays := dayBounds(payload.Remaining)
	dateMin, dateMax, haveDates, err := dateBounds(payload.Period)
	if err != nil && !haveDays {
		return nil, err
	}

	switch {
	case haveDays && haveDates:
	case haveDays:
		dateMin = now.AddDate(0, 0, daysMin)
		dateMax = now.AddDate(0, 0, daysMax)
	case haveDates:
		daysMin = daysUntil(now, dateMin)
		daysMax = daysUntil(now, dateMax)
	default:
		return nil, nil
	}

	if daysMin > daysMax {
		daysMin, daysMax = daysMax, daysMin
	}
	if dateMin.After(dateMax) {
		dateMin, dateMax = dateMax, dateMin
	}

	// err may still carry an unparseable-date complaint even when the day
	// bounds were usable; surface it so the caller can log it.
	return &domain.ETA{
		DaysMin: daysMin,
		DaysMax: daysMax,
		DateMin: dateMin,
		DateMax: dateMax,
	}, err
}

// dayBounds extracts the day-count window from the remaining list. Null
// entries are skipped; a single value means min == max. Negative counts are
// clamped to zero.
func dayBounds(remaining []*int) (int, int, bool) {
	var vals []int
	for _, r := range remaining {
		if r == nil {
			continue
		}
		v := *r
		if v < 0 {
			v = 0
		}
		vals = append(vals, v)
	}
	switch len(vals) {
	case 0:
		return 0, 0, false
	case 1:
		return vals[0], vals[0], true
	default:
		return vals[0], vals[1], true
	}
}

// dateBounds extracts the date window from the period list. A single entry
// means min == max. Entries that match no known format make the whole window
// unparseable.
func dateBounds(period []string) (time.Time, time.Time, bool, error) {
	var vals []time.Time
	for _, raw := range period {
		if raw == "" {
			continue
		}
		t, err := parseETADate(raw)
		if err != nil {
			return time.Time{}, time.Time{}, false, err
		}
		vals = append(vals, t)
	}
	switch len(vals) {
	case 0:
		return time.Time{}, time.Time{}, false, nil
	case 1:
		return vals[0], vals[0], true, nil
	default:
		return vals[0], vals[1], true, nil
	}
}

func parseETADate(raw string) (time.Time, error) {
	for _, layout := range etaDateFormats {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable eta date %q", raw)
}

// daysUntil converts a date bound back into a whole day count from now,
// rounding up and never going negative.
func daysUntil(now, t time.Time) int {
	d := t.Sub(now)
	if d <= 0 {
		return 0
	}
	days := int(d / (24 * time.Hour))
	if d%(24*time.Hour) != 0 {
		days++
	}
	return days
}
