package service

import (
	"testing"
	"time"

	"github.com/parcelwatch/parcel-tracker/internal/core/ports"
)

var etaNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func intp(v int) *int { return &v }

func TestParseETA_Absent(t *testing.T) {
	eta, err := ParseETA(nil, etaNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if eta != nil {
		t.Fatalf("expected absence, got %+v", eta)
	}

	eta, err = ParseETA(&ports.ETAPayload{}, etaNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if eta != nil {
		t.Fatalf("expected absence for empty payload, got %+v", eta)
	}
}

func TestParseETA_DayPair(t *testing.T) {
	eta, err := ParseETA(&ports.ETAPayload{Remaining: []*int{intp(3), intp(7)}}, etaNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if eta == nil {
		t.Fatal("expected eta")
	}
	if eta.DaysMin != 3 || eta.DaysMax != 7 {
		t.Errorf("expected days 3-7, got %d-%d", eta.DaysMin, eta.DaysMax)
	}
	// Dates derived from the day counts.
	if !eta.DateMin.Equal(etaNow.AddDate(0, 0, 3)) || !eta.DateMax.Equal(etaNow.AddDate(0, 0, 7)) {
		t.Errorf("derived dates wrong: %v / %v", eta.DateMin, eta.DateMax)
	}
}

func TestParseETA_SingleDayCount(t *testing.T) {
	eta, err := ParseETA(&ports.ETAPayload{Remaining: []*int{intp(5)}}, etaNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if eta.DaysMin != 5 || eta.DaysMax != 5 {
		t.Errorf("expected days 5-5, got %d-%d", eta.DaysMin, eta.DaysMax)
	}
}

func TestParseETA_InvertedDayBoundsSwapped(t *testing.T) {
	eta, err := ParseETA(&ports.ETAPayload{Remaining: []*int{intp(15), intp(9)}}, etaNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if eta.DaysMin != 9 || eta.DaysMax != 15 {
		t.Errorf("expected normalized 9-15, got %d-%d", eta.DaysMin, eta.DaysMax)
	}
	if eta.DateMin.After(eta.DateMax) {
		t.Error("date bounds inverted")
	}
}

func TestParseETA_DatePair(t *testing.T) {
	eta, err := ParseETA(&ports.ETAPayload{
		Period: []string{"2025-06-04T00:00:00Z", "2025-06-08T00:00:00Z"},
	}, etaNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if eta == nil {
		t.Fatal("expected eta")
	}
	want := time.Date(2025, 6, 4, 0, 0, 0, 0, time.UTC)
	if !eta.DateMin.Equal(want) {
		t.Errorf("expected date min %v, got %v", want, eta.DateMin)
	}
	// Days derived from the dates: 2.5 and 6.5 days out round up.
	if eta.DaysMin != 3 || eta.DaysMax != 7 {
		t.Errorf("expected derived days 3-7, got %d-%d", eta.DaysMin, eta.DaysMax)
	}
}

func TestParseETA_InvertedDateBoundsSwapped(t *testing.T) {
	eta, err := ParseETA(&ports.ETAPayload{
		Period: []string{"2025-06-08T00:00:00Z", "2025-06-04T00:00:00Z"},
	}, etaNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if eta.DateMin.After(eta.DateMax) {
		t.Errorf("date bounds still inverted: %v / %v", eta.DateMin, eta.DateMax)
	}
	if eta.DaysMin > eta.DaysMax {
		t.Errorf("day bounds inverted: %d-%d", eta.DaysMin, eta.DaysMax)
	}
}

func TestParseETA_NullDayEntriesSkipped(t *testing.T) {
	eta, err := ParseETA(&ports.ETAPayload{Remaining: []*int{nil, nil}}, etaNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if eta != nil {
		t.Fatalf("expected absence for all-null bounds, got %+v", eta)
	}
}

func TestParseETA_NegativeDaysClamped(t *testing.T) {
	eta, err := ParseETA(&ports.ETAPayload{Remaining: []*int{intp(-2), intp(4)}}, etaNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if eta.DaysMin != 0 || eta.DaysMax != 4 {
		t.Errorf("expected clamped 0-4, got %d-%d", eta.DaysMin, eta.DaysMax)
	}
}

func TestParseETA_UnparseableDates(t *testing.T) {
	eta, err := ParseETA(&ports.ETAPayload{Period: []string{"soon", "eventually"}}, etaNow)
	if err == nil {
		t.Fatal("expected error for unparseable dates")
	}
	if eta != nil {
		t.Fatalf("expected absence alongside the error, got %+v", eta)
	}
}

func TestParseETA_BadDatesWithGoodDays(t *testing.T) {
	// Day bounds stay usable even when the date half is garbage; the error
	// still surfaces for the caller to log.
	eta, err := ParseETA(&ports.ETAPayload{
		Remaining: []*int{intp(2), intp(4)},
		Period:    []string{"garbage"},
	}, etaNow)
	if err == nil {
		t.Fatal("expected error for the unparseable date")
	}
	if eta == nil {
		t.Fatal("expected eta derived from day bounds")
	}
	if eta.DaysMin != 2 || eta.DaysMax != 4 {
		t.Errorf("expected days 2-4, got %d-%d", eta.DaysMin, eta.DaysMax)
	}
}

func TestParseETA_PastDateClampsToZeroDays(t *testing.T) {
	eta, err := ParseETA(&ports.ETAPayload{
		Period: []string{"2025-05-20T00:00:00Z", "2025-06-03T00:00:00Z"},
	}, etaNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if eta.DaysMin != 0 {
		t.Errorf("expected past bound to clamp to 0 days, got %d", eta.DaysMin)
	}
	if eta.DaysMin > eta.DaysMax {
		t.Errorf("invariant violated: %d-%d", eta.DaysMin, eta.DaysMax)
	}
}
