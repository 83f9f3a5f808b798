package domain

import (
	"testing"
	"time"
)

func TestParseStatus(t *testing.T) {
	cases := map[string]ParcelStatus{
		"pickup":    StatusPickup,
		"transit":   StatusTransit,
		"arrived":   StatusArrived,
		"delivered": StatusDelivered,
		"archived":  StatusArchived,
		"Delivered": StatusDelivered,
		" transit ": StatusTransit,
		"pending":   StatusUnknown,
		"":          StatusUnknown,
		"banana":    StatusUnknown,
	}
	for input, want := range cases {
		if got := ParseStatus(input); got != want {
			t.Errorf("ParseStatus(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestTerminalForPolling(t *testing.T) {
	if !StatusDelivered.TerminalForPolling() || !StatusArchived.TerminalForPolling() {
		t.Error("delivered and archived must be terminal for polling")
	}
	for _, s := range []ParcelStatus{StatusUnknown, StatusPickup, StatusTransit, StatusArrived} {
		if s.TerminalForPolling() {
			t.Errorf("%q must not be terminal for polling", s)
		}
	}
}

func TestParcel_UUIDSetAndClearedTogether(t *testing.T) {
	p := NewParcel("RR123456789CN", "")
	if p.UUID != "" || p.UUIDTimestamp != nil {
		t.Fatal("new parcel must start without a session uuid")
	}

	now := time.Now()
	p.SetUUID("uuid-1", now)
	if p.UUID != "uuid-1" || p.UUIDTimestamp == nil {
		t.Fatal("SetUUID must set both fields")
	}

	p.ClearUUID()
	if p.UUID != "" || p.UUIDTimestamp != nil {
		t.Fatal("ClearUUID must clear both fields")
	}
}

func TestParcel_Attributes(t *testing.T) {
	days := 4
	updated := time.Date(2025, 6, 1, 10, 30, 0, 0, time.UTC)
	p := &Parcel{
		TrackingID:    "RR123456789CN",
		Name:          "new shoes",
		Status:        StatusTransit,
		Message:       "Departed sorting center",
		Location:      "Hamburg, DE",
		Origin:        "China",
		Destination:   "Germany",
		Carrier:       "DHL",
		DaysInTransit: &days,
		LastUpdated:   &updated,
		ETA: &ETA{
			DaysMin: 2,
			DaysMax: 5,
			DateMin: time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC),
			DateMax: time.Date(2025, 6, 6, 0, 0, 0, 0, time.UTC),
		},
	}

	attrs := p.Attributes()

	if attrs["tracking_id"] != "RR123456789CN" {
		t.Errorf("tracking_id wrong: %v", attrs["tracking_id"])
	}
	if attrs["status"] != "transit" {
		t.Errorf("status wrong: %v", attrs["status"])
	}
	if attrs["days_in_transit"] != 4 {
		t.Errorf("days_in_transit wrong: %v", attrs["days_in_transit"])
	}
	if attrs["last_updated"] != "2025-06-01T10:30:00Z" {
		t.Errorf("last_updated wrong: %v", attrs["last_updated"])
	}
	if attrs["eta_days_range"] != "2-5" {
		t.Errorf("eta_days_range wrong: %v", attrs["eta_days_range"])
	}
	if attrs["eta_date_range"] != "2025-06-03T00:00:00Z/2025-06-06T00:00:00Z" {
		t.Errorf("eta_date_range wrong: %v", attrs["eta_date_range"])
	}
}

func TestParcel_AttributesETAOmittedWhenAbsent(t *testing.T) {
	attrs := NewParcel("RR123456789CN", "").Attributes()

	if _, present := attrs["eta_days_range"]; present {
		t.Error("eta_days_range must be absent, not null")
	}
	if _, present := attrs["eta_date_range"]; present {
		t.Error("eta_date_range must be absent, not null")
	}
	if attrs["uuid"] != nil {
		t.Errorf("unset uuid must render as null, got %v", attrs["uuid"])
	}
	if attrs["status"] != "unknown" {
		t.Errorf("fresh parcel status wrong: %v", attrs["status"])
	}
}

func TestParcel_CloneIsIndependent(t *testing.T) {
	days := 3
	now := time.Now()
	p := NewParcel("RR123456789CN", "gift")
	p.SetUUID("uuid-1", now)
	p.DaysInTransit = &days
	p.ETA = &ETA{DaysMin: 1, DaysMax: 2, DateMin: now, DateMax: now}

	clone := p.Clone()
	clone.Name = "changed"
	*clone.DaysInTransit = 99
	clone.ETA.DaysMax = 99
	clone.ClearUUID()

	if p.Name != "gift" {
		t.Error("clone mutation leaked into original name")
	}
	if *p.DaysInTransit != 3 {
		t.Error("clone mutation leaked into original days_in_transit")
	}
	if p.ETA.DaysMax != 2 {
		t.Error("clone mutation leaked into original eta")
	}
	if p.UUID != "uuid-1" || p.UUIDTimestamp == nil {
		t.Error("clone mutation leaked into original uuid fields")
	}
}
