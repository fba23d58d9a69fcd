package models

import (
	"testing"
	"time"
)

func TestForecastEntry_ParsedTime(t *testing.T) {
	e := ForecastEntry{DateTime: "2023-11-14 12:00:00"}
	got, err := e.ParsedTime()
	if err != nil {
		t.Fatalf("ParsedTime() error = %v", err)
	}
	want := time.Date(2023, 11, 14, 12, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("ParsedTime() = %v, want %v", got, want)
	}

	if _, err := (ForecastEntry{DateTime: "garbage"}).ParsedTime(); err == nil {
		t.Error("ParsedTime() error = nil for bad input, want error")
	}
}

func TestForecast_GroupByDay(t *testing.T) {
	f := Forecast{
		City: CityInfo{Name: "London"},
		Entries: []ForecastEntry{
			{DateTime: "2023-11-14 12:00:00"},
			{DateTime: "2023-11-14 15:00:00"},
			{DateTime: "2023-11-15 00:00:00"},
		},
	}

	got := f.GroupByDay()

	if got.City.Name != "London" {
		t.Errorf("City = %+v, want London", got.City)
	}
	if len(got.Days) != 2 {
		t.Fatalf("len(Days) = %d, want 2", len(got.Days))
	}
	if len(got.Days["2023-11-14"]) != 2 {
		t.Errorf("Days[2023-11-14] has %d entries, want 2", len(got.Days["2023-11-14"]))
	}
	if len(got.Days["2023-11-15"]) != 1 {
		t.Errorf("Days[2023-11-15] has %d entries, want 1", len(got.Days["2023-11-15"]))
	}
	// Intra-day order is preserved.
	if got.Days["2023-11-14"][0].DateTime != "2023-11-14 12:00:00" {
		t.Errorf("first entry = %q, want 12:00 slot", got.Days["2023-11-14"][0].DateTime)
	}
}

func TestDefaultPreferences(t *testing.T) {
	p := DefaultPreferences()
	if p.RainSensitivity != 0.5 || p.TempSensitivity != 0.5 || p.WindSensitivity != 0.5 {
		t.Errorf("sensitivities = %+v, want 0.5 each", p)
	}
	if p.AlertThreshold != 0.7 {
		t.Errorf("AlertThreshold = %v, want 0.7", p.AlertThreshold)
	}
}
