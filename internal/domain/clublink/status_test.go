package clublink

import (
	"testing"
	"time"
)

func TestClassify_Boundaries(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 8, 1, 15, 30, 0, 0, time.UTC)
	date := func(days int) *time.Time {
		d := time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, days)
		return &d
	}
	exact := func(days int) *time.Time {
		d := now.AddDate(0, 0, days)
		return &d
	}
	after := func(days int, extra time.Duration) *time.Time {
		d := now.AddDate(0, 0, days).Add(extra)
		return &d
	}

	tests := []struct {
		name      string
		end       *time.Time
		freeAgent bool
		want      ContractStatus
	}{
		{name: "no date", end: nil, want: StatusUnknown},
		{name: "yesterday", end: date(-1), want: StatusExpired},
		{name: "earlier today", end: date(0), want: StatusExpired},
		{name: "exact 180 days", end: exact(180), want: StatusFinalSixMonths},
		{name: "180 days and an hour", end: after(180, time.Hour), want: StatusFinalSixMonths},
		{name: "181 calendar days", end: date(181), want: StatusFinalSixMonths},
		{name: "182 calendar days", end: date(182), want: StatusFinalYear},
		{name: "exact 181 days", end: exact(181), want: StatusFinalYear},
		{name: "exact 365 days", end: exact(365), want: StatusFinalYear},
		{name: "366 calendar days", end: date(366), want: StatusFinalYear},
		{name: "exact 366 days", end: exact(366), want: StatusActive},
		{name: "free agent overrides date", end: date(500), freeAgent: true, want: StatusFreeAgent},
		{name: "free agent without date", end: nil, freeAgent: true, want: StatusFreeAgent},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := Classify(tc.end, tc.freeAgent, now); got != tc.want {
				t.Fatalf("Classify() = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestClassifyRaw(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC)
	tests := map[string]ContractStatus{
		"2025-01-01": StatusFinalSixMonths,
		"01/06/2025": StatusFinalYear,
		"30.06.2027": StatusActive,
		"2024-07-31": StatusExpired,
		"2024-08-01": StatusFinalSixMonths,
		"soon":       StatusUnknown,
		"":           StatusUnknown,
		"nan":        StatusUnknown,
	}
	for raw, want := range tests {
		if got := ClassifyRaw(raw, false, now); got != want {
			t.Fatalf("ClassifyRaw(%q) = %s, want %s", raw, got, want)
		}
	}
}

func TestParseContractDate(t *testing.T) {
	t.Parallel()

	want := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)
	inputs := []string{
		"2025-06-30",
		"2025-06-30 00:00:00",
		"30/06/2025",
		"30.06.2025",
		"Jun 30, 2025",
		"30 June 2025",
		"45838",
	}
	for _, raw := range inputs {
		got, ok := ParseContractDate(raw)
		if !ok {
			t.Fatalf("ParseContractDate(%q) failed", raw)
		}
		if !got.Equal(want) {
			t.Fatalf("ParseContractDate(%q) = %s, want %s", raw, got, want)
		}
	}

	if _, ok := ParseContractDate("12"); ok {
		t.Fatalf("expected small numbers to be rejected")
	}
}

func TestIsFreeAgentClub(t *testing.T) {
	t.Parallel()

	if !IsFreeAgentClub("  Livre ", DefaultFreeAgentLabels) {
		t.Fatalf("expected Livre to be a free agent label")
	}
	if IsFreeAgentClub("Santos", DefaultFreeAgentLabels) {
		t.Fatalf("expected Santos not to be a free agent label")
	}
	if IsFreeAgentClub("", DefaultFreeAgentLabels) {
		t.Fatalf("expected empty club not to be a free agent label")
	}
}
