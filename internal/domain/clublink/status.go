package clublink

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// ContractStatus buckets the time left on a player's contract.
type ContractStatus string

const (
	StatusActive         ContractStatus = "active"
	StatusFinalYear      ContractStatus = "final-year"
	StatusFinalSixMonths ContractStatus = "final-six-months"
	StatusExpired        ContractStatus = "expired"
	StatusFreeAgent      ContractStatus = "free-agent"
	StatusUnknown        ContractStatus = "unknown"
)

const (
	finalSixMonthsDays = 180
	finalYearDays      = 365
)

var allStatuses = map[ContractStatus]struct{}{
	StatusActive:         {},
	StatusFinalYear:      {},
	StatusFinalSixMonths: {},
	StatusExpired:        {},
	StatusFreeAgent:      {},
	StatusUnknown:        {},
}

func (s ContractStatus) Valid() bool {
	_, ok := allStatuses[s]
	return ok
}

// DefaultFreeAgentLabels are club names that mean the player has no club.
var DefaultFreeAgentLabels = []string{
	"livre",
	"sem clube",
	"free agent",
	"without club",
	"vereinslos",
	"clubless",
}

// Classify maps a contract end date to a status relative to now.
// Day counts are whole elapsed days; an end date before now is expired.
func Classify(end *time.Time, freeAgent bool, now time.Time) ContractStatus {
	if freeAgent {
		return StatusFreeAgent
	}
	if end == nil {
		return StatusUnknown
	}

	days := DaysRemaining(*end, now)
	switch {
	case days < 0:
		return StatusExpired
	case days <= finalSixMonthsDays:
		return StatusFinalSixMonths
	case days <= finalYearDays:
		return StatusFinalYear
	default:
		return StatusActive
	}
}

// ClassifyRaw parses raw before classifying; unparseable input is unknown.
func ClassifyRaw(raw string, freeAgent bool, now time.Time) ContractStatus {
	if freeAgent {
		return StatusFreeAgent
	}
	end, ok := ParseContractDate(raw)
	if !ok {
		return StatusUnknown
	}
	return Classify(&end, false, now)
}

// DaysRemaining counts whole days from now until end, rounding down, so any
// end strictly before now is negative.
func DaysRemaining(end, now time.Time) int {
	return int(math.Floor(end.Sub(now).Hours() / 24))
}

// IsFreeAgentClub reports whether club matches one of labels, ignoring case.
func IsFreeAgentClub(club string, labels []string) bool {
	club = strings.TrimSpace(club)
	if club == "" {
		return false
	}
	for _, label := range labels {
		if strings.EqualFold(club, strings.TrimSpace(label)) {
			return true
		}
	}
	return false
}

var contractDateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2/1/2006",
	"2.1.2006",
	"2-1-2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"2 January 2006",
	"2/1/06",
}

// Spreadsheet serial dates count days from 1899-12-30.
var spreadsheetEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

const (
	minSpreadsheetSerial = 20000 // 1954-10-03
	maxSpreadsheetSerial = 80000 // 2119-01-10
)

// ParseContractDate accepts the date shapes found in scouting sheets.
// The result is a UTC date at midnight.
func ParseContractDate(raw string) (time.Time, bool) {
	value := strings.TrimSpace(raw)
	if value == "" || strings.EqualFold(value, "nan") || value == "-" {
		return time.Time{}, false
	}

	for _, layout := range contractDateLayouts {
		parsed, err := time.Parse(layout, value)
		if err != nil {
			continue
		}
		return time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 0, 0, 0, 0, time.UTC), true
	}

	if serial, err := strconv.ParseFloat(value, 64); err == nil {
		if serial >= minSpreadsheetSerial && serial <= maxSpreadsheetSerial {
			return spreadsheetEpoch.AddDate(0, 0, int(serial)), true
		}
	}

	return time.Time{}, false
}
