package roster

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/scout-pro/internal/domain/clublink"
	"github.com/riskibarqy/scout-pro/internal/domain/player"
)

// ErrRequiredField marks a row that lacks a field every player must have.
var ErrRequiredField = errors.New("required field missing")

const DefaultPotentialThreshold = 4.0

var (
	spielerPattern  = regexp.MustCompile(`spieler/(\d+)`)
	unitSuffix      = regexp.MustCompile(`(?i)\s*(cm|m)\.?$`)
	potentialLabels = []string{"alto", "alta", "high", "elite"}
	truthyLabels    = map[string]struct{}{"1": {}, "true": {}, "yes": {}, "sim": {}, "x": {}, "y": {}, "s": {}}
)

// NormalizedRow is a RawRow coerced into typed values.
type NormalizedRow struct {
	Line           int
	Name           string `validate:"required"`
	Nationality    *string
	BirthYear      *int
	Age            *int
	HeightCM       *int `validate:"omitempty,gt=0"`
	Foot           *player.Foot
	ExternalID     *string
	Club           string
	League         string
	Position       string
	ContractEnd    *time.Time
	ContractEndRaw string
	FreeAgent      bool
	Potential      string
	HighPotential  bool
}

// HasClubLink reports whether the row carries any club association data.
func (r NormalizedRow) HasClubLink() bool {
	return r.Club != "" || r.League != "" || r.Position != "" || r.ContractEndRaw != "" || r.FreeAgent
}

// Player maps the row onto a player record without an ID.
func (r NormalizedRow) Player() player.Player {
	return player.Player{
		Name:         r.Name,
		Nationality:  r.Nationality,
		BirthYear:    r.BirthYear,
		Age:          r.Age,
		HeightCM:     r.HeightCM,
		DominantFoot: r.Foot,
		ExternalID:   r.ExternalID,
	}
}

// ClubLink maps the row onto the player's club link, classified at now.
func (r NormalizedRow) ClubLink(playerID int64, now time.Time) clublink.ClubLink {
	status := clublink.Classify(r.ContractEnd, r.FreeAgent, now)
	return clublink.ClubLink{
		PlayerID:       playerID,
		Club:           r.Club,
		League:         r.League,
		Position:       r.Position,
		ContractEnd:    r.ContractEnd,
		ContractStatus: status,
	}
}

// Raw renders the row back into canonical raw values.
func (r NormalizedRow) Raw() RawRow {
	values := map[string]any{string(FieldName): r.Name}
	setText := func(f Field, v string) {
		if v != "" {
			values[string(f)] = v
		}
	}
	setInt := func(f Field, v *int) {
		if v != nil {
			values[string(f)] = strconv.Itoa(*v)
		}
	}
	if r.Nationality != nil {
		setText(FieldNationality, *r.Nationality)
	}
	setInt(FieldBirthYear, r.BirthYear)
	setInt(FieldAge, r.Age)
	setInt(FieldHeight, r.HeightCM)
	if r.Foot != nil {
		setText(FieldFoot, string(*r.Foot))
	}
	if r.ExternalID != nil {
		setText(FieldExternalID, *r.ExternalID)
	}
	setText(FieldClub, r.Club)
	setText(FieldLeague, r.League)
	setText(FieldPosition, r.Position)
	if r.ContractEnd != nil {
		setText(FieldContractEnd, r.ContractEnd.Format("2006-01-02"))
	} else {
		setText(FieldContractEnd, r.ContractEndRaw)
	}
	setText(FieldPotential, r.Potential)
	if r.FreeAgent {
		setText(FieldFreeAgent, "true")
	}
	return NewRawRow(r.Line, values)
}

type NormalizerConfig struct {
	FreeAgentLabels    []string
	PotentialThreshold float64
}

// Normalizer coerces raw rows. It holds no mutable state and is safe for concurrent use.
type Normalizer struct {
	freeAgentLabels    []string
	potentialThreshold float64
	validate           *validator.Validate
}

func NewNormalizer(cfg NormalizerConfig) *Normalizer {
	labels := cfg.FreeAgentLabels
	if len(labels) == 0 {
		labels = clublink.DefaultFreeAgentLabels
	}
	threshold := cfg.PotentialThreshold
	if threshold <= 0 {
		threshold = DefaultPotentialThreshold
	}
	return &Normalizer{
		freeAgentLabels:    append([]string(nil), labels...),
		potentialThreshold: threshold,
		validate:           validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Normalize never fails on malformed optional fields; they become nil.
// A row without a display name fails with ErrRequiredField.
func (n *Normalizer) Normalize(row RawRow) (NormalizedRow, error) {
	out := NormalizedRow{
		Line:           row.Line,
		Name:           row.Text(FieldName),
		Nationality:    optionalText(row.Text(FieldNationality)),
		BirthYear:      ParseInt(row.Text(FieldBirthYear)),
		Age:            ParseInt(row.Text(FieldAge)),
		HeightCM:       ParseHeightCM(row.Text(FieldHeight)),
		Foot:           ParseFoot(row.Text(FieldFoot)),
		ExternalID:     ExtractExternalID(row.Text(FieldExternalID)),
		Club:           cleanText(row.Text(FieldClub)),
		League:         cleanText(row.Text(FieldLeague)),
		Position:       cleanText(row.Text(FieldPosition)),
		ContractEndRaw: cleanText(row.Text(FieldContractEnd)),
		Potential:      cleanText(row.Text(FieldPotential)),
	}
	if isMissing(out.Name) {
		out.Name = ""
	}
	if end, ok := clublink.ParseContractDate(out.ContractEndRaw); ok {
		out.ContractEnd = &end
	}
	out.FreeAgent = isTruthy(row.Text(FieldFreeAgent)) || clublink.IsFreeAgentClub(out.Club, n.freeAgentLabels)
	out.HighPotential = n.isHighPotential(out.Potential)

	if err := n.validate.Struct(out); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return out, fmt.Errorf("%w: line %d: %s failed %q", ErrRequiredField, row.Line, fieldErrs[0].Field(), fieldErrs[0].Tag())
		}
		return out, fmt.Errorf("%w: line %d: %v", ErrRequiredField, row.Line, err)
	}

	return out, nil
}

func (n *Normalizer) isHighPotential(raw string) bool {
	if raw == "" {
		return false
	}
	lower := strings.ToLower(foldAccents(raw))
	for _, label := range potentialLabels {
		if strings.Contains(lower, label) {
			return true
		}
	}
	if value, ok := parseNumber(raw); ok {
		return value >= n.potentialThreshold
	}
	return false
}

// ParseInt coerces "1999", "1999.0" or 1999.7 to an int, truncating toward zero.
func ParseInt(raw string) *int {
	value, ok := parseNumber(raw)
	if !ok {
		return nil
	}
	out := int(value)
	return &out
}

// ParseHeightCM accepts meters or centimeters. Values below 3 are meters.
func ParseHeightCM(raw string) *int {
	value, ok := parseNumber(unitSuffix.ReplaceAllString(strings.TrimSpace(raw), ""))
	if !ok || value <= 0 {
		return nil
	}
	if value < 3 {
		value *= 100
	}
	out := int(math.Round(value))
	return &out
}

// ExtractExternalID pulls the numeric ID out of a Transfermarkt profile URL.
// Bare values are returned unchanged.
func ExtractExternalID(raw string) *string {
	value := strings.TrimSpace(raw)
	if isMissing(value) {
		return nil
	}
	if m := spielerPattern.FindStringSubmatch(value); len(m) == 2 {
		return &m[1]
	}
	return &value
}

func ParseFoot(raw string) *player.Foot {
	value := strings.ToLower(foldAccents(strings.TrimSpace(raw)))
	if isMissing(value) {
		return nil
	}

	var foot player.Foot
	switch value {
	case "direito", "right", "destro":
		foot = player.FootRight
	case "esquerdo", "left", "canhoto":
		foot = player.FootLeft
	case "ambos", "both", "ambidestro", "ambidextrous":
		foot = player.FootBoth
	default:
		foot = player.Foot(strings.TrimSpace(raw))
	}
	return &foot
}

func parseNumber(raw string) (float64, bool) {
	value := strings.TrimSpace(raw)
	if isMissing(value) {
		return 0, false
	}
	value = strings.ReplaceAll(value, ",", ".")
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
		return 0, false
	}
	return parsed, true
}

func optionalText(raw string) *string {
	value := cleanText(raw)
	if value == "" {
		return nil
	}
	return &value
}

func cleanText(raw string) string {
	value := strings.TrimSpace(raw)
	if isMissing(value) {
		return ""
	}
	return value
}

func isMissing(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "nan", "none", "null", "n/a", "-":
		return true
	}
	return false
}

func isTruthy(raw string) bool {
	_, ok := truthyLabels[strings.ToLower(strings.TrimSpace(raw))]
	return ok
}
