package roster

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Field names a logical column of the roster sheet.
type Field string

const (
	FieldName        Field = "name"
	FieldNationality Field = "nationality"
	FieldBirthYear   Field = "birth_year"
	FieldAge         Field = "age"
	FieldHeight      Field = "height"
	FieldFoot        Field = "foot"
	FieldExternalID  Field = "external_id"
	FieldClub        Field = "club"
	FieldLeague      Field = "league"
	FieldPosition    Field = "position"
	FieldContractEnd Field = "contract_end"
	FieldPotential   Field = "potential"
	FieldFreeAgent   Field = "free_agent"
)

// Header aliases after NormalizeHeader. The first alias that holds a value wins.
var fieldAliases = map[Field][]string{
	FieldName:        {"name", "nome", "jogador", "player", "display_name"},
	FieldNationality: {"nationality", "nacionalidade", "pais"},
	FieldBirthYear:   {"birth_year", "ano", "ano_nascimento", "ano_de_nascimento", "year"},
	FieldAge:         {"age", "idade"},
	FieldHeight:      {"height", "altura"},
	FieldFoot:        {"foot", "dominant_foot", "pe", "pe_dominante"},
	FieldExternalID:  {"external_id", "tm_id", "tm", "transfermarkt", "transfermarkt_id", "link_tm"},
	FieldClub:        {"club", "clube"},
	FieldLeague:      {"league", "liga_do_clube", "liga", "liga_clube"},
	FieldPosition:    {"position", "posicao"},
	FieldContractEnd: {"contract_end", "fim_de_contrato", "fim_contrato", "data_fim_contrato"},
	FieldPotential:   {"potential", "potencial"},
	FieldFreeAgent:   {"free_agent", "livre", "sem_clube"},
}

// RawRow is one untyped source row with named access to optional fields.
type RawRow struct {
	Line   int
	values map[string]any
}

// NewRawRow keys values by their normalized header.
func NewRawRow(line int, values map[string]any) RawRow {
	normalized := make(map[string]any, len(values))
	for key, value := range values {
		header := NormalizeHeader(key)
		if header == "" {
			continue
		}
		if _, exists := normalized[header]; exists {
			continue
		}
		normalized[header] = value
	}
	return RawRow{Line: line, values: normalized}
}

// RowsFromTable turns a header row plus records into RawRows.
// firstLine is the source line number of records[0]. Entirely blank records are dropped.
func RowsFromTable(header []string, records [][]any, firstLine int) []RawRow {
	out := make([]RawRow, 0, len(records))
	for i, record := range records {
		values := make(map[string]any, len(header))
		blank := true
		for col, name := range header {
			if col >= len(record) {
				break
			}
			values[name] = record[col]
			if textOf(record[col]) != "" {
				blank = false
			}
		}
		if blank {
			continue
		}
		out = append(out, NewRawRow(firstLine+i, values))
	}
	return out
}

// Value returns the first non-empty value stored under any alias of f.
func (r RawRow) Value(f Field) (any, bool) {
	aliases, ok := fieldAliases[f]
	if !ok {
		aliases = []string{string(f)}
	}
	for _, alias := range aliases {
		value, exists := r.values[alias]
		if !exists || textOf(value) == "" {
			continue
		}
		return value, true
	}
	return nil, false
}

// Text returns the trimmed text of f, or "" when it is absent.
func (r RawRow) Text(f Field) string {
	value, ok := r.Value(f)
	if !ok {
		return ""
	}
	return textOf(value)
}

func (r RawRow) Len() int {
	return len(r.values)
}

func textOf(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case bool:
		return strconv.FormatBool(v)
	case time.Time:
		return v.Format("2006-01-02")
	case fmt.Stringer:
		return strings.TrimSpace(v.String())
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

// NormalizeHeader folds a column title to a lowercase ASCII key:
// "Fim de contrato" becomes "fim_de_contrato", "Posição" becomes "posicao".
func NormalizeHeader(raw string) string {
	folded := foldAccents(strings.ToLower(strings.TrimSpace(raw)))

	var b strings.Builder
	b.Grow(len(folded))
	pendingSep := false
	for _, r := range folded {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
			continue
		}
		pendingSep = true
	}
	return b.String()
}

func foldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
