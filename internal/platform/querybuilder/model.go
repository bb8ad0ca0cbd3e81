package querybuilder

import (
	"fmt"
	"reflect"
	"strings"
)

// InsertModel builds an INSERT from the `db` tags of model. Fields tagged
// `db:"col,readonly"` are skipped so store-generated columns stay untouched.
func InsertModel(table string, model any, returning ...string) (string, []any, error) {
	cols, vals, err := writableColumns(model)
	if err != nil {
		return "", nil, err
	}
	return InsertInto(table).
		Columns(cols...).
		Values(vals...).
		Returning(returning...).
		ToSQL()
}

// UpdateModel builds an UPDATE of every writable column, plus the given conditions.
// A model without writable columns surfaces its error from ToSQL.
func UpdateModel(table string, model any, where ...Condition) *UpdateBuilder {
	b := Update(table)
	cols, vals, err := writableColumns(model)
	if err != nil {
		b.err = fmt.Errorf("update model: %w", err)
		return b
	}
	for i, col := range cols {
		b.Set(col, vals[i])
	}
	return b.Where(where...)
}

func writableColumns(model any) ([]string, []any, error) {
	value := reflect.ValueOf(model)
	for value.Kind() == reflect.Pointer {
		if value.IsNil() {
			return nil, nil, fmt.Errorf("model cannot be nil")
		}
		value = value.Elem()
	}
	if value.Kind() != reflect.Struct {
		return nil, nil, fmt.Errorf("model must be struct")
	}

	typ := value.Type()
	cols := make([]string, 0, typ.NumField())
	vals := make([]any, 0, typ.NumField())
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}
		parts := strings.Split(field.Tag.Get("db"), ",")
		col := strings.TrimSpace(parts[0])
		if col == "" || col == "-" || hasOption(parts[1:], "readonly") {
			continue
		}
		cols = append(cols, col)
		vals = append(vals, value.Field(i).Interface())
	}

	if len(cols) == 0 {
		return nil, nil, fmt.Errorf("model has no db columns")
	}
	return cols, vals, nil
}

func hasOption(options []string, want string) bool {
	for _, opt := range options {
		if strings.TrimSpace(opt) == want {
			return true
		}
	}
	return false
}
