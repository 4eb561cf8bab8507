package sheets

import (
	"fmt"
	"regexp"
	"strings"
)

// MissingColumnError is returned by ResolveColumns when the header row does
// not carry one of the requested fields.
type MissingColumnError struct {
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("Could not find %q column in the sheet.", e.Column)
}

// ResolveColumns maps each field to the zero-based index of the first header
// cell that equals it exactly. Matching is case sensitive.
func ResolveColumns(header []string, fields ...string) (map[string]int, error) {
	index := make(map[string]int, len(fields))
	for _, field := range fields {
		ix := -1
		for i, cell := range header {
			if cell == field {
				ix = i
				break
			}
		}
		if ix == -1 {
			return nil, &MissingColumnError{Column: field}
		}
		index[field] = ix
	}

	return index, nil
}

// ColumnLabel converts a zero-based column index to its spreadsheet label
// (0 -> A, 25 -> Z, 26 -> AA). Negative indices have no label.
func ColumnLabel(index int) string {
	label := ""
	for index >= 0 {
		label = string(rune('A'+index%26)) + label
		index = index/26 - 1
	}

	return label
}

// ColumnIndex is the inverse of ColumnLabel.
func ColumnIndex(label string) (int, error) {
	if !IsColumnLabel(label) {
		return 0, fmt.Errorf("invalid column label %q", label)
	}

	n := 0
	for _, c := range strings.ToUpper(label) {
		n = n*26 + int(c-'A') + 1
	}

	return n - 1, nil
}

var columnLabel = regexp.MustCompile(`^[A-Za-z]+$`)

func IsColumnLabel(label string) bool {
	return columnLabel.MatchString(label)
}

var plainSheetName = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// A1 builds an A1 notation range for a sheet, quoting the sheet title when
// it contains anything other than letters, digits or underscores.
func A1(sheet, cells string) string {
	if plainSheetName.MatchString(sheet) {
		return sheet + "!" + cells
	}

	return "'" + strings.ReplaceAll(sheet, "'", "''") + "'!" + cells
}
