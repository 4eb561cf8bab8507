package sheets

import "context"

// Spreadsheet is the set of remote operations the collection services need
// from the backing spreadsheet. SheetClient is the production implementation.
type Spreadsheet interface {
	SheetNames(ctx context.Context) ([]string, error)
	GetValues(ctx context.Context, rng string) ([][]string, error)
	UpdateValues(ctx context.Context, rng string, values [][]interface{}) error
	Metadata(ctx context.Context) (*Metadata, error)
}

// Metadata describes a spreadsheet and its tabs.
type Metadata struct {
	SpreadsheetID string      `json:"spreadsheetId"`
	Title         string      `json:"title"`
	Sheets        []SheetInfo `json:"sheets"`
}

type SheetInfo struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Index       int64  `json:"index"`
	RowCount    int64  `json:"rowCount"`
	ColumnCount int64  `json:"columnCount"`
}

// Header names of the columns every class sheet must carry.
const (
	FieldRoll       = "Roll"
	FieldName       = "Name"
	FieldPreference = "Preference"
	FieldStatus     = "Status"
)

var RequiredFields = []string{
	FieldRoll,
	FieldName,
	FieldPreference,
	FieldStatus,
}

const (
	// WideColumns covers every column a class sheet is expected to use.
	WideColumns = "A:Z"

	valueInputUserEntered = "USER_ENTERED"
)
