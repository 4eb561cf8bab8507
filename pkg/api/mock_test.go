package api

import (
	"context"

	"mealcheck/pkg/collection"
	"mealcheck/pkg/sheets"
)

type markCall struct {
	Sheet  string
	Row    int
	Column string
}

type mockCollector struct {
	SheetNames   []string
	LookupFunc   func(sheet, suffix string) (*collection.StudentRecord, error)
	MarkFunc     func(sheet string, row int, column string) (string, error)
	MetadataFunc func() (*sheets.Metadata, error)
	LookupCalls  int
	MarkCalls    []markCall
}

func (m *mockCollector) ListSheets(ctx context.Context) []string {
	if m.SheetNames == nil {
		return []string{}
	}
	return m.SheetNames
}

func (m *mockCollector) Lookup(ctx context.Context, sheet, suffix string) (*collection.StudentRecord, error) {
	m.LookupCalls++
	return m.LookupFunc(sheet, suffix)
}

func (m *mockCollector) MarkCollected(ctx context.Context, sheet string, row int, column string) (string, error) {
	m.MarkCalls = append(m.MarkCalls, markCall{Sheet: sheet, Row: row, Column: column})
	return m.MarkFunc(sheet, row, column)
}

func (m *mockCollector) Metadata(ctx context.Context) (*sheets.Metadata, error) {
	return m.MetadataFunc()
}
