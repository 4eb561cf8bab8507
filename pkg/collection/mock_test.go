package collection

import (
	"context"

	"mealcheck/pkg/sheets"
)

type updateCall struct {
	Range  string
	Values [][]interface{}
}

type mockSpreadsheet struct {
	Names       []string
	NamesErr    error
	Rows        [][]string
	GetErr      error
	UpdateErr   error
	Meta        *sheets.Metadata
	MetaErr     error
	GetCalls    []string
	UpdateCalls []updateCall
}

func (m *mockSpreadsheet) SheetNames(ctx context.Context) ([]string, error) {
	return m.Names, m.NamesErr
}

func (m *mockSpreadsheet) GetValues(ctx context.Context, rng string) ([][]string, error) {
	m.GetCalls = append(m.GetCalls, rng)
	return m.Rows, m.GetErr
}

func (m *mockSpreadsheet) UpdateValues(ctx context.Context, rng string, values [][]interface{}) error {
	m.UpdateCalls = append(m.UpdateCalls, updateCall{Range: rng, Values: values})
	return m.UpdateErr
}

func (m *mockSpreadsheet) Metadata(ctx context.Context) (*sheets.Metadata, error) {
	return m.Meta, m.MetaErr
}

// opener counts how often the service asked for a client.
type opener struct {
	sheet *mockSpreadsheet
	err   error
	calls int
}

func (o *opener) open(ctx context.Context) (sheets.Spreadsheet, error) {
	o.calls++
	if o.err != nil {
		return nil, o.err
	}
	return o.sheet, nil
}
