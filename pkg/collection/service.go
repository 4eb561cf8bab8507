package collection

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	log "github.com/sirupsen/logrus"

	"mealcheck/pkg/sheets"
)

var nowFunc = time.Now

// Opener returns a client for the backing spreadsheet. It is called once per
// operation, so every lookup and update authenticates on its own.
type Opener func(ctx context.Context) (sheets.Spreadsheet, error)

// Connect returns an Opener that builds a SheetClient from the credentials.
func Connect(creds sheets.Credentials) Opener {
	return func(ctx context.Context) (sheets.Spreadsheet, error) {
		return sheets.NewSheetClient(ctx, creds)
	}
}

type Service struct {
	open Opener
}

func NewService(open Opener) *Service {
	return &Service{open: open}
}

// Request sheet names are trimmed for validation only. The range is built
// from the title as given, which may legitimately carry spaces.
type lookupRequest struct {
	Sheet  string `validate:"required"`
	Suffix string `validate:"len=3,number"`
}

type collectRequest struct {
	Sheet  string `validate:"required"`
	Row    int    `validate:"gte=2"`
	Column string `validate:"required,alpha"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

var fieldMessages = map[string]string{
	"Sheet":  MsgSelectSheet,
	"Suffix": MsgRollDigits,
	"Row":    MsgInvalidRow,
	"Column": MsgInvalidColumn,
}

func checkRequest(rq interface{}) error {
	err := validate.Struct(rq)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if errors.As(err, &fieldErrors) && len(fieldErrors) > 0 {
		if msg, ok := fieldMessages[fieldErrors[0].Field()]; ok {
			return validationError(msg)
		}
	}

	return &Error{Kind: ErrValidation, Message: err.Error(), Err: err}
}

// ListSheets returns the titles of the spreadsheet's tabs. Failures are
// logged and reported as an empty list.
func (s *Service) ListSheets(ctx context.Context) []string {
	client, err := s.connect(ctx)
	if err != nil {
		log.WithField("op", "list-sheets").Errorf("%v", err)
		return []string{}
	}

	names, err := client.SheetNames(ctx)
	if err != nil {
		log.WithField("op", "list-sheets").Errorf("API Error (getSheets): %v", err)
		return []string{}
	}
	if names == nil {
		return []string{}
	}

	return names
}

// Lookup finds the first row of the sheet whose Roll ends with the 3 digit
// suffix.
func (s *Service) Lookup(ctx context.Context, sheet, suffix string) (*StudentRecord, error) {
	if err := checkRequest(lookupRequest{Sheet: strings.TrimSpace(sheet), Suffix: suffix}); err != nil {
		return nil, err
	}

	client, err := s.connect(ctx)
	if err != nil {
		return nil, err
	}

	rng := sheets.A1(sheet, sheets.WideColumns)
	rows, err := client.GetValues(ctx, rng)
	if err != nil {
		log.WithFields(log.Fields{"op": "lookup", "sheet": sheet, "range": rng}).Errorf("API Error (searchRollNumber): %v", err)
		return nil, &RemoteError{Op: "lookup", Err: err}
	}

	record, err := findStudent(rows, suffix)
	if err != nil {
		log.WithFields(log.Fields{"sheet": sheet, "suffix": suffix}).Debugf("lookup failed: %v", err)
		return nil, err
	}

	log.WithFields(log.Fields{"sheet": sheet, "row": record.RowPosition}).Debugf("found roll %s", record.Roll)

	return record, nil
}

func findStudent(rows [][]string, suffix string) (*StudentRecord, error) {
	if len(rows) == 0 {
		return nil, notFoundError(MsgSheetEmpty, nil)
	}

	columns, err := sheets.ResolveColumns(rows[0], sheets.RequiredFields...)
	if err != nil {
		return nil, notFoundError(err.Error(), err)
	}

	for i := 1; i < len(rows); i++ {
		row := rows[i]
		roll := cell(row, columns[sheets.FieldRoll])
		if roll == "" || !strings.HasSuffix(roll, suffix) {
			continue
		}

		status := cell(row, columns[sheets.FieldStatus])
		if status == "" {
			status = NotCollected
		}

		return &StudentRecord{
			RowPosition:  i + 1,
			Roll:         roll,
			Name:         cell(row, columns[sheets.FieldName]),
			Preference:   cell(row, columns[sheets.FieldPreference]),
			Status:       status,
			StatusColumn: sheets.ColumnLabel(columns[sheets.FieldStatus]),
		}, nil
	}

	return nil, notFoundError(MsgRollNotFound, nil)
}

// MarkCollected writes the current UTC time into the status cell of the row
// and returns the value written. The row is not re-read first: if rows moved
// since the lookup, whatever row now sits at rowPosition is updated.
func (s *Service) MarkCollected(ctx context.Context, sheet string, rowPosition int, statusColumn string) (string, error) {
	rq := collectRequest{Sheet: strings.TrimSpace(sheet), Row: rowPosition, Column: statusColumn}
	if err := checkRequest(rq); err != nil {
		return "", err
	}

	client, err := s.connect(ctx)
	if err != nil {
		return "", err
	}

	timestamp := nowFunc().UTC().Format(TimestampLayout)
	rng := sheets.A1(sheet, strings.ToUpper(statusColumn)+strconv.Itoa(rowPosition))

	if err := client.UpdateValues(ctx, rng, [][]interface{}{{timestamp}}); err != nil {
		log.WithFields(log.Fields{"op": "mark-collected", "sheet": sheet, "range": rng}).Errorf("API Error (markAsCollected): %v", err)
		return "", &RemoteError{Op: "mark-collected", Err: err}
	}

	log.WithFields(log.Fields{"sheet": sheet, "range": rng}).Infof("marked collected at %s", timestamp)

	return timestamp, nil
}

// Metadata returns the spreadsheet title and the properties of its tabs.
func (s *Service) Metadata(ctx context.Context) (*sheets.Metadata, error) {
	client, err := s.connect(ctx)
	if err != nil {
		return nil, err
	}

	md, err := client.Metadata(ctx)
	if err != nil {
		log.WithField("op", "metadata").Errorf("API Error (metadata): %v", err)
		return nil, &RemoteError{Op: "metadata", Err: err}
	}

	return md, nil
}

func (s *Service) connect(ctx context.Context) (sheets.Spreadsheet, error) {
	client, err := s.open(ctx)
	switch {
	case err == nil:
		return client, nil
	case errors.Is(err, ErrConfiguration):
		return nil, err
	default:
		return nil, &RemoteError{Op: "connect", Err: err}
	}
}

func cell(row []string, ix int) string {
	if ix < len(row) {
		return row[ix]
	}
	return ""
}
