package sheets

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

type SheetClient struct {
	service       *sheets.Service
	spreadsheetID string
}

// NewSheetClient authenticates with the service account credentials. No
// network call is made until one of the client's operations is invoked, and
// missing credentials fail with ErrConfiguration before that.
func NewSheetClient(ctx context.Context, creds Credentials) (*SheetClient, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}

	client := creds.jwtConfig().Client(ctx)
	srv, err := sheets.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("unable to create Sheets client: %w", err)
	}

	return &SheetClient{
		service:       srv,
		spreadsheetID: SpreadsheetID(creds.SpreadsheetID),
	}, nil
}

func (s *SheetClient) Metadata(ctx context.Context) (*Metadata, error) {
	ss, err := s.service.Spreadsheets.Get(s.spreadsheetID).
		Fields("spreadsheetId", "properties.title", "sheets.properties").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("fetch spreadsheet metadata: %w", err)
	}

	md := &Metadata{
		SpreadsheetID: ss.SpreadsheetId,
		Sheets:        []SheetInfo{},
	}
	if ss.Properties != nil {
		md.Title = ss.Properties.Title
	}
	for _, sh := range ss.Sheets {
		if sh == nil || sh.Properties == nil {
			continue
		}
		info := SheetInfo{
			ID:    sh.Properties.SheetId,
			Title: sh.Properties.Title,
			Index: sh.Properties.Index,
		}
		if grid := sh.Properties.GridProperties; grid != nil {
			info.RowCount = grid.RowCount
			info.ColumnCount = grid.ColumnCount
		}
		md.Sheets = append(md.Sheets, info)
	}

	return md, nil
}

// SheetNames returns the titles of all tabs, in spreadsheet order.
func (s *SheetClient) SheetNames(ctx context.Context) ([]string, error) {
	md, err := s.Metadata(ctx)
	if err != nil {
		return nil, err
	}

	names := []string{}
	for _, sh := range md.Sheets {
		if sh.Title != "" {
			names = append(names, sh.Title)
		}
	}

	return names, nil
}

// GetValues reads a range as formatted cell text. Trailing empty cells are
// omitted by the API, so rows may be shorter than the header.
func (s *SheetClient) GetValues(ctx context.Context, rng string) ([][]string, error) {
	resp, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read range %s: %w", rng, err)
	}

	rows := make([][]string, len(resp.Values))
	for i, row := range resp.Values {
		rows[i] = toStrings(row)
	}

	log.WithField("range", rng).Debugf("read %d rows", len(rows))

	return rows, nil
}

// UpdateValues writes values to a range, letting the spreadsheet parse them
// as if typed by a user.
func (s *SheetClient) UpdateValues(ctx context.Context, rng string, values [][]interface{}) error {
	resp, err := s.service.Spreadsheets.Values.Update(
		s.spreadsheetID,
		rng,
		&sheets.ValueRange{Values: values},
	).ValueInputOption(valueInputUserEntered).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("write range %s: %w", rng, err)
	}

	log.WithField("range", resp.UpdatedRange).Debugf("updated %d cells", resp.UpdatedCells)

	return nil
}

// APIMessage extracts the human readable part of a Sheets API error.
func APIMessage(err error) string {
	var gErr *googleapi.Error
	if errors.As(err, &gErr) && gErr.Message != "" {
		return gErr.Message
	}

	return err.Error()
}

func toStrings(row []interface{}) []string {
	out := make([]string, len(row))
	for i, v := range row {
		if v != nil {
			out[i] = fmt.Sprint(v)
		}
	}

	return out
}
