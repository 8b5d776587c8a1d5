package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/BatmanBruc/feedback-bot/types"
)

var (
	ErrInvalidSheet = errors.New("invalid spreadsheet reference")
	sheetURLRe      = regexp.MustCompile(`/spreadsheets/d/([a-zA-Z0-9_-]+)`)
	sheetIDRe       = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
)

// SpreadsheetID accepts a full spreadsheet URL or a bare ID.
func SpreadsheetID(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if m := sheetURLRe.FindStringSubmatch(ref); m != nil {
		return m[1], nil
	}
	if ref != "" && sheetIDRe.MatchString(ref) {
		return ref, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidSheet, ref)
}

type SheetsConfig struct {
	SpreadsheetID string
	// Range selects the worksheet, "A1" appends to the first one.
	Range   string
	Columns []types.Column
}

// SheetsRecordStore appends one row per record to a Google spreadsheet.
type SheetsRecordStore struct {
	svc     *sheets.Service
	id      string
	rng     string
	columns []types.Column
}

func NewSheetsRecordStore(ctx context.Context, cfg SheetsConfig, opts ...option.ClientOption) (*SheetsRecordStore, error) {
	if cfg.SpreadsheetID == "" {
		return nil, fmt.Errorf("NewSheetsRecordStore: %w: empty id", ErrInvalidSheet)
	}
	if cfg.Range == "" {
		cfg.Range = "A1"
	}
	opts = append([]option.ClientOption{option.WithScopes(sheets.SpreadsheetsScope)}, opts...)
	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("NewSheetsRecordStore: %w", err)
	}
	return &SheetsRecordStore{
		svc:     svc,
		id:      cfg.SpreadsheetID,
		rng:     cfg.Range,
		columns: cfg.Columns,
	}, nil
}

// Append writes values as entered (RAW) so answers like "+7701" or
// "01.02.1990" are not reinterpreted by Sheets.
func (s *SheetsRecordStore) Append(ctx context.Context, rec types.Record) error {
	row := rec.Row(s.columns)
	values := make([]interface{}, len(row))
	for i, v := range row {
		values[i] = v
	}

	_, err := s.svc.Spreadsheets.Values.
		Append(s.id, s.rng, &sheets.ValueRange{Values: [][]interface{}{values}}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("SheetsRecordStore.Append: %w", err)
	}
	return nil
}

// Ping checks that the spreadsheet exists and the credentials can read it.
func (s *SheetsRecordStore) Ping(ctx context.Context) error {
	_, err := s.svc.Spreadsheets.Get(s.id).Fields("spreadsheetId").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("SheetsRecordStore.Ping: %w", err)
	}
	return nil
}
