package sheets

import (
	"admission/internal/structures"
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cast"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const (
	valueInputRaw  = "RAW"
	dimensionRows  = "ROWS"
	insertDataRows = "INSERT_ROWS"
)

type googleWorksheet struct {
	srv           *sheets.Service
	spreadsheetID string
	sheetID       int64
	title         string
}

func (w *googleWorksheet) Title() string {
	return w.title
}

func (w *googleWorksheet) fail(op string, err error) error {
	return &RemoteAccessError{Op: op, Sheet: w.title, Err: err}
}

// a1 quotes the worksheet title for A1 notation.
func (w *googleWorksheet) a1(cells string) string {
	quoted := "'" + strings.ReplaceAll(w.title, "'", "''") + "'"
	if cells == "" {
		return quoted
	}
	return quoted + "!" + cells
}

func (w *googleWorksheet) GetAllValues(ctx context.Context) ([][]string, error) {
	resp, err := w.srv.Spreadsheets.Values.Get(w.spreadsheetID, w.a1("")).
		ValueRenderOption("FORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		return nil, w.fail("get", err)
	}
	return toStrings(resp.Values), nil
}

func (w *googleWorksheet) AppendRow(ctx context.Context, row []string) error {
	_, err := w.srv.Spreadsheets.Values.Append(w.spreadsheetID, w.a1(""), &sheets.ValueRange{
		Values: [][]interface{}{toInterfaces(row)},
	}).
		ValueInputOption(valueInputRaw).
		InsertDataOption(insertDataRows).
		Context(ctx).
		Do()
	if err != nil {
		return w.fail("append", err)
	}
	return nil
}

func (w *googleWorksheet) UpdateRow(ctx context.Context, rowIndex int, fromCol string, values []string) error {
	start := columnNumber(fromCol)
	cells := fmt.Sprintf("%s%d:%s%d", fromCol, rowIndex, ColumnName(start+len(values)-1), rowIndex)
	_, err := w.srv.Spreadsheets.Values.Update(w.spreadsheetID, w.a1(cells), &sheets.ValueRange{
		Values: [][]interface{}{toInterfaces(values)},
	}).
		ValueInputOption(valueInputRaw).
		Context(ctx).
		Do()
	if err != nil {
		return w.fail("update", err)
	}
	return nil
}

func (w *googleWorksheet) DeleteRow(ctx context.Context, rowIndex int) error {
	_, err := w.srv.Spreadsheets.BatchUpdate(w.spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			DeleteDimension: &sheets.DeleteDimensionRequest{
				Range: &sheets.DimensionRange{
					SheetId:    w.sheetID,
					Dimension:  dimensionRows,
					StartIndex: int64(rowIndex - 1),
					EndIndex:   int64(rowIndex),
				},
			},
		}},
	}).Context(ctx).Do()
	if err != nil {
		return w.fail("delete", err)
	}
	return nil
}

func toStrings(values [][]interface{}) [][]string {
	rows := make([][]string, len(values))
	for i, row := range values {
		rows[i] = make([]string, len(row))
		for j, cell := range row {
			rows[i][j] = cast.ToString(cell)
		}
	}
	return rows
}

func toInterfaces(row []string) []interface{} {
	out := make([]interface{}, len(row))
	for i, v := range row {
		out[i] = v
	}
	return out
}

func columnNumber(name string) int {
	n := 0
	for _, r := range strings.ToUpper(name) {
		n = n*26 + int(r-'A'+1)
	}
	return n
}

func clientOptions(conf structures.SpreadsheetConfig) []option.ClientOption {
	opts := []option.ClientOption{option.WithScopes(sheets.SpreadsheetsScope)}
	if conf.CredentialsJSON != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(conf.CredentialsJSON)))
	} else {
		opts = append(opts, option.WithCredentialsFile(conf.CredentialsFile))
	}
	return opts
}

// NewWorkbook opens the spreadsheet and resolves the configured worksheet ids to titles.
func NewWorkbook(conf *structures.Config) (*Workbook, error) {
	ctx, cancel := context.WithTimeout(context.Background(), conf.Spreadsheet.RequestTimeout)
	defer cancel()

	srv, err := sheets.NewService(ctx, clientOptions(conf.Spreadsheet)...)
	if err != nil {
		return nil, fmt.Errorf("sheets client: %w", err)
	}

	id := conf.Spreadsheet.SpreadsheetID
	meta, err := srv.Spreadsheets.Get(id).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return nil, &RemoteAccessError{Op: "open", Sheet: id, Err: err}
	}

	titles := make(map[int64]string, len(meta.Sheets))
	for _, s := range meta.Sheets {
		if s.Properties != nil {
			titles[s.Properties.SheetId] = s.Properties.Title
		}
	}

	open := func(sheetID int64) (Worksheet, error) {
		title, ok := titles[sheetID]
		if !ok {
			return nil, fmt.Errorf("worksheet %d not found in spreadsheet %s", sheetID, id)
		}
		return &googleWorksheet{srv: srv, spreadsheetID: id, sheetID: sheetID, title: title}, nil
	}

	book := &Workbook{}
	for _, ws := range []struct {
		id  int64
		dst *Worksheet
	}{
		{conf.Spreadsheet.ContentSheetID, &book.Content},
		{conf.Spreadsheet.TelemetrySheetID, &book.Telemetry},
		{conf.Spreadsheet.UsersSheetID, &book.Users},
		{conf.Spreadsheet.AdminsSheetID, &book.Admins},
	} {
		w, err := open(ws.id)
		if err != nil {
			return nil, err
		}
		*ws.dst = w
	}
	return book, nil
}
