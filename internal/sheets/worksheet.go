// Package sheets is the remote store: a Google spreadsheet with one
// worksheet per table (content, telemetry, users, admins).
package sheets

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"google.golang.org/api/googleapi"
)

// Worksheet is a single table of the remote spreadsheet. Row indexes are
// 1-based like the spreadsheet UI.
type Worksheet interface {
	Title() string
	GetAllValues(ctx context.Context) ([][]string, error)
	AppendRow(ctx context.Context, row []string) error
	// UpdateRow overwrites consecutive cells of a row starting at column fromCol ("A", "B", ...).
	UpdateRow(ctx context.Context, rowIndex int, fromCol string, values []string) error
	DeleteRow(ctx context.Context, rowIndex int) error
}

// Workbook groups the worksheets the service works with.
type Workbook struct {
	Content   Worksheet
	Telemetry Worksheet
	Users     Worksheet
	Admins    Worksheet
}

// RemoteAccessError is returned for every failed spreadsheet call.
type RemoteAccessError struct {
	Op    string
	Sheet string
	Err   error
}

func (e *RemoteAccessError) Error() string {
	return fmt.Sprintf("spreadsheet %s on %q: %v", e.Op, e.Sheet, e.Err)
}

func (e *RemoteAccessError) Unwrap() error {
	return e.Err
}

// Transient reports whether retrying the call may succeed.
func (e *RemoteAccessError) Transient() bool {
	var gerr *googleapi.Error
	if errors.As(e.Err, &gerr) {
		return gerr.Code == http.StatusTooManyRequests || gerr.Code >= http.StatusInternalServerError
	}
	var nerr net.Error
	if errors.As(e.Err, &nerr) {
		return nerr.Timeout()
	}
	return errors.Is(e.Err, context.DeadlineExceeded)
}

func IsRemoteAccess(err error) bool {
	var rerr *RemoteAccessError
	return errors.As(err, &rerr)
}

func IsTransient(err error) bool {
	var rerr *RemoteAccessError
	return errors.As(err, &rerr) && rerr.Transient()
}

// EnsureHeader writes header into an empty worksheet and returns the current rows.
func EnsureHeader(ctx context.Context, ws Worksheet, header []string) ([][]string, error) {
	rows, err := ws.GetAllValues(ctx)
	if err != nil {
		return nil, err
	}
	if len(rows) > 0 {
		return rows, nil
	}
	if err := ws.AppendRow(ctx, header); err != nil {
		return nil, err
	}
	return [][]string{header}, nil
}

// ColumnName converts a 1-based column number into its letter name.
func ColumnName(n int) string {
	name := ""
	for n > 0 {
		n--
		name = string(rune('A'+n%26)) + name
		n /= 26
	}
	return name
}
