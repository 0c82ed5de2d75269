package models

import (
	"strconv"
	"time"

	json "github.com/goccy/go-json"
	"github.com/spf13/cast"
)

// TelemetryEvent is a single button click reported by a bot frontend.
type TelemetryEvent struct {
	ButtonID  string   `json:"button_id"`
	Platform  Platform `json:"platform"`
	UserID    int64    `json:"user_id"`
	Timestamp int64    `json:"timestamp"`
}

// UnmarshalJSON tolerates numeric button ids, string user ids and
// fractional timestamps; nothing is validated until flush.
func (e *TelemetryEvent) UnmarshalJSON(data []byte) error {
	var raw struct {
		ButtonID  any    `json:"button_id"`
		Platform  string `json:"platform"`
		UserID    any    `json:"user_id"`
		Timestamp any    `json:"timestamp"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	// a malformed id renders as 0 in the worksheet
	userID, _ := ParseUserID(raw.UserID)
	*e = TelemetryEvent{
		ButtonID:  cast.ToString(raw.ButtonID),
		Platform:  Platform(raw.Platform),
		UserID:    userID,
		Timestamp: int64(cast.ToFloat64(raw.Timestamp)),
	}
	return nil
}

// SheetRow renders the telemetry worksheet row for a resolved event.
func (e TelemetryEvent) SheetRow(loc *time.Location, buttonName string) []string {
	return []string{
		time.Unix(e.Timestamp, 0).In(loc).Format(SheetTimeLayout),
		e.Platform.TelemetryName(),
		strconv.FormatInt(e.UserID, 10),
		e.ButtonID,
		buttonName,
	}
}
