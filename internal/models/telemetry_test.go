package models

import (
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTelemetryEvent_UnmarshalJSONLenient(t *testing.T) {
	var events []TelemetryEvent
	payload := `[
		{"button_id":"1.0","platform":"tg","user_id":5,"timestamp":1700000000},
		{"button_id":2,"platform":"vk","user_id":"6","timestamp":1700000000.75}
	]`
	require.NoError(t, json.Unmarshal([]byte(payload), &events))
	require.Len(t, events, 2)

	assert.Equal(t, TelemetryEvent{ButtonID: "1.0", Platform: PlatformTelegram, UserID: 5, Timestamp: 1700000000}, events[0])
	assert.Equal(t, TelemetryEvent{ButtonID: "2", Platform: PlatformVK, UserID: 6, Timestamp: 1700000000}, events[1])
}

func TestTelemetryEvent_UnmarshalJSONDecimalUserID(t *testing.T) {
	var e TelemetryEvent
	require.NoError(t, json.Unmarshal([]byte(`{"button_id":"1","platform":"tg","user_id":"010","timestamp":1}`), &e))
	assert.Equal(t, int64(10), e.UserID)

	require.NoError(t, json.Unmarshal([]byte(`{"button_id":"1","platform":"tg","user_id":"0x1F","timestamp":1}`), &e))
	assert.Equal(t, int64(0), e.UserID)
}

func TestTelemetryEvent_SheetRow(t *testing.T) {
	ev := TelemetryEvent{ButtonID: "1.0", Platform: PlatformVK, UserID: 5, Timestamp: 1700000000}

	row := ev.SheetRow(time.UTC, "Option 1")
	assert.Equal(t, []string{"14.11.2023 22:13:20", "VKontakte", "5", "1.0", "Option 1"}, row)

	unknown := TelemetryEvent{ButtonID: "1", Platform: "ok", UserID: 1, Timestamp: 0}
	assert.Equal(t, "Unknown", unknown.SheetRow(time.UTC, "x")[1])
}
