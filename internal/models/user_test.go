package models

import (
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestPlatformNames(t *testing.T) {
	assert.True(t, PlatformTelegram.Valid())
	assert.True(t, PlatformVK.Valid())
	assert.False(t, Platform("fb").Valid())

	assert.Equal(t, "Telegram", PlatformTelegram.LongName())
	assert.Equal(t, "VK", PlatformVK.LongName())
	assert.Equal(t, "VKontakte", PlatformVK.TelemetryName())
	assert.Equal(t, "Unknown", Platform("fb").TelemetryName())

	p, ok := PlatformFromLongName("VK")
	assert.True(t, ok)
	assert.Equal(t, PlatformVK, p)
	_, ok = PlatformFromLongName("vk")
	assert.False(t, ok)
}

func TestUserKey_String(t *testing.T) {
	assert.Equal(t, "tg_42", UserKey{Platform: PlatformTelegram, UserID: 42}.String())
}

func TestUserRecord_SheetRowRoundTrip(t *testing.T) {
	ts := time.Date(2023, 5, 5, 10, 49, 47, 0, time.Local)
	u := UserRecord{
		Platform:    PlatformVK,
		UserID:      7,
		Username:    "ivan",
		FirstName:   "Ivan",
		LastName:    "Petrov",
		City:        "Moscow",
		PhoneNumber: "79991234455",
		Email:       "ivan@mail.ru",
		Timestamp:   ts,
	}

	row := u.SheetRow()
	assert.Equal(t, []string{"05.05.2023 10:49:47", "7", "VK", "ivan", "Ivan", "Petrov", "Moscow", "79991234455", "ivan@mail.ru"}, row)

	parsed, err := UserFromSheetRow(row)
	require.NoError(t, err)
	assert.Equal(t, u, parsed)
}

func TestUserFromSheetRow_ShortRow(t *testing.T) {
	u, err := UserFromSheetRow([]string{"05.05.2023 10:49:47", "7", "Telegram"})
	require.NoError(t, err)
	assert.Equal(t, PlatformTelegram, u.Platform)
	assert.Empty(t, u.Email)
}

func TestUserFromSheetRow_Invalid(t *testing.T) {
	_, err := UserFromSheetRow([]string{"05.05.2023 10:49:47", "x", "Telegram"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = UserFromSheetRow([]string{"05.05.2023 10:49:47", "7", "Facebook"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = UserFromSheetRow([]string{"yesterday", "7", "Telegram"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestUserPatch_UnmarshalJSON(t *testing.T) {
	var p UserPatch
	require.NoError(t, json.Unmarshal([]byte(`{"user_id":"15","platform":"tg","city":"Moscow"}`), &p))

	assert.Equal(t, int64(15), p.UserID)
	assert.Equal(t, PlatformTelegram, p.Platform)
	require.NotNil(t, p.City)
	assert.Equal(t, "Moscow", *p.City)
	assert.Nil(t, p.Email)

	require.NoError(t, json.Unmarshal([]byte(`{"user_id":16,"platform":"vk"}`), &p))
	assert.Equal(t, int64(16), p.UserID)
	assert.Nil(t, p.City)
}

func TestUserPatch_UnmarshalJSONBadID(t *testing.T) {
	var p UserPatch
	err := json.Unmarshal([]byte(`{"user_id":"abc","platform":"tg"}`), &p)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestUserPatch_UnmarshalJSONDecimalIDs(t *testing.T) {
	tests := []struct {
		name  string
		id    string
		want  int64
		valid bool
	}{
		{"plain string", `"42"`, 42, true},
		{"leading zero is decimal", `"010"`, 10, true},
		{"hex string", `"0x1F"`, 0, false},
		{"fractional string", `"5.0"`, 0, false},
		{"padded string", `" 7"`, 0, false},
		{"whole number", `5.0`, 5, true},
		{"fractional number", `5.5`, 0, false},
		{"boolean", `true`, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p UserPatch
			err := json.Unmarshal([]byte(`{"platform":"tg","user_id":`+tt.id+`}`), &p)
			if !tt.valid {
				assert.ErrorIs(t, err, ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.UserID)
		})
	}
}

func TestUserRecord_MergeOnlyOverridesPresentFields(t *testing.T) {
	existing := UserRecord{
		Platform:  PlatformTelegram,
		UserID:    5,
		Username:  "user5",
		FirstName: "Anna",
		City:      "Tula",
		Email:     "anna@ya.ru",
	}

	merged := existing.Merge(UserPatch{Platform: PlatformTelegram, UserID: 5, City: strPtr("Moscow")})

	expected := existing
	expected.City = "Moscow"
	assert.Equal(t, expected, merged)
}

func TestAdminRecord_SheetRow(t *testing.T) {
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.Local)
	a := AdminRecord{Platform: PlatformTelegram, UserID: 99, Timestamp: ts}

	row := a.SheetRow()
	assert.Equal(t, []string{"99", "Telegram", "02.01.2024 03:04:05"}, row)

	parsed, err := AdminFromSheetRow(row)
	require.NoError(t, err)
	assert.Equal(t, a, parsed)
}
