package models

import (
	"fmt"
	"math"
	"strconv"
	"time"

	json "github.com/goccy/go-json"
	"github.com/spf13/cast"
)

// SheetTimeLayout is the timestamp format used in every worksheet.
const SheetTimeLayout = "02.01.2006 15:04:05"

type Platform string

const (
	PlatformTelegram Platform = "tg"
	PlatformVK       Platform = "vk"
)

var platformLong = map[Platform]string{
	PlatformTelegram: "Telegram",
	PlatformVK:       "VK",
}

func (p Platform) Valid() bool {
	_, ok := platformLong[p]
	return ok
}

// LongName is the platform name stored in the users and admins worksheets.
func (p Platform) LongName() string {
	return platformLong[p]
}

// TelemetryName is the platform name rendered into the telemetry worksheet.
func (p Platform) TelemetryName() string {
	switch p {
	case PlatformTelegram:
		return "Telegram"
	case PlatformVK:
		return "VKontakte"
	default:
		return "Unknown"
	}
}

func PlatformFromLongName(name string) (Platform, bool) {
	for p, long := range platformLong {
		if long == name {
			return p, true
		}
	}
	return "", false
}

type UserKey struct {
	Platform Platform
	UserID   int64
}

func (k UserKey) String() string {
	return string(k.Platform) + "_" + strconv.FormatInt(k.UserID, 10)
}

type UserRecord struct {
	Platform    Platform  `json:"platform"`
	UserID      int64     `json:"user_id"`
	Username    string    `json:"username"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	City        string    `json:"city"`
	PhoneNumber string    `json:"phone_number"`
	Email       string    `json:"email"`
	Timestamp   time.Time `json:"timestamp"`
}

func (u UserRecord) Key() UserKey {
	return UserKey{Platform: u.Platform, UserID: u.UserID}
}

// SheetRow renders columns A–I of the users worksheet.
func (u UserRecord) SheetRow() []string {
	ts := u.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	return append([]string{ts.Format(SheetTimeLayout)}, u.SheetUpdate()...)
}

// SheetUpdate renders columns B–I, everything but the registration time.
func (u UserRecord) SheetUpdate() []string {
	return []string{
		strconv.FormatInt(u.UserID, 10),
		u.Platform.LongName(),
		u.Username,
		u.FirstName,
		u.LastName,
		u.City,
		u.PhoneNumber,
		u.Email,
	}
}

func cellAt(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

// UserFromSheetRow parses a users worksheet row (A–I).
func UserFromSheetRow(row []string) (UserRecord, error) {
	platform, ok := PlatformFromLongName(cellAt(row, 2))
	if !ok {
		return UserRecord{}, fmt.Errorf("unknown platform %q: %w", cellAt(row, 2), ErrValidation)
	}
	id, err := strconv.ParseInt(cellAt(row, 1), 10, 64)
	if err != nil {
		return UserRecord{}, fmt.Errorf("user id %q: %w", cellAt(row, 1), ErrValidation)
	}
	ts, err := time.ParseInLocation(SheetTimeLayout, cellAt(row, 0), time.Local)
	if err != nil {
		return UserRecord{}, fmt.Errorf("timestamp %q: %w", cellAt(row, 0), ErrValidation)
	}
	return UserRecord{
		Platform:    platform,
		UserID:      id,
		Username:    cellAt(row, 3),
		FirstName:   cellAt(row, 4),
		LastName:    cellAt(row, 5),
		City:        cellAt(row, 6),
		PhoneNumber: cellAt(row, 7),
		Email:       cellAt(row, 8),
		Timestamp:   ts,
	}, nil
}

// UserPatch is a user payload where every optional field may be absent.
type UserPatch struct {
	Platform    Platform
	UserID      int64
	Username    *string
	FirstName   *string
	LastName    *string
	City        *string
	PhoneNumber *string
	Email       *string
}

func (p UserPatch) Key() UserKey {
	return UserKey{Platform: p.Platform, UserID: p.UserID}
}

// ParseUserID reads a loosely typed JSON user id. Strings are decimal only and
// numbers must be whole; an absent id reads as 0.
func ParseUserID(v any) (int64, error) {
	switch id := v.(type) {
	case nil:
		return 0, nil
	case string:
		n, err := strconv.ParseInt(id, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("user_id %q: %w", id, ErrValidation)
		}
		return n, nil
	case json.Number:
		n, err := strconv.ParseInt(id.String(), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("user_id %s: %w", id, ErrValidation)
		}
		return n, nil
	case float64:
		if id != math.Trunc(id) || math.Abs(id) > 1<<53 {
			return 0, fmt.Errorf("user_id %v: %w", id, ErrValidation)
		}
		return int64(id), nil
	case bool:
		return 0, fmt.Errorf("user_id %v: %w", id, ErrValidation)
	}
	n, err := cast.ToInt64E(v)
	if err != nil {
		return 0, fmt.Errorf("user_id %v: %w", v, ErrValidation)
	}
	return n, nil
}

// UnmarshalJSON accepts user_id as a number or a numeric string.
func (p *UserPatch) UnmarshalJSON(data []byte) error {
	var raw struct {
		Platform    string  `json:"platform"`
		UserID      any     `json:"user_id"`
		Username    *string `json:"username"`
		FirstName   *string `json:"first_name"`
		LastName    *string `json:"last_name"`
		City        *string `json:"city"`
		PhoneNumber *string `json:"phone_number"`
		Email       *string `json:"email"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	id, err := ParseUserID(raw.UserID)
	if err != nil {
		return err
	}
	*p = UserPatch{
		Platform:    Platform(raw.Platform),
		UserID:      id,
		Username:    raw.Username,
		FirstName:   raw.FirstName,
		LastName:    raw.LastName,
		City:        raw.City,
		PhoneNumber: raw.PhoneNumber,
		Email:       raw.Email,
	}
	return nil
}

// Record materializes the patch over a zero record.
func (p UserPatch) Record() UserRecord {
	return UserRecord{Platform: p.Platform, UserID: p.UserID}.Merge(p)
}

// Merge overlays the fields present in p onto u.
func (u UserRecord) Merge(p UserPatch) UserRecord {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	u.Platform = p.Platform
	u.UserID = p.UserID
	set(&u.Username, p.Username)
	set(&u.FirstName, p.FirstName)
	set(&u.LastName, p.LastName)
	set(&u.City, p.City)
	set(&u.PhoneNumber, p.PhoneNumber)
	set(&u.Email, p.Email)
	return u
}

type AdminRecord struct {
	Platform  Platform  `json:"platform"`
	UserID    int64     `json:"user_id"`
	Timestamp time.Time `json:"timestamp"`
}

func (a AdminRecord) Key() UserKey {
	return UserKey{Platform: a.Platform, UserID: a.UserID}
}

// SheetRow renders the admins worksheet row: user id, platform, timestamp.
func (a AdminRecord) SheetRow() []string {
	return []string{
		strconv.FormatInt(a.UserID, 10),
		a.Platform.LongName(),
		a.Timestamp.Format(SheetTimeLayout),
	}
}

func AdminFromSheetRow(row []string) (AdminRecord, error) {
	id, err := strconv.ParseInt(cellAt(row, 0), 10, 64)
	if err != nil {
		return AdminRecord{}, fmt.Errorf("admin id %q: %w", cellAt(row, 0), ErrValidation)
	}
	platform, ok := PlatformFromLongName(cellAt(row, 1))
	if !ok {
		return AdminRecord{}, fmt.Errorf("unknown platform %q: %w", cellAt(row, 1), ErrValidation)
	}
	ts, err := time.ParseInLocation(SheetTimeLayout, cellAt(row, 2), time.Local)
	if err != nil {
		return AdminRecord{}, fmt.Errorf("timestamp %q: %w", cellAt(row, 2), ErrValidation)
	}
	return AdminRecord{Platform: platform, UserID: id, Timestamp: ts}, nil
}

var (
	UsersHeader     = []string{"Timestamp", "User ID", "Platform", "Username", "First name", "Last name", "City", "Phone number", "Email"}
	AdminsHeader    = []string{"User ID", "Platform", "Timestamp"}
	TelemetryHeader = []string{"Timestamp", "Platform", "User ID", "Button ID", "Button Name"}
)
