// Package checks validates user supplied registry data.
package checks

import (
	"admission/internal/models"
	"admission/internal/structures"
	"crypto/subtle"
	"fmt"
	"regexp"
	"strings"

	"github.com/gookit/validate"
	"github.com/spf13/cast"
)

var (
	phoneRe = regexp.MustCompile(`^7\d{10}$`)
	emailRe = regexp.MustCompile(`^[a-zA-Z0-9_.+-]+@[a-zA-Z0-9-]+\.[a-zA-Z0-9-.]+$`)
	cityRe  = regexp.MustCompile(`^[A-ZА-Я][a-zа-я]+(-[A-ZА-Яa-zа-я]+)*$`)
)

var emailDomains = map[string]struct{}{
	"gmail.com":                {},
	"yahoo.com":                {},
	"hotmail.com":              {},
	"aol.com":                  {},
	"msn.com":                  {},
	"live.com":                 {},
	"outlook.com":              {},
	"icloud.com":               {},
	"privaterelay.appleid.com": {},
	"mail.ru":                  {},
	"inbox.ru":                 {},
	"list.ru":                  {},
	"bk.ru":                    {},
	"rambler.ru":               {},
	"edu.misis.ru":             {},
	"yandex.ru":                {},
	"ya.ru":                    {},
	"yandex.ua":                {},
	"yandex.by":                {},
	"yandex.kz":                {},
	"yandex.com":               {},
	"yandex.com.tr":            {},
	"yandex.fr":                {},
	"yandex.it":                {},
	"yandex.de":                {},
	"yandex.co.il":             {},
	"yandex.co.jp":             {},
	"yandex.co.uk":             {},
	"yandex.es":                {},
	"yandex.lv":                {},
	"yandex.lt":                {},
}

// PhoneNumber accepts 7XXXXXXXXXX. An empty value is valid.
func PhoneNumber(phone string) bool {
	return phone == "" || phoneRe.MatchString(phone)
}

// Email accepts addresses on a known mail provider. An empty value is valid.
func Email(email string) bool {
	if email == "" {
		return true
	}
	if !emailRe.MatchString(email) {
		return false
	}
	return EmailDomain(email[strings.IndexByte(email, '@')+1:])
}

func EmailDomain(domain string) bool {
	_, ok := emailDomains[domain]
	return ok
}

// City accepts a capitalized name with optional hyphenated parts. An empty value is valid.
func City(city string) bool {
	return city == "" || cityRe.MatchString(city)
}

func Platform(platform string) bool {
	return models.Platform(platform).Valid()
}

type ChecksInterface interface {
	AdminToken(token string) bool
	User(patch models.UserPatch) error
}

type Checks struct {
	adminToken string
}

func NewChecks(conf *structures.Config) ChecksInterface {
	return &Checks{adminToken: conf.Security.AdminToken}
}

func (c *Checks) AdminToken(token string) bool {
	if c.adminToken == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(c.adminToken)) == 1
}

// User validates the fields present in patch; absent optional fields pass.
func (c *Checks) User(patch models.UserPatch) error {
	data := map[string]any{
		"user_id":  patch.UserID,
		"platform": string(patch.Platform),
	}
	optional := map[string]*string{
		"phone_number": patch.PhoneNumber,
		"email":        patch.Email,
		"city":         patch.City,
	}
	for field, value := range optional {
		if value != nil {
			data[field] = *value
		}
	}

	v := validate.Map(data)
	v.AddValidator("phoneNumber", func(val any) bool { return PhoneNumber(cast.ToString(val)) })
	v.AddValidator("knownEmail", func(val any) bool { return Email(cast.ToString(val)) })
	v.AddValidator("cityName", func(val any) bool { return City(cast.ToString(val)) })

	v.StringRule("user_id", "required|int|min:1")
	v.StringRule("platform", "required|in:tg,vk")
	v.StringRule("phone_number", "phoneNumber")
	v.StringRule("email", "knownEmail")
	v.StringRule("city", "cityName")

	if !v.Validate() {
		return fmt.Errorf("%s: %w", v.Errors.One(), models.ErrValidation)
	}
	return nil
}
