package providers

import (
	"admission/internal/structures"
	"errors"
	"fmt"
	"time"

	"github.com/gookit/validate"
)

type CnfValidator struct {
	conf *structures.Config
}

func NewCnfValidator(conf *structures.Config) *CnfValidator {
	return &CnfValidator{conf: conf}
}

func (cv *CnfValidator) Validate() error {
	sections := []struct {
		name  string
		value any
	}{
		{"webServer", &cv.conf.WebServer},
		{"logger", &cv.conf.Logger},
		{"spreadsheet", &cv.conf.Spreadsheet},
		{"sync", &cv.conf.Sync},
		{"security", &cv.conf.Security},
	}
	for _, section := range sections {
		v := validate.Struct(section.value)
		if !v.Validate() {
			return fmt.Errorf("config section %s: %w", section.name, v.Errors)
		}
	}

	if cv.conf.Spreadsheet.CredentialsFile == "" && cv.conf.Spreadsheet.CredentialsJSON == "" {
		return errors.New("config section spreadsheet: credentialsFile or credentialsJson is required")
	}
	if cv.conf.Sync.Interval < time.Second {
		return fmt.Errorf("config section sync: interval %s is shorter than 1s", cv.conf.Sync.Interval)
	}
	if s3 := cv.conf.Backup.S3; s3.Enabled {
		if s3.Bucket == "" || s3.Region == "" {
			return errors.New("config section backup.s3: bucket and region are required when enabled")
		}
		if cv.conf.Backup.Dir == "" {
			return errors.New("config section backup.s3: requires backup.dir")
		}
	}
	if cv.conf.Telemetry.Timezone != "" {
		if _, err := time.LoadLocation(cv.conf.Telemetry.Timezone); err != nil {
			return fmt.Errorf("config section telemetry: %w", err)
		}
	}
	return nil
}
