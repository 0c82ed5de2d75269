package structures

import "time"

type Server struct {
	Host string `yaml:"host" validate:"required"`
	Port int    `yaml:"port" validate:"required|uint|min:1"`
}

type Persistence struct {
	FilePath string `yaml:"filePath"`
}

type LoggerConfig struct {
	Level string `yaml:"level" validate:"required|in:trace,debug,info,warn,error,fatal,panic"`
	Mode  uint32 `yaml:"mode" validate:"required|uint"`
	Dir   string `yaml:"dir" validate:"required|unixPath"`
}

type SpreadsheetConfig struct {
	CredentialsFile  string        `yaml:"credentialsFile"`
	CredentialsJSON  string        `yaml:"credentialsJson"`
	SpreadsheetID    string        `yaml:"spreadsheetId" validate:"required"`
	ContentSheetID   int64         `yaml:"contentSheetId"`
	TelemetrySheetID int64         `yaml:"telemetrySheetId"`
	UsersSheetID     int64         `yaml:"usersSheetId"`
	AdminsSheetID    int64         `yaml:"adminsSheetId"`
	Cooldown         time.Duration `yaml:"cooldown" validate:"required"`
	MaxRetries       uint64        `yaml:"maxRetries"`
	RequestTimeout   time.Duration `yaml:"requestTimeout" validate:"required"`
}

type SyncConfig struct {
	Interval          time.Duration `yaml:"interval" validate:"required"`
	BackupInterval    time.Duration `yaml:"backupInterval"`
	IntegrityInterval time.Duration `yaml:"integrityInterval"`
}

type S3Config struct {
	Enabled   bool   `yaml:"enabled"`
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"accessKey"`
	SecretKey string `yaml:"secretKey"`
	Prefix    string `yaml:"prefix"`
}

type BackupConfig struct {
	Dir string   `yaml:"dir"`
	S3  S3Config `yaml:"s3"`
}

type CacheConfig struct {
	Enabled bool `yaml:"enabled"`
	Size    int  `yaml:"size"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

type SecurityConfig struct {
	AdminToken string `yaml:"adminToken" validate:"required"`
}

type TelemetryConfig struct {
	Timezone string `yaml:"timezone"`
}

type Config struct {
	AppName     string
	Debug       bool
	Path        string
	WebServer   Server            `yaml:"webServer"`
	Logger      LoggerConfig      `yaml:"logger"`
	Spreadsheet SpreadsheetConfig `yaml:"spreadsheet"`
	Sync        SyncConfig        `yaml:"sync"`
	Backup      BackupConfig      `yaml:"backup"`
	Persistence Persistence       `yaml:"persistence"`
	Cache       CacheConfig       `yaml:"cache"`
	Metrics     MetricsConfig     `yaml:"metrics"`
	Security    SecurityConfig    `yaml:"security"`
	Telemetry   TelemetryConfig   `yaml:"telemetry"`
}
