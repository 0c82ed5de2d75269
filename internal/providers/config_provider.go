package providers

import (
	"admission/internal/structures"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const AppName = "AdmissionBackend"

func setDefaults(v *viper.Viper) {
	v.SetDefault("webServer.host", "0.0.0.0")
	v.SetDefault("webServer.port", 8080)
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.mode", 0644)
	v.SetDefault("logger.dir", "/data/logs")
	v.SetDefault("spreadsheet.cooldown", 5*time.Second)
	v.SetDefault("spreadsheet.maxRetries", 5)
	v.SetDefault("spreadsheet.requestTimeout", 30*time.Second)
	v.SetDefault("sync.interval", 90*time.Second)
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.size", 16)
	v.SetDefault("telemetry.timezone", "Local")
}

// bindEnv keeps the legacy unprefixed environment names working
// next to the ABD_ prefixed ones.
func bindEnv(v *viper.Viper) {
	_ = v.BindEnv("logger.level", "ABD_LOG_LEVEL", "LOGGING_LEVEL")
	_ = v.BindEnv("logger.dir", "ABD_LOGS_DIR", "LOGS_DIR")
	_ = v.BindEnv("spreadsheet.credentialsJson", "ABD_GOOGLE_API_TOKEN", "GOOGLE_API_TOKEN")
	_ = v.BindEnv("spreadsheet.credentialsFile", "ABD_GOOGLE_CREDENTIALS_FILE")
	_ = v.BindEnv("spreadsheet.spreadsheetId", "ABD_SPREADSHEET_ID", "SPREADSHEET_ID")
	_ = v.BindEnv("spreadsheet.contentSheetId", "ABD_WS_CONTENT_ID", "WS_CONTENT_ID")
	_ = v.BindEnv("spreadsheet.telemetrySheetId", "ABD_WS_TELEMETRY_ID", "WS_TELEMETRY_ID")
	_ = v.BindEnv("spreadsheet.usersSheetId", "ABD_WS_USERS_ID", "WS_USERS_ID")
	_ = v.BindEnv("spreadsheet.adminsSheetId", "ABD_WS_ADMINS_ID", "WS_ADMINS_ID")
	_ = v.BindEnv("sync.interval", "ABD_SYNC_INTERVAL")
	_ = v.BindEnv("backup.dir", "ABD_BACKUP_DIR", "BACKUP_DIR")
	_ = v.BindEnv("backup.s3.secretKey", "ABD_S3_SECRET_KEY")
	_ = v.BindEnv("security.adminToken", "ABD_ADMIN_TOKEN", "ADMIN_TOKEN")
	_ = v.BindEnv("cache.enabled", "ABD_CACHE_ENABLED")
	_ = v.BindEnv("cache.size", "ABD_CACHE_SIZE")
}

func NewConfigProvider(flags *structures.CliFlags) (*structures.Config, error) {
	var conf structures.Config

	// a missing .env is normal outside of local development
	_ = godotenv.Load(".env")

	v := viper.New()
	filename := filepath.Base(flags.ConfigPath)
	v.AddConfigPath(filepath.Dir(flags.ConfigPath))
	v.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
	v.SetConfigType("yaml")

	setDefaults(v)
	bindEnv(v)

	err := v.ReadInConfig()
	if err != nil {
		return nil, err
	}

	err = v.Unmarshal(&conf)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	cnfValidator := NewCnfValidator(&conf)
	err = cnfValidator.Validate()
	if err != nil {
		return nil, err
	}

	conf.AppName = AppName
	conf.Path = flags.ConfigPath
	conf.Debug = flags.DebugMode

	return &conf, nil
}
