package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/riskibarqy/scout-pro/internal/platform/logging"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"

	SourceDriverSheets = "sheets"
	SourceDriverXLSX   = "xlsx"
)

// Config stores runtime configuration for the sync engine and its CLIs.
type Config struct {
	AppEnv                  string
	ServiceName             string
	ServiceVersion          string
	LogLevel                logging.Level
	LogFormat               logging.Format
	StoreDriver             string
	SourceDriver            string
	DBURL                   string
	DBDisablePreparedBinary bool

	GoogleSheet                 string
	GoogleSheetRange            string
	GoogleSheetsCredentialsJSON string
	GoogleSheetsCredentialsFile string
	SheetsTimeout               time.Duration
	SheetsMaxRetries            int
	SheetsCircuitEnabled        bool
	SheetsCircuitFailureCount   int
	SheetsCircuitOpenTimeout    time.Duration
	SheetsCircuitHalfOpenMaxReq int
	XLSXPath                    string
	XLSXSheet                   string

	CacheEnabled       bool
	CacheTTL           time.Duration
	RedisEnabled       bool
	RedisAddress       string
	RedisPassword      string
	RedisDB            int
	RedisCachePrefix   string
	RedisEventsChannel string

	SyncInterval           time.Duration
	SyncDedupAlerts        bool
	SyncFreeAgentLabels    []string
	SyncPotentialThreshold float64

	UptraceEnabled             bool
	UptraceDSN                 string
	BetterStackEnabled         bool
	BetterStackEndpoint        string
	BetterStackToken           string
	BetterStackTimeout         time.Duration
	BetterStackMinLevel        logging.Level
	PyroscopeEnabled           bool
	PyroscopeServerAddress     string
	PyroscopeAppName           string
	PyroscopeAuthToken         string
	PyroscopeBasicAuthUser     string
	PyroscopeBasicAuthPassword string
	PyroscopeUploadRate        time.Duration
}

// LoadDotEnv reads the given files (".env" when none are given) into the
// process environment. Variables already set win. Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", path, err)
		}
	}
	return nil
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	logFormatDefault := string(logging.FormatJSON)
	if appEnv == EnvDev {
		logFormatDefault = string(logging.FormatConsole)
	}

	storeDriver, err := parseChoice("STORE_DRIVER", getEnv("STORE_DRIVER", StoreDriverPostgres), StoreDriverPostgres, StoreDriverMemory)
	if err != nil {
		return Config{}, err
	}
	dbURL := strings.TrimSpace(getEnv("DB_URL", ""))
	if storeDriver == StoreDriverPostgres && dbURL == "" {
		return Config{}, fmt.Errorf("DB_URL is required when STORE_DRIVER=%s", StoreDriverPostgres)
	}
	dbDisablePreparedBinary, err := strconv.ParseBool(getEnv("DB_DISABLE_PREPARED_BINARY_RESULT", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse DB_DISABLE_PREPARED_BINARY_RESULT: %w", err)
	}

	sourceDriver, err := parseChoice("SOURCE_DRIVER", getEnv("SOURCE_DRIVER", SourceDriverSheets), SourceDriverSheets, SourceDriverXLSX)
	if err != nil {
		return Config{}, err
	}
	googleSheet := strings.TrimSpace(getEnv("GOOGLE_SHEET_URL", getEnv("GOOGLE_SHEET_ID", "")))
	if sourceDriver == SourceDriverSheets && googleSheet == "" {
		return Config{}, fmt.Errorf("GOOGLE_SHEET_URL or GOOGLE_SHEET_ID is required when SOURCE_DRIVER=%s", SourceDriverSheets)
	}
	xlsxPath := strings.TrimSpace(getEnv("XLSX_PATH", ""))
	if sourceDriver == SourceDriverXLSX && xlsxPath == "" {
		return Config{}, fmt.Errorf("XLSX_PATH is required when SOURCE_DRIVER=%s", SourceDriverXLSX)
	}

	sheetsTimeout, err := time.ParseDuration(getEnv("SHEETS_TIMEOUT", "20s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SHEETS_TIMEOUT: %w", err)
	}
	if sheetsTimeout <= 0 {
		return Config{}, fmt.Errorf("SHEETS_TIMEOUT must be > 0")
	}
	sheetsMaxRetries, err := getEnvAsInt("SHEETS_MAX_RETRIES", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse SHEETS_MAX_RETRIES: %w", err)
	}
	if sheetsMaxRetries < 0 {
		return Config{}, fmt.Errorf("SHEETS_MAX_RETRIES must be >= 0")
	}
	sheetsCircuitEnabled, err := strconv.ParseBool(getEnv("SHEETS_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SHEETS_CIRCUIT_ENABLED: %w", err)
	}
	sheetsCircuitFailureCount, err := getEnvAsInt("SHEETS_CIRCUIT_FAILURE_COUNT", 4)
	if err != nil {
		return Config{}, fmt.Errorf("parse SHEETS_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if sheetsCircuitFailureCount <= 0 {
		return Config{}, fmt.Errorf("SHEETS_CIRCUIT_FAILURE_COUNT must be > 0")
	}
	sheetsCircuitOpenTimeout, err := time.ParseDuration(getEnv("SHEETS_CIRCUIT_OPEN_TIMEOUT", "30s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SHEETS_CIRCUIT_OPEN_TIMEOUT: %w", err)
	}
	if sheetsCircuitOpenTimeout <= 0 {
		return Config{}, fmt.Errorf("SHEETS_CIRCUIT_OPEN_TIMEOUT must be > 0")
	}
	sheetsCircuitHalfOpenMaxReq, err := getEnvAsInt("SHEETS_CIRCUIT_HALF_OPEN_MAX_REQ", 1)
	if err != nil {
		return Config{}, fmt.Errorf("parse SHEETS_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	if sheetsCircuitHalfOpenMaxReq <= 0 {
		return Config{}, fmt.Errorf("SHEETS_CIRCUIT_HALF_OPEN_MAX_REQ must be > 0")
	}

	cacheEnabled, err := strconv.ParseBool(getEnv("CACHE_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CACHE_ENABLED: %w", err)
	}
	cacheTTL, err := time.ParseDuration(getEnv("CACHE_TTL", "5m"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CACHE_TTL: %w", err)
	}
	if cacheTTL <= 0 {
		return Config{}, fmt.Errorf("CACHE_TTL must be > 0")
	}

	redisEnabled, err := strconv.ParseBool(getEnv("REDIS_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse REDIS_ENABLED: %w", err)
	}
	redisAddress := strings.TrimSpace(getEnv("REDIS_ADDRESS", "localhost:6379"))
	if redisEnabled && redisAddress == "" {
		return Config{}, fmt.Errorf("REDIS_ADDRESS is required when REDIS_ENABLED=true")
	}
	redisDB, err := getEnvAsInt("REDIS_DB", 0)
	if err != nil {
		return Config{}, fmt.Errorf("parse REDIS_DB: %w", err)
	}
	if redisDB < 0 {
		return Config{}, fmt.Errorf("REDIS_DB must be >= 0")
	}
	redisCachePrefix := strings.TrimSpace(getEnv("REDIS_CACHE_PREFIX", "scout:"))
	if redisEnabled && redisCachePrefix == "" {
		return Config{}, fmt.Errorf("REDIS_CACHE_PREFIX is required when REDIS_ENABLED=true")
	}

	syncInterval, err := time.ParseDuration(getEnv("SYNC_INTERVAL", "15m"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SYNC_INTERVAL: %w", err)
	}
	if syncInterval <= 0 {
		return Config{}, fmt.Errorf("SYNC_INTERVAL must be > 0")
	}
	syncDedupAlerts, err := strconv.ParseBool(getEnv("SYNC_DEDUP_ALERTS", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SYNC_DEDUP_ALERTS: %w", err)
	}
	syncPotentialThreshold, err := strconv.ParseFloat(getEnv("SYNC_POTENTIAL_THRESHOLD", "4"), 64)
	if err != nil {
		return Config{}, fmt.Errorf("parse SYNC_POTENTIAL_THRESHOLD: %w", err)
	}
	if syncPotentialThreshold <= 0 {
		return Config{}, fmt.Errorf("SYNC_POTENTIAL_THRESHOLD must be > 0")
	}

	uptraceEnabled, err := strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}
	uptraceDSN := strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if uptraceDSN == "" {
		uptraceDSN = parseUptraceDSNFromOTLPHeaders(getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""))
	}
	if uptraceEnabled && uptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}

	betterStackEnabled, err := strconv.ParseBool(getEnv("BETTERSTACK_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse BETTERSTACK_ENABLED: %w", err)
	}
	betterStackEndpoint := strings.TrimSpace(getEnv("BETTERSTACK_ENDPOINT", ""))
	if betterStackEnabled && betterStackEndpoint == "" {
		return Config{}, fmt.Errorf("BETTERSTACK_ENDPOINT is required when BETTERSTACK_ENABLED=true")
	}
	betterStackTimeout, err := time.ParseDuration(getEnv("BETTERSTACK_TIMEOUT", "3s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse BETTERSTACK_TIMEOUT: %w", err)
	}
	if betterStackTimeout <= 0 {
		return Config{}, fmt.Errorf("BETTERSTACK_TIMEOUT must be > 0")
	}

	pyroscopeEnabled, err := strconv.ParseBool(getEnv("PYROSCOPE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_ENABLED: %w", err)
	}
	pyroscopeServerAddress := strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if pyroscopeEnabled && pyroscopeServerAddress == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	pyroscopeUploadRate, err := time.ParseDuration(getEnv("PYROSCOPE_UPLOAD_RATE", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_UPLOAD_RATE: %w", err)
	}
	if pyroscopeUploadRate <= 0 {
		return Config{}, fmt.Errorf("PYROSCOPE_UPLOAD_RATE must be > 0")
	}

	serviceName := getEnv("APP_SERVICE_NAME", "scout-sync")

	return Config{
		AppEnv:                  appEnv,
		ServiceName:             serviceName,
		ServiceVersion:          getEnv("APP_SERVICE_VERSION", "dev"),
		LogLevel:                parseLogLevel(getEnv("APP_LOG_LEVEL", "info")),
		LogFormat:               logging.ParseFormat(getEnv("LOG_FORMAT", logFormatDefault)),
		StoreDriver:             storeDriver,
		SourceDriver:            sourceDriver,
		DBURL:                   dbURL,
		DBDisablePreparedBinary: dbDisablePreparedBinary,

		GoogleSheet:                 googleSheet,
		GoogleSheetRange:            getEnv("GOOGLE_SHEET_RANGE", "A:Z"),
		GoogleSheetsCredentialsJSON: strings.TrimSpace(getEnv("GOOGLE_SHEETS_CREDENTIALS_JSON", "")),
		GoogleSheetsCredentialsFile: strings.TrimSpace(getEnv("GOOGLE_SHEETS_CREDENTIALS_FILE", "")),
		SheetsTimeout:               sheetsTimeout,
		SheetsMaxRetries:            sheetsMaxRetries,
		SheetsCircuitEnabled:        sheetsCircuitEnabled,
		SheetsCircuitFailureCount:   sheetsCircuitFailureCount,
		SheetsCircuitOpenTimeout:    sheetsCircuitOpenTimeout,
		SheetsCircuitHalfOpenMaxReq: sheetsCircuitHalfOpenMaxReq,
		XLSXPath:                    xlsxPath,
		XLSXSheet:                   strings.TrimSpace(getEnv("XLSX_SHEET", "")),

		CacheEnabled:       cacheEnabled,
		CacheTTL:           cacheTTL,
		RedisEnabled:       redisEnabled,
		RedisAddress:       redisAddress,
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),
		RedisDB:            redisDB,
		RedisCachePrefix:   redisCachePrefix,
		RedisEventsChannel: strings.TrimSpace(getEnv("REDIS_EVENTS_CHANNEL", "scout:events")),

		SyncInterval:           syncInterval,
		SyncDedupAlerts:        syncDedupAlerts,
		SyncFreeAgentLabels:    splitCSV(getEnv("SYNC_FREE_AGENT_LABELS", "")),
		SyncPotentialThreshold: syncPotentialThreshold,

		UptraceEnabled:             uptraceEnabled,
		UptraceDSN:                 uptraceDSN,
		BetterStackEnabled:         betterStackEnabled,
		BetterStackEndpoint:        betterStackEndpoint,
		BetterStackToken:           strings.TrimSpace(getEnv("BETTERSTACK_TOKEN", "")),
		BetterStackTimeout:         betterStackTimeout,
		BetterStackMinLevel:        parseLogLevel(getEnv("BETTERSTACK_MIN_LEVEL", "error")),
		PyroscopeEnabled:           pyroscopeEnabled,
		PyroscopeServerAddress:     pyroscopeServerAddress,
		PyroscopeAppName:           getEnv("PYROSCOPE_APP_NAME", serviceName),
		PyroscopeAuthToken:         getEnv("PYROSCOPE_AUTH_TOKEN", ""),
		PyroscopeBasicAuthUser:     getEnv("PYROSCOPE_BASIC_AUTH_USER", ""),
		PyroscopeBasicAuthPassword: getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", ""),
		PyroscopeUploadRate:        pyroscopeUploadRate,
	}, nil
}

func parseLogLevel(v string) logging.Level {
	return logging.ParseLevel(v)
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}

	return out
}

func parseChoice(key, raw string, allowed ...string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(raw))
	for _, item := range allowed {
		if value == item {
			return value, nil
		}
	}
	return "", fmt.Errorf("invalid %s %q: valid values are %s", key, raw, strings.Join(allowed, ", "))
}

func parseUptraceDSNFromOTLPHeaders(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	items := strings.Split(raw, ",")
	for _, item := range items {
		parts := strings.SplitN(strings.TrimSpace(item), "=", 2)
		if len(parts) != 2 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(parts[0]), "uptrace-dsn") {
			value := strings.TrimSpace(parts[1])
			return strings.Trim(value, "\"'")
		}
	}

	return ""
}

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}
