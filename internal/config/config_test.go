package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/riskibarqy/scout-pro/internal/platform/logging"
)

// setBaseEnv configures the smallest valid environment: memory store, xlsx source.
func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("STORE_DRIVER", StoreDriverMemory)
	t.Setenv("SOURCE_DRIVER", SourceDriverXLSX)
	t.Setenv("XLSX_PATH", "testdata/roster.xlsx")
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("BETTERSTACK_ENABLED", "false")
	t.Setenv("PYROSCOPE_ENABLED", "false")
	t.Setenv("REDIS_ENABLED", "false")
}

func TestLoad_AppEnvValidation(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("APP_ENV", "invalid")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid APP_ENV")
	}
}

func TestLoad_Defaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.ServiceName != "scout-sync" {
		t.Fatalf("unexpected ServiceName: %q", cfg.ServiceName)
	}
	if cfg.LogFormat != logging.FormatConsole {
		t.Fatalf("expected console log format in dev, got %q", cfg.LogFormat)
	}
	if cfg.CacheTTL != 5*time.Minute || !cfg.CacheEnabled {
		t.Fatalf("unexpected cache defaults: enabled=%v ttl=%s", cfg.CacheEnabled, cfg.CacheTTL)
	}
	if cfg.SyncInterval != 15*time.Minute {
		t.Fatalf("unexpected SyncInterval: %s", cfg.SyncInterval)
	}
	if cfg.SyncDedupAlerts {
		t.Fatalf("alert dedup must be opt-in")
	}
	if cfg.SyncPotentialThreshold != 4 {
		t.Fatalf("unexpected SyncPotentialThreshold: %v", cfg.SyncPotentialThreshold)
	}
	if len(cfg.SyncFreeAgentLabels) != 0 {
		t.Fatalf("expected no free agent label override, got %v", cfg.SyncFreeAgentLabels)
	}
	if cfg.PyroscopeAppName != cfg.ServiceName {
		t.Fatalf("expected PyroscopeAppName to default to ServiceName, got %q", cfg.PyroscopeAppName)
	}
}

func TestLoad_ProdDefaultsToJSONLogs(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("APP_ENV", EnvProd)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.LogFormat != logging.FormatJSON {
		t.Fatalf("expected json log format in prod, got %q", cfg.LogFormat)
	}
}

func TestLoad_DriverValidation(t *testing.T) {
	t.Run("unknown store driver", func(t *testing.T) {
		setBaseEnv(t)
		t.Setenv("STORE_DRIVER", "mysql")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for unknown STORE_DRIVER")
		}
	})

	t.Run("postgres requires db url", func(t *testing.T) {
		setBaseEnv(t)
		t.Setenv("STORE_DRIVER", StoreDriverPostgres)
		t.Setenv("DB_URL", "")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error when STORE_DRIVER=postgres without DB_URL")
		}
	})

	t.Run("sheets requires spreadsheet", func(t *testing.T) {
		setBaseEnv(t)
		t.Setenv("SOURCE_DRIVER", SourceDriverSheets)
		t.Setenv("GOOGLE_SHEET_URL", "")
		t.Setenv("GOOGLE_SHEET_ID", "")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error when SOURCE_DRIVER=sheets without a spreadsheet")
		}
	})

	t.Run("xlsx requires path", func(t *testing.T) {
		setBaseEnv(t)
		t.Setenv("XLSX_PATH", "")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error when SOURCE_DRIVER=xlsx without XLSX_PATH")
		}
	})
}

func TestLoad_SheetsConfigParsing(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("SOURCE_DRIVER", "Sheets")
	t.Setenv("GOOGLE_SHEET_URL", "")
	t.Setenv("GOOGLE_SHEET_ID", "sheet-123")
	t.Setenv("GOOGLE_SHEET_RANGE", "Jogadores!A:Z")
	t.Setenv("GOOGLE_SHEETS_CREDENTIALS_FILE", "/secrets/sa.json")
	t.Setenv("SHEETS_TIMEOUT", "9s")
	t.Setenv("SHEETS_MAX_RETRIES", "0")
	t.Setenv("SHEETS_CIRCUIT_ENABLED", "false")
	t.Setenv("SHEETS_CIRCUIT_FAILURE_COUNT", "7")
	t.Setenv("SHEETS_CIRCUIT_OPEN_TIMEOUT", "1m")
	t.Setenv("SHEETS_CIRCUIT_HALF_OPEN_MAX_REQ", "3")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.SourceDriver != SourceDriverSheets {
		t.Fatalf("unexpected SourceDriver: %q", cfg.SourceDriver)
	}
	if cfg.GoogleSheet != "sheet-123" || cfg.GoogleSheetRange != "Jogadores!A:Z" {
		t.Fatalf("unexpected sheet config: %q %q", cfg.GoogleSheet, cfg.GoogleSheetRange)
	}
	if cfg.GoogleSheetsCredentialsFile != "/secrets/sa.json" {
		t.Fatalf("unexpected credentials file: %q", cfg.GoogleSheetsCredentialsFile)
	}
	if cfg.SheetsTimeout != 9*time.Second || cfg.SheetsMaxRetries != 0 {
		t.Fatalf("unexpected timeout/retries: %s %d", cfg.SheetsTimeout, cfg.SheetsMaxRetries)
	}
	if cfg.SheetsCircuitEnabled || cfg.SheetsCircuitFailureCount != 7 || cfg.SheetsCircuitOpenTimeout != time.Minute || cfg.SheetsCircuitHalfOpenMaxReq != 3 {
		t.Fatalf("unexpected circuit config: %+v", cfg)
	}
}

func TestLoad_SheetsURLTakesPrecedence(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("SOURCE_DRIVER", SourceDriverSheets)
	t.Setenv("GOOGLE_SHEET_URL", "https://docs.google.com/spreadsheets/d/abc/edit")
	t.Setenv("GOOGLE_SHEET_ID", "ignored")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.GoogleSheet != "https://docs.google.com/spreadsheets/d/abc/edit" {
		t.Fatalf("unexpected GoogleSheet: %q", cfg.GoogleSheet)
	}
}

func TestLoad_InvalidDurations(t *testing.T) {
	keys := []string{"SHEETS_TIMEOUT", "CACHE_TTL", "SYNC_INTERVAL", "BETTERSTACK_TIMEOUT", "PYROSCOPE_UPLOAD_RATE"}
	for _, key := range keys {
		t.Run(key, func(t *testing.T) {
			setBaseEnv(t)
			t.Setenv(key, "0s")
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=0s", key)
			}
			t.Setenv(key, "soon")
			if _, err := Load(); err == nil {
				t.Fatalf("expected parse error for %s=soon", key)
			}
		})
	}
}

func TestLoad_RedisConfigParsing(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("REDIS_ADDRESS", "redis:6379")
	t.Setenv("REDIS_PASSWORD", "secret")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("REDIS_CACHE_PREFIX", "scout:v2:")
	t.Setenv("REDIS_EVENTS_CHANNEL", "roster-events")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if !cfg.RedisEnabled || cfg.RedisAddress != "redis:6379" || cfg.RedisPassword != "secret" || cfg.RedisDB != 2 {
		t.Fatalf("unexpected redis config: %+v", cfg)
	}
	if cfg.RedisCachePrefix != "scout:v2:" || cfg.RedisEventsChannel != "roster-events" {
		t.Fatalf("unexpected redis prefix/channel: %q %q", cfg.RedisCachePrefix, cfg.RedisEventsChannel)
	}

	t.Setenv("REDIS_DB", "-1")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for negative REDIS_DB")
	}
}

func TestLoad_SyncConfigParsing(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("SYNC_INTERVAL", "1h")
	t.Setenv("SYNC_DEDUP_ALERTS", "true")
	t.Setenv("SYNC_FREE_AGENT_LABELS", " Livre, free agent ,,Sem clube ")
	t.Setenv("SYNC_POTENTIAL_THRESHOLD", "3.5")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.SyncInterval != time.Hour || !cfg.SyncDedupAlerts || cfg.SyncPotentialThreshold != 3.5 {
		t.Fatalf("unexpected sync config: %+v", cfg)
	}
	want := []string{"Livre", "free agent", "Sem clube"}
	if len(cfg.SyncFreeAgentLabels) != len(want) {
		t.Fatalf("unexpected labels: %v", cfg.SyncFreeAgentLabels)
	}
	for i := range want {
		if cfg.SyncFreeAgentLabels[i] != want[i] {
			t.Fatalf("unexpected label at %d: got=%q want=%q", i, cfg.SyncFreeAgentLabels[i], want[i])
		}
	}
}

func TestLoad_UptraceRequiresDSNWhenEnabled(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when UPTRACE_ENABLED=true without UPTRACE_DSN")
	}
}

func TestLoad_UptraceDSNFromOTLPHeaders(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", `foo=bar, uptrace-dsn="https://token@api.uptrace.dev?grpc=4317"`)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.UptraceDSN != "https://token@api.uptrace.dev?grpc=4317" {
		t.Fatalf("unexpected UptraceDSN: %q", cfg.UptraceDSN)
	}
}

func TestLoad_BetterStackConfigParsing(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("BETTERSTACK_ENABLED", "true")
	t.Setenv("BETTERSTACK_ENDPOINT", "s1765114.eu-fsn-3.betterstackdata.com")
	t.Setenv("BETTERSTACK_TOKEN", "token-123")
	t.Setenv("BETTERSTACK_TIMEOUT", "4s")
	t.Setenv("BETTERSTACK_MIN_LEVEL", "warn")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if !cfg.BetterStackEnabled {
		t.Fatalf("expected BetterStackEnabled=true")
	}
	if cfg.BetterStackEndpoint != "s1765114.eu-fsn-3.betterstackdata.com" {
		t.Fatalf("unexpected BetterStackEndpoint: %q", cfg.BetterStackEndpoint)
	}
	if cfg.BetterStackToken != "token-123" {
		t.Fatalf("unexpected BetterStackToken")
	}
	if cfg.BetterStackTimeout != 4*time.Second {
		t.Fatalf("unexpected BetterStackTimeout: %s", cfg.BetterStackTimeout)
	}
	if cfg.BetterStackMinLevel.String() != "warn" {
		t.Fatalf("unexpected BetterStackMinLevel: %s", cfg.BetterStackMinLevel.String())
	}

	t.Setenv("BETTERSTACK_ENDPOINT", "")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error when BETTERSTACK_ENABLED=true without BETTERSTACK_ENDPOINT")
	}
}

func TestLoad_PyroscopeRequiresServerAddressWhenEnabled(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("PYROSCOPE_ENABLED", "true")
	t.Setenv("PYROSCOPE_SERVER_ADDRESS", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when PYROSCOPE_ENABLED=true without PYROSCOPE_SERVER_ADDRESS")
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scout.env")
	if err := os.WriteFile(path, []byte("SCOUT_TEST_FROM_FILE=file\nSCOUT_TEST_PRESET=file\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("SCOUT_TEST_PRESET", "process")
	t.Setenv("SCOUT_TEST_FROM_FILE", "")
	os.Unsetenv("SCOUT_TEST_FROM_FILE")

	if err := LoadDotEnv(filepath.Join(dir, "missing.env"), path); err != nil {
		t.Fatalf("load dotenv: %v", err)
	}
	if got := os.Getenv("SCOUT_TEST_FROM_FILE"); got != "file" {
		t.Fatalf("expected value from file, got %q", got)
	}
	if got := os.Getenv("SCOUT_TEST_PRESET"); got != "process" {
		t.Fatalf("process environment must win, got %q", got)
	}
}

func TestSplitCSV(t *testing.T) {
	t.Parallel()

	got := splitCSV(" a, ,b,,c ")
	if len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Fatalf("unexpected split: %v", got)
	}
}
