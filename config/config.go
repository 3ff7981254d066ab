package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds service configuration derived from environment variables,
// with an optional YAML config file underneath.
type Config struct {
	HTTPPort string

	DBDriver   string
	DBPath     string
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string

	SourceURL    string
	PageSize     int
	FetchRetries int

	TriggerDir   string
	StrictConfig bool
}

type fileConfig struct {
	HTTPPort   string `yaml:"http_port"`
	DBDriver   string `yaml:"db_driver"`
	DBPath     string `yaml:"db_path"`
	DBHost     string `yaml:"db_host"`
	DBPort     *int   `yaml:"db_port"`
	DBUser     string `yaml:"db_user"`
	DBPassword string `yaml:"db_password"`
	DBName     string `yaml:"db_name"`
	SourceURL  string `yaml:"source_url"`
	PageSize   *int   `yaml:"page_size"`
	TriggerDir string `yaml:"trigger_dir"`
}

const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"

	defaultPort      = ":3000"
	defaultDBPath    = "trees.db"
	defaultDBPort    = 3306
	defaultSourceURL = "https://opendata.paris.fr/api/explore/v2.1/catalog/datasets/arbresremarquablesparis/records"

	// The source API caps a single response at 100 rows.
	defaultPageSize = 100
	maxPageSize     = 100

	defaultFetchRetries = 3
	maxFetchRetries     = 10
)

// Load reads configuration from the environment and applies defaults that let
// the service start with no explicit configuration.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		DBDriver:     DriverSQLite,
		DBPath:       defaultDBPath,
		DBPort:       defaultDBPort,
		SourceURL:    defaultSourceURL,
		PageSize:     defaultPageSize,
		FetchRetries: defaultFetchRetries,
		StrictConfig: parseBoolEnv("STRICT_CONFIG"),
	}

	configPath := getEnv("CONFIG_PATH", filepath.Join("config", "config.yaml"))
	fileCfg, fileErr := loadFileConfig(configPath)
	if fileErr != nil && !os.IsNotExist(fileErr) {
		if cfg.StrictConfig {
			return cfg, fmt.Errorf("config load failed (%s): %w", configPath, fileErr)
		}
		log.Printf("config load failed (%s): %v (using defaults)", configPath, fileErr)
	}

	cfg.DBDriver = strings.ToLower(firstNonEmpty(os.Getenv("DB_DRIVER"), fileCfg.DBDriver, cfg.DBDriver))
	cfg.DBPath = firstNonEmpty(os.Getenv("DB_PATH"), fileCfg.DBPath, cfg.DBPath)
	cfg.DBHost = firstNonEmpty(os.Getenv("DB_HOST"), fileCfg.DBHost)
	cfg.DBUser = firstNonEmpty(os.Getenv("DB_USER"), fileCfg.DBUser)
	cfg.DBPassword = firstNonEmpty(os.Getenv("DB_PASSWORD"), fileCfg.DBPassword)
	cfg.DBName = firstNonEmpty(os.Getenv("DB_NAME"), fileCfg.DBName)
	if fileCfg.DBPort != nil && *fileCfg.DBPort > 0 {
		cfg.DBPort = *fileCfg.DBPort
	}
	if v, ok, err := parseIntEnv("DB_PORT"); err != nil {
		if cfg.StrictConfig {
			return cfg, fmt.Errorf("invalid DB_PORT: %w", err)
		}
		log.Printf("invalid DB_PORT: %v (using %d)", err, cfg.DBPort)
	} else if ok && v > 0 {
		cfg.DBPort = v
	}

	cfg.SourceURL = strings.TrimRight(firstNonEmpty(os.Getenv("SOURCE_URL"), fileCfg.SourceURL, cfg.SourceURL), "/")
	cfg.TriggerDir = firstNonEmpty(os.Getenv("SYNC_TRIGGER_DIR"), fileCfg.TriggerDir)

	if fileCfg.PageSize != nil && *fileCfg.PageSize > 0 {
		cfg.PageSize = *fileCfg.PageSize
	}
	if v, ok, err := parseIntEnv("PAGE_SIZE"); err != nil {
		if cfg.StrictConfig {
			return cfg, fmt.Errorf("invalid PAGE_SIZE: %w", err)
		}
		log.Printf("invalid PAGE_SIZE: %v (using %d)", err, cfg.PageSize)
	} else if ok && v > 0 {
		cfg.PageSize = v
	}
	if cfg.PageSize > maxPageSize {
		log.Printf("PAGE_SIZE capped at %d (was %d)", maxPageSize, cfg.PageSize)
		cfg.PageSize = maxPageSize
	}

	if v, ok, err := parseIntEnv("FETCH_RETRIES"); err != nil {
		if cfg.StrictConfig {
			return cfg, fmt.Errorf("invalid FETCH_RETRIES: %w", err)
		}
		log.Printf("invalid FETCH_RETRIES: %v (using %d)", err, cfg.FetchRetries)
	} else if ok && v >= 0 {
		cfg.FetchRetries = v
	}
	if cfg.FetchRetries > maxFetchRetries {
		log.Printf("FETCH_RETRIES capped at %d (was %d)", maxFetchRetries, cfg.FetchRetries)
		cfg.FetchRetries = maxFetchRetries
	}

	cfg.HTTPPort = firstNonEmpty(os.Getenv("HTTP_PORT"), fileCfg.HTTPPort, defaultPort)
	if legacyPort := os.Getenv("PORT"); legacyPort != "" && cfg.HTTPPort == defaultPort {
		cfg.HTTPPort = legacyPort
	}
	if !strings.HasPrefix(cfg.HTTPPort, ":") {
		cfg.HTTPPort = ":" + cfg.HTTPPort
	}

	if err := validateConfig(cfg); err != nil {
		if cfg.StrictConfig {
			return cfg, err
		}
		log.Printf("config validation failed: %v (continuing)", err)
	}

	return cfg, nil
}

func loadFileConfig(path string) (fileConfig, error) {
	var cfg fileConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if len(data) == 0 {
		return cfg, errors.New("empty config file")
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func validateConfig(cfg Config) error {
	switch cfg.DBDriver {
	case DriverSQLite:
		if strings.TrimSpace(cfg.DBPath) == "" {
			return errors.New("DB_PATH is required for the sqlite driver")
		}
	case DriverMySQL:
		if strings.TrimSpace(cfg.DBHost) == "" {
			return errors.New("DB_HOST is required for the mysql driver")
		}
		if strings.TrimSpace(cfg.DBName) == "" {
			return errors.New("DB_NAME is required for the mysql driver")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
	if strings.TrimSpace(cfg.SourceURL) == "" {
		return errors.New("SOURCE_URL is required")
	}
	if cfg.PageSize <= 0 {
		return errors.New("page size must be positive")
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, val := range values {
		if strings.TrimSpace(val) != "" {
			return val
		}
	}
	return ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseBoolEnv(key string) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	switch v {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

func parseIntEnv(key string) (int, bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return 0, false, nil
	}
	val, err := strconv.Atoi(raw)
	return val, true, err
}
