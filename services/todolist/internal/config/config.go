package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Поддерживаемые драйверы хранилища
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
	DriverMongo    = "mongo"
)

type DatabaseConfig struct {
	Driver   string // memory, postgres, sqlite3 или mongo
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	Path     string // файл sqlite
	MongoURI string
}

type Config struct {
	HTTPPort        string
	GRPCPort        string
	LogLevel        string
	CORSOrigins     []string
	CSRFEnabled     bool
	StoreTimeout    time.Duration
	ShutdownTimeout time.Duration
	DB              DatabaseConfig
}

// Load читает конфигурацию из окружения; .env в рабочем каталоге необязателен
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}
	return FromEnv()
}

// FromEnv читает конфигурацию только из переменных окружения
func FromEnv() (*Config, error) {
	cfg := &Config{
		HTTPPort:    getEnv("TODOLIST_PORT", "8082"),
		GRPCPort:    getEnv("TODOLIST_GRPC_PORT", "50052"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		CORSOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173")),
		DB: DatabaseConfig{
			Driver:   getEnv("DB_DRIVER", DriverMemory),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "todolist_user"),
			Password: getEnv("DB_PASSWORD", "todolist_pass"),
			DBName:   getEnv("DB_NAME", "todolist"),
			Path:     getEnv("DB_PATH", "data/todolist.db"),
			MongoURI: getEnv("MONGO_URI", "mongodb://localhost:27017"),
		},
	}

	var err error
	if cfg.CSRFEnabled, err = getBool("CSRF_ENABLED", false); err != nil {
		return nil, err
	}
	if cfg.StoreTimeout, err = getDuration("STORE_TIMEOUT", 5*time.Second); err != nil {
		return nil, err
	}
	if cfg.ShutdownTimeout, err = getDuration("SHUTDOWN_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.DB.Driver {
	case DriverMemory, DriverPostgres, DriverSQLite, DriverMongo:
	default:
		return fmt.Errorf("unsupported database driver: %q", c.DB.Driver)
	}
	for name, port := range map[string]string{"TODOLIST_PORT": c.HTTPPort, "TODOLIST_GRPC_PORT": c.GRPCPort} {
		if _, err := strconv.ParseUint(port, 10, 16); err != nil {
			return fmt.Errorf("invalid %s %q", name, port)
		}
	}
	if c.StoreTimeout <= 0 {
		return fmt.Errorf("STORE_TIMEOUT must be positive")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return b, nil
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return d, nil
}

func splitList(value string) []string {
	var out []string
	for _, v := range strings.Split(value, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// DSN строка подключения для выбранного драйвера
func (db *DatabaseConfig) DSN() string {
	switch db.Driver {
	case DriverPostgres:
		u := url.URL{
			Scheme:   "postgres",
			User:     url.UserPassword(db.User, db.Password),
			Host:     db.Host + ":" + db.Port,
			Path:     "/" + db.DBName,
			RawQuery: "sslmode=disable",
		}
		return u.String()
	case DriverSQLite:
		return db.Path
	case DriverMongo:
		return db.MongoURI
	default:
		return ""
	}
}
