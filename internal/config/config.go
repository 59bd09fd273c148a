package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Store backends.
const (
	BackendMySQL    = "mysql"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

type Config struct {
	Env            string
	LogLevel       string
	DBBackend      string
	DBHost         string
	DBPort         string
	DBUser         string
	DBPassword     string
	DBName         string
	SQLitePath     string
	PostgresURL    string
	JWTSecret      string
	APIKey         string
	Port           string
	ResendAPIKey   string
	EmailFrom      string
	AllowedOrigins string
	ResultProfile  string
	RabbitMQURL    string
	RabbitMQQueue  string
}

var defaults = map[string]string{
	"ENV":             "development",
	"LOG_LEVEL":       "info",
	"DB_BACKEND":      BackendMySQL,
	"DB_HOST":         "localhost",
	"DB_PORT":         "3306",
	"DB_USER":         "medfit",
	"DB_PASSWORD":     "medfit_pass",
	"DB_NAME":         "medfit",
	"SQLITE_PATH":     "medfit.db",
	"POSTGRES_URL":    "",
	"JWT_SECRET":      "",
	"API_KEY":         "",
	"PORT":            "8080",
	"RESEND_API_KEY":  "",
	"EMAIL_FROM":      "MedFit <no-reply@medfit.app>",
	"ALLOWED_ORIGINS": "*",
	"RESULT_PROFILE":  "clinical",
	"RABBITMQ_URL":    "",
	"RABBITMQ_QUEUE":  "medfit.assessments",
}

// Load resolves configuration from defaults, an optional YAML file and the
// environment, in increasing priority. configFile may be empty, in which case
// medfit.yaml is looked up in the working directory and silently skipped when
// absent.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("medfit")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{
		Env:            v.GetString("ENV"),
		LogLevel:       v.GetString("LOG_LEVEL"),
		DBBackend:      strings.ToLower(v.GetString("DB_BACKEND")),
		DBHost:         v.GetString("DB_HOST"),
		DBPort:         v.GetString("DB_PORT"),
		DBUser:         v.GetString("DB_USER"),
		DBPassword:     v.GetString("DB_PASSWORD"),
		DBName:         v.GetString("DB_NAME"),
		SQLitePath:     v.GetString("SQLITE_PATH"),
		PostgresURL:    v.GetString("POSTGRES_URL"),
		JWTSecret:      v.GetString("JWT_SECRET"),
		APIKey:         v.GetString("API_KEY"),
		Port:           v.GetString("PORT"),
		ResendAPIKey:   v.GetString("RESEND_API_KEY"),
		EmailFrom:      v.GetString("EMAIL_FROM"),
		AllowedOrigins: v.GetString("ALLOWED_ORIGINS"),
		ResultProfile:  v.GetString("RESULT_PROFILE"),
		RabbitMQURL:    v.GetString("RABBITMQ_URL"),
		RabbitMQQueue:  v.GetString("RABBITMQ_QUEUE"),
	}

	switch cfg.DBBackend {
	case BackendMySQL, BackendSQLite, BackendPostgres:
	default:
		return nil, fmt.Errorf("unsupported DB_BACKEND %q", cfg.DBBackend)
	}
	return cfg, nil
}

// DSN returns the driver connection string for the configured backend.
func (c *Config) DSN() string {
	switch c.DBBackend {
	case BackendSQLite:
		return "file:" + c.SQLitePath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	case BackendPostgres:
		return c.PostgresURL
	default:
		return c.DBUser + ":" + c.DBPassword + "@tcp(" + c.DBHost + ":" + c.DBPort + ")/" + c.DBName + "?parseTime=true&charset=utf8mb4&multiStatements=true&clientFoundRows=true"
	}
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
