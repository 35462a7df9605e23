package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v2"
)

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	ApplicationName    string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// MinIOConfig holds object storage settings for MinIO.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// AuthConfig holds token signing settings and the optional bootstrap admin account.
type AuthConfig struct {
	JWTSecret       string
	TokenTTLMinutes int
	AdminEmail      string
	AdminPassword   string
	AdminName       string
}

// Election phases.
const (
	PhaseScheduled = "scheduled"
	PhaseOpen      = "open"
	PhaseClosed    = "closed"
)

// ElectionConfig describes the running election. A zero OpensAt or ClosesAt
// leaves that side of the voting window unbounded.
type ElectionConfig struct {
	Title    string
	OpensAt  time.Time
	ClosesAt time.Time
}

// Phase reports where t falls relative to the voting window.
func (e ElectionConfig) Phase(t time.Time) string {
	if !e.OpensAt.IsZero() && t.Before(e.OpensAt) {
		return PhaseScheduled
	}
	if !e.ClosesAt.IsZero() && !t.Before(e.ClosesAt) {
		return PhaseClosed
	}
	return PhaseOpen
}

// IsOpen reports whether votes are accepted at t.
func (e ElectionConfig) IsOpen(t time.Time) bool {
	return e.Phase(t) == PhaseOpen
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost      string
	Port         string
	Timezone     string
	ElectionFile string
	Database     DatabaseConfig
	MinIO        MinIOConfig
	Auth         AuthConfig
	Election     ElectionConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		AppHost:      getEnv("APP_HOST", "localhost:8080"),
		Port:         getEnv("PORT", "8080"),
		Timezone:     getEnv("APP_TIMEZONE", "UTC"),
		ElectionFile: getEnv("ELECTION_CONFIG_FILE", ""),
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			ApplicationName:    getEnv("DB_APPLICATION_NAME", "pilketos"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", ""),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		Auth: AuthConfig{
			JWTSecret:       getEnv("JWT_SECRET", ""),
			TokenTTLMinutes: getEnvInt("JWT_TTL_MINUTES", 60),
			AdminEmail:      getEnv("ADMIN_EMAIL", ""),
			AdminPassword:   getEnv("ADMIN_PASSWORD", ""),
			AdminName:       getEnv("ADMIN_NAME", "Administrator"),
		},
		Election: ElectionConfig{
			Title:    getEnv("ELECTION_TITLE", "Pemilihan Ketua OSIS"),
			OpensAt:  getEnvTime("ELECTION_OPENS_AT"),
			ClosesAt: getEnvTime("ELECTION_CLOSES_AT"),
		},
	}
}

// electionFile mirrors the YAML layout of ELECTION_CONFIG_FILE.
type electionFile struct {
	Election struct {
		Title    string `yaml:"title"`
		OpensAt  string `yaml:"opens_at"`
		ClosesAt string `yaml:"closes_at"`
	} `yaml:"election"`
}

// LoadElectionFile reads a YAML election file and overlays its non-empty values on base.
//
//	election:
//	  title: Pemilihan Ketua OSIS 2026
//	  opens_at: 2026-10-20T07:00:00+07:00
//	  closes_at: 2026-10-20T14:00:00+07:00
func LoadElectionFile(path string, base ElectionConfig) (ElectionConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return base, err
	}
	defer f.Close()

	var ef electionFile
	if err := yaml.NewDecoder(f).Decode(&ef); err != nil {
		return base, fmt.Errorf("decode election file: %w", err)
	}

	out := base
	if ef.Election.Title != "" {
		out.Title = ef.Election.Title
	}
	if ef.Election.OpensAt != "" {
		t, err := time.Parse(time.RFC3339, ef.Election.OpensAt)
		if err != nil {
			return base, fmt.Errorf("parse opens_at: %w", err)
		}
		out.OpensAt = t
	}
	if ef.Election.ClosesAt != "" {
		t, err := time.Parse(time.RFC3339, ef.Election.ClosesAt)
		if err != nil {
			return base, fmt.Errorf("parse closes_at: %w", err)
		}
		out.ClosesAt = t
	}
	if !out.OpensAt.IsZero() && !out.ClosesAt.IsZero() && !out.ClosesAt.After(out.OpensAt) {
		return base, fmt.Errorf("closes_at must be after opens_at")
	}
	return out, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

// getEnvTime parses an RFC3339 timestamp; invalid or missing values yield the zero time.
func getEnvTime(key string) time.Time {
	if v := os.Getenv(key); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err == nil {
			return t
		}
	}
	return time.Time{}
}
