package config

import (
	"errors"
	"io/fs"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverMemory   = "memory"
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverBadger   = "badger"
)

type Env struct {
	AppAddr     string
	GinMode     string
	StoreDriver string
	MySQLDSN    string
	DatabaseURL string
	BadgerDir   string
	JWTSecret   string
	CORSOrigins []string
	SessionTTL  time.Duration
}

var defaultCORSOrigins = []string{
	"http://localhost:3000",
	"http://127.0.0.1:3000",
	"http://localhost:5173",
	"http://127.0.0.1:5173",
}

// LoadEnv reads .env (if present) and the process environment.
// Variables already set in the environment win over .env.
func LoadEnv() Env {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("warning: failed to read .env: %v", err)
	}
	return envFrom(os.Getenv)
}

func envFrom(get func(string) string) Env {
	val := func(key, def string) string {
		if v := strings.TrimSpace(get(key)); v != "" {
			return v
		}
		return def
	}

	env := Env{
		AppAddr:     val("APP_ADDR", ":8080"),
		GinMode:     val("GIN_MODE", ""),
		StoreDriver: strings.ToLower(val("STORE_DRIVER", DriverMemory)),
		MySQLDSN:    val("MYSQL_DSN", "root:@tcp(127.0.0.1:3306)/railbook?parseTime=true&charset=utf8mb4&timeout=5s"),
		DatabaseURL: val("DATABASE_URL", ""),
		BadgerDir:   val("BADGER_DIR", "data/badger"),
		JWTSecret:   val("JWT_SECRET", "dev-secret-change-me"),
		CORSOrigins: defaultCORSOrigins,
		SessionTTL:  30 * time.Minute,
	}

	if raw := val("CORS_ALLOWED_ORIGINS", ""); raw != "" {
		var origins []string
		for _, o := range strings.Split(raw, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		if len(origins) > 0 {
			env.CORSOrigins = origins
		}
	}

	if raw := val("SESSION_TTL", ""); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			log.Printf("warning: invalid SESSION_TTL %q, using %s", raw, env.SessionTTL)
		} else {
			env.SessionTTL = d
		}
	}
	return env
}
