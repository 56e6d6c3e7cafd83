package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	HTTPAddr string

	DBDriver string
	DBDSN    string

	// BlobBasePath is where uploaded scanner files are archived.
	BlobBasePath string

	CORSOrigins []string

	AuthSecret string

	AdminUser     string
	AdminPassHash string // bcrypt

	OperatorUser     string
	OperatorPassHash string // bcrypt

	// DecodeWorkers caps the per-batch decode fan-out. 1 disables it.
	DecodeWorkers int
}

func FromEnv() Config {
	return Config{
		HTTPAddr:         envOr("HTTP_ADDR", ":8080"),
		DBDriver:         envOr("DB_DRIVER", "sqlite"),
		DBDSN:            envOr("DB_DSN", ""),
		BlobBasePath:     envOr("BLOB_BASE_PATH", "./data"),
		CORSOrigins:      csvOr("CORS_ORIGINS", "http://localhost:3000"),
		AuthSecret:       envOr("AUTH_HMAC_SECRET", "supersecret-dev-key"),
		AdminUser:        envOr("ADMIN_USER", "admin"),
		AdminPassHash:    envOr("ADMIN_PASS_HASH", "$2y$12$pyZAiWaTfVtM7UElIRStvOC3gNbnp70nmQU4eYopLGBfCJr1DOvji"),
		OperatorUser:     envOr("OPERATOR_USER", "operator"),
		OperatorPassHash: envOr("OPERATOR_PASS_HASH", ""),
		DecodeWorkers:    envInt("DECODE_WORKERS", 4),
	}
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func envInt(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return def
	}
	return n
}

func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
