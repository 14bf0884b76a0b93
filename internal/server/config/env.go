package config

import (
	"os"
	"strconv"
	"time"

	"github.com/dmitrijs2005/assetvault/internal/flagx"
	"github.com/joho/godotenv"
)

// envPrefix namespaces every variable read by parseEnv.
const envPrefix = "ASSETVAULT_"

// parseEnv overlays ASSETVAULT_* environment variables onto config.
//
// A dotenv file is loaded first: the path given with -env, otherwise ./.env
// when it exists. godotenv never overrides variables that are already set in
// the process environment. Malformed numeric, boolean or duration values
// panic, like the other config layers.
func parseEnv(config *Config) {
	if path := flagx.EnvFileFlags(); path != "" {
		if err := godotenv.Load(path); err != nil {
			panic(err)
		}
	} else if _, err := os.Stat(".env"); err == nil {
		_ = godotenv.Load()
	}

	envString("HTTP_ADDR", &config.EndpointAddrHTTP)
	envString("GRPC_ADDR", &config.EndpointAddrGRPC)
	envString("DATABASE_DSN", &config.DatabaseDSN)
	envString("SECRET_KEY", &config.SecretKey)
	envString("S3_ROOT_USER", &config.S3RootUser)
	envString("S3_ROOT_PASSWORD", &config.S3RootPassword)
	envString("S3_BUCKET", &config.S3Bucket)
	envString("S3_REGION", &config.S3Region)
	envString("S3_BASE_ENDPOINT", &config.S3BaseEndpoint)
	envInt64("MAX_UPLOAD_SIZE", &config.MaxUploadSize)
	envDuration("UPLOAD_TICKET_TTL", &config.UploadTicketTTL)
	envDuration("DOWNLOAD_URL_TTL", &config.DownloadURLTTL)
	envBool("ALLOW_SHARED_DOWNLOAD", &config.AllowSharedDownload)
	envInt("RATE_LIMIT", &config.RateLimitPerMinute)
	envString("CORS_ORIGINS", &config.CORSAllowedOrigins)
	envDuration("REAP_INTERVAL", &config.ReapInterval)
	envDuration("REAP_GRACE", &config.ReapGrace)
	envString("LOG_BACKEND", &config.LogBackend)
	envString("LOG_LEVEL", &config.LogLevel)
	envString("LOG_PATH", &config.LogPath)
}

func envString(key string, dst *string) {
	if v, ok := os.LookupEnv(envPrefix + key); ok {
		*dst = v
	}
}

func envInt(key string, dst *int) {
	if v, ok := os.LookupEnv(envPrefix + key); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			panic(err)
		}
		*dst = n
	}
}

func envInt64(key string, dst *int64) {
	if v, ok := os.LookupEnv(envPrefix + key); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			panic(err)
		}
		*dst = n
	}
}

func envBool(key string, dst *bool) {
	if v, ok := os.LookupEnv(envPrefix + key); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			panic(err)
		}
		*dst = b
	}
}

func envDuration(key string, dst *time.Duration) {
	if v, ok := os.LookupEnv(envPrefix + key); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			panic(err)
		}
		*dst = d
	}
}
