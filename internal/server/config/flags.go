package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/assetvault/internal/flagx"
)

// serverFlags lists every short flag parseFlags understands.
var serverFlags = []string{
	"-a", "-n", "-d", "-s", "-u", "-p", "-b", "-g", "-e",
	"-m", "-t", "-o", "-w", "-r", "-x", "-i", "-j", "-l", "-v", "-f",
}

// parseFlags populates server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string    HTTP bind address (e.g., ":8080")
//	-n string    gRPC health bind address (e.g., ":50051")
//	-d string    PostgreSQL DSN
//	-s string    JWT HMAC secret key
//	-u/-p string S3 root user / password
//	-b string    S3 bucket name
//	-g string    S3 region
//	-e string    S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//	-m int       max upload size, bytes
//	-t duration  upload ticket ttl (e.g., "5m")
//	-o duration  download url ttl (e.g., "120s")
//	-w bool      allow share recipients to request download urls (write -w=true)
//	-r int       requests per minute per client
//	-x string    CORS allowed origins, comma separated
//	-i duration  abandoned upload sweep interval
//	-j duration  grace period after ticket expiry before sweeping
//	-l string    log backend: slog or zap
//	-v string    log level
//	-f string    log file (zap backend)
//
// os.Args is filtered with flagx.FilterArgs first so -c/-config and -env,
// handled by other layers, do not cause parse errors.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], serverFlags)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run http server")
	fs.StringVar(&config.EndpointAddrGRPC, "n", config.EndpointAddrGRPC, "address and port to run grpc health server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	fs.Int64Var(&config.MaxUploadSize, "m", config.MaxUploadSize, "max upload size (bytes)")
	fs.DurationVar(&config.UploadTicketTTL, "t", config.UploadTicketTTL, "upload ticket validity")
	fs.DurationVar(&config.DownloadURLTTL, "o", config.DownloadURLTTL, "download url validity")
	fs.BoolVar(&config.AllowSharedDownload, "w", config.AllowSharedDownload, "allow shared download")
	fs.IntVar(&config.RateLimitPerMinute, "r", config.RateLimitPerMinute, "requests per minute per client")
	fs.StringVar(&config.CORSAllowedOrigins, "x", config.CORSAllowedOrigins, "CORS allowed origins")
	fs.DurationVar(&config.ReapInterval, "i", config.ReapInterval, "abandoned upload sweep interval")
	fs.DurationVar(&config.ReapGrace, "j", config.ReapGrace, "abandoned upload grace period")

	fs.StringVar(&config.LogBackend, "l", config.LogBackend, "log backend (slog|zap)")
	fs.StringVar(&config.LogLevel, "v", config.LogLevel, "log level")
	fs.StringVar(&config.LogPath, "f", config.LogPath, "log file path")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
