package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/assetvault/internal/flagx"
	"github.com/dmitrijs2005/assetvault/internal/timex"
)

// JsonConfig is the on-disk shape of the JSON config file. Durations use
// timex.Duration so both "5m" and integer nanoseconds are accepted. Fields
// left out of the file (zero values) do not override earlier layers;
// AllowSharedDownload is a pointer so that an explicit false still applies.
type JsonConfig struct {
	EndpointAddrHTTP    string         `json:"endpoint_addr_http"`
	EndpointAddrGRPC    string         `json:"endpoint_addr_grpc"`
	DatabaseDSN         string         `json:"database_dsn"`
	SecretKey           string         `json:"secret_key"`
	S3RootUser          string         `json:"s3_root_user"`
	S3RootPassword      string         `json:"s3_root_password"`
	S3Bucket            string         `json:"s3_bucket"`
	S3Region            string         `json:"s3_region"`
	S3BaseEndpoint      string         `json:"s3_base_endpoint"`
	MaxUploadSize       int64          `json:"max_upload_size"`
	UploadTicketTTL     timex.Duration `json:"upload_ticket_ttl"`
	DownloadURLTTL      timex.Duration `json:"download_url_ttl"`
	AllowSharedDownload *bool          `json:"allow_shared_download"`
	RateLimitPerMinute  int            `json:"rate_limit_per_minute"`
	CORSAllowedOrigins  string         `json:"cors_allowed_origins"`
	ReapInterval        timex.Duration `json:"reap_interval"`
	ReapGrace           timex.Duration `json:"reap_grace"`
	LogBackend          string         `json:"log_backend"`
	LogLevel            string         `json:"log_level"`
	LogPath             string         `json:"log_path"`
}

// parseJson loads the file named by -c/-config into config. Without the flag
// nothing happens; an unreadable file or invalid JSON panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.CORSAllowedOrigins, c.CORSAllowedOrigins)
	setString(&config.LogBackend, c.LogBackend)
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.LogPath, c.LogPath)

	if c.MaxUploadSize != 0 {
		config.MaxUploadSize = c.MaxUploadSize
	}
	if c.RateLimitPerMinute != 0 {
		config.RateLimitPerMinute = c.RateLimitPerMinute
	}
	if c.UploadTicketTTL.Duration != 0 {
		config.UploadTicketTTL = c.UploadTicketTTL.Duration
	}
	if c.DownloadURLTTL.Duration != 0 {
		config.DownloadURLTTL = c.DownloadURLTTL.Duration
	}
	if c.ReapInterval.Duration != 0 {
		config.ReapInterval = c.ReapInterval.Duration
	}
	if c.ReapGrace.Duration != 0 {
		config.ReapGrace = c.ReapGrace.Duration
	}
	if c.AllowSharedDownload != nil {
		config.AllowSharedDownload = *c.AllowSharedDownload
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
