package config

import (
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{name: "all flags", args: []string{"cmd",
			"-a", "127.0.0.1:9090", "-n", ":6000", "-d", "db", "-s", "secret",
			"-u", "user", "-p", "password", "-b", "bucket", "-g", "us-west-1", "-e", "http://endpoint",
			"-m", "1024", "-t", "2m", "-o", "30s", "-w=true", "-r", "10", "-x", "https://app.example",
			"-i", "1m", "-j", "5m", "-l", "zap", "-v", "debug", "-f", "/tmp/a.log",
		},
			expected: &Config{
				EndpointAddrHTTP:    "127.0.0.1:9090",
				EndpointAddrGRPC:    ":6000",
				DatabaseDSN:         "db",
				SecretKey:           "secret",
				S3RootUser:          "user",
				S3RootPassword:      "password",
				S3Bucket:            "bucket",
				S3Region:            "us-west-1",
				S3BaseEndpoint:      "http://endpoint",
				MaxUploadSize:       1024,
				UploadTicketTTL:     2 * time.Minute,
				DownloadURLTTL:      30 * time.Second,
				AllowSharedDownload: true,
				RateLimitPerMinute:  10,
				CORSAllowedOrigins:  "https://app.example",
				ReapInterval:        time.Minute,
				ReapGrace:           5 * time.Minute,
				LogBackend:          "zap",
				LogLevel:            "debug",
				LogPath:             "/tmp/a.log",
			}},
		{name: "foreign flags are ignored", args: []string{"cmd", "-c", "cfg.json", "-env", "x.env", "-a", ":1"},
			expected: &Config{EndpointAddrHTTP: ":1"}},
		{name: "bad duration panics", args: []string{"cmd", "-t", "soon"}, expectPanic: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Args = tt.args

			config := &Config{}

			if !tt.expectPanic {
				require.NotPanics(t, func() { parseFlags(config) })
				assert.Empty(t, cmp.Diff(config, tt.expected))
			} else {
				require.Panics(t, func() { parseFlags(config) })
			}
		})
	}
}
