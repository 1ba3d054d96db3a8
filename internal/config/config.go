package config

import (
	"encoding/base64"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const EnvPrefix = "HOSTLY_"

// Settings holds raw values as read from the config file, the environment
// and flags, before validation.
type Settings struct {
	ServerAddr     string   `yaml:"server_addr"`
	DatabaseDSN    string   `yaml:"database_dsn"`
	SigningKey     string   `yaml:"signing_key"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	UploadDir      string   `yaml:"upload_dir"`
	PublicURL      string   `yaml:"public_url"`
	S3Bucket       string   `yaml:"s3_bucket"`
	S3Region       string   `yaml:"s3_region"`
	MessageRate    float64  `yaml:"message_rate"`
	MessageBurst   int      `yaml:"message_burst"`
	Migrate        bool     `yaml:"migrate"`
}

func DefaultSettings() Settings {
	return Settings{
		ServerAddr:   "localhost:8000",
		DatabaseDSN:  "host=localhost user=postgres password=postgres dbname=hostly sslmode=disable",
		SigningKey:   "wT0phFUusHZIrDhL9bUKPUhwaxKhpi/SaI6PtgB+MgU=",
		UploadDir:    "uploads",
		PublicURL:    "http://localhost:8000",
		S3Region:     "us-east-1",
		MessageRate:  1,
		MessageBurst: 5,
		Migrate:      true,
	}
}

// LoadFile overlays the YAML file at path onto s. Keys missing from the
// file keep their current value.
func LoadFile(path string, s *Settings) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, s); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	return nil
}

// LoadEnv overlays HOSTLY_* variables onto s.
func LoadEnv(lookup func(string) (string, bool), s *Settings) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok {
			*dst = v
		}
	}

	str("SERVER_ADDR", &s.ServerAddr)
	str("DATABASE_DSN", &s.DatabaseDSN)
	str("SIGNING_KEY", &s.SigningKey)
	str("UPLOAD_DIR", &s.UploadDir)
	str("PUBLIC_URL", &s.PublicURL)
	str("S3_BUCKET", &s.S3Bucket)
	str("S3_REGION", &s.S3Region)

	if v, ok := lookup(EnvPrefix + "ALLOWED_ORIGINS"); ok {
		s.AllowedOrigins = SplitList(v)
	}

	if v, ok := lookup(EnvPrefix + "MESSAGE_RATE"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%sMESSAGE_RATE: %w", EnvPrefix, err)
		}
		s.MessageRate = f
	}

	if v, ok := lookup(EnvPrefix + "MESSAGE_BURST"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sMESSAGE_BURST: %w", EnvPrefix, err)
		}
		s.MessageBurst = n
	}

	if v, ok := lookup(EnvPrefix + "MIGRATE"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sMIGRATE: %w", EnvPrefix, err)
		}
		s.Migrate = b
	}

	return nil
}

// SplitList splits a comma-separated value, dropping blank entries.
func SplitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

type Config struct {
	DatabaseDSN    string
	ServerAddr     string
	SigningKey     []byte
	AllowedOrigins []string
	UploadDir      string
	PublicURL      string
	S3Bucket       string
	S3Region       string
	MessageRate    float64
	MessageBurst   int
	Migrate        bool
}

func decodeSigningSecret(base64Secret string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(base64Secret)
}

func NewConfig(s Settings) (*Config, error) {
	if s.ServerAddr == "" {
		return nil, fmt.Errorf("server address cannot be empty")
	}
	if s.DatabaseDSN == "" {
		return nil, fmt.Errorf("database DSN cannot be empty")
	}
	if s.SigningKey == "" {
		return nil, fmt.Errorf("signing secret cannot be empty")
	}
	if s.S3Bucket != "" && s.S3Region == "" {
		return nil, fmt.Errorf("s3 region is required with a bucket")
	}
	if s.S3Bucket == "" && s.UploadDir == "" {
		return nil, fmt.Errorf("an upload directory or s3 bucket is required")
	}
	if s.MessageRate <= 0 || s.MessageBurst <= 0 {
		return nil, fmt.Errorf("message rate and burst must be positive")
	}

	// Decode the base64 encoded signing secret
	signingKey, err := decodeSigningSecret(s.SigningKey)
	if err != nil {
		return nil, fmt.Errorf("decode signing secret: %w", err)
	}

	return &Config{
		DatabaseDSN:    s.DatabaseDSN,
		ServerAddr:     s.ServerAddr,
		SigningKey:     signingKey,
		AllowedOrigins: s.AllowedOrigins,
		UploadDir:      s.UploadDir,
		PublicURL:      strings.TrimRight(s.PublicURL, "/"),
		S3Bucket:       s.S3Bucket,
		S3Region:       s.S3Region,
		MessageRate:    s.MessageRate,
		MessageBurst:   s.MessageBurst,
		Migrate:        s.Migrate,
	}, nil
}
