package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	MediumFile     = "file"
	MediumMemory   = "memory"
	MediumS3       = "s3"
	MediumPostgres = "postgres"
)

type Config struct {
	Port     string
	Env      string
	Log      string
	LogLevel string
	LogDir   string

	StoreMedium    string
	DataFile       string
	PostsObjectKey string
	DatabaseURL    string

	S3Bucket    string
	AWSRegion   string
	S3Endpoint  string
	S3PublicURL string

	RabbitMQURL string
	AdminAPIKey string
	CORSOrigins []string

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	ToEmail      string
	FromEmail    string
	OwnerName    string

	SiteURL string
}

// Load reads .env (if present) and the process environment. It never logs so
// it can run before the logger exists.
func Load() *Config {
	_ = godotenv.Load()

	smtpUser := getEnv("SMTP_USER", "")

	return &Config{
		Port:     getEnv("PORT", "5174"),
		Env:      strings.ToLower(getEnv("ENV", "prod")),
		Log:      strings.ToLower(getEnv("LOG", "")),
		LogLevel: strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogDir:   getEnv("LOG_DIR", "logs"),

		StoreMedium:    strings.ToLower(getEnv("STORE_MEDIUM", MediumFile)),
		DataFile:       getEnv("DATA_FILE", "data/blog-posts.json"),
		PostsObjectKey: getEnv("POSTS_OBJECT_KEY", "data/blog-posts.json"),
		DatabaseURL:    getEnv("DATABASE_URL", ""),

		S3Bucket:    getEnv("S3_BUCKET", ""),
		AWSRegion:   getEnv("AWS_REGION", "us-east-1"),
		S3Endpoint:  getEnv("S3_ENDPOINT", ""),
		S3PublicURL: strings.TrimRight(getEnv("S3_PUBLIC_URL", ""), "/"),

		RabbitMQURL: getEnv("RABBITMQ_URL", ""),
		AdminAPIKey: getEnv("ADMIN_API_KEY", ""),
		CORSOrigins: splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),

		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnvInt("SMTP_PORT", 587),
		SMTPUser:     smtpUser,
		SMTPPassword: getEnv("SMTP_PASS", ""),
		ToEmail:      getEnv("TO_EMAIL", "dev.nagarjugnu@gmail.com"),
		FromEmail:    getEnv("FROM_EMAIL", smtpUser),
		OwnerName:    getEnv("OWNER_NAME", "Jugnu Nagar"),

		SiteURL: strings.TrimRight(getEnv("SITE_URL", "https://jugnunagar.dev"), "/"),
	}
}

// Validate returns non-fatal warnings and an error when the selected store
// medium cannot work with the given settings.
func (c *Config) Validate() (warnings []string, err error) {
	switch c.StoreMedium {
	case MediumFile:
		if c.DataFile == "" {
			return nil, errors.New("DATA_FILE is required for the file medium")
		}
	case MediumMemory:
		warnings = append(warnings, "memory medium selected: posts are lost on restart")
	case MediumS3:
		if c.S3Bucket == "" {
			return nil, errors.New("S3_BUCKET is required for the s3 medium")
		}
	case MediumPostgres:
		if c.DatabaseURL == "" {
			return nil, errors.New("DATABASE_URL is required for the postgres medium")
		}
	default:
		return nil, fmt.Errorf("unknown STORE_MEDIUM %q", c.StoreMedium)
	}

	if c.S3Bucket == "" {
		warnings = append(warnings, "S3_BUCKET is empty: cover uploads are disabled")
	}
	if !c.MailerConfigured() {
		warnings = append(warnings, "SMTP is not fully configured: contact form is disabled")
	}
	if c.AdminAPIKey == "" {
		warnings = append(warnings, "ADMIN_API_KEY is empty: admin endpoints are open")
	}
	return warnings, nil
}

func (c *Config) MailerConfigured() bool {
	return c.SMTPHost != "" && c.FromEmail != ""
}

func getEnv(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return n
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if item := strings.TrimSpace(part); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
