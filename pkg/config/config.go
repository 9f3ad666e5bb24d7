package config

import (
	"fmt"
	"time"

	"github.com/tendant/simple-verify/pkg/notification"
)

// ServerConfig holds the HTTP listener settings
type ServerConfig struct {
	Host string `env:"SERVER_HOST" env-default:"localhost"`
	Port uint16 `env:"SERVER_PORT" env-default:"4000"`
}

func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// EmailConfig holds SMTP email configuration
type EmailConfig struct {
	Host     string `env:"EMAIL_HOST" env-default:"localhost"`
	Port     uint16 `env:"EMAIL_PORT" env-default:"1025"`
	Username string `env:"EMAIL_USERNAME" env-default:"noreply@example.com"`
	Password string `env:"EMAIL_PASSWORD" env-default:"pwd"`
	From     string `env:"EMAIL_FROM" env-default:"noreply@example.com"`
	TLS      bool   `env:"EMAIL_TLS" env-default:"false"`
}

// ToSMTPConfig converts the config to a notification.SMTPConfig
func (e EmailConfig) ToSMTPConfig() notification.SMTPConfig {
	return notification.SMTPConfig{
		Host:     e.Host,
		Port:     int(e.Port),
		Username: e.Username,
		Password: e.Password,
		From:     e.From,
		TLS:      e.TLS,
	}
}

// JwtConfig holds token signing settings
type JwtConfig struct {
	Secret            string `env:"JWT_SECRET" env-default:"very-secure-jwt-secret"`
	Issuer            string `env:"JWT_ISSUER" env-default:"simple-verify"`
	Audience          string `env:"JWT_AUDIENCE" env-default:"simple-verify-app"`
	AccessTokenExpiry int    `env:"JWT_ACCESS_TOKEN_EXPIRY_SECS" env-default:"900"`
}

// TwoFaConfig holds second-factor timing settings
type TwoFaConfig struct {
	CodeTTLSecs        int `env:"TWOFA_CODE_TTL_SECS" env-default:"300"`
	ResendCooldownSecs int `env:"TWOFA_RESEND_COOLDOWN_SECS" env-default:"60"`
}

func (t TwoFaConfig) CodeTTL() time.Duration {
	return time.Duration(t.CodeTTLSecs) * time.Second
}

func (t TwoFaConfig) ResendCooldown() time.Duration {
	return time.Duration(t.ResendCooldownSecs) * time.Second
}

// DatabaseConfig holds PostgreSQL connection settings
type DatabaseConfig struct {
	Host     string `env:"DB_HOST" env-default:"localhost"`
	Port     uint16 `env:"DB_PORT" env-default:"5432"`
	Database string `env:"DB_NAME" env-default:"simple_verify"`
	User     string `env:"DB_USER" env-default:"verify"`
	Password string `env:"DB_PASSWORD" env-default:"pwd"`
}

func (d DatabaseConfig) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s", d.User, d.Password, d.Host, d.Port, d.Database)
}

// AppConfig is the full service configuration loaded from the environment.
// Persistence selects the repository backend: "inmem", "file" or "postgres".
type AppConfig struct {
	Server      ServerConfig
	Email       EmailConfig
	Jwt         JwtConfig
	TwoFa       TwoFaConfig
	Database    DatabaseConfig
	BaseUrl     string `env:"BASE_URL" env-default:"http://localhost:4000"`
	Persistence string `env:"PERSISTENCE" env-default:"inmem"`
	DataDir     string `env:"DATA_DIR" env-default:"./data"`
}
