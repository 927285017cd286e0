package contacts

import (
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/contactio/go-contacts/avatar"
	"github.com/contactio/go-contacts/notify"
)

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Addr    string `yaml:"addr" env:"SERVER_ADDR" env-default:":8080"`
	BaseURL string `yaml:"base_url" env:"SERVER_BASE_URL" env-default:"http://localhost:8080"`
}

// AuthConfig holds the token signing parameters. A single signing key is
// shared by all token kinds; the scope claim keeps them apart.
type AuthConfig struct {
	SigningKey       string        `yaml:"signing_key" env:"AUTH_SIGNING_KEY" env-required:"true"`
	SigningMethod    string        `yaml:"signing_method" env:"AUTH_SIGNING_METHOD" env-default:"HS256"`
	AccessTokenTTL   time.Duration `yaml:"access_token_ttl" env:"AUTH_ACCESS_TOKEN_TTL" env-default:"15m"`
	RefreshTokenTTL  time.Duration `yaml:"refresh_token_ttl" env:"AUTH_REFRESH_TOKEN_TTL" env-default:"168h"`
	EmailTokenTTL    time.Duration `yaml:"email_token_ttl" env:"AUTH_EMAIL_TOKEN_TTL" env-default:"168h"`
	RecoveryTokenTTL time.Duration `yaml:"recovery_token_ttl" env:"AUTH_RECOVERY_TOKEN_TTL" env-default:"15m"`
}

// DatabaseConfig holds the SQL connection settings.
type DatabaseConfig struct {
	DSN string `yaml:"dsn" env:"DATABASE_DSN" env-default:"file:contacts.db?cache=shared&mode=rwc"`
}

// BaseConfig is the root configuration, loadable from a YAML file with
// environment variables layered on top.
type BaseConfig struct {
	Server  ServerConfig       `yaml:"server"`
	Auth    AuthConfig         `yaml:"auth"`
	DB      DatabaseConfig     `yaml:"db"`
	SMTP    notify.SMTPConfig  `yaml:"smtp"`
	Avatars avatar.StoreConfig `yaml:"avatars"`
}

var _ Config = &BaseConfig{}

// LoadConfig reads configuration from the given YAML file, if any, then
// overlays environment variables. An empty path loads from the environment
// only.
func LoadConfig(path string) (*BaseConfig, error) {
	cfg := &BaseConfig{}

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, err
		}
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return nil, err
		}
	}

	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *BaseConfig) GetSigningKey() string {
	return c.Auth.SigningKey
}

func (c *BaseConfig) GetSigningMethod() string {
	return c.Auth.SigningMethod
}

func (c *BaseConfig) GetAccessTokenTTL() time.Duration {
	return c.Auth.AccessTokenTTL
}

func (c *BaseConfig) GetRefreshTokenTTL() time.Duration {
	return c.Auth.RefreshTokenTTL
}

func (c *BaseConfig) GetEmailTokenTTL() time.Duration {
	return c.Auth.EmailTokenTTL
}

func (c *BaseConfig) GetRecoveryTokenTTL() time.Duration {
	return c.Auth.RecoveryTokenTTL
}

func (c *BaseConfig) GetBaseURL() string {
	return c.Server.BaseURL
}
