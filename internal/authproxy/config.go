// Package authproxy runs the GoTrue binary next to a FaaS handler and
// forwards gateway events to it over loopback HTTP.
package authproxy

import (
	"fmt"
	"strconv"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Port is the loopback port GoTrue listens on.
const Port = 9999

// Config is read from the function's environment.
type Config struct {
	// GoTrue
	DatabaseURL    string `envconfig:"DATABASE_URL" required:"true"`
	JWTSecret      string `envconfig:"JWT_SECRET" required:"true"`
	DisableSignup  string `envconfig:"DISABLE_SIGNUP" default:"false"`
	APIExternalURL string `envconfig:"API_EXTERNAL_URL"`
	SiteURL        string `envconfig:"SITE_URL"`

	// Mail
	SMTPAdminEmail string `envconfig:"SMTP_ADMIN_EMAIL"`
	SMTPHost       string `envconfig:"SMTP_HOST"`
	SMTPPort       string `envconfig:"SMTP_PORT"`
	SMTPUser       string `envconfig:"SMTP_USER"`
	SMTPPass       string `envconfig:"SMTP_PASS"`
	SMTPSenderName string `envconfig:"SMTP_SENDER_NAME"`

	// Process
	TaskRoot    string        `envconfig:"LAMBDA_TASK_ROOT"`
	BinaryPath  string        `envconfig:"GOTRUE_BINARY" default:"./gotrue"`
	GracePeriod time.Duration `envconfig:"GOTRUE_GRACE_PERIOD" default:"1s"`
	LogLevel    string        `envconfig:"LOG_LEVEL" default:"info"`
}

// LoadConfig reads Config from the process environment.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("authproxy: load config: %w", err)
	}
	return &cfg, nil
}

// Environ returns the subprocess environment. Every setting is exported under
// its plain name and its GOTRUE_ name; API key auth is always disabled.
func (c *Config) Environ() []string {
	pairs := []struct{ key, value string }{
		{"DATABASE_URL", c.DatabaseURL},
		{"JWT_SECRET", c.JWTSecret},
		{"DISABLE_SIGNUP", c.DisableSignup},
		{"API_EXTERNAL_URL", c.APIExternalURL},
		{"SITE_URL", c.SiteURL},
		{"SMTP_ADMIN_EMAIL", c.SMTPAdminEmail},
		{"SMTP_HOST", c.SMTPHost},
		{"SMTP_PORT", c.SMTPPort},
		{"SMTP_USER", c.SMTPUser},
		{"SMTP_PASS", c.SMTPPass},
		{"SMTP_SENDER_NAME", c.SMTPSenderName},
		{"API_KEY_AUTH_ENABLED", "false"},
	}

	env := make([]string, 0, 2*len(pairs)+1)
	for _, p := range pairs {
		env = append(env, p.key+"="+p.value, "GOTRUE_"+p.key+"="+p.value)
	}
	return append(env, "PORT="+strconv.Itoa(Port))
}

// ProcessEnv returns base followed by Environ. os/exec keeps the last value of
// a repeated key, so the settings above override base while PATH, HOME, TZ and
// the rest of the runtime environment are inherited.
func (c *Config) ProcessEnv(base []string) []string {
	env := append([]string(nil), base...)
	return append(env, c.Environ()...)
}
