package config

import (
	"fmt"
	"log"
	"time"

	"github.com/caarlos0/env/v6"
)

// EmptyBioPolicy controls what happens to a join request whose profile
// carries no bio at all.
type EmptyBioPolicy string

const (
	// PolicyInstruct declines the request and tells the user to
	// message the bot directly.
	PolicyInstruct EmptyBioPolicy = "instruct"
	// PolicySilent leaves the request pending without any message.
	PolicySilent EmptyBioPolicy = "silent"
)

type Config struct {
	TelegramBotToken string `env:"TELEGRAM_BOT_TOKEN,required"`
	AdminUserID      int64  `env:"ADMIN_USER"`
	AdminUsername    string `env:"ADMIN_USERNAME" envDefault:"admin"`

	// Roster database: either a single DSN or discrete parameters
	DatabaseURL string `env:"DATABASE_URL"`
	DBHost      string `env:"DB_HOST"`
	DBPort      int    `env:"DB_PORT" envDefault:"5432"`
	DBName      string `env:"DB_NAME"`
	DBUser      string `env:"DB_USER"`
	DBPassword  string `env:"DB_PASSWORD"`
	DBTable     string `env:"DB_TABLE" envDefault:"cms_users"`

	// Behavior
	EmptyBioPolicy EmptyBioPolicy `env:"EMPTY_BIO_POLICY" envDefault:"instruct"`

	// Storage
	WhitelistFilePath string `env:"WHITELIST_FILE_PATH" envDefault:"data/verified.json"`
	LogFilePath       string `env:"LOG_FILE_PATH" envDefault:"logs/outcomes.jsonl"`

	// Housekeeping
	SessionTTL   time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	WhitelistTTL time.Duration `env:"WHITELIST_TTL" envDefault:"168h"`
	ReportCron   string        `env:"REPORT_CRON" envDefault:"0 21 * * *"`

	// Formatting
	MessageParseMode string `env:"MESSAGE_PARSE_MODE" envDefault:"HTML"`
}

func New() *Config {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	if cfg.EmptyBioPolicy != PolicyInstruct && cfg.EmptyBioPolicy != PolicySilent {
		log.Fatalf("invalid EMPTY_BIO_POLICY: %q", cfg.EmptyBioPolicy)
	}
	return cfg
}

// RosterDSN builds the Postgres connection string, preferring
// DATABASE_URL over the discrete parameters.
func (c *Config) RosterDSN() (string, error) {
	if c.DatabaseURL != "" {
		return c.DatabaseURL, nil
	}
	if c.DBHost == "" || c.DBName == "" || c.DBUser == "" {
		return "", fmt.Errorf("either DATABASE_URL or DB_HOST/DB_NAME/DB_USER must be set")
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=prefer",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName), nil
}
