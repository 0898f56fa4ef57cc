package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

type EnvVarProvider struct {
	LookupEnv func(string) (string, bool)
}

type FeedConfig struct {
	FeedURL        string        `json:"feedUrl"`
	Template       string        `json:"template"`
	SubjectPrefix  string        `json:"subjectPrefix"`
	ExtractContent bool          `json:"extractContent"`
	UpdateInterval time.Duration `json:"updateInterval"`
}

type MailConfig struct {
	Host       string   `json:"host"`
	Port       int      `json:"port"`
	From       string   `json:"from"`
	Username   string   `json:"-"`
	Password   string   `json:"-"`
	Recipients []string `json:"-"`
}

type FileStorageConfig struct {
	FilePath string `json:"filePath"`
}

type PSQLStorageConfig struct {
	ConnString     string        `json:"-"`
	DefaultTimeout time.Duration `json:"defaultTimeout"`
}

type StorageConfig struct {
	Backend string            `json:"backend"`
	File    FileStorageConfig `json:"file"`
	PSQL    PSQLStorageConfig `json:"psql"`
}

type Config struct {
	Feeds      map[string]FeedConfig `json:"feeds"`
	Mail       MailConfig            `json:"mail"`
	Storage    StorageConfig         `json:"storage"`
	MaxBacklog *int                  `json:"maxBacklog"`
}

var (
	DefaultFeedUpdateInterval = 24 * time.Hour
	DefaultPSQLTimeout        = 5 * time.Second
	DefaultMaxBacklog         = 1
	DefaultStateFilePath      = "last_sent_guids.json"
	DefaultSMTPPort           = 587
)

func Load(path string, env EnvVarProvider) (*Config, error) {
	f, err := os.OpenFile(path, os.O_RDONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("unable to read config file. %w", err)
	}
	defer f.Close()

	d := json.NewDecoder(f)
	var cfg Config
	err = d.Decode(&cfg)

	if err != nil {
		return nil, fmt.Errorf("unable decode config. %w", err)
	}

	if len(cfg.Feeds) == 0 {
		return nil, errors.New("config should declare at least one feed")
	}

	username, has := env.LookupEnv("RC_MAIL_USERNAME")
	if !has || username == "" {
		return nil, errors.New("environment variable RC_MAIL_USERNAME should be set to non empty value")
	}
	cfg.Mail.Username = username

	password, has := env.LookupEnv("RC_MAIL_PASSWORD")
	if !has || password == "" {
		return nil, errors.New("environment variable RC_MAIL_PASSWORD should be set to non empty value")
	}
	cfg.Mail.Password = password

	recipients, _ := env.LookupEnv("RC_MAIL_RECIPIENTS")
	cfg.Mail.Recipients = splitRecipients(recipients)
	if len(cfg.Mail.Recipients) == 0 {
		// the original setup mails the sending account itself
		cfg.Mail.Recipients = []string{username}
	}

	if cfg.Mail.From == "" {
		cfg.Mail.From = username
	}
	if cfg.Mail.Port == 0 {
		cfg.Mail.Port = DefaultSMTPPort
	}

	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = "file"
	}
	switch cfg.Storage.Backend {
	case "file":
		if cfg.Storage.File.FilePath == "" {
			cfg.Storage.File.FilePath = DefaultStateFilePath
		}
	case "psql":
		cfg.Storage.PSQL.ConnString, _ = env.LookupEnv("RC_PSQL_CONNECTION_STRING")
		if cfg.Storage.PSQL.ConnString == "" {
			return nil, errors.New("environment variable RC_PSQL_CONNECTION_STRING should be set when storage.backend is psql")
		}
		if cfg.Storage.PSQL.DefaultTimeout == 0 {
			cfg.Storage.PSQL.DefaultTimeout = DefaultPSQLTimeout
		}
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}

	if cfg.MaxBacklog == nil {
		n := DefaultMaxBacklog
		cfg.MaxBacklog = &n
	}

	for i := range cfg.Feeds {
		c := cfg.Feeds[i]
		if c.FeedURL == "" {
			return nil, fmt.Errorf("feed %q is missing feedUrl", i)
		}
		if c.UpdateInterval == 0 {
			c.UpdateInterval = DefaultFeedUpdateInterval
			cfg.Feeds[i] = c
		}
	}

	return &cfg, nil
}

func splitRecipients(s string) []string {
	parts := strings.Split(s, ";")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
