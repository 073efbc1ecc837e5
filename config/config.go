package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v2"
)

type SystemConfig struct {
	Appid    string `yaml:"appid" json:"appid"`
	Location string `yaml:"location" json:"location"`
	Workdir  string `yaml:"workdir" json:"workdir"`
	Debug    bool   `yaml:"debug" json:"debug"`
}

type WebConfig struct {
	Host   string `yaml:"host" json:"host"`
	Port   int    `yaml:"port" json:"port"`
	Secret string `yaml:"secret" json:"secret"`
}

type DBConfig struct {
	Type     string `yaml:"type" json:"type"`
	Host     string `yaml:"host" json:"host"`
	Port     int    `yaml:"port" json:"port"`
	Name     string `yaml:"name" json:"name"`
	User     string `yaml:"user" json:"user"`
	Passwd   string `yaml:"passwd" json:"passwd"`
	MaxConn  int    `yaml:"max_conn" json:"max_conn"`
	IdleConn int    `yaml:"idle_conn" json:"idle_conn"`
	Debug    bool   `yaml:"debug" json:"debug"`
}

type LogConfig struct {
	Mode       string `yaml:"mode" json:"mode"`
	FileEnable bool   `yaml:"file_enable" json:"file_enable"`
	Filename   string `yaml:"filename" json:"filename"`
}

// GithubConfig carries credentials for the repository scaffolding pipeline.
type GithubConfig struct {
	ApiUrl string `yaml:"api_url" json:"api_url"`
	Token  string `yaml:"token" json:"token"`
	Owner  string `yaml:"owner" json:"owner"`
	// PagesDomain is the apex domain protected repos redirect to, e.g. "bitminded.ch".
	PagesDomain string `yaml:"pages_domain" json:"pages_domain"`
}

type StripeConfig struct {
	ApiUrl string `yaml:"api_url" json:"api_url"`
	ApiKey string `yaml:"api_key" json:"api_key"`
}

// MailConfig selects the notification transport: "resend" (REST) or "smtp".
type MailConfig struct {
	Transport    string `yaml:"transport" json:"transport"`
	From         string `yaml:"from" json:"from"`
	ResendApiUrl string `yaml:"resend_api_url" json:"resend_api_url"`
	ResendApiKey string `yaml:"resend_api_key" json:"resend_api_key"`
	SmtpHost     string `yaml:"smtp_host" json:"smtp_host"`
	SmtpPort     int    `yaml:"smtp_port" json:"smtp_port"`
	SmtpUser     string `yaml:"smtp_user" json:"smtp_user"`
	SmtpPasswd   string `yaml:"smtp_passwd" json:"smtp_passwd"`
}

type AppConfig struct {
	System         SystemConfig `yaml:"system" json:"system"`
	Web            WebConfig    `yaml:"web" json:"web"`
	Database       DBConfig     `yaml:"database" json:"database"`
	Logger         LogConfig    `yaml:"logger" json:"logger"`
	Github         GithubConfig `yaml:"github" json:"github"`
	Stripe         StripeConfig `yaml:"stripe" json:"stripe"`
	Mail           MailConfig   `yaml:"mail" json:"mail"`
	AllowedOrigins []string     `yaml:"allowed_origins" json:"allowed_origins"`
}

var DefaultAppConfig = &AppConfig{
	System: SystemConfig{
		Appid:    "backoffice",
		Location: "Europe/Zurich",
		Workdir:  "/var/backoffice",
		Debug:    false,
	},
	Web: WebConfig{
		Host:   "0.0.0.0",
		Port:   1980,
		Secret: "9b6de5cc-backoffice-1e24-secret",
	},
	Database: DBConfig{
		Type:     "postgres",
		Host:     "127.0.0.1",
		Port:     5432,
		Name:     "backoffice",
		User:     "postgres",
		Passwd:   "",
		MaxConn:  100,
		IdleConn: 10,
	},
	Logger: LogConfig{
		Mode:       "development",
		FileEnable: true,
		Filename:   "/var/backoffice/backoffice.log",
	},
	Github: GithubConfig{
		ApiUrl:      "https://api.github.com",
		PagesDomain: "bitminded.ch",
	},
	Stripe: StripeConfig{
		ApiUrl: "https://api.stripe.com",
	},
	Mail: MailConfig{
		Transport:    "resend",
		From:         "BitMinded <noreply@bitminded.ch>",
		ResendApiUrl: "https://api.resend.com",
		SmtpPort:     587,
	},
	AllowedOrigins: []string{"https://bitminded.ch"},
}

func setEnvValue(name string, val *string) {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		*val = v
	}
}

func setEnvBoolValue(name string, val *bool) {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		*val = v == "true" || v == "1" || v == "on"
	}
}

func setEnvIntValue(name string, val *int) {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			*val = i
		}
	}
}

// LoadConfig reads the YAML config file when present and applies
// environment overrides. A missing file yields the defaults.
func LoadConfig(cfile string) *AppConfig {
	cfg := DefaultAppConfig
	if cfile != "" {
		if data, err := os.ReadFile(filepath.Clean(cfile)); err == nil {
			fcfg := new(AppConfig)
			if err := yaml.Unmarshal(data, fcfg); err == nil {
				cfg = fcfg
			}
		}
	}

	setEnvValue("BACKOFFICE_SYSTEM_WORKDIR", &cfg.System.Workdir)
	setEnvBoolValue("BACKOFFICE_SYSTEM_DEBUG", &cfg.System.Debug)
	setEnvValue("BACKOFFICE_WEB_HOST", &cfg.Web.Host)
	setEnvIntValue("BACKOFFICE_WEB_PORT", &cfg.Web.Port)
	setEnvValue("BACKOFFICE_WEB_SECRET", &cfg.Web.Secret)
	setEnvValue("BACKOFFICE_DB_TYPE", &cfg.Database.Type)
	setEnvValue("BACKOFFICE_DB_HOST", &cfg.Database.Host)
	setEnvIntValue("BACKOFFICE_DB_PORT", &cfg.Database.Port)
	setEnvValue("BACKOFFICE_DB_NAME", &cfg.Database.Name)
	setEnvValue("BACKOFFICE_DB_USER", &cfg.Database.User)
	setEnvValue("BACKOFFICE_DB_PWD", &cfg.Database.Passwd)

	// Vendor credentials keep their conventional names.
	setEnvValue("GITHUB_TOKEN", &cfg.Github.Token)
	setEnvValue("GITHUB_OWNER", &cfg.Github.Owner)
	setEnvValue("STRIPE_API_KEY", &cfg.Stripe.ApiKey)
	setEnvValue("RESEND_API_KEY", &cfg.Mail.ResendApiKey)

	if v := strings.TrimSpace(os.Getenv("ALLOWED_ORIGINS")); v != "" {
		origins := make([]string, 0, 4)
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		if len(origins) > 0 {
			cfg.AllowedOrigins = origins
		}
	}
	return cfg
}
