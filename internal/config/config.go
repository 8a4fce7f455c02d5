package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type Config struct {
	App        App        `mapstructure:",squash"`
	Server     Server     `mapstructure:",squash"`
	Storage    Storage    `mapstructure:",squash"`
	Meta       Meta       `mapstructure:",squash"`
	Telegram   Telegram   `mapstructure:",squash"`
	Auth       Auth       `mapstructure:",squash"`
	PortalSync PortalSync `mapstructure:",squash"`
	AlertSync  AlertSync  `mapstructure:",squash"`
	AutoReport AutoReport `mapstructure:",squash"`
}

type App struct {
	LogLevel string `mapstructure:"log_level"`
}

type Server struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
}

// Storage define o driver de armazenamento e suas credenciais.
// Drivers suportados: postgres, bolt e memory (apenas desenvolvimento).
type Storage struct {
	Driver   string `mapstructure:"storage_driver"`
	DSN      string `mapstructure:"-"`
	URL      string `mapstructure:"database_url"`
	User     string `mapstructure:"database_user"`
	Password string `mapstructure:"database_password"`
	BoltPath string `mapstructure:"bolt_path"`
}

type Meta struct {
	BaseURL     string `mapstructure:"meta_base_url"`
	URL         string `mapstructure:"meta_url"`
	Version     string `mapstructure:"meta_version"`
	AccessToken string `mapstructure:"meta_access_token"`
}

type Telegram struct {
	BotToken    string `mapstructure:"telegram_bot_token"`
	AdminChatID int64  `mapstructure:"telegram_admin_chat_id"`
}

type Auth struct {
	Secret string `mapstructure:"auth_secret"`
}

type PortalSync struct {
	CronSchedule string `mapstructure:"portal_sync_cron"`
	Enabled      bool   `mapstructure:"portal_sync_enabled"`
	AllowPartial bool   `mapstructure:"portal_sync_allow_partial"`
}

type AlertSync struct {
	CronSchedule        string `mapstructure:"alert_sync_cron"`
	Enabled             bool   `mapstructure:"alert_sync_enabled"`
	LeadStaleAfterMin   int    `mapstructure:"alert_lead_stale_after_minutes"`
	LeadWindowMinutes   int    `mapstructure:"alert_lead_window_minutes"`
	TokenExpiringInDays int    `mapstructure:"alert_token_expiring_in_days"`
	RequestDelaySeconds int    `mapstructure:"alert_sync_request_delay_seconds"`
}

type AutoReport struct {
	CronSchedule     string `mapstructure:"auto_report_cron"`
	Enabled          bool   `mapstructure:"auto_report_enabled"`
	ToleranceMinutes int    `mapstructure:"auto_report_tolerance_minutes"`
}

func SetDefaults() {
	viper.SetDefault("HOST", "localhost")
	viper.SetDefault("PORT", 8000)

	viper.SetDefault("STORAGE_DRIVER", "postgres")
	viper.SetDefault("DATABASE_URL", "localhost:5432/targetbot")
	viper.SetDefault("DATABASE_USER", "postgres")
	viper.SetDefault("DATABASE_PASSWORD", "root")
	viper.SetDefault("BOLT_PATH", "targetbot.db")

	viper.SetDefault("META_BASE_URL", "https://graph.facebook.com")
	viper.SetDefault("META_VERSION", "v22.0")
	viper.SetDefault("META_ACCESS_TOKEN", "") // ONLY LOCAL

	viper.SetDefault("TELEGRAM_BOT_TOKEN", "")
	viper.SetDefault("TELEGRAM_ADMIN_CHAT_ID", 0)

	viper.SetDefault("AUTH_SECRET", "your_auth_secret")

	// Defaults para sincronização de portais
	viper.SetDefault("PORTAL_SYNC_CRON", "*/30 * * * *") // A cada 30 minutos
	viper.SetDefault("PORTAL_SYNC_ENABLED", false)
	viper.SetDefault("PORTAL_SYNC_ALLOW_PARTIAL", true)

	// Defaults para verificação de alertas
	viper.SetDefault("ALERT_SYNC_CRON", "*/10 * * * *") // A cada 10 minutos
	viper.SetDefault("ALERT_SYNC_ENABLED", false)
	viper.SetDefault("ALERT_LEAD_STALE_AFTER_MINUTES", 60)
	viper.SetDefault("ALERT_LEAD_WINDOW_MINUTES", 60)
	viper.SetDefault("ALERT_TOKEN_EXPIRING_IN_DAYS", 7)
	viper.SetDefault("ALERT_SYNC_REQUEST_DELAY_SECONDS", 1)

	// Defaults para relatórios automáticos
	viper.SetDefault("AUTO_REPORT_CRON", "* * * * *") // Todo minuto, o slot decide o envio
	viper.SetDefault("AUTO_REPORT_ENABLED", false)
	viper.SetDefault("AUTO_REPORT_TOLERANCE_MINUTES", 5)

	viper.SetDefault("LOG_LEVEL", "debug")
}

func NewConfig() (*Config, error) {
	loadEnvFile() // ONLY LOCAL

	config := &Config{}

	SetDefaults()

	viper.SetConfigType("env")
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		logrus.Info("Usando variáveis de ambiente (viper não conseguiu ler .env):", err)
	}

	err := viper.Unmarshal(&config, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	))
	if err != nil {
		return nil, err
	}

	config.Meta.URL = fmt.Sprintf("%s/%s", config.Meta.BaseURL, config.Meta.Version)

	config.Storage.DSN = fmt.Sprintf(
		"postgres://%s:%s@%s",
		config.Storage.User,
		config.Storage.Password,
		config.Storage.URL,
	)

	return config, nil
}

// loadEnvFile carrega o arquivo .env usando godotenv
func loadEnvFile() {
	cwd, err := os.Getwd()
	if err != nil {
		logrus.Warn("Não foi possível obter o diretório atual:", err)
		return
	}

	// Tentar várias localizações possíveis para o arquivo .env
	locations := []string{
		filepath.Join(cwd, ".env"),
		filepath.Join(filepath.Dir(cwd), ".env"),
		filepath.Join(cwd, "../.env"),
		filepath.Join(cwd, "../../.env"),
	}

	for _, location := range locations {
		if err := godotenv.Load(location); err == nil {
			logrus.Info("Arquivo .env carregado com sucesso de:", location)
			return
		}
	}

	logrus.Warn("Não foi possível carregar o arquivo .env de nenhuma localização conhecida")
}
