package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

type Config struct {
	App struct {
		Env      string
		Timezone string
	} `mapstructure:"app"`

	Telegram struct {
		Enabled     bool
		Token       string `validate:"required_if=Enabled true"`
		AdminChatID int64  `mapstructure:"admin_chat_id" validate:"required_if=Enabled true"`
		Timeout     int    `validate:"gte=0"`
	} `mapstructure:"telegram"`

	HTTP struct {
		Addr string `validate:"required"`
	} `mapstructure:"http"`

	Postgres struct {
		DSN string `validate:"required"`
	} `mapstructure:"postgres"`

	Metrics struct {
		Enabled bool
	} `mapstructure:"metrics"`

	Billing struct {
		VATRate          float64 `mapstructure:"vat_rate" validate:"gte=0"`
		ExpressSurcharge float64 `mapstructure:"express_surcharge" validate:"gte=0"`
	} `mapstructure:"billing"`

	Payments struct {
		BaseURL string `mapstructure:"base_url"`
	} `mapstructure:"payments"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", "prod")
	v.SetDefault("app.timezone", "UTC")
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("telegram.enabled", false)
	v.SetDefault("telegram.timeout", 30)
	v.SetDefault("billing.vat_rate", 0.15)
	v.SetDefault("billing.express_surcharge", 0.5)
	v.SetDefault("payments.base_url", "http://localhost:8080")
}

// Load читает YAML-файл и накладывает переменные окружения APP_* (в т.ч. из .env).
func Load(path string) (Config, error) {
	// .env необязателен
	if err := gotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, err
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var c Config
	if err := v.ReadInConfig(); err != nil {
		return c, err
	}
	if err := v.Unmarshal(&c); err != nil {
		return c, err
	}
	if err := validator.New().Struct(c); err != nil {
		return c, fmt.Errorf("invalid config: %w", err)
	}
	return c, nil
}
