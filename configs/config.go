package configs

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	App struct {
		Name     string `koanf:"name"`
		HTTPAddr string `koanf:"http_addr"`
		LogFile  string `koanf:"log_file"`
	} `koanf:"app"`

	Mongo struct {
		URI      string `koanf:"uri"`
		Database string `koanf:"database"`
	} `koanf:"mongo"`

	Redis struct {
		Addr     string `koanf:"addr"`
		Password string `koanf:"password"`
	} `koanf:"redis"`

	// TTL doubles as the "order already placed" guard window.
	Idempotency struct {
		TTL time.Duration `koanf:"ttl"`
	} `koanf:"idempotency"`

	Session struct {
		IdleTTL       time.Duration `koanf:"idle_ttl"`
		SweepInterval time.Duration `koanf:"sweep_interval"`
	} `koanf:"session"`

	Rabbit struct {
		URL string `koanf:"url"` // empty => send directly, no queue
	} `koanf:"rabbitmq"`

	Kafka struct {
		Brokers     []string `koanf:"brokers"` // empty => events disabled
		TopicEvents string   `koanf:"topic_events"`
	} `koanf:"kafka"`

	WhatsApp struct {
		Token         string `koanf:"token"`
		PhoneNumberID string `koanf:"phone_number_id"`
		VerifyToken   string `koanf:"verify_token"`
		AppSecret     string `koanf:"app_secret"` // empty => signature check off
		BaseURL       string `koanf:"base_url"`
	} `koanf:"whatsapp"`

	Access struct {
		Customers []string `koanf:"customers"`
		Vendors   []string `koanf:"vendors"`
	} `koanf:"access"`

	Catalog struct {
		MenuHeader string           `koanf:"menu_header"`
		Prices     map[string]int64 `koanf:"prices"` // item name -> rupees
	} `koanf:"catalog"`

	Security struct {
		JWTSecret string        `koanf:"jwt_secret"`
		Issuer    string        `koanf:"issuer"`
		Audience  string        `koanf:"audience"`
		TTL       time.Duration `koanf:"ttl"`
	} `koanf:"security"`
}

func Load(pathDir, envName string) (Config, error) {
	k := koanf.New(".")
	// 1) base
	if err := k.Load(file.Provider(fmt.Sprintf("%s/base.yaml", pathDir)), yaml.Parser()); err != nil {
		return Config{}, fmt.Errorf("load base: %w", err)
	}

	// 2) env override (dev/staging/prod). Optional for local runs.
	_ = k.Load(file.Provider(fmt.Sprintf("%s/%s.yaml", pathDir, envName)), yaml.Parser())

	// 3) environment variables override (prefix WABOT_, nested with __)
	// e.g. WABOT_MONGO__URI, WABOT_WHATSAPP__TOKEN
	if err := k.Load(env.Provider("WABOT_", ".", func(s string) string {
		s = strings.TrimPrefix(s, "WABOT_")
		s = strings.ReplaceAll(s, "__", ".")
		return strings.ToLower(s)
	}), nil); err != nil {
		return Config{}, fmt.Errorf("env overlay: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.App.HTTPAddr == "" {
		return fmt.Errorf("app.http_addr required")
	}
	if c.Mongo.URI == "" {
		return fmt.Errorf("mongo.uri required")
	}
	if c.WhatsApp.VerifyToken == "" {
		return fmt.Errorf("whatsapp.verify_token required")
	}
	if len(c.Catalog.Prices) == 0 {
		return fmt.Errorf("catalog.prices required")
	}
	if len(c.Access.Vendors) == 0 {
		return fmt.Errorf("access.vendors required")
	}
	return nil
}
