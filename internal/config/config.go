// Package config предоставляет структуры и функцию для парсинга и загрузки конфига
package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/SRSacc/srsapp-api/internal/subscription"
)

// Config общая структура для хранения настроек
type Config struct {
	Env                     string `yaml:"env"`
	StorageConnectionString string `yaml:"storage_connection_string"`
	RedisConnection         `yaml:"redis_connection"`
	RabbitMQ                `yaml:"rabbitmq"`
	HTTPServer              `yaml:"http_server"`
	JWTToken                `yaml:"jwttoken"`
	Engine                  `yaml:"engine"`
	Sweeper                 `yaml:"sweeper"`
}

// HTTPServer структура для настройки сервера
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp"`
	IdleTimeout time.Duration `yaml:"idle_timeout"`
}

// RedisConnection структура для настройки подключения к redis
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis"`
	Password     string        `yaml:"password"`
	User         string        `yaml:"user"`
	DB           int           `yaml:"db"`
	MaxRetries   int           `yaml:"max_retries"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	TimeoutRedis time.Duration `yaml:"timeoutredis"`
}

// RabbitMQ структура для настройки подключения к брокеру событий
type RabbitMQ struct {
	RabbitMQURL        string        `yaml:"url"`
	RabbitMQMaxRetries int           `yaml:"max_retries" env-default:"5"`
	RabbitMQRetryDelay time.Duration `yaml:"retry_delay" env-default:"3s"`
}

// JWTToken структура для работы с jwt-токеном
type JWTToken struct {
	JWTSecretKey string        `yaml:"jwt_secret_key"`
	TokenTTL     time.Duration `yaml:"token_ttl"`
}

// Engine структура с параметрами движка жизненного цикла:
// времена закрытия зала и окна уведомлений об истечении.
type Engine struct {
	DayCutoff          string        `yaml:"day_cutoff" env-default:"18:00"`
	NightCutoff        string        `yaml:"night_cutoff" env-default:"06:30"`
	NotificationWindow time.Duration `yaml:"notification_window" env-default:"60m"`
	UrgentWindow       time.Duration `yaml:"urgent_window" env-default:"15m"`
}

// Sweeper структура с параметрами фонового пересчёта статусов
type Sweeper struct {
	SweepInterval time.Duration `yaml:"sweep_interval" env-default:"1h"`
}

// Options преобразует настройки движка в subscription.Options.
func (e Engine) Options() (subscription.Options, error) {
	day, err := subscription.ParseClockTime(e.DayCutoff)
	if err != nil {
		return subscription.Options{}, fmt.Errorf("day_cutoff: %w", err)
	}
	night, err := subscription.ParseClockTime(e.NightCutoff)
	if err != nil {
		return subscription.Options{}, fmt.Errorf("night_cutoff: %w", err)
	}
	return subscription.Options{
		DayCutoff:          day,
		NightCutoff:        night,
		NotificationWindow: e.NotificationWindow,
		UrgentWindow:       e.UrgentWindow,
	}, nil
}

// MustLoad функция для загрузки конфига, путь берётся из CONFIG_PATH
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("file: %s - does not exist", configPath)
	}
	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return &cfg
}

func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"StorageConnectionString: %s\n"+
			"RedisConnection:\n"+
			"  Addr: %s\n"+
			"  DB: %d\n"+
			"RabbitMQ:\n"+
			"  URL: %s\n"+
			"HTTPServer:\n"+
			"  Address: %s\n"+
			"  Timeout: %s\n"+
			"  IdleTimeout: %s\n"+
			"Engine:\n"+
			"  DayCutoff: %s\n"+
			"  NightCutoff: %s\n"+
			"  NotificationWindow: %s\n"+
			"  UrgentWindow: %s\n"+
			"Sweeper:\n"+
			"  Interval: %s\n",
		c.Env,
		c.StorageConnectionString,
		c.AddressRedis,
		c.DB,
		c.RabbitMQURL,
		c.AddressHTTP,
		c.TimeoutHTTP,
		c.IdleTimeout,
		c.DayCutoff,
		c.NightCutoff,
		c.NotificationWindow,
		c.UrgentWindow,
		c.SweepInterval,
	)
}
