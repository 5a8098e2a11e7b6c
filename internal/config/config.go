package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	ModeHost  = "host"
	ModeGuest = "guest"
)

var (
	ErrUnknownMode   = errors.New("mode must be host or guest")
	ErrNoHostAddress = errors.New("guest needs host-addr or redis with host-id")
)

type Config struct {
	LogLevel  string `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	LogFormat string `yaml:"log-format" env:"LOG_FORMAT" env-default:"json"`

	Mode     string `yaml:"mode" env:"MODE" env-default:"host"`
	PlayerID string `yaml:"player-id" env:"PLAYER_ID"`
	HostID   string `yaml:"host-id" env:"HOST_ID"`
	HostAddr string `yaml:"host-addr" env:"HOST_ADDR"`
	HTTPPort string `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`

	Peer      Peer      `yaml:"peer"`
	Redis     Redis     `yaml:"redis"`
	Directory Directory `yaml:"directory"`
}

// Peer limits what one connected channel can cost the host.
type Peer struct {
	RateLimit  float64 `yaml:"rate-limit" env:"PEER_RATE_LIMIT" env-default:"20"`
	RateBurst  int     `yaml:"rate-burst" env:"PEER_RATE_BURST" env-default:"40"`
	OutboxSize int     `yaml:"outbox-size" env:"PEER_OUTBOX_SIZE" env-default:"8"`
}

type Redis struct {
	Enabled bool   `yaml:"enabled" env:"REDIS_ENABLED" env-default:"false"`
	Host    string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port    string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
}

// Directory controls how a host advertises its address under its id.
type Directory struct {
	AdvertiseAddr string        `yaml:"advertise-addr" env:"ADVERTISE_ADDR"`
	TTL           time.Duration `yaml:"ttl" env:"DIRECTORY_TTL" env-default:"30s"`
}

// MustLoad - load all configurations in config.yml file, overridden by env.
func MustLoad(path string) *Config {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		panic(fmt.Errorf("unable to load config file: %w", err))
	}

	if err := config.Validate(); err != nil {
		panic(fmt.Errorf("invalid config: %w", err))
	}

	return config
}

// LoadEnv reads the configuration from the environment only.
func LoadEnv() (*Config, error) {
	config := &Config{}

	if err := cleanenv.ReadEnv(config); err != nil {
		return nil, fmt.Errorf("unable to read env: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (that *Config) Validate() error {
	switch that.Mode {
	case ModeHost:
		return nil
	case ModeGuest:
		if that.HostAddr == "" && (!that.Redis.Enabled || that.HostID == "") {
			return ErrNoHostAddress
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownMode, that.Mode)
	}
}

func (that *Config) IsHost() bool {
	return that.Mode == ModeHost
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
