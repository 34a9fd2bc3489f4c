package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"

	"github.com/davidnhn/book-social-network/shared/mailer"
)

const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"
)

// BookNetworkConfig holds the service configuration, read from the environment.
type BookNetworkConfig struct {
	Env      string `env:"APP_ENV"   envDefault:"local"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	HTTP    HTTPConfig
	GRPC    GRPCConfig
	Mongo   MongoConfig
	Token   TokenConfig
	Mailing MailingConfig
	SMTP    mailer.SMTPConfig
	Consul  ConsulConfig
	Covers  CoverConfig
}

type HTTPConfig struct {
	Address         string        `env:"HTTP_ADDR"             envDefault:":8088"`
	ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT"     envDefault:"10s"`
	WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT"    envDefault:"10s"`
	IdleTimeout     time.Duration `env:"HTTP_IDLE_TIMEOUT"     envDefault:"60s"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"15s"`
}

type GRPCConfig struct {
	Address string `env:"GRPC_ADDR" envDefault:":9088"`
}

type MongoConfig struct {
	URI            string        `env:"MONGO_URI"             envDefault:"mongodb://localhost:27017/?replicaSet=rs0"`
	Database       string        `env:"MONGO_DATABASE"        envDefault:"book_social_network"`
	ConnectTimeout time.Duration `env:"MONGO_CONNECT_TIMEOUT" envDefault:"10s"`
}

type TokenConfig struct {
	// SecretKey is base64 encoded and decoded once at startup.
	SecretKey              string        `env:"JWT_SECRET_KEY,required"`
	ExpiresIn              time.Duration `env:"JWT_EXPIRATION"          envDefault:"24h"`
	ActivationCodeLength   int           `env:"ACTIVATION_CODE_LENGTH"  envDefault:"6"`
	ActivationCodeLifetime time.Duration `env:"ACTIVATION_CODE_TTL"     envDefault:"15m"`
}

type MailingConfig struct {
	ActivationURL string `env:"MAILING_ACTIVATION_URL" envDefault:"http://localhost:4200/activate-account"`
	Workers       int    `env:"MAILING_WORKERS"        envDefault:"2"`
	QueueSize     int    `env:"MAILING_QUEUE_SIZE"     envDefault:"100"`
}

type ConsulConfig struct {
	Address     string `env:"CONSUL_ADDR"`
	ServiceName string `env:"CONSUL_SERVICE_NAME" envDefault:"book-network"`

	// AdvertiseAddress is the host:port other services reach this instance on.
	AdvertiseAddress string `env:"CONSUL_ADVERTISE_ADDR" envDefault:"127.0.0.1:8088"`
}

type CoverConfig struct {
	MaxUploadBytes int64  `env:"COVER_MAX_UPLOAD_BYTES" envDefault:"5242880"`
	Bucket         string `env:"COVER_BUCKET"           envDefault:"book_covers"`
}

// NewBookNetworkConfig parses the configuration from environment variables.
func NewBookNetworkConfig(logger *zerolog.Logger) *BookNetworkConfig {
	cfg, err := env.ParseAs[BookNetworkConfig]()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to parse environment variables")
	}

	if err := cfg.validate(); err != nil {
		logger.Fatal().Err(err).Msg("failed to validate configuration")
	}

	return &cfg
}

func (c *BookNetworkConfig) validate() error {
	switch c.Env {
	case EnvLocal, EnvDev, EnvProd:
	default:
		return fmt.Errorf("unknown APP_ENV %q", c.Env)
	}
	if c.Token.ExpiresIn <= 0 {
		return fmt.Errorf("JWT_EXPIRATION must be positive")
	}
	if c.Token.ActivationCodeLength <= 0 {
		return fmt.Errorf("ACTIVATION_CODE_LENGTH must be positive")
	}
	if c.Token.ActivationCodeLifetime <= 0 {
		return fmt.Errorf("ACTIVATION_CODE_TTL must be positive")
	}
	if c.Mongo.URI == "" {
		return fmt.Errorf("missing MONGO_URI environment variable")
	}
	if c.Covers.MaxUploadBytes <= 0 {
		return fmt.Errorf("COVER_MAX_UPLOAD_BYTES must be positive")
	}
	if err := c.SMTP.Validate(); err != nil {
		return err
	}

	return nil
}
