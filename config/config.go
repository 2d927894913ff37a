package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Port      string   `yaml:"port" env:"PORT" env-default:"8084"`
	JWTSecret string   `yaml:"jwt_secret" env:"JWT_SECRET" env-required:"true"`
	Database  Database `yaml:"database"`
	Redis     Redis    `yaml:"redis"`
	Kafka     Kafka    `yaml:"kafka"`
	Booking   Booking  `yaml:"booking"`
	Outbox    Outbox   `yaml:"outbox"`
	Sweeper   Sweeper  `yaml:"sweeper"`
}

type Database struct {
	User         string `yaml:"user" env:"DB_USER" env-required:"true"`
	Password     string `yaml:"password" env:"DB_PASSWORD" env-required:"true"`
	DatabaseName string `yaml:"database_name" env:"DB_NAME" env-required:"true"`
	Host         string `yaml:"host" env:"DB_HOST" env-default:"localhost"`
	Port         string `yaml:"port" env:"DB_PORT" env-default:"5432"`
	SSLMode      string `yaml:"ssl_mode" env:"DB_SSL_MODE" env-default:"disable"`

	// Connection Pool Settings
	MaxOpenConns    int `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS" env-default:"25"`
	MaxIdleConns    int `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS" env-default:"10"`
	ConnMaxLifetime int `yaml:"conn_max_lifetime_minutes" env:"DB_CONN_MAX_LIFETIME" env-default:"30"`
}

func (d *Database) GetDatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DatabaseName, d.SSLMode)
}

type Redis struct {
	Host     string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port     string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	Password string `yaml:"password" env:"REDIS_PASSWORD" env-default:""`
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

func (r *Redis) GetRedisURL() string {
	return fmt.Sprintf("%s:%s", r.Host, r.Port)
}

type Kafka struct {
	Brokers []string `yaml:"brokers" env:"KAFKA_BROKERS" env-default:"localhost:9092" env-separator:","`

	// One topic per booking lifecycle event. The mapping is an external
	// contract - keep stable once chosen.
	BookingInitiatedTopic string `yaml:"booking_initiated_topic" env:"KAFKA_BOOKING_INITIATED_TOPIC" env-default:"booking-initiated"`
	BookingConfirmedTopic string `yaml:"booking_confirmed_topic" env:"KAFKA_BOOKING_CONFIRMED_TOPIC" env-default:"booking-confirmed"`
	BookingExpiredTopic   string `yaml:"booking_expired_topic" env:"KAFKA_BOOKING_EXPIRED_TOPIC" env-default:"booking-expired"`
}

type Booking struct {
	// ReservationWindowMinutes is the TTL of a PENDING_PAYMENT booking and of
	// every seat lock taken for it. A crash after locking self-heals when the
	// lock expires.
	ReservationWindowMinutes int `yaml:"reservation_window_minutes" env:"BOOKING_RESERVATION_WINDOW_MINUTES" env-default:"15"`
	MinSeatsPerBooking       int `yaml:"min_seats_per_booking" env:"BOOKING_MIN_SEATS" env-default:"1"`
	MaxSeatsPerBooking       int `yaml:"max_seats_per_booking" env:"BOOKING_MAX_SEATS" env-default:"10"`
}

func (b *Booking) ReservationWindow() time.Duration {
	return time.Duration(b.ReservationWindowMinutes) * time.Minute
}

type Outbox struct {
	IntervalSeconds int `yaml:"interval_seconds" env:"OUTBOX_INTERVAL_SECONDS" env-default:"5"`
	BatchSize       int `yaml:"batch_size" env:"OUTBOX_BATCH_SIZE" env-default:"50"`
}

func (o *Outbox) Interval() time.Duration {
	return time.Duration(o.IntervalSeconds) * time.Second
}

type Sweeper struct {
	IntervalSeconds int `yaml:"interval_seconds" env:"SWEEPER_INTERVAL_SECONDS" env-default:"60"`
}

func (s *Sweeper) Interval() time.Duration {
	return time.Duration(s.IntervalSeconds) * time.Second
}

func Initialise(configPath string, useEnv bool) (*Config, error) {
	cfg := &Config{}

	if useEnv {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment variables: %w", err)
		}
		return cfg, nil
	}

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			if err := cleanenv.ReadConfig(configPath, cfg); err != nil {
				return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
			}
			return cfg, nil
		}
	}

	// Fallback to environment variables
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment variables: %w", err)
	}

	return cfg, nil
}
