package internal

import (
	"fmt"
	"time"

	"github.com/Netflix/go-env"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Host                 string        `env:"HOST,default=localhost" validate:"required"`
	Port                 int           `env:"PORT,default=8888" validate:"gte=0,lte=65535"`
	LimitComplaint       int           `env:"LIMIT_COMPLAINT,default=3" validate:"gte=1"`
	LimitMessage         int           `env:"LIMIT_MESSAGE,default=20" validate:"gte=0"`
	BanWindow            time.Duration `env:"BAN_WINDOW,default=240m" validate:"gt=0"`
	RateWindow           time.Duration `env:"RATE_WINDOW,default=60m" validate:"gt=0"`
	DelayUnit            time.Duration `env:"DELAY_UNIT,default=1m" validate:"gt=0"`
	MaxLineLength        int           `env:"MAX_LINE_LENGTH,default=4096" validate:"gte=16"`
	OutboxSize           int           `env:"OUTBOX_SIZE,default=64" validate:"gte=1"`
	DeliveryTimeout      time.Duration `env:"DELIVERY_TIMEOUT,default=2s" validate:"gt=0"`
	WriteTimeout         time.Duration `env:"WRITE_TIMEOUT,default=10s" validate:"gte=0"`
	RestartInterval      time.Duration `env:"RESTART_INTERVAL,default=200ms" validate:"gt=0"`
	MetricInterval       time.Duration `env:"METRIC_INTERVAL,default=1m" validate:"gte=0"`
	MetricsAddr          string        `env:"METRICS_ADDR" validate:"omitempty,hostname_port"`
	CensoredDir          string        `env:"CENSORED_DIR" validate:"omitempty,dir"`
	CharacterReplacement string        `env:"CHARACTER_REPLACEMENT,default=*" validate:"required"`
	LogLevel             string        `env:"LOG_LEVEL,default=INFO" validate:"oneof=DEBUG INFO WARN ERROR debug info warn error"`
}

// LoadConfig reads an optional .env file, then the environment, then validates the result.
// Variables already set in the environment win over the .env file.
func LoadConfig(envFiles ...string) (Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && len(envFiles) > 0 {
		return Config{}, fmt.Errorf("loading %v: %w", envFiles, err)
	}

	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return Config{}, fmt.Errorf("config error: %w", err)
	}
	if err := config.Validate(); err != nil {
		return Config{}, err
	}
	return config, nil
}

func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, err := CharacterRune(c.CharacterReplacement); err != nil {
		return err
	}
	return nil
}

func (c Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func CharacterRune(str string) (rune, error) {
	r := []rune(str)
	if len(r) != 1 {
		return 0, fmt.Errorf(
			"CHARACTER_REPLACEMENT must be a single character, got %q",
			str,
		)
	}
	return r[0], nil
}
