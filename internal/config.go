package internal

import (
	"fmt"
	"time"

	env "github.com/Netflix/go-env"
	"github.com/go-playground/validator/v10"
)

// Config holds the server's environment-driven settings. All durations are
// fixed at boot; none are configurable per call.
type Config struct {
	Host              string        `env:"HOST,default=0.0.0.0"`
	ChatPort          int           `env:"CHAT_PORT,default=1234" validate:"gte=1,lte=65535"`
	HTTPPort          int           `env:"HTTP_PORT,default=8080" validate:"gte=1,lte=65535"`
	LogLevel          string        `env:"LOG_LEVEL,default=info"`
	ServerSecret      string        `env:"SERVER_SECRET,required=true" validate:"min=4"`
	SessionBuffer     int           `env:"SESSION_BUFFER,default=64" validate:"gte=1"`
	QuestionTimeout   time.Duration `env:"QUESTION_TIMEOUT,default=30s" validate:"gt=0"`
	NextQuestionDelay time.Duration `env:"NEXT_QUESTION_DELAY,default=2s" validate:"gt=0"`
	WinningScore      int           `env:"WINNING_SCORE,default=5" validate:"gte=1"`
	ModerationGrace   time.Duration `env:"MODERATION_GRACE,default=3s" validate:"gt=0"`
	RestartInterval   time.Duration `env:"RESTART_INTERVAL,default=200ms" validate:"gt=0"`
	CensorReplacement string        `env:"CENSOR_REPLACEMENT,default=*"`
}

// LoadConfig unmarshals and validates the environment.
func LoadConfig() (Config, error) {
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return Config{}, fmt.Errorf("config error: %w", err)
	}
	if err := validator.New().Struct(config); err != nil {
		return Config{}, fmt.Errorf("config validation: %w", err)
	}
	return config, nil
}

// CharacterRune ensures a replacement setting is exactly one character.
func CharacterRune(str string) (rune, error) {
	r := []rune(str)
	if len(r) != 1 {
		return 0, fmt.Errorf("CENSOR_REPLACEMENT must be a single character, got %q", str)
	}
	return r[0], nil
}
