package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel   string `yaml:"log-level" env-default:"info"`
	HTTPPort   string `yaml:"http-port" env-default:"9090"`
	SocketPort string `yaml:"socket-port" env-default:"8080"`
	Redis      Redis  `yaml:"redis"`
	Game       Game   `yaml:"game"`
}

type Redis struct {
	Host string `yaml:"host" env-default:"localhost"`
	Port string `yaml:"port" env-default:"6379"`
}

type Game struct {
	// RepetitionThreshold is how many times the same position with the
	// same side to move may occur before the match is ended. Zero
	// disables the check.
	RepetitionThreshold int `yaml:"repetition-threshold" env-default:"3"`
	// RepetitionWinner is the side awarded a repetition finish; empty
	// means the match ends as a draw.
	RepetitionWinner string        `yaml:"repetition-winner" env-default:""`
	DisconnectGrace  time.Duration `yaml:"disconnect-grace" env-default:"15s"`
	IdleTimeout      time.Duration `yaml:"idle-timeout" env-default:"30m"`
	SweepInterval    time.Duration `yaml:"sweep-interval" env-default:"1m"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		panic(fmt.Errorf("unable to load config file: %w", err))
	}

	return config
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
