package config

import (
	"time"

	"github.com/caarlos0/env/v10"
)

// Config centraliza la configuración del cliente.
type Config struct {
	APIBaseURL     string        `env:"API_BASE_URL" envDefault:"https://whogowin.onrender.com/api/v1"`
	HTTPTimeout    time.Duration `env:"HTTP_TIMEOUT" envDefault:"10s"`
	PushProjectID  string        `env:"PUSH_PROJECT_ID"`
	PushToken      string        `env:"PUSH_TOKEN"`
	StorageDir     string        `env:"STORAGE_DIR"`
	PhysicalDevice bool          `env:"PHYSICAL_DEVICE" envDefault:"true"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
