package config

import "github.com/caarlos0/env/v6"

type Config struct {
	// Server configuration
	Server struct {
		// Port the API listens on
		Port int `env:"PORT" envDefault:"5250"`

		// Origins allowed by the CORS middleware
		AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
	}

	// Archive configuration for the background import writer
	Archive struct {
		// Path of the sqlite archive database
		Path string `env:"ARCHIVE_PATH" envDefault:"database/marketscope.db"`

		// Buffer size of the import queue
		QueueSize int `env:"ARCHIVE_QUEUE_SIZE" envDefault:"4"`

		// Maximum number of retries for failed archive writes
		MaxRetries int `env:"ARCHIVE_MAX_RETRIES" envDefault:"3"`

		// Delay between retries in seconds
		RetryDelay int `env:"ARCHIVE_RETRY_DELAY" envDefault:"5"`
	}

	// Places configuration for the external map-data service
	Places struct {
		// Equivalent query endpoints, rotated on failure or rate limiting
		Endpoints []string `env:"PLACES_ENDPOINTS" envSeparator:"," envDefault:"https://overpass-api.de/api/interpreter,https://overpass.kumi.systems/api/interpreter,https://maps.mail.ru/osm/tools/overpass/api/interpreter"`

		// Debounce applied after the last search-state change before fetching (milliseconds)
		DebounceMS int `env:"PLACES_DEBOUNCE_MS" envDefault:"400"`

		// Per-request timeout in seconds
		TimeoutSec int `env:"PLACES_TIMEOUT" envDefault:"15"`

		// Requests per second against the public endpoints
		RatePerSecond float64 `env:"PLACES_RATE" envDefault:"1"`

		// Category/denylist configuration file
		CategoryFile string `env:"PLACES_CATEGORY_FILE" envDefault:"config/poi_categories.yaml"`
	}
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
