package main

import (
	"time"

	"github.com/caarlos0/env/v11"
)

const envPrefix = "THINGWEB_"

type config struct {
	LogPath string `env:"LOG_PATH"`
	Verbose bool   `env:"VERBOSE"`

	Host       string `env:"HOST"`
	PublicHost string `env:"PUBLIC_HOST"`
	HTTPPort   int    `env:"HTTP_PORT" envDefault:"8080"`
	CoAPPort   int    `env:"COAP_PORT" envDefault:"5683"`

	JWTSecret   string `env:"JWT_SECRET"`
	JWTIssuer   string `env:"JWT_ISSUER"`
	JWTAudience string `env:"JWT_AUDIENCE"`

	Token   string        `env:"TOKEN"`
	Timeout time.Duration `env:"TIMEOUT" envDefault:"10s"`

	CachePath string `env:"CACHE_PATH"`

	MdnsEnabled bool          `env:"MDNS_ENABLED" envDefault:"true"`
	MdnsDomain  string        `env:"MDNS_DOMAIN" envDefault:"local"`
	MdnsTimeout time.Duration `env:"MDNS_TIMEOUT" envDefault:"5s"`

	FetchInterval time.Duration `env:"FETCH_INTERVAL" envDefault:"5s"`

	InfluxURL    string `env:"INFLUXDB_URL"`
	InfluxOrg    string `env:"INFLUXDB_ORG"`
	InfluxBucket string `env:"INFLUXDB_BUCKET"`
	InfluxToken  string `env:"INFLUXDB_API_TOKEN"`
}

func loadConfig() (*config, error) {
	cfg := &config{}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: envPrefix}); err != nil {
		return nil, err
	}

	return cfg, nil
}
