package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port   string
	DBPath string

	ProduceInterval time.Duration // telemetry tick
	PollInterval    time.Duration // dispatch poll
	MinExecTime     time.Duration // simulated device-response lower bound
	MaxExecTime     time.Duration // simulated device-response upper bound

	// optional InfluxDB telemetry mirror
	InfluxURL    string
	InfluxToken  string
	InfluxOrg    string
	InfluxBucket string
	Measurement  string

	// optional MQTT event bridge
	MQTTEnabled  bool
	MQTTHost     string
	MQTTPort     int
	MQTTUser     string
	MQTTPassword string
	MQTTClientID string
}

// Load reads configuration from the environment, with an optional .env file
// for local runs.
func Load() Config {
	if err := godotenv.Load(); err == nil {
		log.Println("config: loaded .env")
	}

	return Config{
		Port:   env("PORT", "5000"),
		DBPath: env("DB_PATH", "fieldops.db"),

		ProduceInterval: envDuration("PRODUCE_INTERVAL", 10*time.Second),
		PollInterval:    envDuration("DISPATCH_INTERVAL", 5*time.Second),
		MinExecTime:     envDuration("EXEC_MIN", 5*time.Second),
		MaxExecTime:     envDuration("EXEC_MAX", 15*time.Second),

		InfluxURL:    env("INFLUX_URL", ""),
		InfluxToken:  env("INFLUX_TOKEN", ""),
		InfluxOrg:    env("INFLUX_ORG", "agrimesh"),
		InfluxBucket: env("INFLUX_BUCKET", "telemetry"),
		Measurement:  env("MEASUREMENT", "probe_reading"),

		MQTTEnabled:  env("MQTT_HOST", "") != "",
		MQTTHost:     env("MQTT_HOST", ""),
		MQTTPort:     envInt("MQTT_PORT", 1883),
		MQTTUser:     env("MQTT_USER", ""),
		MQTTPassword: env("MQTT_PASSWORD", ""),
		MQTTClientID: env("MQTT_CLIENT_ID", "fieldops-bridge"),
	}
}

func env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return def
}
