package util

import (
	"github.com/berfenger/ecovolter2mqtt/internal/config"

	"go.uber.org/zap"
)

func LoadTestConfig() config.Config {
	return config.Config{
		LogLevel: zap.DebugLevel,
		Charger: config.ChargerConfig{
			SerialNumber:   "ev123456",
			SecretKey:      "secret",
			BaseURI:        "http://-.-.-.-",
			UpdateInterval: config.DEFAULT_UPDATE_INTERVAL_SECONDS,
		},
		MQTT: config.MQTTConfig{
			Host:              "localhost",
			Port:              1883,
			BaseTopic:         "ecovolter",
			HADiscoveryEnable: true,
			HADiscoveryTopic:  "homeassistant",
		},
		Port: 8080,
	}
}
