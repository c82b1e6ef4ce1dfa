package config

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap/zapcore"
)

const (
	DEFAULT_UPDATE_INTERVAL_SECONDS = 15
	MIN_UPDATE_INTERVAL_SECONDS     = 5
)

type Config struct {
	LogLevel zapcore.Level
	Charger  ChargerConfig `mapstructure:"charger"`
	MQTT     MQTTConfig    `mapstructure:"mqtt"`
	Port     uint          `mapstructure:"port"`
	HttpLog  bool          `mapstructure:"http_log"`
}

type ChargerConfig struct {
	SerialNumber string `mapstructure:"serial_number"`
	SecretKey    string `mapstructure:"secret_key"`
	BaseURI      string `mapstructure:"base_uri"`
	// seconds
	UpdateInterval int `mapstructure:"update_interval"`
}

type MQTTConfig struct {
	Host              string
	Port              int
	Username          string
	Password          string
	BaseTopic         string `mapstructure:"base_topic"`
	HADiscoveryEnable bool   `mapstructure:"ha_discovery_enable"`
	HADiscoveryTopic  string `mapstructure:"ha_discovery_topic"`
}

// Normalize fixes up user input in place. Serial numbers are case-insensitive,
// base URIs lose trailing slashes and the update interval is raised to the floor.
func (c *ChargerConfig) Normalize() error {
	c.SerialNumber = strings.ToLower(strings.TrimSpace(c.SerialNumber))
	c.SecretKey = strings.TrimSpace(c.SecretKey)
	c.BaseURI = strings.TrimRight(strings.TrimSpace(c.BaseURI), "/")
	if c.SerialNumber == "" {
		return errors.New("config param charger.serial_number is required")
	}
	if c.SecretKey == "" {
		return errors.New("config param charger.secret_key is required")
	}
	if c.UpdateInterval <= 0 {
		c.UpdateInterval = DEFAULT_UPDATE_INTERVAL_SECONDS
	}
	if c.UpdateInterval < MIN_UPDATE_INTERVAL_SECONDS {
		c.UpdateInterval = MIN_UPDATE_INTERVAL_SECONDS
	}
	return nil
}

func (c ChargerConfig) PollInterval() time.Duration {
	interval := c.UpdateInterval
	if interval <= 0 {
		interval = DEFAULT_UPDATE_INTERVAL_SECONDS
	}
	return time.Duration(max(interval, MIN_UPDATE_INTERVAL_SECONDS)) * time.Second
}

func CheckMQTTTopic(baseTopic string) (string, error) {
	// check and fix base topic
	lowerBaseTopic := strings.ToLower(baseTopic)
	baseTopicRegexp := regexp.MustCompile("^[a-z0-9_]+$")
	matches := baseTopicRegexp.FindAllStringSubmatch(lowerBaseTopic, 1)
	if len(matches) <= 0 {
		return "", errors.New("invalid topic. can only contain letters, numbers and underscores")
	}
	return lowerBaseTopic, nil
}
