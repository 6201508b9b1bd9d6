package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
)

const (
	defaultConfidence  = 50
	defaultMQTTPort    = 1883
	defaultClientID    = "camwatch"
	defaultClassesPath = "models/coco.names"
	defaultTopicPrefix = "objectdetection"
)

type CameraConfig struct {
	Name         string `json:"name"`
	URL          string `json:"url"`
	Topic        string `json:"topic,omitempty"`
	OutputFolder string `json:"output_folder,omitempty"`
}

type MQTTConfig struct {
	Broker   string `json:"broker" env:"MQTT_BROKER"`
	Port     int    `json:"port" env:"MQTT_PORT"`
	User     string `json:"user,omitempty" env:"MQTT_USER"`
	Pass     string `json:"pass,omitempty" env:"MQTT_PASS"`
	ClientID string `json:"client_id,omitempty" env:"MQTT_CLIENT_ID"`
}

// Config is loaded once at startup and never mutated afterwards.
// Environment variables override the values read from the JSON file.
type Config struct {
	Cameras     []CameraConfig `json:"cameras"`
	ModelPath   string         `json:"model_path" env:"MODEL_PATH"`
	ModelConfig string         `json:"model_config,omitempty" env:"MODEL_CONFIG"`
	ClassesPath string         `json:"classes_path,omitempty" env:"CLASSES_PATH"`
	Confidence  int            `json:"confidence,omitempty" env:"CONFIDENCE"`
	Backend     string         `json:"backend,omitempty" env:"NET_BACKEND"`
	Target      string         `json:"target,omitempty" env:"NET_TARGET"`
	Interval    int            `json:"interval" env:"CAPTURE_INTERVAL"`
	LogLevel    string         `json:"log_level,omitempty" env:"LOG_LEVEL"`
	MQTT        MQTTConfig     `json:"mqtt"`
}

func loadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config file: %w", err)
	}
	defer file.Close()

	var cfg Config
	decoder := json.NewDecoder(file)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config file %s: %w", path, err)
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse environment overrides: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Confidence == 0 {
		c.Confidence = defaultConfidence
	}
	if c.ClassesPath == "" {
		c.ClassesPath = defaultClassesPath
	}
	if c.MQTT.Port == 0 {
		c.MQTT.Port = defaultMQTTPort
	}
	if c.MQTT.ClientID == "" {
		c.MQTT.ClientID = defaultClientID
	}
	for i := range c.Cameras {
		if c.Cameras[i].Topic == "" {
			c.Cameras[i].Topic = defaultTopicPrefix + "/" + c.Cameras[i].Name
		}
	}
}

// Camera names double as MQTT entity ids, so they must be unique.
func (c *Config) validate() error {
	if len(c.Cameras) == 0 {
		return errors.New("at least one camera must be configured")
	}
	seen := make(map[string]bool, len(c.Cameras))
	for _, cam := range c.Cameras {
		if cam.Name == "" {
			return errors.New("camera name must not be empty")
		}
		if cam.URL == "" {
			return fmt.Errorf("camera %s has no url", cam.Name)
		}
		if seen[cam.Name] {
			return fmt.Errorf("duplicate camera name: %s", cam.Name)
		}
		seen[cam.Name] = true
	}
	if c.ModelPath == "" {
		return errors.New("model_path is required")
	}
	if c.Interval <= 0 {
		return errors.New("interval must be a positive number of seconds")
	}
	if c.Confidence < 1 || c.Confidence > 100 {
		return fmt.Errorf("confidence must be between 1 and 100, got %d", c.Confidence)
	}
	if c.MQTT.Broker == "" {
		return errors.New("mqtt broker is required")
	}
	if c.MQTT.Port <= 0 || c.MQTT.Port > 65535 {
		return fmt.Errorf("invalid mqtt port: %d", c.MQTT.Port)
	}
	return nil
}
