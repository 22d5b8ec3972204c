package config

import (
	"cmp"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	defaultPublishSize = 2500
)

type Kafka struct {
	BootstrapServers string `yaml:"bootstrapServers"`
	AwsEnabled       bool   `yaml:"awsEnabled,omitempty"`
	PublishSize      uint   `yaml:"publishSize,omitempty"`
	MaxRequestSize   uint64 `yaml:"maxRequestSize,omitempty"`
}

func (k *Kafka) BootstrapAddresses() []string {
	return strings.Split(k.BootstrapServers, ",")
}

func (k *Kafka) GetPublishSize() uint {
	return cmp.Or(k.PublishSize, defaultPublishSize)
}

func (k *Kafka) Validate() error {
	if k == nil {
		return fmt.Errorf("kafka config is nil")
	}

	if k.BootstrapServers == "" {
		return fmt.Errorf("bootstrap servers not passed in")
	}

	return nil
}

type Sentry struct {
	DSN string `yaml:"dsn"`
}

type Reporting struct {
	Sentry *Sentry `yaml:"sentry"`
}

type Metrics struct {
	Namespace string   `yaml:"namespace"`
	Tags      []string `yaml:"tags"`
}

type Settings struct {
	MySQL     *MySQL     `yaml:"mysql"`
	Kafka     *Kafka     `yaml:"kafka"`
	Reporting *Reporting `yaml:"reporting,omitempty"`
	Metrics   *Metrics   `yaml:"metrics,omitempty"`
}

func (s *Settings) Validate() error {
	if s == nil {
		return fmt.Errorf("config is nil")
	}

	if err := s.Kafka.Validate(); err != nil {
		return fmt.Errorf("kafka validation failed: %w", err)
	}

	if err := s.MySQL.Validate(); err != nil {
		return fmt.Errorf("mysql validation failed: %w", err)
	}

	return nil
}

func ReadConfig(fp string) (*Settings, error) {
	bytes, err := os.ReadFile(fp)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var settings Settings
	if err = yaml.Unmarshal(bytes, &settings); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config file: %w", err)
	}

	if err = settings.Validate(); err != nil {
		return nil, fmt.Errorf("failed to validate config file: %w", err)
	}

	return &settings, nil
}
