package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/Aryanshanu/pesto/internal/adprocessor"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// CLIConfig represents the CLI configuration
type CLIConfig struct {
	Input      string   `json:"input,omitempty"`
	InputFiles []string `json:"input_files,omitempty"`
	DataType   string   `json:"data_type"`
	Sink       string   `json:"sink"`
	LogLevel   string   `json:"log_level"`
	LogFile    string   `json:"log_file,omitempty"`
}

// LoadConfig loads configuration from file and environment variables
func LoadConfig(configFile string) (*CLIConfig, error) {
	config := &CLIConfig{
		DataType: "auto",
		Sink:     "console",
		LogLevel: "info",
	}

	// Load from config file if specified
	if configFile != "" {
		if err := loadConfigFile(config, configFile); err != nil {
			return nil, fmt.Errorf("failed to load config file: %v", err)
		}
	}

	// Override with environment variables
	loadConfigFromEnv(config)

	return config, nil
}

// loadConfigFile loads configuration from a JSON file
func loadConfigFile(config *CLIConfig, filePath string) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}

	return json.Unmarshal(data, config)
}

// loadConfigFromEnv loads configuration from environment variables
func loadConfigFromEnv(config *CLIConfig) {
	if val := os.Getenv("ADPROCESSOR_INPUT"); val != "" {
		config.Input = val
	}

	if val := os.Getenv("ADPROCESSOR_INPUT_FILES"); val != "" {
		config.InputFiles = strings.Split(val, ",")
	}

	if val := os.Getenv("ADPROCESSOR_DATA_TYPE"); val != "" {
		config.DataType = val
	}

	if val := os.Getenv("ADPROCESSOR_SINK"); val != "" {
		config.Sink = val
	}

	if val := os.Getenv("ADPROCESSOR_LOG_LEVEL"); val != "" {
		config.LogLevel = val
	}

	if val := os.Getenv("ADPROCESSOR_LOG_FILE"); val != "" {
		config.LogFile = val
	}
}

// ToIngestConfig converts CLIConfig to adprocessor.Config
func (c *CLIConfig) ToIngestConfig() adprocessor.Config {
	config := adprocessor.Config{
		InputPath: c.Input,
		DataType:  adprocessor.DataType(c.DataType),
		SinkType:  c.Sink,
		LogLevel:  c.LogLevel,
	}

	config.SetDefaults()
	return config
}

// SaveConfig saves the current configuration to a file
func (c *CLIConfig) SaveConfig(filePath string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(filePath, data, 0644)
}

// Validate validates the CLI configuration
func (c *CLIConfig) Validate() error {
	// Note: Input selection is handled by the ingest command, which also
	// accepts a directory, so no input is required here.

	if err := adprocessor.DataType(c.DataType).Validate(); err != nil {
		return err
	}

	if c.Sink != "console" && c.Sink != "discard" {
		return fmt.Errorf("sink must be one of: console, discard")
	}

	if c.LogLevel != "debug" && c.LogLevel != "info" && c.LogLevel != "warn" && c.LogLevel != "error" {
		return fmt.Errorf("log_level must be one of: debug, info, warn, error")
	}

	return nil
}
