package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rabbitz-io/rabbit/pkg/rabbit"
	"github.com/rabbitz-io/rabbit/pkg/rabbitclient"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Common string constants used throughout the commands package.
const (
	NotAvailable = "N/A"

	// Output formats.
	OutputFormatJSON = "json"
	OutputFormatYAML = "yaml"

	// JSON formatting.
	defaultYAMLIndent = 2

	configFilePerm = 0o600
	configDirPerm  = 0o755
)

// Config is the on-disk CLI configuration at ~/.rabbit/config.yml.
type Config struct {
	API         string `yaml:"api,omitempty"`
	Token       string `yaml:"token,omitempty"`
	TokenType   string `yaml:"token_type,omitempty"`
	SecretToken string `yaml:"secret_token,omitempty"`
	Username    string `yaml:"username,omitempty"`
	Output      string `yaml:"output,omitempty"`
}

func loadConfig() *Config {
	return &Config{
		API:         viper.GetString("api"),
		Token:       viper.GetString("token"),
		TokenType:   viper.GetString("token_type"),
		SecretToken: viper.GetString("secret_token"),
		Username:    viper.GetString("username"),
		Output:      viper.GetString("output"),
	}
}

func saveConfig(config *Config) error {
	configFile := viper.ConfigFileUsed()
	if configFile == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get user home directory: %w", err)
		}

		configDir := filepath.Join(home, ".rabbit")

		err = os.MkdirAll(configDir, configDirPerm)
		if err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}

		configFile = filepath.Join(configDir, "config.yml")
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	err = os.WriteFile(configFile, data, configFilePerm)
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// CreateClientWithAPI creates a rabbit client using the given API endpoint or
// the configured one when the flag is empty.
func CreateClientWithAPI(apiFlag string) (rabbit.Client, error) {
	endpoint := apiFlag
	if endpoint == "" {
		endpoint = viper.GetString("api")
	}

	if endpoint == "" {
		return nil, fmt.Errorf("%w, use 'rabbit login' or --api first", rabbit.ErrBaseURLRequired)
	}

	config := &rabbit.Config{
		BaseURL:     endpoint,
		TokenType:   rabbit.TokenType(viper.GetString("token_type")),
		Token:       viper.GetString("token"),
		SecretToken: viper.GetString("secret_token"),
	}

	client, err := rabbitclient.New(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return client, nil
}

// StandardJSONRenderer creates a standard JSON encoder.
func StandardJSONRenderer[T any](data T) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")

	err := encoder.Encode(data)
	if err != nil {
		return fmt.Errorf("encoding data to JSON: %w", err)
	}

	return nil
}

// StandardYAMLRenderer creates a standard YAML encoder.
func StandardYAMLRenderer[T any](data T) error {
	encoder := yaml.NewEncoder(os.Stdout)
	encoder.SetIndent(defaultYAMLIndent)

	err := encoder.Encode(data)
	if err != nil {
		return fmt.Errorf("encoding data to YAML: %w", err)
	}

	return nil
}

// resolveUserRef turns a command argument into a user reference: a decimal
// argument is treated as a user ID, anything else as a username.
func resolveUserRef(arg string) rabbit.UserRef {
	if id, err := strconv.ParseInt(arg, 10, 64); err == nil && id > 0 {
		return rabbit.UserID(id)
	}

	return rabbit.Username(arg)
}

// formatTime renders an optional timestamp for table output.
func formatTime(t *time.Time) string {
	if t == nil {
		return NotAvailable
	}

	return t.Format(time.RFC3339)
}

// formatDate renders an optional calendar date for table output.
func formatDate(d *rabbit.Date) string {
	if d == nil || d.IsZero() {
		return NotAvailable
	}

	return d.String()
}
