// Package config defines the data structures related to configuration and
// includes functions for loading and validating the config.
package config

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/iwvelando/tuition-calculator/internal/estimate"
	"github.com/iwvelando/tuition-calculator/internal/ingest"
	"github.com/iwvelando/tuition-calculator/pkg/constants"
	"github.com/iwvelando/tuition-calculator/pkg/validation"
	"github.com/spf13/viper"
)

// Configuration holds all configuration for tuition-calculator.
type Configuration struct {
	Data     DataConfig         `yaml:"data"`
	Defaults estimate.Selection `yaml:"defaults"`
	Logging  LoggingConfig      `yaml:"logging,omitempty"`
	Output   OutputConfig       `yaml:"output,omitempty"`
}

// DataConfig says where the rate feeds come from.
type DataConfig struct {
	Source         string `yaml:"source"`    // dir, http
	Directory      string `yaml:"directory"` // used when source is dir
	BaseURL        string `yaml:"baseURL"`   // used when source is http
	TimeoutSeconds int    `yaml:"timeoutSeconds,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, csv, json
	Locale string `yaml:"locale,omitempty"` // BCP 47 tag for digit grouping
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there. Unset values fall back to the calculator defaults.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yml")
	v.SetEnvPrefix("TUITION")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := estimate.DefaultSelection()
	v.SetDefault("data.source", constants.DataSourceDir)
	v.SetDefault("data.directory", constants.DefaultDataDirectory)
	v.SetDefault("data.timeoutSeconds", constants.DefaultFetchTimeoutSeconds)
	v.SetDefault("defaults.level", string(defaults.Level))
	v.SetDefault("defaults.residency", string(defaults.Residency))
	v.SetDefault("defaults.hours", defaults.Hours)
	v.SetDefault("defaults.housing", string(defaults.Housing))
	v.SetDefault("defaults.term", string(defaults.Term))
	v.SetDefault("defaults.selectedMeal", defaults.SelectedMeal)
	v.SetDefault("output.locale", constants.DefaultLocale)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}

	var configuration Configuration
	err := v.Unmarshal(&configuration)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}

	if err := configuration.Validate(); err != nil {
		return nil, err
	}

	return &configuration, nil
}

// Validate reports configuration that cannot be run.
func (c *Configuration) Validate() error {
	if err := validation.ValidateDataSource(c.Data.Source); err != nil {
		return err
	}
	switch c.Data.Source {
	case constants.DataSourceDir:
		if strings.TrimSpace(c.Data.Directory) == "" {
			return fmt.Errorf("data.directory is required when data.source is %s", constants.DataSourceDir)
		}
	case constants.DataSourceHTTP:
		if strings.TrimSpace(c.Data.BaseURL) == "" {
			return fmt.Errorf("data.baseURL is required when data.source is %s", constants.DataSourceHTTP)
		}
	}
	if c.Data.TimeoutSeconds < 0 {
		return fmt.Errorf("data.timeoutSeconds must not be negative, got %d", c.Data.TimeoutSeconds)
	}
	return nil
}

// ValidateConfiguration performs general validation of the configuration and returns warnings
func (c *Configuration) ValidateConfiguration() []string {
	var warnings []string

	if err := estimate.Validate(c.Defaults); err != nil {
		warnings = append(warnings, fmt.Sprintf("default selection is not usable: %v", err))
	}
	if !c.Defaults.IsDorm() && c.Defaults.SelectedHall != "" {
		warnings = append(warnings, fmt.Sprintf("defaults.selectedHall %q is ignored unless housing is %s",
			c.Defaults.SelectedHall, constants.HousingDorm))
	}
	if c.Data.Source == constants.DataSourceDir && c.Data.BaseURL != "" {
		warnings = append(warnings, "data.baseURL is ignored when data.source is dir")
	}
	if c.Data.Source == constants.DataSourceHTTP && !strings.HasPrefix(c.Data.BaseURL, "https://") {
		warnings = append(warnings, fmt.Sprintf("data.baseURL %q does not use https", c.Data.BaseURL))
	}

	return warnings
}

// FetchTimeout returns the deadline for loading all feeds.
func (c *Configuration) FetchTimeout() time.Duration {
	if c.Data.TimeoutSeconds <= 0 {
		return constants.DefaultFetchTimeoutSeconds * time.Second
	}
	return time.Duration(c.Data.TimeoutSeconds) * time.Second
}

// NewSource builds the feed source the data section describes.
func (d DataConfig) NewSource(client *http.Client) ingest.Source {
	if d.Source == constants.DataSourceHTTP {
		return ingest.HTTPSource{BaseURL: d.BaseURL, Client: client}
	}
	return ingest.DirSource{Dir: d.Directory}
}
