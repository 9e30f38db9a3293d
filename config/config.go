// Package config defines the configuration surface of the plugmux
// binary: command line flags, optionally merged with a YAML file. Flags
// given on the command line win over file values.
package config

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v2"
)

const defaultAddress = ":6006"

type Config struct {
	ConfigFile string        `yaml:"-"`
	Flags      *flag.FlagSet `yaml:"-"`

	Address              string   `yaml:"address"`
	PathPrefix           string   `yaml:"path-prefix"`
	ExperimentalPlugins  listFlag `yaml:"experimental-plugins"`
	ApplicationLogPrefix string   `yaml:"application-log-prefix"`
	ApplicationLogLevel  string   `yaml:"application-log-level"`
	AccessLogDisabled    bool     `yaml:"access-log-disabled"`
	AccessLogJSONEnabled bool     `yaml:"access-log-json-enabled"`
	MetricsListener      string   `yaml:"metrics-listener"`
}

// NewConfig returns a Config with all flags registered on a fresh flag
// set.
func NewConfig() *Config {
	cfg := &Config{}

	fs := flag.NewFlagSet("plugmux", flag.ExitOnError)
	fs.StringVar(&cfg.ConfigFile, "config-file", "", "config file in YAML format, overridden by command line flags")
	fs.StringVar(&cfg.Address, "address", defaultAddress, "address to listen on")
	fs.StringVar(&cfg.PathPrefix, "path-prefix", "", "path prefix the URL space is mounted under")
	fs.Var(&cfg.ExperimentalPlugins, "experimental-plugin", "name of a plugin hidden from the listing unless requested, can be repeated")
	fs.StringVar(&cfg.ApplicationLogPrefix, "application-log-prefix", "[APP]", "prefix of the application log entries")
	fs.StringVar(&cfg.ApplicationLogLevel, "application-log-level", "INFO", "log level of the application log")
	fs.BoolVar(&cfg.AccessLogDisabled, "access-log-disabled", false, "when set, no access log is printed")
	fs.BoolVar(&cfg.AccessLogJSONEnabled, "access-log-json-enabled", false, "when set, the access log is in JSON format")
	fs.StringVar(&cfg.MetricsListener, "metrics-listener", "", "separate address to serve /metrics on, empty disables metrics")

	cfg.Flags = fs
	return cfg
}

// Parse the command line arguments. When a config file is given, it is
// loaded first and the command line is applied on top of it.
func (c *Config) Parse(args []string) error {
	if err := c.Flags.Parse(args); err != nil {
		return err
	}

	if c.ConfigFile != "" {
		yamlFile, err := os.ReadFile(c.ConfigFile)
		if err != nil {
			return fmt.Errorf("invalid config file: %w", err)
		}

		if err := yaml.Unmarshal(yamlFile, c); err != nil {
			return fmt.Errorf("invalid config file format: %w", err)
		}

		// Reapply the command line on top of the file values.
		if err := c.Flags.Parse(args); err != nil {
			return err
		}
	}

	return c.validate()
}

func (c *Config) validate() error {
	// Parsing the command line twice appends repeated flag values twice.
	c.ExperimentalPlugins = dedupe(c.ExperimentalPlugins)

	c.PathPrefix = strings.TrimSuffix(c.PathPrefix, "/")
	if c.PathPrefix != "" && c.PathPrefix[0] != '/' {
		return fmt.Errorf("path prefix %q must start with a slash", c.PathPrefix)
	}

	if c.Address == "" {
		c.Address = defaultAddress
	}

	return nil
}

func dedupe(values listFlag) listFlag {
	seen := make(map[string]bool, len(values))
	unique := values[:0]
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			unique = append(unique, v)
		}
	}

	return unique
}
