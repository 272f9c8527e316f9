// Package config loads and validates the slotwatch configuration file.
//
// Example configuration:
//
//	listen: ":9090"
//
//	admin_notify: [gotify-ops]
//
//	sinks:
//	  gotify-ops:
//	    provider: gotify
//	    settings:
//	      url: https://gotify.example.org
//	      application_token: ${GOTIFY_TOKEN}
//	  oncall-mail:
//	    provider: email
//	    settings:
//	      from: slotwatch@example.org
//	      to: [oncall@example.org]
//	      subject: slotwatch
//	      smtp:
//	        host: smtp.example.org
//	        port: 587
//	        user: slotwatch
//	        password: ${SMTP_PASSWORD}
//	        starttls: true
//
//	services:
//	  - title: Downtown clinic
//	    provider: booked4us
//	    interval: 300
//	    notify: [gotify-ops, oncall-mail]
//	    settings:
//	      url: https://booking.example.org
//
// Values support environment variable substitution with ${VAR} and
// ${VAR:-default}, expanded before parsing.
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Provider and sink kinds understood by the factories. The sets are closed;
// configs naming anything else are rejected at parse time.
const (
	ProviderBooked4us = "booked4us"
	SinkGotify        = "gotify"
	SinkEmail         = "email"
)

var validate = validator.New()

// Config is the root configuration structure.
type Config struct {
	// Listen is the ops listener address (health, status, metrics).
	// Empty disables the listener.
	Listen string `yaml:"listen"`

	// AdminNotify lists the sink names that receive operational messages.
	AdminNotify []string `yaml:"admin_notify"`

	// Sinks maps logical sink names to delivery targets.
	Sinks map[string]Sink `yaml:"sinks" validate:"dive"`

	// Services lists the watched availability sources, one poll worker each.
	Services []Service `yaml:"services" validate:"required,min=1,dive"`
}

// Service describes one watched availability source.
// The provider kind selects which settings type is decoded.
type Service struct {
	Title     string `validate:"required"`
	Provider  string `validate:"required"`
	Interval  uint   `validate:"required"` // seconds between polls
	Notify    []string
	Booked4us *Booked4usSettings
}

func (s *Service) UnmarshalYAML(node *yaml.Node) error {
	var raw struct {
		Title    string    `yaml:"title"`
		Provider string    `yaml:"provider"`
		Interval uint      `yaml:"interval"`
		Notify   []string  `yaml:"notify"`
		Settings yaml.Node `yaml:"settings"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	s.Title = raw.Title
	s.Provider = raw.Provider
	s.Interval = raw.Interval
	s.Notify = raw.Notify

	switch raw.Provider {
	case "":
		return fmt.Errorf("service %q: provider is required", raw.Title)
	case ProviderBooked4us:
		if raw.Settings.IsZero() {
			return fmt.Errorf("service %q: settings are required", raw.Title)
		}
		var b Booked4usSettings
		if err := raw.Settings.Decode(&b); err != nil {
			return fmt.Errorf("service %q: %w", raw.Title, err)
		}
		s.Booked4us = &b
	default:
		return fmt.Errorf("service %q: unknown provider %q", raw.Title, raw.Provider)
	}
	return nil
}

// Sink is one delivery target. The provider kind selects which settings type
// is decoded.
type Sink struct {
	Provider string `validate:"required"`
	Gotify   *GotifySettings
	Email    *EmailSettings
}

func (s *Sink) UnmarshalYAML(node *yaml.Node) error {
	var raw struct {
		Provider string    `yaml:"provider"`
		Settings yaml.Node `yaml:"settings"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	s.Provider = raw.Provider

	if raw.Provider == "" {
		return errors.New("sink: provider is required")
	}
	if raw.Settings.IsZero() {
		return fmt.Errorf("sink provider %q: settings are required", raw.Provider)
	}
	switch raw.Provider {
	case SinkGotify:
		var g GotifySettings
		if err := raw.Settings.Decode(&g); err != nil {
			return err
		}
		s.Gotify = &g
	case SinkEmail:
		var e EmailSettings
		if err := raw.Settings.Decode(&e); err != nil {
			return err
		}
		s.Email = &e
	default:
		return fmt.Errorf("unknown sink provider %q", raw.Provider)
	}
	return nil
}

// Booked4usSettings configures a booked4us backend.
type Booked4usSettings struct {
	// URL is the backend base address; the API paths are appended to it.
	URL string `yaml:"url" validate:"required,url"`

	// ProbeRate caps free-slot probe requests per second. 0 means unpaced.
	ProbeRate int `yaml:"probe_rate" validate:"gte=0"`

	// Timeout bounds each HTTP request. 0 means no timeout.
	Timeout Duration `yaml:"timeout"`
}

// GotifySettings configures a gotify push sink.
type GotifySettings struct {
	URL              string   `yaml:"url" validate:"required,url"`
	ApplicationToken string   `yaml:"application_token" validate:"required"`
	Timeout          Duration `yaml:"timeout"`
}

// EmailSettings configures an SMTP email sink.
type EmailSettings struct {
	From    string       `yaml:"from" validate:"required,email"`
	To      []string     `yaml:"to" validate:"required,min=1,dive,email"`
	Subject string       `yaml:"subject"`
	SMTP    SMTPSettings `yaml:"smtp"`
}

type SMTPSettings struct {
	Host     string   `yaml:"host" validate:"required"`
	Port     int      `yaml:"port" validate:"required,gt=0,lte=65535"`
	User     string   `yaml:"user"`
	Password string   `yaml:"password"`
	StartTLS bool     `yaml:"starttls"`
	Timeout  Duration `yaml:"timeout"`
}

// Duration wraps time.Duration for YAML unmarshalling.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Duration returns the underlying time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	return Parse(data)
}

// Parse expands environment variables in the raw YAML, unmarshals it, and
// validates the result. A returned Config is never mutated afterwards and is
// safe to share across goroutines.
func Parse(data []byte) (*Config, error) {
	expanded, err := expandEnvVars(string(data))
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}

	if err := cfg.validateAll(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validateAll() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return fmt.Errorf("invalid config: %s", formatValidationErrors(verrs))
		}
		return err
	}

	// Subscription names must resolve against the sinks map.
	for _, name := range c.AdminNotify {
		if _, ok := c.Sinks[name]; !ok {
			return fmt.Errorf("admin_notify: unknown sink %q", name)
		}
	}
	for i := range c.Services {
		svc := &c.Services[i]
		for _, name := range svc.Notify {
			if _, ok := c.Sinks[name]; !ok {
				return fmt.Errorf("services[%d] (%s): unknown sink %q", i, svc.Title, name)
			}
		}
	}
	return nil
}

func formatValidationErrors(errs validator.ValidationErrors) string {
	msgs := make([]string, 0, len(errs))
	for _, fe := range errs {
		msgs = append(msgs, fmt.Sprintf("%s failed on %q", fe.Namespace(), fe.Tag()))
	}
	return strings.Join(msgs, "; ")
}

// envVarPattern matches ${VAR} and ${VAR:-default} patterns.
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(:-([^}]*))?\}`)

// expandEnvVars replaces ${VAR} and ${VAR:-default} patterns with environment
// values. Referencing an unset variable without a default is an error.
func expandEnvVars(s string) (string, error) {
	var firstErr error

	result := envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		if firstErr != nil {
			return match
		}

		submatches := envVarPattern.FindStringSubmatch(match)
		if len(submatches) < 2 {
			return match
		}

		varName := submatches[1]
		hasDefault := len(submatches) > 2 && submatches[2] != ""
		defaultVal := ""
		if hasDefault && len(submatches) > 3 {
			defaultVal = submatches[3]
		}

		value, exists := os.LookupEnv(varName)
		if !exists {
			if hasDefault {
				return defaultVal
			}
			firstErr = fmt.Errorf("environment variable %q is not set", varName)
			return match
		}
		return value
	})

	if firstErr != nil {
		return "", firstErr
	}
	return result, nil
}
