package config

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "delivery.max_id_attempts")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d validation errors:\n", len(e))
	for i, err := range e {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, err.Error())
	}
	return sb.String()
}

// MaxIDAttemptsLimit is the size of the per-second name space: the
// differentiator and counter digits together span one byte.
const MaxIDAttemptsLimit = 256

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// ValidColorModes returns the accepted display.color values
func ValidColorModes() []string {
	return []string{"auto", "always", "never"}
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	errors = append(errors, c.validatePaths()...)
	errors = append(errors, c.validateDelivery()...)
	errors = append(errors, c.validateDisplay()...)
	errors = append(errors, c.validateLogging()...)

	return errors
}

func (c *Config) validatePaths() []ValidationError {
	var errors []ValidationError

	if strings.TrimSpace(c.Root) == "" {
		errors = append(errors, ValidationError{
			Field:   "root",
			Value:   c.Root,
			Message: "must not be empty",
		})
	}
	if strings.TrimSpace(c.Roster) == "" {
		errors = append(errors, ValidationError{
			Field:   "roster",
			Value:   c.Roster,
			Message: "must not be empty",
		})
	}

	return errors
}

func (c *Config) validateDelivery() []ValidationError {
	var errors []ValidationError

	if c.Delivery.MaxIDAttempts < 1 || c.Delivery.MaxIDAttempts > MaxIDAttemptsLimit {
		errors = append(errors, ValidationError{
			Field:   "delivery.max_id_attempts",
			Value:   c.Delivery.MaxIDAttempts,
			Message: fmt.Sprintf("must be between 1 and %d", MaxIDAttemptsLimit),
		})
	}

	if c.Delivery.FileMode != "" {
		if _, err := c.Delivery.Mode(); err != nil {
			errors = append(errors, ValidationError{
				Field:   "delivery.file_mode",
				Value:   c.Delivery.FileMode,
				Message: "must be an octal permission between 0000 and 0777",
			})
		}
	}

	return errors
}

// Mode parses FileMode. An empty FileMode yields 0644.
func (d DeliveryConfig) Mode() (uint32, error) {
	if d.FileMode == "" {
		return 0o644, nil
	}
	v, err := strconv.ParseUint(d.FileMode, 8, 32)
	if err != nil {
		return 0, err
	}
	if v > 0o777 {
		return 0, fmt.Errorf("mode %o out of range", v)
	}
	return uint32(v), nil
}

func (c *Config) validateDisplay() []ValidationError {
	if c.Display.Color == "" || slices.Contains(ValidColorModes(), c.Display.Color) {
		return nil
	}
	return []ValidationError{{
		Field:   "display.color",
		Value:   c.Display.Color,
		Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidColorModes(), ", ")),
	}}
}

// validateLogging validates the LoggingConfig
func (c *Config) validateLogging() []ValidationError {
	var errors []ValidationError

	if c.Logging.Level != "" && !slices.Contains(ValidLogLevels(), c.Logging.Level) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}

	if c.Logging.MaxSizeMB <= 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_size_mb",
			Value:   c.Logging.MaxSizeMB,
			Message: "must be positive",
		})
	}

	const maxLogSizeMB = 1000
	if c.Logging.MaxSizeMB > maxLogSizeMB {
		errors = append(errors, ValidationError{
			Field:   "logging.max_size_mb",
			Value:   c.Logging.MaxSizeMB,
			Message: fmt.Sprintf("exceeds maximum of %dMB", maxLogSizeMB),
		})
	}

	if c.Logging.MaxBackups < 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_backups",
			Value:   c.Logging.MaxBackups,
			Message: "must be non-negative",
		})
	}

	return errors
}
