package config

import (
	"strings"
	"testing"
)

func TestValidationError_Error(t *testing.T) {
	err := ValidationError{
		Field:   "delivery.max_id_attempts",
		Value:   0,
		Message: "must be between 1 and 256",
	}

	expected := "delivery.max_id_attempts: must be between 1 and 256 (got: 0)"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
}

func TestValidationErrors_Error(t *testing.T) {
	t.Run("empty errors", func(t *testing.T) {
		var errs ValidationErrors
		if errs.Error() != "" {
			t.Errorf("Error() for empty = %q, want empty string", errs.Error())
		}
	})

	t.Run("single error", func(t *testing.T) {
		errs := ValidationErrors{{Field: "root", Value: "", Message: "must not be empty"}}
		expected := "root: must not be empty (got: )"
		if errs.Error() != expected {
			t.Errorf("Error() = %q, want %q", errs.Error(), expected)
		}
	})

	t.Run("multiple errors", func(t *testing.T) {
		errs := ValidationErrors{
			{Field: "field1", Value: "bad", Message: "is invalid"},
			{Field: "field2", Value: -1, Message: "must be positive"},
		}
		result := errs.Error()
		if !strings.Contains(result, "2 validation errors") {
			t.Errorf("Error() should mention 2 errors: %s", result)
		}
		if !strings.Contains(result, "1. field1") || !strings.Contains(result, "2. field2") {
			t.Errorf("Error() should number both fields: %s", result)
		}
	})
}

func TestConfig_Validate_DefaultConfig(t *testing.T) {
	if errs := Default().Validate(); len(errs) != 0 {
		t.Errorf("default config should be valid, got: %v", errs)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string // empty means valid
	}{
		{"empty root", func(c *Config) { c.Root = "  " }, "root"},
		{"empty roster", func(c *Config) { c.Roster = "" }, "roster"},
		{"zero attempts", func(c *Config) { c.Delivery.MaxIDAttempts = 0 }, "delivery.max_id_attempts"},
		{"too many attempts", func(c *Config) { c.Delivery.MaxIDAttempts = 257 }, "delivery.max_id_attempts"},
		{"one attempt", func(c *Config) { c.Delivery.MaxIDAttempts = 1 }, ""},
		{"bad mode", func(c *Config) { c.Delivery.FileMode = "rw-r--r--" }, "delivery.file_mode"},
		{"mode out of range", func(c *Config) { c.Delivery.FileMode = "1777" }, "delivery.file_mode"},
		{"private mode", func(c *Config) { c.Delivery.FileMode = "0600" }, ""},
		{"bad color", func(c *Config) { c.Display.Color = "rainbow" }, "display.color"},
		{"never color", func(c *Config) { c.Display.Color = "never" }, ""},
		{"bad level", func(c *Config) { c.Logging.Level = "trace" }, "logging.level"},
		{"zero log size", func(c *Config) { c.Logging.MaxSizeMB = 0 }, "logging.max_size_mb"},
		{"huge log size", func(c *Config) { c.Logging.MaxSizeMB = 5000 }, "logging.max_size_mb"},
		{"negative backups", func(c *Config) { c.Logging.MaxBackups = -1 }, "logging.max_backups"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			errs := cfg.Validate()

			if tt.field == "" {
				if len(errs) != 0 {
					t.Errorf("Validate() = %v, want no errors", errs)
				}
				return
			}
			if len(errs) != 1 {
				t.Fatalf("Validate() returned %d errors, want 1: %v", len(errs), errs)
			}
			if errs[0].Field != tt.field {
				t.Errorf("Field = %q, want %q", errs[0].Field, tt.field)
			}
		})
	}
}

func TestDeliveryConfig_Mode(t *testing.T) {
	tests := []struct {
		mode    string
		want    uint32
		wantErr bool
	}{
		{"", 0o644, false},
		{"0644", 0o644, false},
		{"600", 0o600, false},
		{"0777", 0o777, false},
		{"0800", 0, true},
		{"abc", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			got, err := DeliveryConfig{FileMode: tt.mode}.Mode()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Mode() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Mode() = %o, want %o", got, tt.want)
			}
		})
	}
}
