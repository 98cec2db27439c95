package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/sadopc/tomato/internal/logging"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // config key, e.g. "defaults.work_minutes"
	Value   any
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errs []ValidationError

	if c.Database.Path == "" {
		errs = append(errs, ValidationError{Field: "database.path", Value: c.Database.Path, Message: "must not be empty"})
	}

	positive := []struct {
		field string
		value int
	}{
		{"defaults.work_minutes", c.Defaults.WorkMinutes},
		{"defaults.short_break_minutes", c.Defaults.ShortBreakMinutes},
		{"defaults.long_break_minutes", c.Defaults.LongBreakMinutes},
		{"defaults.long_break_interval", c.Defaults.LongBreakInterval},
	}
	for _, p := range positive {
		if p.value <= 0 {
			errs = append(errs, ValidationError{Field: p.field, Value: p.value, Message: "must be positive"})
		}
	}

	if c.Timezone != "" && c.Timezone != "Local" {
		if _, err := time.LoadLocation(c.Timezone); err != nil {
			errs = append(errs, ValidationError{Field: "timezone", Value: c.Timezone, Message: "unknown time zone"})
		}
	}

	if !logging.IsValidLevel(c.Logging.Level) {
		errs = append(errs, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of %s", strings.Join(logging.ValidLevels(), ", ")),
		})
	}

	return errs
}
