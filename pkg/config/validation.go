package config

import (
	"fmt"
	"net/url"
	"time"
)

// ValidationError is one invalid configuration value
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is every invalid value found in one pass
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 1 {
		return e[0].Error()
	}

	msg := "configuration validation failed:"
	for _, err := range e {
		msg += fmt.Sprintf("\n  - %s", err.Error())
	}
	return msg
}

// Validator checks part of a configuration
type Validator func() ValidationErrors

// Validate runs validators and returns their combined errors, or nil
func Validate(validators ...Validator) error {
	var all ValidationErrors
	for _, validator := range validators {
		all = append(all, validator()...)
	}
	if len(all) > 0 {
		return all
	}
	return nil
}

// CollectErrors drops the nil entries of errs
func CollectErrors(errs ...*ValidationError) ValidationErrors {
	var result ValidationErrors
	for _, err := range errs {
		if err != nil {
			result = append(result, *err)
		}
	}
	return result
}

func RequireNonEmpty(field, value string) *ValidationError {
	if value == "" {
		return &ValidationError{Field: field, Message: "is required"}
	}
	return nil
}

func RequirePositive(field string, value int) *ValidationError {
	if value <= 0 {
		return &ValidationError{Field: field, Message: fmt.Sprintf("must be positive, got %d", value)}
	}
	return nil
}

func RequirePositiveDuration(field string, value time.Duration) *ValidationError {
	if value <= 0 {
		return &ValidationError{Field: field, Message: fmt.Sprintf("must be positive, got %v", value)}
	}
	return nil
}

// RequireValidPort rejects port 0
func RequireValidPort(field string, value uint16) *ValidationError {
	if value == 0 {
		return &ValidationError{Field: field, Message: "port must be between 1 and 65535"}
	}
	return nil
}

// RequireValidURL requires an absolute URL with a scheme and host
func RequireValidURL(field, value string) *ValidationError {
	parsed, err := url.Parse(value)
	if err != nil {
		return &ValidationError{Field: field, Message: fmt.Sprintf("invalid URL: %v", err)}
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return &ValidationError{Field: field, Message: "URL must have a scheme and host (http://host:port)"}
	}
	return nil
}

func RequireOneOf(field, value string, allowed []string) *ValidationError {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return &ValidationError{Field: field, Message: fmt.Sprintf("must be one of %v, got %q", allowed, value)}
}

// WhenSet runs validator only for a non-empty value
func WhenSet(value string, validator func() *ValidationError) *ValidationError {
	if value == "" {
		return nil
	}
	return validator()
}
