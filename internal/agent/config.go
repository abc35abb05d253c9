package agent

import (
	"fmt"
	"strings"
)

// Declared bounds for agent configuration fields.
const (
	MinMemoryLimitMB = 128
	MaxMemoryLimitMB = 4096
	MinRequestRate   = 1
	MaxRequestRate   = 600
	MinContextSize   = 256
	MaxContextSize   = 32768
)

// SecurityLevels enumerates the accepted security_level values.
var SecurityLevels = []string{"low", "standard", "high", "restricted"}

// Config is the per-agent configuration accepted over the dashboard. It is
// validated and swapped atomically, but it is not currently enforced against
// runtime behavior (no rate limiting or memory capping happens); the context
// size budget is the one field the pipeline reads.
type Config struct {
	MemoryLimitMB  int      `json:"memoryLimit" yaml:"memory_limit"`
	MaxRequestRate int      `json:"requestRate" yaml:"max_request_rate"`
	ContextSize    int      `json:"contextSize" yaml:"context_size"`
	SecurityLevel  string   `json:"securityLevel" yaml:"security_level"`
	AllowedDomains []string `json:"allowedDomains" yaml:"allowed_domains"`
}

// FieldViolation names one configuration field that failed validation.
type FieldViolation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// InvalidConfigError reports every violated field, not just the first.
type InvalidConfigError struct {
	Violations []FieldViolation
}

func (e *InvalidConfigError) Error() string {
	fields := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		fields[i] = fmt.Sprintf("%s: %s", v.Field, v.Message)
	}
	return "invalid configuration: " + strings.Join(fields, "; ")
}

// Fields returns the violated field names in order.
func (e *InvalidConfigError) Fields() []string {
	fields := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		fields[i] = v.Field
	}
	return fields
}

// Validate checks every field against its declared bounds. knownDomains may
// be nil to skip domain membership checks (used at startup before the
// registry is populated).
func (c Config) Validate(knownDomains map[string]bool) error {
	var violations []FieldViolation

	if c.MemoryLimitMB < MinMemoryLimitMB || c.MemoryLimitMB > MaxMemoryLimitMB {
		violations = append(violations, FieldViolation{
			Field:   "memoryLimit",
			Message: fmt.Sprintf("must be in [%d, %d] MB, got %d", MinMemoryLimitMB, MaxMemoryLimitMB, c.MemoryLimitMB),
		})
	}
	if c.MaxRequestRate < MinRequestRate || c.MaxRequestRate > MaxRequestRate {
		violations = append(violations, FieldViolation{
			Field:   "requestRate",
			Message: fmt.Sprintf("must be in [%d, %d] req/min, got %d", MinRequestRate, MaxRequestRate, c.MaxRequestRate),
		})
	}
	if c.ContextSize < MinContextSize || c.ContextSize > MaxContextSize {
		violations = append(violations, FieldViolation{
			Field:   "contextSize",
			Message: fmt.Sprintf("must be in [%d, %d] tokens, got %d", MinContextSize, MaxContextSize, c.ContextSize),
		})
	}
	if !validSecurityLevel(c.SecurityLevel) {
		violations = append(violations, FieldViolation{
			Field:   "securityLevel",
			Message: fmt.Sprintf("must be one of %s, got %q", strings.Join(SecurityLevels, "|"), c.SecurityLevel),
		})
	}
	if len(c.AllowedDomains) == 0 {
		violations = append(violations, FieldViolation{
			Field:   "allowedDomains",
			Message: "at least one domain is required",
		})
	} else if knownDomains != nil {
		for _, id := range c.AllowedDomains {
			if !knownDomains[id] {
				violations = append(violations, FieldViolation{
					Field:   "allowedDomains",
					Message: fmt.Sprintf("unknown domain %q", id),
				})
				break
			}
		}
	}

	if len(violations) > 0 {
		return &InvalidConfigError{Violations: violations}
	}
	return nil
}

func validSecurityLevel(level string) bool {
	for _, known := range SecurityLevels {
		if level == known {
			return true
		}
	}
	return false
}

func (c Config) clone() Config {
	out := c
	out.AllowedDomains = append([]string(nil), c.AllowedDomains...)
	return out
}
