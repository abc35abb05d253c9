package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		MemoryLimitMB:  512,
		MaxRequestRate: 60,
		ContextSize:    4000,
		SecurityLevel:  "standard",
		AllowedDomains: []string{"wikipedia"},
	}
}

func TestValidateAcceptsBounds(t *testing.T) {
	assert.NoError(t, validConfig().Validate(nil))

	edge := Config{
		MemoryLimitMB:  MinMemoryLimitMB,
		MaxRequestRate: MaxRequestRate,
		ContextSize:    MaxContextSize,
		SecurityLevel:  "restricted",
		AllowedDomains: []string{"arxiv"},
	}
	assert.NoError(t, edge.Validate(nil))
}

func TestValidateReportsEveryViolation(t *testing.T) {
	bad := Config{
		MemoryLimitMB:  99999,
		MaxRequestRate: 0,
		ContextSize:    1,
		SecurityLevel:  "paranoid",
	}

	err := bad.Validate(nil)

	var invalid *InvalidConfigError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, []string{
		"memoryLimit",
		"requestRate",
		"contextSize",
		"securityLevel",
		"allowedDomains",
	}, invalid.Fields())
}

func TestValidateUnknownDomain(t *testing.T) {
	cfg := validConfig()
	cfg.AllowedDomains = []string{"wikipedia", "ghost"}

	err := cfg.Validate(map[string]bool{"wikipedia": true})

	var invalid *InvalidConfigError
	require.ErrorAs(t, err, &invalid)
	require.Len(t, invalid.Violations, 1)
	assert.Equal(t, "allowedDomains", invalid.Violations[0].Field)
	assert.Contains(t, invalid.Violations[0].Message, "ghost")
}

func TestValidateNilKnownDomainsSkipsMembership(t *testing.T) {
	cfg := validConfig()
	cfg.AllowedDomains = []string{"anything-goes"}

	assert.NoError(t, cfg.Validate(nil))
}

func TestCloneIsIndependent(t *testing.T) {
	original := validConfig()
	copied := original.clone()
	copied.AllowedDomains[0] = "mutated"

	assert.Equal(t, "wikipedia", original.AllowedDomains[0])
}
