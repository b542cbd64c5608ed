package health

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestChecker_Liveness(t *testing.T) {
	c := NewChecker(nil, prometheus.NewRegistry())

	result := c.Liveness(context.Background())
	assert.Equal(t, "up", result.Status)
	assert.Empty(t, result.Checks)
}

func TestChecker_Readiness(t *testing.T) {
	tests := []struct {
		name       string
		deps       map[string]Pinger
		wantStatus string
		wantChecks map[string]CheckResult
	}{
		{
			name:       "no dependencies",
			deps:       map[string]Pinger{},
			wantStatus: "up",
			wantChecks: map[string]CheckResult{},
		},
		{
			name: "all healthy",
			deps: map[string]Pinger{
				"postgres": PingerFunc(func(context.Context) error { return nil }),
				"redis":    PingerFunc(func(context.Context) error { return nil }),
			},
			wantStatus: "up",
			wantChecks: map[string]CheckResult{
				"postgres": {Status: "up"},
				"redis":    {Status: "up"},
			},
		},
		{
			name: "one down",
			deps: map[string]Pinger{
				"postgres": PingerFunc(func(context.Context) error { return nil }),
				"redis":    PingerFunc(func(context.Context) error { return errors.New("connection refused") }),
			},
			wantStatus: "down",
			wantChecks: map[string]CheckResult{
				"postgres": {Status: "up"},
				"redis":    {Status: "down", Error: "connection refused"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewChecker(tt.deps, prometheus.NewRegistry())

			result := c.Readiness(context.Background())
			assert.Equal(t, tt.wantStatus, result.Status)
			assert.Equal(t, tt.wantChecks, result.Checks)
		})
	}
}

func TestChecker_ReadinessGauge(t *testing.T) {
	c := NewChecker(map[string]Pinger{
		"postgres": PingerFunc(func(context.Context) error { return nil }),
		"redis":    PingerFunc(func(context.Context) error { return errors.New("timeout") }),
	}, prometheus.NewRegistry())

	c.Readiness(context.Background())

	assert.Equal(t, float64(1), testutil.ToFloat64(c.gauge.WithLabelValues("postgres")))
	assert.Equal(t, float64(0), testutil.ToFloat64(c.gauge.WithLabelValues("redis")))
}
