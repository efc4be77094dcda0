package metrics_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/zskema"
	"github.com/reoring/zskema/dsl"
	"github.com/reoring/zskema/metrics"
)

func TestObserveValidation(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewWithRegistry(reg)

	m.ObserveValidation("user", nil, time.Millisecond)
	m.ObserveValidation("user", zskema.Issues{
		{Code: zskema.CodeInvalidType},
		{Code: zskema.CodeInvalidType},
		{Code: zskema.CodeTooSmall},
	}, 2*time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ValidationsTotal.WithLabelValues("user", "valid")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ValidationsTotal.WithLabelValues("user", "invalid")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.IssuesTotal.WithLabelValues("user", zskema.CodeInvalidType)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.IssuesTotal.WithLabelValues("user", zskema.CodeTooSmall)))
	assert.Equal(t, 1, testutil.CollectAndCount(m.ValidationDuration))
}

func TestCollectorAsObserver(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewWithRegistry(reg)
	cfg := zskema.DefaultConfig()
	cfg.Observer = m
	cfg.Name = "age"

	dsl.Validate(context.Background(), dsl.Number(), "x", dsl.WithConfig(cfg))
	dsl.Validate(context.Background(), dsl.Number(), 3, dsl.WithConfig(cfg))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ValidationsTotal.WithLabelValues("age", "invalid")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ValidationsTotal.WithLabelValues("age", "valid")))
}

func TestSchemaLabel(t *testing.T) {
	assert.Equal(t, "anonymous", metrics.SchemaLabel(""))
	assert.Equal(t, "user", metrics.SchemaLabel("user"))
	long := strings.Repeat("a", 60)
	assert.Equal(t, strings.Repeat("a", 50)+"...", metrics.SchemaLabel(long))
}

func TestWriteTextfile(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewWithRegistry(reg)
	m.ObserveValidation("user", nil, time.Millisecond)

	path := filepath.Join(t.TempDir(), "zskema.prom")
	require.NoError(t, metrics.WriteTextfile(path, reg))
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), `zskema_validations_total{outcome="valid",schema="user"} 1`)
}
