package telemetry_test

import (
	"context"
	"testing"

	"github.com/projectmgmt/backend/internal/infrastructure/config"
	"github.com/projectmgmt/backend/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type widget struct {
	ID   int
	Name string
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func TestDBInstrumentation_RecordsQueries(t *testing.T) {
	sr := setupTestTracer(t)
	reader := sdkmetric.NewManualReader()
	mp := telemetry.NewMeterProviderWithReader(reader, zap.NewNop())

	db := openTestDB(t)
	require.NoError(t, db.AutoMigrate(&widget{}))

	inst, err := telemetry.NewDBInstrumentation(mp.Meter("db"), config.TelemetryConfig{
		Enabled:           true,
		DBTraceEnabled:    true,
		DBSlowQueryThresh: 0,
	}, "sqlite", zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, inst.Register(db))

	ctx := context.Background()
	require.NoError(t, db.WithContext(ctx).Create(&widget{Name: "gear"}).Error)
	var got []widget
	require.NoError(t, db.WithContext(ctx).Find(&got).Error)
	assert.Len(t, got, 1)

	rm := collect(t, reader)
	durations, ok := findMetric(rm, "db.query.duration")
	require.True(t, ok)
	hist, ok := durations.Data.(metricdata.Histogram[float64])
	require.True(t, ok)

	ops := map[string]bool{}
	for _, dp := range hist.DataPoints {
		v, _ := dp.Attributes.Value(telemetry.AttrDBOperation)
		ops[v.AsString()] = true
	}
	assert.True(t, ops["create"])
	assert.True(t, ops["select"])

	spans := sr.Ended()
	require.NotEmpty(t, spans, "otelgorm should emit query spans")
	var enriched int
	for _, sp := range spans {
		for _, kv := range sp.Attributes() {
			if kv.Key == "db.rows_affected" {
				enriched++
			}
		}
	}
	assert.Equal(t, len(spans), enriched, "every query span carries rows affected")
}

func TestDBInstrumentation_RecordsErrorsWhileTracing(t *testing.T) {
	setupTestTracer(t)
	reader := sdkmetric.NewManualReader()
	mp := telemetry.NewMeterProviderWithReader(reader, zap.NewNop())

	db := openTestDB(t)
	inst, err := telemetry.NewDBInstrumentation(mp.Meter("db"), config.TelemetryConfig{
		Enabled:        true,
		DBTraceEnabled: true,
	}, "sqlite", zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, inst.Register(db))

	var got []widget
	require.Error(t, db.WithContext(context.Background()).Table("missing_table").Find(&got).Error)

	rm := collect(t, reader)
	_, ok := findMetric(rm, "db.query.duration")
	assert.True(t, ok)
	errs, ok := findMetric(rm, "db.query.errors")
	require.True(t, ok)
	assert.Equal(t, int64(1), sumFor(t, errs, telemetry.AttrDBOperation.String("select")))
}

func TestDBInstrumentation_PoolStats(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := telemetry.NewMeterProviderWithReader(reader, zap.NewNop())
	inst, err := telemetry.NewDBInstrumentation(mp.Meter("db"), config.TelemetryConfig{}, "sqlite", zap.NewNop())
	require.NoError(t, err)

	db := openTestDB(t)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Ping())

	inst.StartPoolStatsCollection(context.Background(), sqlDB, 0)
	inst.Stop()

	open, ok := findMetric(collect(t, reader), "db.pool.connections.open")
	require.True(t, ok)
	assert.Equal(t, int64(1), gaugeValue(t, open))
}
