package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"safedose-api/internal/config"
	"safedose-api/internal/domain/interactions"
	"safedose-api/internal/platform/logger"
)

func loadConfig(t *testing.T) *config.Config {
	t.Helper()
	t.Chdir(t.TempDir())
	cfg, err := config.Load("")
	require.NoError(t, err)
	return cfg
}

func TestNewGeneratorWithoutKey(t *testing.T) {
	cfg := loadConfig(t)

	gen, err := NewGenerator(cfg, logger.NewNop())
	require.NoError(t, err)
	assert.Nil(t, gen)
}

func TestNewInteractionsTableFallback(t *testing.T) {
	cfg := loadConfig(t)

	svc, closer, err := NewInteractions(context.Background(), cfg, nil, logger.NewNop())
	require.NoError(t, err)
	defer closer()

	assert.Equal(t, interactions.ModeHybrid, svc.Mode())

	res, err := svc.Analyze(context.Background(), []string{"warfarin", "aspirin"})
	require.NoError(t, err)
	assert.Equal(t, interactions.SeverityHigh, res.RiskLevel)
}

func TestNewInteractionsSkipsUnreachableRedis(t *testing.T) {
	cfg := loadConfig(t)
	cfg.Cache.RedisURL = "redis://127.0.0.1:1/0"

	svc, closer, err := NewInteractions(context.Background(), cfg, nil, logger.NewNop())
	require.NoError(t, err)
	defer closer()
	assert.NotNil(t, svc)
}

func TestBuildInMemory(t *testing.T) {
	cfg := loadConfig(t)

	a, err := Build(context.Background(), cfg, nil, logger.NewNop())
	require.NoError(t, err)
	defer a.Close()
	require.NotNil(t, a.Retention)

	rec := httptest.NewRecorder()
	a.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/check-risk",
		strings.NewReader(`{"medication_list":["Metformin","Lisinopril"]}`)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"risk_level":"LOW"`)
}

func TestBuildRejectsUnknownTimeZone(t *testing.T) {
	cfg := loadConfig(t)
	cfg.Calendar.TimeZone = "Mars/Olympus_Mons"

	_, err := Build(context.Background(), cfg, nil, logger.NewNop())
	require.Error(t, err)
}
