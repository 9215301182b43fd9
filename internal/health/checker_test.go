package health

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCheck struct {
	err error
}

func (f fakeCheck) HealthCheck(context.Context) error { return f.err }

func TestCheckerReportsAllComponents(t *testing.T) {
	c := NewChecker(slog.New(slog.NewTextHandler(io.Discard, nil)))
	c.AddCheck("database", fakeCheck{})
	c.AddCheck("redis", fakeCheck{err: errors.New("connection refused")})

	results := c.Check(context.Background())

	assert.Equal(t, "OK", results["database"])
	assert.Equal(t, "connection refused", results["redis"])
	assert.False(t, Healthy(results))
	assert.Equal(t, []string{"database", "redis"}, c.Names())
}

func TestHandlerStatusCodes(t *testing.T) {
	c := NewChecker(slog.New(slog.NewTextHandler(io.Discard, nil)))
	c.AddCheck("database", fakeCheck{})

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))
	require.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)

	c.AddCheck("redis", fakeCheck{err: errors.New("down")})
	rec = httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))
	require.Equal(t, 503, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"degraded"`)
}

func TestAddCheckIgnoresEmpty(t *testing.T) {
	c := NewChecker(nil)
	c.AddCheck("", fakeCheck{})
	c.AddCheck("db", nil)

	assert.Empty(t, c.Check(context.Background()))
}
