package api

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func pinger(err error) Pinger {
	return PingFunc(func(context.Context) error { return err })
}

func TestLiveness(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/health/live", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode[LivenessResponse](t, rec).Status)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestReadiness(t *testing.T) {
	down := errors.New("down")

	tests := []struct {
		name      string
		postgres  Pinger
		redis     Pinger
		lockRedis bool
		code      int
		status    string
		pgState   string
		redisStat string
	}{
		{"nothing wired", nil, nil, false, http.StatusOK, "ok", "disabled", "disabled"},
		{"all up", pinger(nil), pinger(nil), false, http.StatusOK, "ok", "ok", "ok"},
		{"redis down", pinger(nil), pinger(down), false, http.StatusOK, "degraded", "ok", "down"},
		{"redis down with redis lock", pinger(nil), pinger(down), true, http.StatusServiceUnavailable, "error", "ok", "down"},
		{"redis up with redis lock", pinger(nil), pinger(nil), true, http.StatusOK, "ok", "ok", "ok"},
		{"postgres down", pinger(down), pinger(nil), false, http.StatusServiceUnavailable, "error", "down", "ok"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t, func(rc *RouterConfig) {
				rc.Postgres = tt.postgres
				rc.Redis = tt.redis
				rc.RedisRequired = tt.lockRedis
			})

			rec := ts.do(t, http.MethodGet, "/health/ready", "", nil)
			assert.Equal(t, tt.code, rec.Code)

			resp := decode[ReadinessResponse](t, rec)
			assert.Equal(t, tt.status, resp.Status)
			assert.Equal(t, tt.pgState, resp.Dependencies["postgres"])
			assert.Equal(t, tt.redisStat, resp.Dependencies["redis"])
		})
	}
}
