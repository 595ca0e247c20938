package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/hackgods/clinic-appointment-scheduling/internal/appointment"
	"github.com/hackgods/clinic-appointment-scheduling/internal/auth"
	"github.com/hackgods/clinic-appointment-scheduling/internal/config"
)

type testServer struct {
	handler http.Handler
	svc     *appointment.Service
	repo    *appointment.MemoryRepository
	issuer  *auth.Issuer
}

type serverOption func(*RouterConfig)

func newTestServer(t *testing.T, opts ...serverOption) *testServer {
	t.Helper()

	cfg := config.Config{
		WorkStart:    9 * time.Hour,
		WorkEnd:      17 * time.Hour,
		SlotDuration: 30 * time.Minute,
		Location:     time.UTC,
	}
	repo := appointment.NewMemoryRepository()
	issuer := auth.NewIssuer("api-test-secret", time.Hour)
	svc := appointment.NewService(repo, nil, issuer, cfg, zerolog.Nop())

	hash, err := auth.HashPassword("admin-pw")
	require.NoError(t, err)
	repo.AddAdmin(appointment.Admin{Username: "admin", PasswordHash: hash})

	rc := RouterConfig{
		Service: svc,
		Issuer:  issuer,
		Gate:    auth.NewGate(issuer, zerolog.Nop()),
		Logger:  zerolog.Nop(),
		Env:     "test",
		Version: "test",
	}
	for _, opt := range opts {
		opt(&rc)
	}

	return &testServer{
		handler: NewRouter(rc),
		svc:     svc,
		repo:    repo,
		issuer:  issuer,
	}
}

func (ts *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) token(t *testing.T, identifier, role string) string {
	t.Helper()
	tok, err := ts.issuer.Issue(identifier, role)
	require.NoError(t, err)
	return tok
}

func (ts *testServer) doctor(t *testing.T, name, email string) *appointment.Doctor {
	t.Helper()
	d, err := ts.svc.CreateDoctor(context.Background(), &appointment.Doctor{
		Name:           name,
		Specialty:      "Cardiology",
		Email:          email,
		AvailableTimes: []string{"09:00-12:00"},
	}, "doc-pw")
	require.NoError(t, err)
	return d
}

func (ts *testServer) patient(t *testing.T, name, email string) *appointment.Patient {
	t.Helper()
	p, err := ts.svc.RegisterPatient(context.Background(), &appointment.Patient{
		Name:  name,
		Email: email,
		Phone: email,
	}, "pat-pw")
	require.NoError(t, err)
	return p
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}
