package appointment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/hackgods/clinic-appointment-scheduling/internal/config"
	redisclient "github.com/hackgods/clinic-appointment-scheduling/internal/redis"
)

var errBadToken = errors.New("bad token")

// tokenTable maps raw tokens to identifiers.
type tokenTable map[string]string

func (tt tokenTable) ExtractIdentifier(token string) (string, error) {
	id, ok := tt[token]
	if !ok {
		return "", errBadToken
	}
	return id, nil
}

func testConfig() config.Config {
	return config.Config{
		WorkStart:    9 * time.Hour,
		WorkEnd:      17 * time.Hour,
		SlotDuration: 30 * time.Minute,
		Location:     time.UTC,
	}
}

func newTestService(t *testing.T) (*Service, *MemoryRepository, tokenTable) {
	return newTestServiceWithLocker(t, nil)
}

func newTestServiceWithLocker(t *testing.T, locker redisclient.Locker) (*Service, *MemoryRepository, tokenTable) {
	t.Helper()
	repo := NewMemoryRepository()
	tokens := tokenTable{}
	svc := NewService(repo, locker, tokens, testConfig(), zerolog.Nop())
	return svc, repo, tokens
}

func addDoctor(t *testing.T, repo *MemoryRepository, name, specialty string, ranges ...string) *Doctor {
	t.Helper()
	d := &Doctor{
		ID:             uuid.New(),
		Name:           name,
		Specialty:      specialty,
		Email:          uuid.NewString()[:8] + "@clinic.test",
		AvailableTimes: ranges,
	}
	require.NoError(t, repo.CreateDoctor(context.Background(), d))
	return d
}

func addPatient(t *testing.T, repo *MemoryRepository, name, email string) *Patient {
	t.Helper()
	p := &Patient{
		ID:    uuid.New(),
		Name:  name,
		Email: email,
		Phone: uuid.NewString()[:10],
	}
	require.NoError(t, repo.CreatePatient(context.Background(), p))
	return p
}

func addAppointment(t *testing.T, repo *MemoryRepository, doctorID, patientID uuid.UUID, at time.Time) *Appointment {
	t.Helper()
	a := &Appointment{
		ID:              uuid.New(),
		DoctorID:        doctorID,
		PatientID:       patientID,
		AppointmentTime: at,
		Status:          StatusScheduled,
	}
	require.NoError(t, repo.SaveAppointment(context.Background(), a))
	return a
}

func at(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, time.UTC)
}

func starts(slots []TimeSlot) []string {
	out := make([]string, 0, len(slots))
	for _, s := range slots {
		out = append(out, s.Start.String())
	}
	return out
}

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}
