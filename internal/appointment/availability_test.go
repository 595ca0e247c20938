package appointment

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAvailabilityExcludesBookedStart(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	doc := addDoctor(t, repo, "Dr. Jane Doe", "Cardiology")
	pat := addPatient(t, repo, "Sam Patient", "sam@example.com")
	addAppointment(t, repo, doc.ID, pat.ID, at(2024, time.January, 10, 9, 30))

	free, err := svc.Availability(ctx, doc.ID, at(2024, time.January, 10, 0, 0))
	require.NoError(t, err)

	require.Len(t, free, 15)
	assert.NotContains(t, starts(free), "09:30")
	assert.Equal(t, "09:00", free[0].Start.String())
	assert.Equal(t, "10:00", free[1].Start.String())
	assert.Equal(t, "16:30", free[14].Start.String())
}

func TestAvailabilityMatchesExactStartOnly(t *testing.T) {
	svc, repo, _ := newTestService(t)
	doc := addDoctor(t, repo, "Dr. Exact", "Neurology")
	pat := addPatient(t, repo, "Pat", "pat@example.com")

	// overlaps 10:00 and 10:30 but starts at neither
	addAppointment(t, repo, doc.ID, pat.ID, at(2024, time.January, 10, 10, 15))

	free, err := svc.Availability(context.Background(), doc.ID, at(2024, time.January, 10, 0, 0))
	require.NoError(t, err)
	assert.Len(t, free, 16)
	assert.Contains(t, starts(free), "10:00")
	assert.Contains(t, starts(free), "10:30")
}

func TestAvailabilityIgnoresOtherDaysAndDoctors(t *testing.T) {
	svc, repo, _ := newTestService(t)
	doc := addDoctor(t, repo, "Dr. One", "ENT")
	other := addDoctor(t, repo, "Dr. Two", "ENT")
	pat := addPatient(t, repo, "Pat", "pat@example.com")

	addAppointment(t, repo, doc.ID, pat.ID, at(2024, time.January, 11, 9, 0))
	addAppointment(t, repo, other.ID, pat.ID, at(2024, time.January, 10, 9, 0))
	addAppointment(t, repo, doc.ID, pat.ID, at(2024, time.January, 10, 23, 59))

	free, err := svc.Availability(context.Background(), doc.ID, at(2024, time.January, 10, 15, 0))
	require.NoError(t, err)
	assert.Len(t, free, 16)
}

func TestAvailabilityCountsEveryStatus(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()
	doc := addDoctor(t, repo, "Dr. Status", "ENT")
	pat := addPatient(t, repo, "Pat", "pat@example.com")

	a := addAppointment(t, repo, doc.ID, pat.ID, at(2024, time.January, 10, 11, 0))
	require.NoError(t, repo.UpdateAppointmentStatus(ctx, a.ID, StatusCompleted))

	free, err := svc.Availability(ctx, doc.ID, at(2024, time.January, 10, 0, 0))
	require.NoError(t, err)
	assert.NotContains(t, starts(free), "11:00")
}

func TestAvailabilityIsIdempotent(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()
	doc := addDoctor(t, repo, "Dr. Same", "ENT")
	pat := addPatient(t, repo, "Pat", "pat@example.com")
	addAppointment(t, repo, doc.ID, pat.ID, at(2024, time.January, 10, 14, 0))

	day := at(2024, time.January, 10, 0, 0)
	first, err := svc.Availability(ctx, doc.ID, day)
	require.NoError(t, err)
	second, err := svc.Availability(ctx, doc.ID, day)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestAvailabilityUsesServiceLocation(t *testing.T) {
	repo := NewMemoryRepository()
	cfg := testConfig()
	cfg.Location = time.FixedZone("UTC-5", -5*60*60)
	svc := NewService(repo, nil, tokenTable{}, cfg, testLogger())

	doc := addDoctor(t, repo, "Dr. Zone", "ENT")
	pat := addPatient(t, repo, "Pat", "pat@example.com")
	// 14:00 UTC is 09:00 at UTC-5
	addAppointment(t, repo, doc.ID, pat.ID, time.Date(2024, time.January, 10, 14, 0, 0, 0, time.UTC))

	day := time.Date(2024, time.January, 10, 0, 0, 0, 0, cfg.Location)
	free, err := svc.Availability(context.Background(), doc.ID, day)
	require.NoError(t, err)
	assert.NotContains(t, starts(free), "09:00")
	assert.Contains(t, starts(free), "14:00")
}
