package appointment

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(ds []Doctor) []string {
	out := make([]string, 0, len(ds))
	for _, d := range ds {
		out = append(out, d.Name+"/"+d.Specialty)
	}
	sort.Strings(out)
	return out
}

func TestFilterDoctorsJaneExample(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()
	addDoctor(t, repo, "Jane", "Cardio", "09:00-10:00")
	addDoctor(t, repo, "Jane", "Derm", "14:00-15:00")

	got, err := svc.FilterDoctors(ctx, DoctorFilter{Name: "Jane", Period: "AM"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Jane/Cardio"}, names(got))

	got, err = svc.FilterDoctors(ctx, DoctorFilter{Specialty: "Derm"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Jane/Derm"}, names(got))

	got, err = svc.FilterDoctors(ctx, DoctorFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Jane/Cardio", "Jane/Derm"}, names(got))
}

func TestFilterDoctorsAllCombinations(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	addDoctor(t, repo, "Anna Grey", "Cardiology", "09:00-11:00")
	addDoctor(t, repo, "Anna Bell", "Dermatology", "13:00-16:00")
	addDoctor(t, repo, "Mark Grey", "Cardiology", "14:00-17:00")
	weekly := &Doctor{
		ID:                 uuid.New(),
		Name:               "Olga Brown",
		Specialty:          "cardiology",
		Email:              "olga@clinic.test",
		WeeklyAvailability: map[time.Weekday][]TimeOfDay{time.Monday: {NewTimeOfDay(8, 0)}},
	}
	require.NoError(t, repo.CreateDoctor(ctx, weekly))
	addDoctor(t, repo, "Ivan Idle", "Cardiology")

	tests := []struct {
		name   string
		filter DoctorFilter
		want   []string
	}{
		{
			name:   "name specialty period",
			filter: DoctorFilter{Name: "anna", Specialty: "CARDIOLOGY", Period: "am"},
			want:   []string{"Anna Grey/Cardiology"},
		},
		{
			name:   "name period",
			filter: DoctorFilter{Name: "Anna", Period: "PM"},
			want:   []string{"Anna Bell/Dermatology"},
		},
		{
			name:   "name specialty",
			filter: DoctorFilter{Name: "grey", Specialty: "cardiology"},
			want:   []string{"Anna Grey/Cardiology", "Mark Grey/Cardiology"},
		},
		{
			name:   "specialty period",
			filter: DoctorFilter{Specialty: "Cardiology", Period: "AM"},
			want:   []string{"Anna Grey/Cardiology", "Olga Brown/cardiology"},
		},
		{
			name:   "name only",
			filter: DoctorFilter{Name: "Grey"},
			want:   []string{"Anna Grey/Cardiology", "Mark Grey/Cardiology"},
		},
		{
			name:   "specialty only",
			filter: DoctorFilter{Specialty: "dermatology"},
			want:   []string{"Anna Bell/Dermatology"},
		},
		{
			name:   "period only",
			filter: DoctorFilter{Period: "PM"},
			want:   []string{"Anna Bell/Dermatology", "Mark Grey/Cardiology"},
		},
		{
			name:   "none",
			filter: DoctorFilter{},
			want: []string{
				"Anna Bell/Dermatology",
				"Anna Grey/Cardiology",
				"Ivan Idle/Cardiology",
				"Mark Grey/Cardiology",
				"Olga Brown/cardiology",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.FilterDoctors(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(got))
		})
	}
}

func TestFilterDoctorsNameCaseAsymmetry(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()
	addDoctor(t, repo, "Anna Grey", "Cardiology", "09:00-11:00")

	got, err := svc.FilterDoctors(ctx, DoctorFilter{Name: "grey"})
	require.NoError(t, err)
	assert.Empty(t, got, "name-only search is case-sensitive")

	got, err = svc.FilterDoctors(ctx, DoctorFilter{Name: "grey", Specialty: "cardiology"})
	require.NoError(t, err)
	assert.Len(t, got, 1, "name+specialty search is case-insensitive")
}

func TestFilterDoctorsNullSentinel(t *testing.T) {
	svc, repo, _ := newTestService(t)
	addDoctor(t, repo, "Anna Grey", "Cardiology", "09:00-11:00")
	addDoctor(t, repo, "Mark Grey", "Dermatology", "14:00-15:00")

	got, err := svc.FilterDoctors(context.Background(), DoctorFilter{Name: "null", Specialty: "null", Period: "null"})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = svc.FilterDoctors(context.Background(), DoctorFilter{Name: "null", Specialty: "Dermatology", Period: ""})
	require.NoError(t, err)
	assert.Equal(t, []string{"Mark Grey/Dermatology"}, names(got))
}

func TestFilterDoctorsInvalidPeriod(t *testing.T) {
	svc, repo, _ := newTestService(t)
	addDoctor(t, repo, "Anna Grey", "Cardiology", "09:00-11:00")

	_, err := svc.FilterDoctors(context.Background(), DoctorFilter{Period: "noon"})
	assert.ErrorIs(t, err, ErrInvalidPeriod)
}

func TestFilterKindPrecedence(t *testing.T) {
	tests := []struct {
		f    DoctorFilter
		want filterKind
	}{
		{DoctorFilter{Name: "a", Specialty: "b", Period: "AM"}, filterNameSpecialtyPeriod},
		{DoctorFilter{Name: "a", Period: "AM"}, filterNamePeriod},
		{DoctorFilter{Name: "a", Specialty: "b"}, filterNameSpecialty},
		{DoctorFilter{Specialty: "b", Period: "AM"}, filterSpecialtyPeriod},
		{DoctorFilter{Name: "a"}, filterName},
		{DoctorFilter{Specialty: "b"}, filterSpecialty},
		{DoctorFilter{Period: "AM"}, filterPeriod},
		{DoctorFilter{Name: " ", Specialty: "null"}, filterNone},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.f.kind(), "%+v", tt.f)
	}
	assert.Len(t, searchStrategies, 8)
}
