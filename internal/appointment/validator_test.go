package appointment

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	doc := addDoctor(t, repo, "Dr. Valid", "Cardiology")
	pat := addPatient(t, repo, "Pat", "pat@example.com")
	addAppointment(t, repo, doc.ID, pat.ID, at(2024, time.January, 10, 9, 30))

	tests := []struct {
		name    string
		appt    Appointment
		wantErr error
	}{
		{
			name: "free slot",
			appt: Appointment{DoctorID: doc.ID, AppointmentTime: at(2024, time.January, 10, 10, 0)},
		},
		{
			name:    "booked slot",
			appt:    Appointment{DoctorID: doc.ID, AppointmentTime: at(2024, time.January, 10, 9, 30)},
			wantErr: ErrSlotUnavailable,
		},
		{
			name:    "off grid",
			appt:    Appointment{DoctorID: doc.ID, AppointmentTime: at(2024, time.January, 10, 10, 10)},
			wantErr: ErrSlotUnavailable,
		},
		{
			name:    "outside working hours",
			appt:    Appointment{DoctorID: doc.ID, AppointmentTime: at(2024, time.January, 10, 17, 0)},
			wantErr: ErrSlotUnavailable,
		},
		{
			name:    "seconds set",
			appt:    Appointment{DoctorID: doc.ID, AppointmentTime: at(2024, time.January, 10, 10, 0).Add(time.Second)},
			wantErr: ErrSlotUnavailable,
		},
		{
			name:    "unknown doctor",
			appt:    Appointment{DoctorID: uuid.New(), AppointmentTime: at(2024, time.January, 10, 10, 0)},
			wantErr: ErrDoctorNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.Validate(ctx, &tt.appt)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestValidateDoesNotCheckPatient(t *testing.T) {
	svc, repo, _ := newTestService(t)
	doc := addDoctor(t, repo, "Dr. Valid", "Cardiology")

	err := svc.Validate(context.Background(), &Appointment{
		DoctorID:        doc.ID,
		PatientID:       uuid.New(),
		AppointmentTime: at(2024, time.January, 10, 11, 0),
	})
	assert.NoError(t, err)
}
