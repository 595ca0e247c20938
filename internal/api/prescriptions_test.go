package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackgods/clinic-appointment-scheduling/internal/appointment"
	"github.com/hackgods/clinic-appointment-scheduling/internal/auth"
)

func TestPrescriptionRoutes(t *testing.T) {
	ts := newTestServer(t)
	doc := ts.doctor(t, "Dr. Quinn", "quinn@clinic.test")
	other := ts.doctor(t, "Dr. Cox", "cox@clinic.test")
	pat := ts.patient(t, "Pat Rx", "rx@example.com")
	patTok := ts.token(t, pat.Email, auth.RolePatient)
	docTok := ts.token(t, doc.Email, auth.RoleDoctor)

	rec := ts.do(t, http.MethodPost, "/appointments", patTok, map[string]any{
		"doctor_id":        doc.ID.String(),
		"appointment_time": "2030-03-05T10:00:00Z",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	appt := decode[AppointmentResponse](t, rec)

	body := PrescriptionRequest{
		AppointmentID: appt.ID.String(),
		Medications:   []appointment.Medication{{Name: "Lisinopril", Dosage: "10mg", Frequency: "daily", DurationDays: 30}},
		DoctorNotes:   "recheck blood pressure in a month",
	}

	rec = ts.do(t, http.MethodPost, "/prescriptions", patTok, body)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = ts.do(t, http.MethodPost, "/prescriptions", ts.token(t, other.Email, auth.RoleDoctor), body)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = ts.do(t, http.MethodPost, "/prescriptions", docTok, PrescriptionRequest{AppointmentID: appt.ID.String()})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_prescription", decode[ErrorResponse](t, rec).Error)

	rec = ts.do(t, http.MethodPost, "/prescriptions", docTok, PrescriptionRequest{AppointmentID: "nope"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodPost, "/prescriptions", docTok, body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[PrescriptionResponse](t, rec)
	assert.Equal(t, "Pat Rx", created.PatientName)
	assert.True(t, created.Active)

	rec = ts.do(t, http.MethodGet, "/prescriptions/"+appt.ID.String(), docTok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]PrescriptionResponse](t, rec)
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)
	assert.Equal(t, 30, list[0].Medications[0].DurationDays)

	rec = ts.do(t, http.MethodGet, "/prescriptions/"+appt.ID.String(), patTok, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = ts.do(t, http.MethodGet, "/prescriptions/6f1c1d6e-0000-4000-8000-000000000000", docTok, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
