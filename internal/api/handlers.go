package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hackgods/clinic-appointment-scheduling/internal/appointment"
	"github.com/hackgods/clinic-appointment-scheduling/internal/auth"
)

const dateLayout = "2006-01-02"

// TokenIssuer signs a token for an authenticated identifier.
type TokenIssuer interface {
	Issue(identifier, role string) (string, error)
}

func parseID(w http.ResponseWriter, r *http.Request, code string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, code, "id must be a valid UUID")
		return uuid.Nil, false
	}
	return id, true
}

func parseDate(w http.ResponseWriter, r *http.Request, loc *time.Location) (time.Time, bool) {
	date, err := time.ParseInLocation(dateLayout, chi.URLParam(r, "date"), loc)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_date", "date must be YYYY-MM-DD")
		return time.Time{}, false
	}
	return date, true
}

func issueToken(w http.ResponseWriter, r *http.Request, issuer TokenIssuer, logger zerolog.Logger, identifier, role string) {
	token, err := issuer.Issue(identifier, role)
	if err != nil {
		handleServiceError(w, r, logger, err)
		return
	}
	writeJSON(w, http.StatusOK, TokenResponse{Token: token, Role: role})
}

// Logins

func adminLoginHandler(svc *appointment.Service, issuer TokenIssuer, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AdminLoginRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		admin, err := svc.AuthenticateAdmin(r.Context(), req.Username, req.Password)
		if err != nil {
			handleServiceError(w, r, logger, err)
			return
		}
		issueToken(w, r, issuer, logger, admin.Username, auth.RoleAdmin)
	}
}

func doctorLoginHandler(svc *appointment.Service, issuer TokenIssuer, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		doctor, err := svc.AuthenticateDoctor(r.Context(), req.Email, req.Password)
		if err != nil {
			handleServiceError(w, r, logger, err)
			return
		}
		issueToken(w, r, issuer, logger, doctor.Email, auth.RoleDoctor)
	}
}

func patientLoginHandler(svc *appointment.Service, issuer TokenIssuer, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		patient, err := svc.AuthenticatePatient(r.Context(), req.Email, req.Password)
		if err != nil {
			handleServiceError(w, r, logger, err)
			return
		}
		issueToken(w, r, issuer, logger, patient.Email, auth.RolePatient)
	}
}

// Patients

func registerPatientHandler(svc *appointment.Service, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterPatientRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if strings.TrimSpace(req.Email) == "" || req.Password == "" || strings.TrimSpace(req.Name) == "" {
			writeError(w, http.StatusBadRequest, "invalid_patient", "name, email and password are required")
			return
		}

		patient, err := svc.RegisterPatient(r.Context(), &appointment.Patient{
			Name:    strings.TrimSpace(req.Name),
			Email:   strings.TrimSpace(req.Email),
			Phone:   strings.TrimSpace(req.Phone),
			Address: strings.TrimSpace(req.Address),
		}, req.Password)
		if err != nil {
			handleServiceError(w, r, logger, err)
			return
		}
		writeJSON(w, http.StatusCreated, toPatientResponse(patient))
	}
}

func patientProfileHandler(svc *appointment.Service, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		patient, err := svc.PatientByEmail(r.Context(), identityFrom(r.Context()))
		if err != nil {
			handleServiceError(w, r, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, toPatientResponse(patient))
	}
}

func patientAppointmentsHandler(svc *appointment.Service, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		appts, err := svc.PatientAppointments(r.Context(), identityFrom(r.Context()), appointment.PatientFilter{
			Condition:  q.Get("condition"),
			DoctorName: q.Get("doctor"),
		})
		if err != nil {
			handleServiceError(w, r, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, toAppointmentResponses(appts, svc.WorkingHours().SlotDuration))
	}
}

// Doctors

func listDoctorsHandler(svc *appointment.Service, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doctors, err := svc.ListDoctors(r.Context())
		if err != nil {
			handleServiceError(w, r, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, toDoctorResponses(doctors))
	}
}

func filterDoctorsHandler(svc *appointment.Service, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		doctors, err := svc.FilterDoctors(r.Context(), appointment.DoctorFilter{
			Name:      q.Get("name"),
			Specialty: q.Get("specialty"),
			Period:    q.Get("time"),
		})
		if err != nil {
			handleServiceError(w, r, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, toDoctorResponses(doctors))
	}
}

func availabilityHandler(svc *appointment.Service, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(w, r, "invalid_doctor_id")
		if !ok {
			return
		}
		date, ok := parseDate(w, r, svc.Location())
		if !ok {
			return
		}

		if _, err := svc.GetDoctor(r.Context(), id); err != nil {
			handleServiceError(w, r, logger, err)
			return
		}

		slots, err := svc.Availability(r.Context(), id, date)
		if err != nil {
			handleServiceError(w, r, logger, err)
			return
		}

		writeJSON(w, http.StatusOK, AvailabilityResponse{
			DoctorID: id,
			Date:     date.Format(dateLayout),
			Slots:    toSlotResponses(date, slots),
		})
	}
}

func createDoctorHandler(svc *appointment.Service, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req DoctorRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if req.Password == "" {
			writeError(w, http.StatusBadRequest, "invalid_doctor", "password is required")
			return
		}
		d, err := req.toDoctor()
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_doctor", err.Error())
			return
		}

		created, err := svc.CreateDoctor(r.Context(), d, req.Password)
		if err != nil {
			handleServiceError(w, r, logger, err)
			return
		}
		writeJSON(w, http.StatusCreated, toDoctorResponse(created))
	}
}

func updateDoctorHandler(svc *appointment.Service, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(w, r, "invalid_doctor_id")
		if !ok {
			return
		}
		var req DoctorRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		d, err := req.toDoctor()
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_doctor", err.Error())
			return
		}
		d.ID = id

		updated, err := svc.UpdateDoctor(r.Context(), d, req.Password)
		if err != nil {
			handleServiceError(w, r, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, toDoctorResponse(updated))
	}
}

func deleteDoctorHandler(svc *appointment.Service, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(w, r, "invalid_doctor_id")
		if !ok {
			return
		}
		if err := svc.DeleteDoctor(r.Context(), id); err != nil {
			handleServiceError(w, r, logger, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// Appointments

func doctorAppointmentsHandler(svc *appointment.Service, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		date, ok := parseDate(w, r, svc.Location())
		if !ok {
			return
		}

		appts, err := svc.DoctorAppointments(r.Context(), identityFrom(r.Context()), date, r.URL.Query().Get("patient_name"))
		if err != nil {
			handleServiceError(w, r, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, toAppointmentResponses(appts, svc.WorkingHours().SlotDuration))
	}
}

// appointmentFromRequest binds the request to the calling patient. A body
// patient_id naming anyone else is an ownership violation.
func appointmentFromRequest(w http.ResponseWriter, r *http.Request, svc *appointment.Service, logger zerolog.Logger) (*appointment.Appointment, *appointment.Patient, bool) {
	var req AppointmentRequest
	if !decodeJSON(w, r, &req) {
		return nil, nil, false
	}

	doctorID, err := uuid.Parse(req.DoctorID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_doctor_id", "doctor_id must be a valid UUID")
		return nil, nil, false
	}
	if req.AppointmentTime.IsZero() {
		writeError(w, http.StatusBadRequest, "invalid_appointment_time", "appointment_time is required")
		return nil, nil, false
	}

	caller, err := svc.PatientByEmail(r.Context(), identityFrom(r.Context()))
	if err != nil {
		handleServiceError(w, r, logger, err)
		return nil, nil, false
	}

	if req.PatientID != "" {
		patientID, err := uuid.Parse(req.PatientID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_patient_id", "patient_id must be a valid UUID")
			return nil, nil, false
		}
		if patientID != caller.ID {
			handleServiceError(w, r, logger, appointment.ErrOwnershipViolation)
			return nil, nil, false
		}
	}

	return &appointment.Appointment{
		DoctorID:        doctorID,
		PatientID:       caller.ID,
		AppointmentTime: req.AppointmentTime,
	}, caller, true
}

func bookAppointmentHandler(svc *appointment.Service, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, _, ok := appointmentFromRequest(w, r, svc, logger)
		if !ok {
			return
		}

		appt, err := svc.Schedule(r.Context(), a)
		if err != nil {
			handleServiceError(w, r, logger, err)
			return
		}
		writeJSON(w, http.StatusCreated, toAppointmentResponse(appt, svc.WorkingHours().SlotDuration))
	}
}

func updateAppointmentHandler(svc *appointment.Service, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(w, r, "invalid_appointment_id")
		if !ok {
			return
		}
		a, caller, ok := appointmentFromRequest(w, r, svc, logger)
		if !ok {
			return
		}

		existing, err := svc.GetAppointment(r.Context(), id)
		if err != nil {
			handleServiceError(w, r, logger, err)
			return
		}
		if existing.PatientID != caller.ID {
			handleServiceError(w, r, logger, appointment.ErrOwnershipViolation)
			return
		}

		a.ID = id
		appt, err := svc.Update(r.Context(), a)
		if err != nil {
			handleServiceError(w, r, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, toAppointmentResponse(appt, svc.WorkingHours().SlotDuration))
	}
}

func cancelAppointmentHandler(svc *appointment.Service, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(w, r, "invalid_appointment_id")
		if !ok {
			return
		}
		if err := svc.Cancel(r.Context(), id, tokenFrom(r.Context())); err != nil {
			handleServiceError(w, r, logger, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func changeStatusHandler(svc *appointment.Service, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(w, r, "invalid_appointment_id")
		if !ok {
			return
		}
		var req StatusRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if req.Status == nil {
			writeError(w, http.StatusBadRequest, "invalid_status", "status is required")
			return
		}

		if err := svc.SetStatusAsDoctor(r.Context(), identityFrom(r.Context()), id, appointment.Status(*req.Status)); err != nil {
			handleServiceError(w, r, logger, err)
			return
		}

		appt, err := svc.GetAppointment(r.Context(), id)
		if err != nil {
			handleServiceError(w, r, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, toAppointmentResponse(appt, svc.WorkingHours().SlotDuration))
	}
}

// Prescriptions

func issuePrescriptionHandler(svc *appointment.Service, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req PrescriptionRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		appointmentID, err := uuid.Parse(req.AppointmentID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_appointment_id", "appointment_id must be a valid UUID")
			return
		}

		rx, err := svc.IssuePrescription(r.Context(), identityFrom(r.Context()), &appointment.Prescription{
			AppointmentID: appointmentID,
			Medications:   req.Medications,
			DoctorNotes:   req.DoctorNotes,
		})
		if err != nil {
			handleServiceError(w, r, logger, err)
			return
		}
		writeJSON(w, http.StatusCreated, toPrescriptionResponse(rx))
	}
}

func listPrescriptionsHandler(svc *appointment.Service, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		appointmentID, err := uuid.Parse(chi.URLParam(r, "appointmentID"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_appointment_id", "appointment id must be a valid UUID")
			return
		}

		rxs, err := svc.Prescriptions(r.Context(), identityFrom(r.Context()), appointmentID)
		if err != nil {
			handleServiceError(w, r, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, toPrescriptionResponses(rxs))
	}
}
