package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/hackgods/clinic-appointment-scheduling/internal/appointment"
	"github.com/hackgods/clinic-appointment-scheduling/internal/auth"
)

type RouterConfig struct {
	Service    *appointment.Service
	Issuer     TokenIssuer
	Gate       *auth.Gate
	LoginLimit *RateLimiter // nil disables login throttling
	Postgres   Pinger
	Redis      Pinger
	// RedisRequired makes a Redis outage fail readiness.
	RedisRequired bool
	Logger        zerolog.Logger
	Env           string
	Version       string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	svc, log := cfg.Service, cfg.Logger

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(log))
	r.Use(RecoveryMiddleware(log))

	health := NewHealthHandler(cfg.Postgres, cfg.Redis, cfg.RedisRequired, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	patientOnly := RequireRole(cfg.Gate, auth.RolePatient)
	doctorOnly := RequireRole(cfg.Gate, auth.RoleDoctor)
	adminOnly := RequireRole(cfg.Gate, auth.RoleAdmin)
	anyRole := RequireRole(cfg.Gate, auth.RolePatient, auth.RoleDoctor, auth.RoleAdmin)

	// Logins
	r.Group(func(r chi.Router) {
		if cfg.LoginLimit != nil {
			r.Use(cfg.LoginLimit.Middleware)
		}
		r.Post("/admin/login", adminLoginHandler(svc, cfg.Issuer, log))
		r.Post("/doctor/login", doctorLoginHandler(svc, cfg.Issuer, log))
		r.Post("/patient/login", patientLoginHandler(svc, cfg.Issuer, log))
	})

	// Patients
	r.Post("/patient", registerPatientHandler(svc, log))
	r.With(patientOnly).Get("/patient/me", patientProfileHandler(svc, log))
	r.With(patientOnly).Get("/patient/appointments", patientAppointmentsHandler(svc, log))

	// Doctors
	r.Get("/doctor", listDoctorsHandler(svc, log))
	r.Get("/doctor/filter", filterDoctorsHandler(svc, log))
	r.With(anyRole).Get("/doctor/{id}/availability/{date}", availabilityHandler(svc, log))
	r.With(adminOnly).Post("/doctor", createDoctorHandler(svc, log))
	r.With(adminOnly).Put("/doctor/{id}", updateDoctorHandler(svc, log))
	r.With(adminOnly).Delete("/doctor/{id}", deleteDoctorHandler(svc, log))

	// Appointments
	r.With(doctorOnly).Get(`/appointments/{date:\d{4}-\d{2}-\d{2}}`, doctorAppointmentsHandler(svc, log))
	r.With(patientOnly).Post("/appointments", bookAppointmentHandler(svc, log))
	r.With(patientOnly).Put("/appointments/{id}", updateAppointmentHandler(svc, log))
	r.With(patientOnly).Delete("/appointments/{id}", cancelAppointmentHandler(svc, log))
	r.With(doctorOnly).Patch("/appointments/{id}/status", changeStatusHandler(svc, log))

	// Prescriptions
	r.With(doctorOnly).Post("/prescriptions", issuePrescriptionHandler(svc, log))
	r.With(doctorOnly).Get("/prescriptions/{appointmentID}", listPrescriptionsHandler(svc, log))

	return r
}
