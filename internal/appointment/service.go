package appointment

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hackgods/clinic-appointment-scheduling/internal/config"
	redisclient "github.com/hackgods/clinic-appointment-scheduling/internal/redis"
)

const (
	EventAppointmentBooked        = "APPOINTMENT_BOOKED"
	EventAppointmentUpdated       = "APPOINTMENT_UPDATED"
	EventAppointmentCancelled     = "APPOINTMENT_CANCELLED"
	EventAppointmentStatusChanged = "APPOINTMENT_STATUS_CHANGED"
	EventDoctorDeleted            = "DOCTOR_DELETED"
	EventPrescriptionIssued       = "PRESCRIPTION_ISSUED"
)

// nullFilter is the literal clients send for an absent filter value.
const nullFilter = "null"

func present(v string) bool {
	v = strings.TrimSpace(v)
	return v != "" && v != nullFilter
}

// IdentityExtractor pulls the caller identifier out of a token that has
// already been checked by the authorization gate.
type IdentityExtractor interface {
	ExtractIdentifier(token string) (string, error)
}

type Service struct {
	repo   Repository
	locker redisclient.Locker
	tokens IdentityExtractor
	hours  WorkingHours
	loc    *time.Location
	log    zerolog.Logger
}

func NewService(repo Repository, locker redisclient.Locker, tokens IdentityExtractor, cfg config.Config, logger zerolog.Logger) *Service {
	if locker == nil {
		locker = redisclient.NopLocker{}
	}
	hours := DefaultWorkingHours
	if cfg.SlotDuration > 0 && cfg.WorkStart < cfg.WorkEnd {
		hours = WorkingHours{
			Start:        TimeOfDay(cfg.WorkStart),
			End:          TimeOfDay(cfg.WorkEnd),
			SlotDuration: cfg.SlotDuration,
		}
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		repo:   repo,
		locker: locker,
		tokens: tokens,
		hours:  hours,
		loc:    loc,
		log:    logger.With().Str("component", "appointment").Logger(),
	}
}

func (s *Service) WorkingHours() WorkingHours { return s.hours }

func (s *Service) Location() *time.Location { return s.loc }

// Schedule validates the requested slot and commits the booking while
// holding the slot lock for the doctor and start time. A lock that could
// not be taken because its backend failed is a store failure.
func (s *Service) Schedule(ctx context.Context, a *Appointment) (*Appointment, error) {
	var (
		booked *Appointment
		ran    bool
	)

	err := s.locker.WithSlotLock(ctx, a.DoctorID, a.AppointmentTime, func(lockCtx context.Context) error {
		ran = true
		if err := s.Validate(lockCtx, a); err != nil {
			return err
		}
		appt, err := s.Book(lockCtx, a)
		if err != nil {
			return err
		}
		booked = appt
		return nil
	})
	switch {
	case err == nil:
		return booked, nil
	case errors.Is(err, redisclient.ErrLockNotAcquired):
		return nil, ErrSlotBeingBooked
	case !ran:
		s.log.Error().Err(err).Str("doctor_id", a.DoctorID.String()).Msg("slot lock unavailable")
		return nil, storeErr("acquire slot lock", err)
	default:
		return nil, err
	}
}

// Book persists a new appointment once both participants resolve. It does
// not look at slot availability; see Validate.
func (s *Service) Book(ctx context.Context, a *Appointment) (*Appointment, error) {
	if err := s.requirePatient(ctx, a.PatientID); err != nil {
		return nil, err
	}
	if err := s.requireDoctor(ctx, a.DoctorID); err != nil {
		return nil, err
	}

	appt := *a
	if appt.ID == uuid.Nil {
		appt.ID = uuid.New()
	}
	appt.Status = StatusScheduled

	if err := s.repo.SaveAppointment(ctx, &appt); err != nil {
		s.log.Error().Err(err).Str("appointment_id", appt.ID.String()).Msg("save appointment failed")
		return nil, storeErr("save appointment", err)
	}

	s.logEvent(appt.ID, EventAppointmentBooked, map[string]any{
		"doctor_id":        appt.DoctorID.String(),
		"patient_id":       appt.PatientID.String(),
		"appointment_time": appt.AppointmentTime,
	})

	return &appt, nil
}

// Update overwrites an existing appointment. Checks run in a fixed order so
// the caller gets the most specific error: appointment, patient, doctor.
// The stored status is kept; status moves go through ChangeStatus.
func (s *Service) Update(ctx context.Context, a *Appointment) (*Appointment, error) {
	existing, err := s.repo.GetAppointmentByID(ctx, a.ID)
	if err != nil {
		return nil, passNotFound("load appointment", err, ErrAppointmentNotFound)
	}
	if err := s.requirePatient(ctx, a.PatientID); err != nil {
		return nil, err
	}
	if err := s.requireDoctor(ctx, a.DoctorID); err != nil {
		return nil, err
	}
	if existing.Status.Terminal() {
		return nil, ErrInvalidStatusTransition
	}

	appt := *a
	appt.Status = existing.Status
	appt.CreatedAt = existing.CreatedAt

	if err := s.repo.SaveAppointment(ctx, &appt); err != nil {
		s.log.Error().Err(err).Str("appointment_id", appt.ID.String()).Msg("update appointment failed")
		return nil, storeErr("update appointment", err)
	}

	s.logEvent(appt.ID, EventAppointmentUpdated, map[string]any{
		"doctor_id":        appt.DoctorID.String(),
		"patient_id":       appt.PatientID.String(),
		"appointment_time": appt.AppointmentTime,
	})

	return &appt, nil
}

// Cancel deletes the appointment if the token's holder is its patient.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID, callerToken string) error {
	appt, err := s.repo.GetAppointmentByID(ctx, id)
	if err != nil {
		return passNotFound("load appointment", err, ErrAppointmentNotFound)
	}

	identifier, err := s.tokens.ExtractIdentifier(callerToken)
	if err != nil {
		return ErrOwnershipViolation
	}

	caller, err := s.repo.GetPatientByEmail(ctx, identifier)
	if err != nil {
		if errors.Is(err, ErrPatientNotFound) {
			return ErrOwnershipViolation
		}
		return storeErr("load caller", err)
	}
	if caller.ID != appt.PatientID {
		s.log.Warn().
			Str("appointment_id", id.String()).
			Str("caller_id", caller.ID.String()).
			Msg("cancel rejected: caller does not own appointment")
		return ErrOwnershipViolation
	}

	if err := s.repo.DeleteAppointment(ctx, id); err != nil {
		s.log.Error().Err(err).Str("appointment_id", id.String()).Msg("delete appointment failed")
		return storeErr("delete appointment", err)
	}

	s.logEvent(id, EventAppointmentCancelled, map[string]any{
		"patient_id": caller.ID.String(),
	})
	return nil
}

// ChangeStatus writes the status unconditionally. Callers must have
// checked that the appointment exists.
func (s *Service) ChangeStatus(ctx context.Context, id uuid.UUID, status Status) error {
	if !status.Valid() {
		return ErrInvalidStatus
	}
	if err := s.repo.UpdateAppointmentStatus(ctx, id, status); err != nil {
		return storeErr("update appointment status", err)
	}
	s.logEvent(id, EventAppointmentStatusChanged, map[string]any{
		"status": status.String(),
	})
	return nil
}

// SetStatusAsDoctor lets a doctor move one of their own appointments to
// a new status.
func (s *Service) SetStatusAsDoctor(ctx context.Context, doctorIdentity string, id uuid.UUID, status Status) error {
	if !status.Valid() {
		return ErrInvalidStatus
	}
	_, appt, err := s.ownAppointment(ctx, doctorIdentity, id)
	if err != nil {
		return err
	}
	if appt.Status.Terminal() && appt.Status != status {
		return ErrInvalidStatusTransition
	}
	return s.ChangeStatus(ctx, id, status)
}

// GetAppointment is a plain lookup.
func (s *Service) GetAppointment(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	appt, err := s.repo.GetAppointmentByID(ctx, id)
	if err != nil {
		return nil, passNotFound("load appointment", err, ErrAppointmentNotFound)
	}
	return appt, nil
}

// DoctorAppointments lists the doctor's appointments on date, optionally
// narrowed by a case-insensitive patient name substring.
func (s *Service) DoctorAppointments(ctx context.Context, doctorIdentity string, date time.Time, patientName string) ([]Appointment, error) {
	doctor, err := s.repo.GetDoctorByEmail(ctx, doctorIdentity)
	if err != nil {
		return nil, passNotFound("load doctor", err, ErrDoctorNotFound)
	}

	if !present(patientName) {
		patientName = ""
	}

	from, to := s.dayBounds(date)
	appts, err := s.repo.ListDoctorAppointmentsBetween(ctx, doctor.ID, from, to, strings.TrimSpace(patientName))
	if err != nil {
		return nil, storeErr("list doctor appointments", err)
	}
	return appts, nil
}

// PatientFilter narrows a patient's own appointment list.
type PatientFilter struct {
	Condition  string // past, future
	DoctorName string
}

// PatientAppointments lists the caller's appointments. Condition "past"
// selects completed ones, "future" scheduled ones.
func (s *Service) PatientAppointments(ctx context.Context, patientIdentity string, f PatientFilter) ([]Appointment, error) {
	var wantStatus *Status
	if present(f.Condition) {
		var st Status
		switch strings.ToLower(strings.TrimSpace(f.Condition)) {
		case "past":
			st = StatusCompleted
		case "future":
			st = StatusScheduled
		default:
			return nil, ErrInvalidCondition
		}
		wantStatus = &st
	}

	patient, err := s.repo.GetPatientByEmail(ctx, patientIdentity)
	if err != nil {
		return nil, passNotFound("load patient", err, ErrPatientNotFound)
	}

	appts, err := s.repo.ListPatientAppointments(ctx, patient.ID)
	if err != nil {
		return nil, storeErr("list patient appointments", err)
	}

	doctorName := ""
	if present(f.DoctorName) {
		doctorName = strings.ToLower(strings.TrimSpace(f.DoctorName))
	}

	out := make([]Appointment, 0, len(appts))
	for _, a := range appts {
		if wantStatus != nil && a.Status != *wantStatus {
			continue
		}
		if doctorName != "" && !strings.Contains(strings.ToLower(a.DoctorName), doctorName) {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (s *Service) requirePatient(ctx context.Context, id uuid.UUID) error {
	ok, err := s.repo.PatientExists(ctx, id)
	if err != nil {
		return storeErr("check patient", err)
	}
	if !ok {
		return ErrPatientNotFound
	}
	return nil
}

func (s *Service) requireDoctor(ctx context.Context, id uuid.UUID) error {
	ok, err := s.repo.DoctorExists(ctx, id)
	if err != nil {
		return storeErr("check doctor", err)
	}
	if !ok {
		return ErrDoctorNotFound
	}
	return nil
}

// dayBounds returns the first and last instant of date's calendar day in
// the service location.
func (s *Service) dayBounds(date time.Time) (time.Time, time.Time) {
	y, m, d := date.Date()
	from := time.Date(y, m, d, 0, 0, 0, 0, s.loc)
	to := from.AddDate(0, 0, 1).Add(-time.Nanosecond)
	return from, to
}

func (s *Service) logEvent(appointmentID uuid.UUID, eventType string, payload map[string]any) {
	s.log.Info().
		Str("event", eventType).
		Str("appointment_id", appointmentID.String()).
		Fields(payload).
		Msg("appointment event")
}
