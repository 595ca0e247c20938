package appointment

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

const (
	maxMedications  = 100
	maxDoctorNotes  = 500
	minMedicineName = 3
	maxMedicineName = 100
)

func validatePrescription(p *Prescription) error {
	if len(p.Medications) == 0 || len(p.Medications) > maxMedications {
		return fmt.Errorf("%w: between 1 and %d medications required", ErrInvalidPrescription, maxMedications)
	}
	for i, m := range p.Medications {
		if n := len(strings.TrimSpace(m.Name)); n < minMedicineName || n > maxMedicineName {
			return fmt.Errorf("%w: medication %d name must be %d-%d characters", ErrInvalidPrescription, i+1, minMedicineName, maxMedicineName)
		}
		if m.DurationDays < 0 {
			return fmt.Errorf("%w: medication %d duration is negative", ErrInvalidPrescription, i+1)
		}
	}
	if len(p.DoctorNotes) > maxDoctorNotes {
		return fmt.Errorf("%w: notes exceed %d characters", ErrInvalidPrescription, maxDoctorNotes)
	}
	return nil
}

// ownAppointment loads the appointment and the doctor behind identity and
// fails unless the doctor is the appointment's doctor.
func (s *Service) ownAppointment(ctx context.Context, doctorIdentity string, appointmentID uuid.UUID) (*Doctor, *Appointment, error) {
	doctor, err := s.repo.GetDoctorByEmail(ctx, doctorIdentity)
	if err != nil {
		return nil, nil, passNotFound("load doctor", err, ErrDoctorNotFound)
	}
	appt, err := s.repo.GetAppointmentByID(ctx, appointmentID)
	if err != nil {
		return nil, nil, passNotFound("load appointment", err, ErrAppointmentNotFound)
	}
	if appt.DoctorID != doctor.ID {
		return nil, nil, ErrOwnershipViolation
	}
	return doctor, appt, nil
}

// IssuePrescription stores a prescription for one of the doctor's own
// appointments. The patient's name is taken from the appointment.
func (s *Service) IssuePrescription(ctx context.Context, doctorIdentity string, p *Prescription) (*Prescription, error) {
	if err := validatePrescription(p); err != nil {
		return nil, err
	}

	doctor, appt, err := s.ownAppointment(ctx, doctorIdentity, p.AppointmentID)
	if err != nil {
		return nil, err
	}
	patient, err := s.repo.GetPatientByID(ctx, appt.PatientID)
	if err != nil {
		return nil, passNotFound("load patient", err, ErrPatientNotFound)
	}

	rx := *p
	rx.ID = uuid.New()
	rx.DoctorID = doctor.ID
	rx.PatientName = patient.Name
	rx.Active = true
	rx.DoctorNotes = strings.TrimSpace(rx.DoctorNotes)
	rx.Medications = make([]Medication, len(p.Medications))
	for i, m := range p.Medications {
		m.Name = strings.TrimSpace(m.Name)
		rx.Medications[i] = m
	}

	if err := s.repo.SavePrescription(ctx, &rx); err != nil {
		s.log.Error().Err(err).Str("appointment_id", appt.ID.String()).Msg("save prescription failed")
		return nil, storeErr("save prescription", err)
	}

	s.logEvent(appt.ID, EventPrescriptionIssued, map[string]any{
		"prescription_id": rx.ID.String(),
		"medications":     len(rx.Medications),
	})
	return &rx, nil
}

// Prescriptions lists what was prescribed at one of the doctor's own
// appointments, oldest first.
func (s *Service) Prescriptions(ctx context.Context, doctorIdentity string, appointmentID uuid.UUID) ([]Prescription, error) {
	if _, _, err := s.ownAppointment(ctx, doctorIdentity, appointmentID); err != nil {
		return nil, err
	}
	out, err := s.repo.ListPrescriptionsByAppointment(ctx, appointmentID)
	if err != nil {
		return nil, storeErr("list prescriptions", err)
	}
	return out, nil
}
