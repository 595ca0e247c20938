package appointment

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrDoctorNotFound      = errors.New("doctor not found")
	ErrPatientNotFound     = errors.New("patient not found")
	ErrAdminNotFound       = errors.New("admin not found")
	ErrAppointmentNotFound = errors.New("appointment not found")
)

// Repository contains all DB interactions needed by the service.
type Repository interface {
	GetDoctorByID(ctx context.Context, id uuid.UUID) (*Doctor, error)
	GetDoctorByEmail(ctx context.Context, email string) (*Doctor, error)
	DoctorExists(ctx context.Context, id uuid.UUID) (bool, error)

	// Doctor search. NameLike is case-sensitive, the combined
	// name+specialty query is case-insensitive on both columns.
	ListDoctors(ctx context.Context) ([]Doctor, error)
	FindDoctorsByNameLike(ctx context.Context, name string) ([]Doctor, error)
	FindDoctorsByNameAndSpecialty(ctx context.Context, name, specialty string) ([]Doctor, error)
	FindDoctorsBySpecialty(ctx context.Context, specialty string) ([]Doctor, error)

	CreateDoctor(ctx context.Context, d *Doctor) error
	UpdateDoctor(ctx context.Context, d *Doctor) error
	// DeleteDoctor removes the doctor together with all of their appointments.
	DeleteDoctor(ctx context.Context, id uuid.UUID) error

	GetPatientByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	GetPatientByEmail(ctx context.Context, email string) (*Patient, error)
	FindPatientByEmailOrPhone(ctx context.Context, email, phone string) (*Patient, error)
	PatientExists(ctx context.Context, id uuid.UUID) (bool, error)
	CreatePatient(ctx context.Context, p *Patient) error

	GetAdminByUsername(ctx context.Context, username string) (*Admin, error)

	GetAppointmentByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	// ListDoctorAppointmentsBetween returns appointments with start in
	// [from, to], optionally narrowed by a case-insensitive patient name
	// substring (empty = no narrowing), ordered by start time.
	ListDoctorAppointmentsBetween(ctx context.Context, doctorID uuid.UUID, from, to time.Time, patientName string) ([]Appointment, error)
	ListPatientAppointments(ctx context.Context, patientID uuid.UUID) ([]Appointment, error)

	// SaveAppointment inserts or overwrites the appointment by ID.
	SaveAppointment(ctx context.Context, a *Appointment) error
	DeleteAppointment(ctx context.Context, id uuid.UUID) error
	UpdateAppointmentStatus(ctx context.Context, id uuid.UUID, status Status) error

	// Prescriptions go away with their appointment.
	SavePrescription(ctx context.Context, p *Prescription) error
	ListPrescriptionsByAppointment(ctx context.Context, appointmentID uuid.UUID) ([]Prescription, error)
}
