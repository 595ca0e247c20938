package appointment

import (
	"time"

	"github.com/google/uuid"
)

// Status is the persisted integer code of an appointment.
type Status int

const (
	StatusScheduled Status = 0
	StatusCompleted Status = 1
	StatusCancelled Status = 2
)

func (s Status) Valid() bool {
	switch s {
	case StatusScheduled, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further lifecycle transition is allowed.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

func (s Status) String() string {
	switch s {
	case StatusScheduled:
		return "scheduled"
	case StatusCompleted:
		return "completed"
	case StatusCancelled:
		return "cancelled"
	}
	return "unknown"
}

type Doctor struct {
	ID           uuid.UUID
	Name         string
	Specialty    string
	Email        string
	Phone        string
	PasswordHash string

	// AvailableTimes holds ranges such as "09:00-10:00".
	AvailableTimes []string
	// WeeklyAvailability maps a weekday to the time points the doctor works.
	WeeklyAvailability map[time.Weekday][]TimeOfDay

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Availability returns the authoritative availability representation.
// The range list wins whenever it is non-empty; nil means the doctor
// published nothing.
func (d *Doctor) Availability() Availability {
	switch {
	case len(d.AvailableTimes) > 0:
		return RangeList(d.AvailableTimes)
	case len(d.WeeklyAvailability) > 0:
		return WeeklyMap(d.WeeklyAvailability)
	default:
		return nil
	}
}

type Patient struct {
	ID           uuid.UUID
	Name         string
	Email        string
	Phone        string
	Address      string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Admin struct {
	ID           uuid.UUID
	Username     string
	PasswordHash string
}

type Appointment struct {
	ID              uuid.UUID
	DoctorID        uuid.UUID
	PatientID       uuid.UUID
	AppointmentTime time.Time
	Status          Status

	// Read-side denormalisation filled by the repository on queries.
	DoctorName  string
	PatientName string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// EndTime is the end of the slot the appointment occupies.
func (a *Appointment) EndTime(slot time.Duration) time.Time {
	return a.AppointmentTime.Add(slot)
}

// TimeSlot is a bookable start time of a fixed length.
type TimeSlot struct {
	Start    TimeOfDay
	Duration time.Duration
}

func (s TimeSlot) End() TimeOfDay {
	return s.Start.Add(s.Duration)
}

// Medication is one line of a prescription.
type Medication struct {
	Name         string `json:"name"`
	Dosage       string `json:"dosage,omitempty"`
	Frequency    string `json:"frequency,omitempty"`
	DurationDays int    `json:"duration_days,omitempty"`
}

// Prescription is written by the doctor of an appointment. PatientName is
// copied from the appointment's patient when it is issued.
type Prescription struct {
	ID            uuid.UUID
	AppointmentID uuid.UUID
	DoctorID      uuid.UUID
	PatientName   string
	Medications   []Medication
	DoctorNotes   string
	Active        bool
	CreatedAt     time.Time
}
