package api

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hackgods/clinic-appointment-scheduling/internal/appointment"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// Auth

type AdminLoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type TokenResponse struct {
	Token string `json:"token"`
	Role  string `json:"role"`
}

// Patients

type RegisterPatientRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	Password string `json:"password"`
}

type PatientResponse struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Email   string    `json:"email"`
	Phone   string    `json:"phone"`
	Address string    `json:"address,omitempty"`
}

func toPatientResponse(p *appointment.Patient) PatientResponse {
	return PatientResponse{
		ID:      p.ID,
		Name:    p.Name,
		Email:   p.Email,
		Phone:   p.Phone,
		Address: p.Address,
	}
}

// Doctors

// DoctorRequest is used for create and update. WeeklyAvailability is keyed
// by lower-case weekday name ("monday") with "HH:MM" values.
type DoctorRequest struct {
	Name               string              `json:"name"`
	Specialty          string              `json:"specialty"`
	Email              string              `json:"email"`
	Phone              string              `json:"phone"`
	Password           string              `json:"password,omitempty"`
	AvailableTimes     []string            `json:"available_times,omitempty"`
	WeeklyAvailability map[string][]string `json:"weekly_availability,omitempty"`
}

type DoctorResponse struct {
	ID                 uuid.UUID           `json:"id"`
	Name               string              `json:"name"`
	Specialty          string              `json:"specialty"`
	Email              string              `json:"email"`
	Phone              string              `json:"phone"`
	AvailableTimes     []string            `json:"available_times,omitempty"`
	WeeklyAvailability map[string][]string `json:"weekly_availability,omitempty"`
}

func (req DoctorRequest) toDoctor() (*appointment.Doctor, error) {
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Email) == "" {
		return nil, fmt.Errorf("name and email are required")
	}

	d := &appointment.Doctor{
		Name:           strings.TrimSpace(req.Name),
		Specialty:      strings.TrimSpace(req.Specialty),
		Email:          strings.TrimSpace(req.Email),
		Phone:          strings.TrimSpace(req.Phone),
		AvailableTimes: req.AvailableTimes,
	}

	if len(req.WeeklyAvailability) > 0 {
		d.WeeklyAvailability = make(map[time.Weekday][]appointment.TimeOfDay, len(req.WeeklyAvailability))
		for name, points := range req.WeeklyAvailability {
			day, ok := parseWeekday(name)
			if !ok {
				return nil, fmt.Errorf("unknown weekday %q", name)
			}
			for _, p := range points {
				t, err := appointment.ParseTimeOfDay(p)
				if err != nil {
					return nil, err
				}
				d.WeeklyAvailability[day] = append(d.WeeklyAvailability[day], t)
			}
		}
	}
	return d, nil
}

func toDoctorResponse(d *appointment.Doctor) DoctorResponse {
	resp := DoctorResponse{
		ID:             d.ID,
		Name:           d.Name,
		Specialty:      d.Specialty,
		Email:          d.Email,
		Phone:          d.Phone,
		AvailableTimes: d.AvailableTimes,
	}
	if len(d.WeeklyAvailability) > 0 {
		resp.WeeklyAvailability = make(map[string][]string, len(d.WeeklyAvailability))
		for day, points := range d.WeeklyAvailability {
			key := strings.ToLower(day.String())
			for _, p := range points {
				resp.WeeklyAvailability[key] = append(resp.WeeklyAvailability[key], p.String())
			}
		}
	}
	return resp
}

func toDoctorResponses(ds []appointment.Doctor) []DoctorResponse {
	out := make([]DoctorResponse, 0, len(ds))
	for i := range ds {
		out = append(out, toDoctorResponse(&ds[i]))
	}
	return out
}

func parseWeekday(s string) (time.Weekday, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.ToLower(d.String()) == s {
			return d, true
		}
	}
	return 0, false
}

// Slots

type SlotResponse struct {
	Start    string    `json:"start"`
	End      string    `json:"end"`
	StartsAt time.Time `json:"starts_at"`
}

type AvailabilityResponse struct {
	DoctorID uuid.UUID      `json:"doctor_id"`
	Date     string         `json:"date"`
	Slots    []SlotResponse `json:"slots"`
}

// toSlotResponses also carries each start as an instant on date, ready to
// be sent back as appointment_time.
func toSlotResponses(date time.Time, slots []appointment.TimeSlot) []SlotResponse {
	out := make([]SlotResponse, 0, len(slots))
	for _, s := range slots {
		out = append(out, SlotResponse{
			Start:    s.Start.String(),
			End:      s.End().String(),
			StartsAt: s.Start.On(date),
		})
	}
	return out
}

// Appointments

// AppointmentRequest carries an RFC 3339 start time. PatientID may be
// omitted; it defaults to the caller.
type AppointmentRequest struct {
	DoctorID        string    `json:"doctor_id"`
	PatientID       string    `json:"patient_id,omitempty"`
	AppointmentTime time.Time `json:"appointment_time"`
}

type StatusRequest struct {
	Status *int `json:"status"`
}

type AppointmentResponse struct {
	ID              uuid.UUID `json:"id"`
	DoctorID        uuid.UUID `json:"doctor_id"`
	PatientID       uuid.UUID `json:"patient_id"`
	DoctorName      string    `json:"doctor_name,omitempty"`
	PatientName     string    `json:"patient_name,omitempty"`
	AppointmentTime time.Time `json:"appointment_time"`
	EndTime         time.Time `json:"end_time"`
	Status          int       `json:"status"`
	StatusName      string    `json:"status_name"`
}

func toAppointmentResponse(a *appointment.Appointment, slot time.Duration) AppointmentResponse {
	return AppointmentResponse{
		ID:              a.ID,
		DoctorID:        a.DoctorID,
		PatientID:       a.PatientID,
		DoctorName:      a.DoctorName,
		PatientName:     a.PatientName,
		AppointmentTime: a.AppointmentTime,
		EndTime:         a.EndTime(slot),
		Status:          int(a.Status),
		StatusName:      a.Status.String(),
	}
}

func toAppointmentResponses(as []appointment.Appointment, slot time.Duration) []AppointmentResponse {
	out := make([]AppointmentResponse, 0, len(as))
	for i := range as {
		out = append(out, toAppointmentResponse(&as[i], slot))
	}
	return out
}

// Prescriptions

type PrescriptionRequest struct {
	AppointmentID string                   `json:"appointment_id"`
	Medications   []appointment.Medication `json:"medications"`
	DoctorNotes   string                   `json:"doctor_notes,omitempty"`
}

type PrescriptionResponse struct {
	ID            uuid.UUID                `json:"id"`
	AppointmentID uuid.UUID                `json:"appointment_id"`
	DoctorID      uuid.UUID                `json:"doctor_id"`
	PatientName   string                   `json:"patient_name"`
	Medications   []appointment.Medication `json:"medications"`
	DoctorNotes   string                   `json:"doctor_notes,omitempty"`
	Active        bool                     `json:"active"`
	CreatedAt     time.Time                `json:"created_at"`
}

func toPrescriptionResponse(p *appointment.Prescription) PrescriptionResponse {
	return PrescriptionResponse{
		ID:            p.ID,
		AppointmentID: p.AppointmentID,
		DoctorID:      p.DoctorID,
		PatientName:   p.PatientName,
		Medications:   p.Medications,
		DoctorNotes:   p.DoctorNotes,
		Active:        p.Active,
		CreatedAt:     p.CreatedAt,
	}
}

func toPrescriptionResponses(ps []appointment.Prescription) []PrescriptionResponse {
	out := make([]PrescriptionResponse, 0, len(ps))
	for i := range ps {
		out = append(out, toPrescriptionResponse(&ps[i]))
	}
	return out
}
