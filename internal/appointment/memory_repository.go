package appointment

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepository keeps everything in process memory. It backs STORE=memory
// and the service tests.
type MemoryRepository struct {
	mu           sync.RWMutex
	doctors      map[uuid.UUID]Doctor
	patients     map[uuid.UUID]Patient
	admins       map[string]Admin
	appointments map[uuid.UUID]Appointment
	// keyed by appointment
	prescriptions map[uuid.UUID][]Prescription
	now           func() time.Time
}

var _ Repository = (*MemoryRepository)(nil)

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		doctors:       make(map[uuid.UUID]Doctor),
		patients:      make(map[uuid.UUID]Patient),
		admins:        make(map[string]Admin),
		appointments:  make(map[uuid.UUID]Appointment),
		prescriptions: make(map[uuid.UUID][]Prescription),
		now:           time.Now,
	}
}

// AddAdmin stores an admin account. Admins have no HTTP create path.
func (r *MemoryRepository) AddAdmin(a Admin) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	r.admins[a.Username] = a
}

func cloneDoctor(d Doctor) Doctor {
	if d.AvailableTimes != nil {
		d.AvailableTimes = append([]string(nil), d.AvailableTimes...)
	}
	if d.WeeklyAvailability != nil {
		weekly := make(map[time.Weekday][]TimeOfDay, len(d.WeeklyAvailability))
		for day, points := range d.WeeklyAvailability {
			weekly[day] = append([]TimeOfDay(nil), points...)
		}
		d.WeeklyAvailability = weekly
	}
	return d
}

func sortDoctors(ds []Doctor) []Doctor {
	sort.Slice(ds, func(i, j int) bool {
		if ds[i].Name != ds[j].Name {
			return ds[i].Name < ds[j].Name
		}
		return ds[i].ID.String() < ds[j].ID.String()
	})
	return ds
}

func sortAppointments(as []Appointment) []Appointment {
	sort.Slice(as, func(i, j int) bool {
		if !as[i].AppointmentTime.Equal(as[j].AppointmentTime) {
			return as[i].AppointmentTime.Before(as[j].AppointmentTime)
		}
		return as[i].ID.String() < as[j].ID.String()
	})
	return as
}

func (r *MemoryRepository) filterDoctors(match func(Doctor) bool) []Doctor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []Doctor{}
	for _, d := range r.doctors {
		if match(d) {
			out = append(out, cloneDoctor(d))
		}
	}
	return sortDoctors(out)
}

// withNames fills the read-side names. Callers hold the lock.
func (r *MemoryRepository) withNames(a Appointment) Appointment {
	a.DoctorName = r.doctors[a.DoctorID].Name
	a.PatientName = r.patients[a.PatientID].Name
	return a
}

// Doctors

func (r *MemoryRepository) GetDoctorByID(_ context.Context, id uuid.UUID) (*Doctor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.doctors[id]
	if !ok {
		return nil, ErrDoctorNotFound
	}
	d = cloneDoctor(d)
	return &d, nil
}

func (r *MemoryRepository) GetDoctorByEmail(_ context.Context, email string) (*Doctor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, d := range r.doctors {
		if d.Email == email {
			d = cloneDoctor(d)
			return &d, nil
		}
	}
	return nil, ErrDoctorNotFound
}

func (r *MemoryRepository) DoctorExists(_ context.Context, id uuid.UUID) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.doctors[id]
	return ok, nil
}

func (r *MemoryRepository) ListDoctors(_ context.Context) ([]Doctor, error) {
	return r.filterDoctors(func(Doctor) bool { return true }), nil
}

func (r *MemoryRepository) FindDoctorsByNameLike(_ context.Context, name string) ([]Doctor, error) {
	return r.filterDoctors(func(d Doctor) bool {
		return strings.Contains(d.Name, name)
	}), nil
}

func (r *MemoryRepository) FindDoctorsByNameAndSpecialty(_ context.Context, name, specialty string) ([]Doctor, error) {
	name = strings.ToLower(name)
	return r.filterDoctors(func(d Doctor) bool {
		return strings.Contains(strings.ToLower(d.Name), name) &&
			strings.EqualFold(d.Specialty, specialty)
	}), nil
}

func (r *MemoryRepository) FindDoctorsBySpecialty(_ context.Context, specialty string) ([]Doctor, error) {
	return r.filterDoctors(func(d Doctor) bool {
		return strings.EqualFold(d.Specialty, specialty)
	}), nil
}

func (r *MemoryRepository) CreateDoctor(_ context.Context, d *Doctor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	d.CreatedAt, d.UpdatedAt = now, now
	r.doctors[d.ID] = cloneDoctor(*d)
	return nil
}

func (r *MemoryRepository) UpdateDoctor(_ context.Context, d *Doctor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.doctors[d.ID]
	if !ok {
		return ErrDoctorNotFound
	}
	d.CreatedAt = existing.CreatedAt
	d.UpdatedAt = r.now()
	r.doctors[d.ID] = cloneDoctor(*d)
	return nil
}

func (r *MemoryRepository) DeleteDoctor(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.doctors[id]; !ok {
		return ErrDoctorNotFound
	}
	for apptID, a := range r.appointments {
		if a.DoctorID == id {
			delete(r.appointments, apptID)
			delete(r.prescriptions, apptID)
		}
	}
	delete(r.doctors, id)
	return nil
}

// Patients

func (r *MemoryRepository) GetPatientByID(_ context.Context, id uuid.UUID) (*Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.patients[id]
	if !ok {
		return nil, ErrPatientNotFound
	}
	return &p, nil
}

func (r *MemoryRepository) GetPatientByEmail(_ context.Context, email string) (*Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.patients {
		if p.Email == email {
			return &p, nil
		}
	}
	return nil, ErrPatientNotFound
}

func (r *MemoryRepository) FindPatientByEmailOrPhone(_ context.Context, email, phone string) (*Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.patients {
		if p.Email == email || p.Phone == phone {
			return &p, nil
		}
	}
	return nil, ErrPatientNotFound
}

func (r *MemoryRepository) PatientExists(_ context.Context, id uuid.UUID) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.patients[id]
	return ok, nil
}

func (r *MemoryRepository) CreatePatient(_ context.Context, p *Patient) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	p.CreatedAt, p.UpdatedAt = now, now
	r.patients[p.ID] = *p
	return nil
}

// Admins

func (r *MemoryRepository) GetAdminByUsername(_ context.Context, username string) (*Admin, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.admins[username]
	if !ok {
		return nil, ErrAdminNotFound
	}
	return &a, nil
}

// Appointments

func (r *MemoryRepository) GetAppointmentByID(_ context.Context, id uuid.UUID) (*Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.appointments[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	a = r.withNames(a)
	return &a, nil
}

func (r *MemoryRepository) ListDoctorAppointmentsBetween(_ context.Context, doctorID uuid.UUID, from, to time.Time, patientName string) ([]Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	patientName = strings.ToLower(patientName)
	out := []Appointment{}
	for _, a := range r.appointments {
		if a.DoctorID != doctorID {
			continue
		}
		if a.AppointmentTime.Before(from) || a.AppointmentTime.After(to) {
			continue
		}
		a = r.withNames(a)
		if patientName != "" && !strings.Contains(strings.ToLower(a.PatientName), patientName) {
			continue
		}
		out = append(out, a)
	}
	return sortAppointments(out), nil
}

func (r *MemoryRepository) ListPatientAppointments(_ context.Context, patientID uuid.UUID) ([]Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []Appointment{}
	for _, a := range r.appointments {
		if a.PatientID == patientID {
			out = append(out, r.withNames(a))
		}
	}
	return sortAppointments(out), nil
}

func (r *MemoryRepository) SaveAppointment(_ context.Context, a *Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if existing, ok := r.appointments[a.ID]; ok {
		a.CreatedAt = existing.CreatedAt
	} else {
		a.CreatedAt = now
	}
	a.UpdatedAt = now

	stored := *a
	stored.DoctorName, stored.PatientName = "", ""
	r.appointments[a.ID] = stored
	return nil
}

func (r *MemoryRepository) DeleteAppointment(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.appointments[id]; !ok {
		return ErrAppointmentNotFound
	}
	delete(r.appointments, id)
	delete(r.prescriptions, id)
	return nil
}

func (r *MemoryRepository) UpdateAppointmentStatus(_ context.Context, id uuid.UUID, status Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.appointments[id]
	if !ok {
		return nil
	}
	a.Status = status
	a.UpdatedAt = r.now()
	r.appointments[id] = a
	return nil
}

// Prescriptions

func clonePrescription(p Prescription) Prescription {
	p.Medications = append([]Medication(nil), p.Medications...)
	return p
}

func (r *MemoryRepository) SavePrescription(_ context.Context, p *Prescription) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p.CreatedAt = r.now()
	r.prescriptions[p.AppointmentID] = append(r.prescriptions[p.AppointmentID], clonePrescription(*p))
	return nil
}

func (r *MemoryRepository) ListPrescriptionsByAppointment(_ context.Context, appointmentID uuid.UUID) ([]Prescription, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Prescription, 0, len(r.prescriptions[appointmentID]))
	for _, p := range r.prescriptions[appointmentID] {
		out = append(out, clonePrescription(p))
	}
	return out, nil
}
