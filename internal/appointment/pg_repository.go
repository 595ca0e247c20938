package appointment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

var _ Repository = (*PgRepository)(nil)

// Helpers

const doctorColumns = `id, name, specialty, email, phone, password_hash,
	available_times, weekly_availability, created_at, updated_at`

const appointmentSelect = `
	SELECT a.id, a.doctor_id, a.patient_id, a.appointment_time, a.status,
	       d.name, p.name, a.created_at, a.updated_at
	FROM appointments a
	JOIN doctors d ON d.id = a.doctor_id
	JOIN patients p ON p.id = a.patient_id`

func scanDoctor(row pgx.Row) (*Doctor, error) {
	var d Doctor
	var weekly []byte

	err := row.Scan(
		&d.ID,
		&d.Name,
		&d.Specialty,
		&d.Email,
		&d.Phone,
		&d.PasswordHash,
		&d.AvailableTimes,
		&weekly,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDoctorNotFound
		}
		return nil, err
	}

	if len(weekly) > 0 {
		if err := json.Unmarshal(weekly, &d.WeeklyAvailability); err != nil {
			return nil, fmt.Errorf("decode weekly availability: %w", err)
		}
	}
	return &d, nil
}

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient

	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Email,
		&p.Phone,
		&p.Address,
		&p.PasswordHash,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPatientNotFound
		}
		return nil, err
	}
	return &p, nil
}

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment

	err := row.Scan(
		&a.ID,
		&a.DoctorID,
		&a.PatientID,
		&a.AppointmentTime,
		&a.Status,
		&a.DoctorName,
		&a.PatientName,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}
	return &a, nil
}

func collectDoctors(rows pgx.Rows, err error) ([]Doctor, error) {
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []Doctor{}
	for rows.Next() {
		d, err := scanDoctor(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func collectAppointments(rows pgx.Rows, err error) ([]Appointment, error) {
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []Appointment{}
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

func encodeWeekly(m map[time.Weekday][]TimeOfDay) ([]byte, error) {
	if m == nil {
		m = map[time.Weekday][]TimeOfDay{}
	}
	return json.Marshal(m)
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// Doctors

func (r *PgRepository) GetDoctorByID(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+doctorColumns+` FROM doctors WHERE id = $1`, id)
	return scanDoctor(row)
}

func (r *PgRepository) GetDoctorByEmail(ctx context.Context, email string) (*Doctor, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+doctorColumns+` FROM doctors WHERE email = $1`, email)
	return scanDoctor(row)
}

func (r *PgRepository) DoctorExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM doctors WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}

func (r *PgRepository) ListDoctors(ctx context.Context) ([]Doctor, error) {
	return collectDoctors(r.pool.Query(ctx, `SELECT `+doctorColumns+` FROM doctors ORDER BY name, id`))
}

func (r *PgRepository) FindDoctorsByNameLike(ctx context.Context, name string) ([]Doctor, error) {
	return collectDoctors(r.pool.Query(ctx, `
		SELECT `+doctorColumns+`
		FROM doctors
		WHERE name LIKE $1
		ORDER BY name, id
	`, containsPattern(name)))
}

func (r *PgRepository) FindDoctorsByNameAndSpecialty(ctx context.Context, name, specialty string) ([]Doctor, error) {
	return collectDoctors(r.pool.Query(ctx, `
		SELECT `+doctorColumns+`
		FROM doctors
		WHERE name ILIKE $1
		  AND lower(specialty) = lower($2)
		ORDER BY name, id
	`, containsPattern(name), specialty))
}

func (r *PgRepository) FindDoctorsBySpecialty(ctx context.Context, specialty string) ([]Doctor, error) {
	return collectDoctors(r.pool.Query(ctx, `
		SELECT `+doctorColumns+`
		FROM doctors
		WHERE lower(specialty) = lower($1)
		ORDER BY name, id
	`, specialty))
}

func (r *PgRepository) CreateDoctor(ctx context.Context, d *Doctor) error {
	weekly, err := encodeWeekly(d.WeeklyAvailability)
	if err != nil {
		return fmt.Errorf("encode weekly availability: %w", err)
	}

	return r.pool.QueryRow(ctx, `
		INSERT INTO doctors (id, name, specialty, email, phone, password_hash,
		                     available_times, weekly_availability, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now(), now())
		RETURNING created_at, updated_at
	`, d.ID, d.Name, d.Specialty, d.Email, d.Phone, d.PasswordHash,
		nonNilStrings(d.AvailableTimes), weekly,
	).Scan(&d.CreatedAt, &d.UpdatedAt)
}

func (r *PgRepository) UpdateDoctor(ctx context.Context, d *Doctor) error {
	weekly, err := encodeWeekly(d.WeeklyAvailability)
	if err != nil {
		return fmt.Errorf("encode weekly availability: %w", err)
	}

	err = r.pool.QueryRow(ctx, `
		UPDATE doctors
		SET name = $2,
		    specialty = $3,
		    email = $4,
		    phone = $5,
		    password_hash = $6,
		    available_times = $7,
		    weekly_availability = $8,
		    updated_at = now()
		WHERE id = $1
		RETURNING updated_at
	`, d.ID, d.Name, d.Specialty, d.Email, d.Phone, d.PasswordHash,
		nonNilStrings(d.AvailableTimes), weekly,
	).Scan(&d.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrDoctorNotFound
	}
	return err
}

func (r *PgRepository) DeleteDoctor(ctx context.Context, id uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := deleteAllAppointmentsByDoctor(ctx, tx, id); err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, `DELETE FROM doctors WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete doctor: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrDoctorNotFound
	}

	return tx.Commit(ctx)
}

func deleteAllAppointmentsByDoctor(ctx context.Context, tx pgx.Tx, doctorID uuid.UUID) error {
	if _, err := tx.Exec(ctx, `DELETE FROM appointments WHERE doctor_id = $1`, doctorID); err != nil {
		return fmt.Errorf("delete doctor appointments: %w", err)
	}
	return nil
}

// Patients

const patientColumns = `id, name, email, phone, address, password_hash, created_at, updated_at`

func (r *PgRepository) GetPatientByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+patientColumns+` FROM patients WHERE id = $1`, id)
	return scanPatient(row)
}

func (r *PgRepository) GetPatientByEmail(ctx context.Context, email string) (*Patient, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+patientColumns+` FROM patients WHERE email = $1`, email)
	return scanPatient(row)
}

func (r *PgRepository) FindPatientByEmailOrPhone(ctx context.Context, email, phone string) (*Patient, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+patientColumns+`
		FROM patients
		WHERE email = $1 OR phone = $2
		LIMIT 1
	`, email, phone)
	return scanPatient(row)
}

func (r *PgRepository) PatientExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM patients WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}

func (r *PgRepository) CreatePatient(ctx context.Context, p *Patient) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO patients (id, name, email, phone, address, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, now(), now())
		RETURNING created_at, updated_at
	`, p.ID, p.Name, p.Email, p.Phone, p.Address, p.PasswordHash,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
}

// Admins

func (r *PgRepository) GetAdminByUsername(ctx context.Context, username string) (*Admin, error) {
	var a Admin
	err := r.pool.QueryRow(ctx, `
		SELECT id, username, password_hash FROM admins WHERE username = $1
	`, username).Scan(&a.ID, &a.Username, &a.PasswordHash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAdminNotFound
		}
		return nil, err
	}
	return &a, nil
}

// Appointments

func (r *PgRepository) GetAppointmentByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, appointmentSelect+` WHERE a.id = $1`, id)
	return scanAppointment(row)
}

func (r *PgRepository) ListDoctorAppointmentsBetween(ctx context.Context, doctorID uuid.UUID, from, to time.Time, patientName string) ([]Appointment, error) {
	q := appointmentSelect + `
		WHERE a.doctor_id = $1
		  AND a.appointment_time BETWEEN $2 AND $3`
	args := []any{doctorID, from, to}

	if patientName != "" {
		q += ` AND p.name ILIKE $4`
		args = append(args, containsPattern(patientName))
	}
	q += ` ORDER BY a.appointment_time, a.id`

	return collectAppointments(r.pool.Query(ctx, q, args...))
}

func (r *PgRepository) ListPatientAppointments(ctx context.Context, patientID uuid.UUID) ([]Appointment, error) {
	return collectAppointments(r.pool.Query(ctx, appointmentSelect+`
		WHERE a.patient_id = $1
		ORDER BY a.appointment_time, a.id
	`, patientID))
}

func (r *PgRepository) SaveAppointment(ctx context.Context, a *Appointment) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO appointments (id, doctor_id, patient_id, appointment_time, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, now(), now())
		ON CONFLICT (id) DO UPDATE
		SET doctor_id = EXCLUDED.doctor_id,
		    patient_id = EXCLUDED.patient_id,
		    appointment_time = EXCLUDED.appointment_time,
		    status = EXCLUDED.status,
		    updated_at = now()
		RETURNING created_at, updated_at
	`, a.ID, a.DoctorID, a.PatientID, a.AppointmentTime, a.Status,
	).Scan(&a.CreatedAt, &a.UpdatedAt)
}

func (r *PgRepository) DeleteAppointment(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAppointmentNotFound
	}
	return nil
}

func (r *PgRepository) UpdateAppointmentStatus(ctx context.Context, id uuid.UUID, status Status) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE appointments
		SET status = $2,
		    updated_at = now()
		WHERE id = $1
	`, id, status)
	return err
}

// Prescriptions

func (r *PgRepository) SavePrescription(ctx context.Context, p *Prescription) error {
	meds, err := json.Marshal(p.Medications)
	if err != nil {
		return fmt.Errorf("encode medications: %w", err)
	}
	return r.pool.QueryRow(ctx, `
		INSERT INTO prescriptions (id, appointment_id, doctor_id, patient_name, medications, doctor_notes, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`, p.ID, p.AppointmentID, p.DoctorID, p.PatientName, meds, p.DoctorNotes, p.Active,
	).Scan(&p.CreatedAt)
}

func (r *PgRepository) ListPrescriptionsByAppointment(ctx context.Context, appointmentID uuid.UUID) ([]Prescription, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, appointment_id, doctor_id, patient_name, medications, doctor_notes, active, created_at
		FROM prescriptions
		WHERE appointment_id = $1
		ORDER BY created_at, id
	`, appointmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Prescription{}
	for rows.Next() {
		var (
			p    Prescription
			meds []byte
		)
		if err := rows.Scan(&p.ID, &p.AppointmentID, &p.DoctorID, &p.PatientName, &meds, &p.DoctorNotes, &p.Active, &p.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(meds, &p.Medications); err != nil {
			return nil, fmt.Errorf("decode medications: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
