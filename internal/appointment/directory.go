package appointment

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/hackgods/clinic-appointment-scheduling/internal/auth"
)

func (s *Service) ListDoctors(ctx context.Context) ([]Doctor, error) {
	doctors, err := s.repo.ListDoctors(ctx)
	if err != nil {
		return nil, storeErr("list doctors", err)
	}
	return doctors, nil
}

func (s *Service) GetDoctor(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	d, err := s.repo.GetDoctorByID(ctx, id)
	if err != nil {
		return nil, passNotFound("load doctor", err, ErrDoctorNotFound)
	}
	return d, nil
}

// CreateDoctor stores a new doctor. The email must be unused.
func (s *Service) CreateDoctor(ctx context.Context, d *Doctor, password string) (*Doctor, error) {
	if _, err := s.repo.GetDoctorByEmail(ctx, d.Email); err == nil {
		return nil, ErrDoctorExists
	} else if !errors.Is(err, ErrDoctorNotFound) {
		return nil, storeErr("check doctor email", err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	doc := *d
	doc.ID = uuid.New()
	doc.PasswordHash = hash

	if err := s.repo.CreateDoctor(ctx, &doc); err != nil {
		return nil, storeErr("create doctor", err)
	}
	s.log.Info().Str("doctor_id", doc.ID.String()).Msg("doctor created")
	return &doc, nil
}

// UpdateDoctor overwrites an existing doctor. An empty password keeps the
// stored hash. The email may not belong to another doctor.
func (s *Service) UpdateDoctor(ctx context.Context, d *Doctor, password string) (*Doctor, error) {
	existing, err := s.repo.GetDoctorByID(ctx, d.ID)
	if err != nil {
		return nil, passNotFound("load doctor", err, ErrDoctorNotFound)
	}
	if other, err := s.repo.GetDoctorByEmail(ctx, d.Email); err == nil {
		if other.ID != d.ID {
			return nil, ErrDoctorExists
		}
	} else if !errors.Is(err, ErrDoctorNotFound) {
		return nil, storeErr("check doctor email", err)
	}

	doc := *d
	doc.PasswordHash = existing.PasswordHash
	doc.CreatedAt = existing.CreatedAt
	if password != "" {
		if doc.PasswordHash, err = auth.HashPassword(password); err != nil {
			return nil, err
		}
	}

	if err := s.repo.UpdateDoctor(ctx, &doc); err != nil {
		return nil, storeErr("update doctor", err)
	}
	return &doc, nil
}

// DeleteDoctor removes the doctor and every appointment booked with them.
func (s *Service) DeleteDoctor(ctx context.Context, id uuid.UUID) error {
	if err := s.requireDoctor(ctx, id); err != nil {
		return err
	}
	if err := s.repo.DeleteDoctor(ctx, id); err != nil {
		s.log.Error().Err(err).Str("doctor_id", id.String()).Msg("delete doctor failed")
		return storeErr("delete doctor", err)
	}
	s.log.Info().Str("event", EventDoctorDeleted).Str("doctor_id", id.String()).Msg("doctor deleted with appointments")
	return nil
}

// RegisterPatient signs a patient up. Email and phone must both be unused.
func (s *Service) RegisterPatient(ctx context.Context, p *Patient, password string) (*Patient, error) {
	if _, err := s.repo.FindPatientByEmailOrPhone(ctx, p.Email, p.Phone); err == nil {
		return nil, ErrPatientExists
	} else if !errors.Is(err, ErrPatientNotFound) {
		return nil, storeErr("check patient", err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	pat := *p
	pat.ID = uuid.New()
	pat.PasswordHash = hash

	if err := s.repo.CreatePatient(ctx, &pat); err != nil {
		return nil, storeErr("create patient", err)
	}
	return &pat, nil
}

func (s *Service) PatientByEmail(ctx context.Context, email string) (*Patient, error) {
	p, err := s.repo.GetPatientByEmail(ctx, email)
	if err != nil {
		return nil, passNotFound("load patient", err, ErrPatientNotFound)
	}
	return p, nil
}

func (s *Service) AuthenticateAdmin(ctx context.Context, username, password string) (*Admin, error) {
	a, err := s.repo.GetAdminByUsername(ctx, username)
	if err != nil {
		return nil, credentialsErr("load admin", err, ErrAdminNotFound)
	}
	if !auth.CheckPassword(a.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return a, nil
}

func (s *Service) AuthenticateDoctor(ctx context.Context, email, password string) (*Doctor, error) {
	d, err := s.repo.GetDoctorByEmail(ctx, email)
	if err != nil {
		return nil, credentialsErr("load doctor", err, ErrDoctorNotFound)
	}
	if !auth.CheckPassword(d.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return d, nil
}

func (s *Service) AuthenticatePatient(ctx context.Context, email, password string) (*Patient, error) {
	p, err := s.repo.GetPatientByEmail(ctx, email)
	if err != nil {
		return nil, credentialsErr("load patient", err, ErrPatientNotFound)
	}
	if !auth.CheckPassword(p.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return p, nil
}

// unknown accounts look the same as wrong passwords
func credentialsErr(op string, err, notFound error) error {
	if errors.Is(err, notFound) {
		return ErrInvalidCredentials
	}
	return storeErr(op, err)
}
