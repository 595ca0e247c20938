package appointment

import (
	"context"
	"strings"
)

// DoctorFilter holds the optional search criteria. An empty value or the
// literal "null" means the criterion is absent.
type DoctorFilter struct {
	Name      string
	Specialty string
	Period    string
}

type filterKind int

const (
	filterNone filterKind = iota
	filterNameSpecialtyPeriod
	filterNamePeriod
	filterNameSpecialty
	filterSpecialtyPeriod
	filterName
	filterSpecialty
	filterPeriod
)

// kind resolves which criteria are present. The order of the cases is the
// precedence table.
func (f DoctorFilter) kind() filterKind {
	name, specialty, period := present(f.Name), present(f.Specialty), present(f.Period)
	switch {
	case name && specialty && period:
		return filterNameSpecialtyPeriod
	case name && period:
		return filterNamePeriod
	case name && specialty:
		return filterNameSpecialty
	case specialty && period:
		return filterSpecialtyPeriod
	case name:
		return filterName
	case specialty:
		return filterSpecialty
	case period:
		return filterPeriod
	default:
		return filterNone
	}
}

type doctorQuery struct {
	name      string
	specialty string
	period    Period
}

type searchStrategy func(ctx context.Context, repo Repository, q doctorQuery) ([]Doctor, error)

var searchStrategies = map[filterKind]searchStrategy{
	filterNameSpecialtyPeriod: func(ctx context.Context, repo Repository, q doctorQuery) ([]Doctor, error) {
		return withPeriod(repo.FindDoctorsByNameAndSpecialty(ctx, q.name, q.specialty))(q.period)
	},
	filterNamePeriod: func(ctx context.Context, repo Repository, q doctorQuery) ([]Doctor, error) {
		return withPeriod(repo.FindDoctorsByNameLike(ctx, q.name))(q.period)
	},
	filterNameSpecialty: func(ctx context.Context, repo Repository, q doctorQuery) ([]Doctor, error) {
		return repo.FindDoctorsByNameAndSpecialty(ctx, q.name, q.specialty)
	},
	filterSpecialtyPeriod: func(ctx context.Context, repo Repository, q doctorQuery) ([]Doctor, error) {
		return withPeriod(repo.FindDoctorsBySpecialty(ctx, q.specialty))(q.period)
	},
	filterName: func(ctx context.Context, repo Repository, q doctorQuery) ([]Doctor, error) {
		return repo.FindDoctorsByNameLike(ctx, q.name)
	},
	filterSpecialty: func(ctx context.Context, repo Repository, q doctorQuery) ([]Doctor, error) {
		return repo.FindDoctorsBySpecialty(ctx, q.specialty)
	},
	filterPeriod: func(ctx context.Context, repo Repository, q doctorQuery) ([]Doctor, error) {
		return withPeriod(repo.ListDoctors(ctx))(q.period)
	},
	filterNone: func(ctx context.Context, repo Repository, _ doctorQuery) ([]Doctor, error) {
		return repo.ListDoctors(ctx)
	},
}

func withPeriod(doctors []Doctor, err error) func(Period) ([]Doctor, error) {
	return func(p Period) ([]Doctor, error) {
		if err != nil {
			return nil, err
		}
		return FilterByPeriod(doctors, p), nil
	}
}

// FilterByPeriod keeps the doctors whose availability matches p.
func FilterByPeriod(doctors []Doctor, p Period) []Doctor {
	out := make([]Doctor, 0, len(doctors))
	for i := range doctors {
		if MatchesPeriod(doctors[i].Availability(), p) {
			out = append(out, doctors[i])
		}
	}
	return out
}

// FilterDoctors runs the search strategy selected by the present criteria.
func (s *Service) FilterDoctors(ctx context.Context, f DoctorFilter) ([]Doctor, error) {
	kind := f.kind()

	q := doctorQuery{
		name:      strings.TrimSpace(f.Name),
		specialty: strings.TrimSpace(f.Specialty),
	}
	if present(f.Period) {
		p, err := ParsePeriod(f.Period)
		if err != nil {
			return nil, err
		}
		q.period = p
	}

	doctors, err := searchStrategies[kind](ctx, s.repo, q)
	if err != nil {
		return nil, storeErr("search doctors", err)
	}
	return doctors, nil
}
