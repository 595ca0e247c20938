package appointment

import (
	"errors"
)

var (
	ErrSlotUnavailable         = errors.New("time slot not available")
	ErrSlotBeingBooked         = errors.New("slot is currently being booked, please retry")
	ErrOwnershipViolation      = errors.New("you can only manage your own appointments")
	ErrInvalidStatus           = errors.New("invalid appointment status")
	ErrInvalidStatusTransition = errors.New("appointment is already completed or cancelled")
	ErrInvalidPeriod           = errors.New("period must be either AM or PM")
	ErrInvalidCondition        = errors.New("condition must be either past or future")
	ErrDoctorExists            = errors.New("doctor with this email already exists")
	ErrPatientExists           = errors.New("patient with this email or phone already exists")
	ErrInvalidCredentials      = errors.New("invalid credentials")
	ErrInvalidPrescription     = errors.New("invalid prescription")

	// ErrStoreFailure matches every infrastructure failure surfaced by the service.
	ErrStoreFailure = errors.New("store failure")
)

// StoreError wraps a repository error that is not one of the expected
// not-found outcomes.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *StoreError) Unwrap() error { return e.Err }

func (e *StoreError) Is(target error) bool {
	return target == ErrStoreFailure
}

func storeErr(op string, err error) error {
	return &StoreError{Op: op, Err: err}
}

// passNotFound returns err unchanged when it is one of the expected
// not-found sentinels, and wraps it as a store failure otherwise.
func passNotFound(op string, err error, notFound ...error) error {
	for _, nf := range notFound {
		if errors.Is(err, nf) {
			return nf
		}
	}
	return storeErr(op, err)
}
