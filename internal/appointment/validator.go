package appointment

import "context"

// Validate reports whether the appointment's doctor exists and its start
// time is one of the doctor's free slots on that day. The patient is not
// checked here; Book does that at commit time.
func (s *Service) Validate(ctx context.Context, a *Appointment) error {
	if err := s.requireDoctor(ctx, a.DoctorID); err != nil {
		return err
	}

	at := a.AppointmentTime.In(s.loc)
	free, err := s.Availability(ctx, a.DoctorID, at)
	if err != nil {
		return err
	}

	want := TimeOfDayOf(at)
	for _, slot := range free {
		if slot.Start == want {
			return nil
		}
	}
	return ErrSlotUnavailable
}
