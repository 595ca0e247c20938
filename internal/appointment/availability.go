package appointment

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Availability returns the generated slots of the working day that no
// appointment of the doctor starts at. Only exact start times count as
// booked; a slot overlapped by an appointment starting elsewhere stays free.
// The calendar date of date is bounded in the service location.
func (s *Service) Availability(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]TimeSlot, error) {
	from, to := s.dayBounds(date)

	booked, err := s.repo.ListDoctorAppointmentsBetween(ctx, doctorID, from, to, "")
	if err != nil {
		return nil, storeErr("list booked appointments", err)
	}

	taken := make(map[TimeOfDay]struct{}, len(booked))
	for _, a := range booked {
		taken[TimeOfDayOf(a.AppointmentTime.In(s.loc))] = struct{}{}
	}

	return freeSlots(s.hours.Slots(), taken), nil
}

func freeSlots(all []TimeSlot, taken map[TimeOfDay]struct{}) []TimeSlot {
	free := make([]TimeSlot, 0, len(all))
	for _, slot := range all {
		if _, ok := taken[slot.Start]; ok {
			continue
		}
		free = append(free, slot)
	}
	return free
}
