package appointment

import "time"

// WorkingHours is the daily window slots are generated for.
type WorkingHours struct {
	Start        TimeOfDay
	End          TimeOfDay
	SlotDuration time.Duration
}

// DefaultWorkingHours is 09:00-17:00 in 30 minute slots.
var DefaultWorkingHours = WorkingHours{
	Start:        NewTimeOfDay(9, 0),
	End:          NewTimeOfDay(17, 0),
	SlotDuration: 30 * time.Minute,
}

func (w WorkingHours) Slots() []TimeSlot {
	return GenerateSlots(w.Start, w.End, w.SlotDuration)
}

// GenerateSlots returns every slot start in [start, end) stepping by d.
// A non-positive duration or an empty window yields no slots.
func GenerateSlots(start, end TimeOfDay, d time.Duration) []TimeSlot {
	if d <= 0 || !start.Before(end) {
		return nil
	}

	slots := make([]TimeSlot, 0, int(time.Duration(end-start)/d))
	for t := start; t.Before(end); t = t.Add(d) {
		slots = append(slots, TimeSlot{Start: t, Duration: d})
	}
	return slots
}
