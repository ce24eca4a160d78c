package schedule

import (
	"encoding/json"
	"log"
	"strings"
)

// ReplyDelay is a [min, max] range in simulated minutes before the character
// would plausibly answer a message.
type ReplyDelay [2]int

// Min returns the lower bound in minutes.
func (d ReplyDelay) Min() int { return d[0] }

// Max returns the upper bound in minutes.
func (d ReplyDelay) Max() int { return d[1] }

// RoutineEntry is one recurring activity block of a weekly routine.
// Days use 1=Monday..7=Sunday. Start/End are hours in [0,23] on the same day.
// ReplyDelay is nil when the description omits it; an explicit [0,0] is a
// real, instant-reply range and must be kept apart from absence.
type RoutineEntry struct {
	Days       []int       `json:"days"`
	Start      int         `json:"start"`
	End        int         `json:"end"`
	Activity   string      `json:"activity"`
	Location   string      `json:"location"`
	ReplyDelay *ReplyDelay `json:"reply_delay,omitempty"`
}

// AppliesTo reports whether the entry covers the given weekday and hour.
func (e RoutineEntry) AppliesTo(day, hour int) bool {
	for _, d := range e.Days {
		if d == day {
			return hour >= e.Start && hour < e.End
		}
	}
	return false
}

// Schedule is a character's weekly routine: ordered activity blocks, one sleep
// window and a pool of idle at-home activities. Overlapping routine entries are
// not validated; resolution is strictly first-match in declaration order.
type Schedule struct {
	Routine        []RoutineEntry `json:"routine"`
	Sleep          [2]int         `json:"sleep"`
	HomeActivities []string       `json:"home_activities"`
}

// Clock is the caller-supplied simulated time. The engine never tracks time on
// its own; every decision about the character's situation starts from a Clock
// handed in by the client.
type Clock struct {
	Day    int `json:"day"`
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
}

// Weekday names indexed by Clock.Day-1.
var weekdayNames = [7]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// WeekdayName returns the English weekday name for the clock's day, or "Monday"
// when the day is out of range.
func (c Clock) WeekdayName() string {
	if c.Day < 1 || c.Day > 7 {
		return weekdayNames[0]
	}
	return weekdayNames[c.Day-1]
}

// Default returns the built-in fallback schedule used whenever an external
// schedule description cannot be parsed: a weekday work block, a weekend
// training block, sleep from 23 to 7 and three idle activities.
func Default() *Schedule {
	return &Schedule{
		Routine: []RoutineEntry{
			{Days: []int{1, 2, 3, 4, 5}, Start: 9, End: 18, Activity: "working", Location: "out", ReplyDelay: &ReplyDelay{30, 120}},
			{Days: []int{6, 7}, Start: 14, End: 16, Activity: "strength training at the gym", Location: "out", ReplyDelay: &ReplyDelay{10, 30}},
		},
		Sleep:          [2]int{23, 7},
		HomeActivities: []string{"resting", "sorting out clothes", "spacing out"},
	}
}

// Parse decodes an external schedule description. Malformed or structurally
// empty input never fails the caller; it falls back to Default.
func Parse(raw string) *Schedule {
	var s Schedule
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &s); err != nil {
		log.Printf("schedule: parse failed, using default: %v", err)
		return Default()
	}
	if !s.valid() {
		log.Printf("schedule: incomplete description, using default")
		return Default()
	}
	return &s
}

// valid requires the fields a resolver actually reads: at least one idle
// activity and a sleep window inside the day.
func (s *Schedule) valid() bool {
	if s == nil || len(s.HomeActivities) == 0 {
		return false
	}
	if s.Sleep[0] < 0 || s.Sleep[0] > 23 || s.Sleep[1] < 0 || s.Sleep[1] > 23 {
		return false
	}
	return true
}

// Normalize returns s when it is usable and Default otherwise. Used for
// schedules arriving over the session stream, where a missing or partial
// object must not break delivery.
func (s *Schedule) Normalize() *Schedule {
	if s.valid() {
		return s
	}
	return Default()
}

// EntriesForWeekday returns the routine entries covering the given weekday, in
// declaration order.
func (s *Schedule) EntriesForWeekday(day int) []RoutineEntry {
	var out []RoutineEntry
	for _, e := range s.Routine {
		for _, d := range e.Days {
			if d == day {
				out = append(out, e)
				break
			}
		}
	}
	return out
}

// IsAsleep reports whether the given hour falls inside the sleep window,
// accounting for windows that wrap past midnight (sleep hour > wake hour).
func (s *Schedule) IsAsleep(hour int) bool {
	start, end := s.Sleep[0], s.Sleep[1]
	if start > end {
		return hour >= start || hour < end
	}
	return hour >= start && hour < end
}

// JSON serializes the schedule for injection into generator prompts.
func (s *Schedule) JSON() string {
	b, err := json.Marshal(s)
	if err != nil {
		return "{}"
	}
	return string(b)
}
