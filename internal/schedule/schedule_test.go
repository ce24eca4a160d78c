package schedule

import (
	"reflect"
	"testing"
)

func TestParse_MalformedFallsBackToDefault(t *testing.T) {
	cases := []string{
		"not json at all",
		"",
		`{"routine": "nope"}`,
		`{"routine": [], "sleep": [23, 7], "home_activities": []}`,
		`{"sleep": [25, 7], "home_activities": ["x"]}`,
	}
	want := Default()
	for _, raw := range cases {
		got := Parse(raw)
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("Parse(%q) = %+v, want default schedule", raw, got)
		}
	}
}

func TestParse_WellFormed(t *testing.T) {
	raw := `{
		"routine": [{"days":[1,2,3,4,5],"start":9,"end":18,"activity":"working","location":"out","reply_delay":[30,120]}],
		"sleep": [23, 7],
		"home_activities": ["reading"]
	}`
	s := Parse(raw)
	if len(s.Routine) != 1 {
		t.Fatalf("expected 1 routine entry, got %d", len(s.Routine))
	}
	e := s.Routine[0]
	if e.Activity != "working" || e.Location != "out" {
		t.Fatalf("unexpected entry: %+v", e)
	}
	if e.ReplyDelay == nil || e.ReplyDelay.Min() != 30 || e.ReplyDelay.Max() != 120 {
		t.Fatalf("unexpected reply delay: %v", e.ReplyDelay)
	}
}

func TestParse_OmittedReplyDelayIsNil(t *testing.T) {
	raw := `{
		"routine": [{"days":[3],"start":9,"end":18,"activity":"errands","location":"out"}],
		"sleep": [23, 7],
		"home_activities": ["reading"]
	}`
	s := Parse(raw)
	if s.Routine[0].ReplyDelay != nil {
		t.Fatalf("omitted reply delay should stay nil, got %v", s.Routine[0].ReplyDelay)
	}
	withZero := Parse(`{
		"routine": [{"days":[3],"start":9,"end":18,"activity":"on call","location":"out","reply_delay":[0,0]}],
		"sleep": [23, 7],
		"home_activities": ["reading"]
	}`)
	if d := withZero.Routine[0].ReplyDelay; d == nil || *d != (ReplyDelay{0, 0}) {
		t.Fatalf("explicit [0,0] should survive parsing, got %v", d)
	}
}

func TestDefault_Shape(t *testing.T) {
	s := Default()
	if len(s.Routine) != 2 {
		t.Fatalf("expected 2 default routine entries, got %d", len(s.Routine))
	}
	if s.Sleep != [2]int{23, 7} {
		t.Fatalf("expected sleep [23,7], got %v", s.Sleep)
	}
	if len(s.HomeActivities) != 3 {
		t.Fatalf("expected 3 idle activities, got %d", len(s.HomeActivities))
	}
}

func TestIsAsleep_WrapsPastMidnight(t *testing.T) {
	s := &Schedule{Sleep: [2]int{23, 7}, HomeActivities: []string{"x"}}
	for _, h := range []int{23, 0, 2, 6} {
		if !s.IsAsleep(h) {
			t.Fatalf("expected asleep at hour %d", h)
		}
	}
	for _, h := range []int{7, 12, 22} {
		if s.IsAsleep(h) {
			t.Fatalf("expected awake at hour %d", h)
		}
	}
}

func TestIsAsleep_SameDayWindow(t *testing.T) {
	s := &Schedule{Sleep: [2]int{1, 9}, HomeActivities: []string{"x"}}
	if !s.IsAsleep(3) {
		t.Fatalf("expected asleep at hour 3")
	}
	if s.IsAsleep(0) || s.IsAsleep(9) {
		t.Fatalf("expected awake outside [1,9)")
	}
}

func TestEntriesForWeekday_PreservesOrder(t *testing.T) {
	s := &Schedule{
		Routine: []RoutineEntry{
			{Days: []int{1}, Start: 9, End: 12, Activity: "first"},
			{Days: []int{2}, Start: 9, End: 12, Activity: "other day"},
			{Days: []int{1}, Start: 10, End: 14, Activity: "second"},
		},
	}
	got := s.EntriesForWeekday(1)
	if len(got) != 2 || got[0].Activity != "first" || got[1].Activity != "second" {
		t.Fatalf("unexpected entries: %+v", got)
	}
	if len(s.EntriesForWeekday(5)) != 0 {
		t.Fatalf("expected no entries for day 5")
	}
}

func TestNormalize(t *testing.T) {
	var nilSched *Schedule
	if got := nilSched.Normalize(); !reflect.DeepEqual(got, Default()) {
		t.Fatalf("nil schedule should normalize to default")
	}
	ok := &Schedule{Sleep: [2]int{23, 7}, HomeActivities: []string{"reading"}}
	if got := ok.Normalize(); got != ok {
		t.Fatalf("valid schedule should normalize to itself")
	}
}

func TestClock_WeekdayName(t *testing.T) {
	if (Clock{Day: 3}).WeekdayName() != "Wednesday" {
		t.Fatalf("day 3 should be Wednesday")
	}
	if (Clock{Day: 0}).WeekdayName() != "Monday" {
		t.Fatalf("out of range day should clamp to Monday")
	}
}
