package presence

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/belfiore04/cat-yard/internal/schedule"
)

// State is where the character currently is from the player's point of view.
type State string

const (
	StateHome   State = "home"
	StateOut    State = "out"
	StateAsleep State = "asleep"
)

// Reply-delay ranges for the states the routine does not spell out.
var (
	sleepDelay = schedule.ReplyDelay{30, 240}
	homeDelay  = schedule.ReplyDelay{0, 1}
	// applied when a routine entry carries no delay of its own
	outDelay = schedule.ReplyDelay{5, 30}
)

// Context is the character's derived situation for one simulated clock. It is
// recomputed on every inbound event and never cached across clock changes.
type Context struct {
	State      State
	Activity   string
	ReplyDelay schedule.ReplyDelay
}

// Resolver derives a presence Context from a schedule and a simulated clock.
// The only non-deterministic step is the idle-activity pick, driven by the
// injected random source so tests can pin it down.
type Resolver struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewResolver builds a Resolver around rng. A nil rng gets a time-seeded one.
func NewResolver(rng *rand.Rand) *Resolver {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Resolver{rng: rng}
}

// Resolve returns the character's situation at the given simulated clock.
// Sleep wins over everything; otherwise the first routine entry covering the
// weekday and hour wins, in declaration order; otherwise the character is at
// home doing one random activity from the idle pool.
func (r *Resolver) Resolve(s *schedule.Schedule, c schedule.Clock) Context {
	s = s.Normalize()

	if s.IsAsleep(c.Hour) {
		return Context{State: StateAsleep, Activity: "sleeping", ReplyDelay: sleepDelay}
	}

	for _, e := range s.Routine {
		if !e.AppliesTo(c.Day, c.Hour) {
			continue
		}
		ctx := Context{State: StateHome, Activity: e.Activity, ReplyDelay: outDelay}
		if e.ReplyDelay != nil {
			// explicit values are kept verbatim, [0,0] included
			ctx.ReplyDelay = *e.ReplyDelay
		}
		if e.Location == "out" {
			ctx.State = StateOut
		}
		if ctx.Activity == "" {
			ctx.Activity = "out and about"
		}
		return ctx
	}

	return Context{State: StateHome, Activity: r.pickIdle(s.HomeActivities), ReplyDelay: homeDelay}
}

func (r *Resolver) pickIdle(pool []string) string {
	if len(pool) == 0 {
		return "hanging around the house"
	}
	r.mu.Lock()
	i := r.rng.Intn(len(pool))
	r.mu.Unlock()
	return pool[i]
}

// TimeInfo renders the resolved situation as the literal statement injected
// into generator prompts. The generator is never given raw clock arithmetic to
// work with, only this finished sentence, so it cannot invent its own time.
func TimeInfo(c schedule.Clock, pc Context) string {
	where := "at home"
	switch pc.State {
	case StateOut:
		where = "out of the house"
	case StateAsleep:
		where = "in bed"
	}
	return fmt.Sprintf("The simulated time right now is %s %02d:%02d. You are %s, currently %s.",
		c.WeekdayName(), c.Hour, c.Minute, where, pc.Activity)
}
