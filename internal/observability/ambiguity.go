package observability

import (
	"context"
	"sort"

	"github.com/dragomit/desctl/errs"
	"github.com/dragomit/desctl/internal/graph"
	"github.com/dragomit/desctl/internal/ids"
	"github.com/dragomit/desctl/internal/subset"
)

// AmbiguityRecord is one row of the ambiguity table (spec §4.5 step 6):
// one record per (state in V, controller that controls the event).
type AmbiguityRecord struct {
	State        int64
	Event        int32
	Controller   int // 1-based
	IsEnablement bool
	Level        int
}

// EventResult is the inference-observability verdict for one event.
type EventResult struct {
	Event      int32
	Observable bool
	Level      int // N(e): the maximum ambiguity level assigned
	Records    []AmbiguityRecord
}

// ComputeEvent runs the bipartite-peel fixpoint of spec §4.5 for one
// controllable event. dets holds the per-controller Determinization (D_i)
// produced by subset.Construct, indexed 0..NControllers().
func ComputeEvent(ctx context.Context, u *graph.Automaton, dets []*subset.Determinization, eventID int32) (EventResult, error) {
	e, ok := u.Event(eventID)
	if !ok {
		return EventResult{}, errs.New(errs.InvalidArgument, "compute event: event %d does not exist", eventID)
	}
	controllers := e.Controllers() // 0-based
	if len(controllers) == 0 {
		return EventResult{Event: eventID, Observable: true}, nil
	}
	ctrl1 := make([]int, len(controllers))
	for i, c := range controllers {
		ctrl1[i] = c + 1
	}

	var disabled, enabled []int64
	seen := make(map[int64]bool)
	for _, s := range u.States() {
		isD := s.DisablementEvents.Contains(e.Label)
		isE := s.EnablementEvents.Contains(e.Label)
		if isD {
			disabled = append(disabled, s.ID)
		}
		if isE {
			enabled = append(enabled, s.ID)
		}
		if isD || isE {
			seen[s.ID] = true
		}
	}

	graphs, err := buildAll(ctx, u, dets, eventID, ctrl1, disabled, enabled)
	if err != nil {
		return EventResult{}, err
	}
	byController := make(map[int]*Bipartite, len(ctrl1))
	for i, ctrl := range ctrl1 {
		byController[ctrl] = graphs[i]
	}

	var v []int64
	for id := range seen {
		v = append(v, id)
	}
	sort.Slice(v, func(i, j int) bool { return v[i] < v[j] })

	satisfied := func(id int64) bool {
		for _, ctrl := range ctrl1 {
			if byController[ctrl].degree(id) != 0 {
				return false
			}
		}
		return true
	}

	level := make(map[int64]int, len(v))
	var frontier []int64
	for _, id := range v {
		if satisfied(id) {
			level[id] = 0
			frontier = append(frontier, id)
		}
	}

	maxRounds := len(v)
	maxLevel := 0
	for l := 1; len(level) < len(v) && len(frontier) > 0 && l <= maxRounds+1; l++ {
		candidates := make(map[int64]bool)
		for _, id := range frontier {
			for _, ctrl := range ctrl1 {
				for _, aff := range byController[ctrl].removeVertex(id) {
					candidates[aff] = true
				}
			}
		}
		var next []int64
		for id := range candidates {
			if _, done := level[id]; done {
				continue
			}
			if satisfied(id) {
				level[id] = l
				if l > maxLevel {
					maxLevel = l
				}
				next = append(next, id)
			}
		}
		frontier = next
		if len(next) == 0 {
			break
		}
	}

	observable := len(level) == len(v)

	var records []AmbiguityRecord
	for _, id := range v {
		lvl, ok := level[id]
		if !ok {
			continue
		}
		isEnablement := lvl%2 == 0
		for _, ctrl := range ctrl1 {
			records = append(records, AmbiguityRecord{
				State:        id,
				Event:        eventID,
				Controller:   ctrl,
				IsEnablement: isEnablement,
				Level:        lvl,
			})
		}
	}

	return EventResult{Event: eventID, Observable: observable, Level: maxLevel, Records: records}, nil
}

// SystemResult is the inference-observability verdict for the whole
// U-Structure: observable iff every controllable event is, with level
// equal to the maximum per-event level (spec §4.5 steps 4-5).
type SystemResult struct {
	Observable bool
	Level      int
	Events     map[int32]EventResult
}

// ComputeSystem evaluates every controllable event of u. Synchronized
// composition (ustructure.Compose) adds a fresh per-combo event labeled
// with its full joint-observation vector ("<a,a,*>") for every
// transition it emits, alongside the plain system events it copies
// verbatim from the original automaton; those combo events are never
// recorded in any state's DisablementEvents/EnablementEvents set (which
// key on the plain label), so running the peel fixpoint on one would
// always vacuously report Observable:true with no records. Skip them by
// their vector-syntax label and only score genuine system events.
func ComputeSystem(ctx context.Context, u *graph.Automaton, dets []*subset.Determinization) (SystemResult, error) {
	result := SystemResult{Observable: true, Events: make(map[int32]EventResult)}
	for _, e := range u.Events() {
		if e.ControllerCount() == 0 {
			continue
		}
		if ids.ParseLabelVector(e.Label).Size() >= 0 {
			continue
		}
		er, err := ComputeEvent(ctx, u, dets, e.ID)
		if err != nil {
			return SystemResult{}, err
		}
		result.Events[e.ID] = er
		if !er.Observable {
			result.Observable = false
		}
		if er.Level > result.Level {
			result.Level = er.Level
		}
	}
	if !result.Observable {
		return result, errs.New(errs.SystemNotObservable, "system fails inference observability")
	}
	return result, nil
}
