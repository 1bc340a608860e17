package timezone

import (
	"errors"
	"fmt"
	"time"

	"github.com/klokku/klokku-calendar/internal/utils"
	"github.com/klokku/klokku-calendar/pkg/temporal"
	log "github.com/sirupsen/logrus"
)

var ErrInvalidArgument = errors.New("invalid argument")

// maxBoundaries caps the scan so a zone whose rules only ever change abbreviations
// cannot loop forever.
const maxBoundaries = 10000

// Transition is one change of a zone's UTC offset.
type Transition struct {
	Instant                 temporal.Instant `json:"instant"`
	OffsetBefore            string           `json:"offsetBefore"`
	OffsetBeforeNanoseconds int64            `json:"offsetBeforeNanoseconds"`
	OffsetAfter             string           `json:"offsetAfter"`
	OffsetAfterNanoseconds  int64            `json:"offsetAfterNanoseconds"`
}

// Limit bounds a search either by count or by an exclusive end. Exactly one must be set.
type Limit struct {
	MaxTransitions int
	Until          temporal.Value
}

func MaxTransitions(n int) Limit {
	return Limit{MaxTransitions: n}
}

func Until(end temporal.Value) Limit {
	return Limit{Until: end}
}

func (l Limit) validate() error {
	if l.MaxTransitions < 0 {
		return fmt.Errorf("%w: negative transition count %d", ErrInvalidArgument, l.MaxTransitions)
	}
	hasCount := l.MaxTransitions > 0
	hasEnd := l.Until != nil
	if hasCount && hasEnd {
		return fmt.Errorf("%w: count and end date are mutually exclusive", ErrInvalidArgument)
	}
	if !hasCount && !hasEnd {
		return fmt.Errorf("%w: either a count or an end date is required", ErrInvalidArgument)
	}
	return nil
}

type Finder struct {
	clock utils.Clock
}

func NewFinder(clock utils.Clock) *Finder {
	return &Finder{clock: clock}
}

// FindTransitions walks zone's offset changes forward from start (now when nil),
// one "next boundary" query at a time, until the limit is reached or the zone has
// no further scheduled changes. Fixed-offset zones yield an empty slice.
func (f *Finder) FindTransitions(zone string, start temporal.Value, limit Limit) ([]Transition, error) {
	if err := limit.validate(); err != nil {
		return nil, err
	}
	loc, err := temporal.LoadZone(zone)
	if err != nil {
		return nil, err
	}

	cursor := f.clock.Now().In(loc)
	if start != nil {
		resolved, err := temporal.ResolveToInstant(start, loc)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve search start: %w", err)
		}
		cursor = resolved.Time().In(loc)
	}

	var until time.Time
	if limit.Until != nil {
		resolved, err := temporal.ResolveToInstant(limit.Until, loc)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve search end: %w", err)
		}
		until = resolved.Time()
	}

	transitions := make([]Transition, 0)
	_, offset := cursor.Zone()
	for i := 0; i < maxBoundaries; i++ {
		if limit.MaxTransitions > 0 && len(transitions) >= limit.MaxTransitions {
			return transitions, nil
		}
		_, next := cursor.ZoneBounds()
		if next.IsZero() {
			return transitions, nil
		}
		if !until.IsZero() && !next.Before(until) {
			return transitions, nil
		}
		_, nextOffset := next.Zone()
		if nextOffset != offset {
			transitions = append(transitions, newTransition(next, offset, nextOffset))
			offset = nextOffset
		}
		cursor = next
	}
	log.Warnf("transition search for %s stopped after %d zone boundaries", zone, maxBoundaries)
	return transitions, nil
}

func newTransition(at time.Time, before, after int) Transition {
	return Transition{
		Instant:                 temporal.NewInstant(at),
		OffsetBefore:            temporal.FormatOffset(before),
		OffsetBeforeNanoseconds: int64(before) * int64(time.Second),
		OffsetAfter:             temporal.FormatOffset(after),
		OffsetAfterNanoseconds:  int64(after) * int64(time.Second),
	}
}
