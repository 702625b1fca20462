package app

import (
	"fmt"
	"time"

	"github.com/artist-analytics/datadog"
	"github.com/artist-analytics/logger"
	"github.com/sirupsen/logrus"
)

type State string

const (
	StateResolvingIdentity State = "RESOLVING_IDENTITY"
	StateFetchingSources   State = "FETCHING_SOURCES"
	StateMerging           State = "MERGING"
	StateBackfilling       State = "BACKFILLING"
	StatePersisting        State = "PERSISTING"
	StateDone              State = "DONE"
	StateFailed            State = "FAILED"
)

// FAILED is only reachable while resolving identity, later failures degrade the result instead
var transitions = map[State][]State{
	StateResolvingIdentity: {StateFetchingSources, StateFailed},
	StateFetchingSources:   {StateMerging},
	StateMerging:           {StateBackfilling},
	StateBackfilling:       {StatePersisting, StateDone},
	StatePersisting:        {StateDone},
}

// run tracks one ingestion request through the state machine
type run struct {
	name    string
	state   State
	started time.Time
	log     *logrus.Entry
	history []State
}

func newRun(name string) *run {
	return &run{
		name:    name,
		state:   StateResolvingIdentity,
		started: time.Now(),
		log:     logger.WithArtist(name),
		history: []State{StateResolvingIdentity},
	}
}

func (r *run) moveTo(next State) {
	allowed := false

	for _, candidate := range transitions[r.state] {
		if candidate == next {
			allowed = true
			break
		}
	}

	if !allowed {
		panic(fmt.Sprintf("illegal ingestion transition %s -> %s", r.state, next))
	}

	r.log.Infof("Ingestion %s -> %s", r.state, next)
	datadog.Increment(1, datadog.IngestionState, datadog.StateTag.Tag(string(next)))

	r.state = next
	r.history = append(r.history, next)

	if next == StateDone || next == StateFailed {
		datadog.Distribution(time.Since(r.started), datadog.IngestionTime, datadog.StateTag.Tag(string(next)))
	}
}
