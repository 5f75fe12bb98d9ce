package trace

import (
	"errors"
	"io"
	"log/slog"

	"github.com/roach88/statetrace/internal/history"
)

// Result is the outcome of a reconstruction.
type Result struct {
	// WorkflowStartedTimestamp is the start event time in unix seconds.
	WorkflowStartedTimestamp int64

	// StartInput is the decoded workflow start payload.
	StartInput history.StartInput

	// Records is the reconstructed trace in first-appearance order.
	Records []Record

	// Dropped lists completion and failure events that matched no record.
	Dropped []DroppedEvent
}

// DroppedEvent is a MissingActivityCorrelation diagnostic: an activity
// outcome for an activity the engine does not track.
type DroppedEvent struct {
	EventIndex int               `json:"eventIndex"`
	EventType  history.EventType `json:"eventType"`
	ActivityID string            `json:"activityId"`
}

// Option configures Reconstruct.
type Option func(*reconstruction)

// WithLogger sets the logger used for diagnostics. The default discards.
func WithLogger(logger *slog.Logger) Option {
	return func(r *reconstruction) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// reconstruction bundles the state owned by one Reconstruct call.
type reconstruction struct {
	trace      *Trace
	origins    *OriginTracker
	correlator *Correlator
	byActivity map[string]int
	dropped    []DroppedEvent
	logger     *slog.Logger
}

// Reconstruct rebuilds the state execution trace of a workflow history.
//
// events[0] must be the WorkflowExecutionStarted event. Any correlation or
// decode failure aborts the reconstruction and no partial result is returned.
func Reconstruct(events []history.Event, opts ...Option) (*Result, error) {
	tr := &Trace{}
	origins := NewOriginTracker()
	r := &reconstruction{
		trace:      tr,
		origins:    origins,
		correlator: NewCorrelator(origins, tr),
		byActivity: make(map[string]int),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}

	if len(events) == 0 {
		return nil, &history.DecodeError{EventIndex: 0, EventType: history.EventWorkflowExecutionStarted, Err: ErrEmptyHistory}
	}

	start, err := history.DecodeStartInput(0, events[0])
	if err != nil {
		return nil, err
	}
	if err := origins.Seed(start.StartStateID, Origin{
		SourceEventIndex: WorkflowStartIndex,
		Options:          start.StateOptions,
	}); err != nil {
		return nil, err
	}

	r.logger.Debug("reconstruction starting",
		"events", len(events),
		"start_state", start.StartStateID)

	for i := 1; i < len(events); i++ {
		if err := r.apply(i, events[i]); err != nil {
			r.logger.Debug("reconstruction aborted", "event_index", i, "error", err)
			return nil, err
		}
	}

	r.logger.Debug("reconstruction finished",
		"records", tr.Len(),
		"dropped", len(r.dropped),
		"unconsumed_states", origins.States())

	return &Result{
		WorkflowStartedTimestamp: events[0].Unix(),
		StartInput:               start,
		Records:                  tr.Records(),
		Dropped:                  r.dropped,
	}, nil
}

// apply dispatches one event by kind.
func (r *reconstruction) apply(i int, ev history.Event) error {
	switch ev.Type {
	case history.EventActivityTaskScheduled:
		return r.schedule(i, ev)
	case history.EventActivityTaskCompleted, history.EventActivityTaskFailed:
		return r.complete(i, ev)
	case history.EventWorkflowExecutionSignaled:
		r.mark(RecordSignalReceived, ev)
	case history.EventWorkflowExecutionCompleted:
		r.mark(RecordWorkflowCompleted, ev)
	case history.EventWorkflowExecutionFailed:
		r.mark(RecordWorkflowFailed, ev)
	}
	return nil
}

func (r *reconstruction) schedule(i int, ev history.Event) error {
	if ev.ActivityScheduled == nil {
		return &history.DecodeError{EventIndex: i, EventType: ev.Type, Err: history.ErrMissingPayload}
	}

	activityType := ev.ActivityScheduled.ActivityType
	if activityType != history.ActivityStateWaitUntil && activityType != history.ActivityStateExecute {
		r.logger.Debug("activity type not reconstructed",
			"event_index", i,
			"activity_type", activityType)
		return nil
	}

	req, err := history.DecodeStateRequest(i, ev)
	if err != nil {
		return err
	}

	phase := StatePhase{
		StateID:          req.StateID(),
		StateExecutionID: req.StateExecutionID(),
		Input:            req.Request.StateInput,
		FirstAttemptTime: ev.Unix(),
	}

	var rec Record
	if activityType == history.ActivityStateWaitUntil {
		o, err := r.origins.Take(phase.StateID)
		if err != nil {
			return annotate(err, i, phase.StateExecutionID)
		}
		phase.OriginEventIndex = o.SourceEventIndex
		phase.Options = o.Options
		rec = Record{Type: RecordStateWaitUntil, Wait: &WaitPhase{StatePhase: phase}}
	} else {
		res, err := r.correlator.ResolveOriginFor(phase.StateExecutionID, phase.StateID)
		if err != nil {
			return annotate(err, i, phase.StateExecutionID)
		}
		phase.OriginEventIndex = res.OriginEventIndex
		phase.Options = res.Options
		rec = Record{Type: RecordStateExecute, Execute: &ExecutePhase{StatePhase: phase}}
	}

	idx := r.trace.Append(rec)
	r.byActivity[ev.ActivityScheduled.ActivityID] = idx
	if rec.Wait != nil {
		r.correlator.RecordWait(phase.StateExecutionID, idx)
	}

	r.logger.Debug("state phase scheduled",
		"event_index", i,
		"record_index", idx,
		"type", rec.Type,
		"state_id", phase.StateID,
		"state_execution_id", phase.StateExecutionID,
		"origin", phase.OriginEventIndex)
	return nil
}

func (r *reconstruction) complete(i int, ev history.Event) error {
	activityID := ev.ActivityID()
	idx, ok := r.byActivity[activityID]
	if !ok {
		r.logger.Warn("activity outcome without scheduled record",
			"event_index", i,
			"event_type", ev.Type,
			"activity_id", activityID)
		r.dropped = append(r.dropped, DroppedEvent{
			EventIndex: i,
			EventType:  ev.Type,
			ActivityID: activityID,
		})
		return nil
	}

	rec := r.trace.At(idx)
	phase := rec.Phase()
	completed := ev.Unix()
	phase.CompletedTime = &completed

	if ev.Type == history.EventActivityTaskFailed {
		if ev.ActivityFailed != nil {
			phase.Failure = ev.ActivityFailed.Failure
		}
		return nil
	}
	if rec.Execute == nil {
		return nil
	}

	decision, err := history.DecodeStateDecision(i, ev)
	if err != nil {
		return err
	}
	rec.Execute.DecisionOutput = history.Compact(ev.ActivityCompleted.Result)

	for _, next := range decision.Next() {
		if next.IsSystem() {
			continue
		}
		r.origins.Offer(next.StateID, Origin{
			SourceEventIndex: idx,
			Options:          next.StateOptions,
		})
	}
	return nil
}

func (r *reconstruction) mark(t RecordType, ev history.Event) {
	r.trace.Append(Record{Type: t, Marker: &Marker{Timestamp: ev.Unix()}})
}

// annotate fills in the event position on correlation errors.
func annotate(err error, eventIndex int, stateExecutionID string) error {
	var ce *CorrelationError
	if errors.As(err, &ce) {
		ce.EventIndex = eventIndex
		ce.StateExecutionID = stateExecutionID
	}
	return err
}
