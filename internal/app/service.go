// Package service runs the recognition loop: it calibrates the panel when no
// usable bounds are stored, then classifies every completed touch cycle and
// hands matched commands to the action queue.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/okian/touchgest/internal/adapters/device"
	"github.com/okian/touchgest/internal/adapters/mq/queue"
	"github.com/okian/touchgest/internal/adapters/mq/worker"
	"github.com/okian/touchgest/internal/adapters/repository"
	"github.com/okian/touchgest/internal/domain/calibration"
	"github.com/okian/touchgest/internal/domain/classifier"
	"github.com/okian/touchgest/internal/domain/geometry"
	"github.com/okian/touchgest/internal/domain/model"
	"github.com/okian/touchgest/internal/domain/rules"
	"github.com/okian/touchgest/internal/domain/tracker"
	"github.com/okian/touchgest/internal/domain/types"
	"github.com/okian/touchgest/pkg/logger"
	"github.com/okian/touchgest/pkg/metrics"
)

// Store provides the persisted rules and calibration.
type Store interface {
	repository.BoundsStore
	repository.RuleStore
}

// ActionQueue accepts matched commands for asynchronous execution.
type ActionQueue interface {
	Enqueue(ctx context.Context, j queue.Job) error
	Len(ctx context.Context) int
	Cap() int
}

// Service owns the tracker, classifier and rule engine. Run drives them from
// a single goroutine; GetStats may be called concurrently.
type Service struct {
	source device.Source
	store  Store

	// Configuration
	minEdgeDistance float64
	samples         int
	device          string
	actions         ActionQueue
	counters        *worker.Counters
	workers         int
	onGesture       GestureHandler

	// Loop state, owned by Run
	tracker    *tracker.Tracker
	classifier *classifier.Classifier
	engine     *rules.Engine

	running atomic.Bool

	// Snapshot published for GetStats
	mu        sync.RWMutex
	phase     types.Phase
	stage     string
	bounds    *model.Bounds
	ruleCount int
	startedAt time.Time

	slotsDown atomic.Int64
	gestures  atomic.Int64
	matched   atomic.Int64
	dropped   atomic.Int64

	logger logger.Logger
}

// New constructs a service reading from source and loading its files from
// store.
func New(source device.Source, store Store, opts ...Option) *Service {
	s := &Service{
		source:          source,
		store:           store,
		minEdgeDistance: classifier.DefaultMinEdgeDistance,
		samples:         calibration.DefaultSamples,
		tracker:         tracker.New(),
		engine:          rules.New(nil),
		phase:           types.PhaseStarting,
		logger:          nil, // replaced in Run when unset
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Run loads rules and bounds, calibrates if needed and then recognizes
// gestures until the source is exhausted or ctx is cancelled. Both end the
// loop without error. Source failures and out-of-range slots are returned.
func (s *Service) Run(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer s.running.Store(false)

	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.mu.Lock()
	s.startedAt = time.Now()
	s.mu.Unlock()
	defer s.setPhase(types.PhaseStopped)

	s.logger.Info(ctx, "starting gesture service", logger.String("device", s.device))

	s.loadRules(ctx)

	bounds, err := s.loadBounds(ctx)
	if err != nil {
		bounds, err = s.calibrate(ctx)
		if err != nil {
			return ignoreEnd(err)
		}
	}

	return ignoreEnd(s.recognize(ctx, bounds))
}

// ignoreEnd maps the normal ends of the loop to nil.
func ignoreEnd(err error) error {
	if isEnd(err) {
		return nil
	}
	return err
}

func isEnd(err error) bool {
	return errors.Is(err, io.EOF) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

func (s *Service) loadRules(ctx context.Context) {
	list, skipped, err := s.store.LoadRules(ctx)
	if err != nil {
		s.logger.Warn(ctx, "no gesture rules loaded; gestures will only be logged", logger.Error(err))
		list = nil
	}
	for _, sk := range skipped {
		s.logger.Warn(ctx, "skipping rule line",
			logger.Int("line", sk.Line),
			logger.String("text", sk.Text),
			logger.String("reason", sk.Reason))
	}

	s.engine = rules.New(list)
	metrics.UpdateRulesLoaded(s.engine.Len())

	s.mu.Lock()
	s.ruleCount = s.engine.Len()
	s.mu.Unlock()

	s.logger.Info(ctx, "gesture rules loaded", logger.Int("rules", s.engine.Len()))
}

func (s *Service) loadBounds(ctx context.Context) (model.Bounds, error) {
	b, err := s.store.LoadBounds(ctx)
	switch {
	case err == nil:
		s.logger.Info(ctx, "calibration loaded", boundsFields(b)...)
		return b, nil
	case errors.Is(err, repository.ErrNotFound):
		s.logger.Info(ctx, "no calibration found; starting calibration")
	default:
		s.logger.Warn(ctx, "unusable calibration; starting calibration", logger.Error(err))
	}
	return model.Bounds{}, err
}

// next reads one batch and applies it to the tracker.
func (s *Service) next(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	batch, err := s.source.Next(ctx)
	if err != nil {
		if isEnd(err) {
			return err
		}
		return fmt.Errorf("%w: %w", ErrSource, err)
	}

	for _, ev := range batch {
		if err := s.tracker.Apply(ev); err != nil {
			metrics.RecordErrorByComponent("tracker", "rejected_event")
			return fmt.Errorf("%w: %w", ErrTracker, err)
		}
		metrics.RecordTouchEvent(ev.Kind.String())
	}

	down := s.tracker.DownCount()
	s.slotsDown.Store(int64(down))
	metrics.UpdateSlotsDown(down)
	return nil
}

// calibrate runs calibration sessions until one yields a valid rectangle,
// then persists it.
func (s *Service) calibrate(ctx context.Context) (model.Bounds, error) {
	s.setPhase(types.PhaseCalibrating)
	session := s.newSession(ctx)

	for !session.Done() {
		if err := s.next(ctx); err != nil {
			return model.Bounds{}, err
		}
		if s.tracker.AnyDown() {
			continue
		}
		ready := s.tracker.DrainReady()
		if len(ready) == 0 {
			continue
		}

		stage := session.Stage()
		p, err := session.Feed(ready)
		switch {
		case errors.Is(err, calibration.ErrMultipleFingers):
			metrics.RecordCalibrationRejected()
			s.logger.Warn(ctx, "use one finger for calibration",
				logger.String("stage", stage.Label()),
				logger.Int("fingers", len(ready)))
			continue
		case errors.Is(err, calibration.ErrInvalidBounds):
			metrics.RecordErrorByComponent("calibration", "invalid_bounds")
			s.logger.Error(ctx, "calibration produced an empty rectangle; starting over",
				boundsFields(session.Bounds())...)
			session = s.newSession(ctx)
			continue
		case err != nil:
			return model.Bounds{}, fmt.Errorf("calibration: %w", err)
		}

		if p.Recorded {
			metrics.RecordCalibrationSample(stage.String())
			s.logger.Debug(ctx, "calibration sample",
				logger.String("stage", stage.Label()),
				logger.Int("samples", p.Samples))
		}
		if p.Advanced {
			s.enterStage(ctx, p.Stage, p.Label)
		}
	}

	b := session.Bounds()
	metrics.RecordCalibrationCompleted()
	s.logger.Info(ctx, "calibration finished",
		append(boundsFields(b), logger.String("session", session.ID()))...)

	if err := s.store.SaveBounds(ctx, b); err != nil {
		metrics.RecordErrorByComponent("repository", "save_bounds")
		s.logger.Error(ctx, "failed to save calibration", logger.Error(err))
	}
	return b, nil
}

func (s *Service) newSession(ctx context.Context) *calibration.Session {
	session := calibration.New(calibration.WithSamples(s.samples))
	s.logger.Info(ctx, "calibration started",
		logger.String("session", session.ID()),
		logger.Int("samples", session.Samples()))
	s.enterStage(ctx, session.Stage(), session.Stage().Label())
	return session
}

func (s *Service) enterStage(ctx context.Context, st calibration.Stage, label string) {
	metrics.UpdateCalibrationStage(int(st))
	s.mu.Lock()
	s.stage = label
	s.mu.Unlock()
	s.logger.Info(ctx, label)
}

// recognize classifies every completed cycle until the source ends.
func (s *Service) recognize(ctx context.Context, b model.Bounds) error {
	s.classifier = classifier.New(
		classifier.WithBounds(b),
		classifier.WithMinEdgeDistance(s.minEdgeDistance),
	)

	s.mu.Lock()
	s.bounds = &b
	s.stage = ""
	s.phase = types.PhaseRecognizing
	s.mu.Unlock()

	s.logger.Info(ctx, "recognizing gestures", logger.Float64("min_edge_distance", s.minEdgeDistance))

	for {
		if err := s.next(ctx); err != nil {
			return err
		}
		if s.tracker.AnyDown() {
			continue
		}
		s.cycle(ctx)
	}
}

// cycle runs one classification pass over the contacts lifted since the last
// pass.
func (s *Service) cycle(ctx context.Context) {
	ready := s.tracker.DrainReady()
	g, ok := s.classifier.Classify(ready)
	if !ok {
		metrics.RecordIdleCycle()
		return
	}

	s.gestures.Add(1)
	metrics.RecordGesture(g.Type.String(), g.Direction.String(), int(g.Fingers))
	if len(ready) == 1 {
		metrics.RecordGestureTravel(geometry.Distance(ready[0].State.Start, ready[0].State.Latest))
	}

	rec := Recognition{Gesture: g, Duration: longest(ready)}
	s.logger.Info(ctx, "gesture recognized",
		logger.String("type", g.Type.String()),
		logger.String("direction", g.Direction.String()),
		logger.Int("fingers", int(g.Fingers)),
		logger.Uint32("duration_ms", rec.Duration))

	rec.Command, rec.Matched = s.engine.Match(g)
	if !rec.Matched {
		metrics.RecordRuleMiss()
		s.logger.Debug(ctx, "no rule for gesture", logger.String("gesture", g.String()))
	} else {
		s.matched.Add(1)
		metrics.RecordRuleMatch()
		s.logger.Info(ctx, "Trigger", logger.String("command", rec.Command))
		s.dispatch(ctx, g, rec.Command)
	}

	if s.onGesture != nil {
		s.onGesture(ctx, rec)
	}
}

func (s *Service) dispatch(ctx context.Context, g model.Gesture, command string) {
	if s.actions == nil {
		return
	}
	job := queue.Job{
		ID:        uuid.NewString(),
		Gesture:   g,
		Command:   command,
		CreatedAt: time.Now(),
	}
	if err := s.actions.Enqueue(ctx, job); err != nil {
		s.dropped.Add(1)
		s.logger.Warn(ctx, "action dropped",
			logger.String("job_id", job.ID),
			logger.String("command", command),
			logger.Error(err))
	}
}

// longest returns the largest touch duration among ready.
func longest(ready []tracker.Ready) uint32 {
	var d uint32
	for _, r := range ready {
		d = max(d, r.State.Duration())
	}
	return d
}

func (s *Service) setPhase(p types.Phase) {
	s.mu.Lock()
	s.phase = p
	s.mu.Unlock()
}

// GetStats returns a snapshot of the service for the status API.
func (s *Service) GetStats() types.Stats {
	s.mu.RLock()
	st := types.Stats{
		Phase:            s.phase,
		Device:           s.device,
		CalibrationStage: s.stage,
		Rules:            s.ruleCount,
		Workers:          s.workers,
	}
	if s.bounds != nil {
		st.Bounds = &types.Bounds{
			MinX: s.bounds.Min.X,
			MinY: s.bounds.Min.Y,
			MaxX: s.bounds.Max.X,
			MaxY: s.bounds.Max.Y,
		}
	}
	if !s.startedAt.IsZero() {
		st.UptimeSeconds = time.Since(s.startedAt).Seconds()
	}
	s.mu.RUnlock()

	st.SlotsDown = int(s.slotsDown.Load())
	st.Gestures = s.gestures.Load()
	st.Matched = s.matched.Load()
	st.ActionsDropped = s.dropped.Load()

	if s.actions != nil {
		st.QueueLength = s.actions.Len(context.Background())
		st.QueueCapacity = s.actions.Cap()
	}
	if s.counters != nil {
		st.ActionsExecuted = s.counters.Executed()
		st.ActionsFailed = s.counters.Failed()
	}
	return st
}

func boundsFields(b model.Bounds) []logger.Field {
	return []logger.Field{
		logger.Float64("min_x", b.Min.X),
		logger.Float64("max_x", b.Max.X),
		logger.Float64("min_y", b.Min.Y),
		logger.Float64("max_y", b.Max.Y),
	}
}
