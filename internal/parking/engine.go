package parking

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"parking-tower/internal/logging"
)

var tracer = otel.Tracer("parking-tower/engine")

var (
	ErrInvalidConfig       = errors.New("invalid configuration")
	ErrUnknownSpace        = errors.New("unknown space")
	ErrSpaceNotOccupied    = errors.New("space not occupied")
	ErrUnknownVehicleClass = errors.New("unknown vehicle class")
)

const (
	secondsPerHour = 3600

	// One immediate retry after a lost allocation race before the vehicle
	// is queued.
	allocationRetries = 1

	// Consecutive failed drain attempts for the same queue head before the
	// condition is reported.
	starvationThreshold = 5
)

type EngineState string

const (
	StateStopped EngineState = "stopped"
	StateRunning EngineState = "running"
)

type Config struct {
	Levels                   int
	SpacesPerLevel           int
	MotorcycleSpacesPerLevel int
	TruckSpacesPerLevel      int

	HourlyRates map[VehicleClass]float64

	// BaseEntryRate and BaseExitRate are vehicles per hour off peak.
	BaseEntryRate  float64
	BaseExitRate   float64
	PeakMultiplier float64
	PeakWindows    []PeakWindow

	PaymentSuccessRate float64
	TickInterval       time.Duration

	// Seed fixes the random stream for reproducible runs. Zero seeds from
	// the wall clock.
	Seed int64
}

func DefaultConfig() Config {
	return Config{
		Levels:                   15,
		SpacesPerLevel:           20,
		MotorcycleSpacesPerLevel: 2,
		TruckSpacesPerLevel:      2,
		HourlyRates: map[VehicleClass]float64{
			ClassCar:        3.0,
			ClassSUV:        4.0,
			ClassTruck:      6.0,
			ClassMotorcycle: 2.0,
		},
		BaseEntryRate:      120,
		BaseExitRate:       100,
		PeakMultiplier:     3.0,
		PeakWindows:        []PeakWindow{{StartHour: 7, EndHour: 9}, {StartHour: 17, EndHour: 19}},
		PaymentSuccessRate: 0.95,
		TickInterval:       time.Second,
	}
}

// Engine drives the garage simulation. All state mutation happens on the
// tick goroutine or in admin calls, serialized by mu; reads of the grid go
// through the grid's own lock and may interleave freely.
type Engine struct {
	mu sync.Mutex

	cfg     Config
	grid    *SpaceGrid
	queue   *WaitQueue
	fees    *FeeSchedule
	rates   *RateModel
	factory *VehicleFactory
	rng     *rand.Rand
	now     func() time.Time

	recorder Recorder
	metrics  *engineMetrics

	active    map[string]*Vehicle
	parkedIDs []string

	totalEntries int64
	totalExits   int64
	totalRevenue float64
	staySum      time.Duration

	headID     string
	headMisses int

	state  EngineState
	stopCh chan struct{}
	done   sync.WaitGroup
}

func NewEngine(cfg Config, recorder Recorder) (*Engine, error) {
	if cfg.TickInterval <= 0 {
		return nil, fmt.Errorf("tick interval %s must be positive: %w", cfg.TickInterval, ErrInvalidConfig)
	}
	if cfg.PaymentSuccessRate < 0 || cfg.PaymentSuccessRate > 1 {
		return nil, fmt.Errorf("payment success rate %.2f outside [0,1]: %w", cfg.PaymentSuccessRate, ErrInvalidConfig)
	}
	for _, w := range arrivalWeights {
		if _, ok := cfg.HourlyRates[w.class]; !ok {
			return nil, fmt.Errorf("no hourly rate for class %q: %w", w.class, ErrInvalidConfig)
		}
	}

	grid, err := NewSpaceGrid(cfg.Levels, cfg.SpacesPerLevel, ClassRules{
		MotorcyclePerLevel: cfg.MotorcycleSpacesPerLevel,
		TruckPerLevel:      cfg.TruckSpacesPerLevel,
	})
	if err != nil {
		return nil, err
	}
	fees, err := NewFeeSchedule(cfg.HourlyRates)
	if err != nil {
		return nil, err
	}
	rates, err := NewRateModel(cfg.BaseEntryRate, cfg.BaseExitRate, cfg.PeakMultiplier, cfg.PeakWindows)
	if err != nil {
		return nil, err
	}
	metrics, err := newEngineMetrics(otel.Meter("parking-tower/engine"))
	if err != nil {
		return nil, err
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	return &Engine{
		cfg:      cfg,
		grid:     grid,
		queue:    NewWaitQueue(),
		fees:     fees,
		rates:    rates,
		factory:  NewVehicleFactory(rng),
		rng:      rng,
		now:      time.Now,
		recorder: recorder,
		metrics:  metrics,
		active:   make(map[string]*Vehicle),
		state:    StateStopped,
	}, nil
}

// Start spawns the tick loop. Starting a running engine is an error.
func (e *Engine) Start() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == StateRunning {
		return fmt.Errorf("engine already running")
	}
	e.stopCh = make(chan struct{})
	e.state = StateRunning
	e.done.Add(1)
	go e.run(e.stopCh)

	logging.Logger().Info().
		Int("total_spaces", e.grid.TotalCount()).
		Dur("tick_interval", e.cfg.TickInterval).
		Msg("engine started")
	return nil
}

// Stop halts the tick loop and blocks until the in-flight tick finishes.
// No state changes after Stop returns. Stopping a stopped engine is a
// no-op.
func (e *Engine) Stop() {
	e.mu.Lock()
	if e.state != StateRunning {
		e.mu.Unlock()
		return
	}
	e.state = StateStopped
	close(e.stopCh)
	e.mu.Unlock()

	e.done.Wait()

	e.mu.Lock()
	entries, exits, revenue := e.totalEntries, e.totalExits, e.totalRevenue
	queued := e.queue.Len()
	e.mu.Unlock()

	logging.Logger().Info().
		Int64("total_entries", entries).
		Int64("total_exits", exits).
		Float64("total_revenue", revenue).
		Int("still_queued", queued).
		Msg("engine stopped")
}

func (e *Engine) State() EngineState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

func (e *Engine) run(stop <-chan struct{}) {
	defer e.done.Done()
	ticker := time.NewTicker(e.cfg.TickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			e.tick()
		}
	}
}

// tick advances the simulation by one interval: one Bernoulli draw for an
// arrival and an independent draw for a departure, entry processed before
// exit.
func (e *Engine) tick() {
	started := time.Now()
	ctx, span := tracer.Start(context.Background(), "engine.tick")
	defer span.End()

	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()
	tickSeconds := e.cfg.TickInterval.Seconds()
	entryProb := e.rates.EntryRate(now) / secondsPerHour * tickSeconds
	exitProb := e.rates.ExitRate(now) / secondsPerHour * tickSeconds

	entryDraw := e.rng.Float64()
	exitDraw := e.rng.Float64()

	if entryDraw < entryProb {
		v := e.factory.Next(now)
		e.admitLocked(ctx, now, v)
	}
	if exitDraw < exitProb {
		e.departRandomLocked(ctx, now)
	}

	span.SetAttributes(
		attribute.Int("garage.occupied", e.grid.OccupiedCount()),
		attribute.Int("garage.queued", e.queue.Len()),
	)
	e.metrics.recordTick(ctx, time.Since(started))
}

// admitLocked places the vehicle in the first compatible free space. A
// lost allocation race is retried once; when nothing compatible is free
// the vehicle joins the wait queue. Caller holds e.mu.
func (e *Engine) admitLocked(ctx context.Context, now time.Time, v *Vehicle) (string, bool) {
	for attempt := 0; attempt <= allocationRetries; attempt++ {
		spaceID, ok := e.grid.FindCompatible(v.Class)
		if !ok {
			break
		}
		if e.grid.Allocate(spaceID, v) {
			e.bindLocked(ctx, now, v, spaceID)
			return spaceID, true
		}
	}

	e.queue.Enqueue(v)
	e.emit(ctx, Event{Type: EventVehicleQueued, Timestamp: now, Plate: v.Plate})
	e.metrics.recordQueued(ctx, v.Class)
	logging.Debug(ctx).
		Str("plate", v.Plate).
		Str("class", string(v.Class)).
		Int("queue_length", e.queue.Len()).
		Msg("vehicle queued")
	return "", false
}

// bindLocked records a successful allocation: active set, counters, event.
// Caller holds e.mu.
func (e *Engine) bindLocked(ctx context.Context, now time.Time, v *Vehicle, spaceID string) {
	v.SpaceID = spaceID
	e.active[v.ID] = v
	e.parkedIDs = append(e.parkedIDs, v.ID)
	e.totalEntries++
	e.emit(ctx, Event{Type: EventVehicleEntry, Timestamp: now, Plate: v.Plate, SpaceID: spaceID})
	e.metrics.recordEntry(ctx, v.Class)
	logging.Debug(ctx).
		Str("plate", v.Plate).
		Str("class", string(v.Class)).
		Str("space_id", spaceID).
		Msg("vehicle parked")
}

// departRandomLocked picks a uniformly random parked vehicle and tries to
// check it out. Caller holds e.mu.
func (e *Engine) departRandomLocked(ctx context.Context, now time.Time) {
	if len(e.parkedIDs) == 0 {
		return
	}
	id := e.parkedIDs[e.rng.Intn(len(e.parkedIDs))]
	e.departLocked(ctx, now, e.active[id])
}

// departLocked runs the exit protocol: fee, payment draw, release, queue
// drain. A failed payment leaves the vehicle parked for a later retry.
// Caller holds e.mu.
func (e *Engine) departLocked(ctx context.Context, now time.Time, v *Vehicle) {
	fee, err := e.fees.Calculate(v.Class, v.EntryTime, now)
	if err != nil {
		logging.Error(ctx).Err(err).Str("plate", v.Plate).Msg("fee calculation failed")
		return
	}

	if e.rng.Float64() >= e.cfg.PaymentSuccessRate {
		e.emit(ctx, Event{Type: EventPaymentFailed, Timestamp: now, Plate: v.Plate, SpaceID: v.SpaceID, Amount: fee})
		e.metrics.recordPaymentFailure(ctx, v.Class)
		logging.Warn(ctx).
			Str("plate", v.Plate).
			Float64("amount", fee).
			Msg("payment failed, vehicle stays parked")
		return
	}

	spaceID := v.SpaceID
	e.grid.Release(spaceID)
	e.finishExitLocked(ctx, now, v, spaceID, fee)
	e.drainLocked(ctx, now, spaceID)
}

// finishExitLocked removes the vehicle from the active set and settles the
// counters. Caller holds e.mu and has already released the space.
func (e *Engine) finishExitLocked(ctx context.Context, now time.Time, v *Vehicle, spaceID string, fee float64) {
	exitAt := now
	v.ExitTime = &exitAt
	v.Fee = fee
	v.SpaceID = ""
	delete(e.active, v.ID)
	e.removeParkedLocked(v.ID)

	e.totalExits++
	e.totalRevenue += fee
	e.staySum += exitAt.Sub(v.EntryTime)

	e.emit(ctx, Event{Type: EventVehicleExit, Timestamp: now, Plate: v.Plate, SpaceID: spaceID, Amount: fee})
	e.metrics.recordExit(ctx, v.Class, fee)
	logging.Debug(ctx).
		Str("plate", v.Plate).
		Str("space_id", spaceID).
		Float64("fee", fee).
		Msg("vehicle exited")
}

// drainLocked offers a freed space to the queue head. Only the head is
// considered; an incompatible head goes back to the front of the line and
// waits for the next free space. Caller holds e.mu.
func (e *Engine) drainLocked(ctx context.Context, now time.Time, spaceID string) {
	head, ok := e.queue.Dequeue()
	if !ok {
		return
	}
	if e.grid.Allocate(spaceID, head) {
		e.metrics.recordDrained(ctx)
		e.bindLocked(ctx, now, head, spaceID)
		if head.ID == e.headID {
			e.headID = ""
			e.headMisses = 0
		}
		return
	}

	e.queue.PushFront(head)
	if head.ID == e.headID {
		e.headMisses++
	} else {
		e.headID = head.ID
		e.headMisses = 1
	}
	if e.headMisses%starvationThreshold == 0 {
		e.metrics.recordStarvation(ctx)
		logging.Warn(ctx).
			Str("plate", head.Plate).
			Str("class", string(head.Class)).
			Int("misses", e.headMisses).
			Msg("wait queue head cannot be matched to freed spaces")
	}
}

func (e *Engine) removeParkedLocked(id string) {
	for i, pid := range e.parkedIDs {
		if pid == id {
			e.parkedIDs = append(e.parkedIDs[:i], e.parkedIDs[i+1:]...)
			return
		}
	}
}

func (e *Engine) emit(ctx context.Context, ev Event) {
	if e.recorder != nil {
		e.recorder.Append(ev)
	}
	attrs := []attribute.KeyValue{attribute.String("vehicle.plate", ev.Plate)}
	if ev.SpaceID != "" {
		attrs = append(attrs, attribute.String("space.id", ev.SpaceID))
	}
	if ev.Amount != 0 {
		attrs = append(attrs, attribute.Float64("fee.amount", ev.Amount))
	}
	trace.SpanFromContext(ctx).AddEvent(string(ev.Type), trace.WithAttributes(attrs...))
}

// GetSystemStatus assembles a consistent point-in-time view of the garage.
func (e *Engine) GetSystemStatus() SystemStatus {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()
	occupied := e.grid.OccupiedCount()
	total := e.grid.TotalCount()

	var avgStay float64
	if e.totalExits > 0 {
		avgStay = e.staySum.Minutes() / float64(e.totalExits)
	}

	return SystemStatus{
		Timestamp:       now,
		State:           e.state,
		TotalSpaces:     total,
		OccupiedSpaces:  occupied,
		AvailableSpaces: total - occupied,
		QueueLength:     e.queue.Len(),
		IsPeakHour:      e.rates.IsPeak(now),
		EntryRate:       e.rates.EntryRate(now),
		ExitRate:        e.rates.ExitRate(now),
		Statistics: Statistics{
			TotalEntries:   e.totalEntries,
			TotalExits:     e.totalExits,
			TotalRevenue:   e.totalRevenue,
			AvgStayMinutes: avgStay,
			OccupancyRate:  float64(occupied) / float64(total),
		},
	}
}

// GetParkingGrid returns the per-space view, ordered by level and position.
func (e *Engine) GetParkingGrid() []SpaceState {
	return e.grid.Snapshot()
}

// FindVehicle locates a parked vehicle by plate.
func (e *Engine) FindVehicle(plate string) (SpaceState, bool) {
	return e.grid.FindByPlate(plate)
}

type AdmitResult struct {
	VehicleID string       `json:"vehicle_id"`
	Plate     string       `json:"plate"`
	Class     VehicleClass `json:"class"`
	SpaceID   string       `json:"space_id,omitempty"`
	Queued    bool         `json:"queued"`
}

// InjectVehicle admits a caller-supplied vehicle outside the random
// arrival process, following the same allocation path as simulated
// arrivals.
func (e *Engine) InjectVehicle(ctx context.Context, class VehicleClass, plate string) (AdmitResult, error) {
	if !class.Valid() {
		return AdmitResult{}, fmt.Errorf("class %q: %w", class, ErrUnknownVehicleClass)
	}

	ctx, span := tracer.Start(ctx, "engine.inject_vehicle",
		trace.WithAttributes(attribute.String("vehicle.class", string(class))))
	defer span.End()

	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()
	v := e.factory.Build(class, plate, now)
	spaceID, placed := e.admitLocked(ctx, now, v)
	return AdmitResult{
		VehicleID: v.ID,
		Plate:     v.Plate,
		Class:     v.Class,
		SpaceID:   spaceID,
		Queued:    !placed,
	}, nil
}

// ForceRelease evicts whatever vehicle occupies the space without running
// the payment protocol, then offers the space to the queue head.
func (e *Engine) ForceRelease(ctx context.Context, spaceID string) error {
	ctx, span := tracer.Start(ctx, "engine.force_release",
		trace.WithAttributes(attribute.String("space.id", spaceID)))
	defer span.End()

	e.mu.Lock()
	defer e.mu.Unlock()

	v, ok := e.grid.VehicleAt(spaceID)
	if !ok {
		if !e.grid.Contains(spaceID) {
			return fmt.Errorf("space %q: %w", spaceID, ErrUnknownSpace)
		}
		return fmt.Errorf("space %q: %w", spaceID, ErrSpaceNotOccupied)
	}

	now := e.now()
	e.grid.Release(spaceID)
	e.finishExitLocked(ctx, now, v, spaceID, 0)
	logging.Info(ctx).
		Str("space_id", spaceID).
		Str("plate", v.Plate).
		Msg("space force released")
	e.drainLocked(ctx, now, spaceID)
	return nil
}

// SetSpaceMaintenance toggles the out-of-service flag on a space.
func (e *Engine) SetSpaceMaintenance(ctx context.Context, spaceID string, out bool) error {
	ctx, span := tracer.Start(ctx, "engine.set_space_maintenance",
		trace.WithAttributes(
			attribute.String("space.id", spaceID),
			attribute.Bool("out_of_service", out),
		))
	defer span.End()

	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.grid.SetOutOfService(spaceID, out) {
		return fmt.Errorf("space %q: %w", spaceID, ErrUnknownSpace)
	}
	logging.Info(ctx).
		Str("space_id", spaceID).
		Bool("out_of_service", out).
		Msg("space maintenance flag updated")
	return nil
}
