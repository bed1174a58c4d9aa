package parking

import (
	"fmt"
	"sync"
	"time"
)

// ClassRules reserves a fixed band of positions on every level: the first
// MotorcyclePerLevel positions for motorcycles and the last TruckPerLevel
// positions for trucks. Everything in between is standard.
type ClassRules struct {
	MotorcyclePerLevel int
	TruckPerLevel      int
}

// SpaceGrid is the concurrency-safe inventory of parking spaces. Spaces are
// ordered by (level, position) and allocation always picks the first
// compatible free space in that order.
type SpaceGrid struct {
	mu       sync.RWMutex
	levels   int
	perLevel int
	spaces   []*Space
	byID     map[string]*Space
	occupied int
}

func NewSpaceGrid(levels, perLevel int, rules ClassRules) (*SpaceGrid, error) {
	if levels <= 0 || perLevel <= 0 {
		return nil, fmt.Errorf("grid dimensions %dx%d: %w", levels, perLevel, ErrInvalidConfig)
	}
	if rules.MotorcyclePerLevel < 0 || rules.TruckPerLevel < 0 {
		return nil, fmt.Errorf("negative class reservation: %w", ErrInvalidConfig)
	}
	if rules.MotorcyclePerLevel+rules.TruckPerLevel > perLevel {
		return nil, fmt.Errorf("class reservations exceed %d positions per level: %w", perLevel, ErrInvalidConfig)
	}

	g := &SpaceGrid{
		levels:   levels,
		perLevel: perLevel,
		spaces:   make([]*Space, 0, levels*perLevel),
		byID:     make(map[string]*Space, levels*perLevel),
	}
	for level := 1; level <= levels; level++ {
		for position := 1; position <= perLevel; position++ {
			class := SpaceStandard
			switch {
			case position <= rules.MotorcyclePerLevel:
				class = SpaceMotorcycle
			case position > perLevel-rules.TruckPerLevel:
				class = SpaceTruck
			}
			sp := NewSpace(level, position, class)
			g.spaces = append(g.spaces, sp)
			g.byID[sp.ID] = sp
		}
	}
	return g, nil
}

// FindCompatible returns the ID of the first free space that accepts the
// given vehicle class, scanning levels bottom to top.
func (g *SpaceGrid) FindCompatible(class VehicleClass) (string, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	for _, sp := range g.spaces {
		if !sp.Occupied && !sp.OutOfService && sp.Class.Accepts(class) {
			return sp.ID, true
		}
	}
	return "", false
}

// Allocate binds the vehicle to the space if it is still free, in service
// and compatible. The check and the bind happen under one lock so two
// callers can never win the same space.
func (g *SpaceGrid) Allocate(spaceID string, v *Vehicle) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	sp, ok := g.byID[spaceID]
	if !ok || sp.Occupied || sp.OutOfService || !sp.Class.Accepts(v.Class) {
		return false
	}
	sp.occupy(v)
	g.occupied++
	return true
}

// Release frees the space. Releasing a free or unknown space is a no-op
// and reports false.
func (g *SpaceGrid) Release(spaceID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	sp, ok := g.byID[spaceID]
	if !ok || !sp.Occupied {
		return false
	}
	sp.vacate()
	g.occupied--
	return true
}

// VehicleAt returns the vehicle currently bound to the space.
func (g *SpaceGrid) VehicleAt(spaceID string) (*Vehicle, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	sp, ok := g.byID[spaceID]
	if !ok || !sp.Occupied {
		return nil, false
	}
	return sp.Vehicle, true
}

// SetOutOfService flags a space for maintenance. An occupied space keeps
// its vehicle; the flag only gates future allocations.
func (g *SpaceGrid) SetOutOfService(spaceID string, out bool) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	sp, ok := g.byID[spaceID]
	if !ok {
		return false
	}
	sp.OutOfService = out
	return true
}

func (g *SpaceGrid) Contains(spaceID string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.byID[spaceID]
	return ok
}

func (g *SpaceGrid) OccupiedCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.occupied
}

func (g *SpaceGrid) TotalCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.spaces)
}

type VehicleSummary struct {
	Plate     string       `json:"plate"`
	Class     VehicleClass `json:"class"`
	EntryTime time.Time    `json:"entry_time"`
}

type SpaceState struct {
	ID           string          `json:"space_id"`
	Level        int             `json:"level"`
	Position     int             `json:"position"`
	Class        SpaceClass      `json:"class"`
	Occupied     bool            `json:"occupied"`
	OutOfService bool            `json:"out_of_service,omitempty"`
	Vehicle      *VehicleSummary `json:"vehicle,omitempty"`
}

// Snapshot copies the full grid state under the read lock so callers never
// observe a space mid-update.
func (g *SpaceGrid) Snapshot() []SpaceState {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]SpaceState, 0, len(g.spaces))
	for _, sp := range g.spaces {
		out = append(out, stateOf(sp))
	}
	return out
}

// FindByPlate locates a parked vehicle by registration number.
func (g *SpaceGrid) FindByPlate(plate string) (SpaceState, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	for _, sp := range g.spaces {
		if sp.Occupied && sp.Vehicle.Plate == plate {
			return stateOf(sp), true
		}
	}
	return SpaceState{}, false
}

func stateOf(sp *Space) SpaceState {
	st := SpaceState{
		ID:           sp.ID,
		Level:        sp.Level,
		Position:     sp.Position,
		Class:        sp.Class,
		Occupied:     sp.Occupied,
		OutOfService: sp.OutOfService,
	}
	if sp.Occupied {
		st.Vehicle = &VehicleSummary{
			Plate:     sp.Vehicle.Plate,
			Class:     sp.Vehicle.Class,
			EntryTime: sp.Vehicle.EntryTime,
		}
	}
	return st
}
