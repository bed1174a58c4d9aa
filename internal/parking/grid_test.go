package parking

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
)

func testVehicle(id string, class VehicleClass) *Vehicle {
	return &Vehicle{ID: id, Plate: "KA01HH" + id, Class: class}
}

func TestNewSpaceGrid(t *testing.T) {
	g, err := NewSpaceGrid(3, 4, ClassRules{MotorcyclePerLevel: 1, TruckPerLevel: 1})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if g.TotalCount() != 12 {
		t.Errorf("Expected 12 spaces, got %d", g.TotalCount())
	}
	if g.OccupiedCount() != 0 {
		t.Errorf("Expected 0 occupied, got %d", g.OccupiedCount())
	}

	snapshot := g.Snapshot()
	if snapshot[0].ID != "L01-P01" {
		t.Errorf("Expected first space L01-P01, got %s", snapshot[0].ID)
	}
	if snapshot[11].ID != "L03-P04" {
		t.Errorf("Expected last space L03-P04, got %s", snapshot[11].ID)
	}

	for _, st := range snapshot {
		want := SpaceStandard
		switch st.Position {
		case 1:
			want = SpaceMotorcycle
		case 4:
			want = SpaceTruck
		}
		if st.Class != want {
			t.Errorf("Expected %s to be %s, got %s", st.ID, want, st.Class)
		}
	}
}

func TestNewSpaceGridInvalid(t *testing.T) {
	cases := []struct {
		levels   int
		perLevel int
		rules    ClassRules
	}{
		{0, 10, ClassRules{}},
		{10, 0, ClassRules{}},
		{-1, 10, ClassRules{}},
		{2, 4, ClassRules{MotorcyclePerLevel: -1}},
		{2, 4, ClassRules{MotorcyclePerLevel: 3, TruckPerLevel: 2}},
	}

	for _, c := range cases {
		_, err := NewSpaceGrid(c.levels, c.perLevel, c.rules)
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("Expected ErrInvalidConfig for %dx%d %+v, got %v", c.levels, c.perLevel, c.rules, err)
		}
	}
}

func TestGridAllocatesInOrder(t *testing.T) {
	g, err := NewSpaceGrid(2, 2, ClassRules{})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	expected := []string{"L01-P01", "L01-P02", "L02-P01", "L02-P02"}
	for i, want := range expected {
		spaceID, ok := g.FindCompatible(ClassCar)
		if !ok {
			t.Fatalf("Expected a free space for vehicle %d", i+1)
		}
		if spaceID != want {
			t.Errorf("Expected space %s for vehicle %d, got %s", want, i+1, spaceID)
		}
		if !g.Allocate(spaceID, testVehicle(fmt.Sprintf("v%d", i), ClassCar)) {
			t.Fatalf("Expected allocation of %s to succeed", spaceID)
		}
	}

	if _, ok := g.FindCompatible(ClassCar); ok {
		t.Error("Expected no free space in a full grid")
	}
	if g.OccupiedCount() != 4 {
		t.Errorf("Expected 4 occupied, got %d", g.OccupiedCount())
	}
}

func TestGridAllocateChecks(t *testing.T) {
	g, err := NewSpaceGrid(1, 3, ClassRules{MotorcyclePerLevel: 1, TruckPerLevel: 1})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if g.Allocate("L09-P09", testVehicle("v1", ClassCar)) {
		t.Error("Expected allocation of unknown space to fail")
	}
	if g.Allocate("L01-P01", testVehicle("v2", ClassCar)) {
		t.Error("Expected car allocation in motorcycle space to fail")
	}
	if g.Allocate("L01-P03", testVehicle("v3", ClassSUV)) {
		t.Error("Expected SUV allocation in truck space to fail")
	}

	if !g.Allocate("L01-P02", testVehicle("v4", ClassCar)) {
		t.Error("Expected allocation of free standard space to succeed")
	}
	if g.Allocate("L01-P02", testVehicle("v5", ClassCar)) {
		t.Error("Expected allocation of occupied space to fail")
	}

	if !g.SetOutOfService("L01-P03", true) {
		t.Error("Expected maintenance flag to be set")
	}
	if g.Allocate("L01-P03", testVehicle("v6", ClassTruck)) {
		t.Error("Expected allocation of out-of-service space to fail")
	}
}

func TestGridRelease(t *testing.T) {
	g, err := NewSpaceGrid(2, 2, ClassRules{})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	g.Allocate("L01-P01", testVehicle("v1", ClassCar))
	g.Allocate("L01-P02", testVehicle("v2", ClassCar))

	if !g.Release("L01-P01") {
		t.Error("Expected release of occupied space to succeed")
	}
	if g.Release("L01-P01") {
		t.Error("Expected second release to be a no-op")
	}
	if g.Release("L09-P09") {
		t.Error("Expected release of unknown space to be a no-op")
	}
	if g.OccupiedCount() != 1 {
		t.Errorf("Expected 1 occupied after release, got %d", g.OccupiedCount())
	}

	spaceID, ok := g.FindCompatible(ClassCar)
	if !ok || spaceID != "L01-P01" {
		t.Errorf("Expected freed space L01-P01 to be reused, got %s", spaceID)
	}
}

func TestGridClassCompatibility(t *testing.T) {
	g, err := NewSpaceGrid(1, 3, ClassRules{MotorcyclePerLevel: 1, TruckPerLevel: 1})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	// Occupy the only standard space, then only class-reserved spaces remain.
	if !g.Allocate("L01-P02", testVehicle("v1", ClassCar)) {
		t.Fatal("Expected car to take the standard space")
	}

	if _, ok := g.FindCompatible(ClassCar); ok {
		t.Error("Expected no compatible space for a second car")
	}

	spaceID, ok := g.FindCompatible(ClassTruck)
	if !ok || spaceID != "L01-P03" {
		t.Errorf("Expected truck space L01-P03, got %s", spaceID)
	}
	spaceID, ok = g.FindCompatible(ClassMotorcycle)
	if !ok || spaceID != "L01-P01" {
		t.Errorf("Expected motorcycle space L01-P01, got %s", spaceID)
	}

	// With the motorcycle space also taken, only the truck space is free and
	// a motorcycle has nowhere to go.
	if !g.Allocate("L01-P01", testVehicle("v2", ClassMotorcycle)) {
		t.Fatal("Expected motorcycle to take its reserved space")
	}
	if _, ok := g.FindCompatible(ClassMotorcycle); ok {
		t.Error("Expected no compatible space for a motorcycle when only a truck space is free")
	}
}

func TestGridSnapshotAndFind(t *testing.T) {
	g, err := NewSpaceGrid(2, 2, ClassRules{})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	g.Allocate("L01-P02", testVehicle("v1", ClassSUV))

	snapshot := g.Snapshot()
	if len(snapshot) != 4 {
		t.Fatalf("Expected 4 spaces in snapshot, got %d", len(snapshot))
	}
	for _, st := range snapshot {
		if st.ID == "L01-P02" {
			if !st.Occupied || st.Vehicle == nil {
				t.Error("Expected L01-P02 to be occupied with vehicle details")
			} else if st.Vehicle.Class != ClassSUV {
				t.Errorf("Expected SUV at L01-P02, got %s", st.Vehicle.Class)
			}
		} else if st.Occupied || st.Vehicle != nil {
			t.Errorf("Expected %s to be free", st.ID)
		}
	}

	found, ok := g.FindByPlate("KA01HHv1")
	if !ok {
		t.Fatal("Expected to find vehicle by plate")
	}
	if found.ID != "L01-P02" {
		t.Errorf("Expected vehicle at L01-P02, got %s", found.ID)
	}
	if _, ok := g.FindByPlate("MISSING"); ok {
		t.Error("Expected lookup of unknown plate to fail")
	}
}

func TestGridConcurrentAllocate(t *testing.T) {
	g, err := NewSpaceGrid(1, 1, ClassRules{})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	var wins int64
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			if g.Allocate("L01-P01", testVehicle(fmt.Sprintf("v%d", n), ClassCar)) {
				atomic.AddInt64(&wins, 1)
			}
		}(i)
	}
	wg.Wait()

	if wins != 1 {
		t.Errorf("Expected exactly one winner for a contested space, got %d", wins)
	}
	if g.OccupiedCount() != 1 {
		t.Errorf("Expected 1 occupied space, got %d", g.OccupiedCount())
	}
}
