package parking

import (
	"math/rand"
	"testing"
	"time"
)

func TestVehicleClassValid(t *testing.T) {
	for _, class := range []VehicleClass{ClassCar, ClassSUV, ClassTruck, ClassMotorcycle} {
		if !class.Valid() {
			t.Errorf("Expected class %s to be valid", class)
		}
	}
	if VehicleClass("bicycle").Valid() {
		t.Error("Expected class bicycle to be invalid")
	}
}

func TestVehicleFactoryBuild(t *testing.T) {
	f := NewVehicleFactory(rand.New(rand.NewSource(1)))
	now := time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)

	v := f.Build(ClassTruck, "KA01HH1234", now)
	if v.Class != ClassTruck {
		t.Errorf("Expected class truck, got %s", v.Class)
	}
	if v.Plate != "KA01HH1234" {
		t.Errorf("Expected plate KA01HH1234, got %s", v.Plate)
	}
	if v.ID == "" {
		t.Error("Expected a vehicle ID")
	}
	if !v.EntryTime.Equal(now) {
		t.Errorf("Expected entry time %s, got %s", now, v.EntryTime)
	}
	if v.ExitTime != nil {
		t.Error("Expected no exit time on a new vehicle")
	}
	if v.LengthM < 7 || v.LengthM > 10 {
		t.Errorf("Expected truck length near 8.5m, got %.2f", v.LengthM)
	}
}

func TestVehicleFactoryGeneratesPlates(t *testing.T) {
	f := NewVehicleFactory(rand.New(rand.NewSource(1)))
	now := time.Now()

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		v := f.Next(now)
		if len(v.Plate) != 10 {
			t.Errorf("Expected 10 character plate, got %q", v.Plate)
		}
		if v.Plate[:2] != "KA" {
			t.Errorf("Expected plate prefix KA, got %q", v.Plate)
		}
		seen[v.Plate] = true
	}
	if len(seen) < 45 {
		t.Errorf("Expected mostly unique plates, got %d unique of 50", len(seen))
	}
}

func TestVehicleFactoryDeterministicSequence(t *testing.T) {
	a := NewVehicleFactory(rand.New(rand.NewSource(42)))
	b := NewVehicleFactory(rand.New(rand.NewSource(42)))
	now := time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)

	for i := 0; i < 100; i++ {
		va := a.Next(now)
		vb := b.Next(now)
		if va.Class != vb.Class {
			t.Fatalf("Expected identical class at draw %d, got %s and %s", i, va.Class, vb.Class)
		}
		if va.Plate != vb.Plate {
			t.Fatalf("Expected identical plate at draw %d, got %s and %s", i, va.Plate, vb.Plate)
		}
		if va.Payment != vb.Payment {
			t.Fatalf("Expected identical payment method at draw %d, got %s and %s", i, va.Payment, vb.Payment)
		}
	}
}

func TestVehicleFactoryClassDistribution(t *testing.T) {
	f := NewVehicleFactory(rand.New(rand.NewSource(7)))
	now := time.Now()

	counts := make(map[VehicleClass]int)
	for i := 0; i < 1000; i++ {
		counts[f.Next(now).Class]++
	}

	if counts[ClassCar] <= counts[ClassSUV] {
		t.Errorf("Expected cars (%d) to outnumber SUVs (%d)", counts[ClassCar], counts[ClassSUV])
	}
	if counts[ClassSUV] <= counts[ClassTruck] {
		t.Errorf("Expected SUVs (%d) to outnumber trucks (%d)", counts[ClassSUV], counts[ClassTruck])
	}
	for _, class := range []VehicleClass{ClassCar, ClassSUV, ClassTruck, ClassMotorcycle} {
		if counts[class] == 0 {
			t.Errorf("Expected at least one %s in 1000 draws", class)
		}
	}
}
