package parking

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
)

type VehicleClass string

const (
	ClassCar        VehicleClass = "car"
	ClassSUV        VehicleClass = "suv"
	ClassTruck      VehicleClass = "truck"
	ClassMotorcycle VehicleClass = "motorcycle"
)

func (c VehicleClass) Valid() bool {
	switch c {
	case ClassCar, ClassSUV, ClassTruck, ClassMotorcycle:
		return true
	}
	return false
}

type PaymentMethod string

const (
	PaymentCard   PaymentMethod = "card"
	PaymentCash   PaymentMethod = "cash"
	PaymentMobile PaymentMethod = "mobile"
)

type Vehicle struct {
	ID           string
	Plate        string
	Class        VehicleClass
	LengthM      float64
	WidthM       float64
	HeightM      float64
	OwnerContact string
	Payment      PaymentMethod
	EntryTime    time.Time
	ExitTime     *time.Time
	SpaceID      string
	Fee          float64
}

type classWeight struct {
	class  VehicleClass
	weight float64
}

var arrivalWeights = []classWeight{
	{ClassCar, 55},
	{ClassSUV, 25},
	{ClassMotorcycle, 15},
	{ClassTruck, 5},
}

type envelope struct {
	length float64
	width  float64
	height float64
}

var classEnvelopes = map[VehicleClass]envelope{
	ClassCar:        {length: 4.5, width: 1.8, height: 1.5},
	ClassSUV:        {length: 4.8, width: 1.9, height: 1.8},
	ClassTruck:      {length: 8.5, width: 2.5, height: 3.2},
	ClassMotorcycle: {length: 2.1, width: 0.8, height: 1.1},
}

// VehicleFactory generates arriving vehicles from a shared random source.
// It is not safe for concurrent use; the engine drives it from a single
// goroutine.
type VehicleFactory struct {
	rng *rand.Rand
}

func NewVehicleFactory(rng *rand.Rand) *VehicleFactory {
	return &VehicleFactory{rng: rng}
}

// Next produces a vehicle of a randomly weighted class arriving at now.
func (f *VehicleFactory) Next(now time.Time) *Vehicle {
	return f.Build(f.pickClass(), "", now)
}

// Build produces a vehicle of an explicit class. An empty plate is filled
// with a generated registration number.
func (f *VehicleFactory) Build(class VehicleClass, plate string, now time.Time) *Vehicle {
	if plate == "" {
		plate = f.plate()
	}
	env := classEnvelopes[class]
	v := &Vehicle{
		ID:        uuid.New().String(),
		Plate:     plate,
		Class:     class,
		LengthM:   env.length + f.jitter(0.3),
		WidthM:    env.width + f.jitter(0.1),
		HeightM:   env.height + f.jitter(0.1),
		Payment:   f.pickPayment(),
		EntryTime: now,
	}
	if f.rng.Float64() < 0.3 {
		v.OwnerContact = fmt.Sprintf("+91-9%09d", f.rng.Intn(1_000_000_000))
	}
	return v
}

func (f *VehicleFactory) pickClass() VehicleClass {
	var total float64
	for _, w := range arrivalWeights {
		total += w.weight
	}
	draw := f.rng.Float64() * total
	for _, w := range arrivalWeights {
		draw -= w.weight
		if draw < 0 {
			return w.class
		}
	}
	return arrivalWeights[len(arrivalWeights)-1].class
}

func (f *VehicleFactory) pickPayment() PaymentMethod {
	switch draw := f.rng.Float64(); {
	case draw < 0.5:
		return PaymentCard
	case draw < 0.8:
		return PaymentMobile
	default:
		return PaymentCash
	}
}

func (f *VehicleFactory) plate() string {
	return fmt.Sprintf("KA%02d%c%c%04d",
		f.rng.Intn(100),
		byte('A'+f.rng.Intn(26)),
		byte('A'+f.rng.Intn(26)),
		f.rng.Intn(10000))
}

func (f *VehicleFactory) jitter(spread float64) float64 {
	return (f.rng.Float64() - 0.5) * 2 * spread
}
