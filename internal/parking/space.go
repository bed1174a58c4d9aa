package parking

import "fmt"

type SpaceClass string

const (
	SpaceStandard   SpaceClass = "standard"
	SpaceMotorcycle SpaceClass = "motorcycle"
	SpaceTruck      SpaceClass = "truck"
)

// Accepts reports whether a space of this class may hold a vehicle of the
// given class. Standard spaces take every vehicle class; motorcycle and
// truck spaces only take their own kind.
func (c SpaceClass) Accepts(v VehicleClass) bool {
	switch c {
	case SpaceStandard:
		return true
	case SpaceMotorcycle:
		return v == ClassMotorcycle
	case SpaceTruck:
		return v == ClassTruck
	}
	return false
}

type Space struct {
	ID           string
	Level        int
	Position     int
	Class        SpaceClass
	Occupied     bool
	Vehicle      *Vehicle
	OutOfService bool
}

// SpaceID derives the canonical identifier for a level/position pair.
func SpaceID(level, position int) string {
	return fmt.Sprintf("L%02d-P%02d", level, position)
}

func NewSpace(level, position int, class SpaceClass) *Space {
	return &Space{
		ID:       SpaceID(level, position),
		Level:    level,
		Position: position,
		Class:    class,
	}
}

func (s *Space) occupy(v *Vehicle) {
	s.Vehicle = v
	s.Occupied = true
}

func (s *Space) vacate() *Vehicle {
	v := s.Vehicle
	s.Vehicle = nil
	s.Occupied = false
	return v
}
