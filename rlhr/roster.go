package rlhr

import (
	"github.com/google/uuid"
	"golang.org/x/exp/rand"
)

// Shape of the staff and position details
const (
	StaffAttributes  = 5
	StaffPreferences = 4
	StaffWidth       = StaffAttributes + StaffPreferences

	PositionFeatures = 5
	PositionSlots    = 92
	PositionWidth    = PositionFeatures + PositionSlots
)

// Staff member that can be moved to an open position
type Staff struct {
	ID          uuid.UUID
	Attributes  [StaffAttributes]float64
	Preferences [StaffPreferences]float64
}

// Row of the staff in the observation
func (s Staff) Row() []float64 {
	row := make([]float64, 0, StaffWidth)
	row = append(row, s.Attributes[:]...)
	return append(row, s.Preferences[:]...)
}

// OpenPosition in the organisation, filled in turn by every move
type OpenPosition struct {
	Features [PositionFeatures]float64
	Slots    [PositionSlots]float64
}

// Vector of the position in the observation
func (p OpenPosition) Vector() []float64 {
	v := make([]float64, 0, PositionWidth)
	v = append(v, p.Features[:]...)
	return append(v, p.Slots[:]...)
}

// Roster is the staff and the open positions of an organisation. It is
// never mutated once generated, states share it
type Roster struct {
	Staff     []Staff
	Positions []OpenPosition
}

// NewRoster generates staff and positions with values in [0, 1) from the seed
func NewRoster(staff, positions int, seed uint64) (*Roster, error) {
	r := rand.New(rand.NewSource(seed))
	roster := &Roster{
		Staff:     make([]Staff, staff),
		Positions: make([]OpenPosition, positions),
	}
	for i := range roster.Staff {
		id, err := uuid.NewRandomFromReader(r)
		if err != nil {
			return nil, err
		}
		s := Staff{ID: id}
		for j := range s.Attributes {
			s.Attributes[j] = r.Float64()
		}
		for j := range s.Preferences {
			s.Preferences[j] = r.Float64()
		}
		roster.Staff[i] = s
	}
	for i := range roster.Positions {
		p := OpenPosition{}
		for j := range p.Features {
			p.Features[j] = r.Float64()
		}
		// one hot slot of the position
		p.Slots[r.Intn(PositionSlots)] = 1
		roster.Positions[i] = p
	}
	return roster, nil
}
