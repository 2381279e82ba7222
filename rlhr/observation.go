package rlhr

import (
	"encoding/json"
	"fmt"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// Observation of the organisation as seen by the agent. StaffDetails has one
// row per action slot, rows past the eligible staff are zero and masked out
type Observation struct {
	PositionDetails *mat.VecDense
	StaffDetails    *mat.Dense
	ActionMask      []float64

	key string
}

func (o *Observation) Hash() string {
	return o.key
}

// Legal is true when the mask allows the action
func (o *Observation) Legal(action int) bool {
	return action >= 0 && action < len(o.ActionMask) && o.ActionMask[action] == 1
}

type observationJSON struct {
	Observation struct {
		PositionDetails []float64   `json:"position_details"`
		StaffDetails    [][]float64 `json:"staff_details"`
	} `json:"observation"`
	ActionMask []float64 `json:"action_mask"`
}

func (o *Observation) MarshalJSON() ([]byte, error) {
	out := observationJSON{ActionMask: o.ActionMask}
	out.Observation.PositionDetails = mat.Col(nil, 0, o.PositionDetails)
	rows, _ := o.StaffDetails.Dims()
	out.Observation.StaffDetails = make([][]float64, rows)
	for i := 0; i < rows; i++ {
		out.Observation.StaffDetails[i] = mat.Row(nil, i, o.StaffDetails)
	}
	return json.Marshal(out)
}

func (s *State) observe(slots int) *Observation {
	eligible := s.Eligible()
	staff := mat.NewDense(slots, StaffWidth, nil)
	mask := make([]float64, slots)
	for i := 0; i < slots && i < len(eligible); i++ {
		staff.SetRow(i, s.roster.Staff[eligible[i]].Row())
		mask[i] = 1
	}
	return &Observation{
		PositionDetails: mat.NewVecDense(PositionWidth, s.roster.Positions[s.position].Vector()),
		StaffDetails:    staff,
		ActionMask:      mask,
		key:             s.key(),
	}
}

func (s *State) key() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d|", s.position)
	for _, m := range s.moved {
		if m {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}
	return b.String()
}
