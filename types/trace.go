package types

// TraceStep is one accepted step of an episode
type TraceStep struct {
	Step            int         `json:"step"`
	Observation     Observation `json:"observation"`
	Action          ActionID    `json:"action"`
	Reward          float64     `json:"reward"`
	NextObservation Observation `json:"next_observation"`
	Done            bool        `json:"done"`
	End             string      `json:"end"`
	Truncated       int         `json:"truncated_actions"`
}

// Trace of an episode as (observation, action, reward, nextObservation) steps
type Trace struct {
	Steps []TraceStep `json:"steps"`
}

func NewTrace() *Trace {
	return &Trace{
		Steps: make([]TraceStep, 0),
	}
}

func (t *Trace) Slice(from, to int) *Trace {
	slicedTrace := NewTrace()
	for i := from; i < to; i++ {
		s := t.Steps[i]
		s.Step = i - from
		slicedTrace.Steps = append(slicedTrace.Steps, s)
	}
	return slicedTrace
}

func (t *Trace) Append(step int, observation Observation, action ActionID, res *StepResult) {
	t.Steps = append(t.Steps, TraceStep{
		Step:            step,
		Observation:     observation,
		Action:          action,
		Reward:          res.Reward,
		NextObservation: res.Observation,
		Done:            res.Done,
		End:             res.End.String(),
		Truncated:       res.Actions.Truncated,
	})
}

func (t *Trace) Len() int {
	return len(t.Steps)
}

func (t *Trace) Get(i int) (TraceStep, bool) {
	if i < 0 || i >= len(t.Steps) {
		return TraceStep{}, false
	}
	return t.Steps[i], true
}

func (t *Trace) Last() (TraceStep, bool) {
	return t.Get(len(t.Steps) - 1)
}

func (t *Trace) GetPrefix(i int) (*Trace, bool) {
	if i > len(t.Steps) {
		return nil, false
	}
	return &Trace{
		Steps: t.Steps[0:i],
	}, true
}

// Return is the sum of the rewards of the trace
func (t *Trace) Return() float64 {
	total := 0.0
	for _, s := range t.Steps {
		total += s.Reward
	}
	return total
}
