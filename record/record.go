// Package record stores episode traces outside the process
package record

import (
	"encoding/json"

	"github.com/qwirky-yuzu/custom-sim-example/types"
)

// Entry is the stored form of one episode
type Entry struct {
	Experiment string            `json:"experiment"`
	Run        int               `json:"run"`
	Episode    int               `json:"episode"`
	Return     float64           `json:"return"`
	Steps      []types.TraceStep `json:"steps"`
}

func newEntry(experiment string, run, episode int, trace *types.Trace) Entry {
	return Entry{
		Experiment: experiment,
		Run:        run,
		Episode:    episode,
		Return:     trace.Return(),
		Steps:      trace.Steps,
	}
}

func encode(experiment string, run, episode int, trace *types.Trace) ([]byte, error) {
	return json.Marshal(newEntry(experiment, run, episode, trace))
}
