package record

import (
	"fmt"
	"path"

	"github.com/pkg/errors"
	"github.com/qwirky-yuzu/custom-sim-example/types"
	"github.com/qwirky-yuzu/custom-sim-example/util"
)

// FileRecorder appends every episode as a JSON line to
// <dir>/traces/<experiment>_run<run>.jsonl
type FileRecorder struct {
	dir string
}

var _ types.TraceRecorder = &FileRecorder{}

func NewFileRecorder(dir string) *FileRecorder {
	return &FileRecorder{dir: dir}
}

// Path of the file holding the episodes of the run
func (f *FileRecorder) Path(experiment string, run int) string {
	return path.Join(f.dir, "traces", fmt.Sprintf("%s_run%d.jsonl", experiment, run))
}

func (f *FileRecorder) Record(experiment string, run, episode int, trace *types.Trace) error {
	bs, err := encode(experiment, run, episode, trace)
	if err != nil {
		return errors.Wrapf(err, "encoding episode %d", episode)
	}
	return util.AppendToFile(f.Path(experiment, run), string(bs))
}
