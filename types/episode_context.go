package types

import (
	"context"
	"fmt"
	"path"
	"strconv"
	"sync"
	"time"

	"github.com/qwirky-yuzu/custom-sim-example/util"
)

// EpisodeContext carries the information used and returned by an episode
type EpisodeContext struct {
	Context context.Context
	Cancel  context.CancelFunc // cancel function to stop the episode

	Episode     int
	Timesteps   int // accepted steps
	Trace       *Trace
	Err         error
	TimedOut    bool
	End         EndType // why the simulator ended the episode, EndNone if it did not
	RunDuration time.Duration

	Report            *EpisodeReport
	ToPrintReport     bool
	reportPrintConfig *ReportsPrintConfig
	reportSavePath    string
}

// NewEpisodeContext creates a context for the episode, a zero timeout never expires
func NewEpisodeContext(episode int, experimentName string, timeout time.Duration) *EpisodeContext {
	return newEpisodeContext(context.Background(), episode, experimentName, timeout, RepConfigOff(), "")
}

func newEpisodeContext(parent context.Context, episode int, experimentName string, timeout time.Duration, printConfig *ReportsPrintConfig, savePath string) *EpisodeContext {
	var ctx context.Context
	var cancel context.CancelFunc
	if timeout > 0 {
		ctx, cancel = context.WithTimeout(parent, timeout)
	} else {
		ctx, cancel = context.WithCancel(parent)
	}
	if printConfig == nil {
		printConfig = RepConfigOff()
	}
	return &EpisodeContext{
		Context:           ctx,
		Cancel:            cancel,
		Episode:           episode,
		Trace:             NewTrace(),
		Report:            NewEpisodeReport(episode, experimentName),
		reportPrintConfig: printConfig,
		reportSavePath:    savePath,
	}
}

func (e *EpisodeContext) SetError(err error) {
	e.Err = err
	e.Report.AddLog(err.Error(), "error")
}

func (e *EpisodeContext) SetTimedOut() {
	e.TimedOut = true
	e.Report.AddLog("episode timed out", "timeout")
}

func (e *EpisodeContext) SetToPrintReport(b bool) {
	e.ToPrintReport = b
}

// RecordReport writes the report to the epReports folder according to the
// print configuration
func (e *EpisodeContext) RecordReport() {
	cfg := e.reportPrintConfig
	if e.reportSavePath == "" {
		return
	}
	if e.Err != nil && !cfg.PrintIfError {
		return
	}
	if e.TimedOut && !cfg.PrintIfTimeout {
		return
	}
	content := make([]string, 0)
	if cfg.PrintStd {
		content = append(content, e.Report.StringPerType())
	}
	if cfg.PrintValues {
		content = append(content, e.Report.StringPerTypeValues())
	}
	if cfg.PrintTimeline {
		content = append(content, e.Report.StringTimeline())
	}
	if len(content) == 0 {
		return
	}
	filePath := path.Join(e.reportSavePath, "epReports", e.Report.ExperimentName+"_ep"+strconv.Itoa(e.Episode)+".txt")
	util.WriteToFile(filePath, content...)
}

// REPORT CONFIGURATION

// Configuration of the report
type ReportsPrintConfig struct {
	PrintStd      bool // print the report standard representation
	PrintValues   bool // print the report values representation
	PrintTimeline bool // print the report timeline representation

	PrintIfError   bool // print the report if an error occurs
	PrintIfTimeout bool // print the report if a timeout occurs

	Sampling float32 // rate of randomly printed reports (for successful episodes)
}

// configuration of the report with no printing
func RepConfigOff() *ReportsPrintConfig {
	return &ReportsPrintConfig{}
}

// configuration of the report with standard printing, prints std and values version for both errors and timeouts. Prints a successful episode with probability 0.02
func RepConfigStandard() *ReportsPrintConfig {
	return &ReportsPrintConfig{
		PrintStd:       true,
		PrintValues:    true,
		PrintIfError:   true,
		PrintIfTimeout: true,
		Sampling:       0.02,
	}
}

// EPISODE REPORT

// Report of an episode
type EpisodeReport struct {
	EpisodeNumber  int
	ExperimentName string
	episodeStep    int

	nextIndex int       // next available index for an entry
	startTime time.Time // start time to compute timestamp of an entry

	lock *sync.Mutex // entries are added from the episode goroutine

	Timeline   []*EpisodeReportEntry // all the entries ordered by index
	TimeValues map[string][]*EpisodeReportEntry
	IntValues  map[string][]*EpisodeReportEntry
	Logs       map[string]string
}

func NewEpisodeReport(episodeNumber int, experimentName string) *EpisodeReport {
	return &EpisodeReport{
		EpisodeNumber:  episodeNumber,
		ExperimentName: experimentName,
		startTime:      time.Now(),
		lock:           new(sync.Mutex),
		Timeline:       make([]*EpisodeReportEntry, 0),
		TimeValues:     make(map[string][]*EpisodeReportEntry),
		IntValues:      make(map[string][]*EpisodeReportEntry),
		Logs:           make(map[string]string),
	}
}

func (e *EpisodeReport) setEpisodeStep(step int) {
	e.lock.Lock()
	defer e.lock.Unlock()
	e.episodeStep = step
}

func (e *EpisodeReport) addEntry(value interface{}, entryType string, caller string, into map[string][]*EpisodeReportEntry) {
	e.lock.Lock()
	defer e.lock.Unlock()

	entry := &EpisodeReportEntry{
		Index:       e.nextIndex,
		Timestamp:   time.Since(e.startTime),
		EpisodeStep: e.episodeStep,
		EntryType:   entryType,
		Caller:      caller,
		Value:       value,
	}
	e.nextIndex += 1
	e.Timeline = append(e.Timeline, entry)
	into[entryType] = append(into[entryType], entry)
}

// add a new entry of type int to the report
func (e *EpisodeReport) AddIntEntry(value int, entryType string, caller string) {
	e.addEntry(value, entryType, caller, e.IntValues)
}

// add a new entry of type time.Duration to the report
func (e *EpisodeReport) AddTimeEntry(value time.Duration, entryType string, caller string) {
	e.addEntry(value, entryType, caller, e.TimeValues)
}

func (e *EpisodeReport) AddLog(value string, key string) {
	e.lock.Lock()
	defer e.lock.Unlock()
	e.Logs[key] = value
}

// Count of entries of the given type
func (e *EpisodeReport) Count(entryType string) int {
	e.lock.Lock()
	defer e.lock.Unlock()
	return len(e.IntValues[entryType]) + len(e.TimeValues[entryType])
}

// return a string representation of the report timeline
func (e *EpisodeReport) StringTimeline() string {
	result := fmt.Sprintf("Length: %d\n", len(e.Timeline))
	for _, entry := range e.Timeline {
		result = fmt.Sprintf("%s%s\n", result, entry.String())
	}
	return result
}

// return a string representation of the report entries per type
func (e *EpisodeReport) StringPerType() string {
	result := ""
	for entryType, entries := range e.TimeValues {
		result = fmt.Sprintf("%s\n%s [%d]:\n%s", result, entryType, len(entries), stringEntries(entries))
	}
	for entryType, entries := range e.IntValues {
		result = fmt.Sprintf("%s\n%s [%d]:\n%s", result, entryType, len(entries), stringEntries(entries))
	}
	for key, value := range e.Logs {
		result = fmt.Sprintf("%s\n%s :\n%s", result, key, value)
	}
	return result
}

// return a string representation of the report entries values per type
func (e *EpisodeReport) StringPerTypeValues() string {
	result := ""
	for entryType, entries := range e.TimeValues {
		result = fmt.Sprintf("%s\n%s :\n%s\n", result, entryType, stringEntriesValues(entries))
	}
	for entryType, entries := range e.IntValues {
		result = fmt.Sprintf("%s\n%s :\n%s\n", result, entryType, stringEntriesValues(entries))
	}
	return result
}

// ENTRY

// Entry of the Report
type EpisodeReportEntry struct {
	Index     int           // index of the entry, managed by the report
	Timestamp time.Duration // timestamp of the entry, managed by the report

	EpisodeStep int
	EntryType   string
	Caller      string      // the method adding the entry
	Value       interface{} // int or time.Duration
}

func (en *EpisodeReportEntry) String() string {
	switch v := en.Value.(type) {
	case time.Duration:
		return fmt.Sprintf("[ %6d | %5d | %3d ] %20s : %12s (%20s)", en.Index, en.Timestamp.Milliseconds(), en.EpisodeStep, en.EntryType, v.String(), en.Caller)
	case int:
		return fmt.Sprintf("[ %6d | %5d | %3d ] %20s : %5d (%20s)", en.Index, en.Timestamp.Milliseconds(), en.EpisodeStep, en.EntryType, v, en.Caller)
	default:
		return "wrong entry type"
	}
}

func (en *EpisodeReportEntry) StringValue() string {
	switch v := en.Value.(type) {
	case time.Duration:
		return fmt.Sprintf("%d", v.Microseconds())
	case int:
		return fmt.Sprintf("%3d", v)
	}
	return "N/A"
}

func stringEntries(list []*EpisodeReportEntry) string {
	result := ""
	for _, entry := range list {
		result = fmt.Sprintf("%s%s\n", result, entry.String())
	}
	return result
}

func stringEntriesValues(list []*EpisodeReportEntry) string {
	result := ""
	for i, entry := range list {
		result = fmt.Sprintf("%s %s", result, entry.StringValue())
		if (i+1)%20 == 0 {
			result = fmt.Sprintf("%s\n", result)
		}
	}
	return result
}
