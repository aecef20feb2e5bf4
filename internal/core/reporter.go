package core

// Reporter receives the user-facing progress lines of a run.
//
// Implementations must be safe for concurrent use: parallel phases report
// from several goroutines at once.
type Reporter interface {
	// Phase announces the start of a pipeline phase.
	Phase(title string)

	// Started announces a hook about to run for label.
	Started(label string)

	// Completed announces a hook that exited with status 0.
	Completed(label string)

	// Failed announces a hook that failed, with its captured output.
	Failed(label string, output []byte)

	// Changed lists the rooms selected for building.
	Changed(names []string)

	// UpToDate announces that no room needs building.
	UpToDate()

	// Warn prints an aggregate warning.
	Warn(msg string)
}

// NopReporter discards everything.
type NopReporter struct{}

func (NopReporter) Phase(string) {}
func (NopReporter) Started(string) {}
func (NopReporter) Completed(string) {}
func (NopReporter) Failed(string, []byte) {}
func (NopReporter) Changed([]string) {}
func (NopReporter) UpToDate() {}
func (NopReporter) Warn(string) {}
