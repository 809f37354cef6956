// Package pipeline runs a documentation job end to end: acquire the
// repository, build its tree, extract every source file in parallel, join the
// batch at a barrier, then render and persist the document.
package pipeline

// Stage identifies a pipeline stage.
type Stage int

const (
	StageAcquire Stage = iota
	StageMetadata
	StageTree
	StageExtract
	StageAggregate
	StageRender
	StageSave
	StageExport
	StageIndex
)

func (s Stage) String() string {
	names := [...]string{
		"acquire",
		"metadata",
		"tree",
		"extract",
		"aggregate",
		"render",
		"save",
		"export",
		"index",
	}
	if s >= 0 && int(s) < len(names) {
		return names[s]
	}
	return "unknown"
}

// ProgressEvent is emitted to observers during a run.
type ProgressEvent struct {
	RunID   string
	Stage   Stage
	Status  ProgressStatus
	Message string
}

// ProgressStatus is the state of a stage.
type ProgressStatus string

const (
	ProgressWorking  ProgressStatus = "working"
	ProgressComplete ProgressStatus = "complete"
	ProgressSkipped  ProgressStatus = "skipped"
	ProgressFailed   ProgressStatus = "failed"
)
