package models

// SectionState is the terminal state of one section within a run.
type SectionState string

const (
	SectionPersisted SectionState = "persisted"
	SectionSkipped   SectionState = "skipped" // widget absent or empty, not an error
	SectionFailed    SectionState = "failed"
)

// SectionReport records the outcome of one section of one entity.
type SectionReport struct {
	Dataset  Dataset
	State    SectionState
	Artifact string // path on disk when State == SectionPersisted
	Reason   string // failure or skip reason, empty on success
}

// EntityReport aggregates section outcomes for a single entity.
type EntityReport struct {
	Symbol   string
	Sections []SectionReport

	// Fatal is set when the entity page could not be resolved at all;
	// remaining sections were not attempted.
	Fatal error
}

// Record appends a section outcome.
func (r *EntityReport) Record(s SectionReport) {
	r.Sections = append(r.Sections, s)
}

// Failed counts sections that ended in SectionFailed.
func (r *EntityReport) Failed() int {
	n := 0
	for _, s := range r.Sections {
		if s.State == SectionFailed {
			n++
		}
	}
	return n
}

// Persisted counts sections that produced an artifact.
func (r *EntityReport) Persisted() int {
	n := 0
	for _, s := range r.Sections {
		if s.State == SectionPersisted {
			n++
		}
	}
	return n
}

// RunReport aggregates entity reports for a whole run and decides the
// process exit status.
type RunReport struct {
	Entities []EntityReport
}

// Add appends an entity report.
func (r *RunReport) Add(e EntityReport) {
	r.Entities = append(r.Entities, e)
}

// ExitCode maps the run outcome to a process exit status:
// 0 when every attempted section succeeded or was cleanly skipped,
// 2 when some sections or entities failed but others persisted,
// 1 when nothing was persisted at all.
func (r *RunReport) ExitCode() int {
	persisted, failed := 0, 0
	for _, e := range r.Entities {
		persisted += e.Persisted()
		failed += e.Failed()
		if e.Fatal != nil {
			failed++
		}
	}
	switch {
	case failed == 0:
		return 0
	case persisted > 0:
		return 2
	default:
		return 1
	}
}
