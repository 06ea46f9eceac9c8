package pipeline

import (
	"sync"
	"time"

	"github.com/dgallion1/wikistruct/internal/entity"
)

// JobStatus represents the state of a collection job.
type JobStatus string

const (
	StatusQueued      JobStatus = "queued"
	StatusFetching    JobStatus = "fetching"
	StatusConverting  JobStatus = "converting"
	StatusParsing     JobStatus = "parsing"
	StatusStructuring JobStatus = "structuring"
	StatusStoring     JobStatus = "storing"
	StatusCompleted   JobStatus = "completed"
	StatusFailed      JobStatus = "failed"
	StatusPartial     JobStatus = "partial"
)

// JobMode selects where the job's source documents come from.
type JobMode string

const (
	// ModeCollect fetches the pages from the wiki, archiving new revisions.
	ModeCollect JobMode = "collect"
	// ModeRebuild re-structures the newest archived revision of every page,
	// without touching the network.
	ModeRebuild JobMode = "rebuild"
)

// Job tracks the state of one collection or rebuild run.
type Job struct {
	mu sync.Mutex

	ID   string      `json:"job_id"`
	Kind entity.Kind `json:"kind"`
	Mode JobMode     `json:"mode"`

	Status JobStatus `json:"status"`
	Phase  string    `json:"phase"`
	Titles []string  `json:"titles"`

	Progress Progress `json:"progress"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	errors []string
}

// NewJob creates a queued job with a fresh ULID.
func NewJob(kind entity.Kind, mode JobMode, titles []string) *Job {
	now := time.Now()
	return &Job{
		ID:        generateULID(),
		Kind:      kind,
		Mode:      mode,
		Titles:    titles,
		Status:    StatusQueued,
		Phase:     "queued",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Progress tracks per-document processing progress.
type Progress struct {
	TotalDocs     int      `json:"total_docs"`
	DocsProcessed int      `json:"docs_processed"`
	DocsSkipped   int      `json:"docs_skipped"`
	DocsStored    int      `json:"docs_stored"`
	Errors        []string `json:"errors"`
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Cleanup removes expired jobs.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		if now.Sub(job.UpdatedAt) > s.ttl {
			delete(s.jobs, id)
		}
	}
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// AddError records a per-document error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.Progress.Errors = j.errors
	j.UpdatedAt = time.Now()
}

// IncrProcessed atomically increments documents processed.
func (j *Job) IncrProcessed() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.DocsProcessed++
	j.UpdatedAt = time.Now()
}

// IncrSkipped records a document whose archived revision was already current.
func (j *Job) IncrSkipped() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.DocsSkipped++
	j.UpdatedAt = time.Now()
}

// IncrStored atomically increments documents stored.
func (j *Job) IncrStored() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.DocsStored++
	j.UpdatedAt = time.Now()
}

// SetTotalDocs records the document count for the run.
func (j *Job) SetTotalDocs(n int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.TotalDocs = n
	j.UpdatedAt = time.Now()
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID       string      `json:"job_id"`
	Kind     entity.Kind `json:"kind"`
	Mode     JobMode     `json:"mode"`
	Status   JobStatus   `json:"status"`
	Phase    string      `json:"phase"`
	Titles   []string    `json:"titles"`
	Progress Progress    `json:"progress"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := j.Progress.Errors
	if errs == nil {
		errs = []string{}
	}
	titles := make([]string, len(j.Titles))
	copy(titles, j.Titles)
	return JobSnapshot{
		ID:     j.ID,
		Kind:   j.Kind,
		Mode:   j.Mode,
		Status: j.Status,
		Phase:  j.Phase,
		Titles: titles,
		Progress: Progress{
			TotalDocs:     j.Progress.TotalDocs,
			DocsProcessed: j.Progress.DocsProcessed,
			DocsSkipped:   j.Progress.DocsSkipped,
			DocsStored:    j.Progress.DocsStored,
			Errors:        errs,
		},
	}
}
