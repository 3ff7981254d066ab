package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"treesync/internal/store"
	"treesync/metrics"
	"treesync/opendata"
	"treesync/trees"
)

// Orchestrator states.
const (
	StateIdle     = "idle"
	StateFetching = "fetching"
	StateLoading  = "loading"
)

// Run statuses and failure stages.
const (
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"

	StageFetch = "fetch"
	StageLoad  = "load"
)

// ErrRunInProgress is returned when a sync run is already executing.
var ErrRunInProgress = errors.New("sync run already in progress")

// Result describes one completed sync run. Results are ephemeral; only the
// most recent one is retained, for the ops surface.
type Result struct {
	RunID      string    `json:"run_id"`
	TotalCount int       `json:"total_count"`
	Pages      int       `json:"pages"`
	Loaded     int       `json:"loaded"`
	Status     string    `json:"status"`
	Stage      string    `json:"stage,omitempty"`
	Error      string    `json:"error,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// Orchestrator sequences one fetch→transform→load pass. At most one run
// executes at a time; a concurrent attempt is rejected with ErrRunInProgress.
type Orchestrator struct {
	client  *opendata.Client
	store   *store.Store
	metrics *metrics.Metrics

	mu      sync.Mutex
	running bool
	state   string
	last    *Result
}

// New builds an Orchestrator. metrics may be nil.
func New(client *opendata.Client, st *store.Store, m *metrics.Metrics) *Orchestrator {
	return &Orchestrator{client: client, store: st, metrics: m, state: StateIdle}
}

// State reports the current orchestrator state.
func (o *Orchestrator) State() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// LastRun returns the most recent run result, or nil before the first run.
func (o *Orchestrator) LastRun() *Result {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.last == nil {
		return nil
	}
	cp := *o.last
	return &cp
}

// Run executes one complete synchronization. Pages stream straight into the
// loader inside a single transaction: a failed run leaves zero new rows.
func (o *Orchestrator) Run(ctx context.Context) (Result, error) {
	o.mu.Lock()
	if o.running {
		o.mu.Unlock()
		return Result{}, ErrRunInProgress
	}
	o.running = true
	o.state = StateFetching
	o.mu.Unlock()

	res := Result{RunID: uuid.NewString(), StartedAt: time.Now().UTC()}
	err := o.run(ctx, &res)
	res.FinishedAt = time.Now().UTC()
	if err != nil {
		res.Status = StatusFailed
		res.Error = err.Error()
		log.Printf("sync run %s failed at stage=%s after %d pages: %v", res.RunID, res.Stage, res.Pages, err)
	} else {
		res.Status = StatusSucceeded
		log.Printf("sync run %s succeeded: total=%d pages=%d loaded=%d", res.RunID, res.TotalCount, res.Pages, res.Loaded)
	}
	if o.metrics != nil {
		o.metrics.RecordSyncRun(res.Status, res.Pages, res.Loaded)
	}

	o.mu.Lock()
	o.running = false
	o.state = StateIdle
	o.last = &res
	o.mu.Unlock()

	if err != nil {
		return res, fmt.Errorf("sync run %s: stage %s: %w", res.RunID, res.Stage, err)
	}
	return res, nil
}

func (o *Orchestrator) run(ctx context.Context, res *Result) error {
	load, err := o.store.BeginLoad(ctx)
	if err != nil {
		res.Stage = StageLoad
		return err
	}

	total, pages, err := o.client.Pages(ctx, func(records []opendata.RawRecord) error {
		o.setState(StateLoading)
		page := make([]trees.Record, 0, len(records))
		for _, raw := range records {
			page = append(page, trees.Transform(raw))
		}
		n, err := load.UpsertPage(ctx, page)
		res.Loaded += n
		if err != nil {
			return loadError{err}
		}
		o.setState(StateFetching)
		return nil
	})
	res.TotalCount = total
	res.Pages = pages

	if err != nil {
		_ = load.Rollback()
		res.Loaded = 0
		var le loadError
		if errors.As(err, &le) {
			res.Stage = StageLoad
			return le.err
		}
		res.Stage = StageFetch
		return err
	}

	if err := load.Commit(); err != nil {
		res.Stage = StageLoad
		res.Loaded = 0
		return fmt.Errorf("commit load: %w", err)
	}
	return nil
}

func (o *Orchestrator) setState(state string) {
	o.mu.Lock()
	o.state = state
	o.mu.Unlock()
}

// loadError tags persistence failures so the run can report its stage.
type loadError struct{ err error }

func (e loadError) Error() string { return e.err.Error() }
func (e loadError) Unwrap() error { return e.err }
