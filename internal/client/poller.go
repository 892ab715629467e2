package client

import (
	"context"
	"errors"
	"sync"
	"time"
	"tokbarr/internal/domain/consts"
	"tokbarr/internal/logging"
	"tokbarr/internal/models"
	"tokbarr/internal/parsing"
)

// PollerState describes what the batch poller is currently doing.
type PollerState int

const (
	StateIdle PollerState = iota
	StateSubmitting
	StatePolling
)

func (s PollerState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSubmitting:
		return "submitting"
	case StatePolling:
		return "polling"
	default:
		return "unknown"
	}
}

var (
	// ErrNoValidURLs means filtering left nothing to submit.
	ErrNoValidURLs = errors.New("no valid video URLs in input")

	// ErrDeleteDeclined means the user did not confirm a deletion.
	ErrDeleteDeclined = errors.New("deletion not confirmed")
)

// pollSession tracks one active batch poll loop. A nil session means the
// poller is idle and no ticker is running.
type pollSession struct {
	batchID string
	cancel  context.CancelFunc
	done    chan struct{}
}

// PollerHooks are optional observers for poller activity. Nil hooks are
// skipped.
type PollerHooks struct {
	// OnStatus fires after every successful status fetch.
	OnStatus func(status *models.BatchStatusResponse)

	// OnHistory fires after every successful history refresh.
	OnHistory func(history []models.Download)

	// OnQuiescent fires once when a batch settles, whether or not the
	// follow-up history refresh succeeded.
	OnQuiescent func(batchID string)
}

// BatchPoller submits batches and keeps the local view of download state
// synchronized with the server by polling batch status on a fixed cadence.
type BatchPoller struct {
	api      *Client
	interval time.Duration
	hooks    PollerHooks

	mu         sync.Mutex
	state      PollerState
	session    *pollSession
	history    []models.Download
	inProgress []models.Download
}

// NewBatchPoller returns an idle poller over the given API client.
func NewBatchPoller(api *Client, hooks PollerHooks) *BatchPoller {
	return &BatchPoller{
		api:      api,
		interval: consts.PollInterval,
		hooks:    hooks,
		state:    StateIdle,
	}
}

// State reports the current poller state.
func (p *BatchPoller) State() PollerState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// ActiveBatchID reports the batch currently being polled, or "" when idle.
func (p *BatchPoller) ActiveBatchID() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.session == nil {
		return ""
	}
	return p.session.batchID
}

// History returns a copy of the last fetched download history.
func (p *BatchPoller) History() []models.Download {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]models.Download(nil), p.history...)
}

// InProgress returns a copy of the last fetched in-progress batch view.
func (p *BatchPoller) InProgress() []models.Download {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]models.Download(nil), p.inProgress...)
}

// SubmitBatch filters the raw URL list, submits the survivors as a new
// batch, and starts polling its status. A batch already being polled is
// superseded, its ticker torn down before the new submission.
//
// When filtering leaves no URLs, no request is sent and ErrNoValidURLs is
// returned.
func (p *BatchPoller) SubmitBatch(ctx context.Context, rawURLs []string, quality string) (string, error) {
	urls := parsing.FilterURLList(rawURLs)
	if len(urls) == 0 {
		return "", ErrNoValidURLs
	}

	p.stopSession()

	p.mu.Lock()
	p.state = StateSubmitting
	p.mu.Unlock()

	resp, err := p.api.StartBatch(ctx, urls, quality)
	if err != nil {
		p.mu.Lock()
		p.state = StateIdle
		p.mu.Unlock()
		return "", err
	}

	logging.I("Submitted batch %s with %d URLs", resp.BatchID, resp.TotalURLs)
	p.startPolling(ctx, resp.BatchID)
	return resp.BatchID, nil
}

// startPolling installs a new session and launches its poll loop.
func (p *BatchPoller) startPolling(ctx context.Context, batchID string) {
	pollCtx, cancel := context.WithCancel(ctx)
	s := &pollSession{
		batchID: batchID,
		cancel:  cancel,
		done:    make(chan struct{}),
	}

	p.mu.Lock()
	p.session = s
	p.state = StatePolling
	p.mu.Unlock()

	go p.run(pollCtx, s)
}

// run drives the poll ticker until quiescence or cancellation.
func (p *BatchPoller) run(ctx context.Context, s *pollSession) {
	defer close(s.done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			stop, quiesced := p.pollOnce(ctx, s)
			if quiesced {
				if err := p.RefreshHistory(ctx); err != nil {
					logging.E("Failed to refresh history after batch %s: %v", s.batchID, err)
				}
				if p.hooks.OnQuiescent != nil {
					p.hooks.OnQuiescent(s.batchID)
				}
			}
			if stop {
				return
			}
		}
	}
}

// pollOnce fetches batch status and applies it. stop ends the loop,
// quiesced additionally means this session reached quiescence and owes a
// history refresh. A failed fetch skips the tick, leaving state untouched.
func (p *BatchPoller) pollOnce(ctx context.Context, s *pollSession) (stop, quiesced bool) {
	status, err := p.api.BatchStatus(ctx, s.batchID)
	if err != nil {
		if ctx.Err() == nil {
			logging.W("Status poll for batch %s failed, retrying next tick: %v", s.batchID, err)
		}
		return false, false
	}

	quiescent := status.StatusCounts.Quiescent()

	p.mu.Lock()
	if p.session != s {
		// Superseded while the fetch was in flight.
		p.mu.Unlock()
		return true, false
	}
	p.inProgress = status.Downloads
	if quiescent {
		p.session = nil
		p.state = StateIdle
	}
	p.mu.Unlock()

	if p.hooks.OnStatus != nil {
		p.hooks.OnStatus(status)
	}
	if quiescent {
		logging.I("Batch %s finished: %d completed, %d failed",
			s.batchID,
			status.StatusCounts[consts.DLStatusCompleted],
			status.StatusCounts[consts.DLStatusFailed])
	}
	return quiescent, quiescent
}

// RefreshHistory fetches the recent download history from the server and
// replaces the local snapshot.
func (p *BatchPoller) RefreshHistory(ctx context.Context) error {
	history, err := p.api.ListDownloads(ctx)
	if err != nil {
		return err
	}

	p.mu.Lock()
	p.history = history
	p.mu.Unlock()

	if p.hooks.OnHistory != nil {
		p.hooks.OnHistory(history)
	}
	return nil
}

// RetrieveFile saves the artifact of a completed download to destPath.
// Poller state is unaffected either way.
func (p *BatchPoller) RetrieveFile(ctx context.Context, id, destPath string) error {
	return p.api.FetchFile(ctx, id, destPath)
}

// DeleteItem deletes a download after running the confirm callback. A nil
// confirm deletes unconditionally. When confirm declines, no request is
// sent and ErrDeleteDeclined is returned. On success the item is dropped
// from both local snapshots.
func (p *BatchPoller) DeleteItem(ctx context.Context, id string, confirm func(id string) bool) error {
	if confirm != nil && !confirm(id) {
		return ErrDeleteDeclined
	}

	if err := p.api.DeleteDownload(ctx, id); err != nil {
		return err
	}

	p.mu.Lock()
	p.history = removeByID(p.history, id)
	p.inProgress = removeByID(p.inProgress, id)
	p.mu.Unlock()
	return nil
}

// Close tears down any active poll session. The poller returns to idle
// and can be reused.
func (p *BatchPoller) Close() {
	p.stopSession()
}

// stopSession cancels the active session, if any, and waits for its loop
// to exit.
func (p *BatchPoller) stopSession() {
	p.mu.Lock()
	s := p.session
	p.session = nil
	p.state = StateIdle
	p.mu.Unlock()

	if s == nil {
		return
	}
	s.cancel()
	<-s.done
}

func removeByID(downloads []models.Download, id string) []models.Download {
	kept := downloads[:0]
	for _, d := range downloads {
		if d.ID != id {
			kept = append(kept, d)
		}
	}
	return kept
}
