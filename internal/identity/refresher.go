package identity

import (
	"os"
	"strings"
	"time"
)

// Refresher periodically re-reads the service-account token file and swaps
// it into a Shared identity. Ticker-loop shape grounded on the teacher's
// internal/janitor/janitor.go. Resolves spec.md §9's open question: service-
// account tokens rotate, so a long-lived gateway process re-reads the file
// rather than trusting the value it loaded at startup forever.
type Refresher struct {
	shared    *Shared
	tokenPath string
	interval  time.Duration
	stopCh    chan struct{}
}

// NewRefresher builds a Refresher for shared, re-reading tokenPath every
// interval.
func NewRefresher(shared *Shared, tokenPath string, interval time.Duration) *Refresher {
	return &Refresher{
		shared:    shared,
		tokenPath: tokenPath,
		interval:  interval,
		stopCh:    make(chan struct{}),
	}
}

// Start begins the refresh loop in a goroutine.
func (r *Refresher) Start() {
	go r.run()
	log.Info("token refresher started, interval=%s", r.interval)
}

// Stop signals the refresh loop to exit.
func (r *Refresher) Stop() {
	close(r.stopCh)
	log.Info("token refresher stopped")
}

func (r *Refresher) run() {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.refresh()
		case <-r.stopCh:
			return
		}
	}
}

func (r *Refresher) refresh() {
	if r.tokenPath == "" {
		return
	}

	data, err := os.ReadFile(r.tokenPath)
	if err != nil {
		log.Info("token refresh: could not read %s: %v", r.tokenPath, err)
		return
	}

	token := strings.TrimSpace(string(data))
	if token == "" {
		return
	}

	if token != r.shared.Get().BearerToken {
		r.shared.SetToken(token)
		log.Debug("token refreshed from %s", r.tokenPath)
	}
}
