// Package audit periodically replays every item's facts and compares the
// result with its read row.
package audit

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/ethanbaker/smartmarket/pkg/config"
	"github.com/ethanbaker/smartmarket/pkg/ledger"
	"github.com/robfig/cron/v3"
)

// Report is the result of one audit run
type Report struct {
	RanAt       time.Time           `json:"ran_at"`
	Divergences []ledger.Divergence `json:"divergences"`
	Repaired    []string            `json:"repaired"`
}

// Auditor runs ledger verification on a cron schedule
type Auditor struct {
	ledger *ledger.Ledger
	repair bool

	// Concurrency
	mutex  sync.Mutex
	last   *Report
	ctx    context.Context
	cancel context.CancelFunc

	// Scheduling
	cron     *cron.Cron
	schedule string
}

// NewAuditor creates an auditor for the ledger. An empty schedule disables
// the periodic run; RunOnce still works.
func NewAuditor(l *ledger.Ledger, cfg *config.AuditConfig) (*Auditor, error) {
	if l == nil {
		return nil, fmt.Errorf("a ledger must be provided")
	}

	ctx, cancel := context.WithCancel(context.Background())
	a := &Auditor{
		ledger:   l,
		repair:   cfg.Repair,
		ctx:      ctx,
		cancel:   cancel,
		cron:     cron.New(),
		schedule: strings.TrimSpace(cfg.Schedule),
	}

	if a.schedule == "" {
		return a, nil
	}

	if _, err := a.cron.AddFunc(a.schedule, a.run); err != nil {
		cancel()
		return nil, fmt.Errorf("invalid audit schedule '%s': %w", a.schedule, err)
	}
	return a, nil
}

// Start begins the scheduled runs
func (a *Auditor) Start() {
	if a.schedule == "" {
		log.Println("[AUDIT]: no schedule configured, periodic audit is disabled")
		return
	}
	log.Printf("[AUDIT]: scheduled on '%s' (repair=%t)\n", a.schedule, a.repair)
	a.cron.Start()
}

// Stop cancels a running audit and waits for the scheduler to finish
func (a *Auditor) Stop() {
	a.cancel()
	<-a.cron.Stop().Done()
}

// Last returns the report of the most recent run, or nil before the first one
func (a *Auditor) Last() *Report {
	a.mutex.Lock()
	defer a.mutex.Unlock()
	return a.last
}

// RunOnce verifies every known item and, when repair is enabled, rebuilds
// divergent read rows from their facts
func (a *Auditor) RunOnce(ctx context.Context) (*Report, error) {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	report := &Report{RanAt: time.Now().UTC(), Divergences: []ledger.Divergence{}, Repaired: []string{}}

	divergences, err := a.ledger.VerifyAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to verify ledger: %w", err)
	}
	report.Divergences = append(report.Divergences, divergences...)

	for _, d := range divergences {
		log.Printf("[AUDIT]: item '%s' diverges from its facts on %v\n", d.ItemID, d.Fields)
		if !a.repair {
			continue
		}

		if err := a.ledger.Repair(ctx, d.ItemID); err != nil {
			log.Printf("[AUDIT]: Warning, failed to repair '%s': %v\n", d.ItemID, err)
			continue
		}
		report.Repaired = append(report.Repaired, d.ItemID)
	}

	a.last = report
	return report, nil
}

// run is the cron entry point
func (a *Auditor) run() {
	report, err := a.RunOnce(a.ctx)
	if err != nil {
		log.Printf("[AUDIT]: Warning, %v\n", err)
		return
	}
	if len(report.Divergences) == 0 {
		log.Println("[AUDIT]: every read row matches its facts")
	}
}
