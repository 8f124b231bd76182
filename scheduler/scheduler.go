package scheduler

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/hyunwoojo/etf-rag-agent/collector"
	"github.com/hyunwoojo/etf-rag-agent/config"
	"github.com/hyunwoojo/etf-rag-agent/logger"
)

// Metadata records the outcome of the most recent collection run, for the
// collection-status endpoint and surrounding tooling.
type Metadata struct {
	LastUpdated string         `json:"last_updated"`
	EtfCount    map[string]int `json:"etf_count"`
	DartCount   int            `json:"dart_count"`
	TotalCount  int            `json:"total_count"`
	Inserted    int            `json:"inserted"`
	Skipped     int            `json:"skipped"`
}

// Scheduler triggers the collection pipeline once a day at the configured
// wall-clock time.
type Scheduler struct {
	collector    *collector.Collector
	cfg          config.SchedulerConfig
	log          *logger.Logger
	stopCh       chan struct{}
	stopOnce     sync.Once
	runningMutex sync.Mutex
}

func New(coll *collector.Collector, cfg config.SchedulerConfig) *Scheduler {
	return &Scheduler{
		collector: coll,
		cfg:       cfg,
		log:       logger.New("scheduler"),
		stopCh:    make(chan struct{}),
	}
}

// Start launches the scheduling loop. When runImmediately is set the first
// collection happens right away instead of waiting for the next slot.
func (s *Scheduler) Start(runImmediately bool) {
	go s.run(runImmediately)
	s.log.Infof("scheduler started, daily collection at %02d:%02d", s.cfg.CrawlHour, s.cfg.CrawlMinute)
}

// Stop terminates the scheduling loop. A collection already in flight
// finishes on its own.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
	})
	s.log.Info("scheduler stopped")
}

func (s *Scheduler) run(runImmediately bool) {
	if runImmediately {
		s.collect()
	}

	for {
		wait := time.Until(NextRun(time.Now(), s.cfg.CrawlHour, s.cfg.CrawlMinute))
		timer := time.NewTimer(wait)

		select {
		case <-timer.C:
			s.collect()
		case <-s.stopCh:
			timer.Stop()
			return
		}
	}
}

func (s *Scheduler) collect() {
	// One run at a time; an immediate run and a timer slot can overlap.
	s.runningMutex.Lock()
	defer s.runningMutex.Unlock()

	s.log.Info("starting scheduled collection")
	result := s.collector.CollectAll(context.Background())

	if err := s.writeMetadata(result); err != nil {
		s.log.WithError(err).Error("failed to write metadata")
	}
}

// NextRun returns the next occurrence of hour:minute strictly after now.
func NextRun(now time.Time, hour, minute int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

func (s *Scheduler) writeMetadata(result collector.CollectionResult) error {
	metadata := Metadata{
		LastUpdated: time.Now().Format(time.RFC3339),
		EtfCount: map[string]int{
			"domestic": result.DomesticCount,
			"foreign":  result.ForeignCount,
		},
		DartCount:  result.DartCount,
		TotalCount: result.TotalCount,
		Inserted:   result.Inserted,
		Skipped:    result.Skipped,
	}

	raw, err := json.MarshalIndent(metadata, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.cfg.MetadataFile), 0o755); err != nil {
		return err
	}
	return os.WriteFile(s.cfg.MetadataFile, raw, 0o644)
}

// ReadMetadata loads the last collection run's metadata. A missing file
// yields an empty Metadata, not an error.
func ReadMetadata(path string) (*Metadata, error) {
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Metadata{EtfCount: map[string]int{}}, nil
	}
	if err != nil {
		return nil, err
	}
	var metadata Metadata
	if err := json.Unmarshal(raw, &metadata); err != nil {
		return nil, err
	}
	return &metadata, nil
}
