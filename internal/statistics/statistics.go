package statistics

import (
	"context"
	"log/slog"
	"time"

	"github.com/chimio/inxlocker/internal/log"
)

const DumpInterval = 5 * time.Second

// Recorder feeds the record lists and the prometheus counters. The zero
// dir disables the dump files.
type Recorder struct {
	redirects *RedirectRecordList
	passes    *PassRecordList
	metrics   *Metrics
}

type Stats struct {
	Redirects []RedirectRecord `json:"redirects"`
	Passes    []PassRecord     `json:"passes"`
}

func New(dir string) *Recorder {
	var redirectFile, passFile string
	if dir != "" {
		redirectFile = log.GetStatsFilePath(dir, "redirect_stats")
		passFile = log.GetStatsFilePath(dir, "pass_stats")
	}
	return &Recorder{
		redirects: NewRedirectRecordList(redirectFile),
		passes:    NewPassRecordList(passFile),
		metrics:   NewMetrics(),
	}
}

// Start runs the aggregation goroutines until ctx is done.
func (r *Recorder) Start(ctx context.Context) {
	r.redirects.Run(ctx, DumpInterval)
	r.passes.Run(ctx, DumpInterval)
}

// AddRecord queues a record without blocking the caller. Records are
// dropped when the queue is full.
func (r *Recorder) AddRecord(record any) {
	switch rec := record.(type) {
	case *RedirectRecord:
		select {
		case r.redirects.recordAddChan <- rec:
		default:
			slog.Debug("Recorder.AddRecord dropped", slog.String("type", "redirect"))
		}
	case *PassRecord:
		select {
		case r.passes.recordAddChan <- rec:
		default:
			slog.Debug("Recorder.AddRecord dropped", slog.String("type", "pass"))
		}
	default:
		slog.Warn("Recorder.AddRecord unknown record", slog.Any("record", record))
	}
}

func (r *Recorder) Metrics() *Metrics {
	return r.metrics
}

func (r *Recorder) Snapshot() Stats {
	return Stats{
		Redirects: r.redirects.Records(),
		Passes:    r.passes.Records(),
	}
}
