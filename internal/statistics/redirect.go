package statistics

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"sync"
	"time"
)

// RedirectRecordList counts applied redirects per handler and original action.
type RedirectRecordList struct {
	recordAddChan chan *RedirectRecord
	records       map[string]*RedirectRecord
	mu            sync.RWMutex

	dumpRecords []*RedirectRecord
	dumpFile    string
	dumpWriter  *bufio.Writer
}

type RedirectRecord struct {
	Package        string    `json:"package"`
	OriginalAction string    `json:"original_action"`
	Action         string    `json:"action"`
	Count          int       `json:"count"`
	LastSeen       time.Time `json:"last_seen"`
}

func (r *RedirectRecord) key() string {
	return r.Package + "|" + r.OriginalAction
}

func NewRedirectRecordList(dumpFile string) *RedirectRecordList {
	return &RedirectRecordList{
		recordAddChan: make(chan *RedirectRecord, 100),
		records:       make(map[string]*RedirectRecord, 32),
		dumpRecords:   make([]*RedirectRecord, 0, 32),
		dumpFile:      dumpFile,
		dumpWriter:    bufio.NewWriter(nil),
	}
}

func (l *RedirectRecordList) Run(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case record := <-l.recordAddChan:
				l.Add(record)
			case <-ticker.C:
				l.Dump()
			case <-ctx.Done():
				l.Dump()
				return
			}
		}
	}()
}

func (l *RedirectRecordList) Add(record *RedirectRecord) {
	seen := record.LastSeen
	if seen.IsZero() {
		seen = time.Now()
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if r, exists := l.records[record.key()]; exists {
		r.Count++
		r.Action = record.Action
		r.LastSeen = seen
	} else {
		l.records[record.key()] = &RedirectRecord{
			Package:        record.Package,
			OriginalAction: record.OriginalAction,
			Action:         record.Action,
			Count:          1,
			LastSeen:       seen,
		}
	}
}

// Records returns a copy sorted by count, highest first.
func (l *RedirectRecordList) Records() []RedirectRecord {
	l.mu.RLock()
	out := make([]RedirectRecord, 0, len(l.records))
	for _, r := range l.records {
		out = append(out, *r)
	}
	l.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].key() < out[j].key()
	})
	return out
}

func (l *RedirectRecordList) Dump() {
	if l.dumpFile == "" {
		return
	}
	f, err := os.Create(l.dumpFile)
	if err != nil {
		slog.Error("os.Create", slog.Any("error", err))
		return
	}
	defer func() {
		if err := f.Close(); err != nil {
			slog.Error("os.File.Close", slog.Any("error", err))
		}
	}()

	l.dumpRecords = l.dumpRecords[:0]
	l.mu.RLock()
	for _, record := range l.records {
		l.dumpRecords = append(l.dumpRecords, record)
	}
	l.mu.RUnlock()

	sort.SliceStable(l.dumpRecords, func(i, j int) bool {
		if l.dumpRecords[i].Count != l.dumpRecords[j].Count {
			return l.dumpRecords[i].Count > l.dumpRecords[j].Count
		}
		return l.dumpRecords[i].key() < l.dumpRecords[j].key()
	})

	l.dumpWriter.Reset(f)
	defer func() {
		if err := l.dumpWriter.Flush(); err != nil {
			slog.Error("bufio.Writer.Flush", slog.Any("error", err))
		}
	}()

	for _, record := range l.dumpRecords {
		pkg := record.Package
		if pkg == "" {
			pkg = "-"
		}
		_, err := fmt.Fprintf(l.dumpWriter, "%s %d %s %s\n",
			pkg, record.Count, orDash(record.OriginalAction), orDash(record.Action))
		if err != nil {
			slog.Error("Dump fmt.Fprintf", slog.Any("error", err))
		}
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
