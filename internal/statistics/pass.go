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

// PassRecordList counts intents that were left alone, per site and action.
type PassRecordList struct {
	recordAddChan chan *PassRecord
	records       map[string]*PassRecord
	mu            sync.RWMutex
	dumpFile      string
}

type PassRecord struct {
	Site   string `json:"site"`
	Action string `json:"action"`
	Rule   string `json:"rule,omitempty"`
	Count  int    `json:"count"`
}

func (r *PassRecord) key() string {
	return r.Site + "|" + r.Action
}

func NewPassRecordList(dumpFile string) *PassRecordList {
	return &PassRecordList{
		recordAddChan: make(chan *PassRecord, 100),
		records:       make(map[string]*PassRecord, 100),
		dumpFile:      dumpFile,
	}
}

func (l *PassRecordList) Run(ctx context.Context, interval time.Duration) {
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

func (l *PassRecordList) Add(record *PassRecord) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if r, exists := l.records[record.key()]; exists {
		r.Count++
		r.Rule = record.Rule
	} else {
		l.records[record.key()] = &PassRecord{
			Site:   record.Site,
			Action: record.Action,
			Rule:   record.Rule,
			Count:  1,
		}
	}
}

// Records returns a copy sorted by count, highest first.
func (l *PassRecordList) Records() []PassRecord {
	l.mu.RLock()
	out := make([]PassRecord, 0, len(l.records))
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

func (l *PassRecordList) Dump() {
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

	records := l.Records()

	w := bufio.NewWriter(f)
	defer func() {
		if err := w.Flush(); err != nil {
			slog.Error("bufio.Writer.Flush", slog.Any("error", err))
		}
	}()

	for _, record := range records {
		_, err := fmt.Fprintf(w, "%s %d %s %s\n",
			record.Site, record.Count, orDash(record.Action), orDash(record.Rule))
		if err != nil {
			slog.Error("Dump fmt.Fprintf", slog.Any("error", err))
		}
	}
}
