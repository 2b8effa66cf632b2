//go:build !unix

package prefs

import (
	"os"
	"sync"
)

var editMu sync.Mutex

// Without flock only writers in this process are serialized; the atomic
// rename still keeps readers safe.
func lockExclusive(path string) (func(), error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, err
	}
	editMu.Lock()
	return func() {
		editMu.Unlock()
		_ = f.Close()
	}, nil
}
