// Package discovery scans the clips folder for batch items, resolves sidecar
// assets by naming convention, and relocates processed items. The engine
// receives an ordered item list; the order here (ascending file name) is the
// discovery order the orchestrator and the ledger preserve.
package discovery

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"yt-bulk-scheduler/internal/model"
)

// Batch is the result of one scan. Pending items need uploading.
// AlreadyUploaded items have a success entry in the ledger but are still in
// the clips folder — a crash happened between upload and relocation — and
// must be repaired by relocation only, never re-submitted.
type Batch struct {
	Pending         []model.BatchItem
	AlreadyUploaded []model.BatchItem
}

// TotalPendingBytes sums the sizes of the pending items.
func (b Batch) TotalPendingBytes() int64 {
	var total int64
	for _, item := range b.Pending {
		total += item.SizeBytes
	}
	return total
}

// Scan lists candidate files in clipsDir by extension, in ascending name
// order, and splits them against the uploaded set. A missing clips folder is
// an error: the operator has to create it deliberately.
func Scan(clipsDir string, extensions map[string]bool, uploaded map[string]bool) (Batch, error) {
	entries, err := os.ReadDir(clipsDir)
	if err != nil {
		return Batch{}, fmt.Errorf("read clips folder %s: %w", clipsDir, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if !extensions[ext] {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	var batch Batch
	for _, name := range names {
		path := filepath.Join(clipsDir, name)
		info, err := os.Stat(path)
		if err != nil {
			return Batch{}, fmt.Errorf("stat %s: %w", path, err)
		}
		item := model.BatchItem{
			Identity:  name,
			Path:      path,
			SizeBytes: info.Size(),
		}
		resolveSidecars(&item)

		if uploaded[name] {
			batch.AlreadyUploaded = append(batch.AlreadyUploaded, item)
			continue
		}
		batch.Pending = append(batch.Pending, item)
	}
	return batch, nil
}
