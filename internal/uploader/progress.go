package uploader

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
)

// meter renders a single live progress line for the item currently being
// transferred. Unlike a scraping-based meter it gets exact byte counts from
// the resumable upload callback, so percent and throughput are computed, not
// parsed.
type meter struct {
	enabled bool

	index int
	total int
	title string
	size  int64

	mu       sync.Mutex
	uploaded int64
	started  time.Time
	stopped  bool

	stop chan struct{}
}

func newMeter(enabled bool, index, total int, title string, size int64) *meter {
	return &meter{
		enabled: enabled,
		index:   index,
		total:   total,
		title:   title,
		size:    size,
		started: time.Now(),
		stop:    make(chan struct{}),
	}
}

func (m *meter) Start() {
	if !m.enabled {
		return
	}
	go func() {
		t := time.NewTicker(700 * time.Millisecond)
		defer t.Stop()
		for {
			select {
			case <-m.stop:
				return
			case <-t.C:
				fmt.Printf("\r\033[2K%s", m.render())
			}
		}
	}()
}

// Stop halts the render ticker and prints the final line. Safe to call more
// than once; only the first call renders.
func (m *meter) Stop(final string) {
	if !m.enabled {
		return
	}
	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		return
	}
	m.stopped = true
	m.mu.Unlock()
	close(m.stop)
	fmt.Printf("\r\033[2K%s\n", final)
}

// Update is wired as the transfer progress callback.
func (m *meter) Update(uploaded, total int64) {
	if !m.enabled {
		return
	}
	m.mu.Lock()
	m.uploaded = uploaded
	if total > 0 {
		m.size = total
	}
	m.mu.Unlock()
}

func (m *meter) render() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	title := m.title
	if len(title) > 52 {
		title = title[:52] + "..."
	}

	parts := []string{fmt.Sprintf("[%d/%d] uploading", m.index, m.total)}
	if m.size > 0 {
		pct := float64(m.uploaded) / float64(m.size) * 100
		parts = append(parts, fmt.Sprintf("%.1f%%", pct))
		parts = append(parts, fmt.Sprintf("%s/%s", humanize.IBytes(uint64(m.uploaded)), humanize.IBytes(uint64(m.size))))
	} else if m.uploaded > 0 {
		parts = append(parts, humanize.IBytes(uint64(m.uploaded)))
	}
	elapsed := time.Since(m.started).Seconds()
	if elapsed > 1 && m.uploaded > 0 {
		rate := float64(m.uploaded) / elapsed
		parts = append(parts, humanize.IBytes(uint64(rate))+"/s")
		if m.size > m.uploaded && rate > 0 {
			eta := time.Duration(float64(m.size-m.uploaded)/rate) * time.Second
			parts = append(parts, "ETA "+eta.Truncate(time.Second).String())
		}
	}
	parts = append(parts, "| "+title)
	return strings.Join(parts, "  ")
}
