package uploader

import (
	"strings"
	"testing"
	"time"
)

func TestMeter_StopIsIdempotent(t *testing.T) {
	m := newMeter(true, 1, 3, "clip", 1024)
	m.Start()
	m.Stop("done")
	// A second stop on an error path must not panic or double-close the
	// ticker channel.
	m.Stop("done")

	select {
	case <-m.stop:
	case <-time.After(time.Second):
		t.Fatal("stop channel not closed")
	}
}

func TestMeter_DisabledIsInert(t *testing.T) {
	m := newMeter(false, 1, 1, "clip", 0)
	m.Start()
	m.Update(10, 100)
	m.Stop("done")
	m.Stop("done")
}

func TestMeter_RenderReportsProgress(t *testing.T) {
	m := newMeter(true, 2, 5, "a long clip", 2048)
	m.Update(1024, 2048)

	line := m.render()
	if !strings.Contains(line, "[2/5]") {
		t.Fatalf("missing position: %q", line)
	}
	if !strings.Contains(line, "50.0%") {
		t.Fatalf("missing percent: %q", line)
	}
	m.Stop("done")
}
