package telemetry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestRecordPhaseAndWriteTextfile(t *testing.T) {
	m := NewMetrics()
	m.SetRunInfo("ubuntu", "20.04", "stable")
	m.RecordPhase("dependencies", "succeeded", 2*time.Second)
	m.RecordPhase("install", "failed", 5*time.Second)
	m.SetRunDuration(10 * time.Second)

	path := filepath.Join(t.TempDir(), "saltboot.prom")
	if err := m.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read textfile: %v", err)
	}
	text := string(data)

	expected := []string{
		`saltboot_phases_total{phase="dependencies",status="succeeded"} 1`,
		`saltboot_phases_total{phase="install",status="failed"} 1`,
		`saltboot_run_info{channel="stable",distro="ubuntu",version="20.04"} 1`,
		`saltboot_run_duration_seconds 10`,
		`saltboot_phase_duration_seconds_count{phase="install"} 1`,
	}
	for _, want := range expected {
		if !strings.Contains(text, want) {
			t.Errorf("Expected textfile to contain %q, got:\n%s", want, text)
		}
	}
}

func TestWriteTextfileCreatesDirectory(t *testing.T) {
	m := NewMetrics()
	m.RecordPhase("configure", "skipped", 0)

	path := filepath.Join(t.TempDir(), "nested", "dir", "saltboot.prom")
	if err := m.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("Expected textfile to exist: %v", err)
	}
}

func TestNilMetricsAreNoOps(t *testing.T) {
	var m *Metrics
	m.RecordPhase("install", "succeeded", time.Second)
	m.SetRunInfo("debian", "11", "stable")
	m.SetRunDuration(time.Second)
	if err := m.WriteTextfile(filepath.Join(t.TempDir(), "x.prom")); err != nil {
		t.Fatalf("Expected nil metrics WriteTextfile to succeed, got %v", err)
	}
}
