package main

import (
	"bytes"
	"errors"
	"flag"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/banshee-data/lodstream/internal/httputil"
	"github.com/banshee-data/lodstream/internal/testutil"
	"github.com/banshee-data/lodstream/internal/timeutil"
)

func TestProgressOutput(t *testing.T) {
	var buf bytes.Buffer
	p := &progress{w: &buf}

	p.Step("read pointcloud metadata")
	p.Step("assemble pipeline")
	p.Done()

	out := buf.String()
	if got := strings.Count(out, "ok\n"); got != 2 {
		t.Errorf("output has %d ok lines, want 2: %q", got, out)
	}
	if !strings.Contains(out, "read pointcloud metadata ... ") {
		t.Errorf("output missing first step: %q", out)
	}
}

func TestProgressFail(t *testing.T) {
	var buf bytes.Buffer
	p := &progress{w: &buf}

	p.Step("run pipeline")
	p.Fail()
	p.Fail() // no pending line, must not print again

	out := buf.String()
	if got := strings.Count(out, "ko\n"); got != 1 {
		t.Errorf("output has %d ko lines, want 1: %q", got, out)
	}
	if strings.Contains(out, "ok\n") {
		t.Errorf("failed run printed ok: %q", out)
	}
}

func TestProgressDoneWithoutStep(t *testing.T) {
	var buf bytes.Buffer
	p := &progress{w: &buf}
	p.Done()
	if buf.Len() != 0 {
		t.Errorf("Done() without a step printed %q", buf.String())
	}
}

func TestDownloadSample(t *testing.T) {
	client := httputil.NewMockHTTPClient()
	client.AddResponse(http.StatusOK, "las-bytes")
	dest := filepath.Join(t.TempDir(), "sample.las")

	testutil.AssertNoError(t, downloadSample(client, "http://example.com/sample.las", dest))

	data, err := os.ReadFile(dest)
	testutil.AssertNoError(t, err)
	if string(data) != "las-bytes" {
		t.Errorf("downloaded content = %q, want las-bytes", data)
	}
	if client.RequestCount() != 1 {
		t.Errorf("requests = %d, want 1", client.RequestCount())
	}
}

func TestDownloadSampleSkipsExisting(t *testing.T) {
	client := httputil.NewMockHTTPClient()
	dest := testutil.WriteTempFile(t, "sample.las", "already here")

	testutil.AssertNoError(t, downloadSample(client, "http://example.com/sample.las", dest))

	if client.RequestCount() != 0 {
		t.Errorf("requests = %d, want 0 for an existing file", client.RequestCount())
	}
	data, err := os.ReadFile(dest)
	testutil.AssertNoError(t, err)
	if string(data) != "already here" {
		t.Errorf("existing file was overwritten: %q", data)
	}
}

func TestDownloadSampleErrors(t *testing.T) {
	tests := []struct {
		name   string
		client *httputil.MockHTTPClient
	}{
		{"network error", httputil.NewMockHTTPClient().AddErrorResponse(errors.New("dial tcp: refused"))},
		{"http error status", httputil.NewMockHTTPClient().AddResponse(http.StatusNotFound, "not found")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dest := filepath.Join(t.TempDir(), "sample.las")
			testutil.AssertError(t, downloadSample(tt.client, "http://example.com/sample.las", dest))
			if _, err := os.Stat(dest); err == nil {
				t.Error("failed download left a file behind")
			}
		})
	}
}

func TestBuildConfigPrecedence(t *testing.T) {
	// Config file overlays defaults, environment overlays the file, and
	// explicitly set flags win.
	path := testutil.WriteTempFile(t, "config.json",
		`{"db_name": "fromfile", "db_user": "fileuser", "lod_max": 7}`)
	t.Setenv("PGUSER", "envuser")

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	applyDB := dbFlags(fs)
	testutil.AssertNoError(t, fs.Parse([]string{"--db-name", "fromflag"}))

	cfg := buildConfig(path, applyDB)

	if cfg.DBName != "fromflag" {
		t.Errorf("DBName = %q, want fromflag", cfg.DBName)
	}
	if cfg.DBUser != "envuser" {
		t.Errorf("DBUser = %q, want envuser", cfg.DBUser)
	}
	if cfg.LODMax != 7 {
		t.Errorf("LODMax = %d, want 7 from config file", cfg.LODMax)
	}
	// Flags not passed keep the layered value.
	if cfg.DBPort != 5432 {
		t.Errorf("DBPort = %d, want default 5432", cfg.DBPort)
	}
}

func TestScheduleBrowser(t *testing.T) {
	clock := timeutil.NewMockClock(time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC))

	var mu sync.Mutex
	var opened []string
	done := scheduleBrowser(clock, "http://localhost:5000", func(url string) error {
		mu.Lock()
		defer mu.Unlock()
		opened = append(opened, url)
		return nil
	})

	// Before the delay elapses nothing opens.
	clock.Advance(time.Second)
	mu.Lock()
	if len(opened) != 0 {
		t.Errorf("browser opened %v before the delay elapsed", opened)
	}
	mu.Unlock()

	clock.Advance(time.Second)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("browser open did not run after the delay")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(opened) != 1 || opened[0] != "http://localhost:5000" {
		t.Errorf("opened = %v, want one open at the server URL", opened)
	}
}

func TestSampleURLs(t *testing.T) {
	for _, name := range []string{"airport", "stsulpice"} {
		if _, exists := samples[name]; !exists {
			t.Errorf("samples missing %q", name)
		}
	}
}
