package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"time"

	"github.com/banshee-data/lodstream/internal/config"
	"github.com/banshee-data/lodstream/internal/httputil"
	"github.com/banshee-data/lodstream/internal/timeutil"
)

// samples maps demo names to public point-cloud files.
var samples = map[string]string{
	"airport":   "http://www.liblas.org/samples/LAS12_Sample_withRGB_Quick_Terrain_Modeler_fixed.las",
	"stsulpice": "https://freefr.dl.sourceforge.net/project/e57-3d-imgfmt/E57Example-data/Trimble_StSulpice-Cloud-50mm.e57",
}

// browserDelay is how long after the load finishes the browser tab opens.
// The timer races the server startup on purpose; they share no state.
const browserDelay = 1500 * time.Millisecond

func handleDemo(args []string) {
	fs := flag.NewFlagSet("demo", flag.ExitOnError)
	sample := fs.String("sample", "airport", "Sample lidar file to test (airport or stsulpice)")
	workDir := fs.String("work-dir", "", "Working directory where sample files will be saved (required)")
	serverURL := fs.String("server-url", "", "Server URL for the streaming endpoints")
	configFile := fs.String("config", "", "Configuration file path")
	applyDB := dbFlags(fs)
	fs.Parse(args)

	url, okSample := samples[*sample]
	if !okSample {
		fatal("unknown sample %q, choose airport or stsulpice", *sample)
	}

	cfg := buildConfig(*configFile, func(cfg *config.Config) {
		applyDB(cfg)
		if *workDir != "" {
			cfg.WorkDir = *workDir
		}
		if *serverURL != "" {
			cfg.ServerURL = *serverURL
		}
	})
	if err := cfg.Validate(); err != nil {
		fatal("%v", err)
	}

	dest := filepath.Join(cfg.WorkDir, filepath.Base(url))
	client := httputil.NewStandardClient(nil)
	if err := downloadSample(client, url, dest); err != nil {
		fatal("%v", err)
	}

	ctx := context.Background()
	runLoad(ctx, cfg, dest, *sample, "points")

	// Open a browser tab once the server has had a moment to come up.
	// Fire-and-forget: nothing synchronizes against the serve loop.
	scheduleBrowser(timeutil.RealClock{}, cfg.ServerURL, openBrowser)

	runServe(ctx, cfg, false)
}

// scheduleBrowser opens url in the default browser after the startup delay.
// It returns immediately; the returned channel closes once the open attempt
// has finished.
func scheduleBrowser(clock timeutil.Clock, url string, open func(string) error) <-chan struct{} {
	done := make(chan struct{})
	timer := clock.NewTimer(browserDelay)
	go func() {
		defer close(done)
		<-timer.C()
		if err := open(url); err != nil {
			log.Printf("failed to open browser: %v", err)
		}
	}()
	return done
}

// downloadSample fetches url into dest unless the file is already present.
func downloadSample(client httputil.HTTPClient, url, dest string) error {
	if _, err := os.Stat(dest); err == nil {
		log.Printf("sample already downloaded at %s", dest)
		return nil
	}

	log.Printf("downloading %s", url)
	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("sample download failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("sample download failed: status %d", resp.StatusCode)
	}

	f, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dest, err)
	}
	defer f.Close()

	n, err := io.Copy(f, resp.Body)
	if err != nil {
		os.Remove(dest)
		return fmt.Errorf("sample download interrupted: %w", err)
	}
	log.Printf("downloaded %d bytes to %s", n, dest)
	return nil
}

// openBrowser opens url in the default browser.
func openBrowser(url string) error {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", url).Start()
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	default:
		return exec.Command("xdg-open", url).Start()
	}
}
