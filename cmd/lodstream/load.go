package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/banshee-data/lodstream/internal/config"
	"github.com/banshee-data/lodstream/internal/greyhound"
	"github.com/banshee-data/lodstream/internal/ingest"
	"github.com/banshee-data/lodstream/internal/lod"
	"github.com/banshee-data/lodstream/internal/pdal"
	"github.com/banshee-data/lodstream/internal/srs"
	"github.com/banshee-data/lodstream/internal/storage"
	"github.com/banshee-data/lodstream/internal/threedtiles"
	"github.com/banshee-data/lodstream/internal/timeutil"
)

// dbFlags registers the database connection flags shared by the commands.
// Each returned getter applies the flag only when it was set explicitly, so
// environment and config file values survive.
func dbFlags(fs *flag.FlagSet) func(cfg *config.Config) {
	dbName := fs.String("db-name", "", "Database name")
	dbPort := fs.Int("db-port", 0, "Database port")
	dbUser := fs.String("db-user", "", "Database user")
	dbPassword := fs.String("db-password", "", "Database password")

	return func(cfg *config.Config) {
		fs.Visit(func(f *flag.Flag) {
			switch f.Name {
			case "db-name":
				cfg.DBName = *dbName
			case "db-port":
				cfg.DBPort = *dbPort
			case "db-user":
				cfg.DBUser = *dbUser
			case "db-password":
				cfg.DBPassword = *dbPassword
			}
		})
	}
}

// buildConfig assembles the effective configuration: defaults, then an
// optional config file, then environment, then flags.
func buildConfig(configFile string, applyFlags func(*config.Config)) config.Config {
	cfg := config.Default()
	if configFile != "" {
		if err := cfg.LoadFile(configFile); err != nil {
			fatal("%v", err)
		}
	}
	cfg.ApplyEnv()
	if applyFlags != nil {
		applyFlags(&cfg)
	}
	return cfg
}

func handleLoad(args []string) {
	fs := flag.NewFlagSet("load", flag.ExitOnError)
	table := fs.String("table", "", "Table name to store pointclouds, considered in public schema if no prefix provided (required)")
	column := fs.String("column", "points", "Column name to store patches")
	workDir := fs.String("work-dir", "", "Working directory where temporary files will be saved (required)")
	serverURL := fs.String("server-url", "", "Server URL for the streaming endpoints")
	configFile := fs.String("config", "", "Configuration file path")
	epsgPath := fs.String("epsg", "", "EPSG definitions file for SRID resolution")
	applyDB := dbFlags(fs)
	fs.Parse(args)

	if *table == "" {
		fmt.Fprintln(os.Stderr, "Error: --table flag is required")
		fs.Usage()
		os.Exit(1)
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: exactly one input file is required")
		fs.Usage()
		os.Exit(1)
	}
	file := fs.Arg(0)
	if _, err := os.Stat(file); err != nil {
		fatal("input file %s does not exist", file)
	}

	cfg := buildConfig(*configFile, func(cfg *config.Config) {
		applyDB(cfg)
		if *workDir != "" {
			cfg.WorkDir = *workDir
		}
		if *serverURL != "" {
			cfg.ServerURL = *serverURL
		}
		if *epsgPath != "" {
			cfg.EPSGPath = *epsgPath
		}
	})
	if err := cfg.Validate(); err != nil {
		fatal("%v", err)
	}

	runLoad(context.Background(), cfg, file, *table, *column)
}

// runLoad executes ingestion then LOD precomputation. Shared by the load
// and demo commands.
func runLoad(ctx context.Context, cfg config.Config, file, table, column string) {
	store, err := storage.Open(cfg)
	if err != nil {
		fatal("%v", err)
	}
	defer store.Close()

	p := &progress{}
	driver := &ingest.Driver{
		Store:    store,
		PDAL:     pdal.NewTool(),
		Resolver: &srs.Resolver{DefinitionsPath: cfg.EPSGPath},
		Clock:    timeutil.RealClock{},
		Cfg:      cfg,
		Progress: p.Step,
	}

	result, err := driver.Run(ctx, file, table, column)
	if err != nil {
		p.Fail()
		fatal("%v", err)
	}

	coordinator := &lod.Coordinator{
		WorkDir:   cfg.WorkDir,
		ServerURL: cfg.ServerURL,
		LODMin:    cfg.LODMin,
		LODMax:    cfg.LODMax,
		Cache:     greyhound.Builder{},
		Tileset:   threedtiles.Builder{},
		Progress:  p.Step,
	}
	if err := coordinator.Run(ctx, store.Session(result.Table, result.Column)); err != nil {
		p.Fail()
		fatal("%v", err)
	}
	p.Done()

	fmt.Printf("loaded %d points into %s (column %s, srid %s via %s) in %s\n",
		result.NumPoints, result.Table, result.Column,
		result.Resolution.SRID, result.Resolution.Source, result.Duration)
}
