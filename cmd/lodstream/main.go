// Command lodstream ingests point-cloud files into a pgpointcloud database
// and precomputes the LOD artifacts a streaming server needs.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/banshee-data/lodstream/internal/version"
)

func main() {
	flag.Usage = printUsage
	flag.Parse()

	if flag.NArg() < 1 {
		printUsage()
		os.Exit(1)
	}

	command := flag.Arg(0)
	args := flag.Args()[1:]

	switch command {
	case "load":
		handleLoad(args)
	case "demo":
		handleDemo(args)
	case "serve":
		handleServe(args)
	case "version":
		fmt.Println(version.String())
	case "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`lodstream - point cloud ingestion and LOD precomputation

Usage: lodstream <command> [options]

Commands:
  load       Load a point cloud file and precompute its LOD artifacts
  demo       Download a sample file, load it and serve it locally
  serve      Run the development HTTP server
  version    Show lodstream version
  help       Show this help message

Common Flags:
  --table <name>       Target table; qualified with the default schema
                       (public) when no schema prefix is given
  --column <name>      Patch column name (default: points)
  --work-dir <dir>     Working directory for pipeline and LOD files
                       (must exist)
  --server-url <url>   Streaming server base URL
                       (default: http://localhost:5000)
  --config <file>      JSON configuration file

Database connection parameters come from flags, PG* environment
variables (an optional .env file is honored), the config file, or
defaults, in that order of precedence.

Examples:
  # Load a LAS file into public.pts
  lodstream load --table pts --work-dir /tmp/lodstream cloud.las

  # Load into an explicit schema with custom credentials
  PGUSER=ingest lodstream load --table lidar.pts --work-dir /tmp/lodstream cloud.laz

  # Download and serve the airport sample
  lodstream demo --sample airport --work-dir /tmp/lodstream

  # Development server with the SQL console enabled
  lodstream serve --listen :5000 --dev`)
}
