package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/joeblew999/plat-lakemap/internal/observability"
	"github.com/joeblew999/plat-lakemap/internal/server"
)

// Options defines all CLI flags and env vars for the lakemap server.
// Flags: --host, --port, --data-dir, --web-dir, --regions, --map-config, --log-level, --log-format
// Env vars: SERVICE_HOST, SERVICE_PORT, SERVICE_DATA_DIR, SERVICE_REGIONS, ...
type Options struct {
	Host      string `doc:"Host to bind to" default:"0.0.0.0"`
	Port      int    `doc:"Port to listen on" short:"p" default:"8086"`
	DataDir   string `doc:"Directory for the DuckDB database" default:".data"`
	WebDir    string `doc:"Path to an on-disk web/ directory; the embedded copy is used when empty"`
	Regions   string `doc:"GeoJSON FeatureCollection of regions" default:".data/regions.geojson"`
	MapConfig string `doc:"YAML file with map defaults"`
	LogLevel  string `doc:"Log level: debug, info, warn, error" default:"info"`
	LogFormat string `doc:"Log format: text or json" default:"text"`
}

func newServer(opts *Options) (*server.Server, error) {
	return server.New(server.Config{
		Host:        opts.Host,
		Port:        fmt.Sprintf("%d", opts.Port),
		DataDir:     opts.DataDir,
		WebDir:      opts.WebDir,
		RegionsFile: opts.Regions,
		MapConfig:   opts.MapConfig,
		Logger:      observability.NewLogger(opts.LogLevel, opts.LogFormat, os.Stderr),
	})
}

func mustServer(opts *Options) *server.Server {
	srv, err := newServer(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return srv
}

func main() {
	// .env is optional; values already in the environment win.
	_ = godotenv.Load()

	cli := humacli.New(func(hooks humacli.Hooks, opts *Options) {
		var httpServer *http.Server

		hooks.OnStart(func() {
			srv := mustServer(opts)
			defer srv.Close()

			addr := fmt.Sprintf("%s:%d", opts.Host, opts.Port)
			displayHost := opts.Host
			if displayHost == "0.0.0.0" {
				displayHost = "localhost"
			}
			baseURL := fmt.Sprintf("http://%s:%d", displayHost, opts.Port)

			fmt.Println()
			fmt.Printf("plat-lakemap server starting...\n")
			fmt.Printf("  Server:  %s\n", baseURL)
			fmt.Printf("  Data:    %s\n", opts.DataDir)
			fmt.Printf("  Regions: %s\n", opts.Regions)
			fmt.Println()
			fmt.Printf("  Viewer:  %s/viewer\n", baseURL)
			fmt.Printf("  Docs:    %s/docs\n", baseURL)
			fmt.Printf("  OpenAPI: %s/openapi.json\n", baseURL)
			fmt.Printf("  Metrics: %s/metrics\n", baseURL)
			fmt.Println()

			httpServer = &http.Server{Addr: addr, Handler: srv, ReadHeaderTimeout: 10 * time.Second}
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
				os.Exit(1)
			}
		})

		hooks.OnStop(func() {
			if httpServer == nil {
				return
			}
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			httpServer.Shutdown(ctx)
		})
	})

	cli.Root().Use = "lakemap"
	cli.Root().Short = "Regional observation map with a zoom-locked country view"
	cli.Root().Version = "0.1.0"

	// spec subcommand: export OpenAPI spec
	specCmd := &cobra.Command{
		Use:   "spec",
		Short: "Export OpenAPI spec (JSON by default, --yaml for YAML)",
		Run: humacli.WithOptions(func(cmd *cobra.Command, args []string, opts *Options) {
			srv := mustServer(opts)
			defer srv.Close()
			spec := srv.OpenAPI()

			useYAML, _ := cmd.Flags().GetBool("yaml")

			var output []byte
			var err error
			if useYAML {
				output, err = yaml.Marshal(spec)
			} else {
				output, err = json.MarshalIndent(spec, "", "  ")
			}
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error marshaling spec: %v\n", err)
				os.Exit(1)
			}
			fmt.Println(string(output))
		}),
	}
	specCmd.Flags().BoolP("yaml", "y", false, "Output as YAML instead of JSON")
	cli.Root().AddCommand(specCmd)

	// import subcommand: load observation files into DuckDB
	importCmd := &cobra.Command{
		Use:   "import <file>...",
		Short: "Import observations from .json or .yaml files",
		Args:  cobra.MinimumNArgs(1),
		Run: humacli.WithOptions(func(cmd *cobra.Command, args []string, opts *Options) {
			srv := mustServer(opts)
			defer srv.Close()

			importer := srv.Importer()
			for _, path := range args {
				res, err := importer.ImportFile(cmd.Context(), path)
				if err != nil {
					fmt.Fprintf(os.Stderr, "Error importing %s: %v\n", path, err)
					os.Exit(1)
				}
				fmt.Printf("%s: %d read, %d stored, %d outside every region, %d duplicates\n",
					path, res.Read, res.Stored, res.Unlocated, res.Duplicates)
			}
		}),
	}
	cli.Root().AddCommand(importCmd)

	// mask subcommand: print the inverse country mask as GeoJSON
	maskCmd := &cobra.Command{
		Use:   "mask",
		Short: "Print the country mask polygon as GeoJSON",
		Run: humacli.WithOptions(func(cmd *cobra.Command, args []string, opts *Options) {
			srv := mustServer(opts)
			defer srv.Close()

			output, err := json.MarshalIndent(srv.Regions().Mask().Feature(), "", "  ")
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error marshaling mask: %v\n", err)
				os.Exit(1)
			}
			fmt.Println(string(output))
		}),
	}
	cli.Root().AddCommand(maskCmd)

	cli.Run()
}
