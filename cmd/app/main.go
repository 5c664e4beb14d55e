package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/ooker777/breadcrumbs/internal"
	"github.com/ooker777/breadcrumbs/internal/outline"
	pkgconfig "github.com/ooker777/breadcrumbs/pkg/config"
)

var version = "dev"

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.Load(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// consoleOptions configures one-shot commands: human-readable logs on stderr,
// index text on stdout.
func consoleOptions(cfg *internal.Config) []internal.Option {
	return []internal.Option{
		internal.WithConfig(cfg),
		internal.WithLogger(internal.NewConsoleLogger(os.Stderr, cfg.App.LogLevel)),
		internal.WithOutput(os.Stdout),
		internal.WithVersion(version),
	}
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, internal.WithConfig(cfg), internal.WithVersion(version)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func local(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.LocalIndex(ctx, cmd.String("note"), cmd.String("sink"), consoleOptions(cfg)...)
}

func global(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.GlobalIndex(ctx, cmd.String("sink"), consoleOptions(cfg)...)
}

func serveMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	// stdout carries the protocol.
	return internal.ServeMCP(ctx, consoleOptions(cfg)...)
}

func parse(_ context.Context, cmd *cli.Command) error {
	var in io.Reader = os.Stdin
	if name := cmd.Args().First(); name != "" && name != "-" {
		f, err := os.Open(name)
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return err
	}

	w := bufio.NewWriter(os.Stdout)
	for _, p := range outline.Parse(string(data), cmd.Bool("flat")) {
		fmt.Fprintf(w, "%d\t%s\n", p.Depth(), p.Label)
	}
	return w.Flush()
}

func sinkFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:  "sink",
		Usage: "Where to deliver the index: stdout, file, or clipboard (default from config)",
	}
}

func main() {
	cmd := &cli.Command{
		Name:    "breadcrumbs",
		Usage:   "Hierarchy indexes for a Markdown vault",
		Version: version,
		Action:  serve,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file (.yaml or .toml)",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Index the vault, watch it, and serve the HTTP API",
				Action: serve,
			},
			{
				Name:  "local",
				Usage: "Print the index below one note",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "note", Aliases: []string{"n"}, Usage: "Note name or [[link]]", Required: true},
					sinkFlag(),
				},
				Action: local,
			},
			{
				Name:   "global",
				Usage:  "Print the index of every top-level note",
				Flags:  []cli.Flag{sinkFlag()},
				Action: global,
			},
			{
				Name:      "parse",
				Usage:     "Split an index into depth and label columns",
				ArgsUsage: "[FILE|-]",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "flat", Usage: "Report every line at depth 0"},
				},
				Action: parse,
			},
			{
				Name:   "mcp",
				Usage:  "Serve the index tools over MCP stdio",
				Action: serveMCP,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
