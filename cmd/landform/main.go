// Command landform evaluates a scene script, places its features and
// brushes on the terrain and exports the result.
//
//	landform -script garden.landform -config landform.yaml -out build
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"

	"github.com/chazu/landform/pkg/config"
	"github.com/chazu/landform/pkg/export"
	"github.com/chazu/landform/pkg/pipeline"
)

func main() {
	fs := flag.NewFlagSet("landform", flag.ExitOnError)
	script := fs.String("script", "", "scene script to evaluate")
	configPath := fs.String("config", "", "YAML configuration file")
	verbose := fs.Bool("v", false, "log every stage")
	cfg := config.Default()
	cfg.Bind(fs)
	fs.Parse(os.Args[1:])

	if *configPath != "" {
		loaded, err := loadConfig(*configPath, fs)
		if err != nil {
			log.Fatal(err)
		}
		cfg = loaded
	}
	if *script == "" && fs.NArg() > 0 {
		*script = fs.Arg(0)
	}
	if *script == "" {
		fs.Usage()
		os.Exit(2)
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	pipeline.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := run(ctx, *script, cfg); err != nil {
		log.Fatal(err)
	}
}

// loadConfig reads the file at path, then reapplies every flag set on the
// command line so flags override the file.
func loadConfig(path string, fs *flag.FlagSet) (config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}
	over := flag.NewFlagSet("override", flag.ContinueOnError)
	cfg.Bind(over)
	var setErr error
	fs.Visit(func(f *flag.Flag) {
		if over.Lookup(f.Name) == nil || setErr != nil {
			return
		}
		setErr = over.Set(f.Name, f.Value.String())
	})
	if setErr != nil {
		return config.Config{}, setErr
	}
	return cfg, cfg.Validate()
}

func run(ctx context.Context, script string, cfg config.Config) error {
	source, err := os.ReadFile(script)
	if err != nil {
		return err
	}

	res, err := cfg.NewEngine().EvaluateAndValidateContext(ctx, string(source))
	if err != nil {
		return fmt.Errorf("evaluate %s: %w", script, err)
	}
	for _, w := range res.Warnings {
		log.Printf("%s:%d: warning: %s", script, w.Line, w.Message)
	}
	if len(res.Errors) > 0 {
		for _, e := range res.Errors {
			log.Printf("%s:%d:%d: %s", script, e.Line, e.Col, e.Message)
		}
		return fmt.Errorf("%s: %d errors", script, len(res.Errors))
	}
	s := res.Scene
	cfg.Apply(s)

	ground, err := cfg.BuildTerrain(s)
	if err != nil {
		return err
	}
	opts, err := cfg.PipelineOptions(s)
	if err != nil {
		return err
	}
	out, err := pipeline.Run(ctx, s, ground, opts)
	if err != nil {
		return err
	}
	for _, f := range out.Report {
		if f.Recovered() {
			log.Printf("%s: kept unconformed: %v", script, f)
			continue
		}
		log.Printf("%s: %v", script, f)
	}

	written, err := export.All(cfg.Export.Dir, out, cfg.Export.Options)
	if err != nil {
		return err
	}
	log.Printf("%d outputs, %d files written to %s", out.OutputCount(), len(written), cfg.Export.Dir)
	return nil
}
