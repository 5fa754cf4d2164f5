package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"cssinliner/internal/config"
	"cssinliner/pkg/inliner"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &cli.Command{
		Name:      "inliner",
		Usage:     "inline CSS into the style attributes of HTML documents for email clients",
		UsageText: "inliner [options] [--input FILE | --input-dir DIR --output-dir DIR]",
		Flags: []cli.Flag{
			// Input/Output flags
			&cli.StringFlag{Name: "input", Aliases: []string{"i"}, Usage: "input HTML file path (default: stdin)"},
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "output HTML file path (default: stdout)"},
			&cli.StringFlag{Name: "input-dir", Usage: "process all HTML files in directory"},
			&cli.StringFlag{Name: "output-dir", Usage: "output directory for batch processing"},
			&cli.StringFlag{Name: "css", Usage: "stylesheet file to inline"},
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "load configuration from `FILE` (YAML)"},

			// Configuration flags, override the configuration file when given
			&cli.BoolFlag{Name: "strip-class-and-id", Usage: "remove class and id attributes after inlining"},
			&cli.BoolFlag{Name: "use-style-blocks", Usage: "inline CSS from <style> blocks of the document"},
			&cli.BoolFlag{Name: "load-links", Usage: "inline stylesheets referenced by <link> elements"},
			&cli.StringFlag{Name: "stylesheet-base", Usage: "base directory for <link> stylesheets"},
			&cli.BoolFlag{Name: "remove-style-blocks", Usage: "remove <style> blocks after inlining (media queries are kept)"},
			&cli.BoolFlag{Name: "exclude-media-queries", Value: true, Usage: "never inline rules inside @media blocks"},
			&cli.BoolFlag{Name: "exclude-conditional-comments", Value: true, Usage: "ignore <style> blocks inside HTML comments"},
			&cli.BoolFlag{Name: "xhtml", Usage: "write XHTML instead of HTML"},
			&cli.StringFlag{Name: "target", Value: "generic", Usage: "target email client (generic, outlook, gmail, apple_mail, outlook_online)"},

			// Output control flags
			&cli.BoolFlag{Name: "warnings", Usage: "show compatibility warnings"},
			&cli.BoolFlag{Name: "stats", Usage: "show processing statistics"},
			&cli.BoolFlag{Name: "debug", Usage: "verbose logging"},
			&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Usage: "suppress all output except errors"},
		},
		Action: run,
	}

	if err := app.Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run validates arguments, prepares configuration and routes to the
// appropriate processing mode
func run(ctx context.Context, cmd *cli.Command) error {
	if err := validateArgs(cmd); err != nil {
		return err
	}

	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	// stdout carries the document unless an output file is given
	log := cfg.Logging.Prepare(cmd.String("output") == "" && cmd.String("output-dir") == "")
	defer func() { _ = log.Sync() }()

	cssContent, err := readStylesheet(cmd.String("css"))
	if err != nil {
		return err
	}

	engine := inliner.New(*cfg, log)
	startTime := time.Now()

	switch {
	case cmd.String("input-dir") != "":
		err = runBatchProcessing(ctx, cmd, engine, cssContent, log)
	default:
		err = runSingleFile(cmd, engine, cssContent, log)
	}

	log.Debug("Processing completed", zap.Duration("elapsed", time.Since(startTime)))
	return err
}

// validateArgs validates command line arguments
func validateArgs(cmd *cli.Command) error {
	if cmd.String("input") != "" && cmd.String("input-dir") != "" {
		return fmt.Errorf("cannot specify both --input and --input-dir")
	}

	if cmd.String("input-dir") != "" && cmd.String("output-dir") == "" {
		return fmt.Errorf("--output-dir required when using --input-dir")
	}

	if cmd.Bool("quiet") && cmd.Bool("debug") {
		return fmt.Errorf("cannot specify both --quiet and --debug")
	}

	return nil
}

// buildConfig loads the configuration file and applies command line overrides
func buildConfig(cmd *cli.Command) (*config.Config, error) {
	cfg, err := config.LoadConfiguration(cmd.String("config"))
	if err != nil {
		return nil, fmt.Errorf("unable to prepare configuration: %w", err)
	}

	boolFlags := map[string]*bool{
		"strip-class-and-id":           &cfg.StripClassAndID,
		"use-style-blocks":             &cfg.UseEmbeddedStyleBlocks,
		"load-links":                   &cfg.LoadExternalStylesheets,
		"remove-style-blocks":          &cfg.RemoveEmbeddedStyleBlocks,
		"exclude-media-queries":        &cfg.ExcludeMediaQueries,
		"exclude-conditional-comments": &cfg.ExcludeConditionalCommentBlocks,
		"xhtml":                        &cfg.OutputXHTML,
	}
	for name, field := range boolFlags {
		if cmd.IsSet(name) {
			*field = cmd.Bool(name)
		}
	}

	if cmd.IsSet("stylesheet-base") {
		cfg.StylesheetBasePath = cmd.String("stylesheet-base")
	}
	if cmd.IsSet("target") {
		cfg.TargetEmailClient = cmd.String("target")
	}

	switch {
	case cmd.Bool("debug"):
		cfg.Logging.Console.Level = "debug"
	case cmd.Bool("quiet"):
		cfg.Logging.Console.Level = "none"
	}

	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// readStylesheet reads the stylesheet file, if any
func readStylesheet(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read stylesheet %s: %w", path, err)
	}
	return string(data), nil
}

// runSingleFile processes a single input file, or stdin
func runSingleFile(cmd *cli.Command, engine *inliner.Inliner, cssContent string, log *zap.Logger) error {
	inputFile := cmd.String("input")

	var (
		inputContent []byte
		err          error
		name         = "<stdin>"
	)
	if inputFile != "" {
		name = inputFile
		inputContent, err = os.ReadFile(inputFile)
	} else {
		inputContent, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		return fmt.Errorf("failed to read input %s: %w", name, err)
	}

	result, err := engine.Convert(string(inputContent), cssContent)
	if err != nil {
		return fmt.Errorf("failed to inline CSS: %w", err)
	}

	if err := writeOutput(result.HTML, cmd.String("output")); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	report(cmd, log, name, result)
	return nil
}

// runBatchProcessing processes all HTML files in a directory, continuing
// past failures and returning all of them
func runBatchProcessing(ctx context.Context, cmd *cli.Command, engine *inliner.Inliner, cssContent string, log *zap.Logger) error {
	inputDir, outputDir := cmd.String("input-dir"), cmd.String("output-dir")

	htmlFiles, err := findHTMLFiles(inputDir)
	if err != nil {
		return fmt.Errorf("failed to find HTML files: %w", err)
	}
	if len(htmlFiles) == 0 {
		return fmt.Errorf("no HTML files found in directory: %s", inputDir)
	}

	var errs error
	for n, inputPath := range htmlFiles {
		if err := ctx.Err(); err != nil {
			return multierr.Append(errs, err)
		}
		log.Debug("Processing file", zap.Int("n", n+1), zap.Int("total", len(htmlFiles)), zap.String("path", inputPath))

		relPath, err := filepath.Rel(inputDir, inputPath)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", inputPath, err))
			continue
		}
		outputPath := filepath.Join(outputDir, relPath)

		if err := processFile(engine, cssContent, inputPath, outputPath, cmd, log); err != nil {
			log.Warn("Unable to process file", zap.String("path", inputPath), zap.Error(err))
			errs = multierr.Append(errs, err)
		}
	}

	if failed := len(multierr.Errors(errs)); failed > 0 {
		log.Info("Batch completed with errors", zap.Int("files", len(htmlFiles)), zap.Int("failed", failed))
	} else {
		log.Info("Batch completed", zap.Int("files", len(htmlFiles)))
	}
	return errs
}

func processFile(engine *inliner.Inliner, cssContent, inputPath, outputPath string, cmd *cli.Command, log *zap.Logger) error {
	inputContent, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", inputPath, err)
	}

	result, err := engine.Convert(string(inputContent), cssContent)
	if err != nil {
		return fmt.Errorf("failed to process %s: %w", inputPath, err)
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("failed to create output directory for %s: %w", outputPath, err)
	}
	if err := writeOutput(result.HTML, outputPath); err != nil {
		return fmt.Errorf("failed to write %s: %w", outputPath, err)
	}

	report(cmd, log, inputPath, result)
	return nil
}

// writeOutput writes content to a file or stdout
func writeOutput(content, filename string) error {
	if filename == "" {
		_, err := fmt.Print(content)
		return err
	}
	return os.WriteFile(filename, []byte(content), 0644)
}

// findHTMLFiles finds all HTML files in a directory
func findHTMLFiles(dir string) ([]string, error) {
	var htmlFiles []string

	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			ext := strings.ToLower(filepath.Ext(path))
			if ext == ".html" || ext == ".htm" {
				htmlFiles = append(htmlFiles, path)
			}
		}
		return nil
	})

	return htmlFiles, err
}

// report logs statistics and compatibility warnings when requested
func report(cmd *cli.Command, log *zap.Logger, name string, result *inliner.InlineResult) {
	if cmd.Bool("stats") {
		stats := result.ProcessingStats
		log.Info("Processing statistics",
			zap.String("file", name),
			zap.Int("rules parsed", stats.CSSRulesParsed),
			zap.Int("rules skipped", stats.CSSRulesSkipped),
			zap.Int("elements styled", stats.HTMLElementsProcessed),
			zap.Int("selectors matched", stats.SelectorsMatched),
			zap.Int64("time ms", stats.ProcessingTimeMs))
	}

	if cmd.Bool("warnings") {
		for _, w := range result.Warnings {
			log.Warn(w.Message,
				zap.String("file", name),
				zap.String("severity", w.Severity),
				zap.String("element", w.Element),
				zap.String("property", w.Property),
				zap.String("value", w.Value))
		}
	}
}
