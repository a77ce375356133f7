package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/dusk-indust/fireline/internal/config"
	"github.com/dusk-indust/fireline/internal/templatedata"
)

// CLI flags parsed from command line.
type cliFlags struct {
	Template     string
	Builtin      string
	Transcript   string
	Supplemental string
	Strategy     string
	Out          string
	Budget       time.Duration
	StepTimeout  time.Duration
	MaxAttempts  int
	Model        string
	BaseURL      string

	Validate      bool
	Lenient       bool
	Diagram       bool
	ListTemplates bool
	Verbose       bool
	ServeMCP      bool
	Version       bool
}

// version is set by goreleaser at build time.
var version = "dev"

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := config.Load(".")
	if err != nil {
		return err
	}

	var flags cliFlags

	fs := flag.NewFlagSet("fireline", flag.ContinueOnError)
	fs.StringVar(&flags.Template, "template", cfg.TemplatePath, "path to a template YAML file")
	fs.StringVar(&flags.Builtin, "builtin", cfg.Template, "built-in template name (see -list-templates)")
	fs.StringVar(&flags.Transcript, "transcript", "", "path to the transcript file")
	fs.StringVar(&flags.Supplemental, "supplemental", "", "path to supplemental material included in every prompt")
	fs.StringVar(&flags.Strategy, "strategy", cfg.Strategy, "scheduling strategy: auto, cascade, batch, or waves")
	fs.StringVar(&flags.Out, "out", "", "write the JSON export to this file instead of stdout")
	fs.DurationVar(&flags.Budget, "budget", cfg.Budget.Std(), "wall-clock budget for the whole run")
	fs.DurationVar(&flags.StepTimeout, "step-timeout", cfg.StepTimeout.Std(), "timeout for each completion call")
	fs.IntVar(&flags.MaxAttempts, "max-attempts", cfg.MaxAttempts, "retry attempts per step for transient failures")
	fs.StringVar(&flags.Model, "model", cfg.Model, "completion model name")
	fs.StringVar(&flags.BaseURL, "base-url", cfg.BaseURL, "OpenAI-compatible API base URL")
	fs.BoolVar(&flags.Validate, "validate", false, "validate the template and exit")
	fs.BoolVar(&flags.Lenient, "lenient", false, "prune unresolvable dependencies instead of failing validation")
	fs.BoolVar(&flags.Diagram, "diagram", false, "print a Mermaid diagram of the template's dependency graph and exit")
	fs.BoolVar(&flags.ListTemplates, "list-templates", false, "list built-in templates and exit")
	fs.BoolVar(&flags.Verbose, "verbose", cfg.Verbose, "enable debug logging")
	fs.BoolVar(&flags.ServeMCP, "serve-mcp", false, "run as an MCP server on stdio")
	fs.BoolVar(&flags.Version, "version", false, "print version and exit")

	if err := fs.Parse(args); err != nil {
		return err
	}

	switch {
	case flags.Version:
		fmt.Println(version)
		return nil
	case flags.ListTemplates:
		for _, name := range templatedata.Names() {
			fmt.Println(name)
		}
		return nil
	case flags.ServeMCP:
		return runServeMCP(flags, cfg)
	case flags.Validate:
		return runValidate(flags)
	case flags.Diagram:
		return runDiagram(flags)
	default:
		return runAnalyze(flags, cfg)
	}
}

// newLogger builds the process logger. Progress goes to stdout; logs stay on
// stderr so piped JSON output remains clean.
func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
