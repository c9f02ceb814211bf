package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"nlb-mcp/internal/command"
	"nlb-mcp/internal/config"
	"nlb-mcp/internal/logging"
	"nlb-mcp/internal/repl"
	"nlb-mcp/internal/service"
)

const helpText = `nlb-cli - Interactive shell for the NLB library catalogue

USAGE:
    nlb-cli [OPTIONS]

DESCRIPTION:
    Searches the National Library Board catalogue and reports where copies
    are available, using the same validation and normalization as the MCP
    server:
    - Interactive REPL with command completion
    - One-shot commands for scripting

OPTIONS:
    --config <file>              YAML or JSON configuration file
    --env-file <file>            Environment file to load (default: .env)
    --search <keywords>          Run a keyword search and exit
    --avail <bib_id>             Show availability for a record and exit
    --branch <code>              Restrict --avail to one branch
    --branches [filter]          List branch codes and exit (use "" for all)
    --health                     Print configuration status and exit
    --pretty                     Indent JSON output
    --log-level <level>          debug, info, warn or error (default: warn)
    --help                       Show this help message

ENVIRONMENT:
    NLB_API_KEY, NLB_APP_CODE    Catalogue credentials (required)
    NLB_API_BASE                 API root (default: https://openweb.nlb.gov.sg/api/v2/Catalogue)
    REQUEST_TIMEOUT_MS           Per-call budget in milliseconds (default: 10000)

EXAMPLES:
    # Start interactive mode
    nlb-cli

    # Search once with indented output
    nlb-cli --search "frank herbert dune" --pretty

    # Check a record at Tampines Regional Library
    nlb-cli --avail 12345678 --branch TRL

INTERACTIVE COMMANDS:
` + command.HelpText

type options struct {
	configPath string
	envFile    string
	search     string
	avail      string
	branch     string
	branches   string
	health     bool
	pretty     bool
	logLevel   string
	help       bool

	branchesSet bool
}

func parseOptions(args []string, errOut io.Writer) (*options, error) {
	fs := flag.NewFlagSet("nlb-cli", flag.ContinueOnError)
	fs.SetOutput(errOut)
	fs.Usage = func() { fmt.Fprint(errOut, helpText) }

	opts := &options{}
	fs.StringVar(&opts.configPath, "config", "", "Path to configuration file")
	fs.StringVar(&opts.envFile, "env-file", ".env", "Environment file to load")
	fs.StringVar(&opts.search, "search", "", "Run a keyword search and exit")
	fs.StringVar(&opts.avail, "avail", "", "Show availability for a record and exit")
	fs.StringVar(&opts.branch, "branch", "", "Restrict --avail to one branch")
	fs.StringVar(&opts.branches, "branches", "", "List branch codes and exit")
	fs.BoolVar(&opts.health, "health", false, "Print configuration status and exit")
	fs.BoolVar(&opts.pretty, "pretty", false, "Indent JSON output")
	fs.StringVar(&opts.logLevel, "log-level", "warn", "Log level")
	fs.BoolVar(&opts.help, "help", false, "Show help message")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "branches" {
			opts.branchesSet = true
		}
	})
	return opts, nil
}

// oneShot returns the REPL command equivalent to the one-shot flags, if any.
func (o *options) oneShot() (string, bool) {
	switch {
	case o.health:
		return "health", true
	case o.branchesSet:
		return "branches " + o.branches, true
	case o.search != "":
		return "search " + quote(o.search), true
	case o.avail != "":
		line := "avail " + quote(o.avail)
		if o.branch != "" {
			line += " --branch=" + quote(o.branch)
		}
		return line, true
	}
	return "", false
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, "") + `"`
}

func run(args []string, stdout, stderr io.Writer) int {
	opts, err := parseOptions(args, stderr)
	if err != nil {
		return 2
	}
	if opts.help {
		fmt.Fprint(stdout, helpText)
		return 0
	}

	cfg, err := config.Load(config.LoadOptions{
		ConfigPath: opts.configPath,
		EnvFile:    opts.envFile,
	})
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		fmt.Fprintln(stderr, "\nUse --help for detailed usage information")
		return 1
	}

	// LOG_LEVEL is for the server; the shell stays quiet unless asked
	logger, err := logging.New(logging.Config{Level: opts.logLevel, Format: cfg.Log.Format, Output: "stderr"})
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer logger.Close()

	svc, err := service.NewFromConfig(cfg, logger)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	handler := &command.Handler{
		Svc:     svc,
		State:   &command.ReplState{Pretty: opts.pretty},
		Out:     stdout,
		Timeout: 3 * cfg.Catalogue.Timeout(),
	}

	if line, ok := opts.oneShot(); ok {
		handler.Execute(line)
		return 0
	}

	repl.Start(handler)
	return 0
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}
