// persona is the CLI for the persona fusion engine: classify observations,
// inspect environmental context, browse history, keep a diary, replay
// fixtures and serve the HTTP API.
//
// Usage:
//
//	persona analyze --user <id> [--facial eyes=deep,...] [--text "..."] [--lat N --lon N]
//	persona context --lat N --lon N
//	persona history --user <id>
//	persona rollback <user> <version-id>
//	persona diary add|list|search|stats --user <id>
//	persona replay <fixture.yaml> [--persist]
//	persona chat --user <id>
//	persona serve
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/danielpatrickdp/persona-fusion/internal/config"
	"github.com/danielpatrickdp/persona-fusion/internal/logging"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags.
var version = "dev"

// #region main

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run builds a fresh command tree, executes args and releases the app.
func run(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer) error {
	root, opts := newRootCmd()
	root.SetArgs(args)
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)
	defer opts.close()
	return root.ExecuteContext(ctx)
}

// #endregion main

// #region root

// rootOptions carries persistent flags and the lazily built app.
type rootOptions struct {
	configPath string
	envFile    string
	dbPath     string
	logLevel   string
	jsonOut    bool

	app *app
}

func newRootCmd() (*cobra.Command, *rootOptions) {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:   "persona",
		Short: "Persona disposition scoring and environmental context",
		Long: "persona fuses facial, text and environmental signals into a disposition\n" +
			"vector, classifies it into one of four archetypes and tracks how it evolves.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
	}

	f := root.PersistentFlags()
	f.StringVar(&opts.configPath, "config", "", "YAML config file (optional)")
	f.StringVar(&opts.envFile, "env-file", ".env", "dotenv file loaded before config resolution")
	f.StringVar(&opts.dbPath, "db", "", "SQLite database path (overrides config)")
	f.StringVar(&opts.logLevel, "log-level", "", "log level (overrides config)")
	f.BoolVar(&opts.jsonOut, "json", false, "print JSON instead of text")

	root.AddCommand(
		newAnalyzeCmd(opts),
		newContextCmd(opts),
		newHistoryCmd(opts),
		newRollbackCmd(opts),
		newDiaryCmd(opts),
		newReplayCmd(opts),
		newExportCmd(opts),
		newChatCmd(opts),
		newServeCmd(opts),
	)
	return root, opts
}

// load resolves config and wires the app once per invocation.
func (o *rootOptions) load(cmd *cobra.Command) (*app, error) {
	if o.app != nil {
		return o.app, nil
	}
	if o.envFile != "" {
		if err := godotenv.Load(o.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", o.envFile, err)
		}
	}
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	if o.dbPath != "" {
		cfg.DBPath = o.dbPath
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	logger, err := logging.NewLogger(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		return nil, err
	}
	o.app, err = newApp(cmd.Context(), cfg, logger)
	if err != nil {
		logger.Sync()
		return nil, err
	}
	return o.app, nil
}

func (o *rootOptions) close() {
	if o.app != nil {
		o.app.close()
		o.app = nil
	}
}

// #endregion root
