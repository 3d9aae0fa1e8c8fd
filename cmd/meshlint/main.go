// meshlint validates OBJ, glTF and GLB mesh files before they reach a
// rendering pipeline.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Faultbox/meshlint/internal/config"
	"github.com/Faultbox/meshlint/internal/logger"
	"github.com/Faultbox/meshlint/internal/validate"
)

// Exit codes.
const (
	exitOK     = 0
	exitFailed = 1 // at least one file failed validation
	exitUsage  = 2 // bad flags, arguments or config
)

// errFilesFailed signals exitFailed after the reports were printed.
var errFilesFailed = errors.New("validation failed")

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the CLI and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	root := newRoot()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.Execute()
	logger.Sync()

	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, errFilesFailed):
		return exitFailed
	default:
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitUsage
	}
}

// app is the state shared by subcommands once config is loaded.
type app struct {
	flags     *config.Flags
	cfg       *config.Config
	log       *zap.Logger
	validator *validate.Validator
}

func newRoot() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "meshlint",
		Short: "Validate 3D asset files (OBJ, glTF, GLB)",
		Long: `meshlint checks mesh and scene files for structural problems:
malformed geometry, broken buffer references, truncated binary
containers and models that are off-center or out of scale.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
	}
	a.flags = config.BindFlags(root.PersistentFlags())

	root.AddCommand(
		validateCmd(a),
		normalizeCmd(a),
		infoCmd(a),
		watchCmd(a),
		configCmd(a),
	)
	return root
}

func (a *app) init() error {
	cfg, err := config.Load(a.flags)
	if err != nil {
		return err
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile, cfg.Output.Color); err != nil {
		return err
	}

	a.cfg = cfg
	a.log = logger.Log
	a.validator = validate.New(cfg.ValidateOptions(), a.log)
	a.log.Debug("config loaded",
		zap.String("config", a.flags.ConfigPath()),
		zap.Int("workers", cfg.Batch.Workers),
		zap.Duration("file_timeout", cfg.Batch.FileTimeout))
	return nil
}
