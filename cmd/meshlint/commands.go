package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/meshlint/internal/config"
	"github.com/Faultbox/meshlint/internal/report"
	"github.com/Faultbox/meshlint/internal/validate"
	"github.com/Faultbox/meshlint/internal/watch"
	"github.com/Faultbox/meshlint/pkg/bounds"
	"github.com/Faultbox/meshlint/pkg/formats"
)

func (a *app) reportOptions(verbose bool) report.Options {
	return report.Options{
		Format:  a.cfg.Output.Format,
		Color:   a.cfg.Output.Color,
		Verbose: verbose || a.cfg.Output.Verbose,
	}
}

// discover expands args into files, defaulting to the current directory.
func (a *app) discover(args []string) ([]string, error) {
	if len(args) == 0 {
		args = []string{"."}
	}
	files, err := validate.Discover(args, a.cfg.Extensions())
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no mesh files found in %s", strings.Join(args, ", "))
	}
	return files, nil
}

func validateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [path...]",
		Short: "Validate files and directories",
		Example: `  meshlint validate assets/
  meshlint validate -f json model.glb scene.gltf`,
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := a.discover(args)
			if err != nil {
				return err
			}

			reports := a.validator.ValidateFiles(cmd.Context(), files)
			if err := report.Write(cmd.OutOrStdout(), reports, a.reportOptions(false)); err != nil {
				return err
			}
			if !validate.Summarize(reports).AllPassed() {
				return errFilesFailed
			}
			return nil
		},
	}
}

func infoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "info <file>...",
		Short: "Validate files and show their stats",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := a.discover(args)
			if err != nil {
				return err
			}
			reports := a.validator.ValidateFiles(cmd.Context(), files)
			if err := report.Write(cmd.OutOrStdout(), reports, a.reportOptions(true)); err != nil {
				return err
			}
			if !validate.Summarize(reports).AllPassed() {
				return errFilesFailed
			}
			return nil
		},
	}
}

func normalizeCmd(a *app) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "normalize <file.obj>",
		Short: "Center a text mesh on the origin and scale it to a 2-unit extent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := args[0]
			if validate.FormatFromPath(in, a.cfg.Extensions()) != validate.FormatText {
				return fmt.Errorf("%s: normalize only supports text meshes", in)
			}
			if out == "" {
				out = normalizedPath(in)
			}

			r := a.validator.ValidateFile(cmd.Context(), in)
			if !r.Passed {
				if err := report.Write(cmd.OutOrStdout(), []validate.Report{r}, a.reportOptions(false)); err != nil {
					return err
				}
				return errFilesFailed
			}

			g, err := formats.ParseOBJFile(in)
			if err != nil {
				return err
			}
			before, err := bounds.Compute(g)
			if err != nil {
				return err
			}
			normalized := bounds.Normalize(g)
			after, _ := bounds.Compute(normalized)

			if err := formats.WriteOBJFile(out, normalized); err != nil {
				return err
			}
			a.log.Info("normalized mesh",
				zap.String("input", in),
				zap.String("output", out),
				zap.Float64("max_dimension", before.MaxDimension()),
				zap.Int("vertices", len(normalized.Vertices)))

			c := before.Center()
			fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", in, out)
			fmt.Fprintf(cmd.OutOrStdout(), "  center (%.4f, %.4f, %.4f) -> origin\n", c.X, c.Y, c.Z)
			fmt.Fprintf(cmd.OutOrStdout(), "  max dimension %.4f -> %.4f\n", before.MaxDimension(), after.MaxDimension())
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output path (default <name>_normalized<ext>)")
	return cmd
}

// normalizedPath inserts a _normalized suffix before the extension.
func normalizedPath(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "_normalized" + ext
}

func watchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "watch [path...]",
		Short: "Validate files, then re-validate them whenever they change",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				args = []string{"."}
			}
			files, err := validate.Discover(args, a.cfg.Extensions())
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			opts := a.reportOptions(false)
			w := cmd.OutOrStdout()
			if len(files) > 0 {
				if err := report.Write(w, a.validator.ValidateFiles(ctx, files), opts); err != nil {
					return err
				}
			}

			watcher := watch.New(a.validator, a.log)
			return watcher.Run(ctx, args, func(r validate.Report) {
				if err := report.Write(w, []validate.Report{r}, opts); err != nil {
					a.log.Error("writing report", zap.Error(err))
				}
			})
		},
	}
}

func configCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or write configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(a.cfg); err != nil {
				return err
			}
			return enc.Close()
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "init [path]",
		Short: "Write the effective configuration to a file (default: user config dir)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				if err := a.cfg.Save(); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", filepath.Join(config.ConfigDir(), "config.yaml"))
				return nil
			}
			if err := a.cfg.SaveTo(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", args[0])
			return nil
		},
	})
	return cmd
}
