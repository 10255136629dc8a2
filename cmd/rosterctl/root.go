package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/roster/internal/core"
	"github.com/JonMunkholm/roster/internal/logging"
	"github.com/JonMunkholm/roster/internal/service"
	"github.com/JonMunkholm/roster/internal/storage"
)

// options are the persistent flags shared by every command.
type options struct {
	file      string
	create    bool
	threshold float64
	verbose   bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "rosterctl",
		Short:         "Inspect and edit a student roster workbook",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := "warn"
			if opts.verbose {
				level = "debug"
			}
			slog.SetDefault(logging.New(cmd.ErrOrStderr(), level, "text"))
		},
	}

	// .env is optional; flags still win over it
	_ = godotenv.Load()

	root.PersistentFlags().StringVarP(&opts.file, "file", "f", envOr("ROSTER_FILE", "alunos.xlsx"), "roster workbook")
	root.PersistentFlags().BoolVar(&opts.create, "create", false, "start an empty roster when the workbook does not exist")
	root.PersistentFlags().Float64Var(&opts.threshold, "threshold", core.DefaultThreshold, "name similarity threshold, exclusive (0-1)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log debug output to stderr")

	root.AddCommand(
		newListCmd(opts),
		newSearchCmd(opts),
		newSimilarCmd(opts),
		newValidateCmd(opts),
		newAddCmd(opts),
		newRemoveCmd(opts),
		newSortCmd(opts),
		newFormatCmd(),
	)
	return root
}

// open loads the workbook into a service. Mutating commands save through
// autosave.
func (o *options) open(ctx context.Context) (*service.Service, error) {
	svc := service.New(storage.NewExcelSource(o.file), service.Options{
		Threshold:       o.threshold,
		Autosave:        true,
		CreateIfMissing: o.create,
	})
	if _, err := svc.Open(ctx); err != nil {
		return nil, userError(err)
	}
	return svc, nil
}

// userError puts the support message in front of the technical one.
func userError(err error) error {
	if !core.IsUserFacing(err) {
		return err
	}
	return fmt.Errorf("%s\n  detail: %w", core.FormatUserError(err), err)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
