package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/roster/internal/core"
	"github.com/JonMunkholm/roster/internal/normalize"
	"github.com/JonMunkholm/roster/internal/storage"
)

func newListCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every student",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			students, err := svc.List(cmd.Context())
			if err != nil {
				return userError(err)
			}
			printStudents(cmd.OutOrStdout(), students)
			return nil
		},
	}
}

func newSearchCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "search TERM",
		Short: "Find students by RM or by part of the name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			students, err := svc.Search(cmd.Context(), args[0])
			if err != nil {
				return userError(err)
			}
			printStudents(cmd.OutOrStdout(), students)
			return nil
		},
	}
}

func newSimilarCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "similar NAME",
		Short: "Show the registered name closest to NAME",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			res, err := svc.FindSimilar(cmd.Context(), args[0], opts.threshold)
			if err != nil {
				return userError(err)
			}

			out := cmd.OutOrStdout()
			if !res.Similar {
				fmt.Fprintf(out, "no similar name (best %.2f)\n", res.Similarity)
				return nil
			}
			fmt.Fprintf(out, "%s (RM %d) similarity %.2f\n", res.ExistingName, res.ExistingID, res.Similarity)
			return nil
		},
	}
}

func newValidateCmd(opts *options) *cobra.Command {
	var (
		asJSON bool
		commit bool
	)
	cmd := &cobra.Command{
		Use:   "validate BATCHFILE",
		Short: "Check a .csv or .xlsx batch of new students against the roster",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, err := opts.open(ctx)
			if err != nil {
				return err
			}

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			rows, err := storage.ReadCandidates(args[0], f, 0)
			if err != nil {
				return userError(err)
			}
			batch, err := svc.Validate(ctx, rows)
			if err != nil {
				return userError(err)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(batch.Report); err != nil {
					return err
				}
			} else {
				printReport(out, batch.Report)
			}

			if !commit || batch.ID == "" {
				return nil
			}
			res, err := svc.Commit(ctx, batch.ID)
			if err != nil {
				return userError(err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "added %d, skipped %d\n", len(res.Added), len(res.Skipped))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	cmd.Flags().BoolVar(&commit, "commit", false, "add the accepted rows to the roster")
	return cmd
}

func newAddCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "add NAME RM",
		Short: "Register one student",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, err := opts.open(ctx)
			if err != nil {
				return err
			}

			// warn, but do not block, like batch validation
			if res, err := svc.FindSimilar(ctx, args[0], opts.threshold); err == nil && res.Similar {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: similar to %s (RM %d), similarity %.2f\n",
					res.ExistingName, res.ExistingID, res.Similarity)
			}

			st, err := svc.Add(ctx, args[0], args[1])
			if err != nil {
				return userError(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added %s (RM %d)\n", st.FullName, st.ID)
			return nil
		},
	}
}

func newRemoveCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "remove RM...",
		Short: "Remove students by RM",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := make([]int64, 0, len(args))
			for _, a := range args {
				id, err := core.ParseID(a)
				if err != nil {
					return userError(err)
				}
				ids = append(ids, id)
			}

			svc, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			n, err := svc.Remove(cmd.Context(), ids)
			if err != nil {
				return userError(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d\n", n)
			return nil
		},
	}
}

func newSortCmd(opts *options) *cobra.Command {
	var desc bool
	cmd := &cobra.Command{
		Use:   "sort COLUMN",
		Short: "Reorder the workbook by surname, name or RM",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			col, err := core.ParseColumn(args[0])
			if err != nil {
				return userError(err)
			}
			svc, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			if err := svc.Sort(cmd.Context(), col, desc); err != nil {
				return userError(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "sorted by %s\n", col)
			return nil
		},
	}
	cmd.Flags().BoolVar(&desc, "desc", false, "descending order")
	return cmd
}

func newFormatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "format NAME",
		Short: "Print NAME the way the roster stores it, with its surname",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := normalize.FormatName(args[0])
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", name, normalize.ExtractSurname(name))
			return nil
		},
	}
}

func printStudents(w io.Writer, students []core.Student) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RM\tSOBRENOME\tNOME")
	for _, s := range students {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", s.ID, s.Surname, s.FullName)
	}
	tw.Flush()
	fmt.Fprintf(w, "%d student(s)\n", len(students))
}

func printReport(w io.Writer, r *core.ValidationReport) {
	for _, e := range r.NumericErrors {
		fmt.Fprintf(w, "row %d: RM %q %s\n", e.Row, e.RawID, e.Reason)
	}
	for _, e := range r.InvalidRows {
		fmt.Fprintf(w, "row %d: %s\n", e.Row, e.Reason)
	}
	for _, d := range r.DuplicateIDs {
		fmt.Fprintf(w, "row %d: RM %d %s (%s)\n", d.Row, d.ID, d.Reason, d.ConflictingName)
	}
	for _, s := range r.NameSimilarityWarnings {
		fmt.Fprintf(w, "row %d: %s looks like %s (RM %d), similarity %.2f\n",
			s.Row, s.NewName, s.ExistingName, s.ExistingID, s.Similarity)
	}
	fmt.Fprintf(w, "accepted %d, rejected %d, warnings %d\n",
		len(r.AcceptedRows), r.Rejected(), len(r.NameSimilarityWarnings))
}
