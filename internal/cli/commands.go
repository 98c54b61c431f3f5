package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/indicators/internal/admin"
	"github.com/JonMunkholm/indicators/internal/core"
)

func importCmd(open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Import an xlsx workbook into the stores",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open %s: %w", args[0], err)
			}
			defer f.Close()

			return withBackend(cmd, open, func(ctx context.Context, b Backend) error {
				res, err := b.Import(ctx, f, filepath.Base(args[0]))
				if err != nil {
					return err
				}
				printImport(cmd, res)
				return nil
			})
		},
	}
}

func printImport(cmd *cobra.Command, res *core.ImportResult) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "import %s: %d valid, %d with errors, %d skipped\n",
		res.ImportID, res.Valid, res.Quarantined, res.Skipped)
	if len(res.Rejected) == 0 {
		return
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ROW\tNUMBER\tREASONS")
	for _, r := range res.Rejected {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", r.Row, r.Number, strings.Join(r.Reasons, core.ReasonSeparator))
	}
	tw.Flush()
}

func exportCmd(open Opener) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:       "export main|errors",
		Short:     "Export a collection as an xlsx workbook",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(core.ExportMain), string(core.ExportErrors)},
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := core.ParseExportKind(args[0])
			if err != nil {
				return err
			}
			return withBackend(cmd, open, func(ctx context.Context, b Backend) error {
				data, err := b.Export(ctx, kind)
				if err != nil {
					return err
				}
				if err := os.WriteFile(output, data, 0o644); err != nil {
					return fmt.Errorf("write %s: %w", output, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", output, len(data))
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "indicators.xlsx", "Output file")
	return cmd
}

func promoteCmd(open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "promote ID...",
		Short: "Move quarantined records into the valid store",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := make([]int64, 0, len(args))
			for _, a := range args {
				id, err := strconv.ParseInt(a, 10, 64)
				if err != nil || id <= 0 {
					return fmt.Errorf("record id %q: %w", a, core.ErrInvalidArgument)
				}
				ids = append(ids, id)
			}
			return withBackend(cmd, open, func(ctx context.Context, b Backend) error {
				promoted, err := b.Promote(ctx, ids)
				if err != nil {
					return err
				}
				for _, ind := range promoted {
					fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\n", ind.ID, ind.Number, ind.Structure)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d records transferred\n", len(promoted))
				return nil
			})
		},
	}
}

func clearCmd(open Opener) *cobra.Command {
	return &cobra.Command{
		Use:       "clear valid|errors|all",
		Short:     "Delete every record of a collection",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(admin.TargetValid), string(admin.TargetErrors), string(admin.TargetAll)},
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := admin.ParseTarget(args[0])
			if err != nil {
				return err
			}
			return withBackend(cmd, open, func(ctx context.Context, b Backend) error {
				res, err := admin.Reset(ctx, b, target)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %d records\n", res.Total())
				return nil
			})
		},
	}
}

func divisionsCmd(open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "divisions",
		Short: "List the known divisions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withBackend(cmd, open, func(_ context.Context, b Backend) error {
				for _, d := range b.Divisions() {
					fmt.Fprintln(cmd.OutOrStdout(), d)
				}
				return nil
			})
		},
	}
}
