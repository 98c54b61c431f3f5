// Package cli implements the indicatorctl command tree.
package cli

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/indicators/internal/admin"
	"github.com/JonMunkholm/indicators/internal/core"
)

// Backend is the service surface the commands use. *core.Service implements it.
type Backend interface {
	admin.Clearer
	Import(ctx context.Context, r io.Reader, fileName string) (*core.ImportResult, error)
	Export(ctx context.Context, kind core.ExportKind) ([]byte, error)
	Promote(ctx context.Context, ids []int64) ([]core.Indicator, error)
	Divisions() []string
}

// Opener builds the backend for one command run. The returned func releases it.
type Opener func(ctx context.Context) (Backend, func(), error)

// RootCmd returns the indicatorctl root command.
func RootCmd(open Opener) *cobra.Command {
	root := &cobra.Command{
		Use:           "indicatorctl",
		Short:         "Administer the indicator stores",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		importCmd(open),
		exportCmd(open),
		promoteCmd(open),
		clearCmd(open),
		divisionsCmd(open),
	)
	return root
}

// withBackend opens the backend, runs fn and releases it.
func withBackend(cmd *cobra.Command, open Opener, fn func(ctx context.Context, b Backend) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	b, release, err := open(ctx)
	if err != nil {
		return err
	}
	defer release()
	return fn(ctx, b)
}
