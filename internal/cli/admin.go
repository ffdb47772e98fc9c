package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/filecabinet/filecabinet/internal/engine"
	"github.com/filecabinet/filecabinet/internal/record"
	"github.com/filecabinet/filecabinet/internal/version"
)

// NewStatCommand creates the stat command.
func NewStatCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stat",
		Short: "Show record counts",
		Args:  cobra.NoArgs,
		RunE: rootOpts.withEngine(func(cmd *cobra.Command, args []string, e *engine.Engine) error {
			st, err := e.Stat()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d record(s), %d deleted.\n", st.Active, st.Deleted)
			return nil
		}),
	}
}

// NewPurgeCommand creates the purge command.
func NewPurgeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "purge",
		Short: "Remove deleted records from storage",
		Args:  cobra.NoArgs,
		RunE: rootOpts.withEngine(func(cmd *cobra.Command, args []string, e *engine.Engine) error {
			st, err := e.Stat()
			if err != nil {
				return err
			}
			n, err := e.Purge()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Data storage processing is completed: %d of %d records were purged.\n",
				n, st.Active+st.Deleted)
			return nil
		}),
	}
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Save a snapshot of all records",
		Args:  cobra.NoArgs,
		RunE: rootOpts.withEngine(func(cmd *cobra.Command, args []string, e *engine.Engine) error {
			meta, err := e.Export()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Snapshot %s is saved to %s.\n", meta.ID, meta.FilePath)
			return nil
		}),
	}
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <snapshot-id>",
		Short: "Restore records from a saved snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: rootOpts.withEngine(func(cmd *cobra.Command, args []string, e *engine.Engine) error {
			res, err := e.Import(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, id := range res.FailedIDs() {
				fmt.Fprintf(out, "Record #%d is not imported: %s.\n", id, res.Failures[id])
			}
			fmt.Fprintf(out, "%d record(s) were imported.\n", res.Applied)
			return res.Err()
		}),
	}
}

// NewSnapshotsCommand creates the snapshots command.
func NewSnapshotsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshots",
		Short: "List saved snapshots",
		Args:  cobra.NoArgs,
		RunE: rootOpts.withEngine(func(cmd *cobra.Command, args []string, e *engine.Engine) error {
			metas, err := e.Snapshots()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, m := range metas {
				fmt.Fprintf(out, "%s  %s  %d bytes\n", m.ID, m.CreatedAt.Format(record.DateLayout+" 15:04:05"), m.SizeBytes)
			}
			return nil
		}),
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <snapshot-id>",
		Short: "Delete a saved snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: rootOpts.withEngine(func(cmd *cobra.Command, args []string, e *engine.Engine) error {
			if err := e.DeleteSnapshot(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Snapshot %s is deleted.\n", args[0])
			return nil
		}),
	})

	return cmd
}

// NewVersionCommand creates the version command.
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "filecabinet %s (built %s)\n", version.Version, version.BuildTime)
			return nil
		},
	}
}
