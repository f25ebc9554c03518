package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	dataio "github.com/matzehuels/obvious/pkg/io"
	"github.com/matzehuels/obvious/pkg/store"
)

// snapshotCommand creates the snapshot management command.
func (c *CLI) snapshotCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Save and restore documents in the snapshot store",
		Long: `Save and restore tables, networks and trees in the configured snapshot
store (a directory of files or a redis server, see "store" in the config).`,
	}

	cmd.AddCommand(c.snapshotSaveCommand())
	cmd.AddCommand(c.snapshotLoadCommand())
	cmd.AddCommand(c.snapshotInfoCommand())
	cmd.AddCommand(c.snapshotDeleteCommand())
	cmd.AddCommand(c.snapshotPathCommand())

	return cmd
}

// withSnapshots opens the store, runs fn and closes the store.
func (c *CLI) withSnapshots(ctx context.Context, fn func(*store.Snapshots) error) error {
	snaps, err := c.newSnapshots(ctx)
	if err != nil {
		return err
	}
	defer snaps.Cache().Close()
	return fn(snaps)
}

// snapshotSaveCommand creates the "snapshot save" subcommand.
func (c *CLI) snapshotSaveCommand() *cobra.Command {
	var asTree bool

	cmd := &cobra.Command{
		Use:     "save NAME FILE",
		Short:   "Store a JSON document under NAME",
		Example: `  obvious snapshot save people people.json`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, path := args[0], args[1]
			prog := newProgress(c.Logger)

			doc, err := readDocument(path, asTree)
			if err != nil {
				return err
			}
			f, err := c.newFactory()
			if err != nil {
				return err
			}
			data, err := doc.load(f, c.Logger)
			if err != nil {
				return err
			}

			return c.withSnapshots(cmd.Context(), func(snaps *store.Snapshots) error {
				var info store.Info
				sp := c.spin(cmd.Context(), "Saving snapshot...")
				switch {
				case data.tree != nil:
					info, err = snaps.SaveTree(cmd.Context(), name, data.tree)
				case data.network != nil:
					info, err = snaps.SaveNetwork(cmd.Context(), name, data.network)
				default:
					info, err = snaps.SaveTable(cmd.Context(), name, data.table)
				}
				sp.stop()
				if err != nil {
					return err
				}
				prog.done("snapshot saved", "kind", info.Kind, "name", name)
				c.printSuccess("Saved %s as %s", describeKind(data), StyleHighlight.Render(name))
				c.printInfoLines(info)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asTree, "tree", false, "store the document as a tree")
	return cmd
}

// snapshotLoadCommand creates the "snapshot load" subcommand.
func (c *CLI) snapshotLoadCommand() *cobra.Command {
	var (
		kind   string
		output string
	)

	cmd := &cobra.Command{
		Use:   "load NAME",
		Short: "Restore a snapshot as a JSON document",
		Example: `  obvious snapshot load people
  obvious snapshot load org --kind tree -o org.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			return c.withSnapshots(cmd.Context(), func(snaps *store.Snapshots) error {
				w, closeFn, err := c.openOutput(output)
				if err != nil {
					return err
				}
				sp := c.spin(cmd.Context(), "Loading snapshot...")
				err = c.writeSnapshot(cmd.Context(), snaps, kind, name, w)
				sp.stop()
				if err != nil {
					closeFn()
					return err
				}
				if err := closeFn(); err != nil {
					return err
				}
				if output != "" {
					c.printSuccess("Restored %s %s", kind, StyleHighlight.Render(name))
					c.printFile(output)
				}
				return nil
			})
		},
	}

	kindFlag(cmd, &kind)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}

func (c *CLI) writeSnapshot(ctx context.Context, snaps *store.Snapshots, kind, name string, w io.Writer) error {
	switch kind {
	case store.KindTable:
		t, err := snaps.LoadTable(ctx, name)
		if err != nil {
			return err
		}
		return dataio.WriteTable(t, w)
	case store.KindNetwork:
		nw, err := snaps.LoadNetwork(ctx, name)
		if err != nil {
			return err
		}
		defer nw.Close()
		return dataio.WriteNetwork(nw, w)
	case store.KindTree:
		tr, err := snaps.LoadTree(ctx, name)
		if err != nil {
			return err
		}
		defer tr.Close()
		return dataio.WriteNetwork(tr.Network, w)
	}
	return fmt.Errorf("unknown kind %q (want table, network or tree)", kind)
}

// openOutput returns the CLI output for an empty path and a new file
// otherwise.
func (c *CLI) openOutput(path string) (io.Writer, func() error, error) {
	if path == "" {
		return c.out, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("create %s: %w", path, err)
	}
	return f, f.Close, nil
}

// snapshotInfoCommand creates the "snapshot info" subcommand.
func (c *CLI) snapshotInfoCommand() *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "info NAME",
		Short: "Show metadata of a stored snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withSnapshots(cmd.Context(), func(snaps *store.Snapshots) error {
				info, err := snaps.Stat(cmd.Context(), kind, args[0])
				if err != nil {
					return err
				}
				c.printTitle(info.Name)
				c.printInfoLines(info)
				return nil
			})
		},
	}

	kindFlag(cmd, &kind)
	return cmd
}

// snapshotDeleteCommand creates the "snapshot delete" subcommand.
func (c *CLI) snapshotDeleteCommand() *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "delete NAME",
		Short: "Remove a stored snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withSnapshots(cmd.Context(), func(snaps *store.Snapshots) error {
				if err := snaps.Delete(cmd.Context(), kind, args[0]); err != nil {
					return err
				}
				c.printSuccess("Deleted %s %s", kind, StyleHighlight.Render(args[0]))
				return nil
			})
		},
	}

	kindFlag(cmd, &kind)
	return cmd
}

// snapshotPathCommand creates the "snapshot path" subcommand. File stores
// print the file holding the snapshot; other stores print its key.
func (c *CLI) snapshotPathCommand() *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "path NAME",
		Short: "Print where a snapshot is stored",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withSnapshots(cmd.Context(), func(snaps *store.Snapshots) error {
				key := snaps.Key(kind, args[0])
				if fc, ok := snaps.Cache().(*store.FileCache); ok {
					fmt.Fprintln(c.out, fc.Path(key))
					return nil
				}
				fmt.Fprintln(c.out, key)
				return nil
			})
		},
	}

	kindFlag(cmd, &kind)
	return cmd
}

// kindFlag registers --kind on cmd with completion of the snapshot kinds.
func kindFlag(cmd *cobra.Command, kind *string) {
	cmd.Flags().StringVarP(kind, "kind", "k", store.KindTable, "snapshot kind: table, network or tree")
	_ = cmd.RegisterFlagCompletionFunc("kind", cobra.FixedCompletions(
		[]string{store.KindTable, store.KindNetwork, store.KindTree}, cobra.ShellCompDirectiveNoFileComp))
}

func (c *CLI) printInfoLines(info store.Info) {
	c.printKeyValue("kind", info.Kind)
	c.printKeyValue("hash", info.Hash)
	c.printKeyValue("size", fmt.Sprintf("%d bytes", info.Size))
	c.printKeyValue("saved", info.SavedAt.Format(time.RFC3339))
}
