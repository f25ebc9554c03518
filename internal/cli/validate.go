package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	oerrors "github.com/matzehuels/obvious/pkg/errors"
)

// validateCommand creates the validate command. It loads a document through
// the configured backend and checks the structural rules of its kind.
func (c *CLI) validateCommand() *cobra.Command {
	var asTree bool

	cmd := &cobra.Command{
		Use:   "validate FILE",
		Short: "Check that a JSON document forms a valid table, network or tree",
		Long: `Check that a JSON document forms a valid table, network or tree.

Tables must match their declared schema. Networks must have every edge
reference existing nodes and unique node keys. With --tree, edges must also
be directed, every node must have at most one parent and there must be no
cycles.`,
		Example: `  obvious validate people.json
  obvious validate org.json --tree`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runValidate(args[0], asTree)
		},
	}

	cmd.Flags().BoolVar(&asTree, "tree", false, "validate the document as a tree")
	return cmd
}

func (c *CLI) runValidate(path string, asTree bool) error {
	prog := newProgress(c.Logger)
	err := c.validateFile(path, asTree)
	prog.done("validation finished", "path", path, "ok", err == nil)
	if err != nil {
		c.printError("%s is not valid", path)
		if codes := oerrors.Codes(err); len(codes) > 0 {
			c.printDetail("code: %s", joinCodes(codes))
		}
		c.printDetail("%s", oerrors.UserMessage(err))
		return err
	}
	c.printSuccess("%s is valid", path)
	return nil
}

func (c *CLI) validateFile(path string, asTree bool) error {
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

	switch {
	case data.tree != nil:
		defer data.tree.Close()
		if err := data.tree.Validate(); err != nil {
			return err
		}
		c.printDetail("tree %s: %d nodes, %d roots", data.tree.Name(), data.tree.NodeCount(), len(data.tree.Roots()))
	case data.network != nil:
		defer data.network.Close()
		if err := data.network.Validate(); err != nil {
			return err
		}
		c.printDetail("network %s: %d nodes, %d edges", data.network.Name(), data.network.NodeCount(), data.network.EdgeCount())
	default:
		t := data.table
		c.printDetail("table %s: %d rows, %d columns", t.Name(), t.RowCount(), t.Schema().ColumnCount())
	}
	return nil
}

func joinCodes(codes []oerrors.Code) string {
	parts := make([]string, len(codes))
	for i, code := range codes {
		parts[i] = string(code)
	}
	return strings.Join(parts, ", ")
}

// describeKind returns a short label for a loaded document.
func describeKind(data *loaded) string {
	switch {
	case data.tree != nil:
		return fmt.Sprintf("tree %s", data.tree.Name())
	case data.network != nil:
		return fmt.Sprintf("network %s", data.network.Name())
	}
	return fmt.Sprintf("table %s", data.table.Name())
}
