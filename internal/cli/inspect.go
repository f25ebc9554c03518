package cli

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/obvious/pkg/network"
	"github.com/matzehuels/obvious/pkg/table"
)

// inspectOptions holds flags for the inspect command.
type inspectOptions struct {
	tree    bool
	limit   int
	where   []string
	match   []string
	noEdges bool
}

// inspectCommand creates the inspect command, which prints the schema and
// rows of a table, network or tree document.
func (c *CLI) inspectCommand() *cobra.Command {
	var opts inspectOptions

	cmd := &cobra.Command{
		Use:   "inspect FILE",
		Short: "Show the schema and rows of a JSON document",
		Long: `Show the schema and rows of a table, network or tree document.

Rows can be filtered with --where (exact match, value parsed by column type)
and --match (regular expression on string columns). For networks, filters
apply to the node table.`,
		Example: `  obvious inspect people.json --where age=36
  obvious inspect deps.json --match 'name=^lib' --limit 5
  obvious inspect org.json --tree`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runInspect(args[0], opts)
		},
	}

	cmd.Flags().BoolVar(&opts.tree, "tree", false, "read the document as a tree")
	cmd.Flags().IntVarP(&opts.limit, "limit", "n", 20, "maximum rows to show per table (0 for all)")
	cmd.Flags().StringArrayVar(&opts.where, "where", nil, "filter rows by field=value (repeatable)")
	cmd.Flags().StringArrayVar(&opts.match, "match", nil, "filter rows by field=regexp (repeatable)")
	cmd.Flags().BoolVar(&opts.noEdges, "no-edges", false, "do not print the edge table of a network")

	return cmd
}

func (c *CLI) runInspect(path string, opts inspectOptions) error {
	prog := newProgress(c.Logger)
	doc, err := readDocument(path, opts.tree)
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
	prog.done("document loaded", "path", path, "kind", doc.kind)

	if data.table != nil {
		return c.inspectTable(data.table, opts)
	}
	return c.inspectNetwork(data.network, data.tree, opts)
}

func (c *CLI) inspectTable(t *table.Table, opts inspectOptions) error {
	pred, err := buildPredicate(t.Schema(), opts.where, opts.match)
	if err != nil {
		return err
	}
	rows := t.Filter(pred).Collect()

	c.printTitle("Table " + t.Name())
	c.printKeyValue("rows", fmt.Sprintf("%d of %d", len(rows), t.RowCount()))
	c.printKeyValue("row ids", fmt.Sprintf("0..%d", max(t.RowCapacity()-1, 0)))
	c.printKeyValue("can add", fmt.Sprint(t.CanAddRow()))
	c.printKeyValue("can remove", fmt.Sprint(t.CanRemoveRow()))
	c.printSchema(t.Schema())
	c.printRows(t, rows, opts.limit)
	return nil
}

func (c *CLI) inspectNetwork(nw *network.Network, tr *network.Tree, opts inspectOptions) error {
	nodes := nw.NodeTable()
	pred, err := buildPredicate(nodes.Schema(), opts.where, opts.match)
	if err != nil {
		return err
	}
	rows := nodes.Filter(pred).Collect()

	title := "Network "
	if tr != nil {
		title = "Tree "
	}
	c.printTitle(title + nw.Name())
	c.printKeyValue("nodes", fmt.Sprint(nw.NodeCount()))
	c.printKeyValue("edges", fmt.Sprint(nw.EdgeCount()))
	c.printKeyValue("edge type", nw.DefaultEdgeType().String())
	if key := nw.NodeKey(); key != "" {
		c.printKeyValue("node key", key)
	}
	c.printKeyValue("endpoints", nw.SourceColumn()+" "+iconArrow+" "+nw.TargetColumn())
	if tr != nil {
		c.printTreeSummary(tr)
	} else {
		c.printDegreeSummary(nw)
	}

	c.printTitle("Nodes")
	c.printRows(nodes, rows, opts.limit)
	if !opts.noEdges {
		c.printTitle("Edges")
		c.printRows(nw.EdgeTable(), nw.EdgeTable().RowIDs(), opts.limit)
	}
	return nil
}

func (c *CLI) printTreeSummary(tr *network.Tree) {
	roots := tr.Roots()
	c.printKeyValue("roots", fmt.Sprint(len(roots)))
	if h, err := tr.Height(); err == nil {
		c.printKeyValue("height", fmt.Sprint(h))
	}
}

func (c *CLI) printDegreeSummary(nw *network.Network) {
	maxDeg, isolated := 0, 0
	for _, n := range nw.Nodes() {
		d := nw.Degree(n)
		maxDeg = max(maxDeg, d)
		if d == 0 {
			isolated++
		}
	}
	c.printKeyValue("max degree", fmt.Sprint(maxDeg))
	c.printKeyValue("isolated", fmt.Sprint(isolated))
}

// printSchema renders the schema through its tabular description.
func (c *CLI) printSchema(s *table.Schema) {
	desc := s.Describe()
	c.printRows(desc, desc.RowIDs(), 0)
}

// buildPredicate combines --where and --match filters. Values given to
// --where are parsed with the type of their column.
func buildPredicate(s *table.Schema, where, match []string) (table.Predicate, error) {
	var preds []table.Predicate
	for _, w := range where {
		field, raw, err := splitFilter(s, w)
		if err != nil {
			return nil, err
		}
		v, err := table.ParseValue(s.FieldType(field), raw)
		if err != nil {
			return nil, fmt.Errorf("--where %s: %w", w, err)
		}
		preds = append(preds, table.FieldEquals(field, v))
	}
	for _, m := range match {
		field, raw, err := splitFilter(s, m)
		if err != nil {
			return nil, err
		}
		re, err := regexp.Compile(raw)
		if err != nil {
			return nil, fmt.Errorf("--match %s: %w", m, err)
		}
		preds = append(preds, table.FieldMatches(field, re))
	}
	return table.And(preds...), nil
}

func splitFilter(s *table.Schema, expr string) (string, string, error) {
	field, value, ok := strings.Cut(expr, "=")
	if !ok || field == "" {
		return "", "", fmt.Errorf("filter %q: want field=value", expr)
	}
	if !s.HasColumn(field) {
		return "", "", fmt.Errorf("filter %q: no column %q", expr, field)
	}
	return field, value, nil
}
