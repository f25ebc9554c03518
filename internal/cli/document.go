package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/obvious/pkg/factory"
	dataio "github.com/matzehuels/obvious/pkg/io"
	"github.com/matzehuels/obvious/pkg/network"
	"github.com/matzehuels/obvious/pkg/store"
	"github.com/matzehuels/obvious/pkg/table"
)

// document is a JSON file read from disk together with its detected kind.
type document struct {
	path string
	kind string
	data []byte
}

// readDocument reads path and classifies it. Files with "nodes" and "edges"
// are networks, or trees when asTree is set; everything else is a table.
func readDocument(path string, asTree bool) (*document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("%s: not a JSON object: %w", path, err)
	}

	kind := store.KindTable
	if _, ok := fields["nodes"]; ok {
		kind = store.KindNetwork
		if asTree {
			kind = store.KindTree
		}
	} else if asTree {
		return nil, fmt.Errorf("%s: a tree needs nodes and edges", path)
	}
	return &document{path: path, kind: kind, data: data}, nil
}

// loaded holds whichever structure a document decoded to.
type loaded struct {
	table   *table.Table
	network *network.Network
	tree    *network.Tree
}

// load decodes the document. Tables are rebuilt through the factory's
// backend so capability settings from the config apply; networks and trees
// keep the layout stored in the document.
func (d *document) load(f *factory.Factory, logger *log.Logger) (*loaded, error) {
	switch d.kind {
	case store.KindTable:
		t, err := dataio.ReadTable(bytes.NewReader(d.data))
		if err != nil {
			return nil, err
		}
		t, err = f.WrapTable(t)
		if err != nil {
			return nil, err
		}
		return &loaded{table: t}, nil
	case store.KindNetwork:
		nw, err := dataio.ReadNetwork(bytes.NewReader(d.data), network.WithLogger(logger))
		if err != nil {
			return nil, err
		}
		return &loaded{network: nw}, nil
	case store.KindTree:
		tr, err := dataio.ReadTree(bytes.NewReader(d.data), network.WithLogger(logger))
		if err != nil {
			return nil, err
		}
		return &loaded{tree: tr, network: tr.Network}, nil
	}
	return nil, fmt.Errorf("unknown document kind %q", d.kind)
}
