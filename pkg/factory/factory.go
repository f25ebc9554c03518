// Package factory selects the storage backend behind tables and networks.
//
// A [Factory] is an explicit object handed to the code that needs to build
// data structures. It wraps one [Backend] chosen by name from a [Registry]
// of compile-time constructors, so configuration errors surface when the
// factory is built rather than on first use, and several backends can
// coexist in one process.
//
//	f, err := factory.New(factory.DefaultRegistry(), "append-only")
//	if err != nil {
//	    return err // CONFIGURATION: unknown backend
//	}
//	events, _ := f.CreateTable(schema)
package factory

import (
	"strconv"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/obvious/pkg/config"
	oerrors "github.com/matzehuels/obvious/pkg/errors"
	"github.com/matzehuels/obvious/pkg/network"
	"github.com/matzehuels/obvious/pkg/table"
)

// Factory creates tables, networks and trees through one backend.
type Factory struct {
	backend  Backend
	defaults Params
	logger   *log.Logger
}

// Option configures a [Factory].
type Option func(*Factory)

// WithDefaults sets parameters applied to every creation call. Per-call
// parameters override them.
func WithDefaults(p Params) Option {
	return func(f *Factory) { f.defaults = f.defaults.Merge(p) }
}

// WithLogger sets the logger handed to the backend.
func WithLogger(l *log.Logger) Option {
	return func(f *Factory) {
		if l != nil {
			f.logger = l
		}
	}
}

// New builds a factory for the backend registered under name. An unknown
// name is a CONFIGURATION error listing the available backends.
func New(reg *Registry, name string, opts ...Option) (*Factory, error) {
	if reg == nil {
		return nil, oerrors.New(oerrors.ErrCodeConfiguration, "no backend registry")
	}
	ctor, ok := reg.Lookup(name)
	if !ok {
		return nil, oerrors.New(oerrors.ErrCodeConfiguration, "unknown backend %q (available: %v)", name, reg.Names())
	}
	f := &Factory{defaults: Params{}, logger: log.Default()}
	for _, opt := range opts {
		opt(f)
	}
	f.backend = ctor(f.logger)
	f.logger.Debug("factory ready", "backend", name)
	return f, nil
}

// FromConfig builds a factory from the backend key and the [table] and
// [network] sections of cfg.
func FromConfig(reg *Registry, cfg *config.Config, opts ...Option) (*Factory, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return New(reg, cfg.Backend, append([]Option{WithDefaults(ParamsFromConfig(cfg))}, opts...)...)
}

// ParamsFromConfig turns configuration sections into creation parameters.
func ParamsFromConfig(cfg *config.Config) Params {
	p := Params{
		ParamSourceColumn: cfg.Network.SourceColumn,
		ParamTargetColumn: cfg.Network.TargetColumn,
		ParamNodeKey:      cfg.Network.NodeKey,
		ParamDirected:     strconv.FormatBool(cfg.Network.Directed),
	}
	if cfg.Table.CanAddRow != nil {
		p[ParamCanAddRow] = strconv.FormatBool(*cfg.Table.CanAddRow)
	}
	if cfg.Table.CanRemoveRow != nil {
		p[ParamCanRemoveRow] = strconv.FormatBool(*cfg.Table.CanRemoveRow)
	}
	return p
}

// Backend returns the backend behind the factory.
func (f *Factory) Backend() Backend { return f.backend }

// CreateTable returns an empty table over schema.
func (f *Factory) CreateTable(schema *table.Schema, params ...Params) (*table.Table, error) {
	return f.backend.CreateTable(schema, f.defaults.Merge(params...))
}

// WrapTable returns a table of the factory's backend holding src's rows.
func (f *Factory) WrapTable(src *table.Table, params ...Params) (*table.Table, error) {
	return f.backend.WrapTable(src, f.defaults.Merge(params...))
}

// CreateNetwork returns an empty network.
func (f *Factory) CreateNetwork(nodeSchema, edgeSchema *table.Schema, params ...Params) (*network.Network, error) {
	return f.backend.CreateNetwork(nodeSchema, edgeSchema, f.defaults.Merge(params...))
}

// WrapNetwork returns a network over existing tables.
func (f *Factory) WrapNetwork(nodes, edges *table.Table, params ...Params) (*network.Network, error) {
	return f.backend.WrapNetwork(nodes, edges, f.defaults.Merge(params...))
}

// CreateTree returns an empty tree.
func (f *Factory) CreateTree(nodeSchema, edgeSchema *table.Schema, params ...Params) (*network.Tree, error) {
	return f.backend.CreateTree(nodeSchema, edgeSchema, f.defaults.Merge(params...))
}
