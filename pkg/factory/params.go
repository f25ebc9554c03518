package factory

import (
	"maps"
	"strconv"

	oerrors "github.com/matzehuels/obvious/pkg/errors"
)

// Parameter keys understood by the built-in backends.
const (
	ParamName         = "name"
	ParamCanAddRow    = "can_add_row"
	ParamCanRemoveRow = "can_remove_row"
	ParamNodeKey      = "node_key"
	ParamSourceColumn = "source_column"
	ParamTargetColumn = "target_column"
	ParamDirected     = "directed"
)

// Params carries backend-specific creation parameters as strings, the way
// they arrive from config files and command lines.
type Params map[string]string

// Merge returns a new map holding p overlaid with each of others in order.
func (p Params) Merge(others ...Params) Params {
	out := maps.Clone(p)
	if out == nil {
		out = Params{}
	}
	for _, o := range others {
		maps.Copy(out, o)
	}
	return out
}

// String returns the value for key, or def when unset or empty.
func (p Params) String(key, def string) string {
	if v, ok := p[key]; ok && v != "" {
		return v
	}
	return def
}

// Bool parses the value for key, returning def when unset.
func (p Params) Bool(key string, def bool) (bool, error) {
	v, ok := p[key]
	if !ok || v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def, oerrors.Wrap(oerrors.ErrCodeConfiguration, err, "parameter %s", key)
	}
	return b, nil
}
