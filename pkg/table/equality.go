package table

import (
	"encoding/binary"
	"fmt"
	"math"
	"reflect"
	"slices"
	"time"

	"github.com/cespare/xxhash/v2"
)

// nullMarker is folded into the hash for nil values.
const nullMarker = "\x00<nil>\x00"

// valuesEqual compares two stored values. Nil equals only nil, times compare
// by instant and values of different dynamic types are never equal.
func valuesEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if ta, ok := a.(time.Time); ok {
		tb, ok := b.(time.Time)
		return ok && ta.Equal(tb)
	}
	if reflect.TypeOf(a) != reflect.TypeOf(b) {
		return false
	}
	if reflect.TypeOf(a).Comparable() {
		return a == b
	}
	return reflect.DeepEqual(a, b)
}

// tuplesEqual is the single equality rule shared by tuples, nodes and edges:
// same column count and equal values column by column, matched by name.
func tuplesEqual(a, b *Tuple) bool {
	if !a.IsValid() || !b.IsValid() {
		return false
	}
	if a.schema.ColumnCount() != b.schema.ColumnCount() {
		return false
	}
	for c, col := range a.schema.columns {
		oc := b.schema.ColumnIndex(col.Name)
		if oc < 0 {
			return false
		}
		av, _ := a.Get(c)
		bv, _ := b.Get(oc)
		if !valuesEqual(av, bv) {
			return false
		}
	}
	return true
}

// tupleHash hashes column names and values in name order so that it agrees
// with tuplesEqual regardless of column positions.
func tupleHash(tp *Tuple) uint64 {
	if !tp.IsValid() {
		return 0
	}
	names := make([]string, 0, tp.schema.ColumnCount())
	for _, c := range tp.schema.columns {
		names = append(names, c.Name)
	}
	slices.Sort(names)

	d := xxhash.New()
	var buf [8]byte
	for _, name := range names {
		_, _ = d.WriteString(name)
		_, _ = d.Write([]byte{0})
		v, _ := tp.GetField(name)
		switch x := v.(type) {
		case nil:
			_, _ = d.WriteString(nullMarker)
		case time.Time:
			binary.LittleEndian.PutUint64(buf[:], uint64(x.UnixNano()))
			_, _ = d.Write(buf[:])
		case float32:
			if x == 0 {
				x = 0
			}
			binary.LittleEndian.PutUint32(buf[:4], math.Float32bits(x))
			_, _ = d.Write(buf[:4])
		case float64:
			if x == 0 {
				x = 0 // fold -0 into +0
			}
			binary.LittleEndian.PutUint64(buf[:], math.Float64bits(x))
			_, _ = d.Write(buf[:])
		default:
			_, _ = fmt.Fprintf(d, "%T:%v", v, v)
		}
		_, _ = d.Write([]byte{0})
	}
	return d.Sum64()
}
