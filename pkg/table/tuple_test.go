package table

import (
	"math"
	"testing"
	"time"

	oerrors "github.com/matzehuels/obvious/pkg/errors"
)

func personSchema() *Schema {
	return MustSchema(
		Column{Name: "name", Type: TypeString},
		Column{Name: "age", Type: TypeInt, Default: 0},
		Column{Name: "height", Type: TypeDouble},
		Column{Name: "born", Type: TypeTime},
	)
}

func TestTupleEquality(t *testing.T) {
	born := time.Date(1990, 5, 1, 0, 0, 0, 0, time.UTC)
	s := personSchema()

	a := MustTuple(s, "Ann", 34, 1.7, born)
	b := MustTuple(s, "Ann", 34, 1.7, born.In(time.FixedZone("X", 3600)))
	if !a.Equal(b) {
		t.Fatal("tuples with identical values should be equal")
	}
	if a.Hash() != b.Hash() {
		t.Error("equal tuples must hash equally")
	}

	if err := b.SetField("age", 35); err != nil {
		t.Fatal(err)
	}
	if a.Equal(b) {
		t.Error("changing one value must break equality")
	}
}

func TestTupleEqualityNulls(t *testing.T) {
	s := personSchema()
	a := MustTuple(s, nil)
	b := MustTuple(s, nil)
	c := MustTuple(s, "x")

	if !a.Equal(b) {
		t.Error("nil should equal nil")
	}
	if a.Equal(c) || c.Equal(a) {
		t.Error("nil should not equal a value")
	}
	if a.Hash() != b.Hash() {
		t.Error("hash must treat nil consistently")
	}
}

func TestTupleEqualityNegativeZero(t *testing.T) {
	negZero := math.Copysign(0, -1)
	tests := []struct {
		name     string
		typ      Type
		pos, neg any
	}{
		{"float", TypeFloat, float32(0), float32(negZero)},
		{"double", TypeDouble, 0.0, negZero},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := MustSchema(Column{Name: "v", Type: tt.typ})
			a := MustTuple(s, tt.pos)
			b := MustTuple(s, tt.neg)
			if !a.Equal(b) {
				t.Fatal("0 and -0 should be equal")
			}
			if a.Hash() != b.Hash() {
				t.Errorf("Hash() = %x and %x, want equal hashes for equal tuples", a.Hash(), b.Hash())
			}
		})
	}
}

func TestTupleEqualityByColumnName(t *testing.T) {
	ab := MustSchema(Column{Name: "a", Type: TypeInt}, Column{Name: "b", Type: TypeInt})
	ba := MustSchema(Column{Name: "b", Type: TypeInt}, Column{Name: "a", Type: TypeInt})
	x := MustTuple(ab, 1, 2)
	y := MustTuple(ba, 2, 1)
	if !x.Equal(y) || x.Hash() != y.Hash() {
		t.Error("tuples with the same fields in a different order should be equal")
	}

	abc := MustSchema(Column{Name: "a", Type: TypeInt}, Column{Name: "b", Type: TypeInt}, Column{Name: "c", Type: TypeInt})
	if x.Equal(MustTuple(abc, 1, 2)) {
		t.Error("different column counts are never equal")
	}

	ac := MustSchema(Column{Name: "a", Type: TypeInt}, Column{Name: "c", Type: TypeInt})
	if x.Equal(MustTuple(ac, 1, 2)) {
		t.Error("same values under different column names should not be equal")
	}
}

func TestBoundTupleEqualsDetached(t *testing.T) {
	s := personSchema()
	tbl := New(s)
	row, _ := tbl.AddValues(map[string]any{"name": "Ann", "age": 34})
	bound, ok := tbl.Tuple(row)
	if !ok {
		t.Fatal("Tuple(row) not found")
	}
	if !bound.Equal(MustTuple(s, "Ann", 34)) {
		t.Error("bound and detached tuples with equal values should be equal")
	}

	tbl.RemoveRow(row)
	if bound.IsValid() || bound.Values() != nil {
		t.Error("a tuple of a removed row is invalid")
	}
	if bound.Equal(MustTuple(s, "Ann", 34)) {
		t.Error("an invalid tuple equals nothing but itself")
	}
}

func TestNewTupleErrors(t *testing.T) {
	s := MustSchema(Column{Name: "n", Type: TypeInt})
	if _, err := NewTuple(s, 1, 2); !oerrors.Is(err, oerrors.ErrCodeSchemaMismatch) {
		t.Errorf("too many values: err = %v", err)
	}
	if _, err := NewTuple(s, "x"); !oerrors.Is(err, oerrors.ErrCodeSchemaMismatch) {
		t.Errorf("wrong type: err = %v", err)
	}
	if _, err := TupleFromMap(s, map[string]any{"zz": 1}); !oerrors.Is(err, oerrors.ErrCodeSchemaMismatch) {
		t.Errorf("unknown field: err = %v", err)
	}
}

func TestTupleDetachedSchemaIsPrivate(t *testing.T) {
	s := MustSchema(Column{Name: "n", Type: TypeInt})
	tp := MustTuple(s, 1)
	if _, err := s.AddColumn("m", TypeInt, 0); err != nil {
		t.Fatal(err)
	}
	if tp.ColumnCount() != 1 || tp.Row() != -1 || !tp.IsDetached() {
		t.Error("a detached tuple keeps its own schema copy")
	}
}

func TestTupleTypedAccessors(t *testing.T) {
	born := time.Date(2001, 2, 3, 4, 5, 6, 0, time.UTC)
	s := MustSchema(
		Column{Name: "i", Type: TypeInt},
		Column{Name: "l", Type: TypeLong},
		Column{Name: "f", Type: TypeFloat},
		Column{Name: "d", Type: TypeDouble},
		Column{Name: "b", Type: TypeBool},
		Column{Name: "s", Type: TypeString},
		Column{Name: "t", Type: TypeTime},
	)
	tbl := New(s)
	row, _ := tbl.AddRow()
	tp, _ := tbl.Tuple(row)

	if err := tp.SetInt("i", 7); err != nil {
		t.Fatal(err)
	}
	_ = tp.SetLong("l", 1<<40)
	_ = tp.SetFloat("f", 1.5)
	_ = tp.SetDouble("d", 2.25)
	_ = tp.SetBool("b", true)
	_ = tp.SetString("s", "hi")
	_ = tp.SetTime("t", born)

	if v, err := tp.GetInt("i"); err != nil || v != 7 {
		t.Errorf("GetInt = %v, %v", v, err)
	}
	if v, err := tp.GetLong("l"); err != nil || v != 1<<40 {
		t.Errorf("GetLong = %v, %v", v, err)
	}
	if v, err := tp.GetFloat("f"); err != nil || v != 1.5 {
		t.Errorf("GetFloat = %v, %v", v, err)
	}
	if v, err := tp.GetDouble("d"); err != nil || v != 2.25 {
		t.Errorf("GetDouble = %v, %v", v, err)
	}
	if v, err := tp.GetBool("b"); err != nil || !v {
		t.Errorf("GetBool = %v, %v", v, err)
	}
	if v, err := tp.GetString("s"); err != nil || v != "hi" {
		t.Errorf("GetString = %v, %v", v, err)
	}
	if v, err := tp.GetTime("t"); err != nil || !v.Equal(born) {
		t.Errorf("GetTime = %v, %v", v, err)
	}

	// Widening reads.
	if v, err := tp.GetLong("i"); err != nil || v != 7 {
		t.Errorf("GetLong on int column = %v, %v", v, err)
	}
	if v, err := tp.GetDouble("f"); err != nil || v != 1.5 {
		t.Errorf("GetDouble on float column = %v, %v", v, err)
	}

	// Checked casts.
	if _, err := tp.GetInt("s"); !oerrors.Is(err, oerrors.ErrCodeTypeMismatch) {
		t.Errorf("GetInt on string column: err = %v", err)
	}
	if _, err := tp.GetInt("l"); !oerrors.Is(err, oerrors.ErrCodeTypeMismatch) {
		t.Errorf("GetInt on long column must not truncate: err = %v", err)
	}
	if err := tp.SetString("i", "x"); !oerrors.Is(err, oerrors.ErrCodeTypeMismatch) {
		t.Errorf("SetString on int column: err = %v", err)
	}
	if _, err := tp.GetString("missing"); !oerrors.Is(err, oerrors.ErrCodeInvalidReference) {
		t.Errorf("unknown field: err = %v", err)
	}
	if v, err := tp.GetIntAt(0); err != nil || v != 7 {
		t.Errorf("GetIntAt(0) = %v, %v", v, err)
	}
}

func TestTupleDefaults(t *testing.T) {
	s := MustSchema(Column{Name: "label", Type: TypeString, Default: "none"})
	tbl := New(s)
	row, _ := tbl.AddValues(map[string]any{"label": "set"})
	tp, _ := tbl.Tuple(row)

	if tp.Default("label") != "none" {
		t.Errorf("Default = %v", tp.Default("label"))
	}
	if err := tp.RevertToDefault("label"); err != nil {
		t.Fatal(err)
	}
	if v, _ := tbl.FieldValue(row, "label"); v != "none" {
		t.Errorf("label = %v, want none", v)
	}
	if tp.String() != "{label=none}" {
		t.Errorf("String() = %q", tp.String())
	}
}
