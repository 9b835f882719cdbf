package lang

import (
	"fmt"
	"sort"
)

// ValueKind tags the Value union (spec §3).
type ValueKind uint8

const (
	KindInt ValueKind = iota
	KindBool
	KindStr
	KindList
	KindRecord
	KindFun
	KindUnit
)

func (k ValueKind) String() string {
	switch k {
	case KindInt:
		return "Int"
	case KindBool:
		return "Bool"
	case KindStr:
		return "Str"
	case KindList:
		return "List"
	case KindRecord:
		return "Record"
	case KindFun:
		return "Fun"
	case KindUnit:
		return "Unit"
	default:
		return "?"
	}
}

// Value is the immutable tagged union produced by evaluation. Only one of
// the typed fields is meaningful, selected by Kind; this mirrors the
// teacher's Primitive-plus-tag approach (cell.go) but as a closed union
// instead of `any`, since the formula language's value set is fixed.
type Value struct {
	Kind   ValueKind
	Int    int64
	Bool   bool
	Str    string
	List   []Value
	Record *Record
	Fun    *Closure
}

// Record is a Str-keyed map that also keeps its keys in insertion order in
// a slice, so key listing never depends on a Go map's randomized range
// order; Keys() sorts a copy of that slice.
type Record struct {
	keys   []string
	values map[string]Value
}

func NewRecord() *Record {
	return &Record{values: make(map[string]Value)}
}

func (r *Record) Set(key string, v Value) {
	if _, exists := r.values[key]; !exists {
		r.keys = append(r.keys, key)
	}
	r.values[key] = v
}

func (r *Record) Get(key string) (Value, bool) {
	v, ok := r.values[key]
	return v, ok
}

func (r *Record) Len() int { return len(r.keys) }

// Keys returns the record's keys in ascending lexicographic order, the
// ordering spec §6 mandates for serialization and §4.4 for record fold.
func (r *Record) Keys() []string {
	keys := append([]string(nil), r.keys...)
	sort.Strings(keys)
	return keys
}

// Closure is a Fun value: a parameter name, body, and the environment
// snapshot captured at its definition site (spec §3, §4.4, §9).
type Closure struct {
	Param string
	Body  Expr
	Env   *Env
}

func Int(i int64) Value     { return Value{Kind: KindInt, Int: i} }
func Bool(b bool) Value     { return Value{Kind: KindBool, Bool: b} }
func Str(s string) Value    { return Value{Kind: KindStr, Str: s} }
func List(xs []Value) Value { return Value{Kind: KindList, List: xs} }
func RecordVal(r *Record) Value {
	return Value{Kind: KindRecord, Record: r}
}
func FunVal(c *Closure) Value { return Value{Kind: KindFun, Fun: c} }

var UnitVal = Value{Kind: KindUnit}

// Equal implements spec §4.4's structural equality for "==" and "/=":
// scalars compare by value, Lists/Records structurally, Fun is never equal
// to anything (including another Fun) since closures are not equatable.
func Equal(a, b Value) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindInt:
		return a.Int == b.Int
	case KindBool:
		return a.Bool == b.Bool
	case KindStr:
		return a.Str == b.Str
	case KindUnit:
		return true
	case KindList:
		if len(a.List) != len(b.List) {
			return false
		}
		for i := range a.List {
			if !Equal(a.List[i], b.List[i]) {
				return false
			}
		}
		return true
	case KindRecord:
		if a.Record.Len() != b.Record.Len() {
			return false
		}
		for _, k := range a.Record.Keys() {
			av, _ := a.Record.Get(k)
			bv, ok := b.Record.Get(k)
			if !ok || !Equal(av, bv) {
				return false
			}
		}
		return true
	case KindFun:
		return false
	default:
		return false
	}
}

// String renders a Value the way a diagnostic or REPL would; it is not the
// JSON serialization surface (see sheet.EncodeValue for that).
func (v Value) String() string {
	switch v.Kind {
	case KindInt:
		return fmt.Sprintf("%d", v.Int)
	case KindBool:
		if v.Bool {
			return "true"
		}
		return "false"
	case KindStr:
		return fmt.Sprintf("%q", v.Str)
	case KindUnit:
		return "()"
	case KindList:
		s := "["
		for i, e := range v.List {
			if i > 0 {
				s += ", "
			}
			s += e.String()
		}
		return s + "]"
	case KindRecord:
		s := "{"
		for i, k := range v.Record.Keys() {
			if i > 0 {
				s += ", "
			}
			val, _ := v.Record.Get(k)
			s += k + ": " + val.String()
		}
		return s + "}"
	case KindFun:
		return "<function>"
	default:
		return "?"
	}
}
