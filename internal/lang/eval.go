package lang

import "math"

// MailboxEntry is one value delivered to a cell during the current pass,
// already placed in the order read() must return it: ascending by Source,
// then by Seq within a Source (spec §3, §4.4).
type MailboxEntry struct {
	Source string
	Seq    uint32
	Value  Value
}

// PendingPush is one push a formula wants to make; the evaluator only
// records these, it never applies them — the scheduler does that once the
// whole cell has evaluated successfully (spec §4.4, §9).
type PendingPush struct {
	Target string
	Seq    uint32
	Value  Value
}

// Ctx is the evaluation context threaded explicitly through every eval
// call rather than held in a thread-local, so Eval stays a pure function
// of its three arguments (spec §9).
type Ctx struct {
	Cell    string
	Mailbox []MailboxEntry
	Pushes  []PendingPush
	seq     uint32
}

func NewCtx(cell string, mailbox []MailboxEntry) *Ctx {
	return &Ctx{Cell: cell, Mailbox: mailbox}
}

func (c *Ctx) nextSeq() uint32 {
	s := c.seq
	c.seq++
	return s
}

// Eval evaluates expr in env under ctx. It never mutates env (persistent
// frames) and only appends to ctx.Pushes, never applies them.
func Eval(expr Expr, env *Env, ctx *Ctx) (Value, error) {
	switch n := expr.(type) {
	case *IntLit:
		return Int(n.Value), nil
	case *BoolLit:
		return Bool(n.Value), nil
	case *StrLit:
		return Str(n.Value), nil
	case *Var:
		v, ok := env.Lookup(n.Name)
		if !ok {
			return Value{}, NewEvalError(ErrUnboundVariable, n.Pos(), n.Name)
		}
		return v, nil
	case *ListLit:
		elems := make([]Value, len(n.Elems))
		for i, e := range n.Elems {
			v, err := Eval(e, env, ctx)
			if err != nil {
				return Value{}, err
			}
			elems[i] = v
		}
		return List(elems), nil
	case *RecordLit:
		r := NewRecord()
		for _, f := range n.Fields {
			v, err := Eval(f.Value, env, ctx)
			if err != nil {
				return Value{}, err
			}
			r.Set(f.Key, v)
		}
		return RecordVal(r), nil
	case *Lambda:
		return FunVal(&Closure{Param: n.Param, Body: n.Body, Env: env}), nil
	case *App:
		return evalApp(n, env, ctx)
	case *Let:
		cur := env
		for _, b := range n.Bindings {
			v, err := Eval(b.Value, cur, ctx)
			if err != nil {
				return Value{}, err
			}
			cur = cur.Extend(b.Name, v)
		}
		return Eval(n.Body, cur, ctx)
	case *BinOp:
		return evalBinOp(n, env, ctx)
	case *UnOp:
		return evalUnOp(n, env, ctx)
	case *Index:
		return evalIndex(n, env, ctx)
	case *RecordMerge:
		return evalRecordMerge(n, env, ctx)
	case *BuiltinCall:
		return evalBuiltin(n, env, ctx)
	default:
		return Value{}, NewEvalError(ErrTypeError, expr.Pos(), "unknown expression node")
	}
}

func evalApp(n *App, env *Env, ctx *Ctx) (Value, error) {
	fnVal, err := Eval(n.Fn, env, ctx)
	if err != nil {
		return Value{}, err
	}
	if fnVal.Kind != KindFun {
		return Value{}, NewEvalError(ErrTypeError, n.Pos(), "application target is not a function")
	}
	argVal, err := Eval(n.Arg, env, ctx)
	if err != nil {
		return Value{}, err
	}
	callEnv := fnVal.Fun.Env.Extend(fnVal.Fun.Param, argVal)
	return Eval(fnVal.Fun.Body, callEnv, ctx)
}

func evalUnOp(n *UnOp, env *Env, ctx *Ctx) (Value, error) {
	v, err := Eval(n.Operand, env, ctx)
	if err != nil {
		return Value{}, err
	}
	switch n.Op {
	case OpNeg:
		if v.Kind != KindInt {
			return Value{}, NewEvalError(ErrTypeError, n.Pos(), "unary '-' requires Int")
		}
		if v.Int == math.MinInt64 {
			return Value{}, NewEvalError(ErrOverflowError, n.Pos(), "negation overflow")
		}
		return Int(-v.Int), nil
	case OpNot:
		if v.Kind != KindBool {
			return Value{}, NewEvalError(ErrTypeError, n.Pos(), "'not' requires Bool")
		}
		return Bool(!v.Bool), nil
	default:
		return Value{}, NewEvalError(ErrTypeError, n.Pos(), "unknown unary operator")
	}
}

func evalBinOp(n *BinOp, env *Env, ctx *Ctx) (Value, error) {
	// and/or short-circuit, so the right operand is evaluated lazily.
	if n.Op == OpAnd || n.Op == OpOr {
		l, err := Eval(n.Left, env, ctx)
		if err != nil {
			return Value{}, err
		}
		if l.Kind != KindBool {
			return Value{}, NewEvalError(ErrTypeError, n.Pos(), "'and'/'or' require Bool")
		}
		if n.Op == OpAnd && !l.Bool {
			return Bool(false), nil
		}
		if n.Op == OpOr && l.Bool {
			return Bool(true), nil
		}
		r, err := Eval(n.Right, env, ctx)
		if err != nil {
			return Value{}, err
		}
		if r.Kind != KindBool {
			return Value{}, NewEvalError(ErrTypeError, n.Pos(), "'and'/'or' require Bool")
		}
		return r, nil
	}

	l, err := Eval(n.Left, env, ctx)
	if err != nil {
		return Value{}, err
	}
	r, err := Eval(n.Right, env, ctx)
	if err != nil {
		return Value{}, err
	}

	switch n.Op {
	case OpEq:
		return Bool(Equal(l, r)), nil
	case OpNeq:
		return Bool(!Equal(l, r)), nil
	case OpAdd, OpSub, OpMul:
		if l.Kind != KindInt || r.Kind != KindInt {
			return Value{}, NewEvalError(ErrTypeError, n.Pos(), "arithmetic requires Int operands")
		}
		return evalArith(n.Op, l.Int, r.Int, n.Pos())
	case OpLt, OpLe, OpGt, OpGe:
		if l.Kind != KindInt || r.Kind != KindInt {
			return Value{}, NewEvalError(ErrTypeError, n.Pos(), "order comparisons require Int operands")
		}
		return Bool(compareInt(n.Op, l.Int, r.Int)), nil
	default:
		return Value{}, NewEvalError(ErrTypeError, n.Pos(), "unknown binary operator")
	}
}

func compareInt(op BinOpKind, a, b int64) bool {
	switch op {
	case OpLt:
		return a < b
	case OpLe:
		return a <= b
	case OpGt:
		return a > b
	case OpGe:
		return a >= b
	default:
		return false
	}
}

func evalArith(op BinOpKind, a, b int64, p int) (Value, error) {
	switch op {
	case OpAdd:
		s := a + b
		if (b > 0 && s < a) || (b < 0 && s > a) {
			return Value{}, NewEvalError(ErrOverflowError, p, "addition overflow")
		}
		return Int(s), nil
	case OpSub:
		s := a - b
		if (b < 0 && s < a) || (b > 0 && s > a) {
			return Value{}, NewEvalError(ErrOverflowError, p, "subtraction overflow")
		}
		return Int(s), nil
	case OpMul:
		if a == 0 || b == 0 {
			return Int(0), nil
		}
		s := a * b
		if s/b != a {
			return Value{}, NewEvalError(ErrOverflowError, p, "multiplication overflow")
		}
		return Int(s), nil
	default:
		return Value{}, NewEvalError(ErrTypeError, p, "unknown arithmetic operator")
	}
}

func evalIndex(n *Index, env *Env, ctx *Ctx) (Value, error) {
	target, err := Eval(n.Target, env, ctx)
	if err != nil {
		return Value{}, err
	}
	key, err := Eval(n.Key, env, ctx)
	if err != nil {
		return Value{}, err
	}
	switch target.Kind {
	case KindList:
		if key.Kind != KindInt {
			return Value{}, NewEvalError(ErrTypeError, n.Pos(), "list index must be Int")
		}
		if key.Int < 0 || key.Int >= int64(len(target.List)) {
			return Value{}, NewEvalError(ErrIndexError, n.Pos(), "list index out of range")
		}
		return target.List[key.Int], nil
	case KindRecord:
		if key.Kind != KindStr {
			return Value{}, NewEvalError(ErrTypeError, n.Pos(), "record key must be Str")
		}
		v, ok := target.Record.Get(key.Str)
		if !ok {
			return Value{}, NewEvalError(ErrIndexError, n.Pos(), "record has no key "+key.Str)
		}
		return v, nil
	default:
		return Value{}, NewEvalError(ErrTypeError, n.Pos(), "indexing requires List or Record")
	}
}

func evalRecordMerge(n *RecordMerge, env *Env, ctx *Ctx) (Value, error) {
	l, err := Eval(n.Left, env, ctx)
	if err != nil {
		return Value{}, err
	}
	r, err := Eval(n.Right, env, ctx)
	if err != nil {
		return Value{}, err
	}
	if l.Kind != KindRecord || r.Kind != KindRecord {
		return Value{}, NewEvalError(ErrTypeError, n.Pos(), "'//' requires two Records")
	}
	out := NewRecord()
	for _, k := range l.Record.Keys() {
		v, _ := l.Record.Get(k)
		out.Set(k, v)
	}
	for _, k := range r.Record.Keys() {
		v, _ := r.Record.Get(k)
		out.Set(k, v)
	}
	return RecordVal(out), nil
}

func evalBuiltin(n *BuiltinCall, env *Env, ctx *Ctx) (Value, error) {
	switch n.Name {
	case "push":
		return evalPush(n, env, ctx)
	case "read":
		return evalRead(n, ctx)
	case "map":
		return evalMap(n, env, ctx)
	case "filter":
		return evalFilter(n, env, ctx)
	case "fold":
		return evalFold(n, env, ctx)
	default:
		return Value{}, NewEvalError(ErrUnknownBuiltin, n.Pos(), n.Name)
	}
}

func evalPush(n *BuiltinCall, env *Env, ctx *Ctx) (Value, error) {
	if len(n.Args) != 2 {
		return Value{}, NewEvalError(ErrArityMismatch, n.Pos(), "push takes 2 arguments")
	}
	target, err := Eval(n.Args[0], env, ctx)
	if err != nil {
		return Value{}, err
	}
	if target.Kind != KindStr {
		return Value{}, NewEvalError(ErrTypeError, n.Pos(), "push target must be Str")
	}
	v, err := Eval(n.Args[1], env, ctx)
	if err != nil {
		return Value{}, err
	}
	ctx.Pushes = append(ctx.Pushes, PendingPush{Target: target.Str, Seq: ctx.nextSeq(), Value: v})
	return v, nil
}

func evalRead(n *BuiltinCall, ctx *Ctx) (Value, error) {
	if len(n.Args) != 0 {
		return Value{}, NewEvalError(ErrArityMismatch, n.Pos(), "read takes no arguments")
	}
	out := make([]Value, len(ctx.Mailbox))
	for i, e := range ctx.Mailbox {
		out[i] = e.Value
	}
	return List(out), nil
}

// applyFun applies fn to args one at a time, re-entering the closure's body
// after each argument exactly as source-level curried `f(a)(b)` would; this
// is what lets map/filter/fold's callback be a curried multi-arg lambda
// (e.g. fold's `f(acc, x)`).
func applyFun(fn Value, args []Value, ctx *Ctx, p int) (Value, error) {
	result := fn
	for _, a := range args {
		if result.Kind != KindFun {
			return Value{}, NewEvalError(ErrArityMismatch, p, "too many arguments")
		}
		callEnv := result.Fun.Env.Extend(result.Fun.Param, a)
		v, err := Eval(result.Fun.Body, callEnv, ctx)
		if err != nil {
			return Value{}, err
		}
		result = v
	}
	return result, nil
}

func evalMap(n *BuiltinCall, env *Env, ctx *Ctx) (Value, error) {
	if len(n.Args) != 2 {
		return Value{}, NewEvalError(ErrArityMismatch, n.Pos(), "map takes 2 arguments")
	}
	f, err := Eval(n.Args[0], env, ctx)
	if err != nil {
		return Value{}, err
	}
	coll, err := Eval(n.Args[1], env, ctx)
	if err != nil {
		return Value{}, err
	}
	switch coll.Kind {
	case KindList:
		out := make([]Value, len(coll.List))
		for i, x := range coll.List {
			v, err := applyFun(f, []Value{x}, ctx, n.Pos())
			if err != nil {
				return Value{}, err
			}
			out[i] = v
		}
		return List(out), nil
	case KindRecord:
		out := NewRecord()
		for _, k := range coll.Record.Keys() {
			val, _ := coll.Record.Get(k)
			v, err := applyFun(f, []Value{val}, ctx, n.Pos())
			if err != nil {
				return Value{}, err
			}
			out.Set(k, v)
		}
		return RecordVal(out), nil
	default:
		return Value{}, NewEvalError(ErrTypeError, n.Pos(), "map requires List or Record")
	}
}

func evalFilter(n *BuiltinCall, env *Env, ctx *Ctx) (Value, error) {
	if len(n.Args) != 2 {
		return Value{}, NewEvalError(ErrArityMismatch, n.Pos(), "filter takes 2 arguments")
	}
	f, err := Eval(n.Args[0], env, ctx)
	if err != nil {
		return Value{}, err
	}
	coll, err := Eval(n.Args[1], env, ctx)
	if err != nil {
		return Value{}, err
	}
	switch coll.Kind {
	case KindList:
		var out []Value
		for _, x := range coll.List {
			keep, err := applyFun(f, []Value{x}, ctx, n.Pos())
			if err != nil {
				return Value{}, err
			}
			if keep.Kind != KindBool {
				return Value{}, NewEvalError(ErrTypeError, n.Pos(), "filter predicate must return Bool")
			}
			if keep.Bool {
				out = append(out, x)
			}
		}
		return List(out), nil
	case KindRecord:
		out := NewRecord()
		for _, k := range coll.Record.Keys() {
			val, _ := coll.Record.Get(k)
			keep, err := applyFun(f, []Value{val}, ctx, n.Pos())
			if err != nil {
				return Value{}, err
			}
			if keep.Kind != KindBool {
				return Value{}, NewEvalError(ErrTypeError, n.Pos(), "filter predicate must return Bool")
			}
			if keep.Bool {
				out.Set(k, val)
			}
		}
		return RecordVal(out), nil
	default:
		return Value{}, NewEvalError(ErrTypeError, n.Pos(), "filter requires List or Record")
	}
}

func evalFold(n *BuiltinCall, env *Env, ctx *Ctx) (Value, error) {
	if len(n.Args) != 3 {
		return Value{}, NewEvalError(ErrArityMismatch, n.Pos(), "fold takes 3 arguments")
	}
	f, err := Eval(n.Args[0], env, ctx)
	if err != nil {
		return Value{}, err
	}
	acc, err := Eval(n.Args[1], env, ctx)
	if err != nil {
		return Value{}, err
	}
	coll, err := Eval(n.Args[2], env, ctx)
	if err != nil {
		return Value{}, err
	}
	switch coll.Kind {
	case KindList:
		for _, x := range coll.List {
			acc, err = applyFun(f, []Value{acc, x}, ctx, n.Pos())
			if err != nil {
				return Value{}, err
			}
		}
		return acc, nil
	case KindRecord:
		for _, k := range coll.Record.Keys() {
			val, _ := coll.Record.Get(k)
			acc, err = applyFun(f, []Value{acc, val}, ctx, n.Pos())
			if err != nil {
				return Value{}, err
			}
		}
		return acc, nil
	default:
		return Value{}, NewEvalError(ErrTypeError, n.Pos(), "fold requires List or Record")
	}
}
