package lang

// Deps is the result of a single dependency-analyzer traversal (spec §4.3).
type Deps struct {
	PushesTo []string // literal push targets, de-duplicated, first-seen order
	Reads    bool     // whether this formula calls read() at all
}

// AnalyzeDeps walks expr once, collecting every literal push target and
// whether the formula reads its own mailbox. A push whose first argument
// is not a string literal fails the whole analysis: targets must be
// statically known for the dependency graph to be exact without running
// any formula (spec §4.3, §9).
func AnalyzeDeps(expr Expr) (Deps, error) {
	var d Deps
	seen := make(map[string]bool)
	var walk func(e Expr) error
	walk = func(e Expr) error {
		switch n := e.(type) {
		case *IntLit, *BoolLit, *StrLit, *Var:
			return nil
		case *ListLit:
			for _, el := range n.Elems {
				if err := walk(el); err != nil {
					return err
				}
			}
			return nil
		case *RecordLit:
			for _, f := range n.Fields {
				if err := walk(f.Value); err != nil {
					return err
				}
			}
			return nil
		case *Lambda:
			return walk(n.Body)
		case *App:
			if err := walk(n.Fn); err != nil {
				return err
			}
			return walk(n.Arg)
		case *Let:
			for _, b := range n.Bindings {
				if err := walk(b.Value); err != nil {
					return err
				}
			}
			return walk(n.Body)
		case *BinOp:
			if err := walk(n.Left); err != nil {
				return err
			}
			return walk(n.Right)
		case *UnOp:
			return walk(n.Operand)
		case *Index:
			if err := walk(n.Target); err != nil {
				return err
			}
			return walk(n.Key)
		case *RecordMerge:
			if err := walk(n.Left); err != nil {
				return err
			}
			return walk(n.Right)
		case *BuiltinCall:
			switch n.Name {
			case "push":
				if len(n.Args) != 2 {
					return nil // arity is checked at eval time
				}
				lit, ok := n.Args[0].(*StrLit)
				if !ok {
					return &DynamicPushTargetError{Pos: n.Args[0].Pos()}
				}
				if !seen[lit.Value] {
					seen[lit.Value] = true
					d.PushesTo = append(d.PushesTo, lit.Value)
				}
			case "read":
				d.Reads = true
			}
			for _, a := range n.Args {
				if err := walk(a); err != nil {
					return err
				}
			}
			return nil
		default:
			return nil
		}
	}
	if err := walk(expr); err != nil {
		return Deps{}, err
	}
	return d, nil
}
