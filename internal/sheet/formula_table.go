package sheet

import "github.com/arcanetools/cellweave/internal/lang"

// ParsedFormula bundles everything the dependency analyzer and parser can
// determine about one piece of source text, independent of which cell
// happens to hold it.
type ParsedFormula struct {
	Expr     lang.Expr
	Err      error // *lang.LexError, *lang.ParseError, or *lang.DynamicPushTargetError
	PushesTo []string
	Reads    bool
}

type formulaEntry struct {
	parsed   ParsedFormula
	refCount int
}

// FormulaTable interns parsed formulas by their exact source text, the way
// the teacher's formula.go interns ASTs by a normalized key: character
// sheets duplicate the same small formula ("fold(fn(a)->fn(x)->a+x, 0,
// read())" to total pushed bonuses, say) across many cells, so re-parsing and
// re-analyzing identical source on every edit is wasted work. Entries are
// refcounted and dropped once no cell references them, mirroring
// formula.go's InternFormula/RemoveCellReference lifecycle.
type FormulaTable struct {
	entries map[string]*formulaEntry
	ids     *CellIdTable
}

func NewFormulaTable() *FormulaTable {
	return &FormulaTable{entries: make(map[string]*formulaEntry), ids: NewCellIdTable()}
}

// Acquire returns the parsed form of source, parsing and analyzing it on
// first use and incrementing its reference count on every use. A new
// formula's push targets are interned through the table's CellIdTable, so
// a target repeated across many cells' formulas shares one backing
// string.
func (t *FormulaTable) Acquire(source string) ParsedFormula {
	if e, ok := t.entries[source]; ok {
		e.refCount++
		return e.parsed
	}
	parsed := parseAndAnalyze(source)
	for i, target := range parsed.PushesTo {
		parsed.PushesTo[i] = t.ids.Intern(target)
	}
	t.entries[source] = &formulaEntry{parsed: parsed, refCount: 1}
	return parsed
}

// Release drops one reference to source's parsed form, evicting it once
// unreferenced.
func (t *FormulaTable) Release(source string) {
	e, ok := t.entries[source]
	if !ok {
		return
	}
	e.refCount--
	if e.refCount <= 0 {
		delete(t.entries, source)
	}
}

func (t *FormulaTable) Clear() {
	t.entries = make(map[string]*formulaEntry)
}

func parseAndAnalyze(source string) ParsedFormula {
	expr, err := lang.Parse(source)
	if err != nil {
		return ParsedFormula{Err: err}
	}
	deps, err := lang.AnalyzeDeps(expr)
	if err != nil {
		return ParsedFormula{Err: err}
	}
	return ParsedFormula{Expr: expr, PushesTo: deps.PushesTo, Reads: deps.Reads}
}
