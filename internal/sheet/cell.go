package sheet

import "github.com/arcanetools/cellweave/internal/lang"

// CellState is the state machine named in spec §4.5: Empty -> Parsed ->
// {Ok(Value) | Err(EvalError)}. Any set_source returns a cell to Parsed (or
// Empty if cleared) and marks its dependents dirty.
type CellState uint8

const (
	StateEmpty CellState = iota
	StateParsed
	StateOk
	StateErr
)

// CellId is an opaque, bytewise-sortable string identifier (spec §3, §6).
type CellId = string

// Cell is one named formula cell. Its parsed form, static dependency sets,
// value, and mailbox are all derived/owned by the Sheet, never mutated
// concurrently with evaluation (the engine is single-threaded, spec §5).
type Cell struct {
	ID     CellId
	Source string
	State  CellState

	Expr     lang.Expr // nil if ParseErr != nil
	ParseErr error     // *lang.LexError, *lang.ParseError, or *lang.DynamicPushTargetError

	PushesTo []CellId // static push targets, from the dependency analyzer
	Reads    bool     // whether the formula calls read()

	Value   lang.Value
	EvalErr *lang.EvalError

	Mailbox    []lang.MailboxEntry
	Generation uint64
}

func newCell(id CellId) *Cell {
	return &Cell{ID: id, State: StateEmpty}
}

// HasError reports whether the cell's current observable value is an
// error of any kind (parse-time or evaluation-time).
func (c *Cell) HasError() bool {
	return c.State == StateErr
}

// Err returns the cell's current error, preferring the parse-time error
// over any stale evaluation error.
func (c *Cell) Err() error {
	if c.ParseErr != nil {
		return c.ParseErr
	}
	return c.EvalErr
}
