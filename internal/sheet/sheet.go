package sheet

import (
	"sort"

	"github.com/arcanetools/cellweave/internal/lang"
)

// Sheet owns every Cell, the push-edge DependencyGraph derived from their
// static dependencies, and the formula cache, and drives the recomputation
// loop described in spec §4.5. It is the generalization of the teacher's
// Spreadsheet (sheet.go): Excel's worksheet/named-range/cell-reference
// machinery is gone, replaced by the flat CellId namespace and push-edge
// graph this specification uses.
type Sheet struct {
	cells    map[CellId]*Cell
	graph    *DependencyGraph
	formulas *FormulaTable
}

func NewSheet() *Sheet {
	return &Sheet{
		cells:    make(map[CellId]*Cell),
		graph:    NewDependencyGraph(),
		formulas: NewFormulaTable(),
	}
}

// SetSource re-parses and re-analyzes a cell's formula text, then runs the
// recomputation pass described in spec §4.5. If the new push edges would
// close a cycle anywhere in the graph, the edit is rejected atomically:
// the sheet is left bit-identical to before the call and a *CycleError is
// returned.
func (s *Sheet) SetSource(id CellId, source string) ([]CellId, error) {
	cell, existed := s.cells[id]
	hadPriorSource := existed && cell.State != StateEmpty
	if !existed {
		cell = newCell(id)
	}

	parsed := s.formulas.Acquire(source)

	var priorEdges []CellId
	if existed {
		priorEdges = append([]CellId(nil), cell.PushesTo...)
	}
	s.graph.SetEdges(id, parsed.PushesTo)

	if cycle, found := s.graph.DetectCycle(); found {
		s.graph.SetEdges(id, priorEdges)
		s.formulas.Release(source)
		return nil, &CycleError{Cycle: cycle}
	}

	if hadPriorSource {
		s.formulas.Release(cell.Source)
	}
	cell.Source = source
	cell.Expr = parsed.Expr
	cell.ParseErr = parsed.Err
	cell.PushesTo = parsed.PushesTo
	cell.Reads = parsed.Reads
	cell.State = StateParsed
	cell.Generation++
	s.cells[id] = cell

	return s.recompute([]CellId{id}), nil
}

// Delete removes a cell entirely. Cells that depended on its pushes (or
// whose mailbox held entries from it) are recomputed exactly as if it had
// been edited to push nothing.
func (s *Sheet) Delete(id CellId) ([]CellId, error) {
	cell, ok := s.cells[id]
	if !ok {
		return nil, NewEngineError(EngineErrNotFound, "cell not found: "+id)
	}
	affected := s.graph.AllDependents(id)
	s.formulas.Release(cell.Source)
	s.graph.RemoveCell(id)
	delete(s.cells, id)
	return s.recompute(append(affected, id)), nil
}

// Get returns the cell's current value and/or error. found is false if no
// such cell exists.
func (s *Sheet) Get(id CellId) (value lang.Value, err error, found bool) {
	c, ok := s.cells[id]
	if !ok {
		return lang.Value{}, nil, false
	}
	if c.State == StateErr {
		return lang.Value{}, c.Err(), true
	}
	return c.Value, nil, true
}

// ListCells returns every cell id, ascending lexicographically.
func (s *Sheet) ListCells() []CellId {
	ids := make([]CellId, 0, len(s.cells))
	for id := range s.cells {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// SessionRow is one persisted (cell id, source text) pair, the unit
// Snapshot/Restore exchange with a session.Store. It carries no sheet
// name or timestamp — those belong to whatever groups several sheets
// together (internal/session's own row type adds them), since a Sheet on
// its own has no notion of its own name or of wall-clock time.
type SessionRow struct {
	CellID CellId
	Source string
}

// Snapshot returns every cell's source text, enough to rebuild the sheet
// from scratch with Restore. Cells that only ever held a parse error are
// included too, since their source text is still meaningful to re-edit.
func (s *Sheet) Snapshot() []SessionRow {
	ids := s.ListCells()
	rows := make([]SessionRow, len(ids))
	for i, id := range ids {
		rows[i] = SessionRow{CellID: id, Source: s.cells[id].Source}
	}
	return rows
}

// Restore replays a snapshot's rows as SetSource calls, in ascending
// CellId order. A cell that pushes into a cell restored after it is
// re-evaluated when that target is set, so its pushes are delivered. It
// stops and returns the first error encountered, leaving whatever was
// applied before that point in place.
func (s *Sheet) Restore(rows []SessionRow) error {
	sorted := append([]SessionRow(nil), rows...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].CellID < sorted[j].CellID })
	for _, row := range sorted {
		if _, err := s.SetSource(row.CellID, row.Source); err != nil {
			return err
		}
	}
	return nil
}

// DescribeError renders any error this package can produce as host-facing
// text (spec §4.7): a CycleError's path, an EngineError's message, or a
// cell's lang.EvalError/parse-time error rendered via its own Error().
func DescribeError(err error) string {
	if err == nil {
		return ""
	}
	switch e := err.(type) {
	case *CycleError:
		return e.Error()
	case *EngineError:
		return e.Error()
	case *lang.EvalError:
		return e.Error()
	default:
		return err.Error()
	}
}

// recompute runs spec §4.5 steps 2-6 starting from a seed set of cells
// (the edited cell for SetSource, or a deleted cell and its former
// dependents for Delete) and returns the ids whose state changed. Cells
// that push directly into a seed cell are re-evaluated too, so pushes that
// failed because the seed did not exist yet are delivered now. A dirty
// cell's mailbox keeps the entries from sources outside the dirty set.
func (s *Sheet) recompute(seed []CellId) []CellId {
	dirty := make(map[CellId]bool)
	queue := append([]CellId(nil), seed...)
	for _, id := range seed {
		dirty[id] = true
	}
	for _, id := range seed {
		for src := range s.graph.precedents[id] {
			if !dirty[src] {
				dirty[src] = true
				queue = append(queue, src)
			}
		}
	}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, t := range s.graph.DirectDependents(id) {
			if !dirty[t] {
				dirty[t] = true
				queue = append(queue, t)
			}
		}
		for _, c := range s.cells {
			if dirty[c.ID] {
				continue
			}
			for _, e := range c.Mailbox {
				if e.Source == id {
					dirty[c.ID] = true
					queue = append(queue, c.ID)
					break
				}
			}
		}
	}

	scope := make(map[CellId]bool)
	for id := range dirty {
		if _, ok := s.cells[id]; ok {
			scope[id] = true
		}
	}
	for id := range scope {
		var kept []lang.MailboxEntry
		for _, e := range s.cells[id].Mailbox {
			if !dirty[e.Source] {
				kept = append(kept, e)
			}
		}
		s.cells[id].Mailbox = kept
	}

	order := s.graph.CalculationOrder(scope)
	changed := make([]CellId, 0, len(order))
	for _, id := range order {
		s.evalCell(s.cells[id], scope)
		changed = append(changed, id)
	}
	return changed
}

// evalCell evaluates one cell's formula and, on success, delivers its
// pending pushes to their targets' mailboxes (spec §4.5 step 5). scope is
// the current pass's dirty set, used to catch the "should not happen"
// StalePushError case and to recognize pushes aimed at cells that do not
// exist at all.
func (s *Sheet) evalCell(c *Cell, scope map[CellId]bool) {
	if c.ParseErr != nil {
		c.State = StateErr
		c.EvalErr = nil
		c.Value = lang.Value{}
		return
	}

	mailbox := sortMailbox(c.Mailbox)
	ctx := lang.NewCtx(c.ID, mailbox)
	v, err := lang.Eval(c.Expr, lang.NewEnv(), ctx)
	if err != nil {
		c.State = StateErr
		if ee, ok := err.(*lang.EvalError); ok {
			c.EvalErr = ee
		} else {
			c.EvalErr = lang.NewEvalError(lang.ErrTypeError, c.Expr.Pos(), err.Error())
		}
		c.Value = lang.Value{}
		return
	}

	for _, p := range ctx.Pushes {
		target, exists := s.cells[p.Target]
		if !exists {
			c.State = StateErr
			c.EvalErr = lang.NewEvalError(lang.ErrPushToMissingCell, c.Expr.Pos(), p.Target)
			c.Value = lang.Value{}
			return
		}
		if !scope[p.Target] {
			c.State = StateErr
			c.EvalErr = lang.NewEvalError(lang.ErrStalePush, c.Expr.Pos(), p.Target)
			c.Value = lang.Value{}
			return
		}
		_ = target
	}

	for _, p := range ctx.Pushes {
		target := s.cells[p.Target]
		target.Mailbox = append(target.Mailbox, lang.MailboxEntry{Source: c.ID, Seq: p.Seq, Value: p.Value})
	}
	c.State = StateOk
	c.EvalErr = nil
	c.Value = v
}

// sortMailbox orders entries the way read() must see them: ascending by
// source CellId, then by each source's own push sequence (spec §3, §4.4).
func sortMailbox(entries []lang.MailboxEntry) []lang.MailboxEntry {
	out := append([]lang.MailboxEntry(nil), entries...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Source != out[j].Source {
			return out[i].Source < out[j].Source
		}
		return out[i].Seq < out[j].Seq
	})
	return out
}
