package sheet

import (
	"fmt"
	"sort"

	"github.com/arcanetools/cellweave/internal/lang"
)

// RunnableSheet is a chainable wrapper around Sheet that threads an error
// through a sequence of edits instead of forcing every call site to check
// one, adapted from the teacher's RunnableSpreadsheet. Every mutating
// method is a no-op once the chain has failed, so a REPL or batch loader
// can build up a whole session and inspect Error() once at the end.
type RunnableSheet struct {
	sheet   *Sheet
	err     error
	printLn func(string)
}

// NewRunnableSheet creates a chain wrapping a fresh Sheet. printLn is used
// by Log/CheckError.
func NewRunnableSheet(printLn func(string)) *RunnableSheet {
	return &RunnableSheet{sheet: NewSheet(), printLn: printLn}
}

// SetSource edits a cell's formula (chainable).
func (r *RunnableSheet) SetSource(id CellId, source string) *RunnableSheet {
	if r.err != nil {
		return r
	}
	_, err := r.sheet.SetSource(id, source)
	r.err = err
	return r
}

// Delete removes a cell (chainable).
func (r *RunnableSheet) Delete(id CellId) *RunnableSheet {
	if r.err != nil {
		return r
	}
	_, err := r.sheet.Delete(id)
	r.err = err
	return r
}

// SetBatch applies every (id, source) pair in order, stopping at the first
// error (chainable).
func (r *RunnableSheet) SetBatch(sources map[CellId]string) *RunnableSheet {
	if r.err != nil {
		return r
	}
	ids := make([]CellId, 0, len(sources))
	for id := range sources {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if _, err := r.sheet.SetSource(id, sources[id]); err != nil {
			r.err = err
			return r
		}
	}
	return r
}

// Value is a helper for pulling a single cell's value mid-chain. A missing
// cell or stored evaluation error is recorded on the chain and yields the
// Unit value.
func (r *RunnableSheet) Value(id CellId) lang.Value {
	if r.err != nil {
		return lang.UnitVal
	}
	v, err, found := r.sheet.Get(id)
	if !found {
		r.err = NewEngineError(EngineErrNotFound, "cell not found: "+id)
		return lang.UnitVal
	}
	if err != nil {
		r.err = err
		return lang.UnitVal
	}
	return v
}

// Then runs fn only if the chain has not yet failed.
func (r *RunnableSheet) Then(fn func(*RunnableSheet) *RunnableSheet) *RunnableSheet {
	if r.err != nil {
		return r
	}
	return fn(r)
}

// OnError lets the chain recover from (or rewrite) its current error.
func (r *RunnableSheet) OnError(fn func(error) error) *RunnableSheet {
	if r.err != nil {
		r.err = fn(r.err)
	}
	return r
}

// Must panics if the chain has failed; useful in tests and examples.
func (r *RunnableSheet) Must() *RunnableSheet {
	if r.err != nil {
		panic(r.err)
	}
	return r
}

// CheckError logs the chain's current error state via printLn (chainable).
func (r *RunnableSheet) CheckError() *RunnableSheet {
	if r.err != nil {
		r.printLn(fmt.Sprintf("ERROR: %v", r.err))
	} else {
		r.printLn("No errors")
	}
	return r
}

// Log prints a cell's current JSON-rendered value (chainable).
func (r *RunnableSheet) Log(id CellId) *RunnableSheet {
	if r.err != nil {
		return r
	}
	v, err, found := r.sheet.Get(id)
	if !found {
		r.err = NewEngineError(EngineErrNotFound, "cell not found: "+id)
		return r
	}
	if err != nil {
		r.printLn(fmt.Sprintf("%s = ERROR: %v", id, err))
		return r
	}
	r.printLn(fmt.Sprintf("%s = %s", id, EncodeValue(v)))
	return r
}

// Reset clears the chain's error state (chainable).
func (r *RunnableSheet) Reset() *RunnableSheet {
	r.err = nil
	return r
}

// Error returns the chain's current error, if any.
func (r *RunnableSheet) Error() error { return r.err }

// Run returns the underlying Sheet, or the chain's error if it failed.
func (r *RunnableSheet) Run() (*Sheet, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.sheet, nil
}

// RunOrPanic is Run but panics on error.
func (r *RunnableSheet) RunOrPanic() *Sheet {
	s, err := r.Run()
	if err != nil {
		panic(err)
	}
	return s
}

// Sheet returns the underlying Sheet directly, bypassing error tracking.
func (r *RunnableSheet) Sheet() *Sheet { return r.sheet }
