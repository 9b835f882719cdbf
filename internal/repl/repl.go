// Package repl implements the line-oriented command language SPEC_FULL's
// host wraps around the engine's programmatic surface, in the same
// scan-a-line/dispatch/print-result shape as the slug interpreter's own
// internal/repl.Start.
package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/arcanetools/cellweave/internal/session"
	"github.com/arcanetools/cellweave/internal/sheet"
)

const PROMPT = "cellweave> "

// Start runs the REPL loop over in/out until EOF or a "quit" command.
// store and sheetName are used by the "save"/"load" commands; store may
// be nil, in which case those commands report an error instead of
// panicking.
func Start(in io.Reader, out io.Writer, s *sheet.Sheet, store session.Store, sheetName string) {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, PROMPT)
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if !dispatch(out, s, store, sheetName, line) {
			return
		}
	}
}

func dispatch(out io.Writer, s *sheet.Sheet, store session.Store, sheetName, line string) bool {
	fields := strings.Fields(line)
	cmd := fields[0]

	switch cmd {
	case "quit", "exit":
		return false
	case "help":
		printHelp(out)
	case "list":
		for _, id := range s.ListCells() {
			fmt.Fprintln(out, id)
		}
	case "set":
		runSet(out, s, fields, line)
	case "get":
		runGet(out, s, fields)
	case "delete":
		runDelete(out, s, fields)
	case "save":
		runSave(out, s, store, sheetName)
	case "load":
		runLoad(out, s, store, sheetName)
	default:
		fmt.Fprintf(out, "unknown command %q; try 'help'\n", cmd)
	}
	return true
}

func runSet(out io.Writer, s *sheet.Sheet, fields []string, line string) {
	if len(fields) < 3 {
		fmt.Fprintln(out, "usage: set <cell> <source...>")
		return
	}
	id := fields[1]
	source := strings.TrimSpace(strings.TrimPrefix(line, fields[0]+" "+id))
	changed, err := s.SetSource(id, source)
	if err != nil {
		fmt.Fprintf(out, "ERROR: %s\n", sheet.DescribeError(err))
		return
	}
	fmt.Fprintf(out, "ok, recomputed %d cell(s)\n", len(changed))
}

func runGet(out io.Writer, s *sheet.Sheet, fields []string) {
	if len(fields) != 2 {
		fmt.Fprintln(out, "usage: get <cell>")
		return
	}
	v, err, found := s.Get(fields[1])
	if !found {
		fmt.Fprintf(out, "%s: no such cell\n", fields[1])
		return
	}
	if err != nil {
		fmt.Fprintf(out, "%s = ERROR: %s\n", fields[1], sheet.DescribeError(err))
		return
	}
	fmt.Fprintf(out, "%s = %s\n", fields[1], sheet.EncodeValue(v))
}

func runDelete(out io.Writer, s *sheet.Sheet, fields []string) {
	if len(fields) != 2 {
		fmt.Fprintln(out, "usage: delete <cell>")
		return
	}
	changed, err := s.Delete(fields[1])
	if err != nil {
		fmt.Fprintf(out, "ERROR: %s\n", sheet.DescribeError(err))
		return
	}
	fmt.Fprintf(out, "ok, recomputed %d cell(s)\n", len(changed))
}

func runSave(out io.Writer, s *sheet.Sheet, store session.Store, sheetName string) {
	if store == nil {
		fmt.Fprintln(out, "no session store configured")
		return
	}
	rows := s.Snapshot()
	now := time.Now().Unix()
	sessionRows := make([]session.SessionRow, len(rows))
	for i, r := range rows {
		sessionRows[i] = session.SessionRow{Sheet: sheetName, CellID: r.CellID, Source: r.Source, UpdatedAtUnix: now}
	}
	if err := store.Save(context.Background(), sheetName, sessionRows); err != nil {
		slog.Error("save failed", slog.String("sheet", sheetName), slog.Any("error", err))
		fmt.Fprintf(out, "ERROR: %v\n", err)
		return
	}
	fmt.Fprintf(out, "saved %d cell(s) to %q\n", len(sessionRows), sheetName)
}

func runLoad(out io.Writer, s *sheet.Sheet, store session.Store, sheetName string) {
	if store == nil {
		fmt.Fprintln(out, "no session store configured")
		return
	}
	rows, err := store.Load(context.Background(), sheetName)
	if err != nil {
		slog.Error("load failed", slog.String("sheet", sheetName), slog.Any("error", err))
		fmt.Fprintf(out, "ERROR: %v\n", err)
		return
	}
	sheetRows := make([]sheet.SessionRow, len(rows))
	for i, r := range rows {
		sheetRows[i] = sheet.SessionRow{CellID: r.CellID, Source: r.Source}
	}
	if err := s.Restore(sheetRows); err != nil {
		fmt.Fprintf(out, "ERROR: %s\n", sheet.DescribeError(err))
		return
	}
	fmt.Fprintf(out, "loaded %d cell(s) from %q\n", len(sheetRows), sheetName)
}

func printHelp(out io.Writer) {
	fmt.Fprint(out, `commands:
  set <cell> <source...>   parse/recompute a cell's formula
  get <cell>                print a cell's value or error
  delete <cell>             remove a cell
  list                      list every cell id
  save                      persist the sheet to the session store
  load                      restore the sheet from the session store
  help                      print this message
  quit                      exit
`)
}
