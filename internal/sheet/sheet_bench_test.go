package sheet

import (
	"fmt"
	"strings"
	"testing"
)

func BenchmarkLargeCellPopulation(b *testing.B) {
	for i := 0; i < b.N; i++ {
		s := NewSheet()
		for row := 1; row <= 100; row++ {
			for col := 1; col <= 26; col++ {
				id := fmt.Sprintf("%c%d", 'A'+col-1, row)
				s.SetSource(id, fmt.Sprintf("%d", row*col))
			}
		}
	}
}

func BenchmarkPushDependencyChain(b *testing.B) {
	s := NewSheet()
	for i := 99; i >= 1; i-- {
		id := fmt.Sprintf("A%d", i)
		next := fmt.Sprintf("A%d", i+1)
		s.SetSource(id, fmt.Sprintf(`push("%s", 1)`, next))
	}
	s.SetSource("A100", "read()")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.SetSource("A1", fmt.Sprintf(`push("A2", %d)`, i))
	}
}

func BenchmarkWidePushFanOut(b *testing.B) {
	s := NewSheet()
	for i := 2; i <= 500; i++ {
		id := fmt.Sprintf("B%d", i)
		s.SetSource(id, "read()")
	}

	var bindings strings.Builder
	for i := 2; i < 500; i++ {
		fmt.Fprintf(&bindings, "_%d = push(\"B%d\", 1); ", i, i)
	}
	sourceFormula := fmt.Sprintf(`let %sin push("B500", 1)`, bindings.String())

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.SetSource("Source", sourceFormula)
	}
}

func BenchmarkCycleRejectionCost(b *testing.B) {
	for i := 0; i < b.N; i++ {
		s := NewSheet()
		s.SetSource("A", `push("B", 1)`)
		s.SetSource("B", `push("C", 1)`)
		s.SetSource("C", `push("D", 1)`)
		s.SetSource("D", `push("E", 1)`)
		s.SetSource("E", `push("F", 1)`)
		s.SetSource("F", `push("G", 1)`)
		s.SetSource("G", `push("H", 1)`)
		s.SetSource("H", `push("A", 1)`)
	}
}

func BenchmarkManySmallFormulas(b *testing.B) {
	s := NewSheet()
	for row := 1; row <= 100; row++ {
		s.SetSource(fmt.Sprintf("A%d", row), fmt.Sprintf("%d", row))
		s.SetSource(fmt.Sprintf("B%d", row), fmt.Sprintf("A%d * 2", row))
		s.SetSource(fmt.Sprintf("C%d", row), fmt.Sprintf("B%d + A%d", row, row))
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.SetSource("A1", fmt.Sprintf("%d", i))
	}
}

// BenchmarkDirtyPropagationGrid names neighbouring cells by bare id; the
// formula language has no cell references, so those names evaluate as
// unbound variables and each edit of A1 re-evaluates A1 alone.
func BenchmarkDirtyPropagationGrid(b *testing.B) {
	s := NewSheet()
	const grid = 20
	for row := 1; row <= grid; row++ {
		for col := 1; col <= grid; col++ {
			id := fmt.Sprintf("%c%d", 'A'+col-1, row)
			switch {
			case row == 1 && col == 1:
				s.SetSource(id, "1")
			case row == 1:
				prev := fmt.Sprintf("%c%d", 'A'+col-2, row)
				s.SetSource(id, fmt.Sprintf("%s + 1", prev))
			case col == 1:
				prev := fmt.Sprintf("%c%d", 'A'+col-1, row-1)
				s.SetSource(id, fmt.Sprintf("%s + 1", prev))
			default:
				left := fmt.Sprintf("%c%d", 'A'+col-2, row)
				top := fmt.Sprintf("%c%d", 'A'+col-1, row-1)
				s.SetSource(id, fmt.Sprintf("%s + %s", left, top))
			}
		}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.SetSource("A1", fmt.Sprintf("%d", i%100))
	}
}
