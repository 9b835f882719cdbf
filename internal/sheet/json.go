package sheet

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/arcanetools/cellweave/internal/lang"
)

// EncodeValue renders a lang.Value as the JSON-like text spec §6 defines
// for host consumption: Int -> number, Bool -> boolean, Str -> quoted
// string, List -> array, Record -> object with keys in ascending order,
// Fun -> the string "<function>", Unit -> null.
func EncodeValue(v lang.Value) string {
	var b strings.Builder
	encodeValue(&b, v)
	return b.String()
}

func encodeValue(b *strings.Builder, v lang.Value) {
	switch v.Kind {
	case lang.KindInt:
		b.WriteString(strconv.FormatInt(v.Int, 10))
	case lang.KindBool:
		if v.Bool {
			b.WriteString("true")
		} else {
			b.WriteString("false")
		}
	case lang.KindStr:
		b.WriteString(encodeString(v.Str))
	case lang.KindUnit:
		b.WriteString("null")
	case lang.KindList:
		b.WriteByte('[')
		for i, e := range v.List {
			if i > 0 {
				b.WriteByte(',')
			}
			encodeValue(b, e)
		}
		b.WriteByte(']')
	case lang.KindRecord:
		b.WriteByte('{')
		for i, k := range v.Record.Keys() {
			if i > 0 {
				b.WriteByte(',')
			}
			val, _ := v.Record.Get(k)
			b.WriteString(encodeString(k))
			b.WriteByte(':')
			encodeValue(b, val)
		}
		b.WriteByte('}')
	case lang.KindFun:
		b.WriteString(`"<function>"`)
	default:
		b.WriteString("null")
	}
}

func encodeString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if r < 0x20 {
				fmt.Fprintf(&b, `\u%04x`, r)
			} else {
				b.WriteRune(r)
			}
		}
	}
	b.WriteByte('"')
	return b.String()
}
