package tql

import (
	"strings"
)

// Format renders e in canonical TQL. Parsing the output of Format yields an
// equal tree for every well-formed expression. Uninitialized nodes render
// as "?", which does not parse.
func Format(e *Expression) string {
	var sb strings.Builder
	writeExpr(&sb, e, false)
	return sb.String()
}

// writeExpr writes e; nested is set when e appears as an operand of an
// infix chain or of "not", where a bare chain would change meaning.
func writeExpr(sb *strings.Builder, e *Expression, nested bool) {
	if e == nil {
		sb.WriteString("?")
		return
	}

	switch e.Kind {
	case KindAnyTagsMatch:
		writeTagCall(sb, "any", e)
	case KindAllTagsMatch:
		writeTagCall(sb, "all", e)
	case KindNoTagsMatch:
		writeTagCall(sb, "none", e)

	case KindAnyExpressionsMatch, KindAllExpressionsMatch:
		op, fn := " or ", "anyof"
		if e.Kind == KindAllExpressionsMatch {
			op, fn = " and ", "allof"
		}
		if len(e.Expressions) < 2 {
			writeExprCall(sb, fn, e)
			return
		}
		if nested {
			sb.WriteByte('(')
		}
		for i, child := range e.Expressions {
			if i > 0 {
				sb.WriteString(op)
			}
			writeExpr(sb, child, true)
		}
		if nested {
			sb.WriteByte(')')
		}

	case KindNoExpressionsMatch:
		if len(e.Expressions) == 1 {
			sb.WriteString("not ")
			writeExpr(sb, e.Expressions[0], true)
			return
		}
		writeExprCall(sb, "noneof", e)

	default:
		sb.WriteString("?")
	}
}

func writeTagCall(sb *strings.Builder, name string, e *Expression) {
	sb.WriteString(name)
	sb.WriteByte('(')
	for i, t := range e.Tags {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(quoteTag(t.String()))
	}
	sb.WriteByte(')')
}

func writeExprCall(sb *strings.Builder, name string, e *Expression) {
	sb.WriteString(name)
	sb.WriteByte('(')
	for i, child := range e.Expressions {
		if i > 0 {
			sb.WriteString(", ")
		}
		writeExpr(sb, child, false)
	}
	sb.WriteByte(')')
}

// quoteTag quotes names that would not lex back as a plain tag.
func quoteTag(name string) string {
	if name == "" {
		return `""`
	}
	return name
}
