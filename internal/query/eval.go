package query

import "strconv"

// Evaluate walks an EQL AST against a single View and reports whether it
// matches. Unknown fields and malformed numeric comparisons evaluate to
// false rather than erroring, matching spec.md §4.7's evaluator semantics:
// a query is a filter, not a type-checked expression.
func Evaluate(n Node, v View) bool {
	switch node := n.(type) {
	case Or:
		for _, term := range node.Terms {
			if Evaluate(term, v) {
				return true
			}
		}
		return false
	case And:
		for _, factor := range node.Factors {
			if !Evaluate(factor, v) {
				return false
			}
		}
		return true
	case Not:
		return !Evaluate(node.Inner, v)
	case Link:
		return evalLink(node, v)
	case Condition:
		return evalCondition(node, v)
	default:
		return false
	}
}

func evalLink(l Link, v View) bool {
	for _, c := range v.Connections {
		if c.TargetID == l.TargetID && (l.ConnType == "" || c.Type == l.ConnType) {
			return true
		}
	}
	return false
}

func evalCondition(c Condition, v View) bool {
	switch c.Field {
	case FieldID:
		return compareString(v.ID, c.Op, c.Value)
	case FieldTitle:
		return compareString(v.Title, c.Op, c.Value)
	case FieldType:
		return compareString(v.Type, c.Op, c.Value)
	case FieldTag:
		return evalTag(v, c)
	case FieldPriority:
		return compareString(v.ContextPriority, c.Op, c.Value)
	case FieldContextStatus:
		return compareString(v.ContextStatus, c.Op, c.Value)
	case FieldContextPriority:
		return compareString(v.ContextPriority, c.Op, c.Value)
	case FieldContextAssignee:
		return compareString(v.ContextAssignee, c.Op, c.Value)
	default:
		return false
	}
}

func evalTag(v View, c Condition) bool {
	switch c.Op {
	case OpEq:
		return v.hasTag(c.Value)
	case OpNeq:
		return !v.hasTag(c.Value)
	case OpContains:
		for _, t := range v.Tags {
			if contains(t, c.Value) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// compareString dispatches a single-valued string field comparison,
// falling back to numeric coercion for gt/gte/lt/lte when both sides
// parse as floats (mirrors the toFloat-then-compare idiom used for
// heterogeneous field values elsewhere in the stack).
func compareString(actual string, op Op, expected string) bool {
	switch op {
	case OpEq:
		return actual == expected
	case OpNeq:
		return actual != expected
	case OpContains:
		return contains(actual, expected)
	case OpGt, OpGte, OpLt, OpLte:
		af, aok := toFloat(actual)
		ef, eok := toFloat(expected)
		if aok && eok {
			return compareFloat(af, op, ef)
		}
		return compareLexical(actual, op, expected)
	default:
		return false
	}
}

func compareFloat(a float64, op Op, b float64) bool {
	switch op {
	case OpGt:
		return a > b
	case OpGte:
		return a >= b
	case OpLt:
		return a < b
	case OpLte:
		return a <= b
	default:
		return false
	}
}

func compareLexical(a string, op Op, b string) bool {
	switch op {
	case OpGt:
		return a > b
	case OpGte:
		return a >= b
	case OpLt:
		return a < b
	case OpLte:
		return a <= b
	default:
		return false
	}
}

func toFloat(s string) (float64, bool) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func contains(haystack, needle string) bool {
	return len(needle) == 0 || indexFold(haystack, needle) >= 0
}

// indexFold is a case-insensitive substring search, avoiding a
// strings.ToLower allocation on both arguments for the common case.
func indexFold(haystack, needle string) int {
	hn, nn := len(haystack), len(needle)
	if nn == 0 {
		return 0
	}
	for i := 0; i+nn <= hn; i++ {
		if equalFold(haystack[i:i+nn], needle) {
			return i
		}
	}
	return -1
}

func equalFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if 'A' <= ca && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if 'A' <= cb && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}
