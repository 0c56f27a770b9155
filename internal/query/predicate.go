// Package query composes library listing queries: the predicate tree, the
// permission and filter predicates, sort resolution, and series collapsing.
//
// Column names inside predicates are fixed identifiers chosen by this
// package. Caller-supplied values always travel as bound parameters.
package query

import (
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// Predicate is a boolean condition that renders into a SQL WHERE fragment.
type Predicate interface {
	writeSQL(w *Writer)
}

// Writer accumulates rendered SQL and its positional arguments.
type Writer struct {
	sb   strings.Builder
	args []any
}

// WriteString appends raw SQL.
func (w *Writer) WriteString(s string) {
	w.sb.WriteString(s)
}

// Bind appends a placeholder bound to v.
func (w *Writer) Bind(v any) {
	w.sb.WriteByte('?')
	w.args = append(w.args, v)
}

// Write renders p into the writer.
func (w *Writer) Write(p Predicate) {
	p.writeSQL(w)
}

// String returns the SQL written so far.
func (w *Writer) String() string {
	return w.sb.String()
}

// Args returns the arguments bound so far, in placeholder order.
func (w *Writer) Args() []any {
	return w.args
}

// Render renders a single predicate.
func Render(p Predicate) (string, []any) {
	var w Writer
	p.writeSQL(&w)
	return w.String(), w.Args()
}

// Where renders predicates joined by AND. It returns an empty string when
// there is nothing to restrict.
func Where(preds ...Predicate) (string, []any) {
	preds = compact(preds)
	if len(preds) == 0 {
		return "", nil
	}
	return Render(And(preds...))
}

func compact(preds []Predicate) []Predicate {
	out := preds[:0:0]
	for _, p := range preds {
		if p != nil {
			out = append(out, p)
		}
	}
	return out
}

type andPredicate []Predicate

// And holds when every child holds. An empty And is always true.
func And(preds ...Predicate) Predicate {
	return andPredicate(compact(preds))
}

func (a andPredicate) writeSQL(w *Writer) {
	writeJoined(w, a, " AND ", "1 = 1")
}

type orPredicate []Predicate

// Or holds when any child holds. An empty Or is always false.
func Or(preds ...Predicate) Predicate {
	return orPredicate(compact(preds))
}

func (o orPredicate) writeSQL(w *Writer) {
	writeJoined(w, o, " OR ", "1 = 0")
}

func writeJoined(w *Writer, preds []Predicate, sep, empty string) {
	switch len(preds) {
	case 0:
		w.WriteString(empty)
	case 1:
		preds[0].writeSQL(w)
	default:
		w.WriteString("(")
		for i, p := range preds {
			if i > 0 {
				w.WriteString(sep)
			}
			p.writeSQL(w)
		}
		w.WriteString(")")
	}
}

type notPredicate struct{ p Predicate }

// Not negates a predicate.
func Not(p Predicate) Predicate {
	return notPredicate{p: p}
}

func (n notPredicate) writeSQL(w *Writer) {
	w.WriteString("NOT (")
	n.p.writeSQL(w)
	w.WriteString(")")
}

// Op is a comparison operator.
type Op string

// Comparison operators.
const (
	OpEq  Op = "="
	OpNe  Op = "!="
	OpGt  Op = ">"
	OpGte Op = ">="
	OpLt  Op = "<"
	OpLte Op = "<="
)

type comparison struct {
	expr string
	op   Op
	val  any
}

func (c comparison) writeSQL(w *Writer) {
	w.WriteString(c.expr)
	w.WriteString(" ")
	w.WriteString(string(c.op))
	w.WriteString(" ")
	w.Bind(c.val)
}

// Cmp compares a column expression to a bound value.
func Cmp(expr string, op Op, val any) Predicate {
	return comparison{expr: expr, op: op, val: val}
}

// Eq is Cmp with OpEq.
func Eq(expr string, val any) Predicate {
	return Cmp(expr, OpEq, val)
}

// Gt is Cmp with OpGt.
func Gt(expr string, val any) Predicate {
	return Cmp(expr, OpGt, val)
}

// Gte is Cmp with OpGte.
func Gte(expr string, val any) Predicate {
	return Cmp(expr, OpGte, val)
}

type nullCheck struct {
	expr string
	not  bool
}

func (n nullCheck) writeSQL(w *Writer) {
	w.WriteString(n.expr)
	if n.not {
		w.WriteString(" IS NOT NULL")
		return
	}
	w.WriteString(" IS NULL")
}

// IsNull holds when the expression is NULL.
func IsNull(expr string) Predicate {
	return nullCheck{expr: expr}
}

// NotNull holds when the expression is not NULL.
func NotNull(expr string) Predicate {
	return nullCheck{expr: expr, not: true}
}

// IsTrue holds when a boolean column is set.
func IsTrue(expr string) Predicate {
	return Eq(expr, 1)
}

// IsFalse holds when a boolean column is unset.
func IsFalse(expr string) Predicate {
	return Eq(expr, 0)
}

// NullOrFalse holds when a nullable boolean is NULL or unset.
func NullOrFalse(expr string) Predicate {
	return Or(IsNull(expr), IsFalse(expr))
}

// NullOrZero holds when a nullable number is NULL or zero.
func NullOrZero(expr string) Predicate {
	return Or(IsNull(expr), Eq(expr, 0))
}

// Blank holds when a text column is NULL or empty.
func Blank(expr string) Predicate {
	return Or(IsNull(expr), Eq(expr, ""))
}

// jsonParam encodes values as a JSON array for json_each(?) parameters.
func jsonParam(values []string) string {
	if values == nil {
		values = []string{}
	}
	b, _ := json.Marshal(values) //nolint:errcheck // []string always marshals
	return string(b)
}

type inList struct {
	expr   string
	values []string
	not    bool
}

func (in inList) writeSQL(w *Writer) {
	w.WriteString(in.expr)
	if in.not {
		w.WriteString(" NOT")
	}
	w.WriteString(" IN (SELECT value FROM json_each(")
	w.Bind(jsonParam(in.values))
	w.WriteString("))")
}

// In holds when the expression equals one of values. The list is bound as
// a single JSON parameter so its length never hits the variable limit.
func In(expr string, values []string) Predicate {
	return inList{expr: expr, values: values}
}

// NotIn holds when the expression equals none of values.
func NotIn(expr string, values []string) Predicate {
	return inList{expr: expr, values: values, not: true}
}

type arrayLength struct {
	expr string
	op   Op
	n    int
}

func (a arrayLength) writeSQL(w *Writer) {
	w.WriteString("json_array_length(")
	w.WriteString(a.expr)
	w.WriteString(") ")
	w.WriteString(string(a.op))
	w.WriteString(" ")
	w.WriteString(strconv.Itoa(a.n))
}

// ArrayLen compares the length of a JSON array column.
func ArrayLen(expr string, op Op, n int) Predicate {
	return arrayLength{expr: expr, op: op, n: n}
}

// EmptyArray holds when a JSON array column is NULL or has no elements.
func EmptyArray(expr string) Predicate {
	return Or(IsNull(expr), ArrayLen(expr, OpEq, 0))
}

type arrayMatch struct {
	expr   string
	values []string
	op     Op
	n      int
}

func (a arrayMatch) writeSQL(w *Writer) {
	w.WriteString("(SELECT count(*) FROM json_each(")
	w.WriteString(a.expr)
	w.WriteString(") AS je WHERE json_valid(")
	w.WriteString(a.expr)
	w.WriteString(") AND je.value IN (SELECT value FROM json_each(")
	w.Bind(jsonParam(a.values))
	w.WriteString("))) ")
	w.WriteString(string(a.op))
	w.WriteString(" ")
	w.WriteString(strconv.Itoa(a.n))
}

// ArrayContainsAny holds when a JSON array column shares at least one
// element with values.
func ArrayContainsAny(expr string, values []string) Predicate {
	return arrayMatch{expr: expr, values: values, op: OpGte, n: 1}
}

// ArrayContainsNone holds when a JSON array column shares no element with values.
func ArrayContainsNone(expr string, values []string) Predicate {
	return arrayMatch{expr: expr, values: values, op: OpEq, n: 0}
}

type substring struct {
	expr string
	sub  string
}

func (s substring) writeSQL(w *Writer) {
	w.WriteString("instr(")
	w.WriteString(s.expr)
	w.WriteString(", ")
	w.Bind(s.sub)
	w.WriteString(") > 0")
}

// Contains holds when a text column contains sub (case-sensitive).
func Contains(expr, sub string) Predicate {
	return substring{expr: expr, sub: sub}
}

type exists struct {
	sql  string
	args []any
	not  bool
}

func (e exists) writeSQL(w *Writer) {
	if e.not {
		w.WriteString("NOT ")
	}
	w.WriteString("EXISTS (")
	w.WriteString(e.sql)
	w.WriteString(")")
	w.args = append(w.args, e.args...)
}

// Exists holds when the correlated subquery returns a row. The subquery text
// is fixed by this package; args bind its placeholders in order.
func Exists(subquery string, args ...any) Predicate {
	return exists{sql: subquery, args: args}
}

// NotExists holds when the correlated subquery returns no row.
func NotExists(subquery string, args ...any) Predicate {
	return exists{sql: subquery, args: args, not: true}
}
