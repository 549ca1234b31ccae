package postgres

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/pos-api/internal/domain/repository"
)

const dateLayout = "2006-01-02"

// ListQuery arma el WHERE de los listados a partir de filtros tipados.
// Las columnas son siempre constantes del repositorio; los valores viajan como argumentos $n.
// El mismo ListQuery produce el SELECT paginado y el COUNT con idénticos argumentos.
type ListQuery struct {
	conds []string
	args  []any
}

func newListQuery() *ListQuery {
	return &ListQuery{}
}

func (q *ListQuery) arg(v any) string {
	q.args = append(q.args, v)
	return "$" + strconv.Itoa(len(q.args))
}

// Eq agrega col = v; se ignora si v es vacío.
func (q *ListQuery) Eq(col, v string) *ListQuery {
	if v == "" {
		return q
	}
	q.conds = append(q.conds, col+" = "+q.arg(v))
	return q
}

// Bool agrega col = v si v no es nil.
func (q *ListQuery) Bool(col string, v *bool) *ListQuery {
	if v == nil {
		return q
	}
	q.conds = append(q.conds, col+" = "+q.arg(*v))
	return q
}

// Gte agrega col >= v si v no es nil.
func (q *ListQuery) Gte(col string, v *decimal.Decimal) *ListQuery {
	if v == nil {
		return q
	}
	q.conds = append(q.conds, col+" >= "+q.arg(*v))
	return q
}

// Lte agrega col <= v si v no es nil.
func (q *ListQuery) Lte(col string, v *decimal.Decimal) *ListQuery {
	if v == nil {
		return q
	}
	q.conds = append(q.conds, col+" <= "+q.arg(*v))
	return q
}

// DateFrom incluye desde el inicio del día. Fechas que no son YYYY-MM-DD se ignoran.
func (q *ListQuery) DateFrom(col, date string) *ListQuery {
	d, ok := parseDate(date)
	if !ok {
		return q
	}
	q.conds = append(q.conds, col+" >= "+q.arg(d))
	return q
}

// DateTo incluye el día completo.
func (q *ListQuery) DateTo(col, date string) *ListQuery {
	d, ok := parseDate(date)
	if !ok {
		return q
	}
	q.conds = append(q.conds, col+" < "+q.arg(d.AddDate(0, 0, 1)))
	return q
}

// Search agrega (c1 ILIKE $n OR c2 ILIKE $n ...) con un único argumento.
func (q *ListQuery) Search(term string, cols ...string) *ListQuery {
	term = strings.TrimSpace(term)
	if term == "" || len(cols) == 0 {
		return q
	}
	p := q.arg("%" + term + "%")
	parts := make([]string, len(cols))
	for i, c := range cols {
		parts[i] = c + " ILIKE " + p
	}
	q.conds = append(q.conds, "("+strings.Join(parts, " OR ")+")")
	return q
}

// Where agrega un predicado fijo; cada ? se reemplaza por el siguiente argumento.
func (q *ListQuery) Where(predicate string, args ...any) *ListQuery {
	var b strings.Builder
	i := 0
	for _, r := range predicate {
		if r == '?' && i < len(args) {
			b.WriteString(q.arg(args[i]))
			i++
			continue
		}
		b.WriteRune(r)
	}
	q.conds = append(q.conds, b.String())
	return q
}

// WhereClause devuelve " WHERE ..." o "" si no hay condiciones.
func (q *ListQuery) WhereClause() string {
	if len(q.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(q.conds, " AND ")
}

// Args argumentos del WHERE.
func (q *ListQuery) Args() []any {
	return append([]any(nil), q.args...)
}

// Select compone base + WHERE + tail (GROUP BY / ORDER BY) + LIMIT/OFFSET.
func (q *ListQuery) Select(base, tail string, page repository.Page) (string, []any) {
	args := q.Args()
	n := len(args)
	args = append(args, page.Limit, page.Offset())
	sql := base + q.WhereClause()
	if tail != "" {
		sql += " " + tail
	}
	sql += " LIMIT $" + strconv.Itoa(n+1) + " OFFSET $" + strconv.Itoa(n+2)
	return sql, args
}

// SelectAll igual que Select pero sin paginar.
func (q *ListQuery) SelectAll(base, tail string) (string, []any) {
	sql := base + q.WhereClause()
	if tail != "" {
		sql += " " + tail
	}
	return sql, q.Args()
}

// Count compone el COUNT con el mismo WHERE y argumentos.
func (q *ListQuery) Count(base string) (string, []any) {
	return base + q.WhereClause(), q.Args()
}

func parseDate(s string) (time.Time, bool) {
	if len(s) != len(dateLayout) {
		return time.Time{}, false
	}
	d, err := time.ParseInLocation(dateLayout, s, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}
