package sqlxrepos

import (
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/womanacademy/renluyen/core"
)

const uniqueViolation = "23505"

// where accumulates AND-ed clauses with positional arguments.
type where struct {
	clauses []string
	args    []interface{}
}

// add appends a clause whose "%d" verbs are all replaced by the position of arg.
func (w *where) add(clause string, arg interface{}) {
	w.args = append(w.args, arg)
	n := len(w.args)
	w.clauses = append(w.clauses, strings.ReplaceAll(clause, "%d", fmt.Sprint(n)))
}

func (w *where) String() string {
	if len(w.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.clauses, " AND ")
}

func orderBy(orderings []core.DBOrdering, columns map[string]string, fallback string) string {
	cleaned := core.CleanOrderings(orderings, columns)
	parts := make([]string, 0, len(cleaned)+1)
	for _, ord := range cleaned {
		parts = append(parts, ord.String())
	}
	parts = append(parts, fallback)
	return " ORDER BY " + strings.Join(parts, ", ")
}

func isUniqueViolation(err error, constraint string) bool {
	if pqErr, ok := err.(*pq.Error); ok {
		return pqErr.Code == uniqueViolation && (constraint == "" || pqErr.Constraint == constraint)
	}
	return false
}

func likePattern(search string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(search) + "%"
}
