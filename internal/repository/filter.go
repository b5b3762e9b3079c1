package repository

import (
	"strings"

	"github.com/segyhp/lending-engine/internal/domain"
)

// conditions collects AND-ed WHERE clauses written with ? bind variables.
// Queries built from it go through sqlx Rebind before execution.
type conditions struct {
	clauses []string
	args    []interface{}
}

func (c *conditions) add(clause string, args ...interface{}) {
	c.clauses = append(c.clauses, clause)
	c.args = append(c.args, args...)
}

func (c *conditions) where() string {
	if len(c.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(c.clauses, " AND ")
}

// paged returns the filter arguments followed by LIMIT and OFFSET values.
func (c *conditions) paged(page domain.PageRequest) []interface{} {
	page = page.Normalize()
	args := make([]interface{}, 0, len(c.args)+2)
	args = append(args, c.args...)
	return append(args, page.Limit, page.Offset())
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern turns free text into an ILIKE pattern matching it anywhere.
func containsPattern(search string) string {
	return "%" + likeEscaper.Replace(search) + "%"
}
