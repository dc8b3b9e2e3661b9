// Package query turns client list parameters into store-level predicates.
package query

import (
	"fmt"
	"strings"

	"github.com/webforge-app/webforge-backend/internal/content/domain"
)

// TemplateFilter carries the optional template list parameters.
// Empty strings mean the parameter is absent.
type TemplateFilter struct {
	Category string `form:"category"`
	Search   string `form:"search"`
}

// Predicate selects templates: category equality AND (name OR description
// contains the search text, case-insensitively). The zero value matches all.
type Predicate struct {
	category string
	search   string
}

// Build converts a filter into a predicate.
func Build(f TemplateFilter) Predicate {
	return Predicate{
		category: f.Category,
		search:   f.Search,
	}
}

// MatchesAll reports whether the predicate applies no narrowing.
func (p Predicate) MatchesAll() bool {
	return p.category == "" && p.search == ""
}

// Match evaluates the predicate against a single template.
func (p Predicate) Match(t domain.Template) bool {
	if p.category != "" && t.Category != p.category {
		return false
	}
	if p.search != "" {
		needle := strings.ToLower(p.search)
		if !strings.Contains(strings.ToLower(t.Name), needle) &&
			!strings.Contains(strings.ToLower(t.Description), needle) {
			return false
		}
	}
	return true
}

// SQL renders the predicate as a WHERE condition for the templates table.
// Placeholders start at $firstArg. An empty clause means match-all.
func (p Predicate) SQL(firstArg int) (string, []any) {
	var (
		conds []string
		args  []any
	)
	n := firstArg

	if p.category != "" {
		conds = append(conds, fmt.Sprintf("category = $%d", n))
		args = append(args, p.category)
		n++
	}
	if p.search != "" {
		conds = append(conds, fmt.Sprintf(`(name ILIKE $%d ESCAPE '\' OR description ILIKE $%d ESCAPE '\')`, n, n))
		args = append(args, "%"+escapeLike(p.search)+"%")
	}

	return strings.Join(conds, " AND "), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes s match literally inside a LIKE pattern.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// ProjectFilter narrows project listing. An empty OwnerID matches every project.
type ProjectFilter struct {
	OwnerID string `form:"ownerId"`
}

// Match evaluates the filter against a single project.
func (f ProjectFilter) Match(p domain.Project) bool {
	return f.OwnerID == "" || p.OwnerID == f.OwnerID
}

// SQL renders the filter as a WHERE condition for the projects table.
func (f ProjectFilter) SQL(firstArg int) (string, []any) {
	if f.OwnerID == "" {
		return "", nil
	}
	return fmt.Sprintf("owner_id = $%d", firstArg), []any{f.OwnerID}
}
