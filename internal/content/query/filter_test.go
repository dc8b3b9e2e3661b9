package query

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/webforge-app/webforge-backend/internal/content/domain"
)

var catalog = []domain.Template{
	{ID: "1", Name: "Minimal Portfolio", Description: "Clean and modern portfolio template for creatives", Category: "Portfolio"},
	{ID: "2", Name: "E-Shop Pro", Description: "Full-featured online store template with product showcase", Category: "E-commerce"},
	{ID: "3", Name: "Tech Blog", Description: "Modern blogging template", Category: "Blog"},
	{ID: "4", Name: "Startup Landing", Description: "Convert more visitors with this high-converting template", Category: "Landing Page"},
	{ID: "5", Name: "Creative Agency", Description: "Bold design for creative agencies and studios", Category: "Portfolio"},
	{ID: "6", Name: "100% Pure_CSS", Description: "No scripts", Category: "blog"},
}

func filterIDs(p Predicate) []string {
	var out []string
	for _, t := range catalog {
		if p.Match(t) {
			out = append(out, t.ID)
		}
	}
	return out
}

func TestPredicate_Match(t *testing.T) {
	tests := []struct {
		name   string
		filter TemplateFilter
		want   []string
	}{
		{"no parameters matches all", TemplateFilter{}, []string{"1", "2", "3", "4", "5", "6"}},
		{"category exact", TemplateFilter{Category: "Portfolio"}, []string{"1", "5"}},
		{"category is case-sensitive", TemplateFilter{Category: "Blog"}, []string{"3"}},
		{"unknown category yields nothing", TemplateFilter{Category: "Restaurant"}, nil},
		{"search hits name case-insensitively", TemplateFilter{Search: "blog"}, []string{"3"}},
		{"search hits description", TemplateFilter{Search: "STUDIOS"}, []string{"5"}},
		{"search hits name or description", TemplateFilter{Search: "modern"}, []string{"1", "3"}},
		{"category and search intersect", TemplateFilter{Category: "Portfolio", Search: "creative"}, []string{"1", "5"}},
		{"intersection can be empty", TemplateFilter{Category: "Blog", Search: "store"}, nil},
		{"search is literal, not a pattern", TemplateFilter{Search: "100%"}, []string{"6"}},
		{"regex metacharacters are literal", TemplateFilter{Search: "e.shop"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, filterIDs(Build(tt.filter)))
		})
	}
}

func TestPredicate_CombinedIsIntersection(t *testing.T) {
	for _, c := range []string{"Portfolio", "Blog", "E-commerce", "blog"} {
		for _, s := range []string{"template", "o", "pro", "css"} {
			byCat := filterIDs(Build(TemplateFilter{Category: c}))
			bySearch := filterIDs(Build(TemplateFilter{Search: s}))
			both := filterIDs(Build(TemplateFilter{Category: c, Search: s}))

			var want []string
			for _, id := range byCat {
				for _, other := range bySearch {
					if id == other {
						want = append(want, id)
					}
				}
			}
			assert.Equal(t, want, both, "category=%q search=%q", c, s)
		}
	}
}

func TestPredicate_MatchesAll(t *testing.T) {
	assert.True(t, Build(TemplateFilter{}).MatchesAll())
	assert.True(t, Predicate{}.MatchesAll())
	assert.False(t, Build(TemplateFilter{Category: "Blog"}).MatchesAll())
	assert.False(t, Build(TemplateFilter{Search: "x"}).MatchesAll())
}

func TestPredicate_SQL(t *testing.T) {
	t.Run("match all", func(t *testing.T) {
		clause, args := Build(TemplateFilter{}).SQL(1)
		assert.Empty(t, clause)
		assert.Empty(t, args)
	})

	t.Run("category only", func(t *testing.T) {
		clause, args := Build(TemplateFilter{Category: "Blog"}).SQL(1)
		assert.Equal(t, "category = $1", clause)
		assert.Equal(t, []any{"Blog"}, args)
	})

	t.Run("search only escapes wildcards", func(t *testing.T) {
		clause, args := Build(TemplateFilter{Search: `50%_off\`}).SQL(3)
		assert.Equal(t, `(name ILIKE $3 ESCAPE '\' OR description ILIKE $3 ESCAPE '\')`, clause)
		assert.Equal(t, []any{`%50\%\_off\\%`}, args)
	})

	t.Run("both", func(t *testing.T) {
		clause, args := Build(TemplateFilter{Category: "Blog", Search: "tech"}).SQL(1)
		assert.Equal(t, `category = $1 AND (name ILIKE $2 ESCAPE '\' OR description ILIKE $2 ESCAPE '\')`, clause)
		assert.Equal(t, []any{"Blog", "%tech%"}, args)
	})
}

func TestProjectFilter(t *testing.T) {
	p := domain.Project{OwnerID: "alice"}
	assert.True(t, ProjectFilter{}.Match(p))
	assert.True(t, ProjectFilter{OwnerID: "alice"}.Match(p))
	assert.False(t, ProjectFilter{OwnerID: "bob"}.Match(p))

	clause, args := ProjectFilter{}.SQL(1)
	assert.Empty(t, clause)
	assert.Nil(t, args)

	clause, args = ProjectFilter{OwnerID: "alice"}.SQL(2)
	assert.Equal(t, "owner_id = $2", clause)
	assert.Equal(t, []any{"alice"}, args)
}
