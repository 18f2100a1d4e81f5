package postgres

import (
	"strconv"
	"strings"

	"github.com/geocoder89/listinghub/internal/domain/post"
)

const postsSelect = `
	SELECT p.id,
		p.user_id,
		p.title,
		COALESCE(p.body, ''),
		p.rating,
		p.price::float8,
		p.city,
		p.latitude::float8,
		p.longitude::float8,
		p.created_at,
		u.name AS author
	FROM posts p
	LEFT JOIN users u ON p.user_id = u.id
`

// listQuery accumulates WHERE conditions and their bound arguments.
// Values only ever reach the SQL text as $n placeholders.
type listQuery struct {
	conds []string
	args  []any
}

func (q *listQuery) bind(v any) string {
	q.args = append(q.args, v)
	return "$" + strconv.Itoa(len(q.args))
}

// predicate is one feed criterion.
type predicate func(q *listQuery)

func searchPredicate(term string) predicate {
	return func(q *listQuery) {
		ph := q.bind("%" + escapeLike(strings.ToLower(term)) + "%")
		q.conds = append(q.conds, "(LOWER(p.title) LIKE "+ph+" OR LOWER(p.body) LIKE "+ph+")")
	}
}

func minRatingPredicate(min int) predicate {
	return func(q *listQuery) {
		q.conds = append(q.conds, "p.rating >= "+q.bind(min))
	}
}

func cityPredicate(city string) predicate {
	return func(q *listQuery) {
		q.conds = append(q.conds, "LOWER(p.city) = "+q.bind(strings.ToLower(city)))
	}
}

func predicatesFor(f post.ListFilter) []predicate {
	var out []predicate

	if f.Search != nil && *f.Search != "" {
		out = append(out, searchPredicate(*f.Search))
	}

	if f.MinRating != nil {
		out = append(out, minRatingPredicate(*f.MinRating))
	}

	if f.City != nil && *f.City != "" {
		out = append(out, cityPredicate(*f.City))
	}

	return out
}

func orderClause(s post.Sort) string {
	if s == post.SortPrice {
		return "ORDER BY p.price DESC NULLS LAST, p.id DESC"
	}
	return "ORDER BY p.created_at DESC, p.id DESC"
}

func buildListQuery(f post.ListFilter) (string, []any) {
	q := &listQuery{}

	for _, p := range predicatesFor(f) {
		p(q)
	}

	sql := postsSelect

	if len(q.conds) > 0 {
		sql += " WHERE " + strings.Join(q.conds, " AND ")
	}

	sql += " " + orderClause(f.Sort) + " LIMIT " + strconv.Itoa(post.FeedLimit)

	return sql, q.args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes LIKE wildcards in user input match literally.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
