package graph

import (
	"sort"
	"strings"

	"github.com/agentic-research/familiar-registry/api"
)

// SearchHit is one scored search result (spec.md §4.4 "search").
type SearchHit struct {
	Id    api.SchemaId
	Score int
}

// Search fuzzy-matches query against every node's title and path stem
// (case-insensitively), returning up to limit hits sorted by descending
// Score (ties broken by id order, spec.md §4.4 "Algorithmic notes"). Each
// candidate string's similarity is len(longer of query and candidate) minus
// their edit distance; Score is the higher of the title's and the path
// stem's similarity. An exact match scores len(query); a candidate that
// only adds characters to the query can score the same.
func (g *Graph) Search(query string, limit int) []SearchHit {
	q := strings.ToLower(query)

	hits := make([]SearchHit, 0, len(g.nodes))
	for _, n := range g.nodes {
		title := strings.ToLower(n.Title)
		path := strings.ToLower(stem(n.FilePath))

		best := -1
		for _, cand := range []string{title, path} {
			if cand == "" {
				continue
			}
			dist := levenshtein(q, cand)
			longest := len(q)
			if len(cand) > longest {
				longest = len(cand)
			}
			score := longest - dist
			if score > best {
				best = score
			}
		}
		if best < 0 {
			continue
		}
		hits = append(hits, SearchHit{Id: n.Id, Score: best})
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].Id < hits[j].Id
	})

	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	return hits
}

// levenshtein computes the classic edit distance between a and b.
func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	curr := make([]int, len(rb)+1)

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			del := prev[j] + 1
			ins := curr[j-1] + 1
			sub := prev[j-1] + cost
			curr[j] = min3(del, ins, sub)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

func min3(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}
