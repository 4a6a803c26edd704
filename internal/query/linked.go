package query

// Lookup resolves a query name to its in-memory document.
// It returns false when the name is unknown.
type Lookup func(name string) (*Query, bool)

// LinkedQueries returns the transitive closure of query references reachable
// from q's effective operations, in first-visit order with each name
// appearing at most once.
//
// The reference graph may contain cycles; traversal terminates because a
// name is never visited twice, not because the graph is assumed acyclic.
// References that fail to resolve still appear in the result (the edge
// exists even when the document is missing) but are not recursed into.
func LinkedQueries(q *Query, lookup Lookup) []string {
	seen := make(map[string]struct{})
	var linked []string

	var visit func(q *Query)
	visit = func(q *Query) {
		for _, op := range q.EffectiveOperations() {
			name, ok := op.ReferencesQuery()
			if !ok {
				continue
			}
			if _, dup := seen[name]; dup {
				continue
			}
			seen[name] = struct{}{}
			linked = append(linked, name)

			if ref, ok := lookup(name); ok {
				visit(ref)
			}
		}
	}

	visit(q)
	return linked
}
