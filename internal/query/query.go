// Package query models analysis queries as ordered operation pipelines and
// resolves the dependency edges between them. A query's table source can be
// another query, which makes the set of queries a directed graph; package
// query walks that graph to compute linked-query closures.
package query

import (
	"github.com/goccy/go-json"
)

// Table source types.
const (
	TableTypeQuery = "query"
	TableTypeTable = "table"
)

// Operation types that can carry a table source.
const (
	OpSource = "source"
	OpJoin   = "join"
	OpUnion  = "union"
)

// OpFilterGroup is the operation type for a group of ad-hoc filters.
const OpFilterGroup = "filter_group"

// OpLimit caps the result row count.
const OpLimit = "limit"

// DefaultLimit applies when no limit operation is present.
const DefaultLimit = 100

// TableRef identifies the data source of an operation: either a physical
// table in a data source, or another query by name.
type TableRef struct {
	Type       string `json:"type"`
	QueryName  string `json:"query_name,omitempty"`
	TableName  string `json:"table_name,omitempty"`
	DataSource string `json:"data_source,omitempty"`
}

// Operation is a single step in a query pipeline. Only the fields relevant
// to dependency resolution and result shaping are typed; filter expressions
// and the like stay opaque.
type Operation struct {
	Type    string          `json:"type"`
	Table   *TableRef       `json:"table,omitempty"`
	Limit   int             `json:"limit,omitempty"`
	Filters json.RawMessage `json:"filters,omitempty"`
}

// ReferencesQuery reports whether the operation sources another query, and
// returns its name. Source, join, and union operations can all reference a
// query as their table.
func (op Operation) ReferencesQuery() (string, bool) {
	if op.Table == nil || op.Table.Type != TableTypeQuery || op.Table.QueryName == "" {
		return "", false
	}
	switch op.Type {
	case OpSource, OpJoin, OpUnion:
		return op.Table.QueryName, true
	}
	return "", false
}

// Query is an analysis query: an ordered operation pipeline, optionally
// truncated mid-edit at ActiveOperationIdx.
type Query struct {
	Name       string      `json:"name"`
	Title      string      `json:"title,omitempty"`
	Workbook   string      `json:"workbook,omitempty"`
	Operations []Operation `json:"operations"`

	// ActiveOperationIdx marks the operation currently being edited.
	// When >= 0 and in range, the effective pipeline is truncated to
	// Operations[:ActiveOperationIdx+1]. Use -1 for "no active edit".
	ActiveOperationIdx int `json:"active_operation_idx,omitempty"`
}

// New returns a query with no active edit.
func New(name string) *Query {
	return &Query{Name: name, ActiveOperationIdx: -1}
}

// EffectiveOperations returns the operation list the query currently
// evaluates to: the full pipeline, or its prefix up to and including the
// active operation when one is set. An out-of-range index is ignored.
func (q *Query) EffectiveOperations() []Operation {
	idx := q.ActiveOperationIdx
	if idx >= 0 && idx < len(q.Operations) {
		return q.Operations[:idx+1]
	}
	return q.Operations
}

// WithAdhocFilters returns the effective operations with a filter_group
// operation appended when filters is a non-empty group. The receiver is not
// modified; ad-hoc filters never persist into the document.
func (q *Query) WithAdhocFilters(filters json.RawMessage) []Operation {
	ops := q.EffectiveOperations()
	if len(filters) == 0 {
		return ops
	}
	out := make([]Operation, len(ops), len(ops)+1)
	copy(out, ops)
	return append(out, Operation{Type: OpFilterGroup, Filters: filters})
}

// FirstLimit returns the row limit of the first limit operation in the
// pipeline, or DefaultLimit when none is set.
func (q *Query) FirstLimit() int {
	for _, op := range q.Operations {
		if op.Limit > 0 {
			return op.Limit
		}
	}
	return DefaultLimit
}
