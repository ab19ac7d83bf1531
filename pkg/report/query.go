package report

import (
	"encoding/json"
	"fmt"

	"github.com/itchyny/gojq"

	"github.com/SWORDIntel/AUDIOANALYSISX1-sub000/pkg/forensics"
)

// Query is a pre-parsed jq filter over verdict documents. Parsing happens
// once, at construction, so a bad expression fails before any document is
// touched.
type Query struct {
	expr  string
	query *gojq.Query
}

// ParseQuery compiles a jq expression.
func ParseQuery(expr string) (*Query, error) {
	q, err := gojq.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("report: invalid jq expression %q: %w", expr, err)
	}
	return &Query{expr: expr, query: q}, nil
}

// Expr returns the original expression string.
func (q *Query) Expr() string {
	return q.expr
}

// Run evaluates the filter against the document and returns every emitted
// value encoded as compact JSON, one string per value.
func (q *Query) Run(doc *forensics.Document) ([]string, error) {
	// Round-trip through encoding/json so the filter sees the document
	// the way jq would: maps, slices, and float64.
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("report: marshal document: %w", err)
	}
	var input any
	if err := json.Unmarshal(raw, &input); err != nil {
		return nil, fmt.Errorf("report: unmarshal document: %w", err)
	}

	var out []string
	iter := q.query.Run(input)
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if err, ok := v.(error); ok {
			return nil, fmt.Errorf("report: jq: %w", err)
		}
		enc, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("report: marshal jq result: %w", err)
		}
		out = append(out, string(enc))
	}
	return out, nil
}
