// Package transforms provides tree rewrites that dialect render functions
// apply to a copy of a node before rendering it.
package transforms

import (
	"errors"
	"fmt"

	"github.com/leapstack-labs/sqldialect/pkg/core"
)

// ErrInvalidClause is returned for a MERGE action clause that cannot be
// classified: not a When node, no boolean matched flag, or a source flag
// that is not a boolean.
var ErrInvalidClause = errors.New("invalid MERGE action clause")

// MergeBucket is the ordering group of a MERGE action clause.
type MergeBucket int

// Buckets in output order.
const (
	BucketMatchedCond MergeBucket = iota
	BucketMatched
	BucketNotMatchedByTargetCond
	BucketNotMatchedByTarget
	BucketNotMatchedBySourceCond
	BucketNotMatchedBySource

	// NumMergeBuckets is the number of buckets.
	NumMergeBuckets
)

var bucketNames = [NumMergeBuckets]string{
	"MATCHED AND <condition>",
	"MATCHED",
	"NOT MATCHED BY TARGET AND <condition>",
	"NOT MATCHED BY TARGET",
	"NOT MATCHED BY SOURCE AND <condition>",
	"NOT MATCHED BY SOURCE",
}

// String returns the clause form the bucket holds.
func (b MergeBucket) String() string {
	if b >= 0 && b < NumMergeBuckets {
		return bucketNames[b]
	}
	return fmt.Sprintf("MergeBucket(%d)", int(b))
}

// Group returns the category of the bucket ignoring the condition:
// MATCHED, NOT MATCHED BY TARGET or NOT MATCHED BY SOURCE.
func (b MergeBucket) Group() string {
	if b < 0 || b >= NumMergeBuckets {
		return b.String()
	}
	return bucketNames[b-b%2+1]
}

// ClassifyMergeClause returns the bucket of one action clause.
func ClassifyMergeClause(when *core.Node) (MergeBucket, error) {
	if !when.Is(core.KindWhen) {
		return 0, fmt.Errorf("%w: got %s", ErrInvalidClause, kindOf(when))
	}
	v, ok := when.Value(core.ArgMatched)
	matched, isBool := v.(bool)
	if !ok || !isBool {
		return 0, fmt.Errorf("%w: missing boolean matched flag", ErrInvalidClause)
	}

	bySource := false
	if v, ok := when.Value(core.ArgSource); ok {
		b, isBool := v.(bool)
		if !isBool {
			return 0, fmt.Errorf("%w: source flag is %T, not bool", ErrInvalidClause, v)
		}
		bySource = b
	}

	var bucket MergeBucket
	switch {
	case matched:
		bucket = BucketMatchedCond
	case bySource:
		bucket = BucketNotMatchedBySourceCond
	default:
		bucket = BucketNotMatchedByTargetCond
	}
	if !when.Has(core.ArgCondition) {
		bucket++
	}
	return bucket, nil
}

// MergeBuckets holds action clauses by bucket, in input order inside each
// bucket.
type MergeBuckets [NumMergeBuckets][]*core.Node

// BucketMergeClauses distributes clauses over the six buckets.
func BucketMergeClauses(clauses []*core.Node) (MergeBuckets, error) {
	var buckets MergeBuckets
	for i, c := range clauses {
		b, err := ClassifyMergeClause(c)
		if err != nil {
			return buckets, fmt.Errorf("clause %d: %w", i, err)
		}
		buckets[b] = append(buckets[b], c)
	}
	return buckets, nil
}

// Ordered concatenates the buckets in output order.
func (m MergeBuckets) Ordered() []*core.Node {
	n := 0
	for _, b := range m {
		n += len(b)
	}
	out := make([]*core.Node, 0, n)
	for _, b := range m {
		out = append(out, b...)
	}
	return out
}

// Unconditioned reports every group holding more than one clause without
// a condition. Only the last clause of a group may omit its condition on
// engines that evaluate clauses in order, so such input can be rejected
// there.
func (m MergeBuckets) Unconditioned() []MergeBucket {
	var out []MergeBucket
	for _, b := range []MergeBucket{BucketMatched, BucketNotMatchedByTarget, BucketNotMatchedBySource} {
		if len(m[b]) > 1 {
			out = append(out, b)
		}
	}
	return out
}

// ReorderMergeClauses returns the clauses ordered as MATCHED, then NOT
// MATCHED BY TARGET, then NOT MATCHED BY SOURCE, conditioned clauses
// first within each group. The sort is stable and linear. The input slice
// and its nodes are not modified.
func ReorderMergeClauses(clauses []*core.Node) ([]*core.Node, error) {
	buckets, err := BucketMergeClauses(clauses)
	if err != nil {
		return nil, err
	}
	return buckets.Ordered(), nil
}

// UnconditionedGroups is BucketMergeClauses followed by Unconditioned.
func UnconditionedGroups(clauses []*core.Node) ([]MergeBucket, error) {
	buckets, err := BucketMergeClauses(clauses)
	if err != nil {
		return nil, err
	}
	return buckets.Unconditioned(), nil
}

func kindOf(n *core.Node) string {
	if n == nil {
		return "nil"
	}
	return n.Kind.String()
}
