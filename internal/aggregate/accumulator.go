package aggregate

import (
	"errors"
	"fmt"
	"sort"

	"failtrack/internal/parser"
	"failtrack/internal/types"
)

// MaxUsersPerIP caps the distinct user names remembered for one address
const MaxUsersPerIP = 50

// ErrMalformedTimestamp means an event reached bucketing with a timestamp the
// parser should never have accepted.
var ErrMalformedTimestamp = errors.New("malformed event timestamp")

// Accumulator counts events per key, remembering the order in which keys
// were first seen.
type Accumulator struct {
	index  map[string]int
	keys   []string
	counts []int
}

// NewAccumulator creates an empty accumulator
func NewAccumulator() *Accumulator {
	return &Accumulator{index: make(map[string]int)}
}

// Add records one occurrence of key and returns its position in encounter order
func (a *Accumulator) Add(key string) int {
	i, ok := a.index[key]
	if !ok {
		i = len(a.keys)
		a.index[key] = i
		a.keys = append(a.keys, key)
		a.counts = append(a.counts, 0)
	}
	a.counts[i]++
	return i
}

// Len returns the number of distinct keys
func (a *Accumulator) Len() int {
	return len(a.keys)
}

// Each calls fn for every key in encounter order
func (a *Accumulator) Each(fn func(key string, count int)) {
	for i, k := range a.keys {
		fn(k, a.counts[i])
	}
}

// CountByAddress counts events per source address. The result is in
// encounter order: addresses appear in the order they were first seen.
func CountByAddress(store types.EventStore) []types.AddressCount {
	acc := NewAccumulator()
	var users [][]string
	seen := make(map[[2]string]bool)

	for _, evt := range store {
		i := acc.Add(evt.IP)
		if i == len(users) {
			users = append(users, nil)
		}
		k := [2]string{evt.IP, evt.User}
		if !seen[k] && len(users[i]) < MaxUsersPerIP {
			seen[k] = true
			users[i] = append(users[i], evt.User)
		}
	}

	out := make([]types.AddressCount, 0, acc.Len())
	acc.Each(func(ip string, n int) {
		i := len(out)
		out = append(out, types.AddressCount{IP: ip, Count: n, Users: users[i]})
	})
	return out
}

// RankByAddress returns a copy of counts ordered by descending count. Equal
// counts keep their relative order, so ties resolve by first encounter.
func RankByAddress(counts []types.AddressCount) []types.AddressCount {
	ranked := make([]types.AddressCount, len(counts))
	copy(ranked, counts)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})
	return ranked
}

// CountByTimeBucket counts events per "HH:MM" minute, ascending. Month and
// day are discarded, so events from different days share buckets.
func CountByTimeBucket(store types.EventStore) ([]types.TimeBucketCount, error) {
	acc := NewAccumulator()
	for _, evt := range store {
		ts, err := parser.ParseTimestamp(evt.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedTimestamp, evt.Line, err)
		}
		acc.Add(ts.Bucket())
	}

	out := make([]types.TimeBucketCount, 0, acc.Len())
	acc.Each(func(bucket string, n int) {
		out = append(out, types.TimeBucketCount{Bucket: bucket, Count: n})
	})
	// Zero-padded HH:MM sorts chronologically as a string.
	sort.Slice(out, func(i, j int) bool {
		return out[i].Bucket < out[j].Bucket
	})
	return out, nil
}
