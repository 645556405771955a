package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPartitionEmptySetYieldsSingleEmptyRange(t *testing.T) {
	p := NewPaymentPartitioner()

	partitions := p.Partition(0, 0, 0, 4)

	require.Len(t, partitions, 1)
	assert.Equal(t, IDRange{FromID: 0, ToID: 0}, partitions[0])
	assert.True(t, partitions[0].Empty())
}

func TestPartitionEvenSplit(t *testing.T) {
	p := NewPaymentPartitioner()

	// 100..199 over 4 workers: 25 ids each.
	partitions := p.Partition(100, 199, 100, 4)

	require.Len(t, partitions, 4)
	assert.Equal(t, IDRange{100, 124}, partitions[0])
	assert.Equal(t, IDRange{125, 149}, partitions[1])
	assert.Equal(t, IDRange{150, 174}, partitions[2])
	assert.Equal(t, IDRange{175, 199}, partitions[3])
}

func TestPartitionLastAbsorbsRemainder(t *testing.T) {
	p := NewPaymentPartitioner()

	// 1..10 over 4 workers: rangeSize 2, last takes 7..10.
	partitions := p.Partition(1, 10, 10, 4)

	require.Len(t, partitions, 4)
	assert.Equal(t, IDRange{1, 2}, partitions[0])
	assert.Equal(t, IDRange{3, 4}, partitions[1])
	assert.Equal(t, IDRange{5, 6}, partitions[2])
	assert.Equal(t, IDRange{7, 10}, partitions[3])
}

func TestPartitionDisjointAndExhaustive(t *testing.T) {
	p := NewPaymentPartitioner()

	cases := []struct {
		min, max, count int64
		grid            int
	}{
		{1, 1000, 1000, 4},
		{500, 503, 4, 4},
		{1, 7, 7, 3},
		{42, 42, 1, 4},
	}

	for _, tc := range cases {
		partitions := p.Partition(tc.min, tc.max, tc.count, tc.grid)

		covered := make(map[int64]int)
		for _, r := range partitions {
			if r.Empty() {
				continue
			}
			for id := r.FromID; id <= r.ToID; id++ {
				covered[id]++
			}
		}

		// Every eligible id is owned by exactly one worker. Ranges may
		// extend past max when the grid outnumbers the ids; those match
		// nothing and are harmless.
		for id := tc.min; id <= tc.max; id++ {
			assert.Equal(t, 1, covered[id], "id %d in [%d,%d]/%d", id, tc.min, tc.max, tc.grid)
		}
	}
}

func TestPartitionTinyRange(t *testing.T) {
	p := NewPaymentPartitioner()

	// 2 ids over 4 workers: rangeSize clamps to 1, trailing ranges fall
	// beyond max and the last one inverts to an empty range.
	partitions := p.Partition(10, 11, 2, 4)

	require.Len(t, partitions, 4)
	assert.Equal(t, IDRange{10, 10}, partitions[0])
	assert.Equal(t, IDRange{11, 11}, partitions[1])
	assert.Equal(t, IDRange{12, 12}, partitions[2])
	assert.True(t, partitions[3].Empty())
}
