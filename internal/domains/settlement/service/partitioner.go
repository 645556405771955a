package service

// IDRange is one contiguous, inclusive payment-id partition owned by a single
// batch worker.
type IDRange struct {
	FromID int64 `json:"from_id"`
	ToID   int64 `json:"to_id"`
}

// Empty reports a degenerate range that cannot match any row.
func (r IDRange) Empty() bool {
	return r.FromID > r.ToID || (r.FromID == 0 && r.ToID == 0)
}

// PaymentPartitioner splits a payment-id range into gridSize contiguous
// partitions for parallel workers. The partitions are pairwise disjoint and
// jointly exhaustive over [minID, maxID]; that tiling is what makes parallel
// settlement creation safe.
type PaymentPartitioner struct{}

func NewPaymentPartitioner() *PaymentPartitioner {
	return &PaymentPartitioner{}
}

// Partition computes the grid. With zero eligible payments it emits exactly
// one empty (0,0) partition. Partitions 0..N-2 each cover rangeSize ids; the
// final partition absorbs the remainder up to maxID and may be larger.
func (p *PaymentPartitioner) Partition(minID, maxID, count int64, gridSize int) []IDRange {
	if gridSize < 1 {
		gridSize = 1
	}
	if count == 0 {
		return []IDRange{{FromID: 0, ToID: 0}}
	}

	rangeSize := (maxID - minID + 1) / int64(gridSize)
	if rangeSize < 1 {
		rangeSize = 1
	}

	partitions := make([]IDRange, 0, gridSize)
	from := minID
	for i := 0; i < gridSize-1; i++ {
		partitions = append(partitions, IDRange{FromID: from, ToID: from + rangeSize - 1})
		from += rangeSize
	}
	partitions = append(partitions, IDRange{FromID: from, ToID: maxID})

	return partitions
}
