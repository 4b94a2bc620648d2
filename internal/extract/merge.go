package extract

import (
	"sort"

	"github.com/alanyoungcy/polystream/internal/domain"
)

// MergeFilled combines same-block OrderFilled batches from multiple
// contracts into one batch ordered by ordinal. The sort is mandatory:
// without it the output order would depend on which input is processed
// first, which is an implementation artifact rather than a domain property.
// Equal ordinals (impossible when ordinals are block-log-global) keep their
// relative input order.
func MergeFilled(batches ...domain.OrderFilledBatch) domain.OrderFilledBatch {
	var merged domain.OrderFilledBatch
	for i, b := range batches {
		if i == 0 {
			merged.BlockNumber = b.BlockNumber
			merged.BlockHash = b.BlockHash
			merged.Timestamp = b.Timestamp
		}
		merged.Events = append(merged.Events, b.Events...)
	}

	sort.SliceStable(merged.Events, func(i, j int) bool {
		return merged.Events[i].Ordinal < merged.Events[j].Ordinal
	})
	return merged
}

// MergeMatched combines same-block OrdersMatched batches with the same
// ordering contract as MergeFilled.
func MergeMatched(batches ...domain.OrdersMatchedBatch) domain.OrdersMatchedBatch {
	var merged domain.OrdersMatchedBatch
	for i, b := range batches {
		if i == 0 {
			merged.BlockNumber = b.BlockNumber
			merged.BlockHash = b.BlockHash
			merged.Timestamp = b.Timestamp
		}
		merged.Events = append(merged.Events, b.Events...)
	}

	sort.SliceStable(merged.Events, func(i, j int) bool {
		return merged.Events[i].Ordinal < merged.Events[j].Ordinal
	})
	return merged
}
