package service

// MergeLine is the identity-and-quantity view of a cart line used by the
// merge algorithm. It is deliberately storage-agnostic so both cookie carts
// and durable carts can feed it.
type MergeLine struct {
	ProductID uint   `json:"product_id"`
	Size      string `json:"size"`
	Color     string `json:"color"`
	Quantity  int    `json:"quantity"`
}

type mergeKey struct {
	productID uint
	size      string
	color     string
}

// ClampWarning reports a line whose merged quantity exceeded the per-line
// cap and was reduced. Callers surface it to the user; the merge itself
// never fails.
type ClampWarning struct {
	ProductID uint   `json:"product_id"`
	Size      string `json:"size"`
	Color     string `json:"color"`
	// Requested is the pre-clamp sum, Applied the post-clamp quantity.
	Requested int `json:"requested"`
	Applied   int `json:"applied"`
}

// MergeResult carries the merged line set plus any clamping that occurred.
type MergeResult struct {
	Lines    []MergeLine    `json:"lines"`
	Warnings []ClampWarning `json:"warnings,omitempty"`
}

// MergeLines combines incoming lines into base lines. Lines with the same
// (product, size, color) identity are summed; sums above the cap are
// clamped, not rejected. Duplicate identities inside the incoming set are
// pre-summed, so the result does not depend on their order. Base lines keep
// their relative order; new identities append in incoming order.
//
// Merging is deterministic: re-applying the same incoming set against the
// same base snapshot always produces the same result. The merge never reads
// its own output, so retrying a failed merge cannot double quantities as
// long as the base was not persisted in between.
func MergeLines(baseLines, incomingLines []MergeLine, maxPerLine int) MergeResult {
	// Pre-sum duplicates in the incoming set.
	incomingTotals := make(map[mergeKey]int)
	incomingOrder := make([]mergeKey, 0, len(incomingLines))
	for _, line := range incomingLines {
		if line.Quantity <= 0 {
			continue
		}
		key := mergeKey{line.ProductID, line.Size, line.Color}
		if _, seen := incomingTotals[key]; !seen {
			incomingOrder = append(incomingOrder, key)
		}
		incomingTotals[key] += line.Quantity
	}

	result := MergeResult{Lines: make([]MergeLine, 0, len(baseLines)+len(incomingOrder))}

	baseIndex := make(map[mergeKey]int)
	for _, line := range baseLines {
		if line.Quantity <= 0 {
			continue
		}
		key := mergeKey{line.ProductID, line.Size, line.Color}
		if idx, seen := baseIndex[key]; seen {
			// A malformed base with duplicate identities collapses too.
			result.Lines[idx].Quantity += line.Quantity
			continue
		}
		baseIndex[key] = len(result.Lines)
		result.Lines = append(result.Lines, line)
	}

	for _, key := range incomingOrder {
		qty := incomingTotals[key]
		if idx, seen := baseIndex[key]; seen {
			result.Lines[idx].Quantity += qty
		} else {
			baseIndex[key] = len(result.Lines)
			result.Lines = append(result.Lines, MergeLine{
				ProductID: key.productID,
				Size:      key.size,
				Color:     key.color,
				Quantity:  qty,
			})
		}
	}

	for i := range result.Lines {
		if result.Lines[i].Quantity > maxPerLine {
			result.Warnings = append(result.Warnings, ClampWarning{
				ProductID: result.Lines[i].ProductID,
				Size:      result.Lines[i].Size,
				Color:     result.Lines[i].Color,
				Requested: result.Lines[i].Quantity,
				Applied:   maxPerLine,
			})
			result.Lines[i].Quantity = maxPerLine
		}
	}

	return result
}

// MergeQuantity is the single-line form used by add-to-cart: sum the
// existing and added quantity, clamp to the cap. Returns the applied
// quantity and whether clamping occurred.
func MergeQuantity(existing, added, maxPerLine int) (int, bool) {
	sum := existing + added
	if sum > maxPerLine {
		return maxPerLine, true
	}
	return sum, false
}
