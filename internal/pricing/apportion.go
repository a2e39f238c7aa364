package pricing

import (
	"math"
	"sort"
)

// FeeTypeTax marks city-tax style fees quoted per guest per night. The PMS
// quotes them without an occupancy cap, so they are the only fees subject
// to quantity capping.
const FeeTypeTax = "tax"

// Fee is one raw fee line from a PMS price quote. TotalNet is the net
// amount for the full Quantity; InclusivePercent is the tax rate already
// contained in the guest-facing gross (0.06 for 6%).
type Fee struct {
	Name             string  `json:"name"`
	Type             string  `json:"type"`
	Quantity         int     `json:"quantity"`
	TotalNet         float64 `json:"total_net"`
	InclusivePercent float64 `json:"inclusive_percent"`
}

// ApportionedFee is a Fee after capping, carrying its guest-facing gross.
type ApportionedFee struct {
	Fee
	Gross float64 `json:"gross"`
}

// Breakdown is the deterministic result of apportioning one fee list.
type Breakdown struct {
	Fees  []ApportionedFee `json:"fees"`
	Total float64          `json:"total"`
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Apportion computes the guest-facing total for a raw fee list. Tax-type
// fees quoted above adults*nights are capped to that quantity at their
// original unit amount. Net contributions accumulate unrounded into
// per-rate buckets; rounding happens only on each fee's gross and on the
// final total. Malformed fees (non-positive quantity, negative rate)
// contribute nothing rather than failing the whole quote.
func Apportion(fees []Fee, adults, nights int) Breakdown {
	maxQuantity := adults * nights
	buckets := make(map[float64]float64)
	out := make([]ApportionedFee, 0, len(fees))

	for _, fee := range fees {
		if fee.Quantity <= 0 || fee.InclusivePercent < 0 {
			out = append(out, ApportionedFee{Fee: fee})
			continue
		}

		rate := fee.InclusivePercent
		if fee.Type == FeeTypeTax && fee.Quantity > maxQuantity {
			unitAmount := fee.TotalNet / float64(fee.Quantity)
			net := unitAmount * float64(maxQuantity)
			capped := fee
			capped.Quantity = maxQuantity
			capped.TotalNet = net
			buckets[rate] += net
			out = append(out, ApportionedFee{Fee: capped, Gross: round2(net * (1 + rate))})
			continue
		}

		buckets[rate] += fee.TotalNet
		out = append(out, ApportionedFee{Fee: fee, Gross: round2(fee.TotalNet * (1 + rate))})
	}

	rates := make([]float64, 0, len(buckets))
	for rate := range buckets {
		rates = append(rates, rate)
	}
	sort.Float64s(rates)

	var total float64
	for _, rate := range rates {
		total += buckets[rate] * (1 + rate)
	}

	return Breakdown{Fees: out, Total: round2(total)}
}
