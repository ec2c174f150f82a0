package record

import "github.com/shopspring/decimal"

// maxRegularBid is the absolute ceiling above which an unsettled bid is
// flagged regardless of cost.
var maxRegularBid = decimal.NewFromInt(800)

// suspicionRatio is the bid-to-cost ratio above which an unsettled bid
// with a known administrative cost is flagged.
var suspicionRatio = decimal.NewFromInt(5)

// Suspicious classifies the bid. A record with a payment or cancellation
// date reached a terminal, verifiable state and is never flagged. For the
// rest: with a nonzero administrative cost the bid is flagged when the
// bid/cost ratio exceeds 5 or the bid exceeds 800; without a cost, only
// the absolute ceiling applies.
func (r AuctionRecord) Suspicious() bool {
	if r.PayDate != "" || r.AnnulDate != "" {
		return false
	}
	if !r.AdminCost.IsZero() {
		ratio := r.HighBid.Div(r.AdminCost)
		return ratio.GreaterThan(suspicionRatio) || r.HighBid.GreaterThan(maxRegularBid)
	}
	return r.HighBid.GreaterThan(maxRegularBid)
}
