// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// CandidateReason tags how a price candidate was matched.
type CandidateReason string

const (
	// ReasonKeyword marks a candidate anchored to a total-price keyword.
	ReasonKeyword CandidateReason = "keyword"
	// ReasonGeneric marks a candidate matched by a bare currency pattern.
	ReasonGeneric CandidateReason = "generic"
)

// PriceCandidate is one numeric price mention found in a bid document.
// Candidates are ephemeral: they exist only between page scanning and
// selection, and only the selected value survives.
type PriceCandidate struct {
	// Value is the parsed amount with thousands separators removed.
	Value float64 `json:"value"`

	// Page is the zero-based page index the mention was found on.
	Page int `json:"page"`

	// Confidence ranks credibility, roughly in [0, 135]: pattern base plus
	// section, numeral-crosscheck, and magnitude bonuses.
	Confidence float64 `json:"confidence"`

	// Reason records which pattern family produced the candidate.
	Reason CandidateReason `json:"reason"`
}

// BidderPriceSet maps bidder identity to that bidder's extracted price.
// A nil entry records that extraction completed but found nothing; such
// bidders are excluded from the benchmark without blocking scoring.
type BidderPriceSet map[string]*float64

// ValidPrices returns the subset of bidders with a usable price (> 0).
func (s BidderPriceSet) ValidPrices() map[string]float64 {
	valid := make(map[string]float64)
	for bidder, p := range s {
		if p != nil && *p > 0 {
			valid[bidder] = *p
		}
	}
	return valid
}

// PriceScoreResult maps bidder identity to a computed price score.
type PriceScoreResult map[string]float64

// ScoredItem is one entry of a bidder's detailed score breakdown, mirroring
// the rule tree with per-criterion awarded scores.
type ScoredItem struct {
	CriteriaName    string        `json:"criteria_name" yaml:"criteria_name"`
	MaxScore        float64       `json:"max_score" yaml:"max_score"`
	Score           float64       `json:"score" yaml:"score"`
	Reason          string        `json:"reason,omitempty" yaml:"reason,omitempty"`
	IsPriceCriteria bool          `json:"is_price_criteria" yaml:"is_price_criteria"`
	Children        []*ScoredItem `json:"children,omitempty" yaml:"children,omitempty"`
}

// BidderResult is one bidder's persisted evaluation record.
type BidderResult struct {
	Bidder         string        `json:"bidder" yaml:"bidder"`
	ExtractedPrice *float64      `json:"extracted_price" yaml:"extracted_price"`
	PriceScore     float64       `json:"price_score" yaml:"price_score"`
	TotalScore     float64       `json:"total_score" yaml:"total_score"`
	Breakdown      []*ScoredItem `json:"breakdown" yaml:"breakdown"`
}
