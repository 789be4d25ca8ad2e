package internal

import (
	"strings"

	"scanner/internal/domain"
)

// DiversificationConfig shapes the crowding penalty ramps. Each ramp is 0 up
// to the start share, rises linearly to the max penalty at the cap share,
// and is flat above it.
type DiversificationConfig struct {
	CategoryStartShare float64 `json:"categoryStartShare"`
	CategoryCapShare   float64 `json:"categoryCapShare"`
	CategoryMaxPenalty float64 `json:"categoryMaxPenalty"`

	CryptoStartShare float64 `json:"cryptoStartShare"`
	CryptoCapShare   float64 `json:"cryptoCapShare"`
	CryptoMaxPenalty float64 `json:"cryptoMaxPenalty"`

	MaxTotalPenalty float64 `json:"maxTotalPenalty"`
}

func DefaultDiversificationConfig() DiversificationConfig {
	return DiversificationConfig{
		CategoryStartShare: 0.18,
		CategoryCapShare:   0.45,
		CategoryMaxPenalty: 8.0,

		CryptoStartShare: 0.25,
		CryptoCapShare:   0.45,
		CryptoMaxPenalty: 2.0,

		MaxTotalPenalty: 10.0,
	}
}

type DiversificationPenalty struct {
	Points float64 `json:"points"`
	Label  string  `json:"label"`

	Category        string  `json:"category"`
	CategoryShare   float64 `json:"categoryShare"`
	CategoryPenalty float64 `json:"categoryPenalty"`

	CryptoShare   float64 `json:"cryptoShare"`
	CryptoPenalty float64 `json:"cryptoPenalty"`
}

// ComputeDiversificationPenalty penalizes an asset for sector and crypto
// crowding in the universe it was scored against. The penalty is in score
// points (0..MaxTotalPenalty) and is subtracted from the final score by the
// aggregator.
func ComputeDiversificationPenalty(record domain.AssetRecord, universe []domain.AssetRecord, cfg DiversificationConfig) DiversificationPenalty {
	out := DiversificationPenalty{
		Category: strings.TrimSpace(record.Sector),
	}

	if out.Category != "" {
		total := 0
		same := 0
		for _, r := range universe {
			sector := strings.TrimSpace(r.Sector)
			if sector == "" {
				continue
			}
			total++
			if strings.EqualFold(sector, out.Category) {
				same++
			}
		}
		if total > 0 {
			out.CategoryShare = float64(same) / float64(total)
			out.CategoryPenalty = linearPenalty(out.CategoryShare, cfg.CategoryStartShare, cfg.CategoryCapShare, cfg.CategoryMaxPenalty)
		}
	}

	if record.IsCrypto() && len(universe) > 0 {
		cryptoCount := 0
		for _, r := range universe {
			if r.IsCrypto() {
				cryptoCount++
			}
		}
		out.CryptoShare = float64(cryptoCount) / float64(len(universe))
		out.CryptoPenalty = linearPenalty(out.CryptoShare, cfg.CryptoStartShare, cfg.CryptoCapShare, cfg.CryptoMaxPenalty)
	}

	out.Points = Clamp(out.CategoryPenalty+out.CryptoPenalty, 0, cfg.MaxTotalPenalty)
	out.Label = penaltyLabel(out.Points)
	return out
}

func linearPenalty(share, start, cap, maxPenalty float64) float64 {
	if share <= start {
		return 0
	}
	if share >= cap {
		return maxPenalty
	}
	span := cap - start
	if span <= 0 {
		return maxPenalty
	}
	return (share - start) / span * maxPenalty
}

func penaltyLabel(points float64) string {
	switch {
	case points >= 6:
		return "high"
	case points >= 3:
		return "medium"
	default:
		return "low"
	}
}
