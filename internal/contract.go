package internal

import (
	"fmt"
	"strings"

	"scanner/internal/domain"
)

// ContractViolationError means the score/status invariant broke somewhere
// upstream. It is fatal to downstream publishing: a plan built from an
// inconsistent snapshot cannot be trusted.
type ContractViolationError struct {
	Violations []string
}

func (e ContractViolationError) Error() string {
	return fmt.Sprintf("score contract violated (%d rows): %s", len(e.Violations), strings.Join(e.Violations, "; "))
}

// ValidateScoreContract checks the score/status pairing over a full scored
// universe:
//   - a nil score must carry NA or ERROR
//   - score == 0 must carry AVOID (stocks) or AVOID_CRYPTO_BEAR (crypto)
//   - a positive score must not carry an AVOID* label
//
// Per-row ERROR statuses are legitimate partial results, not violations.
func ValidateScoreContract(results []domain.ScoreResult) error {
	violations := []string{}

	for _, res := range results {
		if res.Status == domain.ScoreStatusError {
			continue
		}

		if res.FinalScore == nil {
			if res.Status != domain.ScoreStatusNA {
				violations = append(violations, fmt.Sprintf("%s: nil score with status %s", res.Symbol, res.Status))
			}
			continue
		}

		isCrypto := res.Meta.AssetClass == domain.AssetClassCrypto
		if *res.FinalScore == 0 {
			want := domain.ScoreStatusAvoid
			if isCrypto {
				want = domain.ScoreStatusAvoidCryptoBear
			}
			if res.Status != want {
				violations = append(violations, fmt.Sprintf("%s: zero score with status %s, want %s", res.Symbol, res.Status, want))
			}
			continue
		}

		switch res.Status {
		case domain.ScoreStatusAvoid, domain.ScoreStatusAvoidCryptoBear, domain.ScoreStatusNA:
			violations = append(violations, fmt.Sprintf("%s: score %.2f with status %s", res.Symbol, *res.FinalScore, res.Status))
		}
	}

	if len(violations) > 0 {
		return ContractViolationError{Violations: violations}
	}
	return nil
}
