package app

import (
	"context"
	"fmt"
	"time"

	"hr_contract_notifier/internal/domain/contract"
)

// ExpiryScanner finds active contracts whose end date falls inside a lookahead window.
type ExpiryScanner struct {
	contracts contract.Repository
	now       func() time.Time
}

func NewExpiryScanner(contracts contract.Repository, now func() time.Time) *ExpiryScanner {
	if now == nil {
		now = time.Now
	}
	return &ExpiryScanner{contracts: contracts, now: now}
}

// Today returns the current calendar day in local time.
func (s *ExpiryScanner) Today() time.Time {
	return contract.DateOnly(s.now())
}

// Scan returns contracts with status ACTIVE and today < end_date <= today+thresholdDays.
// An empty window yields an empty slice, not an error. Negative thresholds are treated as 0.
func (s *ExpiryScanner) Scan(ctx context.Context, thresholdDays int) ([]*contract.Contract, error) {
	if thresholdDays < 0 {
		thresholdDays = 0
	}
	today := s.Today()
	until := today.AddDate(0, 0, thresholdDays)

	candidates, err := s.contracts.ListActiveEndingBetween(ctx, today, until)
	if err != nil {
		return nil, fmt.Errorf("failed to query expiring contracts: %w", err)
	}

	matched := make([]*contract.Contract, 0, len(candidates))
	for _, c := range candidates {
		if c != nil && c.ExpiresWithin(today, thresholdDays) {
			matched = append(matched, c)
		}
	}
	return matched, nil
}
