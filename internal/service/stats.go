package service

import (
	"context"
	"fmt"
)

// Stats is the admin-only summary over live records. LargestFile is 0 over
// an empty store.
type Stats struct {
	TotalFiles     int64 `json:"total_files"`
	TotalSize      int64 `json:"total_size"`
	LargestFile    int64 `json:"largest_file"`
	MaximumAllowed int64 `json:"maximum_allowed"`
}

// GetStats aggregates the live records. Non-admin callers get ErrForbidden.
func (s *Service) GetStats(ctx context.Context, caller Caller) (*Stats, error) {
	if !caller.Admin() {
		return nil, fmt.Errorf("stats are admin-only: %w", ErrForbidden)
	}

	count, totalSize, largest, err := s.files.Totals(ctx)
	if err != nil {
		return nil, err
	}
	return &Stats{
		TotalFiles:     count,
		TotalSize:      totalSize,
		LargestFile:    largest,
		MaximumAllowed: s.cfg.MaxFileSize,
	}, nil
}
