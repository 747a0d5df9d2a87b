package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gympro-backend/metrics"
	"gympro-backend/models"
	"gympro-backend/repository"

	"github.com/sirupsen/logrus"
)

const (
	MembershipNumberPrefix = "GYM"
	ReceiptNumberPrefix    = "REC"

	// Ordinals are zero padded to this width and grow past it.
	numberWidth = 3

	maxAllocationAttempts = 5
)

// FormatMembershipNumber renders n as GYM001, GYM042, GYM1000, ...
func FormatMembershipNumber(n int64) string {
	return fmt.Sprintf("%s%0*d", MembershipNumberPrefix, numberWidth, n)
}

// FormatReceiptNumber renders the n-th receipt of day as REC20240315001.
func FormatReceiptNumber(day time.Time, n int64) string {
	return fmt.Sprintf("%s%s%0*d", ReceiptNumberPrefix, day.UTC().Format("20060102"), numberWidth, n)
}

// allocator draws numbers from the store's atomic sequences.
type allocator struct {
	sequences repository.SequenceRepository
}

func (a allocator) membershipNumber(ctx context.Context) (string, error) {
	n, err := a.sequences.Next(ctx, models.MembershipNumberSequence)
	if err != nil {
		return "", fmt.Errorf("failed to allocate membership number: %w", err)
	}
	metrics.MembershipNumbersAllocated.Inc()
	return FormatMembershipNumber(n), nil
}

func (a allocator) receiptNumber(ctx context.Context, now time.Time) (string, error) {
	n, err := a.sequences.Next(ctx, models.ReceiptSequence(now))
	if err != nil {
		return "", fmt.Errorf("failed to allocate receipt number: %w", err)
	}
	return FormatReceiptNumber(now, n), nil
}

// retryOnDuplicate reruns attempt while it collides with a unique key. When
// every attempt collides the conflict surfaces as ErrStorageUnavailable.
func retryOnDuplicate(logger *logrus.Logger, kind string, attempt func() error) error {
	for i := 1; i <= maxAllocationAttempts; i++ {
		err := attempt()
		if !errors.Is(err, repository.ErrDuplicate) {
			return err
		}
		metrics.AllocationConflicts.WithLabelValues(kind).Inc()
		logger.WithFields(logrus.Fields{
			"kind":    kind,
			"attempt": i,
		}).Warn("Allocated number already taken, retrying")
	}
	return fmt.Errorf("%w: %s allocation conflicted %d times", ErrStorageUnavailable, kind, maxAllocationAttempts)
}
