package scheduler

import (
	"context"
	"errors"
	"fmt"

	"log/slog"

	"github.com/hirepipe/hirepipe/pkg/repository"
)

// ErrNoSlots is returned when a role has no free panel slots left.
var ErrNoSlots = errors.New("no panel slots available")

// Scheduler assigns panel slots to candidates. Booking goes through the slot
// repository, which guarantees a slot is handed to exactly one candidate.
type Scheduler struct {
	slots  repository.SlotRepo
	logger *slog.Logger
}

func New(slots repository.SlotRepo, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{slots: slots, logger: logger}
}

// Book reserves the first free slot for the role and returns it. When a slot
// is taken by a concurrent booking between listing and reserving, the next
// candidate slot is tried.
func (s *Scheduler) Book(ctx context.Context, role, candidateID string) (string, error) {
	available, err := s.slots.AvailableSlots(ctx, role)
	if err != nil {
		return "", fmt.Errorf("list slots for %s: %w", role, err)
	}
	if len(available) == 0 {
		return "", fmt.Errorf("role %s: %w", role, ErrNoSlots)
	}

	for _, slot := range available {
		err := s.slots.BookSlot(ctx, role, slot, candidateID)
		if err == nil {
			s.logger.Info("slot booked",
				slog.String("role", role),
				slog.String("slot", slot),
				slog.String("candidate_id", candidateID))
			return slot, nil
		}
		if errors.Is(err, repository.ErrNotFound) {
			// lost the race for this slot, try the next one
			continue
		}
		return "", fmt.Errorf("book slot %s for %s: %w", slot, candidateID, err)
	}

	return "", fmt.Errorf("role %s: %w", role, ErrNoSlots)
}
