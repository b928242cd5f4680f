package usecase

import (
	"context"
	"time"

	"github.com/xavierca1/lead-dashboard/internal/entity"
	"github.com/xavierca1/lead-dashboard/internal/infra/queue"
)

// SnapshotReader serves the latest normalized snapshot of a collection.
type SnapshotReader interface {
	Leads(collection string) ([]entity.Lead, time.Time, bool)
}

// TransitionPublisher announces applied status changes to downstream consumers.
type TransitionPublisher interface {
	PublishTransition(ctx context.Context, event queue.LeadTransitionEvent) error
}

// TransitionRecorder receives the outcome of every transition attempt.
type TransitionRecorder interface {
	RecordTransition(collection, status, result string)
}
