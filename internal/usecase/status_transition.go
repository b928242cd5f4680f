package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/xavierca1/lead-dashboard/internal/entity"
	"github.com/xavierca1/lead-dashboard/internal/infra/queue"
)

const DefaultActor = "admin"

const isoMillis = "2006-01-02T15:04:05.000Z"

type TransitionInput struct {
	Collection entity.Collection
	LeadID     string
	Actor      string
	// Confirmed must be set for transitions that need an explicit yes.
	Confirmed bool
}

type TransitionOutput struct {
	LeadID string        `json:"lead_id"`
	Status entity.Status `json:"status"`
	// Applied is false when the lead already had the target status.
	Applied bool       `json:"applied"`
	At      *time.Time `json:"at,omitempty"`
}

// StatusTransitionUseCase moves leads along new -> pushed -> duplicate.
// Each transition reads the stored status first and writes only when it
// would change something; the write is conditioned on the document not
// having moved since the read.
type StatusTransitionUseCase struct {
	Repo         entity.LeadRepositoryInterface
	Events       TransitionPublisher
	Recorder     TransitionRecorder
	DefaultActor string
	Now          func() time.Time

	mu       sync.Mutex
	inFlight map[string]struct{}
}

func NewStatusTransitionUseCase(repo entity.LeadRepositoryInterface, events TransitionPublisher) *StatusTransitionUseCase {
	return &StatusTransitionUseCase{
		Repo:         repo,
		Events:       events,
		DefaultActor: DefaultActor,
		Now:          time.Now,
		inFlight:     make(map[string]struct{}),
	}
}

func (uc *StatusTransitionUseCase) PushLead(ctx context.Context, in TransitionInput) (*TransitionOutput, error) {
	return uc.transition(ctx, in, entity.StatusPushed)
}

func (uc *StatusTransitionUseCase) MarkDuplicate(ctx context.Context, in TransitionInput) (*TransitionOutput, error) {
	if !in.Confirmed {
		return nil, ErrConfirmationRequired
	}
	return uc.transition(ctx, in, entity.StatusDuplicate)
}

// InFlight reports whether a transition for the lead is outstanding.
func (uc *StatusTransitionUseCase) InFlight(collection, id string) bool {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	_, busy := uc.inFlight[flightKey(collection, id)]
	return busy
}

func (uc *StatusTransitionUseCase) transition(ctx context.Context, in TransitionInput, target entity.Status) (out *TransitionOutput, err error) {
	coll := in.Collection
	if !coll.Supports(target) {
		return nil, ErrStatusNotSupported
	}

	key := flightKey(coll.Name, in.LeadID)
	if !uc.acquire(key) {
		return nil, ErrTransitionInFlight
	}
	defer uc.release(key)

	defer func() {
		uc.record(coll.Name, target, out, err)
	}()

	log := logrus.WithFields(logrus.Fields{
		"collection": coll.Name,
		"lead_id":    in.LeadID,
		"status":     target,
	})

	doc, err := uc.Repo.Get(ctx, coll.Name, in.LeadID)
	if err != nil {
		return nil, storeError("failed to read lead", err)
	}

	current := doc.Status.OrDefault()
	if current == target {
		log.Debug("lead already has target status, nothing to write")
		return &TransitionOutput{LeadID: in.LeadID, Status: current, Applied: false}, nil
	}
	if target == entity.StatusPushed && current == entity.StatusDuplicate {
		return nil, ErrInvalidTransition
	}

	now := uc.now()
	fields := map[string]any{"status": string(target)}
	actor := in.Actor
	if actor == "" {
		actor = uc.DefaultActor
	}
	switch target {
	case entity.StatusPushed:
		fields["pushedAt"] = encodeTimestamp(now, coll.TimestampWrites)
	case entity.StatusDuplicate:
		fields["duplicateMarkedAt"] = encodeTimestamp(now, coll.TimestampWrites)
		fields["duplicateMarkedBy"] = actor
	}

	if err := uc.Repo.UpdateFields(ctx, coll.Name, in.LeadID, doc.UpdateTime, fields); err != nil {
		return nil, storeError("failed to update lead status", err)
	}

	log.WithField("from", current).Info("lead status updated")

	uc.publish(ctx, queue.LeadTransitionEvent{
		EventID:    uuid.NewString(),
		Collection: coll.Name,
		LeadID:     in.LeadID,
		From:       string(current),
		To:         string(target),
		Actor:      actor,
		At:         now,
	})

	return &TransitionOutput{LeadID: in.LeadID, Status: target, Applied: true, At: &now}, nil
}

// publish never fails the transition: the write is already in the store.
func (uc *StatusTransitionUseCase) publish(ctx context.Context, ev queue.LeadTransitionEvent) {
	if uc.Events == nil {
		return
	}
	if err := uc.Events.PublishTransition(ctx, ev); err != nil {
		logrus.WithFields(logrus.Fields{
			"collection": ev.Collection,
			"lead_id":    ev.LeadID,
		}).WithError(err).Error("status written but transition event not published")
	}
}

func (uc *StatusTransitionUseCase) record(collection string, target entity.Status, out *TransitionOutput, err error) {
	if uc.Recorder == nil {
		return
	}
	result := "applied"
	switch {
	case err != nil:
		result = DomainCode(err)
		if result == "" {
			result = CodeStoreFailure
		}
	case out != nil && !out.Applied:
		result = "noop"
	}
	uc.Recorder.RecordTransition(collection, string(target), result)
}

func (uc *StatusTransitionUseCase) acquire(key string) bool {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	if uc.inFlight == nil {
		uc.inFlight = make(map[string]struct{})
	}
	if _, busy := uc.inFlight[key]; busy {
		return false
	}
	uc.inFlight[key] = struct{}{}
	return true
}

func (uc *StatusTransitionUseCase) release(key string) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	delete(uc.inFlight, key)
}

func (uc *StatusTransitionUseCase) now() time.Time {
	if uc.Now != nil {
		return uc.Now().UTC()
	}
	return time.Now().UTC()
}

func flightKey(collection, id string) string {
	return collection + "/" + id
}

func encodeTimestamp(t time.Time, enc entity.TimestampEncoding) any {
	if enc == entity.TimestampISO {
		return t.UTC().Format(isoMillis)
	}
	return t
}

func storeError(msg string, err error) error {
	switch {
	case errors.Is(err, entity.ErrLeadNotFound):
		return ErrLeadNotFound
	case errors.Is(err, entity.ErrConcurrentUpdate):
		return ErrLeadChanged
	}
	return &TechnicalError{Code: CodeStoreFailure, Message: msg, Err: err}
}
