package database

import (
	"context"
	"fmt"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/xavierca1/lead-dashboard/internal/entity"
)

type LeadRepository struct {
	Client *firestore.Client
}

func NewLeadRepository(client *firestore.Client) *LeadRepository {
	return &LeadRepository{Client: client}
}

func (r *LeadRepository) Get(ctx context.Context, collection, id string) (*entity.LeadDocument, error) {
	snap, err := r.Client.Collection(collection).Doc(id).Get(ctx)
	if err != nil {
		return nil, mapStoreError(err)
	}

	st, _ := snap.Data()["status"].(string)
	return &entity.LeadDocument{
		ID:         id,
		Status:     entity.Status(st),
		UpdateTime: snap.UpdateTime,
	}, nil
}

// UpdateFields applies a partial update guarded by the update time seen at
// read, so a write racing another client fails instead of double-applying.
func (r *LeadRepository) UpdateFields(ctx context.Context, collection, id string, readAt time.Time, fields map[string]any) error {
	ref := r.Client.Collection(collection).Doc(id)

	// Update already requires the document to exist
	var preconds []firestore.Precondition
	if !readAt.IsZero() {
		preconds = append(preconds, firestore.LastUpdateTime(readAt))
	}

	if _, err := ref.Update(ctx, buildUpdates(fields), preconds...); err != nil {
		return mapStoreError(err)
	}
	return nil
}

// buildUpdates orders the updates by path so writes are reproducible.
func buildUpdates(fields map[string]any) []firestore.Update {
	paths := make([]string, 0, len(fields))
	for p := range fields {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	updates := make([]firestore.Update, 0, len(paths))
	for _, p := range paths {
		updates = append(updates, firestore.Update{Path: p, Value: fields[p]})
	}
	return updates
}

func mapStoreError(err error) error {
	switch status.Code(err) {
	case codes.NotFound:
		return entity.ErrLeadNotFound
	case codes.FailedPrecondition, codes.Aborted:
		return entity.ErrConcurrentUpdate
	}
	return fmt.Errorf("firestore: %w", err)
}
