package database

import (
	"context"
	"errors"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/xavierca1/lead-dashboard/internal/entity"
)

// SnapshotSink receives every full snapshot of a watched collection.
type SnapshotSink interface {
	Apply(c entity.Collection, snap entity.Snapshot)
}

// SnapshotIterator yields whole-collection snapshots until it fails.
type SnapshotIterator interface {
	Next() (entity.Snapshot, error)
	Stop()
}

// Subscriber opens a live query on a collection.
type Subscriber interface {
	Subscribe(ctx context.Context, c entity.Collection) SnapshotIterator
}

type SnapshotWatcher struct {
	Subscriber    Subscriber
	Sink          SnapshotSink
	RetryInterval time.Duration
	OnError       func(collection string)
}

func NewSnapshotWatcher(sub Subscriber, sink SnapshotSink, retry time.Duration) *SnapshotWatcher {
	if retry <= 0 {
		retry = 5 * time.Second
	}
	return &SnapshotWatcher{Subscriber: sub, Sink: sink, RetryInterval: retry}
}

// Run keeps a live subscription on the collection until ctx is done,
// resubscribing after RetryInterval whenever the stream breaks.
func (w *SnapshotWatcher) Run(ctx context.Context, c entity.Collection) {
	log := logrus.WithField("collection", c.Name)
	log.Info("snapshot watcher started")

	for {
		err := w.watchOnce(ctx, c)
		if ctx.Err() != nil {
			log.Info("snapshot watcher stopped")
			return
		}

		log.WithError(err).Warn("snapshot stream interrupted, resubscribing")
		if w.OnError != nil {
			w.OnError(c.Name)
		}

		timer := time.NewTimer(w.RetryInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			log.Info("snapshot watcher stopped")
			return
		case <-timer.C:
		}
	}
}

func (w *SnapshotWatcher) watchOnce(ctx context.Context, c entity.Collection) error {
	it := w.Subscriber.Subscribe(ctx, c)
	defer it.Stop()

	for {
		snap, err := it.Next()
		if err != nil {
			return err
		}
		w.Sink.Apply(c, snap)
	}
}

// FirestoreSubscriber listens to the whole collection. The query is left
// unordered: Firestore drops documents lacking an OrderBy field, and leads
// without a date must still be listed. SortLeads orders the snapshot.
type FirestoreSubscriber struct {
	Client *firestore.Client
}

func NewFirestoreSubscriber(client *firestore.Client) *FirestoreSubscriber {
	return &FirestoreSubscriber{Client: client}
}

func (s *FirestoreSubscriber) Subscribe(ctx context.Context, c entity.Collection) SnapshotIterator {
	return &firestoreIterator{collection: c.Name, it: s.Client.Collection(c.Name).Snapshots(ctx)}
}

type firestoreIterator struct {
	collection string
	it         *firestore.QuerySnapshotIterator
}

func (f *firestoreIterator) Next() (entity.Snapshot, error) {
	qs, err := f.it.Next()
	if err != nil {
		if status.Code(err) == codes.Canceled {
			return entity.Snapshot{}, context.Canceled
		}
		return entity.Snapshot{}, err
	}
	if qs == nil || qs.Documents == nil {
		return entity.Snapshot{}, errors.New("empty query snapshot")
	}

	docs, err := qs.Documents.GetAll()
	if err != nil {
		return entity.Snapshot{}, err
	}
	return ToSnapshot(f.collection, docs, qs.ReadTime), nil
}

func (f *firestoreIterator) Stop() {
	f.it.Stop()
}

// ToSnapshot keeps the query order of docs.
func ToSnapshot(collection string, docs []*firestore.DocumentSnapshot, readTime time.Time) entity.Snapshot {
	records := make([]entity.RawRecord, 0, len(docs))
	for _, d := range docs {
		if d == nil || d.Ref == nil || !d.Exists() {
			continue
		}
		records = append(records, entity.RawRecord{
			ID:         d.Ref.ID,
			Fields:     d.Data(),
			CreateTime: d.CreateTime,
			UpdateTime: d.UpdateTime,
		})
	}
	return entity.Snapshot{Collection: collection, Records: records, ReadTime: readTime}
}
