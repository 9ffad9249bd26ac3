package planstore

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type planRecord struct {
	Body      string    `firestore:"body"`
	UpdatedAt time.Time `firestore:"updatedAt"`
}

// FirestoreBackend keeps the plan document in a Firestore collection.
// FIRESTORE_EMULATOR_HOST is honored by the client library.
type FirestoreBackend struct {
	client *firestore.Client
	doc    *firestore.DocumentRef
}

// NewFirestore connects to projectID and addresses collection/docID
func NewFirestore(ctx context.Context, projectID, collection, docID string) (*FirestoreBackend, error) {
	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("create firestore client: %w", err)
	}
	return &FirestoreBackend{client: client, doc: client.Collection(collection).Doc(docID)}, nil
}

func (b *FirestoreBackend) Name() string { return "firestore" }

func (b *FirestoreBackend) Load(ctx context.Context) ([]byte, error) {
	snap, err := b.doc.Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get plan document: %w", err)
	}

	var rec planRecord
	if err := snap.DataTo(&rec); err != nil {
		return nil, fmt.Errorf("decode plan document: %w", err)
	}
	return []byte(rec.Body), nil
}

func (b *FirestoreBackend) Save(ctx context.Context, data []byte) error {
	_, err := b.doc.Set(ctx, planRecord{Body: string(data), UpdatedAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("set plan document: %w", err)
	}
	return nil
}

func (b *FirestoreBackend) Close() error {
	return b.client.Close()
}
