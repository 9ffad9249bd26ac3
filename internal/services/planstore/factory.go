package planstore

import (
	"context"
	"fmt"

	"bizplan/internal/services/storage"
)

// Backend kinds accepted by Options.Kind
const (
	KindFile      = "file"
	KindMemory    = "memory"
	KindSQLite    = "sqlite"
	KindPostgres  = "postgres"
	KindDynamoDB  = "dynamodb"
	KindFirestore = "firestore"
)

// Kinds lists the supported backends
var Kinds = []string{KindFile, KindMemory, KindSQLite, KindPostgres, KindDynamoDB, KindFirestore}

// Options selects and configures a backend
type Options struct {
	Kind       string
	DocumentID string

	SQLitePath  string
	PostgresURL string
	DynamoDB    DynamoDBOptions

	FirestoreProject    string
	FirestoreCollection string
}

// OpenBackend builds the backend named by opts.Kind. store is used by the
// file backend only.
func OpenBackend(ctx context.Context, opts Options, store *storage.Storage) (Backend, error) {
	id := opts.DocumentID
	if id == "" {
		id = DefaultDocumentID
	}

	switch opts.Kind {
	case KindFile, "":
		if store == nil {
			return nil, fmt.Errorf("file backend needs a data directory")
		}
		return NewFile(store), nil
	case KindMemory:
		return NewMemory(), nil
	case KindSQLite:
		return NewSQLite(ctx, opts.SQLitePath, id)
	case KindPostgres:
		return NewPostgres(ctx, opts.PostgresURL, id)
	case KindDynamoDB:
		dyn := opts.DynamoDB
		if dyn.DocumentID == "" {
			dyn.DocumentID = id
		}
		return NewDynamoDB(ctx, dyn)
	case KindFirestore:
		return NewFirestore(ctx, opts.FirestoreProject, opts.FirestoreCollection, id)
	}
	return nil, fmt.Errorf("unknown plan store %q", opts.Kind)
}
