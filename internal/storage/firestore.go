package storage

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ClientProvider yields a Firestore client, typically platform/firestore.Provider.
type ClientProvider interface {
	Client(ctx context.Context) (*firestore.Client, error)
}

type firestoreDocument struct {
	Payload   string    `firestore:"payload"`
	UpdatedAt time.Time `firestore:"updatedAt"`
}

// Firestore stores each key as a document in one collection.
type Firestore struct {
	provider   ClientProvider
	collection string
	now        func() time.Time
}

// NewFirestore builds a Firestore-backed KV writing into collection.
func NewFirestore(provider ClientProvider, collection string) *Firestore {
	return &Firestore{
		provider:   provider,
		collection: collection,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (f *Firestore) doc(ctx context.Context, key string) (*firestore.DocumentRef, error) {
	client, err := f.provider.Client(ctx)
	if err != nil {
		return nil, err
	}
	return client.Collection(f.collection).Doc(key), nil
}

// Get implements KV.
func (f *Firestore) Get(ctx context.Context, key string) ([]byte, error) {
	ref, err := f.doc(ctx, key)
	if err != nil {
		return nil, err
	}
	snap, err := ref.Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("firestore get %s: %w", key, err)
	}
	var doc firestoreDocument
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("firestore decode %s: %w", key, err)
	}
	return []byte(doc.Payload), nil
}

// Set implements KV.
func (f *Firestore) Set(ctx context.Context, key string, value []byte) error {
	ref, err := f.doc(ctx, key)
	if err != nil {
		return err
	}
	if _, err := ref.Set(ctx, firestoreDocument{Payload: string(value), UpdatedAt: f.now()}); err != nil {
		return fmt.Errorf("firestore set %s: %w", key, err)
	}
	return nil
}

// Delete implements KV.
func (f *Firestore) Delete(ctx context.Context, key string) error {
	ref, err := f.doc(ctx, key)
	if err != nil {
		return err
	}
	if _, err := ref.Delete(ctx); err != nil && status.Code(err) != codes.NotFound {
		return fmt.Errorf("firestore delete %s: %w", key, err)
	}
	return nil
}
