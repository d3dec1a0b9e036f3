package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// firestoreDoc is the persisted shape of a canvas document. The snapshot is
// kept as a JSON string so the database never interprets it.
type firestoreDoc struct {
	CanvasData *string   `firestore:"canvasData"`
	CreatedAt  time.Time `firestore:"createdAt"`
	UpdatedAt  time.Time `firestore:"updatedAt"`
}

// Firestore stores canvases in a Cloud Firestore collection. Writes are
// merges stamped with the server time, so the last write wins.
type Firestore struct {
	client     *firestore.Client
	collection string
}

// FirestoreConfig selects the project and collection. An empty Credentials
// path uses application default credentials; FIRESTORE_EMULATOR_HOST is
// honoured by the client.
type FirestoreConfig struct {
	Project     string
	Collection  string
	Credentials string
}

func NewFirestore(ctx context.Context, cfg FirestoreConfig) (*Firestore, error) {
	var opts []option.ClientOption
	if cfg.Credentials != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.Credentials))
	}
	client, err := firestore.NewClient(ctx, cfg.Project, opts...)
	if err != nil {
		return nil, fmt.Errorf("firestore client: %w", err)
	}
	collection := cfg.Collection
	if collection == "" {
		collection = "canvases"
	}
	return &Firestore{client: client, collection: collection}, nil
}

func (f *Firestore) Create(ctx context.Context) (string, error) {
	ref, _, err := f.client.Collection(f.collection).Add(ctx, map[string]interface{}{
		"canvasData": nil,
		"createdAt":  firestore.ServerTimestamp,
		"updatedAt":  firestore.ServerTimestamp,
	})
	if err != nil {
		log.Printf("[STORE] Error creating canvas: %v", err)
		return "", fmt.Errorf("create canvas: %w", err)
	}
	log.Printf("[STORE] Created canvas %s", ref.ID)
	return ref.ID, nil
}

func (f *Firestore) Load(ctx context.Context, id string) (*Document, error) {
	if err := ValidateID(id); err != nil {
		return nil, err
	}
	snap, err := f.client.Collection(f.collection).Doc(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		log.Printf("[STORE] Canvas %s not found", id)
		return nil, fmt.Errorf("load %s: %w", id, ErrNotFound)
	}
	if err != nil {
		log.Printf("[STORE] Error loading canvas %s: %v", id, err)
		return nil, fmt.Errorf("load %s: %w", id, err)
	}
	var rec firestoreDoc
	if err := snap.DataTo(&rec); err != nil {
		return nil, fmt.Errorf("load %s: %w", id, err)
	}
	doc := &Document{ID: id, CreatedAt: rec.CreatedAt, UpdatedAt: rec.UpdatedAt}
	if rec.CanvasData != nil {
		doc.CanvasData = json.RawMessage(*rec.CanvasData)
	}
	return doc, nil
}

func (f *Firestore) Save(ctx context.Context, id string, data json.RawMessage) error {
	if err := ValidateID(id); err != nil {
		return err
	}
	if err := validateData(data); err != nil {
		return fmt.Errorf("save %s: %w", id, err)
	}
	var canvasData interface{}
	if len(data) > 0 {
		canvasData = string(data)
	}
	_, err := f.client.Collection(f.collection).Doc(id).Set(ctx, map[string]interface{}{
		"canvasData": canvasData,
		"updatedAt":  firestore.ServerTimestamp,
	}, firestore.MergeAll)
	if err != nil {
		log.Printf("[STORE] Error saving canvas %s: %v", id, err)
		return fmt.Errorf("save %s: %w", id, err)
	}
	return nil
}

func (f *Firestore) Close() error {
	return f.client.Close()
}
