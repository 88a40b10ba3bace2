package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/ponta-ta-taro/tralog4/internal/telemetry/tracing"
)

var ErrDocumentNotFound = errors.New("document not found")

// Document is a schemaless JSON record owned by a user, addressed by
// (user, collection, id).
type Document struct {
	UserID     string
	Collection string
	ID         string
	Data       json.RawMessage
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type OpKind int

const (
	OpSet OpKind = iota
	OpDelete
)

// Op is a single write in a batch. Set upserts, Delete ignores missing rows.
type Op struct {
	Kind       OpKind
	Collection string
	ID         string
	Data       json.RawMessage
}

func SetOp(collection, id string, data json.RawMessage) Op {
	return Op{Kind: OpSet, Collection: collection, ID: id, Data: data}
}

func DeleteOp(collection, id string) Op {
	return Op{Kind: OpDelete, Collection: collection, ID: id}
}

type Store struct {
	db        *pgxpool.Pool
	NewIDFunc func() string
	Now       func() time.Time
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{
		db:        db,
		NewIDFunc: uuid.NewString,
		Now:       time.Now,
	}
}

// Create inserts a new document, generating an id when none is given.
func (s *Store) Create(ctx context.Context, userID, collection, id string, data json.RawMessage) (_ *Document, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.docstore.create")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("collection", collection))

	if id == "" {
		id = s.NewIDFunc()
	}
	now := s.Now().UTC()

	_, err = s.db.Exec(
		ctx,
		`INSERT INTO document (user_id, collection, id, data, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $5);`,
		userID, collection, id, []byte(data), now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert document: %w", err)
	}

	span.SetAttributes(attribute.String("document.id", id))
	return &Document{
		UserID:     userID,
		Collection: collection,
		ID:         id,
		Data:       data,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

func (s *Store) Get(ctx context.Context, userID, collection, id string) (_ *Document, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.docstore.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("collection", collection))
	span.SetAttributes(attribute.String("document.id", id))

	rows, err := s.db.Query(
		ctx,
		`SELECT user_id, collection, id, data, created_at, updated_at
			FROM document
			WHERE user_id = $1 AND collection = $2 AND id = $3;`,
		userID, collection, id,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	docs, err := rows2documents(rows)
	if err != nil {
		return nil, err
	}
	if len(docs) != 1 {
		return nil, ErrDocumentNotFound
	}

	return &docs[0], nil
}

// Update replaces the data of an existing document.
func (s *Store) Update(ctx context.Context, userID, collection, id string, data json.RawMessage) (_ *Document, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.docstore.update")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("collection", collection))
	span.SetAttributes(attribute.String("document.id", id))

	doc := &Document{
		UserID:     userID,
		Collection: collection,
		ID:         id,
		Data:       data,
	}
	err = s.db.QueryRow(
		ctx,
		`UPDATE document SET data = $4, updated_at = $5
			WHERE user_id = $1 AND collection = $2 AND id = $3
			RETURNING created_at, updated_at;`,
		userID, collection, id, []byte(data), s.Now().UTC(),
	).Scan(&doc.CreatedAt, &doc.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrDocumentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update document: %w", err)
	}

	return doc, nil
}

func (s *Store) Delete(ctx context.Context, userID, collection, id string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.docstore.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("collection", collection))
	span.SetAttributes(attribute.String("document.id", id))

	tag, err := s.db.Exec(
		ctx,
		`DELETE FROM document WHERE user_id = $1 AND collection = $2 AND id = $3;`,
		userID, collection, id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrDocumentNotFound
	}
	return nil
}

// List returns all documents of a user's collection, newest first.
func (s *Store) List(ctx context.Context, userID, collection string) (_ []Document, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.docstore.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("collection", collection))

	rows, err := s.db.Query(
		ctx,
		`SELECT user_id, collection, id, data, created_at, updated_at
			FROM document
			WHERE user_id = $1 AND collection = $2
			ORDER BY created_at DESC, id;`,
		userID, collection,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	docs, err := rows2documents(rows)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("documents.count", len(docs)))

	return docs, nil
}

// BatchWrite applies all ops in a single transaction; either all of them
// are written or none. Set ops without an id get one assigned in place.
func (s *Store) BatchWrite(ctx context.Context, userID string, ops []Op) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.docstore.batchWrite")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("ops.count", len(ops)))

	if len(ops) == 0 {
		return nil
	}

	now := s.Now().UTC()
	batch := &pgx.Batch{}
	for i, op := range ops {
		switch op.Kind {
		case OpSet:
			id := op.ID
			if id == "" {
				id = s.NewIDFunc()
				ops[i].ID = id
			}
			batch.Queue(
				`INSERT INTO document (user_id, collection, id, data, created_at, updated_at)
					VALUES ($1, $2, $3, $4, $5, $5)
					ON CONFLICT (user_id, collection, id)
					DO UPDATE SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at;`,
				userID, op.Collection, id, []byte(op.Data), now,
			)
		case OpDelete:
			batch.Queue(
				`DELETE FROM document WHERE user_id = $1 AND collection = $2 AND id = $3;`,
				userID, op.Collection, op.ID,
			)
		default:
			return fmt.Errorf("unknown batch op kind: %d", op.Kind)
		}
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			log.Errorf("batch write rollback: %s", rbErr)
		}
	}()

	br := tx.SendBatch(ctx, batch)
	for i := range ops {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return fmt.Errorf("batch op %d (%s/%s): %w", i, ops[i].Collection, ops[i].ID, err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("close batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}

	return nil
}

func rows2documents(rows pgx.Rows) ([]Document, error) {
	var docs []Document
	for rows.Next() {
		var doc Document
		var data []byte
		if err := rows.Scan(
			&doc.UserID, &doc.Collection, &doc.ID, &data, &doc.CreatedAt, &doc.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		doc.Data = data
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return docs, nil
}
