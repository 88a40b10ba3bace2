package share

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"

	"github.com/ponta-ta-taro/tralog4/internal/telemetry/tracing"
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) Add(ctx context.Context, link StoredLink) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.share.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("user.id", link.UserID))

	_, err = r.db.Exec(
		ctx,
		`INSERT INTO share_link (token, user_id, label, password_hash, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6);`,
		link.Token, link.UserID, link.Label, link.PasswordHash, link.CreatedAt, link.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("insert share link: %w", err)
	}
	return nil
}

func (r *Repo) Get(ctx context.Context, token string) (_ *StoredLink, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.share.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var link StoredLink
	err = r.db.QueryRow(
		ctx,
		`SELECT token, user_id, label, password_hash, created_at, expires_at FROM share_link WHERE token = $1;`,
		token,
	).Scan(&link.Token, &link.UserID, &link.Label, &link.PasswordHash, &link.CreatedAt, &link.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLinkNotFound
		}
		return nil, fmt.Errorf("get share link: %w", err)
	}

	return &link, nil
}

func (r *Repo) List(ctx context.Context, userID string) (_ []Link, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.share.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		`SELECT token, user_id, label, created_at, expires_at FROM share_link
		WHERE user_id = $1 ORDER BY created_at DESC;`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list share links: %w", err)
	}
	defer rows.Close()

	var links []Link
	for rows.Next() {
		var link Link
		if err := rows.Scan(&link.Token, &link.UserID, &link.Label, &link.CreatedAt, &link.ExpiresAt); err != nil {
			return nil, fmt.Errorf("scan share link: %w", err)
		}
		links = append(links, link)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int("share.links", len(links)))
	return links, nil
}

// Delete removes the link only if it belongs to userID.
func (r *Repo) Delete(ctx context.Context, userID, token string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.share.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	tag, err := r.db.Exec(
		ctx,
		`DELETE FROM share_link WHERE token = $1 AND user_id = $2;`,
		token, userID,
	)
	if err != nil {
		return fmt.Errorf("delete share link: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrLinkNotFound
	}
	return nil
}
