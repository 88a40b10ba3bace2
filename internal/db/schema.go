package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	log "github.com/sirupsen/logrus"
)

type execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// Schema creates every table the service uses. All statements are idempotent.
const Schema = `
CREATE TABLE IF NOT EXISTS public.users
(
    id            UUID PRIMARY KEY,
    email         VARCHAR     NOT NULL UNIQUE,
    password_hash VARCHAR     NOT NULL,
    created_at    TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS public.document
(
    user_id    VARCHAR     NOT NULL,
    collection VARCHAR     NOT NULL,
    id         VARCHAR     NOT NULL,
    data       JSONB       NOT NULL DEFAULT '{}',
    created_at TIMESTAMPTZ NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL,
    PRIMARY KEY (user_id, collection, id)
);

CREATE INDEX IF NOT EXISTS ix_document_created_at ON public.document (user_id, collection, created_at DESC);

CREATE TABLE IF NOT EXISTS public.share_link
(
    token         VARCHAR PRIMARY KEY,
    user_id       VARCHAR     NOT NULL,
    label         VARCHAR     NOT NULL DEFAULT '',
    password_hash VARCHAR     NOT NULL,
    created_at    TIMESTAMPTZ NOT NULL,
    expires_at    TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS ix_share_link_user_id ON public.share_link (user_id);
`

func Migrate(ctx context.Context, db execer) error {
	res, err := db.Exec(ctx, Schema)
	if err != nil {
		return fmt.Errorf("run schema: %w", err)
	}
	log.Debugf("db schema applied: %s", res.String())
	return nil
}
