package postgres

// Schema creates all tables. Statements are idempotent so applying on boot
// against an existing database is safe.
const Schema = `
CREATE TABLE IF NOT EXISTS users (
    id            UUID PRIMARY KEY,
    email         TEXT NOT NULL UNIQUE,
    display_name  TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    created_at    TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS bags (
    id          UUID PRIMARY KEY,
    name        TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    owner_id    UUID NOT NULL,
    created_at  TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS access_grants (
    bag_id     UUID NOT NULL,
    user_id    UUID NOT NULL,
    role       TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL,
    PRIMARY KEY (bag_id, user_id)
);

CREATE TABLE IF NOT EXISTS invitations (
    id          UUID PRIMARY KEY,
    bag_id      UUID NOT NULL,
    token       TEXT NOT NULL UNIQUE,
    email       TEXT,
    invited_by  UUID NOT NULL,
    status      TEXT NOT NULL,
    created_at  TIMESTAMPTZ NOT NULL,
    expires_at  TIMESTAMPTZ NOT NULL,
    accepted_by UUID,
    accepted_at TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS invitations_bag_idx ON invitations (bag_id, created_at DESC);

CREATE TABLE IF NOT EXISTS items (
    id         UUID PRIMARY KEY,
    bag_id     UUID NOT NULL,
    name       TEXT NOT NULL,
    quantity   INTEGER NOT NULL CHECK (quantity >= 0),
    note       TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS items_bag_idx ON items (bag_id);

CREATE TABLE IF NOT EXISTS item_history (
    id          BIGSERIAL PRIMARY KEY,
    item_id     UUID NOT NULL,
    bag_id      UUID NOT NULL,
    action      TEXT NOT NULL,
    delta       INTEGER NOT NULL,
    actor_id    UUID NOT NULL,
    occurred_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS item_history_item_idx ON item_history (item_id, occurred_at DESC);
`
