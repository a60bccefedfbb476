package postgres

// schema is applied by Migrate. Every statement is idempotent.
const schema = `
CREATE TABLE IF NOT EXISTS project_types (
    key           TEXT PRIMARY KEY,
    display_name  TEXT NOT NULL DEFAULT '',
    base_rate     NUMERIC(14, 2) NOT NULL CHECK (base_rate >= 0),
    sort_order    INTEGER NOT NULL DEFAULT 0,
    is_active     BOOLEAN NOT NULL DEFAULT TRUE
);

CREATE TABLE IF NOT EXISTS base_rate_overrides (
    id                SERIAL PRIMARY KEY,
    project_type_key  TEXT NOT NULL REFERENCES project_types (key),
    client_type_key   TEXT,
    base_rate         NUMERIC(14, 2) NOT NULL CHECK (base_rate >= 0),
    sort_order        INTEGER NOT NULL DEFAULT 0,
    is_active         BOOLEAN NOT NULL DEFAULT TRUE
);

CREATE TABLE IF NOT EXISTS features (
    key           TEXT PRIMARY KEY,
    display_name  TEXT NOT NULL DEFAULT '',
    cost          NUMERIC(14, 2) NOT NULL CHECK (cost >= 0),
    feature_group TEXT,
    sort_order    INTEGER NOT NULL DEFAULT 0,
    is_active     BOOLEAN NOT NULL DEFAULT TRUE
);

CREATE TABLE IF NOT EXISTS multiplier_groups (
    key           TEXT PRIMARY KEY,
    display_name  TEXT NOT NULL DEFAULT '',
    sort_order    INTEGER NOT NULL DEFAULT 0,
    is_active     BOOLEAN NOT NULL DEFAULT TRUE
);

CREATE TABLE IF NOT EXISTS multiplier_options (
    group_key     TEXT NOT NULL REFERENCES multiplier_groups (key),
    option_key    TEXT NOT NULL,
    value         NUMERIC(8, 4) NOT NULL CHECK (value > 0),
    is_fixed      BOOLEAN NOT NULL DEFAULT FALSE,
    display_name  TEXT NOT NULL DEFAULT '',
    sort_order    INTEGER NOT NULL DEFAULT 0,
    is_active     BOOLEAN NOT NULL DEFAULT TRUE,
    PRIMARY KEY (group_key, option_key)
);

CREATE TABLE IF NOT EXISTS pricing_meta (
    id                  INTEGER PRIMARY KEY DEFAULT 1 CHECK (id = 1),
    page_cost_per_unit  NUMERIC(14, 2) NOT NULL,
    range_percent       NUMERIC(5, 4) NOT NULL,
    default_currency    TEXT NOT NULL DEFAULT 'USD'
);

CREATE TABLE IF NOT EXISTS project_minimums (
    project_type_key  TEXT PRIMARY KEY REFERENCES project_types (key),
    amount            NUMERIC(14, 2) NOT NULL
);

CREATE TABLE IF NOT EXISTS discounts (
    code                  TEXT PRIMARY KEY CHECK (code = UPPER(code)),
    discount_type         TEXT NOT NULL CHECK (discount_type IN ('percent', 'fixed')),
    amount                NUMERIC(14, 2) NOT NULL CHECK (amount >= 0),
    currency              TEXT NOT NULL DEFAULT '',
    project_types         TEXT[] NOT NULL DEFAULT '{}',
    features              TEXT[] NOT NULL DEFAULT '{}',
    client_types          TEXT[] NOT NULL DEFAULT '{}',
    exclude_client_types  TEXT[] NOT NULL DEFAULT '{}',
    starts_at             TIMESTAMPTZ,
    ends_at               TIMESTAMPTZ,
    max_uses              INTEGER,
    used_count            INTEGER NOT NULL DEFAULT 0,
    per_user_limit        INTEGER NOT NULL DEFAULT 0,
    is_active             BOOLEAN NOT NULL DEFAULT TRUE
);
`
