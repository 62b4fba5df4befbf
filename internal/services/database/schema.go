package database

// Schema holds the personal and financial part of a shopper profile.
// Lifestyle preferences live in the preference store, not here.
const Schema = `
CREATE TABLE IF NOT EXISTS profiles (
    user_id              VARCHAR(64) PRIMARY KEY,
    name                 TEXT NOT NULL DEFAULT '',
    email                TEXT NOT NULL DEFAULT '',
    phone                TEXT NOT NULL DEFAULT '',
    ssn_placeholder      TEXT NOT NULL DEFAULT '',
    employment_status    TEXT NOT NULL DEFAULT '',
    annual_income        TEXT NOT NULL DEFAULT '',
    down_payment         TEXT NOT NULL DEFAULT '',
    loan_term_preference TEXT NOT NULL DEFAULT '',
    created_at           TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at           TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_profiles_email ON profiles (email);
`
