package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS records (
    seq                  INTEGER PRIMARY KEY AUTOINCREMENT,
    id                   TEXT NOT NULL UNIQUE,
    date                 TEXT NOT NULL,
    amount               TEXT NOT NULL,
    description          TEXT NOT NULL,
    kind                 TEXT NOT NULL DEFAULT 'income',
    created_at           TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS settings (
    id                        INTEGER PRIMARY KEY CHECK (id = 1),
    name                      TEXT NOT NULL DEFAULT '',
    eic                       TEXT NOT NULL DEFAULT '',
    self_insured              INTEGER NOT NULL DEFAULT 1,
    insurance_income          TEXT NOT NULL,
    use_personal_bank_details INTEGER NOT NULL DEFAULT 0,
    updated_at                TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_records_date ON records(date);
`
