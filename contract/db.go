package contract

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/docflow/docflow/errors"
)

const schema = `
CREATE TABLE IF NOT EXISTS parties (
	id      INTEGER PRIMARY KEY AUTOINCREMENT,
	name    TEXT NOT NULL,
	inn     TEXT,
	kpp     TEXT,
	address TEXT,
	role    TEXT NOT NULL CHECK (role IN ('customer', 'contractor'))
);

CREATE TABLE IF NOT EXISTS contracts (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	number        TEXT NOT NULL,
	date          TEXT NOT NULL,
	subject       TEXT,
	amount        REAL,
	deadline      TEXT,
	penalties     TEXT,
	customer_id   INTEGER NOT NULL REFERENCES parties(id),
	contractor_id INTEGER NOT NULL REFERENCES parties(id),
	created_at    TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS contract_documents (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	contract_id INTEGER NOT NULL REFERENCES contracts(id),
	doc_type    TEXT NOT NULL,
	file_path   TEXT NOT NULL,
	date        TEXT,
	description TEXT
);

CREATE INDEX IF NOT EXISTS idx_parties_role ON parties(role);
CREATE INDEX IF NOT EXISTS idx_contracts_number ON contracts(number);
CREATE INDEX IF NOT EXISTS idx_documents_contract ON contract_documents(contract_id);
CREATE INDEX IF NOT EXISTS idx_documents_type ON contract_documents(doc_type);
`

// Open opens the contract database at path, applies connection pragmas
// and ensures the schema exists. Pass ":memory:" for an ephemeral
// database in tests.
func Open(path string, logger *zap.SugaredLogger) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrap(err, "open contract database")
	}

	// WAL allows concurrent reads during writes
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, errors.Wrapf(err, "apply %q", pragma)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "initialize contract schema")
	}

	if logger != nil {
		logger.Infow("Contract database opened", "path", path)
	}

	return db, nil
}
