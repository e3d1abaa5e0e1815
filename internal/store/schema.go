package store

// schemaVersionV1 is the first run schema.
const schemaVersionV1 = 1

var schemaV1 = `
CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL);

CREATE TABLE IF NOT EXISTS runs (
	id            TEXT PRIMARY KEY,
	created_at    TEXT NOT NULL,
	responses_dir TEXT NOT NULL,
	ground_truth  TEXT NOT NULL,
	files         INTEGER NOT NULL DEFAULT 0,
	skipped       INTEGER NOT NULL DEFAULT 0,
	records       INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS defects (
	run_id           TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	seq              INTEGER NOT NULL,
	sha              TEXT NOT NULL,
	file             TEXT NOT NULL,
	model            TEXT NOT NULL,
	defect_type      TEXT,
	defect_qualifier TEXT,
	PRIMARY KEY (run_id, seq)
);

CREATE TABLE IF NOT EXISTS scores (
	run_id    TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	axis      TEXT NOT NULL,
	model     TEXT NOT NULL,
	correct   INTEGER NOT NULL,
	incorrect INTEGER NOT NULL,
	PRIMARY KEY (run_id, axis, model)
);

CREATE TABLE IF NOT EXISTS matrices (
	run_id    TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	position  INTEGER NOT NULL,
	category  TEXT NOT NULL,
	model     TEXT NOT NULL,
	labels    TEXT NOT NULL,
	accuracy  REAL NOT NULL,
	precision REAL NOT NULL,
	recall    REAL NOT NULL,
	f1        REAL NOT NULL,
	PRIMARY KEY (run_id, position)
);

CREATE TABLE IF NOT EXISTS matrix_cells (
	run_id    TEXT NOT NULL,
	position  INTEGER NOT NULL,
	actual    TEXT NOT NULL,
	predicted TEXT NOT NULL,
	count     INTEGER NOT NULL,
	PRIMARY KEY (run_id, position, actual, predicted),
	FOREIGN KEY (run_id, position) REFERENCES matrices(run_id, position) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);
`
