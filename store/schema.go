package store

// schema is the logical schema of spec.md §4.1, realized as SQLite DDL.
// Foreign keys are declared throughout and enforced at the connection
// level by the PRAGMA set in Open — the store never hand-rolls a
// referential check that the engine can do for it.
//
// value rows that hold List/Table elements point at further value rows
// through child_value, recursively, the "recursive child rows for
// list/table values" spec.md §4.1 calls for; a value's own packet_id/
// name_normalized columns are NULL for anything but a top-level value,
// since only top-level values belong directly to a packet.
const schema = `
CREATE TABLE container (
	id        INTEGER PRIMARY KEY,
	parent_id INTEGER REFERENCES container(id) ON DELETE CASCADE
);

CREATE TABLE container_code (
	container_id  INTEGER NOT NULL REFERENCES container(id) ON DELETE CASCADE,
	scope_id      INTEGER NOT NULL, -- 0 for blocks (scope = whole CIF); parent block id for frames
	code_normalized TEXT NOT NULL,
	code_original   TEXT NOT NULL,
	UNIQUE (scope_id, code_normalized)
);
CREATE UNIQUE INDEX container_code_container_id ON container_code(container_id);

CREATE TABLE loop (
	id           INTEGER PRIMARY KEY,
	container_id INTEGER NOT NULL REFERENCES container(id) ON DELETE CASCADE,
	category     TEXT NOT NULL -- '' for the distinguished scalar loop
);

CREATE TABLE loop_item (
	loop_id       INTEGER NOT NULL REFERENCES loop(id) ON DELETE CASCADE,
	container_id  INTEGER NOT NULL REFERENCES container(id) ON DELETE CASCADE,
	name_normalized TEXT NOT NULL,
	name_original   TEXT NOT NULL,
	UNIQUE (container_id, name_normalized)
);

CREATE TABLE packet (
	id         INTEGER PRIMARY KEY,
	loop_id    INTEGER NOT NULL REFERENCES loop(id) ON DELETE CASCADE,
	row_number INTEGER NOT NULL
);
CREATE INDEX packet_loop_row ON packet(loop_id, row_number);

CREATE TABLE value (
	id              INTEGER PRIMARY KEY,
	packet_id       INTEGER REFERENCES packet(id) ON DELETE CASCADE,
	name_normalized TEXT,
	kind            INTEGER NOT NULL,
	text            TEXT,
	quoted          INTEGER NOT NULL DEFAULT 0,
	numeric_su      TEXT
);
CREATE UNIQUE INDEX value_packet_name ON value(packet_id, name_normalized);

CREATE TABLE child_value (
	parent_value_id INTEGER NOT NULL REFERENCES value(id) ON DELETE CASCADE,
	position        INTEGER NOT NULL,
	key_normalized  TEXT, -- set only when parent is a Table
	key_original    TEXT,
	child_value_id  INTEGER NOT NULL REFERENCES value(id) ON DELETE CASCADE,
	UNIQUE (parent_value_id, position)
);
`
