// Package testutil provides SQLite fixtures shared by package tests.
package testutil

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

// OpenSQLite opens a private in-memory database and runs each script on it.
// The pool holds a single connection so every query sees the same database.
func OpenSQLite(t testing.TB, scripts ...string) *sql.DB {
	t.Helper()
	conn, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	conn.SetMaxOpenConns(1)
	t.Cleanup(func() { conn.Close() })

	for _, s := range scripts {
		_, err := conn.Exec(s)
		require.NoError(t, err, "fixture script failed:\n%s", s)
	}
	return conn
}

// Chain is a -> b -> c, each child holding one foreign key to its parent.
const Chain = `
CREATE TABLE a (id INTEGER PRIMARY KEY, name TEXT NOT NULL);
CREATE TABLE b (id INTEGER PRIMARY KEY, a_id INTEGER REFERENCES a(id), label TEXT);
CREATE TABLE c (id INTEGER PRIMARY KEY, b_id INTEGER REFERENCES b(id), note TEXT);
INSERT INTO a VALUES (1, 'root');
INSERT INTO b VALUES (10, 1, 'middle');
INSERT INTO c VALUES (100, 10, 'leaf');
`

// ShopSchema is the DDL of Shop without any rows.
const ShopSchema = `
CREATE TABLE customers (id INTEGER PRIMARY KEY, name TEXT NOT NULL);
CREATE TABLE products (id INTEGER PRIMARY KEY, title TEXT NOT NULL);
CREATE TABLE orders (
    id INTEGER PRIMARY KEY,
    customer_id INTEGER REFERENCES customers(id),
    status TEXT
);
CREATE TABLE order_items (
    id INTEGER PRIMARY KEY,
    order_id INTEGER NOT NULL REFERENCES orders(id),
    product_id INTEGER NOT NULL REFERENCES products(id),
    qty INTEGER
);
`

// Shop has two orders sharing a product. Order 100 belongs to customer 1 and
// has items 1000 and 1001.
const Shop = ShopSchema + `
INSERT INTO customers VALUES (1, 'Ada'), (2, 'O''Brien');
INSERT INTO products VALUES (10, 'Lamp'), (11, 'Desk');
INSERT INTO orders VALUES (100, 1, 'new'), (101, 2, 'paid'), (102, NULL, 'draft');
INSERT INTO order_items VALUES (1000, 100, 10, 1), (1001, 100, 11, 2), (1002, 101, 10, 3);
`

// Employees references itself through manager_id.
const Employees = `
CREATE TABLE employees (
    id INTEGER PRIMARY KEY,
    manager_id INTEGER REFERENCES employees(id),
    name TEXT
);
INSERT INTO employees VALUES (1, NULL, 'boss'), (2, 1, 'lead'), (3, 2, 'dev');
`

// Accounts is keyed by uuid.
const Accounts = `
CREATE TABLE accounts (id UUID PRIMARY KEY, email TEXT);
CREATE TABLE sessions (id INTEGER PRIMARY KEY, account_id UUID REFERENCES accounts(id));
INSERT INTO accounts VALUES ('6f1c9c8e-3a8e-4c53-9d0e-7b6c1f2a9e11', 'a@example.com');
INSERT INTO sessions VALUES (1, '6f1c9c8e-3a8e-4c53-9d0e-7b6c1f2a9e11'), (2, '6f1c9c8e-3a8e-4c53-9d0e-7b6c1f2a9e11');
`

// Dangling has a foreign key to a table that is not in the schema.
const Dangling = `
CREATE TABLE notes (id INTEGER PRIMARY KEY, ghost_id INTEGER REFERENCES ghosts(id));
INSERT INTO notes VALUES (1, 5);
`

// SamplesSchema is the DDL of Samples without any rows.
const SamplesSchema = `
CREATE TABLE samples (
    id INTEGER PRIMARY KEY,
    payload BLOB,
    high REAL,
    low REAL,
    due DATE,
    seen DATETIME,
    done BOOLEAN
);
`

// Samples holds one row of each cell kind that has no portable literal.
const Samples = SamplesSchema + `
INSERT INTO samples VALUES (1, x'00ff27', 1e999, -1e999, '2024-01-01', '2024-03-01 10:30:00', 1);
`
