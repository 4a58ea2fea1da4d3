// Package postgres implements the store interfaces on PostgreSQL.
//
// Every store accepts a store.DBTX so the same implementation runs against a
// plain connection pool or inside a transaction; WithTx rebinds a store to a
// transaction for multi-statement operations like the sync import.
package postgres
