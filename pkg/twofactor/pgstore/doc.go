// Package pgstore persists second factors and recovery codes in PostgreSQL
// using pgx/v5.
//
// The schema keys factors on (account_id, status), enforcing at most one
// pending and one active factor per account at the database level. Every
// write to a pending row bumps a sequence-backed version column; promotion
// runs inside a transaction as an UPDATE guarded by that version, which
// gives the compare-and-swap semantics the twofactor service relies on:
// concurrent confirms cannot both promote, and a confirm racing a fresh
// enrollment loses cleanly.
//
// Migrations live in the migrations directory in goose format; run them
// with pg.Migrate from pkg/pg.
package pgstore
