// Package repositories implements SQLite persistence for client state.
//
// [KVStore] implements [models.Store] on the kv_store table created by the embedded migrations in the shared package.
// Values are full snapshots; every Set overwrites the previous value for its key, and Remove deletes several keys
// in one transaction so logout never leaves a partially cleared session behind.
package repositories
