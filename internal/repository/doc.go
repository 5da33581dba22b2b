// Package repository defines the data access interface for wifivault.
//
// The Store interface covers CRUD, usage tracking, and status updates
// for credential profiles. The actual implementation is in the sqlite
// subpackage.
//
// # SQLite Implementation
//
// The sqlite implementation uses WAL mode for concurrency and stores
// passphrases encrypted at rest via the secretbox package; the database
// file never contains a plaintext credential.
package repository
