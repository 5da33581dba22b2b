// Package handler implements HTTP request handlers for the WifiVault API.
//
// This package provides the HTTP layer for the WifiVault REST API,
// handling requests for credential profiles, secrets file templates,
// activation, and guard scans.
//
// # Handlers
//
// ProfilesHandler manages credential profiles. List and get responses
// carry summaries with masked passphrases; the stored passphrase is
// only returned when explicitly requested for an operator profile.
//
// TemplateHandler renders example secrets files, activates profiles
// into the live secrets file, reports its state, and runs the guard
// scan over the enclosing repository.
//
// Middleware provides request logging, panic recovery, and CORS support.
//
// # Response Format
//
// Success responses return JSON data with appropriate status codes
// (200, 201). Error responses return JSON with {error, details}
// structure.
//
// # Server-Sent Events
//
// The /events endpoint streams profile and secrets file changes to
// connected clients as named SSE events.
package handler
