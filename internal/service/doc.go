// Package service implements the business logic of wifivault.
//
// ProfileService manages credential profiles, merging the built-in
// template profile with operator profiles from the store. List paths
// return summaries only; the passphrase never leaves the service layer
// except through an explicit single-profile fetch.
//
// TemplateService owns the two file artifacts of the original workflow:
// the checked-in example with placeholders and the gitignored live
// counterpart. It activates profiles into the live file, re-validates
// the file when the watcher reports a change, and runs the guard's
// version-control hygiene pass.
//
// Both services publish events on the EventBus, which the SSE hub
// forwards to connected clients.
package service
