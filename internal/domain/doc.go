// Package domain defines the core entities of wifivault: the WiFi
// credential pair from the secrets template, and the named profiles
// that wrap it.
//
// # Credentials
//
// Credentials carries the two values the original secrets file declares
// (SSID and passphrase). Both are fixed at creation: nothing in the
// system mutates a Credentials value in place. The exact placeholder
// strings from the checked-in template are exported so every component
// agrees on what "unfilled" means.
//
// Validation follows IEEE 802.11 limits, and PSK derives the WPA2
// pre-shared key without ever touching a network.
//
// # Profiles
//
// Profile wraps Credentials with identity, lifecycle timestamps, and
// usage tracking. ProfileSummary is the only shape that crosses the API
// boundary on list paths; it masks the passphrase unconditionally.
package domain
