// Package events holds the identifiers of the demo's events, generated from
// assets/events.toml.
package events

//go:generate go run ../../../cmd/eventgen generate --manifest ../../../assets/events.toml --out events_gen.go
