// Package state defines the aggregate persistence contract, composed of the
// three component-level State interfaces. state/memory and state/postgres
// each provide the three component stores that fill a Store.
package state

import (
	"willvault/native/assets"
	"willvault/native/guardian"
	"willvault/native/will"
)

// Store aggregates the Will Engine, Asset Registry, and Guardian Registry
// persistence contracts so a host process can construct and pass around a
// single value. The three interfaces share method names (Get, Put) with
// different signatures, so they are held as fields rather than embedded.
type Store struct {
	Wills     will.State
	Assets    assets.State
	Guardians guardian.State
}
