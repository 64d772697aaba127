package domain

import "errors"

// Sentinel errors used across layers.
var (
	ErrNotFound       = errors.New("not found")
	ErrNoActiveRecipe = errors.New("no active recipe")
	ErrNoMoreSteps    = errors.New("no more steps in recipe")
	ErrNotImplemented = errors.New("not implemented")
)
