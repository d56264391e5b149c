package models

import (
	"fmt"

	"github.com/san-kum/sdesim/internal/dynamo"
	"github.com/san-kum/sdesim/internal/jump"
)

// Model bundles a stochastic system with its jump trigger and the
// configuration it is usually run with.
type Model interface {
	Name() string
	DefaultState() dynamo.State
	DefaultConfig() dynamo.Config
	System() dynamo.System
	// Trigger returns nil for models without jumps.
	Trigger() (jump.Trigger, error)
	dynamo.Configurable
}

func unknownParam(model, name string) error {
	return fmt.Errorf("%s: unknown parameter %q", model, name)
}
