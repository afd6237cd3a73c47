// Package app defines the options contract for command line applications.
package app

import (
	cliflag "github.com/kart-io/docqa/pkg/app/cliflag"
)

// CliOptions abstracts configuration options for reading parameters from the
// command line.
type CliOptions interface {
	// Flags returns flags grouped by section name.
	Flags() cliflag.NamedFlagSets

	// Complete completes all the required options.
	Complete() error

	// Validate validates all the required options.
	Validate() error
}
