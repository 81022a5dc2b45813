package main

import (
	"errors"

	"github.com/torrentgen/torrentgen/internal/meta"
)

// exitCodeFor maps the pipeline's *meta.Error kinds to process exit codes.
// ConfigInvalid is reported before any hashing starts; IoFailure
// aborts mid-hash; StructuralInvariant means this program has a bug.
func exitCodeFor(err error) int {
	if err == nil {
		return 0
	}
	var merr *meta.Error
	if errors.As(err, &merr) {
		switch merr.Kind {
		case meta.ConfigInvalid:
			return 2
		case meta.IoFailure:
			return 3
		case meta.StructuralInvariant:
			return 70
		}
	}
	return 1
}
