package prior

import (
	"errors"
	"fmt"

	"github.com/okian/courtside/internal/domain/model"
)

// Sentinel kinds for prior construction errors.
var (
	// ErrEmptyGroup marks a (position, zone) group with zero attempts.
	ErrEmptyGroup = errors.New("prior group has zero attempts")
)

// Validate checks that a group prior can yield a valid Beta distribution.
// Returns ErrEmptyGroup when the group has no attempts.
func Validate(g model.GroupPrior) error {
	if g.Attempts <= 0 {
		return fmt.Errorf("%w: %s/%s", ErrEmptyGroup, g.Position, g.Zone)
	}
	return nil
}
