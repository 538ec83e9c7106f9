package usage

import "errors"

// ErrLimitReached indicates the user exhausted today's AI question quota.
var ErrLimitReached = errors.New("limit reached")
