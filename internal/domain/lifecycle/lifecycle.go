// Package lifecycle holds the shared timing of component start-up and shutdown.
package lifecycle

import "time"

// DefaultTimeout bounds every start and stop hook.
const DefaultTimeout = 10 * time.Second
