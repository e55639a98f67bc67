// Package lifecycle holds shared constants for fx lifecycle hooks.
package lifecycle

import "time"

// DefaultTimeout bounds startup and shutdown hooks such as the initial
// database ping.
const DefaultTimeout = 10 * time.Second
