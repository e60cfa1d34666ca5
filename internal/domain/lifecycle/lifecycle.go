// Package lifecycle holds timeouts shared by fx lifecycle hooks.
package lifecycle

import "time"

// DefaultTimeout bounds a single OnStart/OnStop hook step such as a database ping.
const DefaultTimeout = 10 * time.Second
