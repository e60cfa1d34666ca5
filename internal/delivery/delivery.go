// Package delivery contains the inbound adapters that expose the service.
package delivery

import "context"

// Delivery is a long-running entry point started by the application.
// Serve blocks until the delivery stops.
type Delivery interface {
	Serve(ctx context.Context) error
}
