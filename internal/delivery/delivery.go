// Package delivery defines the contract shared by all transport servers.
package delivery

import "context"

// Delivery is a long-running transport (HTTP server, worker, etc.) managed
// by the application lifecycle. Serve blocks until shutdown or failure.
type Delivery interface {
	Serve(ctx context.Context) error
}
