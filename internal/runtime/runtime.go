// Package runtime abstracts the external model-runtime service behind a
// small control interface: list installed models, list loaded instances,
// and request loads, unloads and keep-alive touches. The daemon never
// performs inference itself; the runtime owns the model weights and the
// inference path.
package runtime

import (
	"context"

	"switchd/pkg/types"
)

// Controller is the boundary to the model runtime. Implementations must be
// safe for concurrent use; every call is an I/O wait and must honor the
// caller context.
type Controller interface {
	// ListInstalled returns the models the runtime has on disk.
	ListInstalled(ctx context.Context) ([]types.Model, error)
	// ListRunning returns the instances currently loaded.
	ListRunning(ctx context.Context) ([]types.RunningModel, error)
	// Start requests a load of the named model. The call returns once the
	// runtime has accepted the request; it does not wait for the load.
	Start(ctx context.Context, name string) error
	// Stop requests an immediate unload of the named model.
	Stop(ctx context.Context, name string) error
	// Ping refreshes the runtime's idle timer for the named model so it is
	// not unloaded while the daemon wants it resident.
	Ping(ctx context.Context, name string) error
}
