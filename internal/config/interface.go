package config

import "context"

// Loader translates an on-disk configuration format into the unified model.
// Implementations walk every given path (file or directory) and merge all
// workflow blocks they find.
type Loader interface {
	Load(ctx context.Context, paths ...string) (*Model, error)
}
