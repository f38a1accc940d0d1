package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/viper"
)

const (
	BackendLocal = "local"
	BackendS3    = "s3"
)

// Driver is the blob-store capability. Backends are selected by
// configuration at startup, never by the calling business logic.
type Driver interface {
	Put(ctx context.Context, name string, src io.Reader, size int64, contentType string) error
	Get(ctx context.Context, name string) (io.ReadCloser, error)
	Delete(ctx context.Context, name string) error
}

var (
	drivers        map[string]Driver
	defaultBackend string
)

func Setup() error {
	drivers = make(map[string]Driver)

	local, err := NewLocalDriver()
	if err != nil {
		return fmt.Errorf("unable to set up local storage: %v", err)
	}
	drivers[BackendLocal] = local

	if viper.IsSet("storage.s3.endpoint") {
		s3, err := NewS3Driver()
		if err != nil {
			return fmt.Errorf("unable to set up s3 storage: %v", err)
		}
		drivers[BackendS3] = s3
	}

	defaultBackend = viper.GetString("storage.backend")
	if len(defaultBackend) == 0 {
		defaultBackend = BackendLocal
	}
	if _, ok := drivers[defaultBackend]; !ok {
		return fmt.Errorf("storage backend %s is not configured", defaultBackend)
	}

	return nil
}

// DefaultBackend reports which backend new uploads land in.
func DefaultBackend() string {
	return defaultBackend
}

func Default() (Driver, error) {
	return For(defaultBackend)
}

// For returns the driver holding blobs of the given backend discriminator.
func For(backend string) (Driver, error) {
	if driver, ok := drivers[backend]; ok {
		return driver, nil
	}
	return nil, fmt.Errorf("storage backend %s is not configured", backend)
}
