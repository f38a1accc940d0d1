package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

type LocalDriver struct {
	Root string
}

func NewLocalDriver() (*LocalDriver, error) {
	root := viper.GetString("storage.local.path")
	if len(root) == 0 {
		root = "uploads"
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}

	return &LocalDriver{Root: root}, nil
}

func (v *LocalDriver) Put(_ context.Context, name string, src io.Reader, _ int64, _ string) error {
	out, err := os.Create(filepath.Join(v.Root, name))
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, src)
	return err
}

func (v *LocalDriver) Get(_ context.Context, name string) (io.ReadCloser, error) {
	return os.Open(filepath.Join(v.Root, name))
}

func (v *LocalDriver) Delete(_ context.Context, name string) error {
	if err := os.Remove(filepath.Join(v.Root, name)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
