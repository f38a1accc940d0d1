package storage

import (
	"context"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/spf13/viper"
)

type S3Driver struct {
	Client *minio.Client
	Bucket string
}

func NewS3Driver() (*S3Driver, error) {
	client, err := minio.New(viper.GetString("storage.s3.endpoint"), &minio.Options{
		Creds: credentials.NewStaticV4(
			viper.GetString("storage.s3.key"),
			viper.GetString("storage.s3.secret"),
			"",
		),
		Secure: viper.GetBool("storage.s3.secure"),
	})
	if err != nil {
		return nil, err
	}

	return &S3Driver{
		Client: client,
		Bucket: viper.GetString("storage.s3.bucket"),
	}, nil
}

func (v *S3Driver) Put(ctx context.Context, name string, src io.Reader, size int64, contentType string) error {
	_, err := v.Client.PutObject(ctx, v.Bucket, name, src, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	return err
}

func (v *S3Driver) Get(ctx context.Context, name string) (io.ReadCloser, error) {
	return v.Client.GetObject(ctx, v.Bucket, name, minio.GetObjectOptions{})
}

func (v *S3Driver) Delete(ctx context.Context, name string) error {
	return v.Client.RemoveObject(ctx, v.Bucket, name, minio.RemoveObjectOptions{})
}
