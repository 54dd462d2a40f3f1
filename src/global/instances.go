package global

import (
	"context"
	"io"
)

type Instances struct {
	AwsS3 AwsS3
}

type AwsS3 interface {
	UploadFile(ctx context.Context, bucket, key string, data io.Reader, contentType, acl, cacheControl *string) error
	DownloadFile(ctx context.Context, bucket, key string, file io.WriterAt) error
	ListFiles(ctx context.Context, bucket, prefix string) ([]string, error)
}
