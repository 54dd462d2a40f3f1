package aws

import (
	"context"
	"io"

	Aws "github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/sirupsen/logrus"

	"github.com/seventv/BackgroundKeyer/src/global"
)

type s3Inst struct {
	client     *s3.S3
	uploader   *s3manager.Uploader
	downloader *s3manager.Downloader
}

func NewS3(ctx global.Context) global.AwsS3 {
	config := ctx.Config().Aws

	awsCfg := &Aws.Config{
		Region: Aws.String(config.Region),
	}
	if config.AccessToken != "" {
		awsCfg.Credentials = credentials.NewStaticCredentials(config.AccessToken, config.SecretKey, "")
	}
	if config.Endpoint != "" {
		awsCfg.Endpoint = Aws.String(config.Endpoint)
		awsCfg.S3ForcePathStyle = Aws.Bool(true)
	}

	sess, err := session.NewSession(awsCfg)
	if err != nil {
		logrus.Fatal("failed to create aws session: ", err)
	}

	return &s3Inst{
		client:     s3.New(sess),
		uploader:   s3manager.NewUploader(sess),
		downloader: s3manager.NewDownloader(sess),
	}
}

func (a *s3Inst) UploadFile(ctx context.Context, bucket, key string, data io.Reader, contentType, acl, cacheControl *string) error {
	_, err := a.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:       Aws.String(bucket),
		Key:          Aws.String(key),
		Body:         data,
		ContentType:  contentType,
		ACL:          acl,
		CacheControl: cacheControl,
	})

	return err
}

func (a *s3Inst) DownloadFile(ctx context.Context, bucket, key string, file io.WriterAt) error {
	_, err := a.downloader.DownloadWithContext(ctx, file, &s3.GetObjectInput{
		Bucket: Aws.String(bucket),
		Key:    Aws.String(key),
	})

	return err
}

func (a *s3Inst) ListFiles(ctx context.Context, bucket, prefix string) ([]string, error) {
	keys := []string{}

	err := a.client.ListObjectsV2PagesWithContext(ctx, &s3.ListObjectsV2Input{
		Bucket: Aws.String(bucket),
		Prefix: Aws.String(prefix),
	}, func(page *s3.ListObjectsV2Output, lastPage bool) bool {
		for _, obj := range page.Contents {
			keys = append(keys, Aws.StringValue(obj.Key))
		}
		return true
	})

	return keys, err
}
