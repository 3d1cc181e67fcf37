package aws

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var s3Client *s3.Client

func S3Enabled() bool {
	return os.Getenv("S3_ASSETS_BUCKET") != ""
}

func GetS3Client(ctx context.Context) (*s3.Client, error) {
	if s3Client != nil {
		return s3Client, nil
	}
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		log.Printf("Could not load default config: %s\n", err.Error())
		return nil, err
	}
	s3Client = s3.NewFromConfig(cfg)
	return s3Client, nil
}

// S3UploadAsset stores the file at f under key and returns a presigned GET
// URL valid for S3_PRESIGN_TTL (one hour by default).
func S3UploadAsset(ctx context.Context, key string, f string, contentType string) (string, error) {
	assetsBucket := os.Getenv("S3_ASSETS_BUCKET")
	file, err := os.Open(f)
	if err != nil {
		log.Printf("Could not open file to upload: %s\n", err.Error())
		return "", err
	}
	defer file.Close()
	client, err := GetS3Client(ctx)
	if err != nil {
		return "", err
	}
	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(assetsBucket),
		Key:         aws.String(key),
		Body:        file,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		log.Printf("Could not put object to S3 bucket: %s\n", err.Error())
		return "", err
	}
	log.Printf("Added object '%s' to bucket '%s'\n", key, assetsBucket)

	ttl := time.Hour
	if v, err := time.ParseDuration(os.Getenv("S3_PRESIGN_TTL")); err == nil {
		ttl = v
	}
	r, err := s3.NewPresignClient(client).PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(assetsBucket),
		Key:    aws.String(key),
	}, func(po *s3.PresignOptions) {
		po.Expires = ttl
	})
	if err != nil {
		log.Printf("Could not generate presigned URL for object [%s]: %s\n", key, err.Error())
		return "", err
	}
	return r.URL, nil
}
