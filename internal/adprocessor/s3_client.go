package adprocessor

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Client interface defines the methods for S3 operations
type S3Client interface {
	ListObjectsV2(ctx context.Context, bucket, prefix string, continuationToken string) (*ListObjectsV2Output, error)
	DownloadFile(ctx context.Context, bucket, key, localPath string) error
	GetObjectAttributes(ctx context.Context, bucket, key string) (*ObjectAttributes, error)
}

// ListObjectsV2Output represents the output of ListObjectsV2 operation
type ListObjectsV2Output struct {
	Objects               []S3Object
	NextContinuationToken string
	IsTruncated           bool
}

// ObjectAttributes represents S3 object attributes
type ObjectAttributes struct {
	ETag string
	Size int64
}

// AWSS3Client is the concrete implementation of S3Client using AWS SDK
type AWSS3Client struct {
	client *s3.Client
	config aws.Config
}

// NewAWSS3Client creates a new AWS S3 client with credential chain
// support (environment variables, IAM roles, and profiles).
func NewAWSS3Client(ctx context.Context, region string) (*AWSS3Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return NewAWSS3ClientWithConfig(cfg), nil
}

// NewAWSS3ClientWithConfig creates a new AWS S3 client with custom configuration
func NewAWSS3ClientWithConfig(cfg aws.Config) *AWSS3Client {
	return &AWSS3Client{
		client: s3.NewFromConfig(cfg),
		config: cfg,
	}
}

// ListObjectsV2 lists objects in an S3 bucket with pagination support
func (c *AWSS3Client) ListObjectsV2(ctx context.Context, bucket, prefix string, continuationToken string) (*ListObjectsV2Output, error) {
	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
	}

	if prefix != "" {
		input.Prefix = aws.String(prefix)
	}

	if continuationToken != "" {
		input.ContinuationToken = aws.String(continuationToken)
	}

	result, err := c.client.ListObjectsV2(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to list objects in bucket %s: %w", bucket, err)
	}

	objects := make([]S3Object, len(result.Contents))
	for i, obj := range result.Contents {
		objects[i] = S3Object{
			Key:          aws.ToString(obj.Key),
			Size:         aws.ToInt64(obj.Size),
			ETag:         aws.ToString(obj.ETag),
			LastModified: aws.ToTime(obj.LastModified),
		}
	}

	output := &ListObjectsV2Output{
		Objects:     objects,
		IsTruncated: aws.ToBool(result.IsTruncated),
	}

	if result.NextContinuationToken != nil {
		output.NextContinuationToken = aws.ToString(result.NextContinuationToken)
	}

	return output, nil
}

// DownloadFile downloads an object from S3 to a local path. The data is
// written to a temporary file first and renamed into place so partial
// downloads never appear under the final name.
func (c *AWSS3Client) DownloadFile(ctx context.Context, bucket, key, localPath string) error {
	dir := filepath.Dir(localPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	result, err := c.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to get object %s from bucket %s: %w", key, bucket, err)
	}
	defer result.Body.Close()

	tempPath := localPath + ".tmp"
	file, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("failed to create temporary file %s: %w", tempPath, err)
	}

	_, err = io.Copy(file, result.Body)
	closeErr := file.Close()

	if err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to write data to file %s: %w", tempPath, err)
	}

	if closeErr != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to close file %s: %w", tempPath, closeErr)
	}

	if err := os.Rename(tempPath, localPath); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to move temporary file to final location %s: %w", localPath, err)
	}

	return nil
}

// GetObjectAttributes retrieves object attributes (ETag and Size) from S3
func (c *AWSS3Client) GetObjectAttributes(ctx context.Context, bucket, key string) (*ObjectAttributes, error) {
	result, err := c.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get object attributes for %s in bucket %s: %w", key, bucket, err)
	}

	return &ObjectAttributes{
		ETag: aws.ToString(result.ETag),
		Size: aws.ToInt64(result.ContentLength),
	}, nil
}

// GetRegion returns the region configured for this client
func (c *AWSS3Client) GetRegion() string {
	return c.config.Region
}
