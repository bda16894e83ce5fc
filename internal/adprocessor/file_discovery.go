package adprocessor

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// S3FileDiscovery implements the FileDiscovery interface for S3 buckets
type S3FileDiscovery struct {
	client S3Client
}

// NewS3FileDiscovery creates a new S3FileDiscovery instance
func NewS3FileDiscovery(client S3Client) *S3FileDiscovery {
	return &S3FileDiscovery{
		client: client,
	}
}

// ListObjects lists all objects in an S3 bucket with the given prefix,
// handling pagination
func (fd *S3FileDiscovery) ListObjects(bucket, prefix string) ([]S3Object, error) {
	var allObjects []S3Object
	var continuationToken string
	ctx := context.Background()

	for {
		output, err := fd.client.ListObjectsV2(ctx, bucket, prefix, continuationToken)
		if err != nil {
			return nil, fmt.Errorf("failed to list objects in bucket %s with prefix %s: %w", bucket, prefix, err)
		}

		allObjects = append(allObjects, output.Objects...)

		if !output.IsTruncated {
			break
		}

		continuationToken = output.NextContinuationToken
		if continuationToken == "" {
			break
		}
	}

	return allObjects, nil
}

// FilterObjects filters S3 objects based on the provided criteria
func (fd *S3FileDiscovery) FilterObjects(objects []S3Object, criteria FilterCriteria) []S3Object {
	var filtered []S3Object

	for _, obj := range objects {
		if len(criteria.Extensions) > 0 {
			hasValidExtension := false
			for _, ext := range criteria.Extensions {
				if strings.HasSuffix(strings.ToLower(obj.Key), strings.ToLower(ext)) {
					hasValidExtension = true
					break
				}
			}
			if !hasValidExtension {
				continue
			}
		}

		if criteria.MinSize > 0 && obj.Size < criteria.MinSize {
			continue
		}

		if criteria.MaxSize > 0 && obj.Size > criteria.MaxSize {
			continue
		}

		filtered = append(filtered, obj)
	}

	if criteria.SortByKey {
		sort.Slice(filtered, func(i, j int) bool {
			return filtered[i].Key < filtered[j].Key
		})
	}

	return filtered
}

// ListAndFilterObjects is a convenience method that combines listing and filtering
func (fd *S3FileDiscovery) ListAndFilterObjects(bucket, prefix string, criteria FilterCriteria) ([]S3Object, error) {
	objects, err := fd.ListObjects(bucket, prefix)
	if err != nil {
		return nil, err
	}

	return fd.FilterObjects(objects, criteria), nil
}

// ValidateFilterCriteria validates the filter criteria
func ValidateFilterCriteria(criteria FilterCriteria) error {
	if criteria.MinSize < 0 {
		return fmt.Errorf("minimum size cannot be negative")
	}

	if criteria.MaxSize < 0 {
		return fmt.Errorf("maximum size cannot be negative")
	}

	if criteria.MinSize > 0 && criteria.MaxSize > 0 && criteria.MinSize > criteria.MaxSize {
		return fmt.Errorf("minimum size cannot be greater than maximum size")
	}

	for _, ext := range criteria.Extensions {
		if strings.TrimSpace(ext) == "" {
			return fmt.Errorf("extension cannot be empty")
		}
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("extension must start with a dot: %s", ext)
		}
	}

	return nil
}

// CreateDeliveryFilterCriteria creates filter criteria for the delivery
// file formats the ingest pipeline understands, with optional size
// constraints
func CreateDeliveryFilterCriteria(minSize, maxSize int64, sortByKey bool) FilterCriteria {
	return FilterCriteria{
		Extensions: DataFileExtensions(),
		MinSize:    minSize,
		MaxSize:    maxSize,
		SortByKey:  sortByKey,
	}
}
