package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/pmalinen/EncryptBin/models"
)

const s3CallTimeout = 10 * time.Second

// S3Store keeps each paste under {prefix}{id}/content.txt and
// {prefix}{id}/meta.json in a single bucket, so multiple stateless server
// instances can share one durable store.
type S3Store struct {
	bucket string
	prefix string
	client *s3.Client
}

// NewS3Store creates a new S3Store instance. The bucket name is required;
// an empty one is a configuration error.
func NewS3Store(bucket, prefix string) (*S3Store, error) {
	if bucket == "" {
		return nil, fmt.Errorf("s3 bucket name must not be empty")
	}
	cfg, err := config.LoadDefaultConfig(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	client := s3.NewFromConfig(cfg)
	return &S3Store{bucket: bucket, prefix: prefix, client: client}, nil
}

func (s *S3Store) contentKey(id string) string {
	return applyS3Prefix(s.prefix, id+"/"+contentFile)
}

func (s *S3Store) metaKey(id string) string {
	return applyS3Prefix(s.prefix, id+"/"+metaFile)
}

func (s *S3Store) putObject(ctx context.Context, key string, data []byte, contentType string) error {
	ctx, cancel := context.WithTimeout(ctx, s3CallTimeout)
	defer cancel()
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	return err
}

// getObject fetches a key, returning (nil, nil) when the key does not
// exist so that absence is never reported as a backend failure.
func (s *S3Store) getObject(ctx context.Context, key string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, s3CallTimeout)
	defer cancel()
	obj, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isS3NotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	defer func() {
		_ = obj.Body.Close()
	}()
	return io.ReadAll(obj.Body)
}

func (s *S3Store) StoreMeta(ctx context.Context, paste *models.Paste) error {
	metaData, err := json.MarshalIndent(paste, "", "  ")
	if err != nil {
		log.Printf("[ERROR] S3 StoreMeta: failed to marshal metadata for %s: %v", paste.ID, err)
		return err
	}
	if err := s.putObject(ctx, s.metaKey(paste.ID), metaData, "application/json"); err != nil {
		log.Printf("[ERROR] S3 StoreMeta: failed to put metadata for %s: %v", paste.ID, err)
		return err
	}
	return nil
}

func (s *S3Store) GetMeta(ctx context.Context, id string) (*models.Paste, error) {
	metaData, err := s.getObject(ctx, s.metaKey(id))
	if err != nil {
		log.Printf("[ERROR] S3 GetMeta: failed to get metadata for %s: %v", id, err)
		return nil, err
	}
	if metaData == nil {
		return nil, nil
	}
	var paste models.Paste
	if err := json.Unmarshal(metaData, &paste); err != nil {
		log.Printf("[ERROR] S3 GetMeta: failed to unmarshal metadata for %s: %v", id, err)
		return nil, err
	}
	return &paste, nil
}

func (s *S3Store) StoreContent(ctx context.Context, id string, content []byte) error {
	if err := s.putObject(ctx, s.contentKey(id), content, "application/octet-stream"); err != nil {
		log.Printf("[ERROR] S3 StoreContent: failed to put content for %s: %v", id, err)
		return err
	}
	return nil
}

func (s *S3Store) GetContent(ctx context.Context, id string) ([]byte, error) {
	data, err := s.getObject(ctx, s.contentKey(id))
	if err != nil {
		log.Printf("[ERROR] S3 GetContent: failed to get content for %s: %v", id, err)
		return nil, err
	}
	return data, nil
}

// Delete removes every object under the paste's prefix, so a record that
// spans multiple keys never leaves orphaned partial objects behind.
func (s *S3Store) Delete(ctx context.Context, id string) error {
	pastePrefix := applyS3Prefix(s.prefix, id+"/")
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(pastePrefix),
	})
	for paginator.HasMorePages() {
		pageCtx, cancel := context.WithTimeout(ctx, s3CallTimeout)
		page, err := paginator.NextPage(pageCtx)
		cancel()
		if err != nil {
			log.Printf("[ERROR] S3 Delete: failed to list %s: %v", pastePrefix, err)
			return err
		}
		if len(page.Contents) == 0 {
			continue
		}
		objects := make([]types.ObjectIdentifier, 0, len(page.Contents))
		for _, obj := range page.Contents {
			objects = append(objects, types.ObjectIdentifier{Key: obj.Key})
		}
		delCtx, cancel := context.WithTimeout(ctx, s3CallTimeout)
		_, err = s.client.DeleteObjects(delCtx, &s3.DeleteObjectsInput{
			Bucket: aws.String(s.bucket),
			Delete: &types.Delete{Objects: objects},
		})
		cancel()
		if err != nil {
			log.Printf("[ERROR] S3 Delete: failed to delete objects under %s: %v", pastePrefix, err)
			return err
		}
	}
	return nil
}

// List enumerates paste ids by scanning for meta.json keys under the
// configured prefix.
func (s *S3Store) List(ctx context.Context) ([]string, error) {
	var ids []string
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.prefix),
	})
	for paginator.HasMorePages() {
		pageCtx, cancel := context.WithTimeout(ctx, s3CallTimeout)
		page, err := paginator.NextPage(pageCtx)
		cancel()
		if err != nil {
			log.Printf("[ERROR] S3 List: failed to list bucket %s: %v", s.bucket, err)
			return nil, err
		}
		for _, obj := range page.Contents {
			if obj.Key == nil {
				continue
			}
			if id, ok := pasteIDFromKey(s.prefix, *obj.Key); ok {
				ids = append(ids, id)
			}
		}
	}
	return ids, nil
}

func (s *S3Store) Close() error {
	return nil
}
