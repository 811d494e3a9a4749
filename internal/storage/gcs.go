package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"sort"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// GCSStorage implements the Storage interface for Google Cloud Storage
type GCSStorage struct {
	client       *storage.Client
	bucket       string
	tempDir      string
	objectPrefix string
	ctx          context.Context
}

// NewGCSStorage creates a new GCSStorage instance
func NewGCSStorage(ctx context.Context, bucketName, objectPrefix, tempDir, credentialsFile string) (*GCSStorage, error) {
	var client *storage.Client
	var err error

	// Create a client
	if credentialsFile != "" {
		client, err = storage.NewClient(ctx, option.WithCredentialsFile(credentialsFile))
	} else {
		// Use application default credentials
		client, err = storage.NewClient(ctx)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}

	// Create local temp directory if it doesn't exist
	if err := os.MkdirAll(tempDir, os.ModePerm); err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}

	return &GCSStorage{
		client:       client,
		bucket:       bucketName,
		tempDir:      tempDir,
		objectPrefix: strings.Trim(objectPrefix, "/"),
		ctx:          ctx,
	}, nil
}

func (s *GCSStorage) objectName(p string) string {
	return objectName(s.objectPrefix, p)
}

func objectName(prefix, p string) string {
	name := strings.TrimPrefix(path.Clean("/"+p), "/")
	if prefix != "" {
		name = prefix + "/" + name
	}
	return name
}

// GetReader returns a reader for an object
func (s *GCSStorage) GetReader(p string) (io.ReadCloser, error) {
	r, err := s.client.Bucket(s.bucket).Object(s.objectName(p)).NewReader(s.ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, p)
	}
	return r, err
}

// GetWriter returns a writer for an object; the object is committed on Close
func (s *GCSStorage) GetWriter(p string) (io.WriteCloser, error) {
	return s.client.Bucket(s.bucket).Object(s.objectName(p)).NewWriter(s.ctx), nil
}

// FileExists checks if an object exists
func (s *GCSStorage) FileExists(p string) bool {
	_, err := s.client.Bucket(s.bucket).Object(s.objectName(p)).Attrs(s.ctx)
	return err == nil
}

// DirExists checks if any object lives under dir
func (s *GCSStorage) DirExists(dir string) bool {
	it := s.client.Bucket(s.bucket).Objects(s.ctx, &storage.Query{
		Prefix: s.objectName(dir) + "/",
	})
	_, err := it.Next()
	return err == nil
}

// ListFiles lists objects directly under dir with the given extension
func (s *GCSStorage) ListFiles(dir string, ext string) ([]string, error) {
	return s.list(dir, ext, "/")
}

// WalkFiles lists objects at any depth under dir with the given extension
func (s *GCSStorage) WalkFiles(dir string, ext string) ([]string, error) {
	return s.list(dir, ext, "")
}

func (s *GCSStorage) list(dir, ext, delimiter string) ([]string, error) {
	prefix := s.objectName(dir) + "/"
	if dir == "" || dir == "." {
		prefix = ""
		if s.objectPrefix != "" {
			prefix = s.objectPrefix + "/"
		}
	}

	it := s.client.Bucket(s.bucket).Objects(s.ctx, &storage.Query{
		Prefix:    prefix,
		Delimiter: delimiter,
	})

	var results []string
	found := false
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error listing objects: %w", err)
		}
		found = true

		// Skip synthetic directory entries
		if attrs.Name == "" || strings.HasSuffix(attrs.Name, "/") {
			continue
		}

		rel := strings.TrimPrefix(attrs.Name, prefix)
		if ext != "" && !strings.HasSuffix(strings.ToLower(rel), strings.ToLower(ext)) {
			continue
		}

		results = append(results, path.Join(dir, rel))
	}
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, dir)
	}
	sort.Strings(results)

	return results, nil
}

// MkdirAll is a no-op, GCS has no directories
func (s *GCSStorage) MkdirAll(string) error {
	return nil
}

func (s *GCSStorage) TempDir() string {
	return s.tempDir
}

// Close closes the GCS client
func (s *GCSStorage) Close() error {
	return s.client.Close()
}
