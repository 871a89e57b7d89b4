// Package gcs implements the durable object store on Google Cloud Storage.
package gcs

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
)

// Store uploads objects to a fixed GCS bucket and returns their public URLs.
type Store struct {
	client *storage.Client
	bucket string
}

// NewStore creates a GCS-backed object store. Credentials come from the
// environment (GOOGLE_APPLICATION_CREDENTIALS or workload identity).
func NewStore(ctx context.Context, bucket string) (*Store, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	return &Store{client: client, bucket: bucket}, nil
}

// Put writes data under name and returns the stable public URL.
func (s *Store) Put(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	w := s.client.Bucket(s.bucket).Object(name).NewWriter(ctx)
	w.ContentType = contentType

	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		w.Close()
		return "", fmt.Errorf("failed to write object: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize object: %w", err)
	}

	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.bucket, name), nil
}

// Close releases the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}
