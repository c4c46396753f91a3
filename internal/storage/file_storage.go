package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DocumentStore persists uploaded invoice documents and returns the path
// recorded on the invoice as image_url.
type DocumentStore interface {
	Save(filename string, content []byte) (string, error)
}

// LocalDocumentStore stores documents on the local filesystem under a
// generated name; the client-supplied filename only contributes its
// extension, never a path.
type LocalDocumentStore struct {
	baseDir string
	logger  *zap.Logger
}

// NewLocalDocumentStore creates a new LocalDocumentStore
func NewLocalDocumentStore(baseDir string, logger *zap.Logger) *LocalDocumentStore {
	return &LocalDocumentStore{baseDir: baseDir, logger: logger}
}

// Save writes the document and returns its storage path.
func (s *LocalDocumentStore) Save(filename string, content []byte) (string, error) {
	if err := os.MkdirAll(s.baseDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create storage directory: %w", err)
	}

	name := uuid.NewString() + safeExt(filename)
	fullPath := filepath.Join(s.baseDir, name)

	if err := os.WriteFile(fullPath, content, 0644); err != nil {
		s.logger.Error("Failed to store document",
			zap.String("path", fullPath),
			zap.Error(err))
		return "", fmt.Errorf("failed to store document: %w", err)
	}

	s.logger.Info("Document stored",
		zap.String("path", fullPath),
		zap.Int("size_bytes", len(content)))
	return fullPath, nil
}

// safeExt returns a lowercased known extension, or nothing.
func safeExt(filename string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(filename)))
	switch ext {
	case ".pdf", ".jpg", ".jpeg", ".png":
		return ext
	default:
		return ""
	}
}
