package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/Sebas91ts/inmueble-panel-api/config"
)

// ArchivoService stores exported report files in object storage so admins
// can re-download them without re-running the query.
type ArchivoService struct {
	client *minio.Client
	bucket string
	config *config.ArchivoConfig
}

// ExportArchivado describes one archived export object.
type ExportArchivado struct {
	Objeto        string    `json:"objeto"`
	Nombre        string    `json:"nombre"`
	Tamano        int64     `json:"tamano"`
	UltimaEdicion time.Time `json:"ultima_edicion"`
}

func NewArchivoService(cfg *config.ArchivoConfig) (*ArchivoService, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	return &ArchivoService{
		client: client,
		bucket: cfg.Bucket,
		config: cfg,
	}, nil
}

// EnsureBucket creates the bucket if it doesn't exist
func (s *ArchivoService) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket: %w", err)
	}

	if !exists {
		err = s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{})
		if err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return nil
}

// GuardarExport archives an exported report blob under the agency's prefix
// and returns the object name.
func (s *ArchivoService) GuardarExport(ctx context.Context, agencia, exportID, filename, contentType string, data []byte) (string, error) {
	objectName := fmt.Sprintf("%s/%s/%s", agencia, exportID, filename)
	_, err := s.client.PutObject(ctx, s.bucket, objectName, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to archive export: %w", err)
	}
	return objectName, nil
}

// GetPresignedURL generates a presigned download URL for an archived export
func (s *ArchivoService) GetPresignedURL(ctx context.Context, objectName string) (string, error) {
	expiry := time.Duration(s.config.ExpireDays) * 24 * time.Hour
	url, err := s.client.PresignedGetObject(ctx, s.bucket, objectName, expiry, nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}

	return url.String(), nil
}

// ListarExports returns the archived exports under an agency's prefix.
func (s *ArchivoService) ListarExports(ctx context.Context, agencia string) ([]ExportArchivado, error) {
	var exports []ExportArchivado
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    agencia + "/",
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list exports: %w", obj.Err)
		}
		exports = append(exports, ExportArchivado{
			Objeto:        obj.Key,
			Nombre:        nombreDeObjeto(obj.Key),
			Tamano:        obj.Size,
			UltimaEdicion: obj.LastModified,
		})
	}
	return exports, nil
}

// DeleteExport deletes an archived export
func (s *ArchivoService) DeleteExport(ctx context.Context, objectName string) error {
	err := s.client.RemoveObject(ctx, s.bucket, objectName, minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("failed to delete export: %w", err)
	}

	return nil
}

func nombreDeObjeto(key string) string {
	for i := len(key) - 1; i >= 0; i-- {
		if key[i] == '/' {
			return key[i+1:]
		}
	}
	return key
}
