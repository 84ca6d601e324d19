package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/lineup/internal/slug"
)

// ErrUnsupportedType is returned for uploads that are not still images.
var ErrUnsupportedType = errors.New("only jpeg, png, gif and webp images are accepted")

// Storage saves an uploaded override image and returns the URL it is served from.
type Storage interface {
	SaveImage(ctx context.Context, fileHeader *multipart.FileHeader) (string, error)
}

type LocalStorage struct {
	uploadDir string
	urlPrefix string
}

type SpacesStorage struct {
	client *s3.S3
	bucket string
	cdnURL string
}

// NewLocalStorage stores files under uploadDir, served by the router at urlPrefix.
func NewLocalStorage(uploadDir, urlPrefix string) *LocalStorage {
	return &LocalStorage{uploadDir: uploadDir, urlPrefix: strings.TrimSuffix(urlPrefix, "/")}
}

func NewSpacesStorage(endpoint, region, bucket, cdnURL, accessKey, secretKey string) (*SpacesStorage, error) {
	config := &aws.Config{
		Credentials:      credentials.NewStaticCredentials(accessKey, secretKey, ""),
		Endpoint:         aws.String(endpoint),
		Region:           aws.String(region),
		S3ForcePathStyle: aws.Bool(false),
	}

	sess, err := session.NewSession(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return &SpacesStorage{
		client: s3.New(sess),
		bucket: bucket,
		cdnURL: cdnURL,
	}, nil
}

// contentTypes lists the accepted image extensions.
var contentTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// ContentType returns the image mime type for filename's extension.
func ContentType(filename string) (string, bool) {
	ct, ok := contentTypes[strings.ToLower(filepath.Ext(filename))]
	return ct, ok
}

// normalizeFilename turns an upload name into a unique slug-style name that
// keeps the lowercased extension.
func normalizeFilename(originalFilename string, now time.Time) string {
	ext := strings.ToLower(filepath.Ext(originalFilename))
	baseName := slug.Generate(strings.TrimSuffix(originalFilename, filepath.Ext(originalFilename)))
	if baseName == "" {
		baseName = "image"
	}
	return fmt.Sprintf("%s_%s_%s%s", baseName, now.Format("20060102_150405"), uuid.NewString()[:8], ext)
}

func (ls *LocalStorage) SaveImage(_ context.Context, fileHeader *multipart.FileHeader) (string, error) {
	if _, ok := ContentType(fileHeader.Filename); !ok {
		return "", ErrUnsupportedType
	}
	name := normalizeFilename(fileHeader.Filename, time.Now())
	log.Debug().Str("original", fileHeader.Filename).Str("normalized", name).Msg("image upload normalized")

	if err := os.MkdirAll(ls.uploadDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	src, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(filepath.Join(ls.uploadDir, name))
	if err != nil {
		return "", fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("failed to save file: %w", err)
	}

	return ls.urlPrefix + "/" + name, nil
}

func (ss *SpacesStorage) SaveImage(ctx context.Context, fileHeader *multipart.FileHeader) (string, error) {
	contentType, ok := ContentType(fileHeader.Filename)
	if !ok {
		return "", ErrUnsupportedType
	}
	name := normalizeFilename(fileHeader.Filename, time.Now())
	log.Debug().Str("original", fileHeader.Filename).Str("normalized", name).Msg("image upload normalized")

	src, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	key := "uploads/" + name
	_, err = ss.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(ss.bucket),
		Key:         aws.String(key),
		Body:        src,
		ContentType: aws.String(contentType),
		ACL:         aws.String("public-read"),
	})
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("failed to upload image to Spaces")
		return "", fmt.Errorf("failed to upload to Spaces: %w", err)
	}

	return fmt.Sprintf("%s/%s", strings.TrimSuffix(ss.cdnURL, "/"), key), nil
}
