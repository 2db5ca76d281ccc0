package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"path"
	"regexp"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/edustay/internal/app/models/dto"
	"github.com/yigit/edustay/internal/pkg/apperrors"
	"github.com/yigit/edustay/internal/pkg/filestorage"
)

// Storage locations below the upload root
const (
	courseImageDir   = "courses/images"
	courseContentDir = "courses"
	houseImageDir    = "housing/images"
)

// UploadService stores course and housing files
type UploadService interface {
	UploadCourseFile(ctx context.Context, fileHeader *multipart.FileHeader, kind dto.UploadKind, weekID, topicID string) (*dto.UploadResponse, error)
	UploadHouseImage(ctx context.Context, fileHeader *multipart.FileHeader) (*dto.UploadResponse, error)
}

type uploadServiceImpl struct {
	storage  filestorage.FileStorage
	maxBytes int64
	logger   zerolog.Logger
}

// NewUploadService creates a new upload service. maxBytes <= 0 disables the size check.
func NewUploadService(storage filestorage.FileStorage, maxBytes int64, logger zerolog.Logger) UploadService {
	return &uploadServiceImpl{
		storage:  storage,
		maxBytes: maxBytes,
		logger:   logger,
	}
}

// UploadCourseFile stores a course cover image, or a content file of a topic
// under courses/<weekId>/<topicId>.
func (s *uploadServiceImpl) UploadCourseFile(ctx context.Context, fileHeader *multipart.FileHeader, kind dto.UploadKind, weekID, topicID string) (*dto.UploadResponse, error) {
	if err := s.checkFile(fileHeader); err != nil {
		return nil, err
	}

	dir := courseImageDir
	if kind == dto.UploadCourseImage {
		if !isImage(fileHeader) {
			return nil, fmt.Errorf("%w: only images are allowed", apperrors.ErrValidationFailed)
		}
	} else {
		kind = dto.UploadTopicContent
		week, err := parsePathID(weekID, "weekId")
		if err != nil {
			return nil, err
		}
		topic, err := parsePathID(topicID, "topicId")
		if err != nil {
			return nil, err
		}
		dir = path.Join(courseContentDir, week, topic)
	}

	return s.save(fileHeader, dir, kind)
}

// UploadHouseImage stores a listing photo
func (s *uploadServiceImpl) UploadHouseImage(ctx context.Context, fileHeader *multipart.FileHeader) (*dto.UploadResponse, error) {
	if err := s.checkFile(fileHeader); err != nil {
		return nil, err
	}
	if !isImage(fileHeader) {
		return nil, fmt.Errorf("%w: invalid file type, only images are allowed", apperrors.ErrValidationFailed)
	}
	return s.save(fileHeader, houseImageDir, dto.UploadHouseImage)
}

func (s *uploadServiceImpl) checkFile(fileHeader *multipart.FileHeader) error {
	if fileHeader == nil {
		return fmt.Errorf("%w: no file provided", apperrors.ErrValidationFailed)
	}
	if s.maxBytes > 0 && fileHeader.Size > s.maxBytes {
		return fmt.Errorf("%w: file exceeds %d bytes", apperrors.ErrValidationFailed, s.maxBytes)
	}
	return nil
}

func (s *uploadServiceImpl) save(fileHeader *multipart.FileHeader, dir string, kind dto.UploadKind) (*dto.UploadResponse, error) {
	info, err := s.storage.SaveFileWithPath(fileHeader, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to store file: %w", err)
	}

	s.logger.Info().Str("path", info.Path).Str("type", string(kind)).Msg("File uploaded")
	return &dto.UploadResponse{
		URL:      info.URL,
		Filename: info.Filename,
		Type:     kind,
		Size:     info.FileSize,
		MimeType: info.MimeType,
	}, nil
}

func isImage(fileHeader *multipart.FileHeader) bool {
	return strings.HasPrefix(fileHeader.Header.Get("Content-Type"), "image/")
}

// pathSegmentPattern limits ids to characters that are safe as a directory name.
// Week and topic ids may be database ids or client-generated UUIDs.
var pathSegmentPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

func parsePathID(value, field string) (string, error) {
	id := strings.TrimSpace(value)
	if id == "" {
		return "", fmt.Errorf("%w: %s is required for course content", apperrors.ErrValidationFailed, field)
	}
	if !pathSegmentPattern.MatchString(id) {
		return "", fmt.Errorf("%w: %s must be at most 64 letters, digits, '-' or '_'", apperrors.ErrValidationFailed, field)
	}
	return id, nil
}
