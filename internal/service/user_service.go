package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/leetnote-go-api/internal/cache"
	"github.com/noah-isme/leetnote-go-api/internal/dto"
	"github.com/noah-isme/leetnote-go-api/internal/models"
	"github.com/noah-isme/leetnote-go-api/internal/repository"
)

const (
	minUsernameLength = 3
	maxUsernameLength = 32
)

var (
	// ErrUserNotFound indicates the user account does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrUsernameTaken indicates another account already uses the username.
	ErrUsernameTaken = errors.New("username already taken")
	// ErrInvalidUsername indicates the username is empty or has the wrong length after sanitising.
	ErrInvalidUsername = errors.New("username must be between 3 and 32 characters")
	// ErrUploadUnavailable indicates no picture storage is configured.
	ErrUploadUnavailable = errors.New("profile picture uploads are not configured")
	// ErrUploadTooLarge indicates the payload exceeded the configured limit.
	ErrUploadTooLarge = errors.New("file exceeds maximum allowed size")
	// ErrUploadTypeNotAllowed indicates the file is not an image.
	ErrUploadTypeNotAllowed = errors.New("file type not allowed")
)

// FileStorage stores profile pictures under a stable public id.
type FileStorage interface {
	Upload(ctx context.Context, publicID string, reader io.Reader) (string, error)
	Remove(ctx context.Context, publicID string) error
}

// UserService manages local accounts and their profile data.
type UserService interface {
	FindOrCreate(ctx context.Context, externalUID, email string) (models.User, error)
	Profile(ctx context.Context, userID uint) (dto.UserProfileResponse, error)
	UpdateUsername(ctx context.Context, userID uint, username string) (dto.UserProfileResponse, error)
	UpdateProfileURL(ctx context.Context, userID uint, url string) (dto.UserProfileResponse, error)
	ClearProfileURL(ctx context.Context, userID uint) (dto.UserProfileResponse, error)
	UploadProfilePicture(ctx context.Context, userID uint, file *multipart.FileHeader) (dto.UserProfileResponse, error)
}

type userService struct {
	users     repository.UserRepository
	storage   FileStorage
	cache     *cache.Cache
	sanitizer *bluemonday.Policy
	maxSize   int64
	logger    zerolog.Logger
	tracer    trace.Tracer
}

// NewUserService constructs the user service. storage and cache may be nil.
func NewUserService(users repository.UserRepository, storage FileStorage, cache *cache.Cache, maxSizeMB int, logger zerolog.Logger) UserService {
	if maxSizeMB <= 0 {
		maxSizeMB = 5
	}
	return &userService{
		users:     users,
		storage:   storage,
		cache:     cache,
		sanitizer: bluemonday.StrictPolicy(),
		maxSize:   int64(maxSizeMB) * 1024 * 1024,
		logger:    logger.With().Str("component", "user_service").Logger(),
		tracer:    otel.Tracer("github.com/noah-isme/leetnote-go-api/internal/service/user"),
	}
}

func (s *userService) FindOrCreate(ctx context.Context, externalUID, email string) (models.User, error) {
	return s.users.FindOrCreate(ctx, externalUID, email)
}

func (s *userService) Profile(ctx context.Context, userID uint) (dto.UserProfileResponse, error) {
	key := userKey(userID)

	var profile dto.UserProfileResponse
	if s.cache.Get(ctx, cache.Users, key, &profile) {
		return profile, nil
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return dto.UserProfileResponse{}, translateUserError(err)
	}

	profile = dto.NewUserProfileResponse(user)
	s.cache.Set(ctx, cache.Users, key, profile)
	return profile, nil
}

func (s *userService) UpdateUsername(ctx context.Context, userID uint, username string) (dto.UserProfileResponse, error) {
	cleaned := strings.TrimSpace(s.sanitizer.Sanitize(strings.TrimSpace(username)))
	length := utf8.RuneCountInString(cleaned)
	if length < minUsernameLength || length > maxUsernameLength {
		return dto.UserProfileResponse{}, ErrInvalidUsername
	}

	taken, err := s.users.UsernameTaken(ctx, cleaned, userID)
	if err != nil {
		return dto.UserProfileResponse{}, err
	}
	if taken {
		return dto.UserProfileResponse{}, ErrUsernameTaken
	}

	if err := s.users.UpdateUsername(ctx, userID, cleaned); err != nil {
		return dto.UserProfileResponse{}, translateUserError(err)
	}

	return s.refresh(ctx, userID)
}

func (s *userService) UpdateProfileURL(ctx context.Context, userID uint, url string) (dto.UserProfileResponse, error) {
	url = strings.TrimSpace(url)
	if err := s.users.UpdateProfileURL(ctx, userID, &url); err != nil {
		return dto.UserProfileResponse{}, translateUserError(err)
	}
	return s.refresh(ctx, userID)
}

func (s *userService) ClearProfileURL(ctx context.Context, userID uint) (dto.UserProfileResponse, error) {
	if err := s.users.UpdateProfileURL(ctx, userID, nil); err != nil {
		return dto.UserProfileResponse{}, translateUserError(err)
	}

	if s.storage != nil {
		if err := s.storage.Remove(ctx, pictureID(userID)); err != nil {
			s.logger.Warn().Err(err).Uint("user_id", userID).Msg("failed to remove stored profile picture")
		}
	}

	return s.refresh(ctx, userID)
}

// UploadProfilePicture stores an image and links it to the user.
func (s *userService) UploadProfilePicture(ctx context.Context, userID uint, file *multipart.FileHeader) (dto.UserProfileResponse, error) {
	ctx, span := s.tracer.Start(ctx, "user.profile_picture.upload")
	defer span.End()
	span.SetAttributes(attribute.Int64("upload.max_bytes", s.maxSize))

	if s.storage == nil {
		span.SetStatus(codes.Error, "storage unavailable")
		return dto.UserProfileResponse{}, ErrUploadUnavailable
	}
	if file == nil {
		err := errors.New("file is required")
		span.SetStatus(codes.Error, "validation failed")
		return dto.UserProfileResponse{}, err
	}
	if file.Size > s.maxSize {
		span.SetStatus(codes.Error, "payload too large")
		return dto.UserProfileResponse{}, ErrUploadTooLarge
	}

	handle, err := file.Open()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "open failed")
		return dto.UserProfileResponse{}, err
	}
	defer handle.Close()

	buf := bytes.NewBuffer(nil)
	if _, err := io.Copy(buf, io.LimitReader(handle, s.maxSize+1)); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "read failed")
		return dto.UserProfileResponse{}, err
	}
	if int64(buf.Len()) > s.maxSize {
		span.SetStatus(codes.Error, "payload too large")
		return dto.UserProfileResponse{}, ErrUploadTooLarge
	}

	detected := mimetype.Detect(buf.Bytes())
	span.SetAttributes(attribute.String("upload.detected_mime", detected.String()))
	if !strings.HasPrefix(detected.String(), "image/") {
		span.SetStatus(codes.Error, "type not allowed")
		return dto.UserProfileResponse{}, ErrUploadTypeNotAllowed
	}

	url, err := s.storage.Upload(ctx, pictureID(userID), bytes.NewReader(buf.Bytes()))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "storage failed")
		return dto.UserProfileResponse{}, fmt.Errorf("store profile picture: %w", err)
	}

	if err := s.users.UpdateProfileURL(ctx, userID, &url); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "persistence failed")
		return dto.UserProfileResponse{}, translateUserError(err)
	}

	span.SetStatus(codes.Ok, "stored")
	return s.refresh(ctx, userID)
}

func (s *userService) refresh(ctx context.Context, userID uint) (dto.UserProfileResponse, error) {
	s.cache.Evict(ctx, cache.Users, userKey(userID))
	return s.Profile(ctx, userID)
}

func translateUserError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrUserNotFound
	}
	return err
}

func userKey(userID uint) string {
	return strconv.FormatUint(uint64(userID), 10)
}

func pictureID(userID uint) string {
	return "user-" + userKey(userID)
}
