package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/leetnote-go-api/internal/cache"
	"github.com/noah-isme/leetnote-go-api/internal/dto"
	"github.com/noah-isme/leetnote-go-api/internal/models"
	"github.com/noah-isme/leetnote-go-api/internal/repository"
	"github.com/noah-isme/leetnote-go-api/pkg/leetcode"
)

var (
	// ErrLeetcodeProfileMissing indicates the user has not linked a LeetCode account.
	ErrLeetcodeProfileMissing = errors.New("no leetcode profile found for user")
	// ErrLeetcodeUserNotFound indicates LeetCode does not know the username.
	ErrLeetcodeUserNotFound = errors.New("leetcode user not found")
	// ErrLeetcodeUsernameTaken indicates another account already linked the username.
	ErrLeetcodeUsernameTaken = errors.New("leetcode username already linked to another account")
)

// StatsFetcher retrieves live statistics from LeetCode.
type StatsFetcher interface {
	FetchStats(ctx context.Context, username string) (leetcode.Stats, error)
}

// LeetcodeService links LeetCode accounts and serves their statistics.
type LeetcodeService interface {
	Stats(ctx context.Context, userID uint) (*dto.LeetcodeStatsResponse, error)
	SaveUsername(ctx context.Context, userID uint, username string) (dto.LeetcodeStatsResponse, error)
	UpdateUsername(ctx context.Context, userID uint, username string) (dto.LeetcodeStatsResponse, error)
	Refresh(ctx context.Context, userID uint) (dto.LeetcodeStatsResponse, error)
}

type leetcodeService struct {
	profiles repository.LeetcodeProfileRepository
	users    repository.UserRepository
	fetcher  StatsFetcher
	cache    *cache.Cache
	logger   zerolog.Logger
	now      func() time.Time
}

// NewLeetcodeService constructs the LeetCode statistics service. cache may be nil.
func NewLeetcodeService(profiles repository.LeetcodeProfileRepository, users repository.UserRepository, fetcher StatsFetcher, cache *cache.Cache, logger zerolog.Logger) LeetcodeService {
	return &leetcodeService{
		profiles: profiles,
		users:    users,
		fetcher:  fetcher,
		cache:    cache,
		logger:   logger.With().Str("component", "leetcode_service").Logger(),
		now:      time.Now,
	}
}

// Stats returns the stored statistics, or nil when no account is linked.
func (s *leetcodeService) Stats(ctx context.Context, userID uint) (*dto.LeetcodeStatsResponse, error) {
	key := userKey(userID)

	var cached dto.LeetcodeStatsResponse
	if s.cache.Get(ctx, cache.UserLeetcodeStats, key, &cached) {
		return &cached, nil
	}

	profile, found, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}

	stats := dto.NewLeetcodeStatsResponse(profile)
	s.cache.Set(ctx, cache.UserLeetcodeStats, key, stats)
	return &stats, nil
}

func (s *leetcodeService) SaveUsername(ctx context.Context, userID uint, username string) (dto.LeetcodeStatsResponse, error) {
	username = strings.TrimSpace(username)

	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return dto.LeetcodeStatsResponse{}, translateUserError(err)
	}

	taken, err := s.profiles.UsernameTaken(ctx, username, userID)
	if err != nil {
		return dto.LeetcodeStatsResponse{}, err
	}
	if taken {
		return dto.LeetcodeStatsResponse{}, ErrLeetcodeUsernameTaken
	}

	stats, err := s.fetch(ctx, username)
	if err != nil {
		return dto.LeetcodeStatsResponse{}, err
	}

	profile, _, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		return dto.LeetcodeStatsResponse{}, err
	}
	profile.UserID = userID

	return s.store(ctx, profile, stats)
}

func (s *leetcodeService) UpdateUsername(ctx context.Context, userID uint, username string) (dto.LeetcodeStatsResponse, error) {
	return s.SaveUsername(ctx, userID, username)
}

func (s *leetcodeService) Refresh(ctx context.Context, userID uint) (dto.LeetcodeStatsResponse, error) {
	profile, found, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		return dto.LeetcodeStatsResponse{}, err
	}
	if !found {
		return dto.LeetcodeStatsResponse{}, ErrLeetcodeProfileMissing
	}

	stats, err := s.fetch(ctx, profile.Username)
	if err != nil {
		return dto.LeetcodeStatsResponse{}, err
	}

	return s.store(ctx, profile, stats)
}

// fetch reads live statistics through the leetcodeApiStats cache.
func (s *leetcodeService) fetch(ctx context.Context, username string) (leetcode.Stats, error) {
	key := strings.ToLower(username)

	var stats leetcode.Stats
	if s.cache.Get(ctx, cache.LeetcodeAPIStats, key, &stats) {
		return stats, nil
	}

	stats, err := s.fetcher.FetchStats(ctx, username)
	if err != nil {
		if errors.Is(err, leetcode.ErrUserNotFound) {
			return leetcode.Stats{}, fmt.Errorf("%w: %s", ErrLeetcodeUserNotFound, username)
		}
		s.logger.Error().Err(err).Str("username", username).Msg("failed to fetch leetcode stats")
		return leetcode.Stats{}, err
	}

	s.cache.Set(ctx, cache.LeetcodeAPIStats, key, stats)
	return stats, nil
}

func (s *leetcodeService) store(ctx context.Context, profile models.LeetcodeProfile, stats leetcode.Stats) (dto.LeetcodeStatsResponse, error) {
	profile.Username = stats.Username
	profile.TotalSolved = stats.TotalSolved
	profile.EasySolved = stats.EasySolved
	profile.MediumSolved = stats.MediumSolved
	profile.HardSolved = stats.HardSolved
	profile.LastUpdated = s.now()

	if err := s.profiles.Save(ctx, &profile); err != nil {
		return dto.LeetcodeStatsResponse{}, err
	}

	s.cache.Evict(ctx, cache.UserLeetcodeStats, userKey(profile.UserID))
	return dto.NewLeetcodeStatsResponse(profile), nil
}
