// Package posts implements the posts service: content CRUD, a visibility
// aware feed, and Redis read caching in front of Postgres.
package posts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"prism/internal/follow"

	"github.com/redis/go-redis/v9"
)

const (
	postCacheTTL = 5 * time.Minute
	listCacheTTL = 2 * time.Minute
)

// Visibility answers whether a viewer may see a target account's content.
// Satisfied by the follow service.
type Visibility interface {
	Account(ctx context.Context, id string) (*follow.Account, error)
	CanView(ctx context.Context, viewerID string, target *follow.Account) (bool, error)
}

// Service handles business logic for posts with caching.
type Service struct {
	repo       *Repository
	visibility Visibility
	cache      *redis.Client
	log        *slog.Logger
}

// NewService creates a posts service. A nil cache client disables caching.
func NewService(repo *Repository, visibility Visibility, cache *redis.Client, log *slog.Logger) *Service {
	if cache != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := cache.Ping(ctx).Err(); err != nil {
			log.Warn("redis connection failed, caching disabled", "error", err)
			cache = nil
		}
	}
	return &Service{repo: repo, visibility: visibility, cache: cache, log: log}
}

// CreatePost creates a new post and invalidates relevant caches.
func (s *Service) CreatePost(ctx context.Context, userID string, req CreatePostRequest) (*Post, error) {
	post, err := s.repo.Create(ctx, userID, req.Caption, req.ImageURL)
	if err != nil {
		return nil, err
	}

	s.invalidateUserPostsCache(ctx, userID)
	return post, nil
}

// GetPost retrieves a post, gated on the author's visibility to the viewer.
func (s *Service) GetPost(ctx context.Context, viewerID string, postID int64) (*Post, error) {
	post, err := s.cachedPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	if err := s.checkVisible(ctx, viewerID, post.UserID); err != nil {
		return nil, err
	}
	return post, nil
}

// Feed returns the paginated feed of posts the viewer may see.
func (s *Service) Feed(ctx context.Context, viewerID string, page, pageSize int) (*PaginatedPostsResponse, error) {
	page, pageSize = clampPage(page, pageSize)

	cacheKey := fmt.Sprintf("posts:feed:%s:page:%d:size:%d", viewerID, page, pageSize)
	if cached := s.cachedList(ctx, cacheKey); cached != nil {
		return cached, nil
	}

	posts, totalCount, err := s.repo.Feed(ctx, viewerID, page, pageSize)
	if err != nil {
		return nil, err
	}

	response := paginate(posts, page, pageSize, totalCount)
	s.storeList(ctx, cacheKey, response, time.Minute)
	return response, nil
}

// GetUserPosts returns one user's posts. A viewer blocked by the target's
// privacy gets an empty page rather than an error.
func (s *Service) GetUserPosts(ctx context.Context, viewerID, targetID string, page, pageSize int) (*PaginatedPostsResponse, error) {
	page, pageSize = clampPage(page, pageSize)

	if err := s.checkVisible(ctx, viewerID, targetID); err != nil {
		if errors.Is(err, follow.ErrUserNotFound) {
			return nil, err
		}
		return paginate([]Post{}, page, pageSize, 0), nil
	}

	cacheKey := fmt.Sprintf("posts:user:%s:page:%d:size:%d", targetID, page, pageSize)
	if cached := s.cachedList(ctx, cacheKey); cached != nil {
		return cached, nil
	}

	posts, totalCount, err := s.repo.GetByUserID(ctx, targetID, page, pageSize)
	if err != nil {
		return nil, err
	}

	response := paginate(posts, page, pageSize, totalCount)
	s.storeList(ctx, cacheKey, response, listCacheTTL)
	return response, nil
}

// UpdatePost edits a post and invalidates caches.
func (s *Service) UpdatePost(ctx context.Context, postID int64, userID string, req UpdatePostRequest) (*Post, error) {
	post, err := s.repo.Update(ctx, postID, userID, req.Caption, req.ImageURL)
	if err != nil {
		return nil, err
	}

	s.invalidatePostCache(ctx, postID)
	s.invalidateUserPostsCache(ctx, userID)
	return post, nil
}

// DeletePost deletes a post and invalidates caches.
func (s *Service) DeletePost(ctx context.Context, postID int64, userID string) error {
	if err := s.repo.Delete(ctx, postID, userID); err != nil {
		return err
	}

	s.invalidatePostCache(ctx, postID)
	s.invalidateUserPostsCache(ctx, userID)
	return nil
}

// checkVisible returns ErrPrivate when the viewer may not see the target.
var ErrPrivate = errors.New("account is private")

func (s *Service) checkVisible(ctx context.Context, viewerID, targetID string) error {
	target, err := s.visibility.Account(ctx, targetID)
	if err != nil {
		return err
	}
	ok, err := s.visibility.CanView(ctx, viewerID, target)
	if err != nil {
		return err
	}
	if !ok {
		return ErrPrivate
	}
	return nil
}

func (s *Service) cachedPost(ctx context.Context, postID int64) (*Post, error) {
	cacheKey := fmt.Sprintf("post:%d", postID)

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, cacheKey).Result()
		if err == nil {
			var post Post
			if err := json.Unmarshal([]byte(cached), &post); err == nil {
				return &post, nil
			}
		}
	}

	post, err := s.repo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		data, _ := json.Marshal(post)
		s.cache.Set(ctx, cacheKey, data, postCacheTTL)
	}
	return post, nil
}

func (s *Service) cachedList(ctx context.Context, cacheKey string) *PaginatedPostsResponse {
	if s.cache == nil {
		return nil
	}
	cached, err := s.cache.Get(ctx, cacheKey).Result()
	if err != nil {
		return nil
	}
	var response PaginatedPostsResponse
	if err := json.Unmarshal([]byte(cached), &response); err != nil {
		return nil
	}
	return &response
}

func (s *Service) storeList(ctx context.Context, cacheKey string, response *PaginatedPostsResponse, ttl time.Duration) {
	if s.cache == nil {
		return
	}
	data, _ := json.Marshal(response)
	s.cache.Set(ctx, cacheKey, data, ttl)
}

func (s *Service) invalidatePostCache(ctx context.Context, postID int64) {
	if s.cache != nil {
		s.cache.Del(ctx, fmt.Sprintf("post:%d", postID))
	}
}

func (s *Service) invalidateUserPostsCache(ctx context.Context, userID string) {
	if s.cache != nil {
		s.deleteByPattern(ctx, fmt.Sprintf("posts:user:%s:*", userID))
	}
}

func (s *Service) deleteByPattern(ctx context.Context, pattern string) {
	iter := s.cache.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		s.cache.Del(ctx, iter.Val())
	}
	if err := iter.Err(); err != nil {
		s.log.Warn("error scanning cache keys", "error", err)
	}
}

func paginate(posts []Post, page, pageSize int, totalCount int64) *PaginatedPostsResponse {
	totalPages := int(totalCount) / pageSize
	if int(totalCount)%pageSize != 0 {
		totalPages++
	}
	return &PaginatedPostsResponse{
		Posts:      posts,
		Page:       page,
		PageSize:   pageSize,
		TotalCount: totalCount,
		TotalPages: totalPages,
	}
}
