package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/dmitrijs2005/agrisense/internal/client/client"
	"github.com/dmitrijs2005/agrisense/internal/client/models"
)

const (
	pathPosts           = "/community/posts"
	pathSearch          = "/community/posts/search"
	pathTrending        = "/community/trending"
	pathTopContributors = "/community/top-contributors"
	pathUploadImage     = "/community/upload-image"
	pathUserPosts       = "/community/user/%d/posts"

	// MaxImageSize is the largest image the backend accepts.
	MaxImageSize = 5 << 20
)

// AllowedImageExtensions are the file types the backend accepts for posts.
var AllowedImageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp"}

var (
	// ErrLikeInFlight is returned by ToggleLike while a toggle for the same
	// post has not completed.
	ErrLikeInFlight  = errors.New("like already in progress")
	ErrImageType     = errors.New("invalid file type")
	ErrImageTooLarge = errors.New("file too large, maximum size is 5MB")
	ErrEmptyImage    = errors.New("file is empty")
	ErrInvalidPostID = errors.New("invalid post id")
	ErrEmptyComment  = errors.New("comment cannot be empty")
)

type CommunityService interface {
	Posts(ctx context.Context, f models.PostFilter) ([]models.Post, error)
	Search(ctx context.Context, q string, skip, limit int) ([]models.Post, error)
	CreatePost(ctx context.Context, p models.PostCreate) (*models.Post, error)
	UpdatePost(ctx context.Context, id int64, p models.PostUpdate) (*models.Post, error)
	DeletePost(ctx context.Context, id int64) error
	UserPosts(ctx context.Context, userID int64) ([]models.Post, error)
	Trending(ctx context.Context) ([]models.Post, error)
	TopContributors(ctx context.Context, limit int) ([]models.Contributor, error)
	Comments(ctx context.Context, postID int64) ([]models.Comment, error)
	AddComment(ctx context.Context, postID int64, content string) (*models.Comment, error)
	UploadImage(ctx context.Context, filename string, data []byte) (string, error)
	ToggleLike(ctx context.Context, postID int64) (*models.LikeResult, error)
}

type communityService struct {
	client client.Client

	mu       sync.Mutex
	inFlight map[int64]struct{}
}

func NewCommunityService(c client.Client) CommunityService {
	return &communityService{client: c, inFlight: make(map[int64]struct{})}
}

func withQuery(path string, q url.Values) string {
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}

func pagination(q url.Values, skip, limit int) {
	if skip > 0 {
		q.Set("skip", strconv.Itoa(skip))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
}

func normalizePosts(posts []models.Post) []models.Post {
	if posts == nil {
		return []models.Post{}
	}
	for i := range posts {
		posts[i].Normalize()
	}
	return posts
}

func postPath(id int64) string {
	return pathPosts + "/" + strconv.FormatInt(id, 10)
}

func checkID(id int64) error {
	if id <= 0 {
		return client.NewClientError(ErrInvalidPostID)
	}
	return nil
}

func (s *communityService) Posts(ctx context.Context, f models.PostFilter) ([]models.Post, error) {
	q := url.Values{}
	pagination(q, f.Skip, f.Limit)
	if c := strings.TrimSpace(f.Crop); c != "" {
		q.Set("crop", c)
	}
	if c := strings.TrimSpace(f.Category); c != "" {
		q.Set("category", c)
	}

	var posts []models.Post
	if err := s.client.Invoke(ctx, http.MethodGet, withQuery(pathPosts, q), nil, &posts); err != nil {
		return nil, fmt.Errorf("load posts: %w", err)
	}
	return normalizePosts(posts), nil
}

// Search returns an empty result for a blank query without calling the
// backend.
func (s *communityService) Search(ctx context.Context, q string, skip, limit int) ([]models.Post, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return []models.Post{}, nil
	}
	v := url.Values{"q": {q}}
	pagination(v, skip, limit)

	var posts []models.Post
	if err := s.client.Invoke(ctx, http.MethodGet, withQuery(pathSearch, v), nil, &posts); err != nil {
		return nil, fmt.Errorf("search posts: %w", err)
	}
	return normalizePosts(posts), nil
}

func (s *communityService) CreatePost(ctx context.Context, p models.PostCreate) (*models.Post, error) {
	p.Content = strings.TrimSpace(p.Content)
	var post models.Post
	if err := s.client.Invoke(ctx, http.MethodPost, pathPosts, p, &post); err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	post.Normalize()
	return &post, nil
}

func (s *communityService) UpdatePost(ctx context.Context, id int64, p models.PostUpdate) (*models.Post, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	p.Content = strings.TrimSpace(p.Content)
	var post models.Post
	if err := s.client.Invoke(ctx, http.MethodPut, postPath(id), p, &post); err != nil {
		return nil, fmt.Errorf("update post %d: %w", id, err)
	}
	post.Normalize()
	return &post, nil
}

func (s *communityService) DeletePost(ctx context.Context, id int64) error {
	if err := checkID(id); err != nil {
		return err
	}
	if err := s.client.Invoke(ctx, http.MethodDelete, postPath(id), nil, nil); err != nil {
		return fmt.Errorf("delete post %d: %w", id, err)
	}
	return nil
}

func (s *communityService) UserPosts(ctx context.Context, userID int64) ([]models.Post, error) {
	var posts []models.Post
	if err := s.client.Invoke(ctx, http.MethodGet, fmt.Sprintf(pathUserPosts, userID), nil, &posts); err != nil {
		return nil, fmt.Errorf("load posts of user %d: %w", userID, err)
	}
	return normalizePosts(posts), nil
}

func (s *communityService) Trending(ctx context.Context) ([]models.Post, error) {
	var posts []models.Post
	if err := s.client.Invoke(ctx, http.MethodGet, pathTrending, nil, &posts); err != nil {
		return nil, fmt.Errorf("load trending posts: %w", err)
	}
	return normalizePosts(posts), nil
}

func (s *communityService) TopContributors(ctx context.Context, limit int) ([]models.Contributor, error) {
	q := url.Values{}
	pagination(q, 0, limit)

	var out []models.Contributor
	if err := s.client.Invoke(ctx, http.MethodGet, withQuery(pathTopContributors, q), nil, &out); err != nil {
		return nil, fmt.Errorf("load top contributors: %w", err)
	}
	if out == nil {
		out = []models.Contributor{}
	}
	return out, nil
}

func (s *communityService) Comments(ctx context.Context, postID int64) ([]models.Comment, error) {
	if err := checkID(postID); err != nil {
		return nil, err
	}
	var out []models.Comment
	if err := s.client.Invoke(ctx, http.MethodGet, postPath(postID)+"/comments", nil, &out); err != nil {
		return nil, fmt.Errorf("load comments of post %d: %w", postID, err)
	}
	if out == nil {
		out = []models.Comment{}
	}
	for i := range out {
		out[i].Normalize()
	}
	return out, nil
}

func (s *communityService) AddComment(ctx context.Context, postID int64, content string) (*models.Comment, error) {
	if err := checkID(postID); err != nil {
		return nil, err
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, client.NewClientError(ErrEmptyComment)
	}
	var c models.Comment
	if err := s.client.Invoke(ctx, http.MethodPost, postPath(postID)+"/comments", models.CommentCreate{Content: content}, &c); err != nil {
		return nil, fmt.Errorf("add comment to post %d: %w", postID, err)
	}
	c.Normalize()
	return &c, nil
}

// UploadImage checks the extension and size locally, then uploads data and
// returns the URL to reference from a post.
func (s *communityService) UploadImage(ctx context.Context, filename string, data []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	allowed := false
	for _, a := range AllowedImageExtensions {
		if ext == a {
			allowed = true
			break
		}
	}
	switch {
	case !allowed:
		return "", client.NewClientError(fmt.Errorf("%w, allowed: %s", ErrImageType, strings.Join(AllowedImageExtensions, ", ")))
	case len(data) == 0:
		return "", client.NewClientError(ErrEmptyImage)
	case len(data) > MaxImageSize:
		return "", client.NewClientError(ErrImageTooLarge)
	}

	var res models.UploadResult
	if err := s.client.Upload(ctx, pathUploadImage, "file", filepath.Base(filename), data, &res); err != nil {
		return "", fmt.Errorf("upload image: %w", err)
	}
	return res.URL, nil
}

// ToggleLike likes or unlikes a post. While a toggle for postID is in
// flight, further calls for it fail fast with ErrLikeInFlight and send
// nothing.
func (s *communityService) ToggleLike(ctx context.Context, postID int64) (*models.LikeResult, error) {
	if err := checkID(postID); err != nil {
		return nil, err
	}

	s.mu.Lock()
	if _, busy := s.inFlight[postID]; busy {
		s.mu.Unlock()
		return nil, ErrLikeInFlight
	}
	s.inFlight[postID] = struct{}{}
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.inFlight, postID)
		s.mu.Unlock()
	}()

	var res models.LikeResult
	if err := s.client.Invoke(ctx, http.MethodPost, postPath(postID)+"/like", nil, &res); err != nil {
		return nil, fmt.Errorf("toggle like on post %d: %w", postID, err)
	}
	return &res, nil
}
