// Package lesson defines the domain models and collaborator interfaces for lesson content delivery.
package lesson

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/lingoreel-cli/lingoreel/auth"
	"github.com/lingoreel-cli/lingoreel/constant"
	"github.com/lingoreel-cli/lingoreel/internal/cache"
	"github.com/lingoreel-cli/lingoreel/key"
	"github.com/lingoreel-cli/lingoreel/log"
	"github.com/lingoreel-cli/lingoreel/network"
	"github.com/spf13/viper"
)

// ContentService defines the required capabilities of the lesson content backend.
type ContentService interface {
	// FetchLesson retrieves a lesson by id and language. A missing lesson
	// returns (nil, nil), not an error.
	FetchLesson(ctx context.Context, id int, language string) (*Lesson, error)

	// MaxLessonID returns the highest available lesson id for a language.
	MaxLessonID(ctx context.Context, language string) (int, error)

	// UpdateCurrentLesson persists the user's current-lesson pointer.
	UpdateCurrentLesson(ctx context.Context, userID string, lessonID int, language string) error
}

// HTTPContentService implements ContentService against the lingoreel REST API.
type HTTPContentService struct {
	baseURL string
	client  *http.Client
}

// NewHTTPContentService creates a content service client using the configured base URL.
func NewHTTPContentService() *HTTPContentService {
	return &HTTPContentService{
		baseURL: viper.GetString(key.ContentBaseURL),
		client:  network.Client,
	}
}

func (s *HTTPContentService) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	s.decorate(req)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("content service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return errNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("content service returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (s *HTTPContentService) decorate(req *http.Request) {
	req.Header.Set("User-Agent", constant.UserAgent)
	if token, err := auth.GetToken(); err == nil && token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

var errNotFound = fmt.Errorf("not found")

// FetchLesson retrieves a single lesson. Missing lessons yield (nil, nil).
// Responses are cached on disk so recently watched lessons survive offline runs.
func (s *HTTPContentService) FetchLesson(ctx context.Context, id int, language string) (*Lesson, error) {
	cacheKey := cache.GenerateKey(language, id)

	var l Lesson
	err := s.get(ctx, fmt.Sprintf("/v1/lessons/%s/%d", language, id), &l)
	if err == errNotFound {
		return nil, nil
	}
	if err != nil {
		if cache.Read(cacheKey, &l) {
			log.Debugf("serving lesson %s/%d from cache: %v", language, id, err)
			return &l, nil
		}
		return nil, err
	}

	if err := cache.Write(cacheKey, &l); err != nil {
		log.Warnf("cache lesson %s/%d: %v", language, id, err)
	}
	return &l, nil
}

// MaxLessonID returns the highest lesson id available for the language.
func (s *HTTPContentService) MaxLessonID(ctx context.Context, language string) (int, error) {
	var out struct {
		MaxID int `json:"max_id"`
	}
	if err := s.get(ctx, fmt.Sprintf("/v1/lessons/%s/max", language), &out); err != nil {
		return 0, err
	}
	return out.MaxID, nil
}

// UpdateCurrentLesson persists the user's current-lesson pointer.
// A failed update is logged but never blocks navigation.
func (s *HTTPContentService) UpdateCurrentLesson(ctx context.Context, userID string, lessonID int, language string) error {
	body := strings.NewReader(fmt.Sprintf(`{"user_id":%q,"lesson_id":%d,"language":%q}`, userID, lessonID, language))
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, s.baseURL+"/v1/users/current-lesson", body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	s.decorate(req)

	resp, err := s.client.Do(req)
	if err != nil {
		log.Warnf("persist current lesson: %v", err)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("content service returned status %d", resp.StatusCode)
	}
	return nil
}
