package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

const defaultMaxHistoryItems = 100

// HistoryItem is one persisted parse/download record.
type HistoryItem struct {
	ID          string    `json:"id"`
	VideoID     string    `json:"videoId"`
	URL         string    `json:"url"`
	Title       string    `json:"title"`
	Cover       string    `json:"cover"`
	DownloadURL string    `json:"downloadUrl"`
	Author      string    `json:"author"`
	CreatedAt   time.Time `json:"createdAt"`
}

// HistoryStats summarizes the retained history.
type HistoryStats struct {
	Total         int `json:"total"`
	Today         int `json:"today"`
	ThisWeek      int `json:"thisWeek"`
	ThisMonth     int `json:"thisMonth"`
	UniqueVideos  int `json:"uniqueVideos"`
	UniqueAuthors int `json:"uniqueAuthors"`
}

// HistoryStore persists user history as a single JSON array file. A mutex
// gives the read-modify-write cycle single-writer discipline; the file itself
// has no locking and the last writer wins across processes.
type HistoryStore struct {
	mu       sync.Mutex
	filePath string
	maxItems int
	now      func() time.Time
}

// NewHistoryStore creates a history store over filePath, capped at maxItems
// (<=0 selects the default of 100 retained entries).
func NewHistoryStore(filePath string, maxItems int) *HistoryStore {
	if maxItems <= 0 {
		maxItems = defaultMaxHistoryItems
	}
	return &HistoryStore{
		filePath: filePath,
		maxItems: maxItems,
		now:      time.Now,
	}
}

// List returns the retained history, newest first.
func (s *HistoryStore) List() ([]HistoryItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load()
	if err != nil {
		return nil, err
	}

	return lo.Reverse(items), nil
}

// Add appends item to the history, assigning it an id and timestamp. Entries
// beyond the cap are evicted oldest first.
func (s *HistoryStore) Add(item HistoryItem) (*HistoryItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load()
	if err != nil {
		return nil, err
	}

	item.ID = uuid.New().String()
	item.CreatedAt = s.now()

	items = append(items, item)
	if len(items) > s.maxItems {
		items = items[len(items)-s.maxItems:]
	}

	if err := s.save(items); err != nil {
		return nil, err
	}
	return &item, nil
}

// Delete removes the entry with the given id. Deleting an absent id is not an
// error; the list is simply unchanged.
func (s *HistoryStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load()
	if err != nil {
		return err
	}

	filtered := lo.Filter(items, func(item HistoryItem, _ int) bool {
		return item.ID != id
	})

	return s.save(filtered)
}

// Clear drops all history.
func (s *HistoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save([]HistoryItem{})
}

// Search returns entries whose title, author or video id contain query.
func (s *HistoryStore) Search(query string) ([]HistoryItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load()
	if err != nil {
		return nil, err
	}

	lowered := strings.ToLower(query)
	matched := lo.Filter(items, func(item HistoryItem, _ int) bool {
		return strings.Contains(strings.ToLower(item.Title), lowered) ||
			strings.Contains(strings.ToLower(item.Author), lowered) ||
			strings.Contains(item.VideoID, query)
	})

	return lo.Reverse(matched), nil
}

// Stats computes the summary counters in a single pass over the file.
func (s *HistoryStore) Stats() (*HistoryStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load()
	if err != nil {
		return nil, err
	}

	now := s.now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	startOfWeek := startOfDay.AddDate(0, 0, -7)
	startOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	stats := &HistoryStats{Total: len(items)}
	videoIDs := make([]string, 0, len(items))
	authors := make([]string, 0, len(items))

	for _, item := range items {
		if !item.CreatedAt.Before(startOfDay) {
			stats.Today++
		}
		if !item.CreatedAt.Before(startOfWeek) {
			stats.ThisWeek++
		}
		if !item.CreatedAt.Before(startOfMonth) {
			stats.ThisMonth++
		}
		videoIDs = append(videoIDs, item.VideoID)
		authors = append(authors, item.Author)
	}

	stats.UniqueVideos = len(lo.Uniq(videoIDs))
	stats.UniqueAuthors = len(lo.Uniq(authors))

	return stats, nil
}

// Export renders the full history in the requested format, newest first.
func (s *HistoryStore) Export(format string) ([]byte, string, error) {
	items, err := s.List()
	if err != nil {
		return nil, "", err
	}
	return exportHistory(items, format)
}

func (s *HistoryStore) load() ([]HistoryItem, error) {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []HistoryItem{}, nil
		}
		return nil, fmt.Errorf("read history file: %w", err)
	}

	var items []HistoryItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("parse history file: %w", err)
	}
	return items, nil
}

func (s *HistoryStore) save(items []HistoryItem) error {
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.filePath), 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	if err := os.WriteFile(s.filePath, data, 0o644); err != nil {
		return fmt.Errorf("write history file: %w", err)
	}
	return nil
}
