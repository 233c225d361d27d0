package main

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"
)

// Status represents the completion state of a todo.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
)

// Tag labels a todo.
type Tag string

const (
	TagWork     Tag = "work"
	TagPersonal Tag = "personal"
	TagUrgent   Tag = "urgent"
	TagLater    Tag = "later"
)

// AllTags lists the tags offered by the UI.
var AllTags = []Tag{TagWork, TagPersonal, TagUrgent, TagLater}

var errEmptyTitle = errors.New("title is required")

// Todo is a single task. Field names are the JSON props the pages receive.
type Todo struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      Status    `json:"status"`
	Tags        []Tag     `json:"tags"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// HasTag reports whether the todo carries tag.
func (t Todo) HasTag(tag Tag) bool {
	return slices.Contains(t.Tags, tag)
}

// Stats summarises the store for the sidebar.
type Stats struct {
	Total     int         `json:"total"`
	Completed int         `json:"completed"`
	Pending   int         `json:"pending"`
	ByTag     map[Tag]int `json:"byTag"`
}

// Store is an in-memory todo store.
type Store struct {
	mu     sync.RWMutex
	todos  map[string]*Todo
	nextID int
	now    func() time.Time
}

// NewStore creates a store with sample data.
func NewStore() *Store {
	s := &Store{
		todos:  make(map[string]*Todo),
		nextID: 1,
		now:    time.Now,
	}

	s.Add("Buy groceries", "Milk, eggs, bread", []Tag{TagPersonal})
	s.Add("Review PR #123", "Check the authentication changes", []Tag{TagWork, TagUrgent})
	s.Add("Write documentation", "Update API docs for v2", []Tag{TagWork})
	s.Add("Call dentist", "Schedule annual checkup", []Tag{TagPersonal, TagLater})
	s.Add("Fix login bug", "Users can't reset passwords", []Tag{TagWork, TagUrgent})

	return s
}

// Add creates a todo and returns it.
func (s *Store) Add(title, description string, tags []Tag) (Todo, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Todo{}, errEmptyTitle
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := fmt.Sprintf("todo-%d", s.nextID)
	s.nextID++

	// Sample data is added in one burst; the sequence keeps newest-first
	// ordering stable when timestamps collide.
	now := s.now().Add(time.Duration(s.nextID) * time.Nanosecond)
	t := &Todo{
		ID:          id,
		Title:       title,
		Description: description,
		Status:      StatusPending,
		Tags:        tags,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.todos[id] = t
	return *t, nil
}

// Get returns a todo by ID.
func (s *Store) Get(id string) (Todo, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.todos[id]
	if !ok {
		return Todo{}, false
	}
	return *t, true
}

// Toggle flips a todo between pending and completed.
func (s *Store) Toggle(id string) (Todo, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.todos[id]
	if !ok {
		return Todo{}, false
	}
	if t.Status == StatusCompleted {
		t.Status = StatusPending
	} else {
		t.Status = StatusCompleted
	}
	t.UpdatedAt = s.now()
	return *t, true
}

// Delete removes a todo by ID.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.todos[id]; !ok {
		return false
	}
	delete(s.todos, id)
	return true
}

// List returns todos newest first, optionally filtered by status and tags.
// A todo must carry every tag given.
func (s *Store) List(status Status, tags []Tag) []Todo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []Todo{}
	for _, t := range s.todos {
		if status != "" && t.Status != status {
			continue
		}
		if !slices.ContainsFunc(tags, func(tag Tag) bool { return !t.HasTag(tag) }) {
			result = append(result, *t)
		}
	}

	slices.SortFunc(result, func(a, b Todo) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return result
}

// Page returns the n-th page (from 1) of size todos, newest first, and
// whether a further page exists.
func (s *Store) Page(n, size int) ([]Todo, bool) {
	all := s.List("", nil)
	start := (max(n, 1) - 1) * size
	if start >= len(all) {
		return []Todo{}, false
	}
	end := min(start+size, len(all))
	return all[start:end], end < len(all)
}

// Stats returns counts over the whole store.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := Stats{ByTag: make(map[Tag]int)}
	for _, t := range s.todos {
		stats.Total++
		if t.Status == StatusCompleted {
			stats.Completed++
		} else {
			stats.Pending++
		}
		for _, tag := range t.Tags {
			stats.ByTag[tag]++
		}
	}
	return stats
}
