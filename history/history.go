// Package history tracks which lessons the learner has watched and how far.
package history

import (
	"github.com/metafates/gache"

	"github.com/lingoreel-cli/lingoreel/filesystem"
	"github.com/lingoreel-cli/lingoreel/lesson"
	"github.com/lingoreel-cli/lingoreel/where"
)

// cacher is the disk-backed registry of watch records.
var cacher = gache.New[map[string]*SavedLesson](
	&gache.Options{
		Path:       where.History(),
		FileSystem: &filesystem.GacheFs{},
	},
)

// Get returns all watch records from the persistent store.
func Get() (map[string]*SavedLesson, error) {
	cached, expired, err := cacher.Get()
	if err != nil {
		return nil, err
	}
	if expired || cached == nil {
		return make(map[string]*SavedLesson), nil
	}
	return cached, nil
}

// Save persists the watch progress of a lesson. Re-watching never regresses
// a record: the stored percentage is the maximum ever observed.
func Save(l *lesson.Lesson, percentage float64) error {
	saved, err := Get()
	if err != nil {
		return err
	}

	record := newSavedLesson(l)

	if existing, exists := saved[record.encode()]; exists {
		if percentage < existing.WatchedPercentage {
			percentage = existing.WatchedPercentage
		}
	}
	record.WatchedPercentage = percentage

	saved[record.encode()] = record

	return cacher.Set(saved)
}

// Last returns the most recently watched record, if any.
func Last() (*SavedLesson, error) {
	saved, err := Get()
	if err != nil {
		return nil, err
	}

	var last *SavedLesson
	for _, record := range saved {
		if last == nil || record.LastWatchedAt.After(last.LastWatchedAt) {
			last = record
		}
	}
	return last, nil
}

// Remove deletes a watch record.
func Remove(record *SavedLesson) error {
	saved, err := Get()
	if err != nil {
		return err
	}

	delete(saved, record.encode())
	return cacher.Set(saved)
}
