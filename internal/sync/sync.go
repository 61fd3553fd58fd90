// Package sync implements offline queuing and deferred reconciliation for lesson progress updates.
package sync

import (
	"bytes"
	"context"
	"encoding/json"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/lingoreel-cli/lingoreel/filesystem"
	"github.com/lingoreel-cli/lingoreel/lesson"
	"github.com/lingoreel-cli/lingoreel/log"
	"github.com/lingoreel-cli/lingoreel/where"
)

// PendingUpdate encapsulates a single failed current-lesson update for deferred synchronization.
type PendingUpdate struct {
	Timestamp int64  `json:"timestamp"`
	UserID    string `json:"user_id"`
	LessonID  int    `json:"lesson_id"`
	Language  string `json:"language"`
}

func queueFile() string {
	return filepath.Join(where.Config(), "failed_syncs.json")
}

// QueueFailure persists a failed current-lesson update to a local JSON-log for deferred reconciliation.
func QueueFailure(userID string, lessonID int, language string) error {
	f, err := filesystem.API().OpenFile(queueFile(), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	update := PendingUpdate{
		Timestamp: time.Now().Unix(),
		UserID:    userID,
		LessonID:  lessonID,
		Language:  language,
	}

	return json.NewEncoder(f).Encode(update)
}

// ReconcileFailures initializes an asynchronous background process to replay previously failed
// current-lesson updates against the content service. Only the most recent update per user
// is replayed, since later pointers supersede earlier ones.
func ReconcileFailures(service lesson.ContentService) {
	go func() {
		path := queueFile()
		info, err := filesystem.API().Stat(path)
		if err != nil || info.Size() == 0 {
			return
		}

		content, err := filesystem.API().ReadFile(path)
		if err != nil {
			return
		}

		latest := make(map[string]PendingUpdate)
		decoder := json.NewDecoder(bytes.NewReader(content))
		for decoder.More() {
			var u PendingUpdate
			if err := decoder.Decode(&u); err != nil {
				break
			}
			if prev, ok := latest[u.UserID]; !ok || u.Timestamp >= prev.Timestamp {
				latest[u.UserID] = u
			}
		}

		if len(latest) == 0 {
			return
		}

		successCount := 0
		attempt := 0
		for _, u := range latest {
			// Apply incremental delay with randomized jitter to manage request throttling.
			backoff := time.Duration((1<<attempt)*100)*time.Millisecond + time.Duration(rand.Intn(100))*time.Millisecond
			time.Sleep(backoff)
			attempt++

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			err := service.UpdateCurrentLesson(ctx, u.UserID, u.LessonID, u.Language)
			cancel()

			if err != nil {
				log.Debugf("reconcile current lesson for %s: %v", u.UserID, err)
				continue
			}
			successCount++
		}

		// Truncate the failure log only once every queued update has been replayed.
		if successCount == len(latest) {
			_ = filesystem.API().Remove(path)
		}
	}()
}
