package sync

import (
	"context"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/lingoreel-cli/lingoreel/filesystem"
	"github.com/lingoreel-cli/lingoreel/lesson"
)

func init() {
	filesystem.SetMemMapFs()
}

type recordingService struct {
	lesson.ContentService
	updates chan int
	err     error
}

func (s *recordingService) UpdateCurrentLesson(_ context.Context, _ string, lessonID int, _ string) error {
	if s.err != nil {
		return s.err
	}
	s.updates <- lessonID
	return nil
}

func TestReconcileFailures(t *testing.T) {
	Convey("Given queued progress updates for one user", t, func() {
		_ = filesystem.API().Remove(queueFile())
		So(QueueFailure("learner-1", 4, "es"), ShouldBeNil)
		So(QueueFailure("learner-1", 5, "es"), ShouldBeNil)

		Convey("Reconciliation should replay only the most recent pointer", func() {
			service := &recordingService{updates: make(chan int, 4)}
			ReconcileFailures(service)

			select {
			case id := <-service.updates:
				So(id, ShouldEqual, 5)
			case <-time.After(5 * time.Second):
				t.Fatal("reconciliation never reached the content service")
			}

			So(len(service.updates), ShouldEqual, 0)
		})
	})

	Convey("An empty queue should not touch the content service", t, func() {
		_ = filesystem.API().Remove(queueFile())

		service := &recordingService{updates: make(chan int, 1)}
		ReconcileFailures(service)

		time.Sleep(300 * time.Millisecond)
		So(len(service.updates), ShouldEqual, 0)
	})
}
