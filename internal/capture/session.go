// Package capture drives the attendance flow: acquire the camera, take a
// mirror-corrected still, upload it, then start the lesson with the
// resulting image URL.
package capture

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/alienorar/student-system.asianuniversity.uz/internal/logger"
	"github.com/alienorar/student-system.asianuniversity.uz/internal/model"
	"github.com/alienorar/student-system.asianuniversity.uz/pkg/errors"
)

type State string

const (
	StateNoStream     State = "NO_STREAM"
	StateStreaming    State = "STREAMING"
	StateCaptured     State = "CAPTURED"
	StateUploading    State = "UPLOADING"
	StateCompleted    State = "COMPLETED"
	StateUploadFailed State = "UPLOAD_FAILED"
)

// Gateway is the portal slice the flow needs. Upload strictly precedes
// StartLesson; the second call's input is the first call's output.
type Gateway interface {
	UploadPhoto(ctx context.Context, image []byte) (string, error)
	ImageURL(filePath string) string
	StartLesson(ctx context.Context, lessonID, imageURL string) error
}

// Archiver receives completed stills for background archival. Failures
// there never affect this flow.
type Archiver interface {
	Enqueue(ctx context.Context, job model.ArchiveJob) error
}

// Session owns the camera for one lesson's attendance. Invariant: after
// Open, exactly one of {active stream, captured still} exists until the
// session closes or completes.
type Session struct {
	camera   Camera
	gateway  Gateway
	archiver Archiver
	quality  int
	lessonID string
	onClose  func()
	log      zerolog.Logger

	mu     sync.Mutex
	state  State
	stream Stream
	still  []byte
}

func newSession(camera Camera, gateway Gateway, archiver Archiver, quality int, lessonID string) *Session {
	return &Session{
		camera:   camera,
		gateway:  gateway,
		archiver: archiver,
		quality:  quality,
		lessonID: lessonID,
		log:      logger.Named("capture").With().Str("lesson_id", lessonID).Logger(),
		state:    StateNoStream,
	}
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) LessonID() string {
	return s.lessonID
}

// Still returns the captured JPEG, nil while streaming. It is retained
// after a failed start-lesson call so Submit can be retried without
// recapturing.
func (s *Session) Still() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.still
}

// start acquires the camera. The session begins Streaming, or stays
// NoStream when permission is denied.
func (s *Session) start(ctx context.Context) error {
	stream, err := s.camera.Open(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("Camera open failed")
		return err
	}

	s.mu.Lock()
	s.stream = stream
	s.still = nil
	s.state = StateStreaming
	s.mu.Unlock()
	return nil
}

// Capture grabs one frame, applies the compensating horizontal flip, and
// stops the stream. Streaming ends the moment a still exists.
func (s *Session) Capture(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateStreaming || s.stream == nil {
		s.mu.Unlock()
		return errors.ErrNoActiveStream
	}
	stream := s.stream
	s.mu.Unlock()

	frame, err := stream.Frame(ctx)
	if err != nil {
		return err
	}

	still, err := EncodeJPEG(CorrectMirror(frame), s.quality)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.stream.Stop()
	s.stream = nil
	s.still = still
	s.state = StateCaptured
	s.mu.Unlock()

	s.log.Debug().Int("bytes", len(still)).Msg("Still captured")
	return nil
}

// Retake discards the captured frame and re-acquires the camera.
func (s *Session) Retake(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateCaptured && s.state != StateUploadFailed {
		s.mu.Unlock()
		return errors.ErrNoCapturedImage
	}
	s.still = nil
	s.state = StateNoStream
	s.mu.Unlock()

	return s.start(ctx)
}

// Submit uploads the still and then starts the lesson with the returned
// image URL. The calls are sequential; either failure aborts, keeps the
// session open, and keeps the still for a retry.
func (s *Session) Submit(ctx context.Context) error {
	s.mu.Lock()
	switch s.state {
	case StateUploading:
		s.mu.Unlock()
		return errors.ErrSubmitInFlight
	case StateCaptured, StateUploadFailed:
	default:
		s.mu.Unlock()
		return errors.ErrNoCapturedImage
	}
	still := s.still
	s.state = StateUploading
	s.mu.Unlock()

	filePath, err := s.gateway.UploadPhoto(ctx, still)
	if err != nil {
		s.fail(err, "Upload failed")
		return err
	}

	imageURL := s.gateway.ImageURL(filePath)
	if err := s.gateway.StartLesson(ctx, s.lessonID, imageURL); err != nil {
		s.fail(err, "Start lesson failed")
		return err
	}

	if s.archiver != nil {
		job := model.ArchiveJob{
			LessonID:   s.lessonID,
			Image:      still,
			CapturedAt: time.Now().Unix(),
		}
		if aerr := s.archiver.Enqueue(ctx, job); aerr != nil {
			s.log.Warn().Err(aerr).Msg("Archive enqueue failed")
		}
	}

	s.mu.Lock()
	s.still = nil
	s.state = StateCompleted
	s.mu.Unlock()

	s.log.Info().Msg("Attendance flow completed")
	if s.onClose != nil {
		s.onClose()
	}
	return nil
}

func (s *Session) fail(err error, msg string) {
	s.mu.Lock()
	s.state = StateUploadFailed
	s.mu.Unlock()
	s.log.Warn().Err(err).Msg(msg)
}

// Close releases the camera synchronously in any state. Closing while
// streaming must leave zero active tracks behind.
func (s *Session) Close() {
	s.mu.Lock()
	if s.stream != nil {
		s.stream.Stop()
		s.stream = nil
	}
	s.still = nil
	if s.state != StateCompleted {
		s.state = StateNoStream
	}
	s.mu.Unlock()

	if s.onClose != nil {
		s.onClose()
	}
}
