// Package feedback drives the rate-a-lesson flow: collect a bounded
// rating plus optional comment, submit once, refetch on success.
package feedback

import (
	"context"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/alienorar/student-system.asianuniversity.uz/internal/logger"
	"github.com/alienorar/student-system.asianuniversity.uz/internal/model"
	"github.com/alienorar/student-system.asianuniversity.uz/pkg/errors"
)

type State string

const (
	StateIdle       State = "IDLE"
	StateSubmitting State = "SUBMITTING"
	StateSuccess    State = "SUCCESS"
	StateFailure    State = "FAILURE"
)

// Submitter is the gateway slice this flow needs.
type Submitter interface {
	SubmitFeedback(ctx context.Context, req model.FeedbackRequest) error
}

// Flow is the input surface for rating one lesson. It enforces the local
// validation the backend is not assumed to do: rating 0 or out of [1,5]
// never leaves the client.
type Flow struct {
	submitter Submitter
	refetch   func(ctx context.Context) error
	validate  *validator.Validate
	log       zerolog.Logger

	mu       sync.Mutex
	state    State
	open     bool
	lessonID int64
	rating   int
	comment  string
	lastErr  error
}

func NewFlow(submitter Submitter, refetch func(ctx context.Context) error) *Flow {
	return &Flow{
		submitter: submitter,
		refetch:   refetch,
		validate:  validator.New(),
		log:       logger.Named("feedback"),
		state:     StateIdle,
	}
}

// Open selects a lesson and resets the form to its defaults (0, "").
// Refused while a submission is in flight; a reset here would erase the
// in-flight guard.
func (f *Flow) Open(lessonID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == StateSubmitting {
		return errors.ErrSubmitInFlight
	}
	f.open = true
	f.lessonID = lessonID
	f.rating = 0
	f.comment = ""
	f.state = StateIdle
	f.lastErr = nil
	return nil
}

// Close dismisses the surface without submitting.
func (f *Flow) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.open = false
	f.lessonID = 0
}

func (f *Flow) SetRating(rating int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rating = rating
}

func (f *Flow) SetComment(comment string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.comment = comment
}

func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *Flow) IsOpen() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.open
}

// Rating and Comment expose the entered values; a failed submission must
// leave them intact for the user to retry.
func (f *Flow) Rating() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rating
}

func (f *Flow) Comment() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.comment
}

func (f *Flow) LastError() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastErr
}

// CanSubmit is the enforcement point for the submit control's disabled
// state: a lesson must be selected, rating must be in [1,5], and no
// submission may already be in flight.
func (f *Flow) CanSubmit() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.canSubmitLocked()
}

func (f *Flow) canSubmitLocked() bool {
	return f.lessonID != 0 && f.rating >= 1 && f.rating <= 5 && f.state != StateSubmitting
}

// Submit sends the feedback. On success the surface closes, the form
// resets, and the lesson list is refetched so the new feedback shows up.
// On failure the surface stays open with the entered values intact.
func (f *Flow) Submit(ctx context.Context) error {
	f.mu.Lock()
	if f.state == StateSubmitting {
		f.mu.Unlock()
		return errors.ErrSubmitInFlight
	}
	if f.lessonID == 0 {
		f.mu.Unlock()
		return errors.ErrNoLessonSelected
	}
	req := model.FeedbackRequest{
		LessonSessionID: f.lessonID,
		Comment:         f.comment,
		Rating:          f.rating,
	}
	if err := f.validate.Struct(req); err != nil {
		f.mu.Unlock()
		return errors.ErrRatingOutOfRange
	}
	f.state = StateSubmitting
	f.mu.Unlock()

	return f.finish(ctx, req)
}

// SubmitLesson validates, fills the form, and takes the in-flight guard
// in one critical section. Callers that do not hold an open form (one
// request carrying all three values) must use this instead of the
// Open/SetRating/SetComment/Submit sequence, which a concurrent caller
// could interleave with.
func (f *Flow) SubmitLesson(ctx context.Context, lessonID int64, rating int, comment string) error {
	f.mu.Lock()
	if f.state == StateSubmitting {
		f.mu.Unlock()
		return errors.ErrSubmitInFlight
	}
	if lessonID == 0 {
		f.mu.Unlock()
		return errors.ErrNoLessonSelected
	}
	req := model.FeedbackRequest{
		LessonSessionID: lessonID,
		Comment:         comment,
		Rating:          rating,
	}
	if err := f.validate.Struct(req); err != nil {
		f.mu.Unlock()
		return errors.ErrRatingOutOfRange
	}
	f.open = true
	f.lessonID = lessonID
	f.rating = rating
	f.comment = comment
	f.lastErr = nil
	f.state = StateSubmitting
	f.mu.Unlock()

	return f.finish(ctx, req)
}

func (f *Flow) finish(ctx context.Context, req model.FeedbackRequest) error {
	err := f.submitter.SubmitFeedback(ctx, req)

	f.mu.Lock()
	if err != nil {
		f.state = StateFailure
		f.lastErr = err
		f.mu.Unlock()
		f.log.Warn().Err(err).Int64("lesson_session_id", req.LessonSessionID).
			Msg("Feedback submission failed")
		return err
	}

	f.state = StateSuccess
	f.lastErr = nil
	f.open = false
	f.lessonID = 0
	f.rating = 0
	f.comment = ""
	f.mu.Unlock()

	f.log.Info().Int64("lesson_session_id", req.LessonSessionID).
		Int("rating", req.Rating).Msg("Feedback submitted")

	if f.refetch != nil {
		if rerr := f.refetch(ctx); rerr != nil {
			// The submission itself succeeded; a failed refresh only
			// delays the feedback showing up in the list.
			f.log.Warn().Err(rerr).Msg("Refetch after feedback failed")
		}
	}
	return nil
}
