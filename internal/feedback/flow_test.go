package feedback

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alienorar/student-system.asianuniversity.uz/internal/model"
	apperrors "github.com/alienorar/student-system.asianuniversity.uz/pkg/errors"
)

type fakeSubmitter struct {
	mu      sync.Mutex
	err     error
	calls   int
	lastReq model.FeedbackRequest
	block   chan struct{}
}

func (f *fakeSubmitter) SubmitFeedback(ctx context.Context, req model.FeedbackRequest) error {
	f.mu.Lock()
	f.calls++
	f.lastReq = req
	block := f.block
	f.mu.Unlock()
	if block != nil {
		<-block
	}
	return f.err
}

func (f *fakeSubmitter) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestCanSubmit(t *testing.T) {
	tests := []struct {
		name     string
		lessonID int64
		rating   int
		want     bool
	}{
		{name: "no lesson selected", lessonID: 0, rating: 3, want: false},
		{name: "rating zero", lessonID: 5, rating: 0, want: false},
		{name: "rating too high", lessonID: 5, rating: 6, want: false},
		{name: "rating negative", lessonID: 5, rating: -1, want: false},
		{name: "minimum rating", lessonID: 5, rating: 1, want: true},
		{name: "maximum rating", lessonID: 5, rating: 5, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flow := NewFlow(&fakeSubmitter{}, nil)
			if tt.lessonID != 0 {
				flow.Open(tt.lessonID)
			}
			flow.SetRating(tt.rating)
			if got := flow.CanSubmit(); got != tt.want {
				t.Errorf("CanSubmit() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSubmitSuccessResetsForm(t *testing.T) {
	submitter := &fakeSubmitter{}
	refetched := 0
	flow := NewFlow(submitter, func(ctx context.Context) error {
		refetched++
		return nil
	})

	flow.Open(42)
	flow.SetRating(3)
	flow.SetComment("")

	if err := flow.Submit(context.Background()); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	if flow.State() != StateSuccess {
		t.Errorf("state = %v, want %v", flow.State(), StateSuccess)
	}
	if flow.IsOpen() {
		t.Error("surface still open after success")
	}
	if flow.Rating() != 0 || flow.Comment() != "" {
		t.Errorf("form not reset: rating=%d comment=%q", flow.Rating(), flow.Comment())
	}
	if refetched != 1 {
		t.Errorf("refetch called %d times, want 1", refetched)
	}
	if submitter.lastReq.LessonSessionID != 42 || submitter.lastReq.Rating != 3 {
		t.Errorf("unexpected request %+v", submitter.lastReq)
	}
}

func TestSubmitFailureKeepsInput(t *testing.T) {
	wantErr := apperrors.NewAPIError("rating rejected")
	submitter := &fakeSubmitter{err: wantErr}
	refetched := 0
	flow := NewFlow(submitter, func(ctx context.Context) error {
		refetched++
		return nil
	})

	flow.Open(42)
	flow.SetRating(4)
	flow.SetComment("late start")

	err := flow.Submit(context.Background())
	if !errors.Is(err, wantErr) {
		t.Fatalf("Submit() error = %v, want %v", err, wantErr)
	}

	if flow.State() != StateFailure {
		t.Errorf("state = %v, want %v", flow.State(), StateFailure)
	}
	if !flow.IsOpen() {
		t.Error("surface closed after failure")
	}
	if flow.Rating() != 4 || flow.Comment() != "late start" {
		t.Errorf("input lost: rating=%d comment=%q", flow.Rating(), flow.Comment())
	}
	if refetched != 0 {
		t.Error("refetch ran after a failed submission")
	}
	if flow.LastError() == nil {
		t.Error("LastError() = nil after failure")
	}
}

func TestSubmitValidation(t *testing.T) {
	submitter := &fakeSubmitter{}
	flow := NewFlow(submitter, nil)

	// No lesson selected.
	flow.SetRating(3)
	if err := flow.Submit(context.Background()); !errors.Is(err, apperrors.ErrNoLessonSelected) {
		t.Errorf("Submit() error = %v, want ErrNoLessonSelected", err)
	}

	// Rating 0 must be rejected locally, never reaching the gateway.
	flow.Open(7)
	flow.SetRating(0)
	if err := flow.Submit(context.Background()); !errors.Is(err, apperrors.ErrRatingOutOfRange) {
		t.Errorf("Submit() error = %v, want ErrRatingOutOfRange", err)
	}

	flow.SetRating(6)
	if err := flow.Submit(context.Background()); !errors.Is(err, apperrors.ErrRatingOutOfRange) {
		t.Errorf("Submit() error = %v, want ErrRatingOutOfRange", err)
	}

	if submitter.callCount() != 0 {
		t.Errorf("gateway called %d times for invalid input", submitter.callCount())
	}
}

// waitForSubmitting polls until the flow reaches the gateway.
func waitForSubmitting(t *testing.T, flow *Flow) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for flow.State() != StateSubmitting {
		if time.Now().After(deadline) {
			t.Fatal("submission never started")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestSubmitLessonSuccess(t *testing.T) {
	submitter := &fakeSubmitter{}
	refetched := 0
	flow := NewFlow(submitter, func(ctx context.Context) error {
		refetched++
		return nil
	})

	if err := flow.SubmitLesson(context.Background(), 42, 3, "good pace"); err != nil {
		t.Fatalf("SubmitLesson() error = %v", err)
	}

	if flow.State() != StateSuccess {
		t.Errorf("state = %v, want %v", flow.State(), StateSuccess)
	}
	if refetched != 1 {
		t.Errorf("refetch called %d times, want 1", refetched)
	}
	want := model.FeedbackRequest{LessonSessionID: 42, Comment: "good pace", Rating: 3}
	if submitter.lastReq != want {
		t.Errorf("request = %+v, want %+v", submitter.lastReq, want)
	}
}

func TestSubmitLessonValidation(t *testing.T) {
	submitter := &fakeSubmitter{}
	flow := NewFlow(submitter, nil)

	if err := flow.SubmitLesson(context.Background(), 0, 3, ""); !errors.Is(err, apperrors.ErrNoLessonSelected) {
		t.Errorf("SubmitLesson() error = %v, want ErrNoLessonSelected", err)
	}
	if err := flow.SubmitLesson(context.Background(), 7, 0, ""); !errors.Is(err, apperrors.ErrRatingOutOfRange) {
		t.Errorf("SubmitLesson() error = %v, want ErrRatingOutOfRange", err)
	}
	if submitter.callCount() != 0 {
		t.Errorf("gateway called %d times for invalid input", submitter.callCount())
	}
}

// Two submissions arriving at once must not interleave: the second is
// refused while the first holds the in-flight guard, and the first's
// values reach the gateway intact.
func TestConcurrentSubmitLessonSingleFlight(t *testing.T) {
	submitter := &fakeSubmitter{block: make(chan struct{})}
	flow := NewFlow(submitter, nil)

	done := make(chan error, 1)
	go func() { done <- flow.SubmitLesson(context.Background(), 1, 5, "a") }()
	waitForSubmitting(t, flow)

	if err := flow.SubmitLesson(context.Background(), 2, 4, "b"); !errors.Is(err, apperrors.ErrSubmitInFlight) {
		t.Errorf("concurrent SubmitLesson() error = %v, want ErrSubmitInFlight", err)
	}

	close(submitter.block)
	if err := <-done; err != nil {
		t.Fatalf("first SubmitLesson() error = %v", err)
	}

	if submitter.callCount() != 1 {
		t.Fatalf("gateway called %d times, want 1", submitter.callCount())
	}
	want := model.FeedbackRequest{LessonSessionID: 1, Comment: "a", Rating: 5}
	if submitter.lastReq != want {
		t.Errorf("request = %+v, want %+v", submitter.lastReq, want)
	}
}

func TestOpenRefusedWhileInFlight(t *testing.T) {
	submitter := &fakeSubmitter{block: make(chan struct{})}
	flow := NewFlow(submitter, nil)

	if err := flow.Open(7); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	flow.SetRating(5)

	done := make(chan error, 1)
	go func() { done <- flow.Submit(context.Background()) }()
	waitForSubmitting(t, flow)

	// A reset here would erase the in-flight guard.
	if err := flow.Open(8); !errors.Is(err, apperrors.ErrSubmitInFlight) {
		t.Errorf("Open() during submission error = %v, want ErrSubmitInFlight", err)
	}
	if flow.State() != StateSubmitting {
		t.Errorf("state = %v after refused Open, want %v", flow.State(), StateSubmitting)
	}

	close(submitter.block)
	if err := <-done; err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if submitter.lastReq.LessonSessionID != 7 {
		t.Errorf("submitted lesson = %d, want 7", submitter.lastReq.LessonSessionID)
	}
}

func TestNoDoubleSubmit(t *testing.T) {
	submitter := &fakeSubmitter{block: make(chan struct{})}
	flow := NewFlow(submitter, nil)
	flow.Open(7)
	flow.SetRating(5)

	done := make(chan error, 1)
	go func() { done <- flow.Submit(context.Background()) }()

	waitForSubmitting(t, flow)

	if flow.CanSubmit() {
		t.Error("CanSubmit() = true while a submission is in flight")
	}
	if err := flow.Submit(context.Background()); !errors.Is(err, apperrors.ErrSubmitInFlight) {
		t.Errorf("second Submit() error = %v, want ErrSubmitInFlight", err)
	}

	close(submitter.block)
	if err := <-done; err != nil {
		t.Fatalf("first Submit() error = %v", err)
	}
	if submitter.callCount() != 1 {
		t.Errorf("gateway called %d times, want 1", submitter.callCount())
	}
}
