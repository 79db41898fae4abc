package agent

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/alienorar/student-system.asianuniversity.uz/internal/capture"
	"github.com/alienorar/student-system.asianuniversity.uz/internal/config"
	"github.com/alienorar/student-system.asianuniversity.uz/internal/feedback"
	"github.com/alienorar/student-system.asianuniversity.uz/internal/lessons"
	"github.com/alienorar/student-system.asianuniversity.uz/internal/logger"
	"github.com/alienorar/student-system.asianuniversity.uz/internal/model"
	"github.com/alienorar/student-system.asianuniversity.uz/internal/paging"
	"github.com/alienorar/student-system.asianuniversity.uz/internal/portal"
	"github.com/alienorar/student-system.asianuniversity.uz/internal/session"
	apperrors "github.com/alienorar/student-system.asianuniversity.uz/pkg/errors"
)

const defaultPageSize = 10

// Handler exposes the portal flows over the local facade. View state
// (current page, size, subject filter) lives here per screen, and the
// page resets to 1 whenever the filter or size changes.
type Handler struct {
	cfg       *config.Config
	client    *portal.Client
	store     session.Store
	captures  *capture.Manager
	refresher *Refresher
	flow      *feedback.Flow
	log       zerolog.Logger

	mu             sync.Mutex
	finished       []model.SubjectLessons
	finishedAt     time.Time
	finishedPager  *paging.Pager
	finishedFilter string
	subjectPagers  map[int64]*paging.Pager
}

func NewHandler(
	cfg *config.Config,
	client *portal.Client,
	store session.Store,
	captures *capture.Manager,
	refresher *Refresher,
) *Handler {
	h := &Handler{
		cfg:            cfg,
		client:         client,
		store:          store,
		captures:       captures,
		refresher:      refresher,
		log:            logger.Named("agent"),
		finishedPager:  paging.NewPager(defaultPageSize),
		finishedFilter: lessons.AllSubjects,
		subjectPagers:  make(map[int64]*paging.Pager),
	}
	h.flow = feedback.NewFlow(client, h.refetchFinished)
	return h
}

func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "version": h.cfg.App.Version})
}

func (h *Handler) Login(c *gin.Context) {
	var creds model.Credentials
	if err := c.ShouldBindJSON(&creds); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	result, err := h.client.Login(c.Request.Context(), creds)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"firstName": result.FirstName,
		"lastName":  result.LastName,
	})
}

func (h *Handler) Logout(c *gin.Context) {
	if err := h.client.Logout(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Signed out"})
}

func (h *Handler) SetTheme(c *gin.Context) {
	var body struct {
		Theme string `json:"theme" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if err := h.store.SetTheme(body.Theme); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"theme": body.Theme})
}

// Schedule serves the week view: entries grouped by calendar day in
// chronological order, with an optional active day selector.
func (h *Handler) Schedule(c *gin.Context) {
	page, ok := h.refresher.Cached()
	if !ok {
		var err error
		page, err = h.client.Schedule(c.Request.Context(), model.ScheduleQuery{
			Size: 100,
			Page: 1,
			Time: model.ScheduleTimeWeek,
		})
		if err != nil {
			h.respondError(c, err)
			return
		}
	}

	groups := lessons.GroupBy(page.Content, lessons.ScheduleDay)
	lessons.SortChronological(groups)

	days := make([]gin.H, 0, len(groups))
	for _, g := range groups {
		days = append(days, gin.H{"date": g.Key, "lessons": g.Items})
	}

	resp := gin.H{"days": days}
	if day := c.Query("day"); day != "" {
		selected := lessons.SelectKey(groups, day)
		if selected == nil {
			selected = []model.ScheduleEntry{}
		}
		resp["selected"] = gin.H{"date": day, "lessons": selected}
	}
	c.JSON(http.StatusOK, resp)
}

// FinishedLessons serves the tabular feedback view: flatten, filter by
// subject, then paginate.
func (h *Handler) FinishedLessons(c *gin.Context) {
	subjects, err := h.getFinished(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	flat := lessons.Flatten(subjects)

	h.mu.Lock()
	if sizeStr := c.Query("size"); sizeStr != "" {
		if size, err := strconv.Atoi(sizeStr); err == nil && size != h.finishedPager.Size() {
			h.finishedPager.SetSize(size)
		}
	}
	filter := c.DefaultQuery("subject", h.finishedFilter)
	if filter != h.finishedFilter {
		h.finishedFilter = filter
		h.finishedPager.Reset()
	}

	filtered := lessons.FilterBySubject(flat, h.finishedFilter)

	if pageStr := c.Query("page"); pageStr != "" {
		if page, err := strconv.Atoi(pageStr); err == nil {
			h.finishedPager.SetPage(page, len(filtered))
		}
	}

	items := paging.Slice(h.finishedPager, filtered)
	resp := gin.H{
		"items":      items,
		"page":       h.finishedPager.Page(),
		"size":       h.finishedPager.Size(),
		"totalItems": len(filtered),
		"totalPages": paging.TotalPages(len(filtered), h.finishedPager.Size()),
		"hasNext":    h.finishedPager.HasNext(len(filtered)),
		"hasPrev":    h.finishedPager.HasPrev(),
		"subject":    h.finishedFilter,
	}
	h.mu.Unlock()

	c.JSON(http.StatusOK, resp)
}

func (h *Handler) Subjects(c *gin.Context) {
	options, err := h.client.Subjects(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"subjects": options})
}

// SubmitFeedback runs the rating flow for one lesson: validate locally,
// submit once, refetch the finished list on success.
func (h *Handler) SubmitFeedback(c *gin.Context) {
	var req model.FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.flow.SubmitLesson(c.Request.Context(), req.LessonSessionID, req.Rating, req.Comment); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Feedback submitted"})
}

// SubjectLessons serves the per-subject detail view with its own pager.
func (h *Handler) SubjectLessons(c *gin.Context) {
	subjectID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid subject ID"})
		return
	}

	detail, err := h.client.SubjectLessons(c.Request.Context(), subjectID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.mu.Lock()
	pager, ok := h.subjectPagers[subjectID]
	if !ok {
		pager = paging.NewPager(defaultPageSize)
		h.subjectPagers[subjectID] = pager
	}
	if sizeStr := c.Query("size"); sizeStr != "" {
		if size, err := strconv.Atoi(sizeStr); err == nil && size != pager.Size() {
			pager.SetSize(size)
		}
	}
	if pageStr := c.Query("page"); pageStr != "" {
		if page, err := strconv.Atoi(pageStr); err == nil {
			pager.SetPage(page, len(detail.Lessons))
		}
	}
	rows := paging.Slice(pager, detail.Lessons)
	resp := gin.H{
		"subjectId":   detail.SubjectID,
		"subjectName": detail.SubjectName,
		"counts": gin.H{
			"total":    detail.TotalLessonsCount,
			"finished": detail.FinishedLessonsCount,
			"canceled": detail.CanceledLessonsCount,
			"future":   detail.FutureLessonsCount,
		},
		"lessons":    rows,
		"page":       pager.Page(),
		"size":       pager.Size(),
		"totalPages": paging.TotalPages(len(detail.Lessons), pager.Size()),
		"hasNext":    pager.HasNext(len(detail.Lessons)),
		"hasPrev":    pager.HasPrev(),
	}
	h.mu.Unlock()

	if avg, ok := detail.AverageRanking(); ok {
		resp["averageRanking"] = avg
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) Profile(c *gin.Context) {
	profile, err := h.client.Profile(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (h *Handler) Statistics(c *gin.Context) {
	q := model.StatisticsQuery{
		StartDate: c.Query("startDate"),
		EndDate:   c.Query("endDate"),
	}
	if sizeStr := c.Query("size"); sizeStr != "" {
		size, err := strconv.Atoi(sizeStr)
		if err != nil || size <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid size"})
			return
		}
		page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
		if err != nil || page < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid page"})
			return
		}
		q.Size, q.Page = size, page
	}

	stats, err := h.client.LessonStatistics(c.Request.Context(), q)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// StartLesson runs the whole capture flow for the lesson: acquire the
// camera, take a mirror-corrected still, upload it, then start the
// lesson. A failed submit keeps the session open with the still
// retained, so re-posting the same lesson retries without recapturing;
// CancelLesson abandons it.
func (h *Handler) StartLesson(c *gin.Context) {
	lessonID := c.Param("id")
	ctx := c.Request.Context()

	if sess := h.captures.Active(); sess != nil &&
		sess.LessonID() == lessonID && sess.State() == capture.StateUploadFailed {
		if err := sess.Submit(ctx); err != nil {
			h.respondError(c, err)
			return
		}
		h.refresher.Invalidate()
		c.JSON(http.StatusOK, gin.H{"message": "Lesson started", "lessonId": lessonID})
		return
	}

	sess, err := h.captures.Open(ctx, lessonID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	if err := sess.Capture(ctx); err != nil {
		// No still to retry with; release the camera.
		sess.Close()
		h.respondError(c, err)
		return
	}
	if err := sess.Submit(ctx); err != nil {
		h.respondError(c, err)
		return
	}

	h.refresher.Invalidate()
	c.JSON(http.StatusOK, gin.H{"message": "Lesson started", "lessonId": lessonID})
}

// CancelLesson abandons the failed capture session for the lesson,
// discarding the retained still and releasing the camera.
func (h *Handler) CancelLesson(c *gin.Context) {
	lessonID := c.Param("id")

	sess := h.captures.Active()
	if sess == nil || sess.LessonID() != lessonID {
		c.JSON(http.StatusNotFound, gin.H{"error": "No capture session for lesson"})
		return
	}
	sess.Close()
	c.JSON(http.StatusOK, gin.H{"message": "Capture session closed", "lessonId": lessonID})
}

func (h *Handler) getFinished(c *gin.Context) ([]model.SubjectLessons, error) {
	h.mu.Lock()
	if !h.finishedAt.IsZero() && time.Since(h.finishedAt) < h.cfg.Server.RefreshInterval {
		cached := h.finished
		h.mu.Unlock()
		return cached, nil
	}
	h.mu.Unlock()

	return h.fetchFinished(c.Request.Context())
}

// fetchFinished fetches the finished-lesson list and refreshes the cache.
func (h *Handler) fetchFinished(ctx context.Context) ([]model.SubjectLessons, error) {
	subjects, err := h.client.FinishedLessons(ctx)
	if err != nil {
		return nil, err
	}

	h.mu.Lock()
	h.finished = subjects
	h.finishedAt = time.Now()
	h.mu.Unlock()
	return subjects, nil
}

// refetchFinished re-issues the list fetch after a successful feedback
// submission so the newly rated lesson shows its feedback.
func (h *Handler) refetchFinished(ctx context.Context) error {
	_, err := h.fetchFinished(ctx)
	return err
}

func (h *Handler) respondError(c *gin.Context, err error) {
	var apiErr *apperrors.APIError
	switch {
	case errors.Is(err, apperrors.ErrRatingOutOfRange),
		errors.Is(err, apperrors.ErrNoLessonSelected),
		errors.Is(err, apperrors.ErrNoCapturedImage):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrSubmitInFlight),
		errors.Is(err, apperrors.ErrSessionBusy):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrNotAuthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrCameraDenied),
		errors.Is(err, apperrors.ErrPortalUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	case errors.As(err, &apiErr):
		c.JSON(http.StatusBadGateway, gin.H{"error": apiErr.Error()})
	default:
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	}
}
