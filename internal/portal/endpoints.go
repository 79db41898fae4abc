package portal

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/alienorar/student-system.asianuniversity.uz/internal/model"
)

// Login exchanges credentials for an access token and persists it, along
// with the cached profile names, in the session store.
func (c *Client) Login(ctx context.Context, creds model.Credentials) (model.LoginResult, error) {
	var result model.LoginResult
	if err := c.postJSON(ctx, c.studentURL("/hemis/login"), creds, &result); err != nil {
		return model.LoginResult{}, err
	}

	if err := c.session.SetToken(result.AccessToken); err != nil {
		return model.LoginResult{}, err
	}
	if err := c.session.SetProfile(result.FirstName, result.LastName); err != nil {
		return model.LoginResult{}, err
	}

	c.log.Info().Str("student", result.FirstName).Msg("Signed in")
	return result, nil
}

// Logout drops the persisted session.
func (c *Client) Logout() error {
	return c.session.Clear()
}

// Schedule fetches one page of schedule entries. The query page is 1-based;
// the backend's origin is 0-based, translated here.
func (c *Client) Schedule(ctx context.Context, q model.ScheduleQuery) (model.SchedulePage, error) {
	params := url.Values{}
	params.Set("size", strconv.Itoa(q.Size))
	params.Set("page", strconv.Itoa(q.Page-1))
	params.Set("time", q.Time)

	var page model.SchedulePage
	err := c.getJSON(ctx, c.studentURL("/schedule/list")+"?"+params.Encode(), &page)
	if err != nil {
		return model.SchedulePage{}, err
	}
	return page, nil
}

// FinishedLessons fetches the nested subject→lesson finished-lesson data.
func (c *Client) FinishedLessons(ctx context.Context) ([]model.SubjectLessons, error) {
	var subjects []model.SubjectLessons
	err := c.getJSON(ctx, c.studentURL("/schedule/finished/lesson/list"), &subjects)
	if err != nil {
		return nil, err
	}
	return subjects, nil
}

// Subjects fetches the id/name options used for filtering.
func (c *Client) Subjects(ctx context.Context) ([]model.SubjectOption, error) {
	var options []model.SubjectOption
	err := c.getJSON(ctx, c.studentURL("/lesson/subject/list"), &options)
	if err != nil {
		return nil, err
	}
	return options, nil
}

// SubmitFeedback rates a lesson. Never auto-retried.
func (c *Client) SubmitFeedback(ctx context.Context, req model.FeedbackRequest) error {
	return c.postJSON(ctx, c.studentURL("/feedback"), req, nil)
}

// SubjectLessons fetches the per-subject detail with per-lesson rankings.
func (c *Client) SubjectLessons(ctx context.Context, subjectID int64) (model.SubjectDetail, error) {
	var detail model.SubjectDetail
	url := c.studentURL(fmt.Sprintf("/lesson/list/%d", subjectID))
	if err := c.getJSON(ctx, url, &detail); err != nil {
		return model.SubjectDetail{}, err
	}
	return detail, nil
}

func (c *Client) Profile(ctx context.Context) (model.Profile, error) {
	var profile model.Profile
	if err := c.getJSON(ctx, c.studentURL("/profile"), &profile); err != nil {
		return model.Profile{}, err
	}
	return profile, nil
}

func (c *Client) LessonStatistics(ctx context.Context, q model.StatisticsQuery) (model.LessonStatistics, error) {
	params := url.Values{}
	params.Set("startDate", q.StartDate)
	params.Set("endDate", q.EndDate)
	if q.Size > 0 {
		params.Set("size", strconv.Itoa(q.Size))
		params.Set("page", strconv.Itoa(q.Page-1))
	}

	var stats model.LessonStatistics
	err := c.getJSON(ctx, c.studentURL("/statistics/lesson/load")+"?"+params.Encode(), &stats)
	if err != nil {
		return model.LessonStatistics{}, err
	}
	return stats, nil
}
