package portal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/alienorar/student-system.asianuniversity.uz/internal/model"
	"github.com/alienorar/student-system.asianuniversity.uz/pkg/errors"
)

// uploadResponse is not enveloped; the upload endpoint answers with a bare
// link object.
type uploadResponse struct {
	Link model.UploadResult `json:"link"`
}

// UploadPhoto sends a captured JPEG still to the file-upload endpoint and
// returns the file path reference. Mutations are never auto-retried.
func (c *Client) UploadPhoto(ctx context.Context, image []byte) (string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", "user_photo.jpg")
	if err != nil {
		return "", fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(image); err != nil {
		return "", fmt.Errorf("failed to write form file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to close form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.rootURL("/file/upload"), &buf)
	if err != nil {
		return "", fmt.Errorf("failed to create upload request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if err := c.authorize(req); err != nil {
		return "", err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("upload failed with status %d", resp.StatusCode)
	}

	var uploaded uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&uploaded); err != nil {
		return "", fmt.Errorf("failed to decode upload response: %w", err)
	}
	if uploaded.Link.FilePath == "" {
		return "", errors.NewAPIError("upload returned no file reference")
	}

	c.log.Debug().Str("file_path", uploaded.Link.FilePath).Msg("Photo uploaded")
	return uploaded.Link.FilePath, nil
}

// StartLesson reports attendance for a lesson. The image URL must come from
// a completed upload; the two calls are strictly sequential because this
// one's input depends on the other's output.
func (c *Client) StartLesson(ctx context.Context, lessonID, imageURL string) error {
	params := url.Values{}
	params.Set("lessonId", lessonID)
	params.Set("image_url", imageURL)

	endpoint := c.rootURL("/schedule/start-lesson") + "?" + params.Encode()
	if err := c.postJSON(ctx, endpoint, nil, nil); err != nil {
		return err
	}

	c.log.Info().Str("lesson_id", lessonID).Msg("Lesson started")
	return nil
}
