package model

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResult struct {
	AccessToken string `json:"accessToken"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
}

type FeedbackRequest struct {
	LessonSessionID int64  `json:"lessonSessionId"`
	Comment         string `json:"comment"`
	Rating          int    `json:"rating" validate:"gte=1,lte=5"`
}

// UploadResult carries the file path reference returned by the upload
// endpoint. The path is joined with the portal base URL to form the
// absolute image URL.
type UploadResult struct {
	FilePath string `json:"file_path"`
}

// ArchiveJob asks the background archiver to copy a captured still into
// object storage.
type ArchiveJob struct {
	Key        string `json:"key"`
	LessonID   string `json:"lesson_id"`
	Image      []byte `json:"image"`
	CapturedAt int64  `json:"captured_at"`
}
