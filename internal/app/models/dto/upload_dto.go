package dto

// UploadKind selects the storage location of an uploaded file
type UploadKind string

const (
	UploadCourseImage  UploadKind = "course-image"
	UploadTopicContent UploadKind = "topic-content"
	UploadHouseImage   UploadKind = "house-image"
)

// UploadResponse describes a stored file
type UploadResponse struct {
	URL      string     `json:"url" example:"http://localhost:8080/uploads/courses/images/4b7c.png"`
	Filename string     `json:"filename" example:"cover.png"`
	Type     UploadKind `json:"type" example:"course-image"`
	Size     int64      `json:"size" example:"1048576"`
	MimeType string     `json:"mimeType,omitempty" example:"image/png"`
}
