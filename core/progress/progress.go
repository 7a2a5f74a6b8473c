package progress

import "time"

// Progress is the per-(course, user) record created at enrollment. Its
// completed-set starts empty and grows as videos are watched.
type Progress struct {
	ID              string    `json:"id" db:"progress_id"`
	CourseID        string    `json:"courseId" db:"course_id"`
	UserID          string    `json:"userId" db:"user_id"`
	CreatedAt       time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time `json:"updatedAt" db:"updated_at"`
	CompletedVideos []string  `json:"completedVideos" db:"-"`
}
