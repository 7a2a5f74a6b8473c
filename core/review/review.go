package review

import "time"

type Review struct {
	ID        string    `json:"id" db:"review_id"`
	CourseID  string    `json:"courseId" db:"course_id"`
	UserID    string    `json:"userId" db:"user_id"`
	Rating    int       `json:"rating" db:"rating"`
	Review    string    `json:"review" db:"review"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

type ReviewNew struct {
	CourseID string `json:"courseId" validate:"required,uuid"`
	Rating   int    `json:"rating" validate:"required,gte=1,lte=5"`
	Review   string `json:"review" validate:"required"`
}

// Row is one entry of the public review listing, joined with the
// reviewer and the course.
type Row struct {
	Review
	UserName   string `json:"userName" db:"user_name"`
	UserEmail  string `json:"userEmail" db:"user_email"`
	UserImage  string `json:"userImage" db:"user_image"`
	CourseName string `json:"courseName" db:"course_name"`
}

// AverageRating is the grouped average for one course; zero when the
// course has no reviews yet.
type AverageRating struct {
	CourseID      string  `json:"courseId" db:"course_id"`
	AverageRating float64 `json:"averageRating" db:"average_rating"`
}
