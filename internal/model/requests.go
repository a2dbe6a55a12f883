package model

// CourseInfo is what the catalog knows about a course.
type CourseInfo struct {
	CourseID         string `json:"course_id" mapstructure:"course_id"`
	Title            string `json:"title" mapstructure:"title"`
	InstructorID     string `json:"instructor_id" mapstructure:"instructor_id"`
	TotalLessons     int    `json:"total_lessons" mapstructure:"total_lessons"`
	EstimatedMinutes int    `json:"estimated_minutes" mapstructure:"estimated_minutes"`
}

// LearnerDisplayInfo is the directory snapshot printed on a certificate.
type LearnerDisplayInfo struct {
	LearnerID      string
	StudentName    string
	InstructorName string
	Email          string
}

// MaxLessonMinutes caps the time reported for one lesson: a year of minutes.
const MaxLessonMinutes = 525600

// MarkLessonCompleteRequest is the command accepted by the progress tracker.
// The lte bounds on time_spent_minutes must stay equal to MaxLessonMinutes.
type MarkLessonCompleteRequest struct {
	LearnerID        string `json:"learner_id" validate:"required,max=128"`
	CourseID         string `json:"course_id" validate:"required,max=128"`
	LessonID         string `json:"lesson_id" validate:"required,max=128"`
	TimeSpentMinutes int    `json:"time_spent_minutes" validate:"gte=0,lte=525600"`
}

// UpdatePositionRequest moves the learner's current position pointer.
type UpdatePositionRequest struct {
	LearnerID string `json:"learner_id" validate:"required,max=128"`
	CourseID  string `json:"course_id" validate:"required,max=128"`
	ModuleID  string `json:"module_id" validate:"required,max=128"`
	ChapterID string `json:"chapter_id" validate:"required,max=128"`
	LessonID  string `json:"lesson_id" validate:"required,max=128"`
}

// CompleteLessonBody is the HTTP body of the lesson-complete endpoint.
type CompleteLessonBody struct {
	TimeSpentMinutes *int `json:"time_spent_minutes" validate:"required,gte=0,lte=525600"`
}

// UpdatePositionBody is the HTTP body of the position endpoint.
type UpdatePositionBody struct {
	ModuleID  string `json:"module_id" validate:"required,max=128"`
	ChapterID string `json:"chapter_id" validate:"required,max=128"`
	LessonID  string `json:"lesson_id" validate:"required,max=128"`
}
