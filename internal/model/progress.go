package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// CompletedLesson is one entry of a progress record's completed set.
type CompletedLesson struct {
	LessonID         string    `json:"lesson_id"`
	CompletedAt      time.Time `json:"completed_at"`
	TimeSpentMinutes int       `json:"time_spent_minutes"`
}

// Position is the last lesson a learner was viewing. Advisory only.
type Position struct {
	ModuleID  string `json:"module_id"`
	ChapterID string `json:"chapter_id"`
	LessonID  string `json:"lesson_id"`
}

// ProgressRecord aggregates the completion state of one learner in one course.
type ProgressRecord struct {
	ProgressID uuid.UUID `gorm:"type:uuid;primaryKey" json:"progress_id"`
	LearnerID  string    `gorm:"size:128;not null;index:idx_progress_learner_course,unique" json:"learner_id"`
	CourseID   string    `gorm:"size:128;not null;index:idx_progress_learner_course,unique" json:"course_id"`

	CompletedLessons     datatypes.JSONSlice[CompletedLesson] `gorm:"not null" json:"completed_lessons"`
	CompletedLessonCount int                                  `gorm:"not null;default:0" json:"completed_lesson_count"`
	CurrentPosition      *datatypes.JSONType[Position]        `json:"current_position,omitempty"`

	ProgressPercentage    int        `gorm:"not null;default:0" json:"progress_percentage"`
	TotalTimeSpentMinutes int        `gorm:"not null;default:0" json:"total_time_spent_minutes"`
	CompletedAt           *time.Time `json:"completed_at,omitempty"`

	CertificateClaimed   bool       `gorm:"not null;default:false;index" json:"certificate_claimed"`
	CertificateClaimedAt *time.Time `json:"-"`
	CertificateID        *uuid.UUID `gorm:"type:uuid" json:"certificate_id,omitempty"`

	EnrolledAt     time.Time `gorm:"not null" json:"enrolled_at"`
	LastAccessedAt time.Time `gorm:"not null" json:"last_accessed_at"`

	// Version is bumped on every lesson or position write.
	Version int64 `gorm:"not null;default:1" json:"-"`
}

func (ProgressRecord) TableName() string {
	return "progress_records"
}

// NewProgressRecord returns an empty record for the (learner, course) pair.
func NewProgressRecord(learnerID, courseID string, now time.Time) *ProgressRecord {
	return &ProgressRecord{
		ProgressID:       uuid.New(),
		LearnerID:        learnerID,
		CourseID:         courseID,
		CompletedLessons: datatypes.JSONSlice[CompletedLesson]{},
		EnrolledAt:       now,
		LastAccessedAt:   now,
		Version:          1,
	}
}

// HasLesson reports whether lessonID is already in the completed set.
func (p *ProgressRecord) HasLesson(lessonID string) bool {
	for _, l := range p.CompletedLessons {
		if l.LessonID == lessonID {
			return true
		}
	}
	return false
}

// IsCompleted reports whether the completion transition has happened.
func (p *ProgressRecord) IsCompleted() bool {
	return p.CompletedAt != nil
}

// HasCertificate reports whether a certificate back-reference has been written.
func (p *ProgressRecord) HasCertificate() bool {
	return p.CertificateID != nil && *p.CertificateID != uuid.Nil
}

// ClaimPending reports a claim without a confirmed certificate.
func (p *ProgressRecord) ClaimPending() bool {
	return p.CertificateClaimed && !p.HasCertificate()
}

// Position returns the current position, or nil when none was recorded.
func (p *ProgressRecord) Position() *Position {
	if p.CurrentPosition == nil {
		return nil
	}
	pos := p.CurrentPosition.Data()
	return &pos
}
