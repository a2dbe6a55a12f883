package model

import (
	"time"

	"github.com/google/uuid"
)

// Certificate is the issued proof of completion for a (learner, course) pair.
type Certificate struct {
	CertificateID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"certificate_id"`
	VerificationCode string    `gorm:"size:32;not null;uniqueIndex" json:"verification_code"`
	LearnerID        string    `gorm:"size:128;not null;index:idx_certificate_learner_course,unique" json:"learner_id"`
	CourseID         string    `gorm:"size:128;not null;index:idx_certificate_learner_course,unique" json:"course_id"`

	StudentName    string    `gorm:"not null" json:"student_name"`
	CourseName     string    `gorm:"not null" json:"course_name"`
	InstructorName string    `json:"instructor_name"`
	CompletionDate time.Time `gorm:"not null" json:"completion_date"`
	Grade          string    `gorm:"size:32;not null" json:"grade"`

	IssueDate     time.Time `gorm:"not null" json:"issue_date"`
	DownloadCount int64     `gorm:"not null;default:0" json:"download_count"`
}

func (Certificate) TableName() string {
	return "certificates"
}

// ClaimOutcome is the terminal state of a certificate claim attempt.
type ClaimOutcome int

const (
	Claimed ClaimOutcome = iota + 1
	AlreadyClaimed
	AlreadyIssued
)

func (o ClaimOutcome) String() string {
	switch o {
	case Claimed:
		return "claimed"
	case AlreadyClaimed:
		return "already_claimed"
	case AlreadyIssued:
		return "already_issued"
	default:
		return "unknown"
	}
}

// CertificateIssuedEvent is the data record handed to the external certificate renderer.
type CertificateIssuedEvent struct {
	CertificateID    uuid.UUID `json:"certificate_id"`
	VerificationCode string    `json:"verification_code"`
	LearnerID        string    `json:"learner_id"`
	CourseID         string    `json:"course_id"`
	StudentName      string    `json:"student_name"`
	CourseName       string    `json:"course_name"`
	InstructorName   string    `json:"instructor_name"`
	CompletionDate   time.Time `json:"completion_date"`
	Grade            string    `json:"grade"`
	IssueDate        time.Time `json:"issue_date"`
}

func NewCertificateIssuedEvent(c *Certificate) CertificateIssuedEvent {
	return CertificateIssuedEvent{
		CertificateID:    c.CertificateID,
		VerificationCode: c.VerificationCode,
		LearnerID:        c.LearnerID,
		CourseID:         c.CourseID,
		StudentName:      c.StudentName,
		CourseName:       c.CourseName,
		InstructorName:   c.InstructorName,
		CompletionDate:   c.CompletionDate,
		Grade:            c.Grade,
		IssueDate:        c.IssueDate,
	}
}
