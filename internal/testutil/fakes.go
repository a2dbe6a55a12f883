package testutil

import (
	"context"
	"errors"
	"sync"

	"go_course_certify/internal/model"
)

// FakeCatalog serves course data from memory.
type FakeCatalog struct {
	mu      sync.RWMutex
	courses map[string]model.CourseInfo
	Err     error
}

func NewFakeCatalog(courses ...model.CourseInfo) *FakeCatalog {
	c := &FakeCatalog{courses: make(map[string]model.CourseInfo)}
	for _, course := range courses {
		c.courses[course.CourseID] = course
	}
	return c
}

func (c *FakeCatalog) Put(course model.CourseInfo) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.courses[course.CourseID] = course
}

func (c *FakeCatalog) GetCourseInfo(_ context.Context, courseID string) (*model.CourseInfo, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.Err != nil {
		return nil, c.Err
	}
	course, ok := c.courses[courseID]
	if !ok {
		return nil, model.ErrNotFound
	}
	return &course, nil
}

func (c *FakeCatalog) GetTotalLessonCount(ctx context.Context, courseID string) (int, error) {
	course, err := c.GetCourseInfo(ctx, courseID)
	if err != nil {
		return 0, err
	}
	return course.TotalLessons, nil
}

// FakeDirectory resolves user ids to names and emails from memory.
// Unknown ids resolve to the id itself with no email.
type FakeDirectory struct {
	Names  map[string]string
	Emails map[string]string
	Err    error
}

func (d *FakeDirectory) GetDisplayName(_ context.Context, userID string) (string, error) {
	if d.Err != nil {
		return "", d.Err
	}
	if name, ok := d.Names[userID]; ok {
		return name, nil
	}
	return userID, nil
}

func (d *FakeDirectory) GetEmail(_ context.Context, userID string) (string, error) {
	if d.Err != nil {
		return "", d.Err
	}
	return d.Emails[userID], nil
}

// SentMail is one message captured by RecordingMailer.
type SentMail struct {
	To, Subject, Body string
}

// RecordingMailer keeps every message instead of sending it.
type RecordingMailer struct {
	mu   sync.Mutex
	Sent []SentMail
	Err  error
}

func (m *RecordingMailer) Send(_ context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Sent = append(m.Sent, SentMail{To: to, Subject: subject, Body: body})
	return nil
}

func (m *RecordingMailer) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Sent)
}

// RecordingPublisher keeps every published certificate event.
type RecordingPublisher struct {
	mu     sync.Mutex
	Events []model.CertificateIssuedEvent
	Err    error
}

func (p *RecordingPublisher) PublishCertificateIssued(_ context.Context, event model.CertificateIssuedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	p.Events = append(p.Events, event)
	return nil
}

func (p *RecordingPublisher) Count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.Events)
}

// ErrUnavailable simulates a collaborator outage.
var ErrUnavailable = errors.New("testutil: collaborator unavailable")
