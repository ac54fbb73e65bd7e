package reminder_test

import (
	"net/mail"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/studyflow/core"
	"github.com/trezcool/studyflow/core/assignment"
	"github.com/trezcool/studyflow/core/course"
	"github.com/trezcool/studyflow/core/due"
	"github.com/trezcool/studyflow/core/reminder"
	appfs "github.com/trezcool/studyflow/fs"
	emailsvc "github.com/trezcool/studyflow/services/email"
	testutil "github.com/trezcool/studyflow/tests"
)

var (
	now     = time.Date(2024, 10, 14, 12, 0, 0, 0, time.UTC)
	courses = []course.Course{{ID: 1, Name: "Calculus II", Color: "#0ea5e9"}}
)

func newAssignment(title string, dueDate time.Time, status string) assignment.Assignment {
	return assignment.Assignment{CourseID: 1, Title: title, DueDate: dueDate, Status: status}
}

func TestNewDigest(t *testing.T) {
	orphan := newAssignment("Reading", now.Add(-time.Hour), assignment.StatusPending)
	orphan.CourseID = 7

	digest := reminder.NewDigest("Ada", courses, []assignment.Assignment{
		newAssignment("Quiz prep", now.AddDate(0, 0, 2), assignment.StatusPending),
		newAssignment("Lab report", now.Add(-48*time.Hour), assignment.StatusInProgress),
		newAssignment("Problem set", now.Add(3*time.Hour), assignment.StatusPending),
		newAssignment("Done already", now.Add(-time.Hour), assignment.StatusCompleted),
		newAssignment("Essay", now.AddDate(0, 0, 5), assignment.StatusPending),
		orphan,
	}, now)

	assert.Equal(t, "Ada", digest.Name)
	assert.Equal(t, 4, digest.Count())
	require.Len(t, digest.Sections, 3)

	overdue := digest.Sections[0]
	assert.Equal(t, due.Overdue, overdue.Bucket)
	assert.Equal(t, "Overdue", overdue.Label)
	assert.Equal(t, []reminder.Entry{
		{Title: "Lab report", Course: "Calculus II", Color: "#0ea5e9", Due: "Sat Oct 12, 12:00"},
		{Title: "Reading", Course: course.UnknownName, Color: course.UnknownColor, Due: "Mon Oct 14, 11:00"},
	}, overdue.Items)

	assert.Equal(t, due.DueToday, digest.Sections[1].Bucket)
	assert.Equal(t, "Problem set", digest.Sections[1].Items[0].Title)
	assert.Equal(t, due.DueSoon, digest.Sections[2].Bucket)
	assert.Equal(t, "Quiz prep", digest.Sections[2].Items[0].Title)
}

func TestNewDigest_empty(t *testing.T) {
	digest := reminder.NewDigest("Ada", courses, []assignment.Assignment{
		newAssignment("Essay", now.AddDate(0, 0, 5), assignment.StatusPending),
		newAssignment("Done", now.Add(-time.Hour), assignment.StatusCompleted),
	}, now)
	assert.True(t, digest.IsEmpty())
	assert.Equal(t, 0, digest.Count())
}

func TestService_Send(t *testing.T) {
	conf := testutil.NewConfig()
	conf.DefaultFromEmail = mail.Address{Name: "StudyFlow", Address: "noreply@studyflow.test"}
	logger := testutil.NewLogger(conf)
	core.ParseEmailTemplates(appfs.FS, logger, true)

	mailSvc := emailsvc.NewConsoleServiceMock(conf, logger)
	svc := reminder.NewService(mailSvc)
	to := mail.Address{Name: "Ada", Address: "ada@example.com"}

	assert.False(t, svc.Send(to, reminder.Digest{Name: "Ada"}))
	assert.Empty(t, mailSvc.SentMessages())

	digest := reminder.NewDigest("Ada", courses, []assignment.Assignment{
		newAssignment("Problem set", now.Add(3*time.Hour), assignment.StatusPending),
		newAssignment("Lab report", now.Add(-48*time.Hour), assignment.StatusPending),
	}, now)
	require.True(t, svc.Send(to, digest))

	sent := mailSvc.SentMessages()
	require.Len(t, sent, 1)
	msg := sent[0]
	assert.Equal(t, []mail.Address{to}, msg.To)
	assert.Equal(t, "2 assignments need your attention", msg.Subject)
	assert.Contains(t, msg.TextContent, "Hi Ada,")
	assert.Contains(t, msg.TextContent, "Overdue (1)\n  - Lab report [Calculus II] due Sat Oct 12, 12:00")
	assert.Contains(t, msg.TextContent, "Due Today (1)")
	assert.Contains(t, msg.TextContent, "\n--\nStudyFlow\n")
	assert.Contains(t, msg.HTMLContent, "<strong>Problem set</strong> (Calculus II)")
	assert.Contains(t, msg.HTMLContent, "<title>StudyFlow</title>")

	mailSvc.Reset()
	assert.Empty(t, mailSvc.SentMessages())

	single := reminder.NewDigest("Ada", courses, []assignment.Assignment{
		newAssignment("Lab report", now.Add(-48*time.Hour), assignment.StatusPending),
	}, now)
	require.True(t, svc.Send(to, single))
	sent = mailSvc.SentMessages()
	require.Len(t, sent, 1)
	assert.Equal(t, "1 assignment needs your attention", sent[0].Subject)
}
