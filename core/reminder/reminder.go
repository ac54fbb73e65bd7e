// Package reminder builds & sends the digest of overdue and soon-due assignments.
package reminder

import (
	"fmt"
	"net/mail"
	"sort"
	"time"

	"github.com/volatiletech/strmangle"

	"github.com/trezcool/studyflow/core"
	"github.com/trezcool/studyflow/core/assignment"
	"github.com/trezcool/studyflow/core/course"
	"github.com/trezcool/studyflow/core/due"
)

const digestTemplate = "digest"

var digestBuckets = []due.Bucket{due.Overdue, due.DueToday, due.DueSoon}

type (
	Entry struct {
		Title  string
		Course string
		Color  string
		Due    string
	}

	Section struct {
		Bucket due.Bucket
		Label  string
		Items  []Entry
	}

	Digest struct {
		Name     string
		Sections []Section
	}
)

func (d Digest) IsEmpty() bool { return len(d.Sections) == 0 }

// Count returns the number of assignments in the digest.
func (d Digest) Count() int {
	var n int
	for _, s := range d.Sections {
		n += len(s.Items)
	}
	return n
}

// NewDigest groups the non-completed assignments that are overdue, due today or due soon at `now`.
func NewDigest(name string, courses []course.Course, assignments []assignment.Assignment, now time.Time) Digest {
	pending := make([]assignment.Assignment, 0, len(assignments))
	for _, a := range assignments {
		if !a.IsCompleted() {
			pending = append(pending, a)
		}
	}
	sort.SliceStable(pending, func(i, j int) bool { return pending[i].DueDate.Before(pending[j].DueDate) })

	byBucket := make(map[due.Bucket]*Section, len(digestBuckets))
	for _, a := range pending {
		urg := due.Classify(a.DueDate, now, due.List)
		sec, ok := byBucket[urg.Bucket]
		if !ok {
			sec = &Section{Bucket: urg.Bucket, Label: urg.Label}
			byBucket[urg.Bucket] = sec
		}
		crs := course.Resolve(a.CourseID, courses)
		sec.Items = append(sec.Items, Entry{
			Title:  a.Title,
			Course: crs.Name,
			Color:  crs.Color,
			Due:    a.DueDate.In(now.Location()).Format("Mon Jan 2, 15:04"),
		})
	}

	digest := Digest{Name: name}
	for _, b := range digestBuckets {
		if sec, ok := byBucket[b]; ok {
			digest.Sections = append(digest.Sections, *sec)
		}
	}
	return digest
}

// Service sends digests by email.
type Service struct {
	mailSvc core.EmailService
}

func NewService(mailSvc core.EmailService) *Service {
	return &Service{mailSvc: mailSvc}
}

func subject(count int) string {
	if count == 1 {
		return "1 assignment needs your attention"
	}
	return fmt.Sprintf("%d %s need your attention", count, strmangle.Plural("assignment"))
}

// Send emails `digest` to `to`. Empty digests are not sent; the returned bool reports whether it was.
func (svc *Service) Send(to mail.Address, digest Digest) bool {
	if digest.IsEmpty() {
		return false
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{to},
		Subject:      subject(digest.Count()),
		TemplateName: digestTemplate,
		TemplateData: digest,
	})
	return true
}
