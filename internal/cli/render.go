package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"github.com/cuongbtq/jobboard/internal/domain"
	"github.com/cuongbtq/jobboard/internal/view"
)

// TimeAgo renders how long before now t happened, in the largest whole unit
func TimeAgo(t, now time.Time) string {
	d := now.Sub(t)
	if d < 0 {
		d = 0
	}

	minutes := int(d / time.Minute)
	hours := minutes / 60
	days := hours / 24

	units := []struct {
		n    int
		name string
	}{
		{days / 365, "year"},
		{days / 30, "month"},
		{days / 7, "week"},
		{days, "day"},
		{hours, "hour"},
		{minutes, "minute"},
	}
	for _, u := range units {
		switch {
		case u.n == 1:
			return "1 " + u.name + " ago"
		case u.n > 1:
			return fmt.Sprintf("%d %ss ago", u.n, u.name)
		}
	}
	return "just now"
}

func newTable(w io.Writer, headers ...string) *tabwriter.Writer {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(headers, "\t"))
	return tw
}

func row(tw *tabwriter.Writer, cols ...any) {
	parts := make([]string, len(cols))
	for i, c := range cols {
		parts[i] = fmt.Sprint(c)
	}
	fmt.Fprintln(tw, strings.Join(parts, "\t"))
}

func renderJobs(w io.Writer, jobs []domain.Job, now time.Time) {
	if len(jobs) == 0 {
		fmt.Fprintln(w, "No jobs found")
		return
	}

	tw := newTable(w, "ID", "TITLE", "COMPANY", "LOCATION", "TYPE", "STATUS", "POSITIONS", "UPDATED")
	for _, j := range jobs {
		row(tw, j.ID, j.Title, j.Company, j.Location, j.Type, j.Status, j.AvailablePositions, TimeAgo(j.UpdatedAt, now))
	}
	tw.Flush()
}

func renderApplicants(w io.Writer, apps []domain.Applicant, now time.Time) {
	if len(apps) == 0 {
		fmt.Fprintln(w, "No applicants found")
		return
	}

	tw := newTable(w, "ID", "NAME", "EMAIL", "JOB", "STATUS", "UPDATED")
	for _, a := range apps {
		row(tw, a.ID, a.FullName, a.Email, jobLabel(a), a.Status, TimeAgo(a.UpdatedAt, now))
	}
	tw.Flush()
}

func renderJob(w io.Writer, j *domain.Job, now time.Time) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	field := func(name string, value any) { fmt.Fprintf(tw, "%s:\t%v\n", name, value) }

	field("Title", j.Title)
	field("Company", j.Company)
	field("Status", j.Status)
	field("Location", j.Location)
	field("Type", j.Type)
	field("Salary", j.Salary)
	field("Department", j.Department)
	if j.Experience != "" {
		field("Experience", j.Experience)
	}
	field("Positions", j.AvailablePositions)
	field("Deadline", j.Deadline)
	field("Contact", j.ContactEmail)
	if j.Attachment != nil {
		field("Attachment", *j.Attachment)
	}
	field("Posted", TimeAgo(j.CreatedAt, now))
	tw.Flush()

	for _, section := range []struct{ title, body string }{
		{"Description", j.Description},
		{"Requirements", j.Requirements},
		{"Benefits", j.Benefits},
	} {
		fmt.Fprintf(w, "\n%s\n%s\n", section.title, section.body)
	}
}

func renderLocationCounts(w io.Writer, counts map[domain.JobLocation]int) {
	parts := make([]string, 0, len(domain.JobLocations))
	for _, l := range domain.JobLocations {
		parts = append(parts, fmt.Sprintf("%s: %d", l, counts[l]))
	}
	fmt.Fprintln(w, strings.Join(parts, "  "))
}

func renderSummary(w io.Writer, s view.Summary) {
	fmt.Fprintf(w, "Jobs: %d (%d open, %d positions)\n", s.Jobs, s.OpenJobs, s.Positions)

	parts := make([]string, 0, len(domain.ApplicantStatuses))
	for _, st := range domain.ApplicantStatuses {
		parts = append(parts, fmt.Sprintf("%d %s", s.ByStatus[st], strings.ToLower(string(st))))
	}
	fmt.Fprintf(w, "Applicants: %d (%s)\n", s.Applicants, strings.Join(parts, ", "))
}

func printFields(w io.Writer, verr *domain.ValidationError) {
	names := make([]string, 0, len(verr.Fields))
	for name := range verr.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		fmt.Fprintf(w, "%s: %s\n", name, verr.Fields[name])
	}
}

func jobLabel(a domain.Applicant) string {
	if title := a.JobTitle(); title != "" {
		return title
	}
	return a.JobID
}

// readAttachment loads a file given on the command line; "" means no file
func readAttachment(path string) (*domain.Attachment, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return &domain.Attachment{
		Name:        filepath.Base(path),
		ContentType: mimetype.Detect(data).String(),
		Data:        data,
	}, nil
}
