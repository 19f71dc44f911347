package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cuongbtq/jobboard/internal/domain"
	"github.com/cuongbtq/jobboard/internal/filter"
	"github.com/cuongbtq/jobboard/internal/view"
)

func newJobsCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Manage job postings",
	}
	cmd.AddCommand(
		newJobsListCommand(app),
		newJobsShowCommand(app),
		newJobsCreateCommand(app),
		newJobsUpdateCommand(app),
		newJobsDeleteCommand(app),
	)
	return cmd
}

// mountJobs opens the jobs board; the caller unmounts it
func (a *App) mountJobs(cmd *cobra.Command) (*view.JobsBoard, error) {
	sess, err := a.session()
	if err != nil {
		return nil, err
	}

	board := view.NewJobsBoard(cmd.Context(), a.client, a.deps(sess))
	if err := board.Mount(cmd.Context()); err != nil {
		board.Unmount()
		return nil, a.shown(err)
	}
	return board, nil
}

func newJobsListCommand(app *App) *cobra.Command {
	criteria := filter.JobCriteria{Status: filter.AllStatus, Positions: filter.AllPositions}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List jobs on the dashboard table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			board, err := app.mountJobs(cmd)
			if err != nil {
				return err
			}
			defer board.Unmount()

			board.SetCriteria(criteria)
			renderJobs(app.out, board.Visible(), app.now())
			return nil
		},
	}

	cmd.Flags().StringVar(&criteria.SearchTerm, "search", "", "Match job titles")
	cmd.Flags().StringVar(&criteria.Status, "status", criteria.Status, "OPEN, CLOSED or \""+filter.AllStatus+"\"")
	cmd.Flags().StringVar(&criteria.Positions, "positions", criteria.Positions, "1, 2+ or \""+filter.AllPositions+"\"")
	return cmd
}

func newJobsShowCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <job-id>",
		Short: "Show one job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := app.session()
			if err != nil {
				return err
			}

			detail := view.NewJobDetail(cmd.Context(), args[0], app.client, app.client, app.client, app.deps(sess))
			defer detail.Unmount()

			err = detail.Mount(cmd.Context())
			if job := detail.Job(); job != nil {
				renderJob(app.out, job, app.now())
				if detail.AlreadyApplied() {
					fmt.Fprintln(app.out, "\nYou have applied for this job")
				}
			}
			return app.shown(err)
		},
	}
}

// jobFlags binds the job form to command flags
type jobFlags struct {
	title        string
	company      string
	location     string
	salary       string
	jobType      string
	status       string
	department   string
	experience   string
	description  string
	requirements string
	benefits     string
	deadline     string
	contactEmail string
	positions    int
	attachment   string
}

func (f *jobFlags) register(cmd *cobra.Command, create bool) {
	if create {
		f.location = string(domain.LocationOnsite)
		f.jobType = string(domain.TypeFullTime)
		f.status = string(domain.JobStatusOpen)
		f.positions = 1
	}

	fl := cmd.Flags()
	fl.StringVar(&f.title, "title", f.title, "Job title")
	fl.StringVar(&f.company, "company", f.company, "Company name")
	fl.StringVar(&f.location, "location", f.location, "Onsite, Hybrid or Remote")
	fl.StringVar(&f.salary, "salary", f.salary, "Salary range")
	fl.StringVar(&f.jobType, "type", f.jobType, "Full Time, Part Time, Contract, Freelance or Internship")
	fl.StringVar(&f.status, "status", f.status, "OPEN or CLOSED")
	fl.StringVar(&f.department, "department", f.department, "Department")
	fl.StringVar(&f.experience, "experience", f.experience, "Experience required")
	fl.StringVar(&f.description, "description", f.description, "Job description")
	fl.StringVar(&f.requirements, "requirements", f.requirements, "Requirements")
	fl.StringVar(&f.benefits, "benefits", f.benefits, "Benefits")
	fl.StringVar(&f.deadline, "deadline", f.deadline, "Application deadline, YYYY-MM-DD")
	fl.StringVar(&f.contactEmail, "contact-email", f.contactEmail, "Contact email")
	fl.IntVar(&f.positions, "positions", f.positions, "Available positions")
	fl.StringVar(&f.attachment, "attachment", f.attachment, "PDF with the full job description")
}

func (f *jobFlags) form() (domain.JobForm, error) {
	attachment, err := readAttachment(f.attachment)
	if err != nil {
		return domain.JobForm{}, err
	}

	return domain.JobForm{
		Title:              f.title,
		Company:            f.company,
		Location:           domain.JobLocation(f.location),
		Salary:             f.salary,
		Type:               domain.JobType(f.jobType),
		Status:             domain.JobStatus(f.status),
		Department:         f.department,
		Experience:         f.experience,
		Description:        f.description,
		Requirements:       f.requirements,
		Benefits:           f.benefits,
		Deadline:           f.deadline,
		AvailablePositions: f.positions,
		ContactEmail:       f.contactEmail,
		Attachment:         attachment,
	}, nil
}

// input sets only the fields given on the command line
func (f *jobFlags) input(cmd *cobra.Command) (domain.JobInput, error) {
	var in domain.JobInput
	changed := cmd.Flags().Changed

	strs := []struct {
		flag string
		dst  **string
		val  *string
	}{
		{"title", &in.Title, &f.title},
		{"company", &in.Company, &f.company},
		{"salary", &in.Salary, &f.salary},
		{"department", &in.Department, &f.department},
		{"experience", &in.Experience, &f.experience},
		{"description", &in.Description, &f.description},
		{"requirements", &in.Requirements, &f.requirements},
		{"benefits", &in.Benefits, &f.benefits},
		{"deadline", &in.Deadline, &f.deadline},
		{"contact-email", &in.ContactEmail, &f.contactEmail},
	}
	for _, s := range strs {
		if changed(s.flag) {
			*s.dst = s.val
		}
	}

	if changed("location") {
		in.Location = domain.Ptr(domain.JobLocation(f.location))
	}
	if changed("type") {
		in.Type = domain.Ptr(domain.JobType(f.jobType))
	}
	if changed("status") {
		in.Status = domain.Ptr(domain.JobStatus(f.status))
	}
	if changed("positions") {
		in.AvailablePositions = &f.positions
	}

	attachment, err := readAttachment(f.attachment)
	if err != nil {
		return domain.JobInput{}, err
	}
	in.Attachment = attachment
	return in, nil
}

func newJobsCreateCommand(app *App) *cobra.Command {
	var flags jobFlags

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Post a new job",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			form, err := flags.form()
			if err != nil {
				return err
			}

			board, err := app.mountJobs(cmd)
			if err != nil {
				return err
			}
			defer board.Unmount()

			_, err = board.Create(cmd.Context(), form, nil)
			return app.shown(err)
		},
	}
	flags.register(cmd, true)
	return cmd
}

func newJobsUpdateCommand(app *App) *cobra.Command {
	var flags jobFlags

	cmd := &cobra.Command{
		Use:   "update <job-id>",
		Short: "Change the given fields of a job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := flags.input(cmd)
			if err != nil {
				return err
			}

			board, err := app.mountJobs(cmd)
			if err != nil {
				return err
			}
			defer board.Unmount()

			_, err = board.Update(cmd.Context(), args[0], in, nil)
			return app.shown(err)
		},
	}
	flags.register(cmd, false)
	return cmd
}

func newJobsDeleteCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <job-id>",
		Short: "Delete a job and its applications",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			board, err := app.mountJobs(cmd)
			if err != nil {
				return err
			}
			defer board.Unmount()

			_, err = board.Delete(cmd.Context(), args[0])
			return app.shown(err)
		},
	}
}

func newBrowseCommand(app *App) *cobra.Command {
	criteria := filter.ListingCriteria{Location: filter.AllLocations, Type: filter.AllTypes}

	cmd := &cobra.Command{
		Use:   "browse [keyword]",
		Short: "Browse the public job listing",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := app.session()
			if err != nil {
				return err
			}

			var keyword string
			if len(args) == 1 {
				keyword = args[0]
			}

			listings := view.NewListings(cmd.Context(), app.client, keyword, app.deps(sess))
			defer listings.Unmount()
			if err := listings.Mount(cmd.Context()); err != nil {
				return app.shown(err)
			}

			listings.SetCriteria(criteria)
			renderJobs(app.out, listings.Visible(), app.now())
			renderLocationCounts(app.out, listings.LocationCounts())
			return nil
		},
	}

	cmd.Flags().StringVar(&criteria.SearchTerm, "search", "", "Match title, company or location")
	cmd.Flags().StringVar(&criteria.Location, "location", criteria.Location, "Onsite, Hybrid, Remote or \""+filter.AllLocations+"\"")
	cmd.Flags().StringVar(&criteria.Type, "type", criteria.Type, "Job type or \""+filter.AllTypes+"\"")
	return cmd
}
