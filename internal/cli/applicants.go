package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/cuongbtq/jobboard/internal/domain"
	"github.com/cuongbtq/jobboard/internal/filter"
	"github.com/cuongbtq/jobboard/internal/view"
)

func newApplicantsCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "applicants",
		Short: "Review applications",
	}
	cmd.AddCommand(
		newApplicantsListCommand(app),
		newApplicantsSetStatusCommand(app),
		newApplicantsDeleteCommand(app),
	)
	return cmd
}

func (a *App) mountApplicants(cmd *cobra.Command) (*view.ApplicantsBoard, error) {
	sess, err := a.session()
	if err != nil {
		return nil, err
	}

	board := view.NewApplicantsBoard(cmd.Context(), a.client, a.deps(sess))
	if err := board.Mount(cmd.Context()); err != nil {
		board.Unmount()
		return nil, a.shown(err)
	}
	return board, nil
}

func newApplicantsListCommand(app *App) *cobra.Command {
	criteria := filter.ApplicantCriteria{Status: filter.AllStatus}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List applications on the dashboard table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			board, err := app.mountApplicants(cmd)
			if err != nil {
				return err
			}
			defer board.Unmount()

			board.SetCriteria(criteria)
			renderApplicants(app.out, board.Visible(), app.now())
			return nil
		},
	}

	cmd.Flags().StringVar(&criteria.SearchTerm, "search", "", "Match job title or applicant name")
	cmd.Flags().StringVar(&criteria.Status, "status", criteria.Status, "PENDING, APPROVED, REJECTED or \""+filter.AllStatus+"\"")
	return cmd
}

func newApplicantsSetStatusCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "set-status <applicant-id> <status>",
		Short: "Move an application to PENDING, APPROVED or REJECTED",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			board, err := app.mountApplicants(cmd)
			if err != nil {
				return err
			}
			defer board.Unmount()

			_, err = board.SetStatus(cmd.Context(), args[0], strings.ToUpper(args[1]))
			return app.shown(err)
		},
	}
}

func newApplicantsDeleteCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <applicant-id>",
		Short: "Delete an application",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			board, err := app.mountApplicants(cmd)
			if err != nil {
				return err
			}
			defer board.Unmount()

			_, err = board.Delete(cmd.Context(), args[0])
			return app.shown(err)
		},
	}
}

func newApplyCommand(app *App) *cobra.Command {
	var (
		form        domain.ApplicationForm
		resume      string
		coverLetter string
	)

	cmd := &cobra.Command{
		Use:   "apply <job-id>",
		Short: "Apply to a job with a PDF resume",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if form.Resume, err = readAttachment(resume); err != nil {
				return err
			}
			if form.CoverLetter, err = readAttachment(coverLetter); err != nil {
				return err
			}

			sess, err := app.session()
			if err != nil {
				return err
			}
			if form.Email == "" {
				form.Email = sess.Email
			}

			detail := view.NewJobDetail(cmd.Context(), args[0], app.client, app.client, app.client, app.deps(sess))
			defer detail.Unmount()
			if err := detail.Mount(cmd.Context()); err != nil {
				return app.shown(err)
			}

			_, err = detail.Apply(cmd.Context(), form, nil)
			return app.shown(err)
		},
	}

	cmd.Flags().StringVar(&form.FullName, "full-name", "", "Your full name")
	cmd.Flags().StringVar(&form.Email, "email", "", "Contact email, defaults to the signed-in account")
	cmd.Flags().StringVar(&form.Message, "message", "", "Message to the hiring team")
	cmd.Flags().StringVar(&resume, "resume", "", "Resume PDF")
	cmd.Flags().StringVar(&coverLetter, "cover-letter", "", "Cover letter PDF")
	return cmd
}
