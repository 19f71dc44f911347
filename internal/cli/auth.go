package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cuongbtq/jobboard/internal/client"
	"github.com/cuongbtq/jobboard/internal/domain"
)

func newSignInCommand(app *App) *cobra.Command {
	var form domain.SignInForm

	cmd := &cobra.Command{
		Use:   "signin",
		Short: "Sign in and keep the session for this device",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if form.Password == "" {
				form.Password = os.Getenv(EnvPassword)
			}
			if err := app.validator.SignInForm(form); err != nil {
				return app.shown(err)
			}

			// sessions are bound to the device, so keep the id across sign-ins
			deviceID := client.NewDeviceID()
			if prev, err := app.sessions.Load(); err == nil && prev.DeviceID != "" {
				deviceID = prev.DeviceID
			}

			sess, user, err := app.client.SignIn(cmd.Context(), deviceID, form.Email, form.Password)
			if err != nil {
				app.notifier.ErrorFor(err, app.cfg.Client.Notifications.ModalTTL)
				return app.shown(err)
			}
			if err := app.sessions.Save(sess); err != nil {
				return err
			}

			name := form.Email
			if user != nil {
				name = fmt.Sprintf("%s (%s)", user.Username, user.Role)
			}
			fmt.Fprintf(app.out, "Signed in as %s\n", name)
			return nil
		},
	}

	cmd.Flags().StringVar(&form.Email, "email", "", "Account email")
	cmd.Flags().StringVar(&form.Password, "password", "", "Account password, defaults to $"+EnvPassword)
	return cmd
}

func newSignOutCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "signout",
		Short: "End the session on the backend and forget it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := app.session()
			if err != nil {
				return err
			}

			msg, err := app.client.SignOut(cmd.Context(), sess)
			// the local session is useless either way
			if clearErr := app.sessions.Clear(); clearErr != nil {
				return clearErr
			}
			if err != nil {
				app.notifier.Error(err)
				return app.shown(err)
			}
			app.notifier.Success(msg)
			return nil
		},
	}
}

func newWhoAmICommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user and their applications",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := app.session()
			if err != nil {
				return err
			}

			data, err := app.client.VerifyAuth(cmd.Context(), sess)
			if err != nil {
				if errors.Is(err, domain.ErrUnauthorized) {
					_ = app.sessions.Clear()
				}
				app.notifier.Error(err)
				return app.shown(err)
			}

			u := data.User
			fmt.Fprintf(app.out, "%s <%s> %s\n", u.Username, u.Email, u.Role)
			if u.Role == domain.RoleApplicant {
				fmt.Fprintf(app.out, "Applications: %d\n", len(u.Applicants))
				if len(u.Applicants) > 0 {
					renderApplicants(app.out, u.Applicants, app.now())
				}
			}
			return nil
		},
	}
}
