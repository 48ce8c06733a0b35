package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vslbak/gymflow-web/internal/api"
)

func (a *App) loginCmd() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with email and password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.session.SignIn(cmd.Context(), email, password); err != nil {
				return fmt.Errorf("login failed: %w", err)
			}
			a.printSignedIn()
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func (a *App) signupCmd() *cobra.Command {
	var req api.SignupRequest
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account and sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.session.SignUp(cmd.Context(), req); err != nil {
				return fmt.Errorf("signup failed: %w", err)
			}
			a.printSignedIn()
			return nil
		},
	}
	cmd.Flags().StringVar(&req.Username, "username", "", "display name")
	cmd.Flags().StringVar(&req.Email, "email", "", "account email")
	cmd.Flags().StringVar(&req.Phone, "phone", "", "phone number")
	cmd.Flags().StringVar(&req.Password, "password", "", "password, at least 6 characters")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func (a *App) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a.session.Logout(cmd.Context())
			fmt.Fprintln(a.out(), "Signed out.")
			return nil
		},
	}
}

func (a *App) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !a.session.IsAuthenticated() {
				fmt.Fprintln(a.out(), "Not signed in.")
				return nil
			}
			u := a.session.User()
			if u == nil {
				return errors.New("signed in, but the profile could not be loaded")
			}
			fmt.Fprintf(a.out(), "%s <%s>\n", u.Username, u.Email)
			fmt.Fprintf(a.out(), "Role: %s\n", u.Role)
			if exp := a.session.Expiry(); !exp.IsZero() {
				fmt.Fprintf(a.out(), "Session expires: %s\n", exp.Local().Format("2006-01-02 15:04"))
			}
			return nil
		},
	}
}

func (a *App) printSignedIn() {
	if u := a.session.User(); u != nil {
		fmt.Fprintf(a.out(), "Signed in as %s <%s>.\n", u.Username, u.Email)
		return
	}
	fmt.Fprintln(a.out(), "Signed in.")
}
