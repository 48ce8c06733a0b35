package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vslbak/gymflow-web/internal/catalog"
	"github.com/vslbak/gymflow-web/internal/workflow"
)

func (a *App) classesCmd() *cobra.Command {
	var category string
	cmd := &cobra.Command{
		Use:   "classes",
		Short: "List classes, optionally filtered by category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.catalog.Load(cmd.Context()); err != nil {
				return err
			}
			classes := a.catalog.Filter(category)
			if len(classes) == 0 {
				fmt.Fprintf(a.out(), "No classes in %q. Categories: %s\n", category, strings.Join(a.catalog.Categories(), ", "))
				return nil
			}
			printClasses(a.out(), classes)
			return nil
		},
	}
	cmd.Flags().StringVar(&category, "category", catalog.AllCategories, "category to show")
	return cmd
}

func (a *App) openPage(cmd *cobra.Command, classID, date string) (*workflow.ClassPage, error) {
	page, err := workflow.Open(cmd.Context(), classID, workflow.Deps{
		API:     a.api,
		Catalog: a.catalog,
		Auth:    a.session,
	})
	if err != nil {
		return nil, err
	}
	if date != "" {
		page.Select(date)
	}
	return page, nil
}

func (a *App) classCmd() *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "class <id>",
		Short: "Show a class, its session dates and availability",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			page, err := a.openPage(cmd, args[0], date)
			if err != nil {
				return err
			}
			printClassPage(a.out(), page)
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "session date (YYYY-MM-DD); defaults to the earliest")
	return cmd
}

func (a *App) bookCmd() *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "book <classId>",
		Short: "Book the session of a class on a date",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			page, err := a.openPage(cmd, args[0], date)
			if err != nil {
				return err
			}

			outcome, err := page.Book(cmd.Context())
			var loginErr *workflow.LoginRequiredError
			if errors.As(err, &loginErr) {
				fmt.Fprintf(a.out(), "Sign in to book (storefront would send you to %s)\n", loginErr.RedirectPath)
				return ErrNotSignedIn
			}
			if err != nil {
				return err
			}

			s := page.Session()
			fmt.Fprintf(a.out(), "Booked %s on %s.\n", page.Class().Name, s.Date)
			fmt.Fprintf(a.out(), "Continue at: %s\n", outcome.RedirectURL)
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "session date (YYYY-MM-DD); defaults to the earliest")
	return cmd
}
