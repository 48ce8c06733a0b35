package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vslbak/gymflow-web/internal/admin"
	"github.com/vslbak/gymflow-web/internal/dashboard"
)

func (a *App) adminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Admin pages: statistics, classes and sessions",
	}

	classes := &cobra.Command{Use: "classes", Short: "Manage classes"}
	classes.AddCommand(a.adminClassesList(), a.adminClassSave(false), a.adminClassSave(true), a.adminClassDelete())

	sessions := &cobra.Command{Use: "sessions", Short: "Manage class sessions"}
	sessions.AddCommand(a.adminSessionsList(), a.adminSessionSave(false), a.adminSessionSave(true), a.adminSessionDelete())

	cmd.AddCommand(a.adminStats(), classes, sessions)
	return cmd
}

func (a *App) adminStats() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Revenue, booking counts, recent bookings and popular classes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.requireAdmin(); err != nil {
				return err
			}
			st, err := dashboard.LoadAdminStats(cmd.Context(), a.api)
			if err != nil {
				return err
			}
			printStats(a.out(), st)
			return nil
		},
	}
}

func (a *App) classPanel(ctx context.Context) (*admin.ClassPanel, error) {
	if err := a.requireAdmin(); err != nil {
		return nil, err
	}
	panel, err := admin.NewClassPanel(a.session, a.api)
	if err != nil {
		return nil, err
	}
	panel.SyncCatalog(a.catalog)
	if err := panel.Load(ctx); err != nil {
		return nil, err
	}
	return panel, nil
}

func (a *App) sessionPanel(ctx context.Context) (*admin.SessionPanel, error) {
	if err := a.requireAdmin(); err != nil {
		return nil, err
	}
	panel, err := admin.NewSessionPanel(a.session, a.api, a.opts.Clock)
	if err != nil {
		return nil, err
	}
	if err := panel.Load(ctx); err != nil {
		return nil, err
	}
	return panel, nil
}

func (a *App) adminClassesList() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all classes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			panel, err := a.classPanel(cmd.Context())
			if err != nil {
				return err
			}
			printClasses(a.out(), panel.Classes())
			return nil
		},
	}
}

// classFlags are the class editor fields. Only flags given on the command
// line change the form.
type classFlags struct {
	form admin.ClassForm
}

func (f *classFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.form.Name, "name", "", "class name")
	fs.StringVar(&f.form.Instructor, "instructor", "", "instructor")
	fs.IntVar(&f.form.DurationMinutes, "duration", 0, "duration in minutes (multiple of 5)")
	fs.IntVar(&f.form.TotalSpots, "spots", 0, "total spots")
	fs.StringVar(&f.form.ImageURL, "image", "", "image URL")
	fs.StringVar(&f.form.Category, "category", "", "category")
	fs.StringVar(&f.form.Level, "level", "", "level")
	fs.StringVar(&f.form.Location, "location", "", "location")
	fs.StringVar(&f.form.Description, "description", "", "description")
	fs.Float64Var(&f.form.Price, "price", 0, "price")
	fs.StringVar(&f.form.ClassTime, "time", "", "start time (HH:MM)")
	fs.StringSliceVar(&f.form.DaysOfWeek, "days", nil, "weekdays, e.g. MONDAY,WEDNESDAY")
	fs.StringSliceVar(&f.form.WhatToBring, "bring", nil, "what to bring")
}

func (f *classFlags) apply(cmd *cobra.Command, form *admin.ClassForm) {
	changed := cmd.Flags().Changed
	set := map[string]func(){
		"name":        func() { form.Name = f.form.Name },
		"instructor":  func() { form.Instructor = f.form.Instructor },
		"duration":    func() { form.DurationMinutes = f.form.DurationMinutes },
		"spots":       func() { form.TotalSpots = f.form.TotalSpots },
		"image":       func() { form.ImageURL = f.form.ImageURL },
		"category":    func() { form.Category = f.form.Category },
		"level":       func() { form.Level = f.form.Level },
		"location":    func() { form.Location = f.form.Location },
		"description": func() { form.Description = f.form.Description },
		"price":       func() { form.Price = f.form.Price },
		"time":        func() { form.ClassTime = f.form.ClassTime },
		"days":        func() { form.DaysOfWeek = f.form.DaysOfWeek },
		"bring":       func() { form.WhatToBring = f.form.WhatToBring },
	}
	for name, fn := range set {
		if changed(name) {
			fn()
		}
	}
}

func (a *App) adminClassSave(update bool) *cobra.Command {
	var flags classFlags
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a class",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			panel, err := a.classPanel(cmd.Context())
			if err != nil {
				return err
			}

			form := panel.NewForm()
			if update {
				if form, err = panel.EditForm(args[0]); err != nil {
					return err
				}
			}
			flags.apply(cmd, &form)

			save := panel.Create
			verb := "Created"
			if update {
				save, verb = panel.Update, "Updated"
			}
			class, err := save(cmd.Context(), form)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out(), "%s class %s (%s).\n", verb, class.ID, class.Name)
			return nil
		},
	}
	if update {
		cmd.Use, cmd.Short, cmd.Args = "update <id>", "Update a class", cobra.ExactArgs(1)
	}
	flags.register(cmd)
	return cmd
}

func (a *App) adminClassDelete() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a class and its sessions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			panel, err := a.classPanel(cmd.Context())
			if err != nil {
				return err
			}
			if err := panel.RequestDelete(args[0]); err != nil {
				return err
			}
			if !yes && !a.confirm(cmd, fmt.Sprintf("Delete class %s and all of its sessions?", args[0])) {
				panel.CancelDelete()
				return ErrAborted
			}
			if err := panel.ConfirmDelete(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(a.out(), "Deleted class %s.\n", args[0])
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

func (a *App) adminSessionsList() *cobra.Command {
	var classID string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List sessions by date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			panel, err := a.sessionPanel(cmd.Context())
			if err != nil {
				return err
			}
			printSessions(a.out(), panel.Sessions(classID))
			return nil
		},
	}
	cmd.Flags().StringVar(&classID, "class", admin.AllClasses, "only sessions of this class")
	return cmd
}

func (a *App) adminSessionSave(update bool) *cobra.Command {
	var in admin.SessionForm
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			panel, err := a.sessionPanel(cmd.Context())
			if err != nil {
				return err
			}

			form := panel.NewForm()
			if update {
				if form, err = panel.EditForm(args[0]); err != nil {
					return err
				}
			}
			changed := cmd.Flags().Changed
			if changed("class") {
				form.ClassID = in.ClassID
			}
			if changed("date") {
				form.Date = in.Date
			}
			if changed("time") {
				form.Time = in.Time
			}
			if changed("spots") {
				form.SpotsLeft = in.SpotsLeft
			}

			save := panel.Create
			verb := "Created"
			if update {
				save, verb = panel.Update, "Updated"
			}
			s, err := save(cmd.Context(), form)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out(), "%s session %s: %s %s, %d spots left.\n", verb, s.ID, s.Date, s.Time, s.SpotsLeft)
			return nil
		},
	}
	if update {
		cmd.Use, cmd.Short, cmd.Args = "update <id>", "Update a session", cobra.ExactArgs(1)
	} else {
		cmd.Flags().StringVar(&in.ClassID, "class", "", "class id")
	}
	cmd.Flags().StringVar(&in.Date, "date", "", "date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&in.Time, "time", "", "start time (HH:MM)")
	cmd.Flags().IntVar(&in.SpotsLeft, "spots", 0, "spots left")
	return cmd
}

func (a *App) adminSessionDelete() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			panel, err := a.sessionPanel(cmd.Context())
			if err != nil {
				return err
			}
			if err := panel.RequestDelete(args[0]); err != nil {
				return err
			}
			if !yes && !a.confirm(cmd, fmt.Sprintf("Delete session %s?", args[0])) {
				panel.CancelDelete()
				return ErrAborted
			}
			if err := panel.ConfirmDelete(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(a.out(), "Deleted session %s.\n", args[0])
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}
