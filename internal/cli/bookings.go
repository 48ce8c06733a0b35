package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vslbak/gymflow-web/internal/dashboard"
	"github.com/vslbak/gymflow-web/internal/workflow"
)

func (a *App) dashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show your bookings: upcoming, past and cancelled",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.requireUser(); err != nil {
				return err
			}
			dash := dashboard.New(a.api, a.opts.Clock)
			if err := dash.Load(cmd.Context()); err != nil {
				return err
			}
			printDashboard(a.out(), dash.Aggregates())
			return nil
		},
	}
}

func (a *App) cancelCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "cancel <bookingId>",
		Short: "Cancel one of your bookings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireUser(); err != nil {
				return err
			}
			dash := dashboard.New(a.api, a.opts.Clock)
			if err := dash.Load(cmd.Context()); err != nil {
				return err
			}

			id := args[0]
			if !yes && !a.confirm(cmd, fmt.Sprintf("Cancel booking %s?", id)) {
				return ErrAborted
			}
			if err := dash.Cancel(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(a.out(), "Booking %s cancelled.\n", id)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

func (a *App) bookingSuccessCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "booking-success <sessionId|successUrl>",
		Short: "Confirm a booking after returning from checkout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireUser(); err != nil {
				return err
			}
			b, err := workflow.ConfirmCheckout(cmd.Context(), a.api, args[0])
			if err != nil {
				return fmt.Errorf("confirm booking: %w", err)
			}
			fmt.Fprintf(a.out(), "Payment confirmed: %s on %s.\n", className(b), bookingDate(b))
			fmt.Fprintf(a.out(), "Booking %s is %s.\n", b.ID, b.Status)
			return nil
		},
	}
}

// confirm asks a yes/no question on the command's input. Anything but y or
// yes is a no.
func (a *App) confirm(cmd *cobra.Command, question string) bool {
	fmt.Fprintf(a.out(), "%s [y/N] ", question)
	answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}
