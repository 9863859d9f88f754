package main

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/breathfree/quit_go_server/internal/domain/payment"
	"github.com/breathfree/quit_go_server/pkg/client"
)

var (
	payMembership int64
	payRenew      int64
)

var payCmd = &cobra.Command{
	Use:   "pay",
	Short: "Buy or renew a membership",
}

var payStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Create an order and print the payment URL",
	RunE: func(cmd *cobra.Command, args []string) error {
		flow, err := newPaymentFlow()
		if err != nil {
			return err
		}

		kind := payment.KindRegister
		var subscriptionID *int64
		if payRenew > 0 {
			kind = payment.KindRenew
			subscriptionID = &payRenew
		}

		order, err := flow.Start(cmd.Context(), payMembership, kind, subscriptionID)
		if err != nil {
			return err
		}
		fmt.Printf("Order %s, amount %d VND\nOpen: %s\n", order.TxnRef, order.Amount, order.PaymentURL)
		fmt.Println("Then run: quitctl pay complete '<return url>'")
		return nil
	},
}

var payCompleteCmd = &cobra.Command{
	Use:   "complete <return-url>",
	Short: "Finish the payment with the URL the gateway redirected to",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		u, err := url.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid return url: %w", err)
		}
		flow, err := newPaymentFlow()
		if err != nil {
			return err
		}

		result, err := flow.Complete(cmd.Context(), u.Query())
		if err != nil {
			return err
		}
		if !result.Success {
			return fmt.Errorf("%s", result.Message)
		}
		return printJSON(result)
	},
}

func init() {
	payStartCmd.Flags().Int64Var(&payMembership, "membership", 0, "Membership id to buy")
	payStartCmd.Flags().Int64Var(&payRenew, "renew", 0, "Subscription id to extend instead of registering")
	_ = payStartCmd.MarkFlagRequired("membership")

	payCmd.AddCommand(payStartCmd, payCompleteCmd)
}

func newPaymentFlow() (*client.PaymentFlow, error) {
	c, err := newClient()
	if err != nil {
		return nil, err
	}
	return client.NewPaymentFlow(c, client.NewFileIntentStore(intentPath())), nil
}
