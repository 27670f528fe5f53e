/*
Copyright © 2025 Valentyn Solomko <valentyn.solomko@gmail.com>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/valpere/transly/internal/api"
	"github.com/valpere/transly/internal/plans"
)

var plansCmd = &cobra.Command{
	Use:   "plans",
	Short: "List subscription plans",
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tPRICE\tCHARACTERS\tFEATURES")
		for _, p := range plans.All() {
			limit := "unlimited"
			if !p.Unlimited() {
				limit = fmt.Sprintf("%d", p.CharacterLimit)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				p.ID, p.Name, p.Price(), limit, strings.Join(p.Features, ", "))
		}
		return w.Flush()
	},
}

var subscribeCmd = &cobra.Command{
	Use:   "subscribe <plan>",
	Short: "Start a checkout for a subscription plan",
	Long: `Ask the backend for a Stripe checkout session for the plan and print its
ID, and the hosted checkout URL when the backend returns one.`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: plans.IDs(),
	RunE: func(cmd *cobra.Command, args []string) error {
		plan, ok := plans.Lookup(args[0])
		if !ok {
			return fmt.Errorf("unknown plan %q (want one of %s)", args[0], strings.Join(plans.IDs(), ", "))
		}

		client, err := newClient()
		if err != nil {
			return err
		}
		if err := requireLogin(client); err != nil {
			return err
		}

		checkout, err := client.CreateSubscription(cmd.Context(), plan.PriceID, plan.ID)
		if err != nil {
			return err
		}
		fmt.Print(checkoutMessage(plan, checkout))
		return nil
	},
}

func checkoutMessage(plan plans.Plan, checkout *api.CheckoutSession) string {
	msg := fmt.Sprintf("Checkout session for %s (%s): %s\n", plan.Name, plan.Price(), checkout.SessionID)
	if checkout.URL != "" {
		msg += fmt.Sprintf("Complete the payment at %s\n", checkout.URL)
	}
	return msg
}

func init() {
	rootCmd.AddCommand(plansCmd, subscribeCmd)
}
