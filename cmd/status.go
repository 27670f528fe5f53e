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

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/valpere/transly/internal/api"
	"github.com/valpere/transly/internal/session"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show account usage and recent translations",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		if err := requireLogin(client); err != nil {
			return err
		}

		var (
			user    *session.User
			entries []api.HistoryEntry
		)
		g, ctx := errgroup.WithContext(cmd.Context())
		g.Go(func() error {
			var err error
			user, err = client.Me(ctx)
			return err
		})
		g.Go(func() error {
			var err error
			entries, err = client.History(ctx, 5, 0)
			return err
		})
		if err := g.Wait(); err != nil {
			return err
		}

		printUser(user)
		remaining := user.MonthlyCharacterLimit - user.CharactersUsed
		if remaining < 0 {
			remaining = 0
		}
		fmt.Printf("Remaining:     %d\n", remaining)

		if len(entries) == 0 {
			return nil
		}
		fmt.Println()
		fmt.Println("Recent translations:")
		return printHistory(os.Stdout, entries)
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
