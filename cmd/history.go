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
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/valpere/transly/internal/api"
)

var (
	historyLimit  int
	historyOffset int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List past translations of the account",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		if err := requireLogin(client); err != nil {
			return err
		}

		entries, err := client.History(cmd.Context(), historyLimit, historyOffset)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Println("No translations yet.")
			return nil
		}
		return printHistory(os.Stdout, entries)
	},
}

func printHistory(out io.Writer, entries []api.HistoryEntry) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDATE\tSOURCE\tTARGET\tCHARS\tTYPE\tFILE")
	for _, e := range entries {
		docType := e.DocumentType
		if docType == "" {
			docType = "text"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\t%s\t%s\n",
			e.ID, e.CreatedAt.Local().Format("2006-01-02 15:04"),
			e.SourceLanguage, e.TargetLanguage, e.CharacterCount,
			docType, e.FileName)
	}
	return w.Flush()
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Number of entries to show")
	historyCmd.Flags().IntVar(&historyOffset, "offset", 0, "Number of entries to skip")
}
