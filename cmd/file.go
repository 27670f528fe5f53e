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
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/valpere/transly/internal/pipeline"
	"github.com/valpere/transly/internal/quota"
)

var (
	fileOutput string
	fileSource string
	fileTarget string
)

var translateFileCmd = &cobra.Command{
	Use:   "translate-file <input>",
	Short: "Translate a document through the backend",
	Long: fmt.Sprintf(`Upload a document to the backend and save the translated copy.

Accepted types: %s. Maximum size: 50 MB.
The output defaults to the input name with the target language added,
e.g. report.docx becomes report.de.docx.`, strings.Join(pipeline.AllowedExtensions, " ")),
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		input := args[0]
		output := fileOutput
		if output == "" {
			output = defaultOutputPath(input, fileTarget)
		}
		if filepath.Clean(input) == filepath.Clean(output) {
			return fmt.Errorf("input file and output file cannot be the same")
		}

		client, err := newClient()
		if err != nil {
			return err
		}
		if err := requireLogin(client); err != nil {
			return err
		}

		ft := pipeline.NewFileTranslator(client, quota.NewAccount(client), logger)
		onProgress, finish := progressPrinter(os.Stderr, "Translating "+filepath.Base(input))
		res, err := ft.Translate(cmd.Context(), input, output, fileSource, fileTarget, onProgress)
		finish()
		if err != nil {
			return err
		}

		fmt.Printf("Saved %s (%d bytes)\n", res.OutputPath, res.Bytes)
		return nil
	},
}

func defaultOutputPath(input, target string) string {
	ext := filepath.Ext(input)
	return strings.TrimSuffix(input, ext) + "." + target + ext
}

func init() {
	rootCmd.AddCommand(translateFileCmd)

	translateFileCmd.Flags().StringVarP(&fileOutput, "output", "o", "", "Output file")
	translateFileCmd.Flags().StringVarP(&fileSource, "source", "s", "auto", "Source language code")
	translateFileCmd.Flags().StringVarP(&fileTarget, "target", "t", "", "Target language code (required)")

	translateFileCmd.MarkFlagRequired("target")
}
