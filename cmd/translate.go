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
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/natefinch/atomic"
	"github.com/spf13/cobra"
)

var (
	inputFile  string
	outputFile string
	sourceLang string
	targetLang string
	jsonOutput bool
)

var translateCmd = &cobra.Command{
	Use:   "translate [text]",
	Short: "Translate text",
	Long: `Translate text read from --input, the arguments, or standard input.

Texts up to 1000 characters are sent in one request. Longer texts are split
at sentence boundaries into chunks of about 1500 characters, which are
translated in order and joined with single spaces. Consecutive chunk requests
start at least 300ms (--interval) apart; a request that itself takes longer
than that is followed by the next one without an extra pause. If any chunk
fails, nothing is written.

Examples:
  transly translate -t de "Hello, world!"
  transly translate -s en -t uk -i book.txt -o book.uk.txt
  cat notes.txt | transly translate -t fr --detect`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if inputFile != "" && outputFile != "" && filepath.Clean(inputFile) == filepath.Clean(outputFile) {
			return fmt.Errorf("input file and output file cannot be the same")
		}

		text, err := readInput(cmd, args)
		if err != nil {
			return err
		}

		client, err := newClient()
		if err != nil {
			return err
		}
		eng, err := buildEngine(client)
		if err != nil {
			return err
		}
		defer eng.close()

		onProgress, finish := progressPrinter(os.Stderr, "Translating")
		result, err := newPipeline(eng).Translate(cmd.Context(), text, sourceLang, targetLang, onProgress)
		finish()
		if err != nil {
			return err
		}

		var out []byte
		if jsonOutput {
			out, err = json.MarshalIndent(result, "", "  ")
			if err != nil {
				return err
			}
			out = append(out, '\n')
		} else {
			out = []byte(result.TranslatedText)
		}

		if outputFile == "" {
			if _, err := os.Stdout.Write(out); err != nil {
				return err
			}
			if !jsonOutput && isatty.IsTerminal(os.Stdout.Fd()) {
				fmt.Println()
			}
		} else {
			if err := os.MkdirAll(filepath.Dir(outputFile), 0755); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
			if err := atomic.WriteFile(outputFile, bytes.NewReader(out)); err != nil {
				return fmt.Errorf("failed to write output file: %w", err)
			}
		}

		logger.Info().
			Str("engine", eng.service.Name()).
			Str("source", result.SourceLang).
			Str("target", result.TargetLang).
			Int("characters", result.CharactersTranslated).
			Int("chunks", result.Chunks).
			Msg("Translation complete")
		return nil
	},
}

// readInput takes the text from --input, then the arguments, then stdin.
func readInput(cmd *cobra.Command, args []string) (string, error) {
	switch {
	case inputFile != "":
		data, err := os.ReadFile(inputFile)
		if err != nil {
			return "", fmt.Errorf("failed to read input file: %w", err)
		}
		return string(data), nil
	case len(args) > 0:
		return strings.Join(args, " "), nil
	case !isatty.IsTerminal(os.Stdin.Fd()):
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("failed to read standard input: %w", err)
		}
		return string(data), nil
	default:
		return "", fmt.Errorf("no text given: pass it as an argument, with --input, or on standard input")
	}
}

func init() {
	rootCmd.AddCommand(translateCmd)

	translateCmd.Flags().StringVarP(&inputFile, "input", "i", "", "Input file to translate")
	translateCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default standard output)")
	translateCmd.Flags().StringVarP(&sourceLang, "source", "s", "auto", "Source language code")
	translateCmd.Flags().StringVarP(&targetLang, "target", "t", "", "Target language code (required)")
	translateCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the result with metadata as JSON")
	translateCmd.Flags().Bool("detect", false, "Detect the source language locally when it is auto")
	translateCmd.Flags().Bool("verify", false, "Warn when the result does not look like the target language")
	translateCmd.Flags().Bool("hard-split", false, "Cut sentences longer than the chunk size")
	translateCmd.Flags().Duration("interval", 0, "Minimum delay between chunk requests")

	bindFlag(v, "detect", translateCmd.Flags().Lookup("detect"))
	bindFlag(v, "verify", translateCmd.Flags().Lookup("verify"))
	bindFlag(v, "chunk.hard_split", translateCmd.Flags().Lookup("hard-split"))
	bindFlag(v, "chunk.interval", translateCmd.Flags().Lookup("interval"))

	translateCmd.MarkFlagRequired("target")
}
