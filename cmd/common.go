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
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/valpere/transly/internal"
	"github.com/valpere/transly/internal/api"
	"github.com/valpere/transly/internal/detector"
	"github.com/valpere/transly/internal/pipeline"
	"github.com/valpere/transly/internal/quota"
	"github.com/valpere/transly/internal/session"
	"github.com/valpere/transly/internal/translator"
	"github.com/valpere/transly/internal/validator"
)

var errNotLoggedIn = errors.New(`not logged in, run "transly login" first`)

func newClient() (*api.Client, error) {
	sess, err := session.Open(session.NewFileStore(cfg.Session.File))
	if err != nil {
		return nil, err
	}
	return api.New(cfg.API, sess, logger), nil
}

func requireLogin(client *api.Client) error {
	if !client.Session().LoggedIn() {
		return errNotLoggedIn
	}
	return nil
}

// engine is a translation service together with the quota that applies to it.
type engine struct {
	service translator.TranslationService
	quota   quota.Source
	close   func() error
}

// buildEngine constructs the configured translation engine. The backend
// engine checks the account quota; public engines use their own limits.
func buildEngine(client *api.Client) (*engine, error) {
	noop := func() error { return nil }

	switch cfg.Engine {
	case "backend":
		if err := requireLogin(client); err != nil {
			return nil, err
		}
		return &engine{
			service: translator.NewBackendService(client),
			quota:   quota.NewAccount(client),
			close:   noop,
		}, nil
	case "google":
		g := translator.NewGoogleService(cfg.Google)
		return &engine{service: g, quota: quota.Unlimited, close: g.Close}, nil
	case "mymemory":
		m := translator.NewMyMemoryService(cfg.MyMemory.Email)
		return &engine{service: m, quota: quota.Static(m.DailyLimit()), close: noop}, nil
	default:
		return nil, fmt.Errorf("unknown engine: %s", cfg.Engine)
	}
}

func newPipeline(e *engine) *pipeline.Translator {
	tr := pipeline.New(e.service, e.quota, cfg.Chunk)
	tr.SetLogger(logger)
	if !cfg.Detect && !cfg.Verify {
		return tr
	}

	det := detector.New()
	if cfg.Detect {
		tr.SetDetector(det)
	}
	if cfg.Verify {
		tr.SetVerifier(validator.New(det))
	}
	return tr
}

// progressPrinter draws a percentage on a terminal. On anything else progress
// goes to the debug log. The returned func ends an unfinished progress line.
func progressPrinter(f *os.File, label string) (internal.ProgressFunc, func()) {
	if !isatty.IsTerminal(f.Fd()) {
		return func(pct int) {
			logger.Debug().Int("percent", pct).Msg(label)
		}, func() {}
	}

	open := false
	report := func(pct int) {
		fmt.Fprintf(f, "\r%s %3d%%", label, pct)
		open = pct < 100
		if !open {
			fmt.Fprintln(f)
		}
	}
	finish := func() {
		if open {
			fmt.Fprintln(f)
			open = false
		}
	}
	return report, finish
}

// stdin is shared so that consecutive prompts do not lose buffered input.
var stdin = bufio.NewReader(os.Stdin)

// readLine reads one line from standard input without the line ending.
func readLine() (string, error) {
	line, err := stdin.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
