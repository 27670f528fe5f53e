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

	"github.com/spf13/cobra"

	"github.com/valpere/transly/internal/api"
	"github.com/valpere/transly/internal/session"
)

var (
	authUsername      string
	authEmail         string
	authPasswordStdin bool
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to the transly backend",
	Long: `Log in and store the access token in the session file.

The password is read from standard input, either after a prompt or, with
--password-stdin, as the first line of piped input.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		username, err := promptIfEmpty(authUsername, "Username: ")
		if err != nil {
			return err
		}
		password, err := readPassword()
		if err != nil {
			return err
		}

		client, err := newClient()
		if err != nil {
			return err
		}
		auth, err := client.Login(cmd.Context(), username, password)
		if err != nil {
			return err
		}
		fmt.Printf("Logged in as %s\n", displayName(auth.User, username))
		return nil
	},
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a transly account and log in",
	RunE: func(cmd *cobra.Command, args []string) error {
		username, err := promptIfEmpty(authUsername, "Username: ")
		if err != nil {
			return err
		}
		email, err := promptIfEmpty(authEmail, "Email: ")
		if err != nil {
			return err
		}
		if !strings.Contains(email, "@") {
			return fmt.Errorf("invalid email address: %s", email)
		}
		password, err := readPassword()
		if err != nil {
			return err
		}

		client, err := newClient()
		if err != nil {
			return err
		}
		auth, err := client.Register(cmd.Context(), api.RegisterRequest{
			Username: username,
			Email:    email,
			Password: password,
		})
		if err != nil {
			return err
		}
		fmt.Printf("Registered and logged in as %s\n", displayName(auth.User, username))
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		if err := client.Logout(); err != nil {
			return fmt.Errorf("failed to remove session: %w", err)
		}
		fmt.Println("Logged out.")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged in account",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		if err := requireLogin(client); err != nil {
			return err
		}
		u, err := client.Me(cmd.Context())
		if err != nil {
			return err
		}
		printUser(u)
		return nil
	},
}

func printUser(u *session.User) {
	fmt.Printf("Username:      %s\n", u.Username)
	fmt.Printf("Email:         %s\n", u.Email)
	plan := "none"
	if u.SubscriptionActive && u.SubscriptionPlan != "" {
		plan = u.SubscriptionPlan
	}
	fmt.Printf("Plan:          %s\n", plan)
	fmt.Printf("Characters:    %d / %d used\n", u.CharactersUsed, u.MonthlyCharacterLimit)
}

func displayName(u *session.User, fallback string) string {
	if u != nil && u.Username != "" {
		return u.Username
	}
	return fallback
}

func promptIfEmpty(value, prompt string) (string, error) {
	if value != "" {
		return value, nil
	}
	fmt.Fprint(os.Stderr, prompt)
	line, err := readLine()
	if err != nil {
		return "", err
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return "", fmt.Errorf("%s is required", strings.ToLower(strings.TrimSuffix(prompt, ": ")))
	}
	return line, nil
}

func readPassword() (string, error) {
	if !authPasswordStdin {
		fmt.Fprint(os.Stderr, "Password: ")
	}
	password, err := readLine()
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	if password == "" {
		return "", fmt.Errorf("password is required")
	}
	return password, nil
}

func init() {
	rootCmd.AddCommand(loginCmd, registerCmd, logoutCmd, whoamiCmd)

	for _, c := range []*cobra.Command{loginCmd, registerCmd} {
		c.Flags().StringVarP(&authUsername, "username", "u", "", "Account username")
		c.Flags().BoolVar(&authPasswordStdin, "password-stdin", false, "Read the password from standard input without a prompt")
	}
	registerCmd.Flags().StringVar(&authEmail, "email", "", "Account email")
}
