package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/shelfmark/shelfmark/pkg/validation"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// loginCmd creates a new cobra.Command for logging into a Shelfmark server.
func loginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Login to the Shelfmark server",
		Long:  "Login to the configured Shelfmark server using your username and password",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Println("Please enter your Shelfmark username and password.")
			username := promptForInput("Username: ")
			password := promptForPassword("Password: ")

			if !validateCredentials(username, password) {
				cmd.PrintErrln("Error: Username and password cannot be empty.")
				return
			}

			ctrl, _, err := newSessionController()
			if err != nil {
				cmd.PrintErrln("Error:", err)
				return
			}
			if err := ctrl.Login(cmd.Context(), username, password); err != nil {
				cmd.PrintErrln("Error: Failed to login:", err)
				return
			}

			st := ctrl.State()
			if st.Identity != nil {
				cmd.Printf("Login was successful. Welcome, %s.\n", st.Identity.Name)
			} else {
				cmd.Println("Login was successful.")
			}
		},
	}

	return cmd
}

// registerCmd creates a new cobra.Command for creating an account.
func registerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account on the Shelfmark server",
		Run: func(cmd *cobra.Command, args []string) {
			email := promptForInput("Email: ")
			if err := validation.ValidateEmail(email); err != nil {
				cmd.PrintErrln("Error:", err)
				return
			}
			password := promptForPassword("Password: ")
			if err := validation.ValidatePassword(password); err != nil {
				cmd.PrintErrln("Error:", err)
				return
			}

			ctrl, _, err := newSessionController()
			if err != nil {
				cmd.PrintErrln("Error:", err)
				return
			}
			if err := ctrl.Register(cmd.Context(), email, password); err != nil {
				cmd.PrintErrln("Error: Failed to register:", err)
				return
			}

			cmd.Println("Registration was successful. You are now logged in.")
		},
	}

	return cmd
}

// promptForInput prompts the user for input and returns the trimmed string.
func promptForInput(prompt string) string {
	reader := bufio.NewReader(os.Stdin)
	fmt.Print(prompt)
	input, err := reader.ReadString('\n')
	if err != nil {
		fmt.Println("Error: Failed to read input.")
		os.Exit(1)
	}
	return strings.TrimSpace(input)
}

// promptForPassword prompts the user for a password securely and returns the trimmed string.
func promptForPassword(prompt string) string {
	fmt.Print(prompt)
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		fmt.Println("Error: Failed to read password.")
		os.Exit(1)
	}
	fmt.Println() // Print a newline for better formatting
	return strings.TrimSpace(string(password))
}

// validateCredentials checks if the username and password are not empty.
func validateCredentials(username, password string) bool {
	return username != "" && password != ""
}
