package cmd

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// logoutCmd ends the session locally and asks the server to invalidate the
// refresh credential.
func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Logout from the Shelfmark server",
		Run: func(cmd *cobra.Command, args []string) {
			ctrl, _, err := restoreSession(cmd.Context())
			if err != nil {
				cmd.PrintErrln("Error:", err)
				return
			}
			// Teardown happens regardless of what the server says.
			ctrl.Logout(cmd.Context())
			cmd.Println("Logged out.")
		},
	}
}

// whoamiCmd shows the identity attached to the current session.
func whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the currently logged-in user",
		Run: func(cmd *cobra.Command, args []string) {
			ctrl, _, err := restoreSession(cmd.Context())
			if err != nil {
				cmd.PrintErrln("Error:", err)
				return
			}

			st := ctrl.State()
			if !st.Authenticated || st.Identity == nil {
				cmd.Println("Not logged in.")
				return
			}
			cmd.Printf("%s <%s>\n", st.Identity.Name, st.Identity.Email)
		},
	}
}

// statusCmd reports the session state in detail.
func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show session status",
		Run: func(cmd *cobra.Command, args []string) {
			ctrl, _, err := restoreSession(cmd.Context())
			if err != nil {
				cmd.PrintErrln("Error:", err)
				return
			}

			st := ctrl.State()
			cmd.Println("Server:", serverURL())
			if !st.Authenticated {
				cmd.Println("Session: none (not logged in)")
				return
			}

			cmd.Println("Session: active")
			if st.Identity != nil {
				cmd.Printf("User: %s <%s>\n", st.Identity.Name, st.Identity.Email)
			}
			if expiresAt, ok := ctrl.Store().ExpiresAt(); ok {
				cmd.Println("Access token expires at:", expiresAt.Format("2006-01-02 15:04:05"))
			}
			log.Debug().Str("scheduler", ctrl.Scheduler().State().String()).Msg("Session status inspected")
		},
	}
}
