package main

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/yourusername/flix-offline-go/api/handlers"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Show or switch the active account and profile",
}

var sessionSetCmd = &cobra.Command{
	Use:   "set [account] [profile]",
	Short: "Select the active account and profile",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		ensureServer()
		var session handlers.SessionResponse
		exitOnError(doJSON(http.MethodPut, "/api/v1/session",
			handlers.SessionRequest{AccountID: args[0], ProfileID: args[1]}, &session))
		printSession(session)
	},
}

var sessionShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the active account and profile",
	Run: func(cmd *cobra.Command, args []string) {
		ensureServer()
		var session handlers.SessionResponse
		exitOnError(doJSON(http.MethodGet, "/api/v1/session", nil, &session))
		printSession(session)
	},
}

var sessionClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Sign out of the active profile",
	Run: func(cmd *cobra.Command, args []string) {
		ensureServer()
		var session handlers.SessionResponse
		exitOnError(doJSON(http.MethodDelete, "/api/v1/session", nil, &session))
		printSession(session)
	},
}

func init() {
	sessionCmd.AddCommand(sessionSetCmd)
	sessionCmd.AddCommand(sessionShowCmd)
	sessionCmd.AddCommand(sessionClearCmd)
}

func printSession(session handlers.SessionResponse) {
	if !session.HasProfile {
		fmt.Println("No profile selected")
		return
	}
	fmt.Printf("Active owner: %s\n", session.Owner)
}
