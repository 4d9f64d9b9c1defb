package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newSessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Session management commands",
	}

	cmd.AddCommand(newSessionCreateCmd())
	cmd.AddCommand(newSessionGetCmd())
	cmd.AddCommand(newSessionSetCmd())

	return cmd
}

func newSessionCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create",
		Short: "Create a new session",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Session

			if err := client.Post("/api/v1/sessions", nil, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newSessionGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Fetch a session record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Session

			if err := client.Get("/api/v1/sessions/"+args[0], &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newSessionSetCmd() *cobra.Command {
	var phase int
	var state string

	cmd := &cobra.Command{
		Use:   "set <id>",
		Short: "Update a session's phase and/or state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]any{}
			if cmd.Flags().Changed("phase") {
				req["phase"] = phase
			}
			if cmd.Flags().Changed("state") {
				if !json.Valid([]byte(state)) {
					return fmt.Errorf("--state must be valid JSON")
				}
				req["state"] = json.RawMessage(state)
			}
			if len(req) == 0 {
				return fmt.Errorf("at least one of --phase or --state is required")
			}

			var result Session
			if err := client.Post("/api/v1/sessions/"+args[0], req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().IntVar(&phase, "phase", 0, "New phase value")
	cmd.Flags().StringVar(&state, "state", "", "New state as a JSON document")

	return cmd
}
