package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newPlayerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "player",
		Short: "Player management commands",
	}

	cmd.AddCommand(newPlayerSignupCmd())
	cmd.AddCommand(newPlayerCodeCmd())
	cmd.AddCommand(newPlayerAuthCmd())
	cmd.AddCommand(newPlayerQRCmd())
	cmd.AddCommand(newPlayerResultCmd())

	return cmd
}

func newPlayerSignupCmd() *cobra.Command {
	var id, name, code, token string

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Register a new player",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{
				"id":                 id,
				"display_name":       name,
				"code":               code,
				"verification_token": token,
			}
			var result SignupResult

			if err := client.Post("/api/v1/players", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "Player id (required)")
	cmd.Flags().StringVar(&name, "name", "", "Display name (required)")
	cmd.Flags().StringVar(&code, "code", "", "Scannable code (required)")
	cmd.Flags().StringVar(&token, "token", "", "Verification token (required)")
	_ = cmd.MarkFlagRequired("id")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("code")
	_ = cmd.MarkFlagRequired("token")

	return cmd
}

func newPlayerCodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "code",
		Short: "Generate a fresh opaque code",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result CodeResult

			if err := client.Get("/api/v1/players/code", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newPlayerAuthCmd() *cobra.Command {
	var id, code, token string

	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authenticate with an id or code plus verification token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if (id == "") == (code == "") {
				return fmt.Errorf("exactly one of --id or --code is required")
			}

			req := map[string]string{"verification_token": token}
			if id != "" {
				req["id"] = id
			} else {
				req["code"] = code
			}
			var result Player

			if err := client.Post("/api/v1/players/auth", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "Player id")
	cmd.Flags().StringVar(&code, "code", "", "Scannable code")
	cmd.Flags().StringVar(&token, "token", "", "Verification token (required)")
	_ = cmd.MarkFlagRequired("token")

	return cmd
}

func newPlayerQRCmd() *cobra.Command {
	var outFile string

	cmd := &cobra.Command{
		Use:   "qr <id>",
		Short: "Fetch a player's code as a QR PNG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			png, err := client.GetRaw("/api/v1/players/" + args[0] + "/qr")
			if err != nil {
				return err
			}

			if err := os.WriteFile(outFile, png, 0644); err != nil {
				return fmt.Errorf("failed to write image: %w", err)
			}

			out := NewOutput(cfg.Output)
			out.PrintMessage(fmt.Sprintf("Wrote %s (%d bytes)", outFile, len(png)))
			return nil
		},
	}

	cmd.Flags().StringVar(&outFile, "out", "qr.png", "Output file path")

	return cmd
}

func newPlayerResultCmd() *cobra.Command {
	var token, result string

	cmd := &cobra.Command{
		Use:   "result <id>",
		Short: "Record a match result for a player",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{
				"verification_token": token,
				"result":             result,
			}
			var player Player

			if err := client.Post("/api/v1/players/"+args[0]+"/results", req, &player); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(player)
			return nil
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "Verification token (required)")
	cmd.Flags().StringVar(&result, "result", "", "Match result: win, loss or draw (required)")
	_ = cmd.MarkFlagRequired("token")
	_ = cmd.MarkFlagRequired("result")

	return cmd
}
