package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/breathfree/quit_go_server/internal/model/dto"
)

var (
	loginEmail    string
	loginPassword string
	loginRole     string

	smokingCigarettes float64
	smokingPrice      float64

	logCigarettes int
	logMood       string
	logNote       string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and store the token",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		session, err := c.Login(cmd.Context(), loginEmail, loginPassword, loginRole)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(stateDir, 0o700); err != nil {
			return err
		}
		if err := os.WriteFile(tokenPath(), []byte(session.Token), 0o600); err != nil {
			return fmt.Errorf("save token: %w", err)
		}
		fmt.Printf("Logged in as %s (%s)\n", session.User.Username, session.User.Role)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored token",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := os.Remove(tokenPath()); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
		fmt.Println("Logged out")
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the subscription snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		status, err := c.SubscriptionStatus(cmd.Context())
		if err != nil {
			return err
		}
		return printJSON(status)
	},
}

var smokingCmd = &cobra.Command{
	Use:   "smoking",
	Short: "Show or declare the smoking baseline",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		if smokingCigarettes <= 0 && smokingPrice <= 0 {
			info, err := c.SmokingStatus(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(info)
		}
		info, err := c.SaveSmokingStatus(cmd.Context(), dto.SmokingStatusRequest{
			CigarettesPerDay:  smokingCigarettes,
			PricePerCigarette: smokingPrice,
		})
		if err != nil {
			return err
		}
		return printJSON(info)
	},
}

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Record today's progress",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		n := logCigarettes
		info, err := c.LogProgress(cmd.Context(), dto.ProgressLogRequest{CigarettesPerDay: &n, Mood: logMood, HealthNote: logNote})
		if err != nil {
			return err
		}
		return printJSON(info)
	},
}

func init() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "Account email")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "Account password")
	loginCmd.Flags().StringVar(&loginRole, "role", "member", "Role to log in as (member, coach, admin)")
	_ = loginCmd.MarkFlagRequired("email")
	_ = loginCmd.MarkFlagRequired("password")

	smokingCmd.Flags().Float64Var(&smokingCigarettes, "cigarettes", 0, "Cigarettes per day")
	smokingCmd.Flags().Float64Var(&smokingPrice, "price", 0, "Price per cigarette (VND)")

	logCmd.Flags().IntVar(&logCigarettes, "cigarettes", 0, "Cigarettes smoked today")
	logCmd.Flags().StringVar(&logMood, "mood", "", "excellent, good, normal, stressed or difficult")
	logCmd.Flags().StringVar(&logNote, "note", "", "Health note")
}
