package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/breathfree/quit_go_server/internal/domain/quitplan"
	"github.com/breathfree/quit_go_server/internal/model/dto"
	"github.com/breathfree/quit_go_server/pkg/client"
)

var (
	planReason   string
	planStages   []string
	planTemplate bool
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Manage the quit plan",
}

var planShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current plan",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := newPlanStore()
		if err != nil {
			return err
		}
		r := store.FetchCurrent(cmd.Context())
		if !r.OK() {
			return r.Err
		}
		if r.Value == nil {
			fmt.Println("No active plan")
			return nil
		}
		return printJSON(r.Value)
	},
}

var planSuggestCmd = &cobra.Command{
	Use:   "suggest",
	Short: "Show the suggested plan",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := newPlanStore()
		if err != nil {
			return err
		}
		r := store.FetchSuggestion(cmd.Context())
		if !r.OK() {
			return r.Err
		}
		return printJSON(r.Value)
	},
}

var planCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a plan from --stage title:days flags or the suggestion",
	Example: `  quitctl plan create --reason "Vì con" --stage "Giảm dần:7" --stage "Ngừng hẳn:14"
  quitctl plan create --reason "Vì con" --template`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		store := client.NewPlanStore(c)
		daysRemaining, err := subscriptionDays(cmd.Context(), c)
		if err != nil {
			return err
		}

		var r client.Result[*dto.PlanInfo]
		if planTemplate {
			if s := store.FetchSuggestion(cmd.Context()); !s.OK() {
				return s.Err
			}
			r = store.CreateFromTemplate(cmd.Context(), planReason, daysRemaining)
		} else {
			stages, err := parseStages(planStages)
			if err != nil {
				return err
			}
			r = store.Create(cmd.Context(), planReason, stages, daysRemaining)
		}
		if !r.OK() {
			return r.Err
		}
		return printJSON(r.Value)
	},
}

var planCancelCmd = &cobra.Command{
	Use:   "cancel",
	Short: "Cancel the current plan",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := newPlanStore()
		if err != nil {
			return err
		}
		if r := store.FetchCurrent(cmd.Context()); !r.OK() {
			return r.Err
		}
		if r := store.Cancel(cmd.Context()); !r.OK() {
			return r.Err
		}
		fmt.Println("Plan cancelled")
		return nil
	},
}

func init() {
	planCreateCmd.Flags().StringVar(&planReason, "reason", "", "Why you want to quit")
	planCreateCmd.Flags().StringArrayVar(&planStages, "stage", nil, "Stage as title:days, repeatable")
	planCreateCmd.Flags().BoolVar(&planTemplate, "template", false, "Use the suggested stages")

	planCmd.AddCommand(planShowCmd, planSuggestCmd, planCreateCmd, planCancelCmd)
}

func newPlanStore() (*client.PlanStore, error) {
	c, err := newClient()
	if err != nil {
		return nil, err
	}
	return client.NewPlanStore(c), nil
}

// subscriptionDays 每次创建前重新读取订阅剩余天数
func subscriptionDays(ctx context.Context, c *client.Client) (int, error) {
	status, err := c.SubscriptionStatus(ctx)
	if err != nil {
		return 0, err
	}
	if !status.HasActiveSubscription {
		return 0, fmt.Errorf("no active subscription")
	}
	return status.DaysRemaining, nil
}

// parseStages 解析 "title:days"
func parseStages(raw []string) ([]quitplan.StageFields, error) {
	stages := make([]quitplan.StageFields, 0, len(raw))
	for _, s := range raw {
		i := strings.LastIndex(s, ":")
		if i <= 0 {
			return nil, fmt.Errorf("invalid stage %q, want title:days", s)
		}
		days, err := strconv.Atoi(strings.TrimSpace(s[i+1:]))
		if err != nil {
			return nil, fmt.Errorf("invalid days in stage %q", s)
		}
		stages = append(stages, quitplan.StageFields{Title: strings.TrimSpace(s[:i]), DaysToComplete: days})
	}
	return stages, nil
}
