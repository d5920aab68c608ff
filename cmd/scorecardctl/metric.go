package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/brian-incrementum/incrementum-eos-sub000/pkg/scorecard"
)

var metricCmd = &cobra.Command{
	Use:   "metric",
	Short: "Manage metrics",
}

var metricCreateFlags struct {
	scorecardID string
	cadence     string
	mode        string
	unit        string
	owner       string
	targetValue float64
	targetMin   float64
	targetMax   float64
	targetWant  bool
}

var metricCreateCmd = &cobra.Command{
	Use:   "create NAME",
	Short: "Create a metric on a scorecard",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		body := map[string]any{
			"scorecardId": metricCreateFlags.scorecardID,
			"name":        args[0],
			"cadence":     metricCreateFlags.cadence,
			"scoringMode": metricCreateFlags.mode,
			"unit":        metricCreateFlags.unit,
			"ownerUserId": metricCreateFlags.owner,
		}
		switch metricCreateFlags.mode {
		case "at_least", "at_most":
			body["targetValue"] = metricCreateFlags.targetValue
		case "between":
			body["targetMin"] = metricCreateFlags.targetMin
			body["targetMax"] = metricCreateFlags.targetMax
		case "yes_no":
			body["targetWant"] = metricCreateFlags.targetWant
		}

		var created scorecard.MetricRecord
		if err := newClient().do("POST", "/metrics", body, &created); err != nil {
			return err
		}
		fmt.Printf("Created metric %s (%s) at position %d\n", created.Name, created.ID, created.DisplayOrder)
		return nil
	},
}

var archiveReason string

var metricArchiveCmd = &cobra.Command{
	Use:   "archive METRIC_ID",
	Short: "Archive a metric (keeps its history)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var archived scorecard.MetricRecord
		err := newClient().do("POST", "/metrics/"+args[0]+"/archive", map[string]string{
			"reason": archiveReason,
		}, &archived)
		if err != nil {
			return err
		}
		fmt.Printf("Archived metric %s\n", archived.Name)
		return nil
	},
}

var metricRestoreCmd = &cobra.Command{
	Use:   "restore METRIC_ID",
	Short: "Restore an archived metric",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var restored scorecard.MetricRecord
		if err := newClient().do("POST", "/metrics/"+args[0]+"/restore", nil, &restored); err != nil {
			return err
		}
		fmt.Printf("Restored metric %s\n", restored.Name)
		return nil
	},
}

var hardDeleteConfirm string

var metricDeleteCmd = &cobra.Command{
	Use:   "delete METRIC_ID",
	Short: "Permanently delete an archived metric and all its entries",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if hardDeleteConfirm == "" {
			return fmt.Errorf("permanent deletion requires --confirm with the metric's exact name")
		}
		err := newClient().do("POST", "/metrics/"+args[0]+"/hard-delete", map[string]string{
			"confirm": hardDeleteConfirm,
		}, nil)
		if err != nil {
			return err
		}
		fmt.Println("Metric permanently deleted")
		return nil
	},
}

var reorderScorecardID string

var metricReorderCmd = &cobra.Command{
	Use:   "reorder METRIC_ID...",
	Short: "Reorder metrics; each id takes the position of its place in the argument list",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		err := newClient().do("POST", "/scorecards/"+reorderScorecardID+"/metrics/reorder", map[string]any{
			"orderedIds": args,
		}, nil)
		if err != nil {
			return err
		}
		fmt.Println("Reordered")
		return nil
	},
}

var bulkArchiveReason string

var metricBulkArchiveCmd = &cobra.Command{
	Use:   "bulk-archive METRIC_ID...",
	Short: "Archive several metrics, reporting a per-metric outcome",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var outcome struct {
			Results []scorecard.BulkResult `json:"results"`
		}
		err := newClient().do("POST", "/metrics/bulk-archive", map[string]any{
			"metricIds": args,
			"reason":    bulkArchiveReason,
		}, &outcome)
		if err != nil {
			return err
		}

		if outputFmt != "table" {
			return printOutput(outcome.Results)
		}
		rows := make([][]string, 0, len(outcome.Results))
		for _, r := range outcome.Results {
			status := "archived"
			if !r.OK {
				status = "failed: " + r.Error
			}
			rows = append(rows, []string{r.MetricID, status})
		}
		printTable([]string{"Metric", "Outcome"}, rows)
		return nil
	},
}

func init() {
	metricCreateCmd.Flags().StringVar(&metricCreateFlags.scorecardID, "scorecard", "", "Scorecard id (required)")
	metricCreateCmd.Flags().StringVar(&metricCreateFlags.cadence, "cadence", "weekly", "Cadence: weekly, monthly, or quarterly")
	metricCreateCmd.Flags().StringVar(&metricCreateFlags.mode, "mode", "at_least", "Scoring mode: at_least, at_most, between, or yes_no")
	metricCreateCmd.Flags().StringVar(&metricCreateFlags.unit, "unit", "", "Display unit")
	metricCreateCmd.Flags().StringVar(&metricCreateFlags.owner, "owner", "", "Owner user id")
	metricCreateCmd.Flags().Float64Var(&metricCreateFlags.targetValue, "target", 0, "Target value (at_least/at_most)")
	metricCreateCmd.Flags().Float64Var(&metricCreateFlags.targetMin, "min", 0, "Lower bound (between)")
	metricCreateCmd.Flags().Float64Var(&metricCreateFlags.targetMax, "max", 0, "Upper bound (between)")
	metricCreateCmd.Flags().BoolVar(&metricCreateFlags.targetWant, "want", true, "Expected answer (yes_no)")
	_ = metricCreateCmd.MarkFlagRequired("scorecard")

	metricArchiveCmd.Flags().StringVar(&archiveReason, "reason", "", "Why the metric is being archived")
	metricDeleteCmd.Flags().StringVar(&hardDeleteConfirm, "confirm", "", "Retype the metric name to confirm permanent deletion")
	metricReorderCmd.Flags().StringVar(&reorderScorecardID, "scorecard", "", "Scorecard id (required)")
	_ = metricReorderCmd.MarkFlagRequired("scorecard")
	metricBulkArchiveCmd.Flags().StringVar(&bulkArchiveReason, "reason", "", "Why the metrics are being archived")

	metricCmd.AddCommand(metricCreateCmd)
	metricCmd.AddCommand(metricArchiveCmd)
	metricCmd.AddCommand(metricRestoreCmd)
	metricCmd.AddCommand(metricDeleteCmd)
	metricCmd.AddCommand(metricReorderCmd)
	metricCmd.AddCommand(metricBulkArchiveCmd)
}
