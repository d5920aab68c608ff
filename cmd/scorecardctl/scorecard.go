package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/brian-incrementum/incrementum-eos-sub000/pkg/scorecard"
)

var scorecardCmd = &cobra.Command{
	Use:   "scorecard",
	Short: "Manage scorecards",
}

var scorecardCreateFlags struct {
	scorecardType string
	owner         string
}

var scorecardCreateCmd = &cobra.Command{
	Use:   "create NAME",
	Short: "Create a scorecard",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var created scorecard.ScorecardRecord
		err := newClient().do("POST", "/scorecards", map[string]string{
			"name":        args[0],
			"type":        scorecardCreateFlags.scorecardType,
			"ownerUserId": scorecardCreateFlags.owner,
		}, &created)
		if err != nil {
			return err
		}
		fmt.Printf("Created scorecard %s (%s)\n", created.Name, created.ID)
		return nil
	},
}

var scorecardListCmd = &cobra.Command{
	Use:   "list",
	Short: "List active scorecards",
	RunE: func(cmd *cobra.Command, args []string) error {
		var listing struct {
			Items []scorecard.ScorecardRecord `json:"items"`
		}
		if err := newClient().getJSON("/scorecards", &listing); err != nil {
			return err
		}

		if outputFmt != "table" {
			return printOutput(listing.Items)
		}

		rows := make([][]string, 0, len(listing.Items))
		for _, item := range listing.Items {
			rows = append(rows, []string{item.ID, item.Name, item.Type, item.OwnerUserID})
		}
		printTable([]string{"ID", "Name", "Type", "Owner"}, rows)
		return nil
	},
}

var scorecardGetCmd = &cobra.Command{
	Use:   "get SCORECARD_ID",
	Short: "Load a scorecard with its metrics and recent values",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var view scorecard.ScorecardView
		if err := newClient().getJSON("/scorecards/"+args[0], &view); err != nil {
			return err
		}

		if outputFmt != "table" {
			return printOutput(view)
		}

		fmt.Printf("%s (%s)  archived metrics: %d\n\n", view.Name, view.Type, view.ArchivedCount)
		rows := make([][]string, 0, len(view.Metrics))
		for _, m := range view.Metrics {
			current := "-"
			if m.Summary.HasValue {
				current = fmt.Sprintf("%g", *m.Entries[0].Value)
			}
			rows = append(rows, []string{
				m.ID,
				m.Name,
				string(m.Cadence),
				string(m.Summary.Status),
				current,
				string(m.Summary.Trend),
			})
		}
		printTable([]string{"ID", "Name", "Cadence", "Status", "Current", "Trend"}, rows)
		return nil
	},
}

var scorecardArchivedCmd = &cobra.Command{
	Use:   "archived SCORECARD_ID",
	Short: "List a scorecard's archived metrics",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var listing struct {
			Items []scorecard.ArchivedMetricView `json:"items"`
		}
		if err := newClient().getJSON("/scorecards/"+args[0]+"/archived-metrics", &listing); err != nil {
			return err
		}

		if outputFmt != "table" {
			return printOutput(listing.Items)
		}

		rows := make([][]string, 0, len(listing.Items))
		for _, item := range listing.Items {
			archivedAt := ""
			if item.ArchivedAt != nil {
				archivedAt = item.ArchivedAt.Format("2006-01-02")
			}
			rows = append(rows, []string{
				item.ID,
				item.Name,
				archivedAt,
				item.ArchivedBy,
				item.ArchiveReason,
				fmt.Sprintf("%d", item.EntryCount),
			})
		}
		printTable([]string{"ID", "Name", "Archived", "By", "Reason", "Entries"}, rows)
		return nil
	},
}

func init() {
	scorecardCreateCmd.Flags().StringVar(&scorecardCreateFlags.scorecardType, "type", "team", "Scorecard type: team or role")
	scorecardCreateCmd.Flags().StringVar(&scorecardCreateFlags.owner, "owner", "", "Owner user id")

	scorecardCmd.AddCommand(scorecardCreateCmd)
	scorecardCmd.AddCommand(scorecardListCmd)
	scorecardCmd.AddCommand(scorecardGetCmd)
	scorecardCmd.AddCommand(scorecardArchivedCmd)
}
