package main

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/brian-incrementum/incrementum-eos-sub000/pkg/scorecard"
)

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Record and manage metric values",
}

var recordValueFlags struct {
	period string
	note   string
}

var recordValueCmd = &cobra.Command{
	Use:   "value METRIC_ID VALUE",
	Short: "Record a value for a metric period (defaults to the current period)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		body := map[string]any{"value": args[1]}
		if recordValueFlags.period != "" {
			body["periodStart"] = recordValueFlags.period
		}
		if cmd.Flags().Changed("note") {
			body["note"] = recordValueFlags.note
		}

		var entry scorecard.EntryRecord
		if err := newClient().do(http.MethodPut, "/metrics/"+args[0]+"/entries", body, &entry); err != nil {
			return err
		}
		fmt.Printf("Recorded %g for period %s\n", entry.Value, entry.PeriodStart)
		return nil
	},
}

var recordNoteCmd = &cobra.Command{
	Use:   "note METRIC_ID PERIOD_START NOTE",
	Short: "Set the note on an existing entry",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		var entry scorecard.EntryRecord
		err := newClient().do(http.MethodPut,
			fmt.Sprintf("/metrics/%s/entries/%s/note", args[0], args[1]),
			map[string]string{"note": args[2]}, &entry)
		if err != nil {
			return err
		}
		fmt.Printf("Updated note for period %s\n", entry.PeriodStart)
		return nil
	},
}

var recordDeleteCmd = &cobra.Command{
	Use:   "delete METRIC_ID PERIOD_START",
	Short: "Remove the value for a metric period",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		err := newClient().do(http.MethodDelete,
			fmt.Sprintf("/metrics/%s/entries/%s", args[0], args[1]), nil, nil)
		if err != nil {
			return err
		}
		fmt.Println("Entry deleted")
		return nil
	},
}

func init() {
	recordValueCmd.Flags().StringVar(&recordValueFlags.period, "period", "", "Period start date (YYYY-MM-DD); defaults to the current period")
	recordValueCmd.Flags().StringVar(&recordValueFlags.note, "note", "", "Note to attach to the entry")

	recordCmd.AddCommand(recordValueCmd)
	recordCmd.AddCommand(recordNoteCmd)
	recordCmd.AddCommand(recordDeleteCmd)
}
