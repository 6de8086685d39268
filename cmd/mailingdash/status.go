package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/rescp17/mailingDashboard/api"
	"github.com/rescp17/mailingDashboard/internal/util"
	"github.com/rescp17/mailingDashboard/pkg/mailing"
)

func (c *cli) statusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print the dialer status of every region and the account costs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := c.client()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			var failed int
			printStatusHeader(out)
			for _, region := range mailing.Regions() {
				snap, err := client.Status(cmd.Context(), region)
				if err != nil {
					failed++
					slog.Error("Status fetch failed", "region", region, "error", err)
					fmt.Fprintf(out, "%s unavailable: %v\n", util.PadRight(string(region), 8), err)
					continue
				}
				printStatusRow(out, snap)
			}

			costs, err := client.Costs(cmd.Context())
			if err != nil {
				slog.Error("Costs fetch failed", "error", err)
				return fmt.Errorf("costs unavailable: %w", err)
			}
			fmt.Fprintf(out, "\nBalance %s | Today %s | Week %s | Updated %s\n",
				costs.Balance.Or("-"), costs.DailyCost.Or("-"), costs.WeeklyCost.Or("-"), costs.CollectedAt.Or("-"))

			if failed > 0 {
				return fmt.Errorf("%d region(s) unavailable", failed)
			}
			return nil
		},
	}
}

func printStatusHeader(w io.Writer) {
	fmt.Fprintln(w, util.PadRight("Region", 8)+util.PadRight("Mailing", 30)+util.PadRight("Progress", 10)+"Channels")
}

func printStatusRow(w io.Writer, s api.StatusSnapshot) {
	fmt.Fprintln(w, util.PadRight(string(s.Region), 8)+
		util.PadRight(s.MailingLabel(), 30)+
		util.PadRight(s.ProgressLabel(), 10)+
		s.ChannelsLabel())
}
