package main

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rescp17/mailingDashboard/pkg/encoder"
	"github.com/rescp17/mailingDashboard/pkg/fileInfo"
	"github.com/rescp17/mailingDashboard/pkg/mailing"
	"github.com/rescp17/mailingDashboard/pkg/notify"
	"github.com/rescp17/mailingDashboard/pkg/upload"
)

func (c *cli) uploadCommand() *cobra.Command {
	var regionFlag string
	cmd := &cobra.Command{
		Use:   "upload --region MG <file.csv>",
		Short: "Upload one mailing file without the dashboard",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			region, err := mailing.ParseRegion(regionFlag)
			if err != nil {
				return err
			}
			client, err := c.client()
			if err != nil {
				return err
			}

			if err := upload.ValidateName(filepath.Base(args[0]), c.cfg.AcceptedExtension); err != nil {
				return err
			}
			node, err := fileInfo.CreateNode(args[0])
			if err != nil {
				return mailing.ReadError("open", err)
			}

			ctrl := upload.New(region, encoder.Encoder{Logger: slog.Default()}, client,
				upload.WithNotifier(notify.LogNotifier{Logger: slog.Default()}),
				upload.WithLogger(slog.Default()),
				upload.WithAcceptedExtension(c.cfg.AcceptedExtension),
			)
			if err := ctrl.SelectFile(node); err != nil {
				return err
			}

			slog.Info("Uploading mailing", "region", region, "file", node.Path, "sha256", node.Checksum)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Uploading %s (%s) to %s...\n", node.FileName, node.MimeType, region.DisplayName())
			if err := ctrl.Submit(cmd.Context()); err != nil {
				return fmt.Errorf("upload %s failed: %w", region, err)
			}

			success, ok := ctrl.Snapshot().Outcome.(mailing.Success)
			if !ok {
				return fmt.Errorf("upload %s finished without a result", region)
			}
			fmt.Fprintf(out, "Mailing %s uploaded successfully\n", region)
			if success.Reference != "" {
				fmt.Fprintf(out, "Reference: %s\n", success.Reference)
			}
			if success.Message != "" {
				fmt.Fprintln(out, success.Message)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&regionFlag, "region", "r", "", "target region (MG or SP)")
	_ = cmd.MarkFlagRequired("region")
	return cmd
}
