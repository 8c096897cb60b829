package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"eduquest-service/internal/config"
	"eduquest-service/internal/pkg/logger"
	"github.com/spf13/cobra"
)

// NewReportCmd writes the progress report of the stored profile to disk.
func NewReportCmd(configPath *string) *cobra.Command {
	var outDir string
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Generate the PDF progress report for the stored profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := writeReport(cmd.Context(), *configPath, outDir)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
	cmd.Flags().StringVar(&outDir, "out", ".", "directory to write the report into")
	return cmd
}

func writeReport(ctx context.Context, configPath, outDir string) (string, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return "", err
	}
	log, err := logger.New(logger.Options{Mode: cfg.Log.Mode, Level: cfg.Log.Level, Service: "eduquest-report"})
	if err != nil {
		return "", err
	}
	defer log.Sync()

	rt, err := buildRuntime(ctx, cfg, log, nil)
	if err != nil {
		return "", err
	}
	defer rt.Close()

	doc, err := rt.service.Report(ctx)
	if err != nil {
		return "", fmt.Errorf("generate report: %w", err)
	}
	path := filepath.Join(outDir, doc.Filename)
	if err := os.WriteFile(path, doc.Bytes, 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	log.Info("report written", "path", path, "pages", doc.Pages)
	return path, nil
}
