package main

import (
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"tpsrun/internal/buildinfo"
	"tpsrun/internal/logging"
	"tpsrun/internal/screening"
	"tpsrun/internal/shutdown"
)

func main() {
	ctx, done := shutdown.New()
	defer done()
	logger := logging.FromContext(ctx)

	app := &cli.App{
		Name:    "tpsgather",
		Usage:   "gather screening detections into a CSV file",
		Version: buildinfo.Info.Tag(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "screening-results-root",
				Usage: "root folder with per-protein detection JSON files",
				Value: "trembl_screening/detections_plm",
			},
			&cli.StringFlag{
				Name:  "output-path",
				Usage: "file to save the CSV with detections to (default: timestamped inside the root)",
			},
			&cli.BoolFlag{
				Name:  "delete-individual-files",
				Usage: "delete consumed detection files after the CSV is written",
			},
		},
		Action: func(c *cli.Context) error {
			root := c.String("screening-results-root")
			if _, err := os.Stat(root); err != nil {
				return fmt.Errorf("screening results root %s: %w", root, err)
			}
			outPath := c.String("output-path")
			if outPath == "" {
				outPath = screening.DefaultOutputPath(root, time.Now())
			}
			_, err := screening.Gather(c.Context, root, outPath, c.Bool("delete-individual-files"))
			return err
		},
	}
	if err := app.RunContext(ctx, os.Args); err != nil {
		logger.Fatal(err)
	}
}
