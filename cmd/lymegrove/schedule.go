package main

import (
	"fmt"
	"time"

	"github.com/franckalain/lymegrove/internal/catalog"
	"github.com/franckalain/lymegrove/internal/models"
	"github.com/franckalain/lymegrove/internal/schedule"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func (c *cli) scheduleCmd() *cobra.Command {
	var (
		req         schedule.Request
		pot, stage  string
		season      string
		catalogPath string
	)

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Print a four week watering and feeding plan",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat := catalog.Default()
			if catalogPath != "" {
				var err error
				if cat, err = catalog.LoadFile(catalogPath); err != nil {
					return err
				}
			}

			species, ok := cat.FindSpecies(req.ScientificName)
			if !ok {
				return fmt.Errorf("unknown species %q", req.ScientificName)
			}

			req.PotSize = schedule.PotSize(pot)
			req.Season = models.Season(season)
			req.GrowthStage = schedule.GrowthStage(stage)
			params := req.Params()
			if err := params.Validate(); err != nil {
				return err
			}

			start := time.Now().UTC().Truncate(24 * time.Hour)
			if req.StartDate != "" {
				t, err := time.Parse(schedule.DateLayout, req.StartDate)
				if err != nil {
					return fmt.Errorf("invalid --start date: %w", err)
				}
				start = t
			}

			c.logger.Debug("building schedule",
				zap.String("species", species.ScientificName),
				zap.String("pot", pot),
				zap.String("season", season),
				zap.String("stage", stage))

			s := schedule.Build(species, req.HealthStatus, params, start)
			return c.print(cmd.OutOrStdout(), s, s.WriteText)
		},
	}

	f := cmd.Flags()
	f.StringVar(&req.ScientificName, "species", "", "scientific name, e.g. \"Monstera deliciosa\"")
	f.StringVar(&pot, "pot", string(schedule.PotMedium), "pot size: small, medium, large or extra-large")
	f.StringVar(&season, "season", string(models.Spring), "season: spring, summer, fall or winter")
	f.StringVar(&stage, "stage", string(schedule.StageMature), "growth stage: seedling, young, mature or dormant")
	f.StringVar(&req.HealthStatus, "health", string(models.StatusHealthy), "current health status")
	f.StringVar(&req.StartDate, "start", "", "first day of the plan, YYYY-MM-DD (default today)")
	f.StringVar(&catalogPath, "catalog", "", "YAML catalog file to use instead of the built-in one")
	_ = cmd.MarkFlagRequired("species")
	return cmd
}
