package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/franckalain/lymegrove/internal/feedback"
	"github.com/franckalain/lymegrove/internal/intake"
	"github.com/franckalain/lymegrove/internal/models"
	"github.com/franckalain/lymegrove/internal/schedule"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func (c *cli) analyzeCmd() *cobra.Command {
	var (
		save     bool
		nickname string
	)

	cmd := &cobra.Command{
		Use:   "analyze <image>",
		Short: "Upload a plant photo for a health diagnosis",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			f, err := os.Open(path)
			if err != nil {
				return err
			}
			defer f.Close()

			c.logger.Debug("uploading image", zap.String("path", path), zap.String("server", c.serverURL))
			env, err := c.client().Analyze(cmd.Context(), filepath.Base(path), f)
			if err != nil {
				return fmt.Errorf("analyze: %w", err)
			}

			if save {
				repo, err := c.plants()
				if err != nil {
					return err
				}
				if nickname == "" {
					nickname = env.Result.Species.PrimaryName()
				}
				p, err := repo.Add(models.SavedPlant{
					Nickname:     nickname,
					Species:      env.Result.Species,
					HealthStatus: string(env.Result.Status),
					Image:        path,
				})
				if err != nil {
					return fmt.Errorf("saving plant: %w", err)
				}
				c.logger.Debug("plant saved", zap.String("id", p.ID))
			}

			return c.print(cmd.OutOrStdout(), env, func(w io.Writer) error {
				return writeResult(w, env)
			})
		},
	}

	cmd.Flags().BoolVar(&save, "save", false, "add the identified plant to your collection")
	cmd.Flags().StringVar(&nickname, "nickname", "", "nickname for the saved plant")
	return cmd
}

func writeResult(w io.Writer, env *models.ScanEnvelope) error {
	r := env.Result
	if r == nil {
		return fmt.Errorf("scan %s has no result", env.ScanID)
	}
	fmt.Fprintf(w, "Scan %s (%s)\n", env.ScanID, env.Filename)
	fmt.Fprintf(w, "Species:    %s (%s)\n", r.Species.PrimaryName(), r.Species.ScientificName)
	fmt.Fprintf(w, "Status:     %s\n", r.Status)
	fmt.Fprintf(w, "Diagnosis:  %s, %s severity, %.0f%% confidence\n", r.Disease, r.Severity, r.Confidence*100)
	fmt.Fprintf(w, "%s\n", r.Description)
	writeList(w, "Symptoms", r.Symptoms)
	writeList(w, "Treatment", r.Treatment)
	writeList(w, "Prevention", r.Prevention)
	writeList(w, "Care", r.CareRecommendations)
	_, err := fmt.Fprintf(w, "Next checkup: %s\n", r.NextCheckup.Format(schedule.DateLayout))
	return err
}

func writeList(w io.Writer, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(w, "%s:\n", title)
	for _, it := range items {
		fmt.Fprintf(w, "  - %s\n", it)
	}
}

func (c *cli) feedbackCmd() *cobra.Command {
	var sub feedback.Submission

	cmd := &cobra.Command{
		Use:   "feedback <scan-id>",
		Short: "Tell us whether a diagnosis was right",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sub.ScanID = args[0]
			if !cmd.Flags().Changed("accurate") {
				sub.IsAccurate = sub.FeedbackType == string(models.FeedbackAccurate)
			}
			rec, err := c.client().Feedback(cmd.Context(), sub)
			if err != nil {
				return fmt.Errorf("feedback: %w", err)
			}
			return c.print(cmd.OutOrStdout(), rec, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "Thanks! Feedback %s recorded.\n", rec.ID)
				return err
			})
		},
	}

	cmd.Flags().BoolVar(&sub.IsAccurate, "accurate", false, "the diagnosis was accurate (default: derived from --type)")
	cmd.Flags().StringVar(&sub.FeedbackType, "type", string(models.FeedbackAccurate), "accurate, inaccurate or partially_correct")
	cmd.Flags().StringVar(&sub.UserComments, "comments", "", "free-text comments")
	cmd.Flags().StringVar(&sub.CorrectDiagnosis, "correct", "", "what the problem actually was")
	return cmd
}

func (c *cli) contactCmd() *cobra.Command {
	var req intake.ContactRequest

	cmd := &cobra.Command{
		Use:   "contact",
		Short: "Send a message to support",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ack, err := c.client().Contact(cmd.Context(), req)
			if err != nil {
				return fmt.Errorf("contact: %w", err)
			}
			return c.print(cmd.OutOrStdout(), ack, func(w io.Writer) error {
				_, err := fmt.Fprintln(w, ack.Message)
				return err
			})
		},
	}

	cmd.Flags().StringVar(&req.Name, "name", "", "your name")
	cmd.Flags().StringVar(&req.Email, "email", "", "your email address")
	cmd.Flags().StringVar(&req.Subject, "subject", "", "subject")
	cmd.Flags().StringVar(&req.Message, "message", "", "message")
	return cmd
}

func (c *cli) gdprCmd() *cobra.Command {
	var req intake.GDPRRequest

	cmd := &cobra.Command{
		Use:       "gdpr <export|delete>",
		Short:     "Request an export or deletion of your data",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{intake.GDPRExport, intake.GDPRDelete},
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Type = args[0]
			ack, err := c.client().GDPR(cmd.Context(), req)
			if err != nil {
				return fmt.Errorf("gdpr: %w", err)
			}
			return c.print(cmd.OutOrStdout(), ack, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "%s\nRequest id: %s\n", ack.Message, ack.RequestID)
				return err
			})
		},
	}

	cmd.Flags().StringVar(&req.Email, "email", "", "account email address")
	cmd.Flags().StringVar(&req.Reason, "reason", "", "reason (required for deletion)")
	return cmd
}

func (c *cli) scansCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scans",
		Short: "Browse your saved scan history (requires --token)",
	}

	var limit int
	list := &cobra.Command{
		Use:   "list",
		Short: "List recent scans",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			page, err := c.client().ListScans(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("list scans: %w", err)
			}
			return c.print(cmd.OutOrStdout(), page, func(w io.Writer) error {
				if len(page.Scans) == 0 {
					_, err := fmt.Fprintln(w, "No scans yet.")
					return err
				}
				for _, s := range page.Scans {
					label := "healthy"
					if s.DiseaseDetected != "" {
						label = s.DiseaseDetected
					}
					fmt.Fprintf(w, "%s  %s  %-24s %3d%%  %s\n",
						s.ID, s.CreatedAt.Local().Format("2006-01-02 15:04"), label, s.ConfidenceScore, s.Filename)
				}
				_, err := fmt.Fprintf(w, "%d of %d scans\n", len(page.Scans), page.Total)
				return err
			})
		},
	}
	list.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of scans to show")

	get := &cobra.Command{
		Use:   "get <id>",
		Short: "Show one scan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.client().GetScan(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("get scan: %w", err)
			}
			return c.print(cmd.OutOrStdout(), s, func(w io.Writer) error {
				return writeResult(w, &models.ScanEnvelope{ID: s.ID, ScanID: s.ID, Filename: s.Filename, Timestamp: s.CreatedAt, Result: s.Result})
			})
		},
	}

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a scan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.client().DeleteScan(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("delete scan: %w", err)
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "Deleted scan %s\n", strings.TrimSpace(args[0]))
			return err
		},
	}

	cmd.AddCommand(list, get, del)
	return cmd
}
