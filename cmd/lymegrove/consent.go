package main

import (
	"fmt"
	"io"

	"github.com/franckalain/lymegrove/internal/models"
	"github.com/spf13/cobra"
)

type consentView struct {
	Decided     bool                      `json:"decided"`
	DecidedAt   string                    `json:"decidedAt,omitempty"`
	Preferences models.ConsentPreferences `json:"preferences"`
}

func (c *cli) consentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "consent",
		Short: "Show or change cookie and tracking consent",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Show the current choice",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := c.consent()
			if err != nil {
				return err
			}
			prefs, at, found, err := repo.Load()
			if err != nil {
				return err
			}

			view := consentView{Decided: found, Preferences: prefs}
			if !at.IsZero() {
				view.DecidedAt = at.Format("2006-01-02 15:04:05")
			}
			return c.print(cmd.OutOrStdout(), view, func(w io.Writer) error {
				if !found {
					_, err := fmt.Fprintln(w, "Not yet decided (necessary cookies only).")
					return err
				}
				_, err := fmt.Fprintf(w, "necessary: %t\nanalytics: %t\nmarketing: %t\ndecided:   %s\n",
					prefs.Necessary, prefs.Analytics, prefs.Marketing, view.DecidedAt)
				return err
			})
		},
	}

	acceptAll := &cobra.Command{
		Use:   "accept-all",
		Short: "Allow analytics and marketing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := c.consent()
			if err != nil {
				return err
			}
			if err := repo.AcceptAll(); err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), "All cookies accepted.")
			return err
		},
	}

	rejectAll := &cobra.Command{
		Use:   "reject-all",
		Short: "Keep necessary cookies only",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := c.consent()
			if err != nil {
				return err
			}
			if err := repo.RejectAll(); err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), "Optional cookies rejected.")
			return err
		},
	}

	var prefs models.ConsentPreferences
	set := &cobra.Command{
		Use:   "set",
		Short: "Choose categories individually",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := c.consent()
			if err != nil {
				return err
			}
			if err := repo.Save(prefs); err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), "Preferences saved.")
			return err
		},
	}
	set.Flags().BoolVar(&prefs.Analytics, "analytics", false, "allow analytics cookies")
	set.Flags().BoolVar(&prefs.Marketing, "marketing", false, "allow marketing cookies")

	cmd.AddCommand(show, acceptAll, rejectAll, set)
	return cmd
}
