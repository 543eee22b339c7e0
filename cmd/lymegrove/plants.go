package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/franckalain/lymegrove/internal/catalog"
	"github.com/franckalain/lymegrove/internal/local"
	"github.com/franckalain/lymegrove/internal/models"
	"github.com/spf13/cobra"
)

func (c *cli) plantsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plants",
		Short: "Manage the plant collection stored on this machine",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List saved plants",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := c.plants()
			if err != nil {
				return err
			}
			plants, err := repo.LoadAll()
			if err != nil {
				return err
			}
			return c.print(cmd.OutOrStdout(), plants, func(w io.Writer) error {
				return writePlants(w, plants)
			})
		},
	}

	var (
		species string
		plant   models.SavedPlant
	)
	add := &cobra.Command{
		Use:   "add",
		Short: "Add a plant by species",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, ok := catalog.Default().FindSpecies(species)
			if !ok {
				return fmt.Errorf("unknown species %q", species)
			}
			repo, err := c.plants()
			if err != nil {
				return err
			}

			p := plant
			p.Species = rec
			if p.Nickname == "" {
				p.Nickname = rec.PrimaryName()
			}
			p, err = repo.Add(p)
			if err != nil {
				return err
			}
			return c.print(cmd.OutOrStdout(), p, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "Added %s (%s)\n", p.Nickname, p.ID)
				return err
			})
		},
	}
	add.Flags().StringVar(&species, "species", "", "scientific name, e.g. \"Ficus lyrata\"")
	add.Flags().StringVar(&plant.Nickname, "nickname", "", "nickname (defaults to the common name)")
	add.Flags().StringVar(&plant.Notes, "notes", "", "free-text notes")
	add.Flags().StringVar(&plant.HealthStatus, "health", string(models.StatusHealthy), "current health status")
	_ = add.MarkFlagRequired("species")

	var nickname, notes string
	edit := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change a plant's nickname or notes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := c.plants()
			if err != nil {
				return err
			}
			p, err := repo.Get(args[0])
			if err != nil {
				return plantErr(args[0], err)
			}
			if cmd.Flags().Changed("nickname") {
				p.Nickname = nickname
			}
			if cmd.Flags().Changed("notes") {
				p.Notes = notes
			}
			if err := repo.Update(p); err != nil {
				return plantErr(args[0], err)
			}
			return c.print(cmd.OutOrStdout(), p, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "Updated %s\n", p.ID)
				return err
			})
		},
	}
	edit.Flags().StringVar(&nickname, "nickname", "", "new nickname")
	edit.Flags().StringVar(&notes, "notes", "", "new notes")

	remove := &cobra.Command{
		Use:     "remove <id>",
		Aliases: []string{"rm"},
		Short:   "Remove a plant",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := c.plants()
			if err != nil {
				return err
			}
			if err := repo.Delete(args[0]); err != nil {
				return plantErr(args[0], err)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", args[0])
			return err
		},
	}

	search := &cobra.Command{
		Use:   "search <term>",
		Short: "Find plants by nickname or species name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := c.plants()
			if err != nil {
				return err
			}
			plants, err := repo.Search(args[0])
			if err != nil {
				return err
			}
			if plants == nil {
				plants = []models.SavedPlant{}
			}
			return c.print(cmd.OutOrStdout(), plants, func(w io.Writer) error {
				return writePlants(w, plants)
			})
		},
	}

	cmd.AddCommand(list, add, edit, remove, search)
	return cmd
}

func writePlants(w io.Writer, plants []models.SavedPlant) error {
	if len(plants) == 0 {
		_, err := fmt.Fprintln(w, "No plants saved.")
		return err
	}
	for _, p := range plants {
		line := fmt.Sprintf("%s  %-20s %-26s %s", p.ID, p.Nickname, p.Species.ScientificName, p.HealthStatus)
		if _, err := fmt.Fprintln(w, strings.TrimRight(line, " ")); err != nil {
			return err
		}
	}
	return nil
}

func plantErr(id string, err error) error {
	if errors.Is(err, local.ErrPlantNotFound) {
		return fmt.Errorf("no plant with id %q", id)
	}
	return err
}
