package cli

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ignitoosolutions/ignito1/internal/catalog"
	"github.com/ignitoosolutions/ignito1/internal/domain"
	"github.com/ignitoosolutions/ignito1/internal/repositories"
	"github.com/ignitoosolutions/ignito1/internal/repositories/sqlite"
)

// NewServicesCommand creates the services command group managing the catalog
// the site serves.
func NewServicesCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "services",
		Short: "Manage the service catalog",
	}
	cmd.AddCommand(newServicesListCommand(rootOpts))
	cmd.AddCommand(newServicesAddCommand(rootOpts))
	cmd.AddCommand(newServicesEditCommand(rootOpts))
	cmd.AddCommand(newServicesDeleteCommand(rootOpts))
	return cmd
}

func newServicesListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List catalog services in display order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openCatalog(cmd, rootOpts)
			if err != nil {
				return err
			}
			defer store.Close()

			list, err := store.Services().List(cmd.Context())
			if err != nil {
				return err
			}
			return writeServices(cmd.OutOrStdout(), rootOpts.Format, list)
		},
	}
}

func newServicesAddCommand(rootOpts *RootOptions) *cobra.Command {
	var svc domain.Service

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a service to the end of the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			normalized, err := catalog.Normalize(svc)
			if err != nil {
				return err
			}
			store, err := openCatalog(cmd, rootOpts)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Services().Insert(cmd.Context(), normalized); err != nil {
				if errors.Is(err, repositories.ErrConflict) {
					return fmt.Errorf("service %q already exists", normalized.Slug)
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added %s\n", normalized.Slug)
			return nil
		},
	}

	cmd.Flags().StringVar(&svc.Slug, "slug", "", "unique id used in cart posts")
	bindServiceFlags(cmd.Flags(), &svc)
	_ = cmd.MarkFlagRequired("slug")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newServicesEditCommand(rootOpts *RootOptions) *cobra.Command {
	var changes domain.Service

	cmd := &cobra.Command{
		Use:   "edit <slug>",
		Short: "Change fields of an existing service",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openCatalog(cmd, rootOpts)
			if err != nil {
				return err
			}
			defer store.Close()

			repo := store.Services()
			svc, err := repo.Get(cmd.Context(), args[0])
			if err != nil {
				return serviceError(args[0], err)
			}
			flags := cmd.Flags()
			if flags.Changed("name") {
				svc.Name = changes.Name
			}
			if flags.Changed("description") {
				svc.Description = changes.Description
			}
			if flags.Changed("price-display") {
				svc.PriceDisplay = changes.PriceDisplay
			}
			if flags.Changed("price") {
				svc.Price = changes.Price
			}
			if flags.Changed("image") {
				svc.Image = changes.Image
			}
			if svc, err = catalog.Normalize(svc); err != nil {
				return err
			}
			if err := repo.Update(cmd.Context(), svc); err != nil {
				return serviceError(svc.Slug, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "updated %s\n", svc.Slug)
			return nil
		},
	}

	bindServiceFlags(cmd.Flags(), &changes)
	return cmd
}

func newServicesDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <slug>",
		Short: "Remove a service from the catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openCatalog(cmd, rootOpts)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Services().Delete(cmd.Context(), args[0]); err != nil {
				return serviceError(args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return nil
		},
	}
}

func bindServiceFlags(flags *pflag.FlagSet, svc *domain.Service) {
	flags.StringVar(&svc.Name, "name", "", "display name")
	flags.StringVar(&svc.Description, "description", "", "card description")
	flags.StringVar(&svc.PriceDisplay, "price-display", "", "price label shown on the card")
	flags.Float64Var(&svc.Price, "price", 0, "unit price added to the cart")
	flags.StringVar(&svc.Image, "image", "", "image file under /static/images (default "+catalog.DefaultImage+")")
}

// openCatalog opens the records database and seeds the catalog the way the
// server does on first start, so edits apply to the same rows it serves.
func openCatalog(cmd *cobra.Command, rootOpts *RootOptions) (*sqlite.Store, error) {
	cfg, err := rootOpts.loadConfig()
	if err != nil {
		return nil, err
	}
	seed, err := catalog.Load(cfg.Site.CatalogFile)
	if err != nil {
		return nil, err
	}
	store, err := sqlite.Open(cfg.Orders.DatabasePath)
	if err != nil {
		return nil, err
	}
	if _, err := store.Services().Seed(cmd.Context(), seed.All()); err != nil {
		store.Close()
		return nil, err
	}
	return store, nil
}

func serviceError(slug string, err error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return fmt.Errorf("service %q not found", slug)
	}
	return err
}

type serviceRow struct {
	Slug         string  `json:"slug"`
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	PriceDisplay string  `json:"price_display"`
	Price        float64 `json:"price"`
	Image        string  `json:"image"`
}

func writeServices(w io.Writer, format string, list []domain.Service) error {
	if format == "json" {
		rows := make([]serviceRow, 0, len(list))
		for _, s := range list {
			rows = append(rows, serviceRow{Slug: s.Slug, Name: s.Name, Description: s.Description, PriceDisplay: s.PriceDisplay, Price: s.Price, Image: s.Image})
		}
		return writeJSON(w, rows)
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SLUG\tNAME\tPRICE\tLABEL\tIMAGE")
	for _, s := range list {
		fmt.Fprintf(tw, "%s\t%s\t%.2f\t%s\t%s\n", s.Slug, truncate(s.Name, 40), s.Price, s.PriceDisplay, s.Image)
	}
	return tw.Flush()
}
