package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/ignitoosolutions/ignito1/internal/domain"
	"github.com/ignitoosolutions/ignito1/internal/repositories/sqlite"
)

const defaultListLimit = 50

// NewOrdersCommand creates the orders command listing stored orders.
func NewOrdersCommand(rootOpts *RootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "orders",
		Short: "List the most recent orders",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openRecords(rootOpts)
			if err != nil {
				return err
			}
			defer store.Close()

			orders, err := store.Orders().List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			return writeOrders(cmd.OutOrStdout(), rootOpts.Format, orders)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", defaultListLimit, "maximum number of orders")
	return cmd
}

// NewContactsCommand creates the contacts command listing stored contact requests.
func NewContactsCommand(rootOpts *RootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "contacts",
		Short: "List the most recent contact requests",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openRecords(rootOpts)
			if err != nil {
				return err
			}
			defer store.Close()

			contacts, err := store.Contacts().List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			return writeContacts(cmd.OutOrStdout(), rootOpts.Format, contacts)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", defaultListLimit, "maximum number of contact requests")
	return cmd
}

func openRecords(rootOpts *RootOptions) (*sqlite.Store, error) {
	cfg, err := rootOpts.loadConfig()
	if err != nil {
		return nil, err
	}
	return sqlite.Open(cfg.Orders.DatabasePath)
}

type orderRow struct {
	ID        string            `json:"id"`
	CreatedAt time.Time         `json:"created_at"`
	Name      string            `json:"name"`
	Email     string            `json:"email"`
	Total     float64           `json:"total"`
	Message   string            `json:"message,omitempty"`
	Items     []domain.LineItem `json:"items"`
}

func writeOrders(w io.Writer, format string, orders []domain.Order) error {
	if format == "json" {
		rows := make([]orderRow, 0, len(orders))
		for _, o := range orders {
			rows = append(rows, orderRow{ID: o.ID, CreatedAt: o.CreatedAt, Name: o.Name, Email: o.Email, Total: o.Total, Message: o.Message, Items: o.Items})
		}
		return writeJSON(w, rows)
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCREATED\tNAME\tEMAIL\tITEMS\tTOTAL")
	for _, o := range orders {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%.2f\n", o.ID, o.CreatedAt.Format(time.RFC3339), o.Name, o.Email, len(o.Items), o.Total)
	}
	return tw.Flush()
}

type contactRow struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Message   string    `json:"message"`
}

func writeContacts(w io.Writer, format string, contacts []domain.Contact) error {
	if format == "json" {
		rows := make([]contactRow, 0, len(contacts))
		for _, c := range contacts {
			rows = append(rows, contactRow{ID: c.ID, CreatedAt: c.CreatedAt, Name: c.Name, Email: c.Email, Message: c.Message})
		}
		return writeJSON(w, rows)
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCREATED\tNAME\tEMAIL\tMESSAGE")
	for _, c := range contacts {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", c.ID, c.CreatedAt.Format(time.RFC3339), c.Name, c.Email, truncate(c.Message, 60))
	}
	return tw.Flush()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
