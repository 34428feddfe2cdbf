package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/fnev4/fnev4/internal/application/port"
	"github.com/fnev4/fnev4/internal/container"
)

func newInvoicesCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "invoices",
		Short: "Inspect imported invoices",
	}

	var filter port.InvoiceFilter
	list := &cobra.Command{
		Use:   "list",
		Short: "List invoices, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withServices(cmd.Context(), func(s *container.ServiceBundle) error {
				page, err := s.Invoice.List(cmd.Context(), filter)
				if err != nil {
					return err
				}

				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tNUMBER\tDATE\tCLIENT\tTYPE\tSTATUS\tTTC\tFNE REFERENCE")
				for _, inv := range page.Invoices {
					fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
						inv.ID,
						inv.InvoiceNumber,
						inv.InvoiceDate.Format("2006-01-02"),
						inv.ClientName,
						inv.InvoiceType,
						inv.Status,
						inv.TotalAmountTTC.StringFixed(2),
						inv.FneReference,
					)
				}
				if err := tw.Flush(); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d of %d invoice(s)\n", len(page.Invoices), page.Total)
				return nil
			})
		},
	}
	list.Flags().StringVar(&filter.Status, "status", "", "Only list DRAFT, CERTIFIED or ERROR invoices")
	list.Flags().StringVar(&filter.ClientCode, "client", "", "Only list invoices of this client code")
	list.Flags().IntVar(&filter.Limit, "limit", 50, "Maximum number of invoices")
	list.Flags().IntVar(&filter.Offset, "offset", 0, "Number of invoices to skip")

	cmd.AddCommand(list)
	return cmd
}
