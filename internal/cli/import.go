package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/fnev4/fnev4/internal/application/service"
	"github.com/fnev4/fnev4/internal/container"
)

func newImportCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import Sage 100 invoice workbooks or client lists",
	}

	var dryRun bool
	cmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "Validate the workbook without saving anything")

	cmd.AddCommand(&cobra.Command{
		Use:   "invoices <file>",
		Short: "Import a Sage 100 invoice workbook (.xlsx or .xls), one invoice per sheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withServices(cmd.Context(), func(s *container.ServiceBundle) error {
				run := s.InvoiceImport.Import
				if dryRun {
					run = s.InvoiceImport.Preview
				}
				result, err := run(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				printInvoiceImport(cmd.OutOrStdout(), result, dryRun)
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clients <file>",
		Short: "Import a client workbook, one client per row",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withServices(cmd.Context(), func(s *container.ServiceBundle) error {
				run := s.ClientImport.Import
				if dryRun {
					run = s.ClientImport.Preview
				}
				result, err := run(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				printClientImport(cmd.OutOrStdout(), result, dryRun)
				return nil
			})
		},
	})

	return cmd
}

func printInvoiceImport(w io.Writer, r *service.InvoiceImportResult, dryRun bool) {
	verb := "imported"
	if dryRun {
		verb = "valid"
	}
	fmt.Fprintf(w, "%s: %d sheet(s), %d of %d invoice(s) %s\n", r.FileName, r.SheetCount, len(r.Invoices), r.TotalCount, verb)

	for _, v := range r.Invoices {
		inv := v.Invoice
		fmt.Fprintf(w, "  %-12s %-20s %-8s %s TTC\n", inv.InvoiceNumber, inv.ClientName, inv.Template, inv.TotalAmountTTC.StringFixed(2))
	}
	for _, e := range r.Errors {
		fmt.Fprintf(w, "  error:   %s\n", e.Error())
	}
	for _, e := range r.Warnings {
		fmt.Fprintf(w, "  warning: %s\n", e.Error())
	}
	if r.Session != nil {
		fmt.Fprintf(w, "session %s: %s\n", r.Session.Reference, r.Session.Status)
	}
}

func printClientImport(w io.Writer, r *service.ClientImportResult, dryRun bool) {
	fmt.Fprintf(w, "%s: %d row(s) processed, %d valid, %d with errors\n", r.FileName, r.ProcessedRows, r.ValidRows, r.ErrorRows)

	for _, row := range r.Rows {
		status := "ok"
		if !row.Valid() {
			status = "rejected"
		} else if !dryRun && row.Action != "" {
			status = row.Action
		}
		code := ""
		if row.Client != nil {
			code = row.Client.Code
		}
		fmt.Fprintf(w, "  row %-4d %-12s %s\n", row.Row, code, status)
		for _, msg := range row.Errors {
			fmt.Fprintf(w, "    error:   %s\n", msg)
		}
		for _, msg := range row.Warnings {
			fmt.Fprintf(w, "    warning: %s\n", msg)
		}
	}
	if r.Session != nil {
		fmt.Fprintf(w, "session %s: %s\n", r.Session.Reference, r.Session.Status)
	}
}
