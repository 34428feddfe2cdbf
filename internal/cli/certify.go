package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/fnev4/fnev4/internal/container"
)

func newCertifyCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "certify <id>...",
		Short: "Submit invoices to the DGI FNE API, one after the other",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := make([]int64, 0, len(args))
			for _, arg := range args {
				id, err := strconv.ParseInt(arg, 10, 64)
				if err != nil || id <= 0 {
					return fmt.Errorf("invalid invoice id %q", arg)
				}
				ids = append(ids, id)
			}

			return a.withServices(cmd.Context(), func(s *container.ServiceBundle) error {
				w := cmd.OutOrStdout()
				failed := 0
				for _, r := range s.Certification.CertifyBatch(cmd.Context(), ids) {
					if !r.Success {
						failed++
						fmt.Fprintf(w, "%d %s: %s %s\n", r.InvoiceID, r.InvoiceNumber, r.Status, r.Error)
						continue
					}
					fmt.Fprintf(w, "%d %s: %s %s %s\n", r.InvoiceID, r.InvoiceNumber, r.Status, r.FneReference, r.VerificationURL)
					if r.Warning && r.StickerBalance != nil {
						fmt.Fprintf(w, "  warning: sticker balance is low (%d)\n", *r.StickerBalance)
					}
				}
				if failed > 0 {
					return fmt.Errorf("%d of %d invoice(s) failed certification", failed, len(ids))
				}
				return nil
			})
		},
	}
}
