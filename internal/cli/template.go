package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fnev4/fnev4/internal/container"
)

func newTemplateCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "template",
		Short: "Write blank import workbooks",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "clients <out.xlsx>",
		Short: "Write the client import template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withServices(cmd.Context(), func(s *container.ServiceBundle) error {
				if err := s.ClientImport.ExportTemplate(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "client template written to %s\n", args[0])
				return nil
			})
		},
	})

	return cmd
}
