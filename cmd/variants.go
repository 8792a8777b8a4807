package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/readhacker/readhacker/internal/schema"
)

func newVariantsCmd() *cobra.Command {
	var showSchema bool

	cmd := &cobra.Command{
		Use:   "variants",
		Short: "List the available metadata schema variants",
		RunE: func(cmd *cobra.Command, args []string) error {
			variants, err := schema.Variants()
			if err != nil {
				return err
			}

			for _, v := range variants {
				name := v.Name
				if name == schema.DefaultVariant {
					name += " (default)"
				}
				fmt.Printf("%-24s %s\n", name, v.Description)
				if showSchema {
					fmt.Println(v.String())
					fmt.Println()
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showSchema, "schema", false, "Print the full JSON Schema for each variant")

	return cmd
}
