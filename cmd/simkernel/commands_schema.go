package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sourceplane/simkernel/internal/schema"
)

func registerSchemaCommand(root *cobra.Command) {
	schemaCmd := &cobra.Command{
		Use:   "schema",
		Short: "Inspect and validate component schemas",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List registered component kinds",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := schema.NewRegistry(schemaDir)
			if err != nil {
				return err
			}
			for _, kind := range reg.ListComponents() {
				fmt.Println(kind)
			}
			return nil
		},
	}

	validateCmd := &cobra.Command{
		Use:   "validate <kind> <json-file>",
		Short: "Validate a JSON document against a component schema",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := schema.NewRegistry(schemaDir)
			if err != nil {
				return err
			}
			value, err := readJSONFile(args[1])
			if err != nil {
				return err
			}
			if err := reg.Validate(args[0], value); err != nil {
				return err
			}
			fmt.Println("valid")
			return nil
		},
	}

	schemaCmd.AddCommand(listCmd)
	schemaCmd.AddCommand(validateCmd)
	root.AddCommand(schemaCmd)
}
