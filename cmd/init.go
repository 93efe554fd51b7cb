package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/quickprep-cli/internal/recipe"
	"github.com/KaramelBytes/quickprep-cli/internal/utils"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init [recipe.yaml]",
	Short: "Write a starter recipe to edit and pass to 'prep --recipe'",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "recipe.yaml"
		if len(args) == 1 {
			path = args[0]
		}
		// Refuse to overwrite an existing recipe.
		if _, err := os.Stat(path); err == nil && !initForce {
			return fmt.Errorf("%s already exists; use --force to overwrite", path)
		} else if err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("stat recipe: %w", err)
		}
		if err := utils.SafeWriteFile(path, []byte(recipe.Starter)); err != nil {
			return err
		}
		successf(cmd.OutOrStdout(), "Recipe written: %s", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite an existing file")
}
