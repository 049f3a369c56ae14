package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/motoforense/motoscan/internal/store"
)

// registerCmd groups the reference-database write operations.
var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Register reference motors and confirmed fraud cases",
	Long: `Add entries to the reference database used during analysis.

A confirmed fraud case short-circuits any later analysis of the same
code to the maximum score. A verified original serves as documentation
for investigators.

Examples:
  motoscan register fraud MD09E1-B215797 --store frauds.db --fraud-type remarcacao
  motoscan register original MD09E1-B301442 --store frauds.db --year 2020 --model "XRE 300"`,
}

var registerFraudCmd = &cobra.Command{
	Use:          "fraud <code>",
	Short:        "Register a confirmed fraud case",
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		if cfg.StorePath == "" {
			return errors.New("no store configured (--store or store_path)")
		}
		fraudType, _ := cmd.Flags().GetString("fraud-type")
		description, _ := cmd.Flags().GetString("description")
		original, _ := cmd.Flags().GetString("original-code")
		year, _ := cmd.Flags().GetInt("year")

		db, err := store.Open(cfg.StorePath)
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()

		id, err := db.AddFraud(context.Background(), store.FraudRecord{
			Code:         args[0],
			OriginalCode: original,
			FraudType:    fraudType,
			Description:  description,
			YearClaimed:  year,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Registered fraud case %d for %s\n", id, args[0])
		return nil
	},
}

var registerOriginalCmd = &cobra.Command{
	Use:          "original <code>",
	Short:        "Register a verified original motor",
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		if cfg.StorePath == "" {
			return errors.New("no store configured (--store or store_path)")
		}
		model, _ := cmd.Flags().GetString("model")
		description, _ := cmd.Flags().GetString("description")
		year, _ := cmd.Flags().GetInt("year")
		engraving, _ := cmd.Flags().GetString("engraving")

		db, err := store.Open(cfg.StorePath)
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()

		id, err := db.AddOriginal(context.Background(), store.OriginalRecord{
			Code:          args[0],
			Model:         model,
			Year:          year,
			EngravingType: engraving,
			Description:   description,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Registered original motor %d for %s\n", id, args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(registerCmd)
	registerCmd.AddCommand(registerFraudCmd)
	registerCmd.AddCommand(registerOriginalCmd)

	registerFraudCmd.Flags().String("fraud-type", "", "kind of tampering (remarcacao, adulteracao, ...)")
	registerFraudCmd.Flags().String("description", "", "free-form case notes")
	registerFraudCmd.Flags().String("original-code", "", "original code the engraving was altered from, when known")
	registerFraudCmd.Flags().Int("year", 0, "model year claimed by the seller")

	registerOriginalCmd.Flags().String("model", "", "motorcycle model")
	registerOriginalCmd.Flags().String("description", "", "free-form notes")
	registerOriginalCmd.Flags().Int("year", 0, "model year")
	registerOriginalCmd.Flags().String("engraving", "", "observed engraving technique (stamped, laser)")
}
