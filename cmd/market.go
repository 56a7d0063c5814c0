package cmd

import (
	"encoding/json"

	"github.com/spf13/cobra"
	"github.com/yiplee/structs"
)

// print the configured markets with their current rates
var marketsCmd = &cobra.Command{
	Use:     "markets",
	Aliases: []string{"m"},
	Short:   "list configured markets and rates",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		database := provideDatabase()
		defer database.Close()

		e := provideEngine(ctx, database, nil, provideLedger())

		markets, err := e.Markets(ctx)
		if err != nil {
			cmd.PrintErrln("list markets error:", err)
			return
		}

		for _, m := range markets {
			rates, err := e.MarketRates(ctx, m.ID)
			if err != nil {
				cmd.PrintErrln("market rates error:", err)
				return
			}

			view := structs.Map(rates)
			view["id"] = m.ID
			view["symbol"] = m.Symbol
			view["collateral_factor"] = m.CollateralFactor

			data, _ := json.Marshal(view)
			cmd.Println(string(data))
		}
	},
}

func init() {
	rootCmd.AddCommand(marketsCmd)
}
