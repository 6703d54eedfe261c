package cmd

import (
	"github.com/ghalbir/trading-client/internal/bootstrap"
	"github.com/spf13/cobra"
)

// tradingGatewayCmd represents the tradingGateway command
var tradingGatewayCmd = &cobra.Command{
	Use:   "trading-gateway",
	Short: "Start the Trading Gateway service",
	Long: `The Trading Gateway hosts one trading client session: authentication,
the order entry form, open orders and order history, and the notification
queue. It exposes the state over HTTP for the browser view layer and
publishes order lifecycle events to JetStream.`,
	Run: bootstrap.StartTradingGateway,
}

func init() {
	rootCmd.AddCommand(tradingGatewayCmd)
}
