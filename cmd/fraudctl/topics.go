package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Skotchmaster/fraud_reporting/internal/events"
	"github.com/Skotchmaster/fraud_reporting/pkg/config"
)

func topicsCmd() *cobra.Command {
	var broker string

	cmd := &cobra.Command{
		Use:   "topics",
		Short: "Create the Kafka topics the server publishes to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if broker == "" {
				if brokers := config.Load().KafkaBrokers; len(brokers) > 0 {
					broker = brokers[0]
				}
			}
			if broker == "" {
				return fmt.Errorf("no broker configured: pass --broker or set KAFKA_BROKERS")
			}
			if err := events.EnsureTopics(broker, events.TopicUserEvents, events.TopicTransactionEvents); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "topics ready on %s\n", broker)
			return nil
		},
	}
	cmd.Flags().StringVar(&broker, "broker", "", "bootstrap broker address")
	return cmd
}
