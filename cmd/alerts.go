package cmd

import (
	"os"

	"github.com/chrisdamba/backoffice/internal/alerts"
	"github.com/chrisdamba/backoffice/internal/alerts/producers"
	"github.com/chrisdamba/backoffice/internal/models"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var alertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "Work with stock alert events",
}

var alertsRelayCmd = &cobra.Command{
	Use:   "relay",
	Short: "Publish unprocessed stock alerts and mark them processed",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		var producer alerts.Producer
		if a.cfg.Kafka.Enabled {
			producer, err = producers.NewSaramaProducer(a.cfg.Kafka, a.logger)
			if err != nil {
				return err
			}
		} else {
			producer = producers.NewConsoleProducer(os.Stdout)
		}
		defer func() {
			if err := producer.Close(); err != nil {
				a.logger.Warn("closing producer", zap.Error(err))
			}
		}()

		feed := alerts.NewFeed(a.store, producer, a.cfg.Kafka.AlertTopic, a.logger)
		result, err := feed.Relay(cmd.Context(), limit)
		if result != nil {
			printJSON(result)
		}
		return err
	},
}

func init() {
	alertsRelayCmd.Flags().Int("limit", models.DefaultAlertsLimit, "Maximum number of events to publish")
	alertsRelayCmd.Flags().Bool("kafka-enabled", false, "Publish to Kafka instead of stdout")
	alertsRelayCmd.Flags().String("kafka-broker-list", "localhost:9092", "Kafka broker list")
	viper.BindPFlag("kafka.enabled", alertsRelayCmd.Flags().Lookup("kafka-enabled"))
	viper.BindPFlag("kafka.broker_list", alertsRelayCmd.Flags().Lookup("kafka-broker-list"))
	alertsCmd.AddCommand(alertsRelayCmd)
}
