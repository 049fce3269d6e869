package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/smart-agence/crm-service/internal/database"
	"github.com/smart-agence/crm-service/internal/kafka"
	"github.com/smart-agence/crm-service/internal/paging"
	"github.com/smart-agence/crm-service/internal/service"
	"github.com/spf13/cobra"
)

var publishTicketsCmd = &cobra.Command{
	Use:   "publish-tickets",
	Short: "Republish every ticket with its current status to KAFKA_TOPIC_TICKET",
	RunE:  runPublishTickets,
}

func runPublishTickets(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	producer := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopicTicket)
	if !producer.Enabled() {
		slog.Warn("publish-tickets: KAFKA_BROKERS or KAFKA_TOPIC_TICKET not set, nothing to do")
		return nil
	}
	defer producer.Close()

	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer database.Close(db)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()
	tickets, err := paging.ListAll(ctx, service.NewTicketService(db).List)
	if err != nil {
		return fmt.Errorf("list tickets: %w", err)
	}
	slog.Info("publish-tickets: found tickets", "count", len(tickets))

	now := time.Now().UTC()
	for i := range tickets {
		producer.ProduceTicketEvent(ctx, kafka.TicketEventFor(kafka.EventTicketUpdated, &tickets[i], now))
		if (i+1)%50 == 0 || i == len(tickets)-1 {
			slog.Info("publish-tickets: progress", "sent", i+1, "total", len(tickets))
		}
	}
	return nil
}
