package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/smart-agence/crm-service/internal/config"
	"github.com/smart-agence/crm-service/internal/database"
	"github.com/smart-agence/crm-service/internal/logger"
	"github.com/smart-agence/crm-service/internal/model"
	"github.com/smart-agence/crm-service/internal/paging"
	"github.com/smart-agence/crm-service/internal/service"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var exportOutput string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Dump agents and tickets as JSON, read directly from the database",
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "write to this file instead of stdout")
}

// openDatabase connects and migrates the store named by DATABASE_URL.
func openDatabase(cfg *config.Config) (*gorm.DB, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return database.Connect(cfg.DatabaseURL, logger.Gorm(slog.Default(), cfg.LogLevel))
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer database.Close(db)

	doc, err := buildExport(cmd.Context(), db, time.Now().UTC())
	if err != nil {
		return err
	}

	if exportOutput == "" {
		err = writeExport(cmd.OutOrStdout(), doc)
	} else {
		err = writeExportFile(exportOutput, doc)
	}
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	slog.Info("export: done", "agents", len(doc.Agents), "tickets", len(doc.Tickets))
	return nil
}

func writeExport(w io.Writer, doc *model.Export) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	return enc.Encode(doc)
}

func writeExportFile(path string, doc *model.Export) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	return writeAndClose(f, doc)
}

// writeAndClose reports the close error too: a failed flush is a failed export.
func writeAndClose(wc io.WriteCloser, doc *model.Export) error {
	if err := writeExport(wc, doc); err != nil {
		_ = wc.Close()
		return err
	}
	return wc.Close()
}

func buildExport(ctx context.Context, db *gorm.DB, at time.Time) (*model.Export, error) {
	agents, err := paging.ListAll(ctx, service.NewAgentService(db).List)
	if err != nil {
		return nil, fmt.Errorf("list agents: %w", err)
	}
	tickets, err := paging.ListAll(ctx, service.NewTicketService(db).List)
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	return &model.Export{Agents: agents, Tickets: tickets, ExportDate: at}, nil
}
