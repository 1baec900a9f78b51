package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/dairyops/coop/internal/config"
	"github.com/dairyops/coop/internal/repository/mongodb"
	"github.com/dairyops/coop/internal/repository/sheets"
	"github.com/dairyops/coop/internal/service/reports"
)

const dateLayout = "2006-01-02"

// Scheduler manages scheduled tasks: the nightly procurement snapshot that
// lands in the archive and, when configured, the auditors' spreadsheet.
type Scheduler struct {
	cron       *cron.Cron
	reportsSvc *reports.Service
	archive    mongodb.Repository
	exporter   sheets.Exporter
	cfg        config.Config
	logger     *zap.Logger
}

// NewScheduler creates a new scheduler instance. The exporter may be nil
// when sheet export is not configured.
func NewScheduler(cfg config.Config, reportsSvc *reports.Service, archive mongodb.Repository, exporter sheets.Exporter, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}

	loc, err := time.LoadLocation(cfg.Snapshot.Timezone)
	if err != nil {
		logger.Warn("invalid timezone, falling back to local", zap.String("timezone", cfg.Snapshot.Timezone), zap.Error(err))
		loc = time.Local
	}

	return &Scheduler{
		cron:       cron.New(cron.WithLocation(loc)),
		reportsSvc: reportsSvc,
		archive:    archive,
		exporter:   exporter,
		cfg:        cfg,
		logger:     logger,
	}
}

// Start starts the scheduler.
func (s *Scheduler) Start() {
	s.logger.Info("starting scheduler", zap.String("schedule", s.cfg.Snapshot.CronSchedule))

	_, err := s.cron.AddFunc(s.cfg.Snapshot.CronSchedule, s.archiveDailySnapshot)
	if err != nil {
		s.logger.Error("failed to schedule daily snapshot", zap.Error(err))
	}

	s.cron.Start()
}

// Stop stops the scheduler.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	s.cron.Stop()
}

func (s *Scheduler) archiveDailySnapshot() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	date := time.Now().Format(dateLayout)
	s.logger.Info("archiving daily procurement snapshot", zap.String("date", date))

	snapshot, err := s.reportsSvc.DailySnapshot(ctx, date)
	if err != nil {
		s.logger.Error("failed to build daily snapshot", zap.Error(err))
		return
	}

	if err := s.archive.SaveSnapshot(ctx, snapshot); err != nil {
		s.logger.Error("failed to archive daily snapshot", zap.Error(err))
		return
	}

	if s.exporter == nil {
		return
	}

	row := []interface{}{
		snapshot.Date,
		snapshot.Entries,
		snapshot.QtyKg,
		snapshot.FatKg,
		snapshot.SNFKg,
		snapshot.AvgFat,
		snapshot.AvgSNF,
		snapshot.MilkValue,
		snapshot.GrossPayment,
	}
	if err := s.exporter.AppendRows(ctx, s.cfg.Sheets.ReportRange, [][]interface{}{row}); err != nil {
		s.logger.Error("failed to export daily snapshot", zap.Error(err))
		return
	}

	s.logger.Info("daily snapshot archived", zap.String("date", date), zap.Int("entries", snapshot.Entries))
}
