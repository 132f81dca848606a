package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/uhyunpark/ordermatch/params"
	"github.com/uhyunpark/ordermatch/pkg/api"
	"github.com/uhyunpark/ordermatch/pkg/engine"
	"github.com/uhyunpark/ordermatch/pkg/storage"
	"github.com/uhyunpark/ordermatch/pkg/util"
)

func main() {
	// Load config from .env file and environment variables
	cfg, err := params.LoadFromEnv("")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	var logger *zap.Logger
	if cfg.Log.File != "" {
		logger, err = util.NewLoggerWithFile(cfg.Log.File, cfg.Log.Level)
	} else {
		logger, err = util.NewLogger(cfg.Log.Level)
	}
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()
	sugar := logger.Sugar()

	var journal storage.Journal = storage.NewNopJournal()
	if cfg.Storage.JournalFile != "" {
		fj, err := storage.NewFileJournal(cfg.Storage.JournalFile)
		if err != nil {
			sugar.Fatalw("journal_open_failed", "path", cfg.Storage.JournalFile, "err", err)
		}
		journal = fj
	}

	var tape storage.Tape = storage.NewMemoryTape()
	if cfg.Storage.TradeDB != "" {
		pt, err := storage.NewPebbleTape(cfg.Storage.TradeDB, cfg.Symbol)
		if err != nil {
			sugar.Fatalw("trade_tape_open_failed", "path", cfg.Storage.TradeDB, "err", err)
		}
		tape = pt
	}

	eng := engine.New(engine.Options{
		Symbol:  cfg.Symbol,
		Journal: journal,
		Tape:    tape,
		Clock:   util.RealClock{},
		Logger:  sugar,
	})
	defer func() {
		if err := eng.Close(); err != nil {
			sugar.Warnw("engine_close_failed", "err", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.API.Addr != "" {
		srv := api.NewServer(eng, cfg.API.CORSOrigins, sugar)
		go func() {
			if err := srv.Start(ctx, cfg.API.Addr); err != nil {
				sugar.Errorw("api_server_failed", "err", err)
			}
		}()
	}

	sugar.Infow("engine_started",
		"symbol", cfg.Symbol,
		"journal", cfg.Storage.JournalFile,
		"trade_db", cfg.Storage.TradeDB,
		"api_addr", cfg.API.Addr,
	)

	if err := serve(ctx, os.Stdin, os.Stdout, eng, cfg.Separator); err != nil {
		sugar.Errorw("input_failed", "err", err)
	}

	st := eng.Stats()
	sugar.Infow("engine_stopped",
		"commands", st.Commands,
		"rejected", st.Rejected,
		"trades", st.Trades,
		"resting", st.Resting,
	)
}
