package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"BondLens/internal/appmanager"
	"BondLens/internal/config"
	"BondLens/internal/pipeline"
	"BondLens/internal/report"
	"BondLens/internal/store"
)

func main() {
	runOnce := flag.Bool("run-once", false, "execute one pipeline run and exit with the verdict status")
	servicesPath := flag.String("services", "services.yaml", "path to the service sequence file")
	flag.Parse()

	// Load .env for local dev
	_ = godotenv.Load(".env")

	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatal("failed to load run configuration:", err)
	}

	var sink *store.Store
	if cfg.DBURL != "" {
		sink, err = store.Open(context.Background(), cfg.DBURL)
		if err != nil {
			log.Fatal("failed to open store:", err)
		}
		defer sink.Close()
	}

	runner := pipeline.NewRunner(cfg, sink)

	if *runOnce {
		res, err := runner.Run()
		if err != nil {
			log.Fatal("pipeline run failed:", err)
		}
		fmt.Print(report.FormatVerdict(res.Verdict))
		// Automation reads the exit status off the verdict, not off errors.
		if !res.Verdict.Passed {
			os.Exit(1)
		}
		return
	}

	appmanager.SetRunner(runner)
	manager := appmanager.NewAppManager()

	servicesCfg, err := appmanager.LoadServiceSequence(*servicesPath)
	if err != nil {
		log.Fatal("failed to load service sequence:", err)
	}
	manager.AutoRegisterServices(servicesCfg)

	if err := manager.StartAll(); err != nil {
		log.Fatal("failed to start:", err)
	}

	// Graceful shutdown handling
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs

	if err := manager.StopAll(); err != nil {
		log.Fatal("failed to stop:", err)
	}
}
