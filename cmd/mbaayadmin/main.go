package main

import (
	"io"
	"log"
	"os"

	"mbaayadmin/internal/config"
	"mbaayadmin/internal/http/server"
	applog "mbaayadmin/internal/log"
	"mbaayadmin/internal/repos"
)

func main() {
	cfg := config.Load()
	applog.SetLevel(cfg.LogLevel)

	// Optional file logging
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Printf("[warn] could not open log file %s: %v", cfg.LogFile, err)
		} else {
			defer f.Close()
			mw := io.MultiWriter(os.Stdout, f)
			log.SetOutput(mw)
			applog.SetOutput(mw)
		}
	}

	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	app, err := server.New(db, cfg)
	if err != nil {
		log.Fatal(err)
	}
	log.Fatal(app.Listen(":" + cfg.Port))
}
