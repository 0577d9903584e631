package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"os"
	"time"

	"app/cfg"
	"app/db/migrations"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"gopkg.in/yaml.v3"
)

func main() {
	var cfgPath string
	flag.StringVar(&cfgPath, "cfg", "cfg/cfg.yaml", "path to config file")
	flag.Parse()

	var cfg *cfg.Config
	if cfgFile, err := os.ReadFile(cfgPath); err != nil {
		log.Fatalf("can't open %s file: %v", cfgPath, err)
	} else if err = yaml.Unmarshal(cfgFile, &cfg); err != nil {
		log.Fatal("can't unmarshal cfg file", err)
	}

	database, err := sql.Open("pgx", cfg.DB.ConnStr)
	if err != nil {
		log.Fatal("failed to open db: ", err)
	}
	defer database.Close()

	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("postgres"); err != nil {
		log.Fatal("failed to set goose dialect: ", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := goose.UpContext(ctx, database, "."); err != nil {
		log.Fatal("failed to apply migrations: ", err)
	}

	log.Println("migrations applied")
}
