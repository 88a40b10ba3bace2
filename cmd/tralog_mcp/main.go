// Package main runs the tralog stats MCP server over stdio.
// The same MCP server is also mounted on the main backend at /mcp over HTTP.
package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ponta-ta-taro/tralog4/internal/config"
	"github.com/ponta-ta-taro/tralog4/internal/db"
	"github.com/ponta-ta-taro/tralog4/internal/docstore"
	tralogmcp "github.com/ponta-ta-taro/tralog4/internal/tralog/mcp"
	"github.com/ponta-ta-taro/tralog4/internal/tralog/stats"
	"github.com/ponta-ta-taro/tralog4/internal/tralog/workouts"
)

func main() {
	env := flag.String("env", "development", "environment [prod | production | dev | development]")
	configPath := flag.String("config", "./config.toml", "path to TOML config file")
	flag.Parse()

	cfg, err := config.Load(*env, *configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx := context.Background()
	dbPool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
		DBHost:         cfg.PostgresHost,
		DBPort:         cfg.PostgresPort,
		DBName:         cfg.PostgresDBName,
		DBUser:         os.Getenv("TRALOG_DB_USER"),
		DBPassword:     os.Getenv("TRALOG_DB_PASS"),
		TracingEnabled: false,
	})
	if err != nil {
		log.Fatalf("db pool: %v", err)
	}
	defer dbPool.Close()

	keywords := stats.DefaultKeywords()
	if cfg.WarmupKeyword != "" {
		keywords.Warmup = cfg.WarmupKeyword
	}
	if cfg.CooldownKeyword != "" {
		keywords.Cooldown = cfg.CooldownKeyword
	}

	workoutsRepo := workouts.NewRepo(docstore.NewStore(dbPool))
	statsService := stats.NewService(workoutsRepo, stats.NewServiceParams{
		Calendar:   stats.NewFixedOffsetCalendar(cfg.TimezoneOffsetHours()),
		Keywords:   keywords,
		TrendWeeks: cfg.DashboardTrendWeeks,
	})
	server := tralogmcp.NewServer(statsService)

	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil {
		log.Fatal(err)
	}
}
