// @title Awesome Life Habits API
// @description Habit ledger backend: habits, completion logging, streaks and stats
// @BasePath /api/v1
// @schemes http
package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/awsmlife/habits/internal/api"
	"github.com/awsmlife/habits/internal/repository"
	"github.com/awsmlife/habits/internal/service"
	"github.com/awsmlife/habits/pkg/cleanup"
	"github.com/awsmlife/habits/pkg/config"
	jwtservice "github.com/awsmlife/habits/pkg/jwt_service"
)

func init() {
	service.InitValidator()
}

func main() {
	cfg := config.New()
	dbCfg := repository.PGCfg{
		Address:  cfg.GetString("POSTGRES_DB_ADDRESS"),
		Username: cfg.GetString("POSTGRES_USER"),
		Password: cfg.GetString("POSTGRES_PASSWORD"),
		DB:       cfg.GetString("POSTGRES_DB"),
	}
	usersRepo := repository.NewUsersRepo(&dbCfg)
	habitsRepo := repository.NewHabitsRepo(&dbCfg)
	completionsRepo := repository.NewCompletionsRepo(&dbCfg)

	serv := api.New(&api.ServicesList{
		UserService:   service.NewUserService(usersRepo),
		HabitsService: service.NewHabitsService(habitsRepo, completionsRepo),
		LedgerService: service.NewLedgerService(habitsRepo, completionsRepo, service.LedgerOptions{
			BackfillDays: cfg.GetInt("LEDGER_BACKFILL_DAYS", service.DefaultBackfillDays),
		}),
		StatsService: service.NewStatsService(habitsRepo, completionsRepo),
		JwtService:   jwtservice.New(cfg.GetString("JWT_SECRET")),
	})

	go func() {
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
		<-stop
		cleanup.CleanUp()
		os.Exit(0)
	}()

	err := serv.Run(cfg.GetString("API_ADDRESS"))
	if err != nil {
		log.Println("Server error: " + err.Error())
	}
	cleanup.CleanUp()
}
