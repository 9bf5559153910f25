package main

import (
	"fmt"
	"os"

	pkg "github.com/agoraview/survey-client/pkg/internal"
	"github.com/agoraview/survey-client/pkg/internal/api"
	"github.com/agoraview/survey-client/pkg/internal/busy"
	"github.com/agoraview/survey-client/pkg/internal/cache"
	"github.com/agoraview/survey-client/pkg/internal/console"
	"github.com/agoraview/survey-client/pkg/internal/database"
	"github.com/agoraview/survey-client/pkg/internal/outbox"
	"github.com/agoraview/survey-client/pkg/internal/session"
	"github.com/fatih/color"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

func init() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})
}

func main() {
	// Booting screen
	fmt.Println(color.YellowString("    _                                _\n   / \\   __ _  ___  _ __ __ ___   _(_) _____      __\n  / _ \\ / _` |/ _ \\| '__/ _` \\ \\ / / |/ _ \\ \\ /\\ / /\n / ___ \\ (_| | (_) | | | (_| |\\ V /| |  __/\\ V  V /\n/_/   \\_\\__, |\\___/|_|  \\__,_| \\_/ |_|\\___| \\_/\\_/\n        |___/"))
	fmt.Printf("%s v%s\n", color.New(color.FgHiYellow).Add(color.Bold).Sprintf("Agoraview Survey Client"), pkg.AppVersion)
	fmt.Printf("The political opinion survey, in your terminal\n")
	color.HiBlack("=====================================================\n")

	// Configure settings
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.SetConfigName("settings")
	viper.SetConfigType("toml")

	// Load settings
	if err := viper.ReadInConfig(); err != nil {
		log.Panic().Err(err).Msg("An error occurred when loading settings.")
	}

	// Prepare the in-memory question cache
	if err := cache.NewStore(); err != nil {
		log.Fatal().Err(err).Msg("An error occurred when initializing cache.")
	}

	// Open the local store
	if err := database.NewGorm(); err != nil {
		log.Fatal().Err(err).Msg("An error occurred when opening the local store.")
	} else if err := database.RunMigration(database.C); err != nil {
		log.Fatal().Err(err).Msg("An error occurred when running local store migration.")
	}

	store := session.NewStore(database.C)
	tracker := busy.NewTracker(func(active bool) {
		if active {
			fmt.Print(color.HiBlackString("…"))
		}
	})
	client := api.NewClientFromConfig(tracker)
	client.OnCSRFToken(func(token string) {
		if err := store.SaveCSRFToken(token); err != nil {
			log.Warn().Err(err).Msg("Failed to persist CSRF token...")
		}
	})
	box := outbox.New(client, store)

	// Configure timed tasks
	quartz := cron.New(cron.WithLogger(cron.VerbosePrintfLogger(&log.Logger)))
	schedule := viper.GetString("outbox.flush_interval")
	if len(schedule) == 0 {
		schedule = "@every 1m"
	}
	quartz.AddFunc(schedule, box.FlushTimedTask)
	quartz.Start()

	app := console.NewApp(client, store, box)
	if err := app.Run(); err != nil {
		log.Error().Err(err).Msg("Survey session ended with an error.")
	}

	// Drain pending writes before exiting
	box.Flush()

	quartz.Stop()
}
