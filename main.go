package main

import (
	"context"
	"fmt"
	"github.com/joho/godotenv"
	"github.com/lordralex/rallypoint/api/env"
	"github.com/lordralex/rallypoint/api/logger"
	"github.com/lordralex/rallypoint/modules"
	"github.com/lordralex/rallypoint/modules/polls"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"
)

const sweepInterval = time.Minute

var rootCmd = &cobra.Command{
	Use:   "rallypoint [platforms...]",
	Short: "Event planning polls for Telegram and Discord",
	Long: `RallyPoint lets a group create a poll with a handful of options and
vote on them with buttons. Platforms: ` + strings.Join(modules.Available(), ", ") + `, or all.`,
	RunE:          run,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.Flags().Int("port", 3000, "port the Telegram webhook listens on")
	rootCmd.Flags().String("log-file", "output.log", "file to copy log output to, empty for none")
	rootCmd.Flags().Bool("debug", false, "log debug output")
	_ = viper.BindPFlag("port", rootCmd.Flags().Lookup("port"))
	_ = viper.BindPFlag("log.file", rootCmd.Flags().Lookup("log-file"))
	_ = viper.BindPFlag("log.debug", rootCmd.Flags().Lookup("debug"))
}

func initConfig() {
	// a missing .env is fine, the environment is enough
	_ = godotenv.Load()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logger.Err().Println(err.Error())
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	if err := logger.Init(env.Get("log.file"), env.GetBool("log.debug")); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error opening log file: %s\n", err.Error())
	}
	defer func() {
		err := logger.Close()
		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "Error closing logger: %s", err.Error())
		}
	}()

	platforms := args
	if len(platforms) == 0 {
		platforms = env.GetStringArray("platforms", ",")
	}
	if len(platforms) == 0 {
		platforms = []string{"telegram"}
	}

	store, err := newStore()
	if err != nil {
		return err
	}

	handler := polls.NewHandler(store, polls.Config{
		CreateQuery: env.GetOr("create.query", polls.DefaultCreateQuery),
		CreationURL: env.Get("telegram.miniapp"),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go polls.RunJanitor(ctx, store, sweepInterval)

	logger.Out().Printf("Starting %s\n", strings.Join(platforms, ", "))
	err = modules.Run(ctx, platforms, handler)
	logger.Out().Println("Shutting down")
	return err
}

func newStore() (*polls.Store, error) {
	policy, err := polls.PolicyFromName(
		env.GetOr("polls.eviction", "none"),
		env.GetIntOr("polls.capacity", 1000),
		env.GetDurationOr("polls.idle", 168*time.Hour),
	)
	if err != nil {
		return nil, err
	}

	limits := polls.Limits{
		MaxOptions: env.GetIntOr("polls.maxoptions", polls.DefaultLimits.MaxOptions),
		MaxLength:  env.GetIntOr("polls.maxlength", polls.DefaultLimits.MaxLength),
	}

	logger.Debug().Printf("Poll store: eviction %s, limits %+v\n", env.GetOr("polls.eviction", "none"), limits)
	return polls.NewStore(policy, limits), nil
}
