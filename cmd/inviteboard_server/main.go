package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/glebarez/sqlite"
	"github.com/spf13/viper"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/atiapp/inviteboard/internal/attach"
	"github.com/atiapp/inviteboard/internal/callbacks"
	"github.com/atiapp/inviteboard/internal/database"
	"github.com/atiapp/inviteboard/internal/model"
	"github.com/atiapp/inviteboard/internal/repository"
)

var (
	gitRevision = "unknown"
	gitBranch   = "unknown"
)

type AppConfig struct {
	apiAddr string

	dbFile   string
	dataDir  string
	refsFile string

	debug bool
}

type App struct {
	logger *slog.Logger
	config *AppConfig

	dbm     *database.Manager
	files   *attach.Manager
	refs    *repository.RefFileRepository
	notifCb *callbacks.Callback[*model.Notification]
}

func NewApp(config *AppConfig) *App {
	app := &App{
		logger:  slog.Default(),
		config:  config,
		files:   attach.New(config.dataDir),
		refs:    repository.NewRefFileRepo(config.refsFile),
		notifCb: callbacks.New[*model.Notification](),
	}

	return app
}

func (app *App) Run() {
	db, err := getDatabase(app.config.dbFile)
	if err != nil {
		app.logger.Error("database error", slog.Any("error", err))
		os.Exit(1)
	}

	app.dbm = database.New(db)

	if err := app.dbm.Migrate(); err != nil {
		app.logger.Error("migrate error", slog.Any("error", err))
		os.Exit(1)
	}

	app.dbm.OnNotification(app.notifCb)

	if err := app.files.Init(); err != nil {
		app.logger.Error("uploads dir error", slog.Any("error", err))
		os.Exit(1)
	}

	if err := app.refs.Start(); err != nil {
		app.logger.Error("refs error", slog.Any("error", err))
	}

	NewHttp(app).Start()

	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	<-c

	app.logger.Info("exiting")
	app.refs.Stop()
}

func getDatabase(file string) (*gorm.DB, error) {
	return gorm.Open(sqlite.Open(file), &gorm.Config{Logger: logger.Discard})
}

func main() {
	fmt.Printf("version %s %s\n", gitRevision, gitBranch)

	var debug = flag.Bool("debug", false, "debug logging")
	var conf = flag.String("config", "inviteboard.yml", "name of config file")
	flag.Parse()

	viper.SetConfigFile(*conf)

	viper.SetDefault("api_addr", ":8080")
	viper.SetDefault("db", "invitaciones.db")
	viper.SetDefault("data_dir", "uploads")
	viper.SetDefault("refs_file", "refs.yml")

	if err := viper.ReadInConfig(); err != nil {
		fmt.Printf("no config file, using defaults (%s)\n", err.Error())
	}

	config := &AppConfig{
		apiAddr:  viper.GetString("api_addr"),
		dbFile:   viper.GetString("db"),
		dataDir:  viper.GetString("data_dir"),
		refsFile: viper.GetString("refs_file"),
		debug:    *debug,
	}

	setupLogging(config.debug)

	app := NewApp(config)
	app.Run()
}

func setupLogging(debug bool) {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}

	if debug {
		opts.Level = slog.LevelDebug
	}

	h := slog.NewTextHandler(os.Stdout, opts)
	slog.SetDefault(slog.New(h))
}
