package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/amk92987/wos-optimizer/internal/account"
	"github.com/amk92987/wos-optimizer/internal/advisor"
	googleauth "github.com/amk92987/wos-optimizer/internal/auth"
	"github.com/amk92987/wos-optimizer/internal/llm"
	"github.com/amk92987/wos-optimizer/internal/llm/gemini"
	openai "github.com/amk92987/wos-optimizer/internal/llm/openai"
	"github.com/amk92987/wos-optimizer/internal/profiles"
	"github.com/amk92987/wos-optimizer/internal/queue"
	"github.com/amk92987/wos-optimizer/internal/recommend"
	"github.com/amk92987/wos-optimizer/internal/refdata"
	"github.com/amk92987/wos-optimizer/internal/reports"
	"github.com/amk92987/wos-optimizer/internal/saves"
	"github.com/amk92987/wos-optimizer/internal/shared/config"
	"github.com/amk92987/wos-optimizer/internal/shared/server"
	"github.com/amk92987/wos-optimizer/internal/shared/storage/db"
	"github.com/amk92987/wos-optimizer/internal/shared/storage/object"
	localstore "github.com/amk92987/wos-optimizer/internal/shared/storage/object/local"
	s3store "github.com/amk92987/wos-optimizer/internal/shared/storage/object/s3"
	"github.com/amk92987/wos-optimizer/internal/uploads"
	"github.com/amk92987/wos-optimizer/internal/usage"
	"github.com/amk92987/wos-optimizer/internal/users"
)

// App holds shared dependencies.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB
	Store  object.ObjectStore
	Queue  queue.Client
	Tables *refdata.Tables

	ProfilesRepo profiles.Repo
	SavesRepo    saves.Repo
	ReportsRepo  reports.Repo
	UsersRepo    users.Repo

	Advisor         *advisor.Advisor
	ProfilesService *profiles.Service
	SavesService    *saves.Service
	ReportsService  *reports.Service
	ReportProcessor ReportProcessor
	UsageService    *usage.Service
	UsersService    *users.Service
	AccountService  *account.Service

	ProfilesHandler  *profiles.Handler
	SavesHandler     *saves.Handler
	ReportsHandler   *reports.Handler
	RecommendHandler *recommend.Handler
	UsageHandler     *usage.Handler
	UsersHandler     *users.Handler
	AccountHandler   *account.Handler
	UploadsHandler   *uploads.Handler
	GoogleAuth       *googleauth.GoogleService
}

// ReportProcessor allows callers to override report processing for tests.
type ReportProcessor interface {
	Process(ctx context.Context, reportID string) error
}

// Build prepares shared dependencies and wires routes.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	ctx := context.Background()

	tables, err := refdata.Load()
	if err != nil {
		return nil, fmt.Errorf("load reference tables: %w", err)
	}

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	queueClient, err := buildQueue(ctx)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config: cfg,
		Router: nil,
		DB:     sqlDB,
		Store:  store,
		Queue:  queueClient,
		Tables: tables,
	}

	if err := buildServices(ctx, app); err != nil {
		return nil, err
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:           app.Config,
		ProfilesHandler:  app.ProfilesHandler,
		SavesHandler:     app.SavesHandler,
		ReportsHandler:   app.ReportsHandler,
		RecommendHandler: app.RecommendHandler,
		UsageHandler:     app.UsageHandler,
		UsersHandler:     app.UsersHandler,
		AccountHandler:   app.AccountHandler,
		UploadsHandler:   app.UploadsHandler,
		GoogleAuth:       app.GoogleAuth,
	})

	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	var (
		sqlDB *sql.DB
		err   error
	)
	if db.IsLambdaRuntime() {
		opts := db.OptionsFromEnv(db.DefaultLambdaOptions())
		sqlDB, err = db.GetSingleton(ctx, cfg.DatabaseURL, opts)
	} else {
		opts := db.OptionsFromEnv(db.DefaultServerOptions())
		sqlDB, err = db.Connect(ctx, cfg.DatabaseURL, opts)
	}
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}

	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildQueue(ctx context.Context) (queue.Client, error) {
	if strings.TrimSpace(os.Getenv("WOS_SQS_QUEUE_URL")) == "" {
		return nil, nil
	}
	return queue.NewSQSClient(ctx)
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}

func buildServices(ctx context.Context, app *App) error {
	var profileRepo profiles.Repo
	var saveRepo saves.Repo
	var reportRepo reports.Repo
	var userRepo users.Repo
	var usageRepo usage.Repo

	if app.DB != nil {
		profileRepo = &profiles.PGRepo{DB: app.DB}
		saveRepo = &saves.PGRepo{DB: app.DB}
		reportRepo = &reports.PGRepo{DB: app.DB}
		userRepo = &users.PGRepo{DB: app.DB}
		usageRepo = &usage.PGRepo{DB: app.DB}
	} else {
		profileRepo = profiles.NewMemoryRepo()
		saveRepo = saves.NewMemoryRepo()
		reportRepo = reports.NewMemoryRepo()
		userRepo = users.NewMemoryRepo()
		usageRepo = usage.NewMemoryRepo()
	}

	llmClient, err := buildLLM(ctx, app.Config)
	if err != nil {
		return err
	}

	var cooldown advisor.CooldownPolicy
	if app.Config.AskCooldownSeconds > 0 {
		window := time.Duration(app.Config.AskCooldownSeconds) * time.Second
		cooldown = advisor.NewFixedWindowCooldown(window, nil)
	}

	adv := advisor.New(app.Tables, advisor.Config{
		LLM:      llmClient,
		Cooldown: cooldown,
	})

	profileSvc := profiles.NewService(profileRepo)
	saveSvc := &saves.Service{
		Store:    app.Store,
		Repo:     saveRepo,
		Profiles: profileSvc,
	}
	usageSvc := usage.NewService(usageRepo, nil)
	reportSvc := &reports.Service{
		Repo:     reportRepo,
		Profiles: profileSvc,
		Advisor:  adv,
		Tables:   app.Tables,
		Queue:    app.Queue,
	}
	userSvc := users.NewService(userRepo)
	accountSvc := account.NewService(profileRepo, reportRepo, saveRepo)

	googleAuthSvc := googleauth.NewGoogleService(
		app.Config.GoogleClientID,
		app.Config.GoogleClientSecret,
		app.Config.GoogleRedirectURL,
		app.Config.UIRedirectURL,
		userSvc,
	)

	uploadsHandler, err := uploads.NewHandlerFromEnv(ctx)
	if err != nil {
		return err
	}

	app.ProfilesRepo = profileRepo
	app.SavesRepo = saveRepo
	app.ReportsRepo = reportRepo
	app.UsersRepo = userRepo
	app.Advisor = adv
	app.ProfilesService = profileSvc
	app.SavesService = saveSvc
	app.ReportsService = reportSvc
	app.ReportProcessor = reportSvc
	app.UsageService = usageSvc
	app.UsersService = userSvc
	app.AccountService = accountSvc
	app.ProfilesHandler = profiles.NewHandler(profileSvc)
	app.SavesHandler = saves.NewHandler(saveSvc)
	app.ReportsHandler = reports.NewHandler(reportSvc)
	app.RecommendHandler = recommend.NewHandler(profileSvc, adv, usageSvc, app.Tables)
	app.UsageHandler = usage.NewHandler(usageSvc, profileSvc, app.Tables)
	app.UsersHandler = users.NewHandler(userSvc)
	app.AccountHandler = account.NewHandler(accountSvc)
	app.UploadsHandler = uploadsHandler
	app.GoogleAuth = googleAuthSvc

	if app.ProfilesHandler == nil || app.ReportsHandler == nil || app.UsageHandler == nil {
		return errors.New("failed to initialize handlers")
	}

	return nil
}

func buildLLM(ctx context.Context, cfg config.Config) (llm.Client, error) {
	switch cfg.LLMProvider {
	case "openai":
		return openai.NewClient(os.Getenv("OPENAI_API_KEY"), cfg.LLMModel)
	case "gemini":
		return gemini.NewClient(ctx, os.Getenv("GEMINI_API_KEY"), cfg.LLMModel)
	default:
		return llm.PlaceholderClient{}, nil
	}
}
