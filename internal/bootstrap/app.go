package bootstrap

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-studio-backend/internal/archive"
	"resume-studio-backend/internal/chat"
	"resume-studio-backend/internal/coverletters"
	"resume-studio-backend/internal/llm"
	openai "resume-studio-backend/internal/llm/openai"
	"resume-studio-backend/internal/resumes"
	"resume-studio-backend/internal/shared/config"
	"resume-studio-backend/internal/shared/server"
	"resume-studio-backend/internal/shared/storage/db"
	"resume-studio-backend/internal/shared/storage/object"
	localstore "resume-studio-backend/internal/shared/storage/object/local"
	s3store "resume-studio-backend/internal/shared/storage/object/s3"
	"resume-studio-backend/internal/updates"
)

// App holds shared dependencies.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB
	Store  object.ObjectStore

	Updates *updates.Broker
	Applier *updates.Applier

	ResumesRepo    resumes.Repo
	LettersRepo    coverletters.Repo
	ResumesService *resumes.Service
	LettersService *coverletters.Service
	ResumeHandler  *resumes.Handler
	LetterHandler  *coverletters.Handler
	ChatHandler    *chat.Handler
	LLM            llm.Client

	stopApplier func()
}

// Build prepares shared dependencies and wires the router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config:  cfg,
		DB:      sqlDB,
		Store:   store,
		Updates: updates.NewBroker(),
	}

	if err := buildServices(app); err != nil {
		return nil, err
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:        app.Config,
		ResumeHandler: app.ResumeHandler,
		LetterHandler: app.LetterHandler,
		ChatHandler:   app.ChatHandler,
		Updates:       app.Updates,
	})

	return app, nil
}

// Close stops the background applier and closes the database handle.
func (a *App) Close() {
	if a.stopApplier != nil {
		a.stopApplier()
	}
	if a.DB != nil {
		_ = a.DB.Close()
	}
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}

	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		_ = sqlDB.Close()
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

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}

func buildServices(app *App) error {
	var resumeRepo resumes.Repo
	var letterRepo coverletters.Repo
	if app.DB != nil {
		resumeRepo = &resumes.PGRepo{DB: app.DB}
		letterRepo = &coverletters.PGRepo{DB: app.DB}
	} else {
		resumeRepo = resumes.NewMemoryRepo()
		letterRepo = coverletters.NewMemoryRepo()
	}

	snapshots := archive.New(app.Store)

	resumeSvc := &resumes.Service{
		Repo:      resumeRepo,
		Snapshots: snapshots,
		Updates:   app.Updates,
	}
	letterSvc := &coverletters.Service{
		Repo:      letterRepo,
		Snapshots: snapshots,
		Updates:   app.Updates,
	}

	llmClient := llm.Client(llm.PlaceholderClient{})
	if app.Config.LLMProvider == "openai" && os.Getenv("OPENAI_API_KEY") != "" {
		openaiClient, err := openai.NewClient(os.Getenv("OPENAI_API_KEY"), app.Config.LLMModel)
		if err != nil {
			return err
		}
		llmClient = openaiClient
	}

	// Agent edits flow back into durable storage through the applier, which
	// drops structurally identical repeats before they hit the repos.
	applier := updates.NewApplier()
	applier.Register(updates.KindResume, func(ctx context.Context, docID string, doc json.RawMessage) error {
		return resumeSvc.ApplyAgentUpdate(ctx, doc)
	})
	applier.Register(updates.KindCoverLetter, func(ctx context.Context, docID string, doc json.RawMessage) error {
		return letterSvc.ApplyAgentUpdate(ctx, doc)
	})
	ch, cancel := app.Updates.SubscribeAll()
	applierCtx, stopApplier := context.WithCancel(context.Background())
	go applier.Run(applierCtx, ch)
	app.stopApplier = func() {
		cancel()
		stopApplier()
	}

	app.ResumesRepo = resumeRepo
	app.LettersRepo = letterRepo
	app.ResumesService = resumeSvc
	app.LettersService = letterSvc
	app.LLM = llmClient
	app.Applier = applier
	app.ResumeHandler = resumes.NewHandler(resumeSvc)
	app.LetterHandler = coverletters.NewHandler(letterSvc)
	app.ChatHandler = chat.NewHandler(llmClient, app.Updates, app.Config.ChatMaxSteps, app.Config.ChatTimeout)

	return nil
}
