package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	firebase "firebase.google.com/go/v4"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/skyon-community/skyon-backend/config"
	"github.com/skyon-community/skyon-backend/internal/acl"
	"github.com/skyon-community/skyon-backend/internal/audit"
	"github.com/skyon-community/skyon-backend/internal/auth"
	"github.com/skyon-community/skyon-backend/internal/auth/repository"
	"github.com/skyon-community/skyon-backend/internal/auth/service"
	"github.com/skyon-community/skyon-backend/internal/docstore"
	"github.com/skyon-community/skyon-backend/internal/features/bazaar"
	"github.com/skyon-community/skyon-backend/internal/features/crud"
	"github.com/skyon-community/skyon-backend/internal/features/dishes"
	"github.com/skyon-community/skyon-backend/internal/features/events"
	"github.com/skyon-community/skyon-backend/internal/features/lostfound"
	"github.com/skyon-community/skyon-backend/internal/features/marketplace"
	"github.com/skyon-community/skyon-backend/internal/features/medical"
	"github.com/skyon-community/skyon-backend/internal/features/parking"
	"github.com/skyon-community/skyon-backend/internal/features/transport"
	"github.com/skyon-community/skyon-backend/internal/features/vendors"
	"github.com/skyon-community/skyon-backend/internal/suggest"
	"github.com/skyon-community/skyon-backend/internal/upload"
)

// Features holds one service per feature module.
type Features struct {
	Marketplace *marketplace.Service
	Bazaar      *bazaar.Service
	Dishes      *dishes.Service
	Vendors     *vendors.Service
	Events      *events.Service
	LostFound   *lostfound.Service
	Medical     *medical.Service
	Transport   *transport.Service
	Parking     *parking.Service
}

// App is the wired service graph shared by the API server and the worker.
type App struct {
	Config   *config.Config
	Log      *zap.Logger
	Location *time.Location

	DB    *pgxpool.Pool
	SQL   *sql.DB
	Redis *redis.Client
	Store *docstore.Client

	Admins   *acl.Admins
	Guard    *acl.Guard
	Audit    audit.Recorder
	Uploader upload.Uploader
	Auth     *service.AuthService
	Features Features

	closers []func()
}

// NewApp connects every configured dependency and builds the services on top. On error,
// whatever was already opened is closed.
func NewApp(ctx context.Context, cfg *config.Config, log *zap.Logger) (_ *App, err error) {
	a := &App{Config: cfg, Log: log}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	if a.Location, err = time.LoadLocation(cfg.Features.TimeZone); err != nil {
		return nil, fmt.Errorf("time zone: %w", err)
	}

	var fb *firebase.App
	if cfg.Firebase.CredentialsPath != "" {
		if fb, err = NewFirebaseApp(ctx, cfg.Firebase); err != nil {
			return nil, err
		}
	}

	if a.Redis, err = OpenRedis(ctx, cfg.Redis); err != nil {
		return nil, err
	}
	if a.Redis != nil {
		a.onClose(func() { _ = a.Redis.Close() })
	}

	if cfg.Database.DSN != "" {
		opts := DBOptions{DSN: cfg.Database.DSN}
		if a.DB, err = OpenDB(ctx, opts); err != nil {
			return nil, err
		}
		a.onClose(a.DB.Close)
		if a.SQL, err = OpenSQL(ctx, opts); err != nil {
			return nil, err
		}
		a.onClose(func() { _ = a.SQL.Close() })
	}

	if a.Store, err = OpenStore(ctx, cfg, fb, a.Redis, log); err != nil {
		return nil, err
	}

	policies, err := acl.LoadPolicies(cfg.Admin.PolicyFile)
	if err != nil {
		return nil, err
	}
	a.Admins = acl.NewAdmins(cfg.Admin.Emails, cfg.Admin.UIDs)
	if a.Admins.Len() == 0 {
		log.Warn("no admins configured; admin-moderated collections cannot be created")
	}
	a.Guard = acl.NewGuard(a.Admins, policies)

	a.Audit = audit.Nop{}
	if a.DB != nil {
		rec := audit.NewPostgresRecorder(a.DB)
		if err = rec.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		a.Audit = rec
	}

	if cfg.Cloudinary.CloudName != "" && cfg.Cloudinary.UploadPreset != "" {
		a.Uploader = upload.NewCloudinary(cfg.Cloudinary.CloudName, cfg.Cloudinary.UploadPreset,
			upload.WithMaxBytes(cfg.Cloudinary.MaxBytes),
			upload.WithLogger(log.Named("upload")),
		)
	} else {
		log.Warn("no image host configured; photo uploads will fail")
	}

	if a.Auth, err = a.authService(ctx, fb); err != nil {
		return nil, err
	}

	var model suggest.Model
	if cfg.Suggest.GeminiAPIKey != "" {
		gm, gerr := suggest.NewGeminiModel(ctx, cfg.Suggest.GeminiAPIKey, cfg.Suggest.GeminiModel)
		if gerr != nil {
			log.Warn("gemini unavailable, using keyword suggestions", zap.Error(gerr))
		} else {
			model = gm
		}
	}

	deps := crud.Deps{Client: a.Store, Guard: a.Guard, Uploader: a.Uploader, Audit: a.Audit, Log: log}
	a.Features = Features{
		Marketplace: marketplace.NewService(deps, suggest.New(model, log.Named("suggest"))),
		Bazaar:      bazaar.NewService(deps),
		Dishes:      dishes.NewService(deps, a.Location),
		Vendors:     vendors.NewService(deps),
		Events:      events.NewService(deps, cfg.Features.AtomicRSVP),
		LostFound:   lostfound.NewService(deps),
		Medical:     medical.NewService(deps),
		Transport:   transport.NewService(deps),
		Parking:     parking.NewService(deps, a.Location),
	}
	return a, nil
}

func (a *App) authService(ctx context.Context, fb *firebase.App) (*service.AuthService, error) {
	var provider auth.Provider = auth.DisabledProvider{}
	if fb != nil {
		client, err := fb.Auth(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get Auth client: %w", err)
		}
		provider = auth.NewFirebaseProvider(client)
	} else {
		a.Log.Warn("FIREBASE_CREDENTIALS_PATH not set; every sign-in will be rejected")
	}

	var profiles repository.ProfileRepository
	if a.SQL != nil {
		repo := repository.NewUserRepository(a.SQL)
		if err := repo.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		profiles = repo
	} else {
		profiles = repository.NewDocstoreProfileRepository(a.Store)
	}

	var hub auth.Hub = auth.NewLocalHub()
	if a.Redis != nil {
		hub = auth.NewRedisHub(a.Redis, a.Log.Named("identity"))
	}
	return service.NewAuthService(provider, profiles, hub, a.Log.Named("auth")), nil
}

func (a *App) onClose(fn func()) {
	a.closers = append(a.closers, fn)
}

// Close releases connections in reverse order of opening.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
