package main

import (
	"context"
	"database/sql"
	"flag"
	"io/fs"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"github.com/uptrace/bun/migrate"

	contacts "github.com/contactio/go-contacts"
	"github.com/contactio/go-contacts/addressbook"
	"github.com/contactio/go-contacts/avatar"
	"github.com/contactio/go-contacts/notify"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := contacts.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db, err := openDatabase(ctx, cfg.DB.DSN)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	accounts := contacts.NewAccountsRepository(db)
	auther := contacts.NewAuthenticator(accounts, cfg)

	if cfg.SMTP.Enabled() {
		dispatcher, err := notify.NewSMTPDispatcher(cfg.SMTP)
		if err != nil {
			log.Fatalf("failed to create mail dispatcher: %v", err)
		}
		auther.WithDispatcher(dispatcher)
	}

	controllerOpts := []contacts.AuthControllerOption{}
	if cfg.Avatars.Enabled() {
		store, err := avatar.NewS3Store(ctx, cfg.Avatars)
		if err != nil {
			log.Fatalf("failed to create avatar store: %v", err)
		}
		controllerOpts = append(controllerOpts, contacts.WithAvatarStore(store))
	}

	authController := contacts.NewAuthController(auther, accounts, controllerOpts...)

	app := fiber.New(fiber.Config{
		AppName:      "contactsd",
		ErrorHandler: contacts.HTTPErrorHandler,
	})

	api := app.Group("/api")
	authController.RegisterRoutes(api)

	protected := api.Group("/", authController.ProtectedRoute())
	book := addressbook.NewController(
		addressbook.NewContactsRepository(db),
		contacts.OwnerResolver(),
	)
	book.RegisterRoutes(protected)

	go func() {
		if err := app.Listen(cfg.Server.Addr); err != nil {
			log.Printf("server stopped: %v", err)
			stop()
		}
	}()

	<-ctx.Done()

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}

func openDatabase(ctx context.Context, dsn string) (*bun.DB, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return nil, err
	}

	db := bun.NewDB(sqldb, sqlitedialect.New())

	if err := applyMigrations(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

func applyMigrations(ctx context.Context, db *bun.DB) error {
	sqlFS, err := fs.Sub(contacts.GetMigrationsFS(), "data/sql/migrations")
	if err != nil {
		return err
	}

	migrations := migrate.NewMigrations()
	if err := migrations.Discover(sqlFS); err != nil {
		return err
	}

	migrator := migrate.NewMigrator(db, migrations)
	if err := migrator.Init(ctx); err != nil {
		return err
	}

	if _, err := migrator.Migrate(ctx); err != nil {
		return err
	}

	return nil
}
