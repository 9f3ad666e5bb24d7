// Package main runs the simple-verify service: credential verification with
// an optional second factor over email codes or authenticator TOTP.
//
// By default everything runs in memory with seeded demo accounts, so the
// service works without a database. Set PERSISTENCE=postgres (or file) for
// durable storage.
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/google/uuid"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/tendant/chi-demo/app"
	"github.com/tendant/cors"
	"github.com/tendant/simple-verify/pkg/config"
	"github.com/tendant/simple-verify/pkg/login"
	"github.com/tendant/simple-verify/pkg/notice"
	"github.com/tendant/simple-verify/pkg/session"
	"github.com/tendant/simple-verify/pkg/tokengenerator"
	"github.com/tendant/simple-verify/pkg/twofa"
	"github.com/tendant/simple-verify/pkg/verification"
	"github.com/tendant/simple-verify/pkg/verification/api"
)

// demoTotpSecret lets the seeded authenticator account be added to any TOTP
// app for local testing.
const demoTotpSecret = "JBSWY3DPEHPK3PXP"

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment")
	}

	cfg := config.AppConfig{}
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		slog.Error("Failed reading config from env", "err", err)
		os.Exit(-1)
	}

	loginRepo, twoFaRepo := setupRepositories(cfg)

	notificationManager, err := notice.NewNotificationManager(cfg.BaseUrl, cfg.Email.ToSMTPConfig())
	if err != nil {
		slog.Error("Failed creating notification manager", "err", err)
		os.Exit(-1)
	}

	loginService := login.NewLoginService(loginRepo)
	twoFaService := twofa.NewTwoFaService(twoFaRepo, notificationManager, loginService,
		twofa.WithCodeTTL(cfg.TwoFa.CodeTTL()),
	)

	tokenGenerator := tokengenerator.NewJwtTokenGenerator(cfg.Jwt.Secret, cfg.Jwt.Issuer, cfg.Jwt.Audience)
	tokenService := tokengenerator.NewTokenService(tokenGenerator,
		tokengenerator.WithAccessTokenExpiry(time.Duration(cfg.Jwt.AccessTokenExpiry)*time.Second),
		tokengenerator.WithCookieSetter(tokengenerator.NewCookieSetter(true, false)),
	)
	jwtAuth := jwtauth.New("HS256", []byte(cfg.Jwt.Secret), nil)

	registry := api.NewRegistry(func(store *session.Store) *verification.Controller {
		return verification.NewController(loginService, twoFaService, store,
			verification.WithChallengeTTL(cfg.TwoFa.CodeTTL()),
			verification.WithResendCooldown(cfg.TwoFa.ResendCooldown()),
			verification.OnVerifySuccess(func(user login.User) {
				slog.Info("User fully verified", "userID", user.ID, "email", user.Email)
			}),
		)
	})

	server := app.NewApp(
		app.WithPort(int(cfg.Server.Port)),
		app.WithCORS(&cors.Options{
			AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:3000"},
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "Authorization"},
			ExposedHeaders:   []string{"Link"},
			AllowCredentials: true,
			MaxAge:           300,
		}),
	)

	app.RegisterHealthzRoutes(server.R)
	api.Routes(server.R, api.NewHandle(registry, tokenService, jwtAuth))

	slog.Info("simple-verify ready", "addr", cfg.Server.Addr(), "persistence", cfg.Persistence)
	server.Run()
}

// setupRepositories selects the storage backend from config.
func setupRepositories(cfg config.AppConfig) (login.LoginRepository, twofa.TwoFARepository) {
	switch cfg.Persistence {
	case "postgres":
		pool, err := pgxpool.New(context.Background(), cfg.Database.URL())
		if err != nil {
			slog.Error("Failed creating db pool", "host", cfg.Database.Host, "db", cfg.Database.Database, "err", err)
			os.Exit(-1)
		}
		return login.NewPostgresLoginRepository(pool), twofa.NewPostgresTwoFARepository(pool)
	case "file":
		loginRepo := login.NewInMemoryLoginRepository()
		seedDemoUsers(loginRepo, nil)
		twoFaRepo, err := twofa.NewFileTwoFARepository(cfg.DataDir + "/twofa.json")
		if err != nil {
			slog.Error("Failed opening twofa store", "dir", cfg.DataDir, "err", err)
			os.Exit(-1)
		}
		if _, err := twoFaRepo.GetTotpSecret(context.Background(), demoUserID("totp@example.com")); err != nil {
			_ = twoFaRepo.SetTotpSecret(context.Background(), demoUserID("totp@example.com"), demoTotpSecret)
		}
		return loginRepo, twoFaRepo
	default:
		loginRepo := login.NewInMemoryLoginRepository()
		twoFaRepo := twofa.NewInMemTwoFARepository()
		seedDemoUsers(loginRepo, twoFaRepo)
		return loginRepo, twoFaRepo
	}
}

// demoUserID derives a stable id per seeded email so file persistence
// survives restarts.
func demoUserID(email string) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(email))
}

// seedDemoUsers registers three accounts covering each flow: no second
// factor, email codes, and an enrolled authenticator.
func seedDemoUsers(loginRepo *login.InMemoryLoginRepository, twoFaRepo *twofa.InMemTwoFARepository) {
	hash, err := login.HashPassword("password123")
	if err != nil {
		slog.Error("Failed hashing seed password", "err", err)
		os.Exit(-1)
	}

	seed := func(email string, twoFactor bool, totpSecret string) {
		id := demoUserID(email)
		loginRepo.SeedLogin(login.LoginEntity{
			ID:            id,
			Email:         email,
			EmailVerified: true,
			Password:      []byte(hash),
			CreatedAt:     time.Now().UTC(),
			UpdatedAt:     time.Now().UTC(),
		})
		loginRepo.SeedProfile(login.ProfileEntity{
			UserID:           id,
			DisplayName:      email,
			DisplayNameValid: true,
			TwoFactorEnabled: twoFactor,
			TotpSecret:       totpSecret,
			TotpSecretValid:  totpSecret != "",
			CreatedAt:        time.Now().UTC(),
		})
		if totpSecret != "" && twoFaRepo != nil {
			twoFaRepo.SeedTotpSecret(id, totpSecret)
		}
	}

	seed("basic@example.com", false, "")
	seed("email2fa@example.com", true, "")
	seed("totp@example.com", true, demoTotpSecret)

	slog.Info("Seeded demo users", "password", "password123",
		"accounts", "basic@example.com email2fa@example.com totp@example.com",
		"totpSecret", demoTotpSecret)
}
