// Command seeduser creates a staff account from the command line, for
// bootstrapping a fresh installation.
package main

import (
	"context"
	"flag"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"caixapos/internal/config"
	"caixapos/internal/infra"
	"caixapos/internal/model"
	"caixapos/internal/repository"
)

func main() {
	username := flag.String("username", "", "login username")
	name := flag.String("name", "", "display name")
	password := flag.String("password", "", "plain password (hashed before storing)")
	role := flag.String("role", "atendente", "atendente | gerente | administrador")
	storeID := flag.String("store", "", "store UUID the user belongs to")
	flag.Parse()

	if *username == "" || *password == "" || *storeID == "" {
		log.Fatal().Msg("username, password and store are required")
	}
	store, err := uuid.Parse(*storeID)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid store id")
	}
	if *name == "" {
		*name = *username
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}
	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal().Err(err).Msg("password hash failed")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	user := &model.User{
		Username:     *username,
		Name:         *name,
		PasswordHash: string(hash),
		Role:         *role,
		StoreID:      store,
		Active:       true,
	}
	if err := repository.NewUserRepository(db).Create(ctx, user); err != nil {
		log.Fatal().Err(err).Msg("user creation failed")
	}
	log.Info().Str("id", user.ID.String()).Str("username", user.Username).Msg("user created")
}
