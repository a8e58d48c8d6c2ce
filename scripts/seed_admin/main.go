// Command seed_admin creates the first administrator account. Registration
// normally requires an invitation issued by an admin, so a fresh database
// needs this bootstrap step once.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/tafita2023/inata-api/internal/models"
	"github.com/tafita2023/inata-api/internal/repository"
	"github.com/tafita2023/inata-api/pkg/config"
	"github.com/tafita2023/inata-api/pkg/database"
)

func main() {
	var (
		email     string
		password  string
		firstName string
		lastName  string
	)

	flag.StringVar(&email, "email", "", "Admin email address")
	flag.StringVar(&password, "password", "", "Admin password")
	flag.StringVar(&firstName, "first-name", "Admin", "First name")
	flag.StringVar(&lastName, "last-name", "INATA", "Last name")
	flag.Parse()

	if email == "" || password == "" {
		log.Fatal("both -email and -password are required")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	users := repository.NewUserRepository(db)

	exists, err := users.ExistsByEmail(ctx, email, "")
	if err != nil {
		log.Fatalf("failed to check email: %v", err)
	}
	if exists {
		log.Fatalf("an account with email %s already exists", email)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	admin := &models.User{
		Email:        email,
		PasswordHash: string(hash),
		FirstName:    firstName,
		LastName:     lastName,
		Role:         models.RoleAdmin,
		Active:       true,
	}
	if err := users.Create(ctx, admin); err != nil {
		log.Fatalf("failed to create admin: %v", err)
	}

	fmt.Printf("admin account %s created (id %s)\n", email, admin.ID)
}
