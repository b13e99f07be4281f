// Command seed creates a database populated with sample catalogue and member
// data for local development.
// Usage: go run cmd/seed/main.go [-db path/to/library.db]
package main

import (
	"flag"
	"log"
	"os"
	"time"

	"github.com/derkdev976-web/davel-library-sub001/internal/auth"
	"github.com/derkdev976-web/davel-library-sub001/internal/config"
	"github.com/derkdev976-web/davel-library-sub001/internal/database"
	"github.com/derkdev976-web/davel-library-sub001/internal/database/books"
	"github.com/derkdev976-web/davel-library-sub001/internal/database/news"
	"github.com/derkdev976-web/davel-library-sub001/internal/database/reservations"
	"github.com/derkdev976-web/davel-library-sub001/internal/entities"
)

const defaultSeedDatabasePath = "./davel-library.db"

func main() {
	dbPath := flag.String("db", defaultSeedDatabasePath, "path to the database file")
	flag.Parse()

	log.Printf("Generating seed database at %s...", *dbPath)

	// Delete existing database to start fresh
	if err := os.Remove(*dbPath); err != nil && !os.IsNotExist(err) {
		log.Fatalf("Failed to remove existing database: %v", err)
	}

	db, err := database.NewDatabase(*dbPath)
	if err != nil {
		log.Fatalf("Failed to create database: %v", err)
	}
	defer db.Close()

	cfg := config.NewConfig()
	service := auth.NewService(db.DB, cfg.Auth)

	accounts := []struct {
		name     string
		email    string
		password string
		role     entities.UserRole
	}{
		{"Ada Admin", "admin@davel.example", "admin-password-1", entities.UserRoleAdmin},
		{"Lou Librarian", "librarian@davel.example", "librarian-pass-1", entities.UserRoleLibrarian},
		{"Mary Member", "mary@davel.example", "member-password-1", entities.UserRoleMember},
		{"Milo Member", "milo@davel.example", "member-password-2", entities.UserRoleMember},
	}

	users := make(map[string]*entities.User)
	for _, account := range accounts {
		user, err := service.CreateUser(account.name, account.email, account.password, account.role)
		if err != nil {
			log.Fatalf("Failed to create user %s: %v", account.email, err)
		}
		users[account.email] = user
		log.Printf("Created %s account: %s", account.role, account.email)
	}

	booksRepo := books.NewRepository(db.DB)
	catalogue := []entities.Book{
		{Title: "The Old Man and the Sea", Author: "Ernest Hemingway", Category: "Fiction", PublicationYear: 1952, TotalCopies: 3},
		{Title: "A Brief History of Time", Author: "Stephen Hawking", Category: "Science", PublicationYear: 1988, TotalCopies: 2},
		{Title: "Meditations", Author: "Marcus Aurelius", Category: "Philosophy", PublicationYear: 180, TotalCopies: 1},
		{Title: "The Pragmatic Programmer", Author: "Andrew Hunt", Category: "Technology", PublicationYear: 1999, TotalCopies: 2},
		{Title: "Pride and Prejudice", Author: "Jane Austen", Category: "Fiction", PublicationYear: 1813, TotalCopies: 4},
	}
	for i := range catalogue {
		if err := booksRepo.CreateBook(&catalogue[i]); err != nil {
			log.Fatalf("Failed to create book %s: %v", catalogue[i].Title, err)
		}
		log.Printf("Added: %s by %s", catalogue[i].Title, catalogue[i].Author)
	}

	reservationsRepo := reservations.NewRepository(db.DB)
	for _, email := range []string{"mary@davel.example", "milo@davel.example"} {
		reservation, err := reservationsRepo.CreateReservation(users[email].ID, catalogue[0].ID, "seeded reservation")
		if err != nil {
			log.Fatalf("Failed to create reservation for %s: %v", email, err)
		}
		log.Printf("Created reservation %s for %s", reservation.Reference, email)
	}

	newsRepo := news.NewRepository(db.DB)
	post := &entities.NewsPost{
		AuthorID: users["librarian@davel.example"].ID,
		Title:    "Welcome to the Davel Library",
		Body:     "Our new online catalogue is live. Reserve books, book study rooms and keep track of your loans.",
	}
	if err := newsRepo.CreatePost(post); err != nil {
		log.Fatalf("Failed to create news post: %v", err)
	}
	if _, err := newsRepo.PublishPost(post.ID); err != nil {
		log.Fatalf("Failed to publish news post: %v", err)
	}

	log.Printf("Seed database generated successfully at %s (%s)", *dbPath, time.Now().Format(time.RFC1123))
}
