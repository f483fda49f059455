package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/nginxforge/nginxforge/internal/database"
	"github.com/nginxforge/nginxforge/internal/models"
	"github.com/nginxforge/nginxforge/internal/nginx"
)

// Seeds the database with an admin user and a few sample sites so a fresh
// install has something to look at.
func main() {
	dbPath := os.Getenv("NGF_DB_PATH")
	if dbPath == "" {
		dbPath = "./data/nginxforge.db"
	}

	db, err := database.Open(dbPath)
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal("Failed to migrate database: ", err)
	}
	fmt.Println("✓ Database migrated successfully")

	// Sample sites: a plain static site and a proxied app with the knobs on
	static := nginx.DefaultConfig()
	static.ServerNames = []string{"www.example.com"}
	static.Performance.StaticCaching = true
	static.Performance.CacheDuration = "30d"

	app := nginx.DefaultConfig()
	app.ServerNames = []string{"app.example.com"}
	app.Proxy.Enabled = true
	app.Proxy.BackendAddress = "127.0.0.1:3000"
	app.Proxy.Websocket = true
	app.Proxy.ForwardRealIP = true
	app.Security.RateLimit = true
	app.Security.RateLimitRPS = 10
	app.Security.RateLimitBurst = 20

	samples := map[string]*nginx.ServerConfig{
		"static-demo": static,
		"app-demo":    app,
	}

	for name, model := range samples {
		data, err := json.Marshal(model)
		if err != nil {
			log.Printf("Failed to encode sample %s: %v", name, err)
			continue
		}
		site := models.Site{Name: name, Config: string(data), Enabled: true, LastScore: -1}
		result := db.Where("name = ?", name).FirstOrCreate(&site)
		if result.Error != nil {
			log.Printf("Failed to seed site %s: %v", name, result.Error)
		} else if result.RowsAffected > 0 {
			fmt.Printf("✓ Created site: %s\n", name)
		} else {
			fmt.Printf("  Site already exists: %s\n", name)
		}
	}

	// Default admin user
	adminEmail := os.Getenv("NGF_DEFAULT_ADMIN_EMAIL")
	if adminEmail == "" {
		adminEmail = "admin@localhost"
	}
	adminPassword := os.Getenv("NGF_DEFAULT_ADMIN_PASSWORD")

	var existing models.User
	if err := db.Where("email = ?", adminEmail).First(&existing).Error; err == nil {
		fmt.Printf("  User already exists: %s\n", adminEmail)
	} else {
		user := models.User{Email: adminEmail, Name: "Administrator", Role: "admin", Enabled: true}
		if adminPassword != "" {
			if err := user.SetPassword(adminPassword); err != nil {
				log.Printf("Failed to hash admin password: %v", err)
			}
		} else {
			// Placeholder hash; not loginable until reset-password is run
			user.PasswordHash = "$2a$10$example_hashed_password"
		}
		if err := db.Create(&user).Error; err != nil {
			log.Printf("Failed to seed user: %v", err)
		} else {
			fmt.Printf("✓ Created default user: %s\n", adminEmail)
		}
	}

	fmt.Println("\n✓ Database seeding completed successfully!")
}
