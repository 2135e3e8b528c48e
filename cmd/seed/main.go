package main

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"golang.org/x/crypto/bcrypt"

	"stayhub/internal/config"
	"stayhub/internal/database"
	"stayhub/internal/domain"
)

func main() {
	cfg := config.Load()

	db, err := database.Connect(cfg.Database.DSN)
	if err != nil {
		log.Fatal("DB connection failed:", err)
	}

	log.Println("Running AutoMigrate...")
	if err := db.AutoMigrate(
		&domain.User{},
		&domain.Property{},
		&domain.Reservation{},
		&domain.Transaction{},
		&domain.Notification{},
		&domain.Review{},
		&domain.Favorite{},
	); err != nil {
		log.Fatal("AutoMigrate failed:", err)
	}

	if err := database.EnsureConstraints(db); err != nil {
		log.Fatal("Constraint setup failed:", err)
	}

	// Cleanup old data (in safe order to avoid foreign key errors)
	log.Println("Cleaning old data...")
	db.Exec("DELETE FROM notifications")
	db.Exec("DELETE FROM favorites")
	db.Exec("DELETE FROM reviews")
	db.Exec("DELETE FROM transactions")
	db.Exec("DELETE FROM reservations")
	db.Exec("DELETE FROM properties")
	db.Exec("DELETE FROM users")

	// ================== USERS ==================
	log.Println("Creating users...")

	adminHash, _ := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
	admin := domain.User{
		Email:        "admin@stayhub.io",
		PasswordHash: string(adminHash),
		Role:         domain.RoleAdmin,
		Name:         "Admin",
	}
	db.Create(&admin)
	log.Println("Admin created: admin@stayhub.io / admin123")

	guests := []domain.User{}
	guestEmails := []string{"alice@example.com", "bob@example.com", "carol@example.com"}
	for i, email := range guestEmails {
		hash, _ := bcrypt.GenerateFromPassword([]byte("guest123"), bcrypt.DefaultCost)
		guest := domain.User{
			Email:        email,
			PasswordHash: string(hash),
			Role:         domain.RoleGuest,
			Name:         fmt.Sprintf("Guest %d", i+1),
			Phone:        fmt.Sprintf("+1 555 010 00%02d", i+1),
		}
		db.Create(&guest)
		guests = append(guests, guest)
	}

	hosts := []domain.User{}
	hostEmails := []string{"marta@stays.example", "diego@stays.example"}
	for i, email := range hostEmails {
		hash, _ := bcrypt.GenerateFromPassword([]byte("host123"), bcrypt.DefaultCost)
		host := domain.User{
			Email:        email,
			PasswordHash: string(hash),
			Role:         domain.RoleHost,
			Name:         fmt.Sprintf("Host %d", i+1),
			Phone:        fmt.Sprintf("+1 555 020 00%02d", i+1),
		}
		db.Create(&host)
		hosts = append(hosts, host)
	}

	// ================== PROPERTIES ==================
	log.Println("Creating properties...")
	cities := []struct {
		City    string
		Country string
	}{
		{"Lisbon", "Portugal"},
		{"Barcelona", "Spain"},
		{"Berlin", "Germany"},
		{"Prague", "Czechia"},
		{"Amsterdam", "Netherlands"},
	}
	propertyTypes := []domain.PropertyType{
		domain.PropertyEntirePlace,
		domain.PropertyPrivateRoom,
		domain.PropertySharedRoom,
	}

	properties := make([]domain.Property, 0, 6)
	for i := 0; i < 6; i++ {
		host := hosts[i%len(hosts)]
		loc := cities[i%len(cities)]
		p := domain.Property{
			HostID:        host.ID,
			Title:         fmt.Sprintf("Sunny apartment %d", i+1),
			Description:   "Bright, walkable, close to everything.",
			PropertyType:  propertyTypes[i%len(propertyTypes)],
			Address:       fmt.Sprintf("%d Main Street", 10+i),
			City:          loc.City,
			Country:       loc.Country,
			MaxGuests:     2 + rand.Intn(4),
			Bedrooms:      1 + rand.Intn(3),
			Bathrooms:     1 + rand.Intn(2),
			PricePerNight: float64(60 + rand.Intn(140)),
			Currency:      "USD",
			Amenities:     []string{"wifi", "kitchen", "washer"},
			Photos:        []string{fmt.Sprintf("/static/properties/demo%d.jpg", i+1)},
			IsActive:      true,
		}
		db.Create(&p)
		properties = append(properties, p)
	}

	// ================== RESERVATIONS ==================
	log.Println("Creating reservations...")
	now := time.Now()
	for i, p := range properties[:3] {
		guest := guests[i%len(guests)]
		checkIn := now.AddDate(0, 0, 7*(i+1))
		checkOut := checkIn.AddDate(0, 0, 3)
		res := domain.Reservation{
			PropertyID:    p.ID,
			UserID:        guest.ID,
			HostID:        p.HostID,
			CheckIn:       checkIn,
			CheckOut:      checkOut,
			Guests:        2,
			TotalPrice:    p.PricePerNight * 3 * 1.25,
			Currency:      p.Currency,
			Status:        domain.ReservationConfirmed,
			PaymentStatus: domain.PaymentPaid,
		}
		db.Create(&res)
	}

	// A completed past stay so review gating has something to chew on.
	pastIn := now.AddDate(0, -1, 0)
	pastOut := pastIn.AddDate(0, 0, 4)
	db.Create(&domain.Reservation{
		PropertyID:    properties[0].ID,
		UserID:        guests[0].ID,
		HostID:        properties[0].HostID,
		CheckIn:       pastIn,
		CheckOut:      pastOut,
		Guests:        2,
		TotalPrice:    properties[0].PricePerNight * 4 * 1.25,
		Currency:      properties[0].Currency,
		Status:        domain.ReservationConfirmed,
		PaymentStatus: domain.PaymentPaid,
	})

	log.Println("Seed complete.")
}
