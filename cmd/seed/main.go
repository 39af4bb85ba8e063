package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/venturelink/venturelink-backend/config"
	"github.com/venturelink/venturelink-backend/internal/app/model"
	"github.com/venturelink/venturelink-backend/internal/app/repository"
	"github.com/venturelink/venturelink-backend/internal/db"
	"github.com/xuri/excelize/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Bulk-imports business profiles from a directory XLSX export.
// Expected columns: Name, Registration Number, Sector, Subsector,
// Description, Website, Owner Email. Owners that do not exist yet are
// created as unclaimed business accounts with a random password.
func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: go run cmd/seed/main.go <xlsx_file_path>")
	}

	filePath := os.Args[1]

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	if err := db.Initialize(&cfg.Database); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	businessRepo := repository.NewBusinessRepository(db.GetDB())
	userRepo := repository.NewUserRepository(db.GetDB())

	fmt.Printf("Reading XLSX file: %s\n", filePath)
	rows, err := readRows(filePath)
	if err != nil {
		log.Fatal("Failed to read XLSX:", err)
	}

	businesses, skipped, err := buildBusinesses(rows, userRepo)
	if err != nil {
		log.Fatal("Failed to prepare import:", err)
	}

	fmt.Printf("\nSummary:\n")
	fmt.Printf("  Total rows: %d\n", len(rows)-1)
	fmt.Printf("  Valid businesses: %d\n", len(businesses))
	fmt.Printf("  Skipped rows: %d\n", skipped)

	if len(businesses) == 0 {
		fmt.Println("Nothing to import.")
		return
	}

	fmt.Print("Do you want to proceed with the import? (yes/no): ")
	var confirm string
	fmt.Scanln(&confirm)
	if confirm != "yes" && confirm != "y" {
		fmt.Println("Import cancelled.")
		return
	}

	batchSize := 500
	fmt.Printf("Starting bulk import with batch size: %d\n", batchSize)
	if err := businessRepo.BulkCreate(businesses, batchSize); err != nil {
		log.Fatal("Failed to bulk create businesses:", err)
	}

	fmt.Println("Import completed successfully!")
	fmt.Printf("Total businesses imported: %d\n", len(businesses))
}

func readRows(filePath string) ([][]string, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("no sheets found in XLSX file")
	}

	fmt.Printf("Reading sheet: %s\n", sheetName)

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no data found in XLSX file")
	}

	return rows, nil
}

func buildBusinesses(rows [][]string, userRepo repository.UserRepository) ([]model.BusinessProfile, int, error) {
	var businesses []model.BusinessProfile
	seenRegistrations := make(map[string]bool)
	ownersByEmail := make(map[string]uint)
	skipped := 0

	for i, row := range rows {
		if i == 0 {
			fmt.Printf("Headers: %v\n", row)
			continue
		}

		if len(row) < 7 {
			skipped++
			continue
		}

		name := strings.TrimSpace(row[0])
		registrationNumber := strings.TrimSpace(row[1])
		sector := strings.TrimSpace(row[2])
		subsector := strings.TrimSpace(row[3])
		description := strings.TrimSpace(row[4])
		website := strings.TrimSpace(row[5])
		ownerEmail := strings.ToLower(strings.TrimSpace(row[6]))

		if name == "" || registrationNumber == "" || sector == "" || ownerEmail == "" {
			skipped++
			continue
		}

		if !isValidBusinessName(name) {
			skipped++
			continue
		}

		if seenRegistrations[registrationNumber] {
			skipped++
			continue
		}
		seenRegistrations[registrationNumber] = true

		ownerID, ok := ownersByEmail[ownerEmail]
		if !ok {
			var err error
			ownerID, err = resolveOwner(userRepo, ownerEmail, name)
			if err != nil {
				return nil, 0, fmt.Errorf("failed to resolve owner %s: %w", ownerEmail, err)
			}
			ownersByEmail[ownerEmail] = ownerID
		}

		businesses = append(businesses, model.BusinessProfile{
			OwnerID:            ownerID,
			Name:               name,
			RegistrationNumber: registrationNumber,
			Sector:             sector,
			Subsector:          subsector,
			Description:        description,
			Website:            website,
		})

		if len(businesses)%500 == 0 {
			fmt.Printf("Processed %d businesses...\n", len(businesses))
		}
	}

	return businesses, skipped, nil
}

// resolveOwner finds the account for an owner email or creates an
// unclaimed business account with a random password.
func resolveOwner(userRepo repository.UserRepository, email, businessName string) (uint, error) {
	existing, err := userRepo.FindByEmail(email)
	if err == nil {
		return existing.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), bcrypt.DefaultCost)
	if err != nil {
		return 0, err
	}

	user := &model.User{
		Email:        email,
		PasswordHash: string(hash),
		Name:         businessName,
		Role:         model.RoleBusiness,
	}
	if err := userRepo.Create(user); err != nil {
		return 0, err
	}

	return user.ID, nil
}

// isValidBusinessName filters out junk directory rows
func isValidBusinessName(name string) bool {
	if len([]rune(name)) < 3 {
		return false
	}

	numOnlyReg := regexp.MustCompile(`^[0-9]+$`)
	if numOnlyReg.MatchString(name) {
		return false
	}

	specialOnlyReg := regexp.MustCompile(`^[\p{P}\p{S}\s]+$`)
	return !specialOnlyReg.MatchString(name)
}
