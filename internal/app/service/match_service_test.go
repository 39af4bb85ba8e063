package service

import (
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/venturelink/venturelink-backend/internal/app/model"
	"github.com/venturelink/venturelink-backend/internal/app/repository"
	"github.com/venturelink/venturelink-backend/internal/db"
	"gorm.io/gorm"
)

type matchTestEnv struct {
	db       *gorm.DB
	matches  MatchService
	investor *model.User
	owner    *model.User
}

func setupMatchTest(t *testing.T) *matchTestEnv {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	businessRepo := repository.NewBusinessRepository(testDB)
	documentRepo := repository.NewDocumentRepository(testDB)
	matchRepo := repository.NewMatchRepository(testDB)
	userRepo := repository.NewUserRepository(testDB)

	verificationService := NewVerificationService(businessRepo, documentRepo, weightedTestCatalog(), nil)
	matchService := NewMatchService(matchRepo, userRepo, businessRepo, verificationService)

	investor := &model.User{
		Email:            "investor@example.com",
		PasswordHash:     "hash",
		Name:             "Investor",
		Role:             model.RoleInvestor,
		PreferredSectors: pq.StringArray{"finance"},
	}
	testDB.Create(investor)

	owner := &model.User{Email: "owner@example.com", PasswordHash: "hash", Name: "Owner", Role: model.RoleBusiness}
	testDB.Create(owner)

	return &matchTestEnv{
		db:       testDB,
		matches:  matchService,
		investor: investor,
		owner:    owner,
	}
}

func (env *matchTestEnv) createBusiness(t *testing.T, name, registration, sector string, verified bool) *model.BusinessProfile {
	business := &model.BusinessProfile{
		OwnerID:            env.owner.ID,
		Name:               name,
		RegistrationNumber: registration,
		Sector:             sector,
		Subsector:          "fintech",
	}
	require.NoError(t, env.db.Create(business).Error)

	if verified {
		createVerifiedDocument(t, env.db, business.ID, "certificate_of_incorporation", model.DocumentCategoryCore)
		createVerifiedDocument(t, env.db, business.ID, "tax_clearance", model.DocumentCategoryCore)
		createVerifiedDocument(t, env.db, business.ID, "regulatory_license", model.DocumentCategorySectorSpecific)
	}

	return business
}

func TestMatchService_GenerateSuggestions(t *testing.T) {
	env := setupMatchTest(t)

	investable := env.createBusiness(t, "Acme Payments", "RC-100200", "finance", true)
	env.createBusiness(t, "Unverified Lending", "RC-100201", "finance", false)
	env.createBusiness(t, "Offsector Farms", "RC-100202", "agriculture", true)

	suggestions, err := env.matches.GenerateSuggestions(env.investor.ID)
	require.NoError(t, err)

	// Only the verified in-sector business qualifies:
	// 40 sector points + 60 * 100 / 100 verification points
	require.Len(t, suggestions, 1)
	assert.Equal(t, investable.ID, suggestions[0].BusinessID)
	assert.Equal(t, 100, suggestions[0].Score)
	assert.Equal(t, model.MatchStatusSuggested, suggestions[0].Status)
}

func TestMatchService_GenerateSuggestions_SkipsOwnBusiness(t *testing.T) {
	env := setupMatchTest(t)

	// Give the investor their own verified business in the preferred sector
	own := &model.BusinessProfile{
		OwnerID:            env.investor.ID,
		Name:               "Self Capital",
		RegistrationNumber: "RC-500600",
		Sector:             "finance",
		Subsector:          "fintech",
	}
	require.NoError(t, env.db.Create(own).Error)
	createVerifiedDocument(t, env.db, own.ID, "certificate_of_incorporation", model.DocumentCategoryCore)
	createVerifiedDocument(t, env.db, own.ID, "tax_clearance", model.DocumentCategoryCore)
	createVerifiedDocument(t, env.db, own.ID, "regulatory_license", model.DocumentCategorySectorSpecific)

	suggestions, err := env.matches.GenerateSuggestions(env.investor.ID)
	require.NoError(t, err)
	assert.Empty(t, suggestions)
}

func TestMatchService_GenerateSuggestions_NeverDowngrades(t *testing.T) {
	env := setupMatchTest(t)

	business := env.createBusiness(t, "Acme Payments", "RC-100200", "finance", true)

	first, err := env.matches.GenerateSuggestions(env.investor.ID)
	require.NoError(t, err)
	require.Len(t, first, 1)

	// Dismiss, then regenerate: the dismissed row must stay dismissed
	require.NoError(t, env.matches.DismissSuggestion(env.investor.ID, first[0].ID))

	again, err := env.matches.GenerateSuggestions(env.investor.ID)
	require.NoError(t, err)
	assert.Empty(t, again)

	var row model.MatchSuggestion
	require.NoError(t, env.db.Where("business_id = ?", business.ID).First(&row).Error)
	assert.Equal(t, model.MatchStatusDismissed, row.Status)

	// And no duplicate row was created
	var count int64
	env.db.Model(&model.MatchSuggestion{}).Where("investor_id = ?", env.investor.ID).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestMatchService_GenerateSuggestions_UnknownInvestor(t *testing.T) {
	env := setupMatchTest(t)

	_, err := env.matches.GenerateSuggestions(9999)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestMatchService_DismissSuggestion_AccessControl(t *testing.T) {
	env := setupMatchTest(t)

	env.createBusiness(t, "Acme Payments", "RC-100200", "finance", true)

	suggestions, err := env.matches.GenerateSuggestions(env.investor.ID)
	require.NoError(t, err)
	require.Len(t, suggestions, 1)

	other := &model.User{Email: "other@example.com", PasswordHash: "hash", Name: "Other", Role: model.RoleInvestor}
	env.db.Create(other)

	err = env.matches.DismissSuggestion(other.ID, suggestions[0].ID)
	assert.ErrorIs(t, err, ErrMatchAccessDenied)

	err = env.matches.DismissSuggestion(env.investor.ID, 9999)
	assert.ErrorIs(t, err, ErrMatchNotFound)
}
