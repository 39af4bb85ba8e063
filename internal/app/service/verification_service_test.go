package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/venturelink/venturelink-backend/internal/app/model"
	"github.com/venturelink/venturelink-backend/internal/app/repository"
	"github.com/venturelink/venturelink-backend/internal/catalog"
	"github.com/venturelink/venturelink-backend/internal/db"
	"gorm.io/gorm"
)

func setupVerificationTest(t *testing.T, cat catalog.Catalog) (VerificationService, *model.User, *model.BusinessProfile, *gorm.DB) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	businessRepo := repository.NewBusinessRepository(testDB)
	documentRepo := repository.NewDocumentRepository(testDB)
	verificationService := NewVerificationService(businessRepo, documentRepo, cat, nil)

	owner := &model.User{
		Email:        "owner@example.com",
		PasswordHash: "hash",
		Name:         "Business Owner",
		Role:         model.RoleBusiness,
	}
	testDB.Create(owner)

	business := &model.BusinessProfile{
		OwnerID:            owner.ID,
		Name:               "Acme Payments",
		RegistrationNumber: "RC-100200",
		Sector:             "finance",
		Subsector:          "fintech",
	}
	testDB.Create(business)

	return verificationService, owner, business, testDB
}

// Three document types weighted 40/30/30, one sector-specific.
func weightedTestCatalog() catalog.Catalog {
	core := []catalog.Requirement{
		{Type: "certificate_of_incorporation", Name: "Certificate of Incorporation", Category: model.DocumentCategoryCore, Weight: 40},
		{Type: "tax_clearance", Name: "Tax Clearance Certificate", Category: model.DocumentCategoryCore, Weight: 30},
	}
	bySubsector := map[string][]catalog.Requirement{
		"fintech": {
			{Type: "regulatory_license", Name: "Financial Services License", Category: model.DocumentCategorySectorSpecific, Weight: 30},
		},
	}
	return catalog.New(core, bySubsector)
}

func createVerifiedDocument(t *testing.T, testDB *gorm.DB, businessID uint, docType string, category model.DocumentCategory) *model.VerificationDocument {
	now := time.Now()
	doc := &model.VerificationDocument{
		BusinessID:   businessID,
		DocumentType: docType,
		Category:     category,
		FileURL:      "https://files.example.com/" + docType + ".pdf",
		FileName:     docType + ".pdf",
		Status:       model.DocumentStatusVerified,
		SubmittedAt:  now,
		VerifiedAt:   &now,
	}
	require.NoError(t, testDB.Create(doc).Error)
	return doc
}

func TestVerificationService_CalculateScore_NoDocuments(t *testing.T) {
	verificationService, _, business, _ := setupVerificationTest(t, weightedTestCatalog())

	score, err := verificationService.CalculateScore(business.ID)
	require.NoError(t, err)

	assert.Equal(t, 0, score.TotalPercentage)
	assert.Equal(t, TierBasic, score.Tier)
	assert.Equal(t, 0, score.VerifiedDocumentsCount)
	assert.Len(t, score.MissingCoreDocuments, 2)
	assert.Len(t, score.MissingSectorDocuments, 1)
}

func TestVerificationService_CalculateScore_PartialAndFull(t *testing.T) {
	verificationService, _, business, testDB := setupVerificationTest(t, weightedTestCatalog())

	// 40 + 30 of 100 verified
	createVerifiedDocument(t, testDB, business.ID, "certificate_of_incorporation", model.DocumentCategoryCore)
	createVerifiedDocument(t, testDB, business.ID, "tax_clearance", model.DocumentCategoryCore)

	score, err := verificationService.CalculateScore(business.ID)
	require.NoError(t, err)
	assert.Equal(t, 70, score.TotalPercentage)
	assert.Equal(t, TierVerified, score.Tier)
	assert.Equal(t, 2, score.VerifiedDocumentsCount)
	assert.Empty(t, score.MissingCoreDocuments)
	assert.Equal(t, []string{"Financial Services License"}, score.MissingSectorDocuments)

	// All three verified
	createVerifiedDocument(t, testDB, business.ID, "regulatory_license", model.DocumentCategorySectorSpecific)

	score, err = verificationService.CalculateScore(business.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, score.TotalPercentage)
	assert.Equal(t, TierPremium, score.Tier)
	assert.Empty(t, score.MissingSectorDocuments)
}

func TestVerificationService_CalculateScore_PendingAndRejectedDoNotCount(t *testing.T) {
	verificationService, _, business, testDB := setupVerificationTest(t, weightedTestCatalog())

	pending := &model.VerificationDocument{
		BusinessID:   business.ID,
		DocumentType: "certificate_of_incorporation",
		Category:     model.DocumentCategoryCore,
		FileURL:      "https://files.example.com/coi.pdf",
		Status:       model.DocumentStatusPending,
		SubmittedAt:  time.Now(),
	}
	require.NoError(t, testDB.Create(pending).Error)

	rejected := &model.VerificationDocument{
		BusinessID:   business.ID,
		DocumentType: "tax_clearance",
		Category:     model.DocumentCategoryCore,
		FileURL:      "https://files.example.com/tax.pdf",
		Status:       model.DocumentStatusRejected,
		SubmittedAt:  time.Now(),
	}
	require.NoError(t, testDB.Create(rejected).Error)

	score, err := verificationService.CalculateScore(business.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, score.TotalPercentage)
	assert.Equal(t, 0, score.VerifiedDocumentsCount)
}

func TestVerificationService_CalculateScore_LatestUploadWins(t *testing.T) {
	verificationService, _, business, testDB := setupVerificationTest(t, weightedTestCatalog())

	// Verified upload superseded by a newer pending re-upload
	old := createVerifiedDocument(t, testDB, business.ID, "certificate_of_incorporation", model.DocumentCategoryCore)
	require.NoError(t, testDB.Model(old).Update("created_at", time.Now().Add(-48*time.Hour)).Error)

	reupload := &model.VerificationDocument{
		BusinessID:   business.ID,
		DocumentType: "certificate_of_incorporation",
		Category:     model.DocumentCategoryCore,
		FileURL:      "https://files.example.com/coi-v2.pdf",
		Status:       model.DocumentStatusPending,
		SubmittedAt:  time.Now(),
	}
	require.NoError(t, testDB.Create(reupload).Error)

	score, err := verificationService.CalculateScore(business.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, score.TotalPercentage)
}

func TestVerificationService_CalculateScore_EmptyCatalogScoresFull(t *testing.T) {
	verificationService, _, business, _ := setupVerificationTest(t, catalog.New(nil, nil))

	score, err := verificationService.CalculateScore(business.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, score.TotalPercentage)
	assert.Equal(t, TierPremium, score.Tier)
}

func TestVerificationService_CalculateScore_BusinessNotFound(t *testing.T) {
	verificationService, _, _, _ := setupVerificationTest(t, weightedTestCatalog())

	_, err := verificationService.CalculateScore(9999)
	assert.ErrorIs(t, err, ErrBusinessNotFound)
}

func TestTierForPercentage_Boundaries(t *testing.T) {
	cases := []struct {
		pct  int
		tier string
	}{
		{0, TierBasic},
		{49, TierBasic},
		{50, TierVerified},
		{74, TierVerified},
		{75, TierPartnershipReady},
		{84, TierPartnershipReady},
		{85, TierHighlyVerified},
		{94, TierHighlyVerified},
		{95, TierPremium},
		{100, TierPremium},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.tier, tierForPercentage(tc.pct), "pct %d", tc.pct)
	}
}

func TestPercentageToNextTier(t *testing.T) {
	assert.Equal(t, 50, percentageToNextTier(0))
	assert.Equal(t, 1, percentageToNextTier(49))
	assert.Equal(t, 25, percentageToNextTier(50))
	assert.Equal(t, 10, percentageToNextTier(75))
	assert.Equal(t, 1, percentageToNextTier(94))
	assert.Equal(t, 0, percentageToNextTier(95))
	assert.Equal(t, 0, percentageToNextTier(100))
}

func TestVerificationService_GetTierInfo(t *testing.T) {
	verificationService, _, business, testDB := setupVerificationTest(t, weightedTestCatalog())

	createVerifiedDocument(t, testDB, business.ID, "certificate_of_incorporation", model.DocumentCategoryCore)
	createVerifiedDocument(t, testDB, business.ID, "tax_clearance", model.DocumentCategoryCore)

	info, err := verificationService.GetTierInfo(business.ID)
	require.NoError(t, err)
	assert.Equal(t, TierVerified, info.Tier)
	assert.Equal(t, 70, info.TotalPercentage)
	assert.Equal(t, 5, info.PercentageToNextTier)
	assert.NotEmpty(t, info.Benefits)
}

func TestVerificationService_CanReceiveInvestment(t *testing.T) {
	verificationService, _, business, testDB := setupVerificationTest(t, weightedTestCatalog())

	ok, err := verificationService.CanReceiveInvestment(business.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	createVerifiedDocument(t, testDB, business.ID, "certificate_of_incorporation", model.DocumentCategoryCore)
	createVerifiedDocument(t, testDB, business.ID, "tax_clearance", model.DocumentCategoryCore)
	createVerifiedDocument(t, testDB, business.ID, "regulatory_license", model.DocumentCategorySectorSpecific)

	ok, err = verificationService.CanReceiveInvestment(business.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestVerificationService_UploadDocument(t *testing.T) {
	verificationService, owner, business, _ := setupVerificationTest(t, weightedTestCatalog())

	doc, err := verificationService.UploadDocument(owner.ID, business.ID, DocumentUpload{
		DocumentType: "tax_clearance",
		FileURL:      "https://files.example.com/tax.pdf",
		FileName:     "tax.pdf",
		FileSize:     1024,
	})
	require.NoError(t, err)
	assert.Equal(t, model.DocumentStatusPending, doc.Status)
	assert.Equal(t, model.DocumentCategoryCore, doc.Category)
}

func TestVerificationService_UploadDocument_UnknownType(t *testing.T) {
	verificationService, owner, business, _ := setupVerificationTest(t, weightedTestCatalog())

	_, err := verificationService.UploadDocument(owner.ID, business.ID, DocumentUpload{
		DocumentType: "mystery_document",
		FileURL:      "https://files.example.com/mystery.pdf",
	})
	assert.ErrorIs(t, err, ErrDocumentUnknownType)
}

func TestVerificationService_UploadDocument_NotOwner(t *testing.T) {
	verificationService, _, business, testDB := setupVerificationTest(t, weightedTestCatalog())

	stranger := &model.User{
		Email:        "stranger@example.com",
		PasswordHash: "hash",
		Name:         "Stranger",
		Role:         model.RoleBusiness,
	}
	testDB.Create(stranger)

	_, err := verificationService.UploadDocument(stranger.ID, business.ID, DocumentUpload{
		DocumentType: "tax_clearance",
		FileURL:      "https://files.example.com/tax.pdf",
	})
	assert.ErrorIs(t, err, ErrBusinessAccessDenied)
}

func TestVerificationService_ApproveDocument(t *testing.T) {
	verificationService, owner, business, testDB := setupVerificationTest(t, weightedTestCatalog())

	admin := &model.User{Email: "admin@example.com", PasswordHash: "hash", Name: "Admin", Role: model.RoleAdmin}
	testDB.Create(admin)

	doc, err := verificationService.UploadDocument(owner.ID, business.ID, DocumentUpload{
		DocumentType: "certificate_of_incorporation",
		FileURL:      "https://files.example.com/coi.pdf",
	})
	require.NoError(t, err)

	approved, err := verificationService.ApproveDocument(admin.ID, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, model.DocumentStatusVerified, approved.Status)
	require.NotNil(t, approved.ReviewedBy)
	assert.Equal(t, admin.ID, *approved.ReviewedBy)
	assert.NotNil(t, approved.VerifiedAt)

	// Score reflects the approval
	score, err := verificationService.CalculateScore(business.ID)
	require.NoError(t, err)
	assert.Equal(t, 40, score.TotalPercentage)

	// Re-approving is a no-op
	again, err := verificationService.ApproveDocument(admin.ID, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, model.DocumentStatusVerified, again.Status)
}

func TestVerificationService_RejectDocument(t *testing.T) {
	verificationService, owner, business, testDB := setupVerificationTest(t, weightedTestCatalog())

	admin := &model.User{Email: "admin@example.com", PasswordHash: "hash", Name: "Admin", Role: model.RoleAdmin}
	testDB.Create(admin)

	doc, err := verificationService.UploadDocument(owner.ID, business.ID, DocumentUpload{
		DocumentType: "certificate_of_incorporation",
		FileURL:      "https://files.example.com/coi.pdf",
	})
	require.NoError(t, err)

	_, err = verificationService.RejectDocument(admin.ID, doc.ID, "   ")
	assert.ErrorIs(t, err, ErrRejectionReasonRequired)

	rejected, err := verificationService.RejectDocument(admin.ID, doc.ID, "Document is illegible")
	require.NoError(t, err)
	assert.Equal(t, model.DocumentStatusRejected, rejected.Status)
	assert.Equal(t, "Document is illegible", rejected.RejectionReason)

	// Rejection is terminal for the upload
	_, err = verificationService.ApproveDocument(admin.ID, doc.ID)
	assert.ErrorIs(t, err, ErrDocumentNotPending)
}

func TestVerificationService_DeleteDocument_ScoreDrops(t *testing.T) {
	verificationService, owner, business, testDB := setupVerificationTest(t, weightedTestCatalog())

	incorporation := createVerifiedDocument(t, testDB, business.ID, "certificate_of_incorporation", model.DocumentCategoryCore)
	createVerifiedDocument(t, testDB, business.ID, "tax_clearance", model.DocumentCategoryCore)

	score, err := verificationService.CalculateScore(business.ID)
	require.NoError(t, err)
	require.Equal(t, 70, score.TotalPercentage)

	// Deleting a verified document gives its weight back to the missing set
	require.NoError(t, verificationService.DeleteDocument(owner.ID, incorporation.ID))

	score, err = verificationService.CalculateScore(business.ID)
	require.NoError(t, err)
	assert.Equal(t, 30, score.TotalPercentage)
	assert.Equal(t, TierBasic, score.Tier)
	assert.Contains(t, score.MissingCoreDocuments, "Certificate of Incorporation")
}

func TestVerificationService_DeleteDocument_NotOwner(t *testing.T) {
	verificationService, owner, business, testDB := setupVerificationTest(t, weightedTestCatalog())

	doc, err := verificationService.UploadDocument(owner.ID, business.ID, DocumentUpload{
		DocumentType: "tax_clearance",
		FileURL:      "https://files.example.com/tax.pdf",
	})
	require.NoError(t, err)

	stranger := &model.User{Email: "stranger@example.com", PasswordHash: "hash", Name: "Stranger", Role: model.RoleInvestor}
	testDB.Create(stranger)

	err = verificationService.DeleteDocument(stranger.ID, doc.ID)
	assert.ErrorIs(t, err, ErrBusinessAccessDenied)

	err = verificationService.DeleteDocument(owner.ID, doc.ID)
	assert.NoError(t, err)
}
