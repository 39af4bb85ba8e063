package app

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/venturelink/venturelink-backend/internal/app/controller"
	"github.com/venturelink/venturelink-backend/internal/app/model"
	"github.com/venturelink/venturelink-backend/internal/app/repository"
	"github.com/venturelink/venturelink-backend/internal/app/service"
	"github.com/venturelink/venturelink-backend/internal/catalog"
	"github.com/venturelink/venturelink-backend/internal/db"
	"github.com/venturelink/venturelink-backend/internal/middleware"
	"github.com/venturelink/venturelink-backend/internal/websocket"
	"github.com/venturelink/venturelink-backend/pkg/util"
	"gorm.io/gorm"
)

const integrationJWTSecret = "test-secret"

type TestServer struct {
	Router *gin.Engine
	DB     *gorm.DB
}

// Two core documents cover the full score, so approving both crosses the
// investable threshold.
func integrationCatalog() catalog.Catalog {
	return catalog.New([]catalog.Requirement{
		{Type: "certificate_of_incorporation", Name: "Certificate of Incorporation", Category: model.DocumentCategoryCore, Weight: 60},
		{Type: "tax_clearance", Name: "Tax Clearance Certificate", Category: model.DocumentCategoryCore, Weight: 40},
	}, nil)
}

func setupIntegrationTest(t *testing.T) *TestServer {
	gin.SetMode(gin.TestMode)

	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	hub := websocket.NewHub()
	go hub.Run()

	userRepo := repository.NewUserRepository(testDB)
	businessRepo := repository.NewBusinessRepository(testDB)
	documentRepo := repository.NewDocumentRepository(testDB)
	connectionRepo := repository.NewConnectionRepository(testDB)
	conversationRepo := repository.NewConversationRepository(testDB)
	milestoneRepo := repository.NewMilestoneRepository(testDB)
	matchRepo := repository.NewMatchRepository(testDB)
	notificationRepo := repository.NewNotificationRepository(testDB)

	notificationService := service.NewNotificationService(notificationRepo, businessRepo, hub)
	verificationService := service.NewVerificationService(businessRepo, documentRepo, integrationCatalog(), notificationService)
	authService := service.NewAuthService(userRepo, integrationJWTSecret, 15*time.Minute, 7*24*time.Hour)
	businessService := service.NewBusinessService(businessRepo, userRepo, verificationService)
	conversationService := service.NewConversationService(testDB, conversationRepo, hub)
	connectionService := service.NewConnectionService(testDB, connectionRepo, businessRepo, matchRepo, milestoneRepo, verificationService, notificationService)
	milestoneService := service.NewMilestoneService(milestoneRepo, connectionRepo, connectionService, conversationService, notificationService)

	authController := controller.NewAuthController(authService, integrationJWTSecret)
	businessController := controller.NewBusinessController(businessService)
	verificationController := controller.NewVerificationController(verificationService)
	connectionController := controller.NewConnectionController(connectionService)
	conversationController := controller.NewConversationController(conversationService, hub, nil)
	milestoneController := controller.NewMilestoneController(milestoneService)

	authMiddleware := middleware.NewAuthMiddleware(integrationJWTSecret)

	router := gin.New()
	router.Use(middleware.LoggingMiddleware())

	auth := router.Group("/api/v1/auth")
	{
		auth.POST("/register", authController.Register)
		auth.POST("/login", authController.Login)
		auth.GET("/me", authMiddleware.Authenticate(), authController.GetMe)
	}

	businesses := router.Group("/api/v1/businesses")
	{
		businesses.GET("/:id", businessController.GetBusiness)
		businesses.GET("/:id/verification/score", verificationController.GetScore)
		businesses.GET("/:id/verification/tier", verificationController.GetTier)
		businesses.POST("", authMiddleware.Authenticate(), authMiddleware.RequireRole("business", "admin"), businessController.CreateBusiness)
		businesses.POST("/:id/documents", authMiddleware.Authenticate(), verificationController.UploadDocument)
	}

	connections := router.Group("/api/v1/connections")
	connections.Use(authMiddleware.Authenticate())
	{
		connections.POST("", connectionController.InitiateConnection)
		connections.GET("/:id", connectionController.GetConnection)
		connections.POST("/:id/respond", connectionController.RespondToConnection)
		connections.POST("/:id/milestones", milestoneController.ProposeMilestone)
	}

	milestones := router.Group("/api/v1/milestones")
	milestones.Use(authMiddleware.Authenticate())
	{
		milestones.POST("/:id/agree", milestoneController.AgreeMilestone)
	}

	conversations := router.Group("/api/v1/conversations")
	conversations.Use(authMiddleware.Authenticate())
	{
		conversations.GET("", conversationController.GetMyConversations)
		conversations.GET("/:id/messages", conversationController.GetMessages)
		conversations.POST("/:id/messages", conversationController.SendMessage)
	}

	admin := router.Group("/api/v1/admin")
	admin.Use(authMiddleware.Authenticate(), authMiddleware.RequireRole("admin"))
	{
		admin.POST("/documents/:id/approve", verificationController.ApproveDocument)
	}

	return &TestServer{Router: router, DB: testDB}
}

func (ts *TestServer) request(t *testing.T, method, path, token string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var body *bytes.Buffer
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewBuffer(data)
	} else {
		body = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	ts.Router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func registerUser(t *testing.T, ts *TestServer, email, name, role string) string {
	t.Helper()
	w := ts.request(t, "POST", "/api/v1/auth/register", "", map[string]string{
		"email":    email,
		"password": "password123",
		"name":     name,
		"role":     role,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	tokens := decodeBody(t, w)["tokens"].(map[string]interface{})
	return tokens["access_token"].(string)
}

func adminToken(t *testing.T, ts *TestServer) string {
	t.Helper()
	admin := &model.User{
		Email:        "admin@venturelink.example",
		PasswordHash: "hash",
		Name:         "Platform Admin",
		Role:         model.RoleAdmin,
	}
	require.NoError(t, ts.DB.Create(admin).Error)

	pair, err := util.GenerateTokenPair(admin.ID, admin.Email, string(admin.Role), integrationJWTSecret, 15*time.Minute, time.Hour)
	require.NoError(t, err)
	return pair.AccessToken
}

func TestInvestmentJourney(t *testing.T) {
	ts := setupIntegrationTest(t)

	t.Log("Step 1: Register business owner and create profile")
	ownerToken := registerUser(t, ts, "founder@example.com", "Ada Founder", "business")

	w := ts.request(t, "POST", "/api/v1/businesses", ownerToken, map[string]string{
		"name":                "Acme Payments",
		"registration_number": "RC-100200",
		"sector":              "finance",
		"subsector":           "fintech",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	business := decodeBody(t, w)["business"].(map[string]interface{})
	businessID := uint(business["id"].(float64))

	t.Log("Step 2: Upload verification documents")
	docIDs := make([]uint, 0, 2)
	for _, docType := range []string{"certificate_of_incorporation", "tax_clearance"} {
		w = ts.request(t, "POST", fmt.Sprintf("/api/v1/businesses/%d/documents", businessID), ownerToken, map[string]string{
			"document_type": docType,
			"file_url":      "https://cdn.venturelink.example/docs/" + docType + ".pdf",
			"file_name":     docType + ".pdf",
		})
		require.Equal(t, http.StatusCreated, w.Code)
		doc := decodeBody(t, w)["document"].(map[string]interface{})
		docIDs = append(docIDs, uint(doc["id"].(float64)))
	}

	t.Log("Step 3: Score stays at zero while documents are pending")
	w = ts.request(t, "GET", fmt.Sprintf("/api/v1/businesses/%d/verification/score", businessID), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	score := decodeBody(t, w)["score"].(map[string]interface{})
	assert.Equal(t, float64(0), score["total_percentage"])
	assert.Equal(t, "BASIC", score["tier"])

	t.Log("Step 4: Admin approves both documents")
	admin := adminToken(t, ts)
	for _, docID := range docIDs {
		w = ts.request(t, "POST", fmt.Sprintf("/api/v1/admin/documents/%d/approve", docID), admin, nil)
		require.Equal(t, http.StatusOK, w.Code)
	}

	w = ts.request(t, "GET", fmt.Sprintf("/api/v1/businesses/%d/verification/score", businessID), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	score = decodeBody(t, w)["score"].(map[string]interface{})
	assert.Equal(t, float64(100), score["total_percentage"])
	assert.Equal(t, "PREMIUM", score["tier"])

	t.Log("Step 5: Investor initiates a connection")
	investorToken := registerUser(t, ts, "investor@example.com", "Jordan Investor", "investor")

	w = ts.request(t, "POST", "/api/v1/connections", investorToken, map[string]uint{
		"business_id": businessID,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	conn := decodeBody(t, w)["connection"].(map[string]interface{})
	connectionID := uint(conn["id"].(float64))
	assert.Equal(t, "lead", conn["status"])

	t.Log("Step 6: Owner accepts, which opens the conversation")
	w = ts.request(t, "POST", fmt.Sprintf("/api/v1/connections/%d/respond", connectionID), ownerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	conn = decodeBody(t, w)["connection"].(map[string]interface{})
	assert.Equal(t, "connected", conn["status"])

	w = ts.request(t, "GET", "/api/v1/conversations", investorToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	convList := decodeBody(t, w)
	conversations := convList["conversations"].([]interface{})
	require.Len(t, conversations, 1)
	conversationID := uint(conversations[0].(map[string]interface{})["id"].(float64))

	t.Log("Step 7: Exchange a message")
	w = ts.request(t, "POST", fmt.Sprintf("/api/v1/conversations/%d/messages", conversationID), investorToken, map[string]string{
		"content": "Impressive verification profile. Can we talk terms?",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = ts.request(t, "GET", fmt.Sprintf("/api/v1/conversations/%d/messages", conversationID), ownerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	messages := decodeBody(t, w)["messages"].([]interface{})
	require.Len(t, messages, 1)

	t.Log("Step 8: Propose and agree a milestone, moving the deal to contract")
	w = ts.request(t, "POST", fmt.Sprintf("/api/v1/connections/%d/milestones", connectionID), investorToken, map[string]interface{}{
		"title":  "Seed round disbursement",
		"amount": 25000000,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	milestone := decodeBody(t, w)["milestone"].(map[string]interface{})
	milestoneID := uint(milestone["id"].(float64))
	assert.Equal(t, "proposed", milestone["status"])

	w = ts.request(t, "POST", fmt.Sprintf("/api/v1/milestones/%d/agree", milestoneID), ownerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	milestone = decodeBody(t, w)["milestone"].(map[string]interface{})
	assert.Equal(t, "agreed", milestone["status"])

	w = ts.request(t, "GET", fmt.Sprintf("/api/v1/connections/%d", connectionID), investorToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	conn = decodeBody(t, w)["connection"].(map[string]interface{})
	assert.Equal(t, "contract", conn["status"])
}

func TestAuthenticationFlow(t *testing.T) {
	ts := setupIntegrationTest(t)

	accessToken := registerUser(t, ts, "investor@example.com", "Jordan Investor", "investor")

	w := ts.request(t, "POST", "/api/v1/auth/login", "", map[string]string{
		"email":    "investor@example.com",
		"password": "password123",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	w = ts.request(t, "GET", "/api/v1/auth/me", accessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	user := decodeBody(t, w)["user"].(map[string]interface{})
	assert.Equal(t, "investor@example.com", user["email"])
	assert.Equal(t, "investor", user["role"])
}

func TestConnectionRequiresInvestableBusiness(t *testing.T) {
	ts := setupIntegrationTest(t)

	ownerToken := registerUser(t, ts, "founder@example.com", "Ada Founder", "business")
	w := ts.request(t, "POST", "/api/v1/businesses", ownerToken, map[string]string{
		"name":                "Unverified Ventures",
		"registration_number": "RC-900900",
		"sector":              "finance",
		"subsector":           "fintech",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	business := decodeBody(t, w)["business"].(map[string]interface{})
	businessID := uint(business["id"].(float64))

	investorToken := registerUser(t, ts, "investor@example.com", "Jordan Investor", "investor")
	w = ts.request(t, "POST", "/api/v1/connections", investorToken, map[string]uint{
		"business_id": businessID,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	conn := decodeBody(t, w)["connection"].(map[string]interface{})
	connectionID := uint(conn["id"].(float64))

	// Owner cannot accept while the business has no verified documents
	w = ts.request(t, "POST", fmt.Sprintf("/api/v1/connections/%d/respond", connectionID), ownerToken, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestUnauthorizedAccess(t *testing.T) {
	ts := setupIntegrationTest(t)

	protectedRoutes := []string{
		"/api/v1/auth/me",
		"/api/v1/conversations",
	}

	for _, route := range protectedRoutes {
		t.Run(route, func(t *testing.T) {
			w := ts.request(t, "GET", route, "", nil)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}

	// Admin surface is closed to regular users
	investorToken := registerUser(t, ts, "investor@example.com", "Jordan Investor", "investor")
	w := ts.request(t, "POST", "/api/v1/admin/documents/1/approve", investorToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
