package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/venturelink/venturelink-backend/internal/app/model"
	"github.com/venturelink/venturelink-backend/internal/app/repository"
	"github.com/venturelink/venturelink-backend/internal/db"
	"github.com/venturelink/venturelink-backend/pkg/util"
)

const testJWTSecret = "test-jwt-secret"

func setupAuthServiceTest(t *testing.T) AuthService {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	userRepo := repository.NewUserRepository(testDB)
	return NewAuthService(userRepo, testJWTSecret, 15*time.Minute, 7*24*time.Hour)
}

func TestAuthService_Register(t *testing.T) {
	authService := setupAuthServiceTest(t)

	tests := []struct {
		name     string
		email    string
		password string
		userName string
		role     model.UserRole
		wantErr  error
	}{
		{
			name:     "Valid investor registration",
			email:    "investor@example.com",
			password: "password123",
			userName: "Jordan Investor",
			role:     model.RoleInvestor,
			wantErr:  nil,
		},
		{
			name:     "Valid business registration",
			email:    "founder@example.com",
			password: "password123",
			userName: "Founder",
			role:     model.RoleBusiness,
			wantErr:  nil,
		},
		{
			name:     "Duplicate email",
			email:    "investor@example.com",
			password: "password456",
			userName: "Another User",
			role:     model.RoleInvestor,
			wantErr:  ErrEmailAlreadyExists,
		},
		{
			name:     "Admin role cannot self-register",
			email:    "admin@example.com",
			password: "password123",
			userName: "Admin",
			role:     model.RoleAdmin,
			wantErr:  ErrInvalidRole,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, tokens, err := authService.Register(tt.email, tt.password, tt.userName, tt.role)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, user)
				assert.Nil(t, tokens)
			} else {
				require.NoError(t, err)
				require.NotNil(t, user)
				require.NotNil(t, tokens)
				assert.Equal(t, tt.email, user.Email)
				assert.Equal(t, tt.userName, user.Name)
				assert.Equal(t, tt.role, user.Role)
				assert.NotEmpty(t, tokens.AccessToken)
				assert.NotEmpty(t, tokens.RefreshToken)
			}
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	authService := setupAuthServiceTest(t)

	email := "investor@example.com"
	password := "password123"
	_, _, err := authService.Register(email, password, "Jordan Investor", model.RoleInvestor)
	require.NoError(t, err)

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{
			name:     "Valid login",
			email:    email,
			password: password,
			wantErr:  nil,
		},
		{
			name:     "Wrong password",
			email:    email,
			password: "wrongpassword",
			wantErr:  ErrInvalidCredentials,
		},
		{
			name:     "Non-existing user",
			email:    "notfound@example.com",
			password: "password123",
			wantErr:  ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, tokens, err := authService.Login(tt.email, tt.password)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, user)
				assert.Nil(t, tokens)
			} else {
				require.NoError(t, err)
				require.NotNil(t, user)
				require.NotNil(t, tokens)
				assert.Equal(t, tt.email, user.Email)
				assert.NotEmpty(t, tokens.AccessToken)
				assert.NotEmpty(t, tokens.RefreshToken)
			}
		})
	}
}

func TestAuthService_RefreshTokens(t *testing.T) {
	authService := setupAuthServiceTest(t)

	user, tokens, err := authService.Register("investor@example.com", "password123", "Jordan Investor", model.RoleInvestor)
	require.NoError(t, err)

	fresh, err := authService.RefreshTokens(tokens.RefreshToken)
	require.NoError(t, err)
	require.NotNil(t, fresh)

	claims, err := util.ValidateToken(fresh.AccessToken, testJWTSecret)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, string(model.RoleInvestor), claims.Role)

	_, err = authService.RefreshTokens("not-a-token")
	assert.Error(t, err)
}

func TestAuthService_GetUserByID(t *testing.T) {
	authService := setupAuthServiceTest(t)

	user, _, err := authService.Register("investor@example.com", "password123", "Jordan Investor", model.RoleInvestor)
	require.NoError(t, err)

	found, err := authService.GetUserByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Email, found.Email)

	_, err = authService.GetUserByID(9999)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestAuthService_UpdateProfile(t *testing.T) {
	authService := setupAuthServiceTest(t)

	user, _, err := authService.Register("investor@example.com", "password123", "Jordan Investor", model.RoleInvestor)
	require.NoError(t, err)

	bio := "Seed-stage fintech investor"
	ticketMin := int64(1_000_000)
	updated, err := authService.UpdateProfile(user.ID, InvestorProfileUpdate{
		Bio:              &bio,
		PreferredSectors: []string{"finance", "healthcare"},
		TicketMin:        &ticketMin,
	})
	require.NoError(t, err)
	assert.Equal(t, bio, updated.Bio)
	assert.Equal(t, []string{"finance", "healthcare"}, []string(updated.PreferredSectors))
	require.NotNil(t, updated.TicketMin)
	assert.Equal(t, ticketMin, *updated.TicketMin)
	assert.Equal(t, "Jordan Investor", updated.Name)
	assert.Nil(t, updated.TicketMax)

	_, err = authService.UpdateProfile(9999, InvestorProfileUpdate{Bio: &bio})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestAuthService_PasswordSecurity(t *testing.T) {
	authService := setupAuthServiceTest(t)

	password := "mySecretPassword123"
	user, _, err := authService.Register("investor@example.com", password, "Jordan Investor", model.RoleInvestor)
	require.NoError(t, err)

	// Password should be stored hashed, never in the clear
	assert.NotEqual(t, password, user.PasswordHash)
	assert.Contains(t, user.PasswordHash, "$2a$")
}
