package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"dealflow/fee"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials signals wrong email or password.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	// ErrWeakPassword signals password doesn't meet requirements.
	ErrWeakPassword = errors.New("auth: password must be at least 8 characters")
	// ErrInvalidToken signals a token that failed signature or claim checks.
	ErrInvalidToken = errors.New("auth: invalid token")
)

const tokenTTL = 24 * time.Hour

// Service handles registration, login, token issuance, and tier changes.
type Service struct {
	repo      Repository
	jwtSecret []byte
	now       func() time.Time
}

// LoginResult bundles the token and domain user returned after a successful login.
type LoginResult struct {
	Token string
	User  User
}

func NewService(repo Repository, jwtSecret string) *Service {
	return &Service{
		repo:      repo,
		jwtSecret: []byte(jwtSecret),
		now:       time.Now,
	}
}

// WithClock overrides the time source, for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// sessionClaims carries the marketplace identity inside the JWT.
type sessionClaims struct {
	Role Role `json:"role"`
	jwt.RegisteredClaims
}

// Register creates a user account. Accounts default to the investor role and
// start on the free subscription tier.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	if len(req.Password) < 8 {
		return nil, ErrWeakPassword
	}
	if req.Email == "" || req.FullName == "" {
		return nil, fmt.Errorf("auth: email and full_name are required")
	}

	role := Role(strings.TrimSpace(string(req.Role)))
	if role == "" {
		role = RoleInvestor
	}
	if !isValidRole(role) {
		return nil, fmt.Errorf("auth: invalid role %q", role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("auth: hash password: %w", err)
	}

	user, err := s.repo.CreateUser(ctx, CreateUserParams{
		Email:        req.Email,
		FullName:     req.FullName,
		PasswordHash: string(hash),
		Role:         role,
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Login checks credentials and issues a signed session token. Unknown emails
// and bad passwords are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, req LoginRequest) (LoginResult, error) {
	user, err := s.repo.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return LoginResult{}, ErrInvalidCredentials
		}
		return LoginResult{}, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return LoginResult{}, ErrInvalidCredentials
	}

	token, err := s.issueToken(user.ID, user.Role)
	if err != nil {
		return LoginResult{}, fmt.Errorf("auth: issue token: %w", err)
	}
	return LoginResult{Token: token, User: user}, nil
}

// GetUserByID retrieves user information by ID.
func (s *Service) GetUserByID(ctx context.Context, userID string) (*User, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ChangeSubscriptionTier switches the user's billing tier. The new tier only
// affects fees frozen after the change; settled transactions keep their amounts.
func (s *Service) ChangeSubscriptionTier(ctx context.Context, userID string, tier fee.Tier) (*User, error) {
	switch tier {
	case fee.TierFree, fee.TierPro, fee.TierPremium:
	default:
		return nil, fmt.Errorf("auth: invalid subscription tier %q", tier)
	}

	user, err := s.repo.UpdateSubscriptionTier(ctx, userID, tier)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// VerifyToken validates a session token and returns its subject and role.
func (s *Service) VerifyToken(tokenString string) (string, Role, error) {
	var claims sessionClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims,
		func(*jwt.Token) (any, error) { return s.jwtSecret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		return "", "", fmt.Errorf("auth: parse token: %w", err)
	}
	if !token.Valid || claims.Subject == "" || !isValidRole(claims.Role) {
		return "", "", ErrInvalidToken
	}
	return claims.Subject, claims.Role, nil
}

func (s *Service) issueToken(userID string, role Role) (string, error) {
	issuedAt := s.now()
	claims := sessionClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(tokenTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
}

func isValidRole(role Role) bool {
	switch role {
	case RoleWholesaler, RoleInvestor, RoleAdmin:
		return true
	default:
		return false
	}
}
