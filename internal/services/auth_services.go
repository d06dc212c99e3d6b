package services

import (
	"context"
	"regexp"
	"time"

	"ExamPrepAPI/internal/middleware"
	"ExamPrepAPI/internal/model"
	"ExamPrepAPI/internal/repository"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

const MinPasswordLen = 8

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

type AuthService struct {
	DB    *pgxpool.Pool
	Auths *repository.AuthRepository
	Users *repository.UserRepository

	JWTSecret []byte
	TokenTTL  time.Duration
}

func NewAuthService(db *pgxpool.Pool, auths *repository.AuthRepository, users *repository.UserRepository, jwtSecret []byte, tokenTTL time.Duration) *AuthService {
	return &AuthService{
		DB:        db,
		Auths:     auths,
		Users:     users,
		JWTSecret: jwtSecret,
		TokenTTL:  tokenTTL,
	}
}

type AuthResult struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

// Register creates the identity pair in one transaction: the external auth
// row and the internal profile keyed by it.
func (s *AuthService) Register(ctx context.Context, email, password, name string) (*AuthResult, error) {
	if email == "" || !emailRegex.MatchString(email) {
		return nil, ErrInvalid("invalid email format")
	}
	if len(password) < MinPasswordLen {
		return nil, ErrInvalid("password too short")
	}

	exists, err := s.Auths.EmailExists(ctx, email)
	if err != nil {
		return nil, ErrInternal(err)
	}
	if exists {
		return nil, ErrInvalid("email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, ErrInternal(err)
	}

	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return nil, ErrInternal(err)
	}
	defer tx.Rollback(ctx)

	authID, err := s.Auths.CreateTx(ctx, tx, email, string(hash))
	if err != nil {
		return nil, ErrInternal(err)
	}
	if _, err := s.Users.CreateTx(ctx, tx, authID, email, name); err != nil {
		return nil, ErrInternal(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, ErrInternal(err)
	}

	profile, err := s.Users.GetByAuthID(ctx, authID)
	if err != nil {
		return nil, ErrInternal(err)
	}

	token, err := middleware.GenerateToken(s.JWTSecret, authID, email, s.TokenTTL)
	if err != nil {
		return nil, ErrInternal(err)
	}
	return &AuthResult{Token: token, User: profile}, nil
}

// Login verifies credentials and issues a session token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	auth, err := s.Auths.GetByEmail(ctx, email)
	if err != nil {
		return nil, ErrInternal(err)
	}
	if auth == nil {
		return nil, ErrUnauthenticated("invalid email or password")
	}
	if bcrypt.CompareHashAndPassword([]byte(auth.PasswordHash), []byte(password)) != nil {
		return nil, ErrUnauthenticated("invalid email or password")
	}

	profile, err := s.Users.GetByAuthID(ctx, auth.AuthID)
	if err != nil {
		return nil, ErrInternal(err)
	}

	token, err := middleware.GenerateToken(s.JWTSecret, auth.AuthID, auth.Email, s.TokenTTL)
	if err != nil {
		return nil, ErrInternal(err)
	}
	return &AuthResult{Token: token, User: profile}, nil
}
