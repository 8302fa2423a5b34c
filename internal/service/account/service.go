package account

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/emberdate/ember-server/internal/app"
	"github.com/emberdate/ember-server/internal/auth"
	"github.com/emberdate/ember-server/internal/db"
	svcErr "github.com/emberdate/ember-server/internal/errors"
	"github.com/emberdate/ember-server/internal/repository"
)

// Service implements registration, login, and session teardown on top of
// bcrypt password hashing and JWT access tokens.
type Service struct {
	appCtx   *app.AppContext
	userRepo *repository.UserRepository
	tokens   *auth.JWTManager
}

func NewService(appCtx *app.AppContext, tokens *auth.JWTManager) *Service {
	return &Service{
		appCtx:   appCtx,
		userRepo: repository.NewUserRepository(appCtx.DB),
		tokens:   tokens,
	}
}

// RegisterInput is the payload for creating an account.
type RegisterInput struct {
	Email    string
	Password string
	Name     string
	Age      int
	Bio      string
	Gender   string
}

// Session is an issued access token plus the account it belongs to.
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      db.User
}

// Register creates the account and immediately issues a session, so the
// client lands signed in.
func (s *Service) Register(ctx context.Context, input RegisterInput) (Session, error) {
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	input.Name = strings.TrimSpace(input.Name)
	input.Gender = strings.ToLower(strings.TrimSpace(input.Gender))

	switch {
	case input.Email == "" || !strings.Contains(input.Email, "@"):
		return Session{}, svcErr.InvalidArgument("a valid email is required")
	case len(input.Password) < 8:
		return Session{}, svcErr.InvalidArgument("password must be at least 8 characters")
	case input.Name == "":
		return Session{}, svcErr.InvalidArgument("name is required")
	case input.Age < 18:
		return Session{}, svcErr.InvalidArgument("you must be at least 18")
	case input.Gender != "male" && input.Gender != "female":
		return Session{}, svcErr.InvalidArgument("gender must be male or female")
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return Session{}, svcErr.Internal(err)
	}

	user := db.User{
		Email:        input.Email,
		PasswordHash: hash,
		Name:         input.Name,
		Age:          input.Age,
		Bio:          strings.TrimSpace(input.Bio),
		Gender:       input.Gender,
	}
	if err := s.userRepo.Create(ctx, &user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return Session{}, svcErr.ConstraintViolation("email already registered")
		}
		s.appCtx.Logger.Error("user create failed", "err", err)
		return Session{}, svcErr.Map(err)
	}

	s.appCtx.Logger.Info("user registered", "user_id", user.ID)
	return s.issueSession(user)
}

// Login verifies credentials and issues a session. Wrong email and wrong
// password produce the same error so accounts are not enumerable.
func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return Session{}, svcErr.InvalidArgument("email and password are required")
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Session{}, svcErr.Unauthorized("invalid credentials")
		}
		return Session{}, svcErr.Map(err)
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		return Session{}, svcErr.Unauthorized("invalid credentials")
	}

	return s.issueSession(user)
}

// CurrentUser resolves the authenticated account.
func (s *Service) CurrentUser(ctx context.Context, userID uint64) (db.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return db.User{}, svcErr.Map(err)
	}
	return user, nil
}

// Logout blacklists the presented access token until its natural expiry,
// after which the blacklist entry lapses on its own.
func (s *Service) Logout(ctx context.Context, token string) error {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		// Expired or garbage tokens need no blacklisting.
		return nil
	}
	ttl := time.Until(claims.ExpiresAt)
	if err := s.appCtx.RedisCache.BlacklistToken(ctx, token, ttl); err != nil {
		s.appCtx.Logger.Error("token blacklist failed", "err", err)
		return svcErr.Map(err)
	}
	return nil
}

func (s *Service) issueSession(user db.User) (Session, error) {
	token, expiresAt, err := s.tokens.Generate(user.ID)
	if err != nil {
		return Session{}, svcErr.Internal(err)
	}
	return Session{Token: token, ExpiresAt: expiresAt, User: user}, nil
}
