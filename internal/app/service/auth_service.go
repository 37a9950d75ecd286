package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/wkim/teamshop-backend/config"
	"github.com/wkim/teamshop-backend/internal/app/model"
	"github.com/wkim/teamshop-backend/internal/app/repository"
	"github.com/wkim/teamshop-backend/pkg/logger"
	"github.com/wkim/teamshop-backend/pkg/mailer"
	"github.com/wkim/teamshop-backend/pkg/redis"
	"github.com/wkim/teamshop-backend/pkg/util"
	"gorm.io/gorm"
)

var (
	ErrLinkInvalid  = errors.New("login link is invalid")
	ErrLinkExpired  = errors.New("login link has expired")
	ErrUserNotFound = errors.New("user not found")
	ErrInvalidEmail = errors.New("invalid email address")
)

type AuthService interface {
	// RequestLoginLink creates a single-use login token for the email
	// and mails the magic link. Unknown emails get an account created
	// on the fly.
	RequestLoginLink(email, name string) error

	// VerifyLoginToken redeems a magic-link token for a JWT pair. The
	// admin flag is recomputed from the allow-list on every login.
	VerifyLoginToken(token string) (*model.User, *util.TokenPair, error)

	Logout(ctx context.Context, accessToken string) error
	GetCurrentUser(userID uint) (*model.User, error)
}

type authService struct {
	userRepo    repository.UserRepository
	tokenRepo   repository.LoginTokenRepository
	mailer      mailer.Mailer
	authCfg     config.AuthConfig
	frontendURL string
}

func NewAuthService(
	userRepo repository.UserRepository,
	tokenRepo repository.LoginTokenRepository,
	m mailer.Mailer,
	authCfg config.AuthConfig,
	frontendURL string,
) AuthService {
	return &authService{
		userRepo:    userRepo,
		tokenRepo:   tokenRepo,
		mailer:      m,
		authCfg:     authCfg,
		frontendURL: frontendURL,
	}
}

func (s *authService) RequestLoginLink(email, name string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return ErrInvalidEmail
	}

	logger.Info("Login link requested", map[string]interface{}{
		"email": email,
	})

	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		user = &model.User{Email: email, Name: strings.TrimSpace(name)}
		if err := s.userRepo.Create(user); err != nil {
			return err
		}
		logger.Info("Created account for new email", map[string]interface{}{
			"user_id": user.ID,
			"email":   email,
		})
	}

	token, err := util.GenerateLoginToken()
	if err != nil {
		logger.Error("Failed to generate login token", err)
		return err
	}

	loginToken := &model.LoginToken{
		Token:     token,
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(s.authCfg.MagicLinkExpiry),
	}
	if err := s.tokenRepo.Create(loginToken); err != nil {
		return err
	}

	link := fmt.Sprintf("%s/auth/verify?token=%s", strings.TrimRight(s.frontendURL, "/"), token)
	body := fmt.Sprintf(
		`<p>Hi%s,</p><p>Click the link below to sign in. It expires in %s and can be used once.</p><p><a href="%s">Sign in</a></p>`,
		displayName(user), s.authCfg.MagicLinkExpiry, link,
	)
	if err := s.mailer.Send(email, "Your sign-in link", body); err != nil {
		logger.Error("Failed to send login link email", err, map[string]interface{}{
			"email": email,
		})
		return err
	}

	logger.Info("Login link sent", map[string]interface{}{
		"user_id": user.ID,
		"email":   email,
	})
	return nil
}

func displayName(user *model.User) string {
	if user.Name == "" {
		return ""
	}
	return " " + user.Name
}

func (s *authService) VerifyLoginToken(token string) (*model.User, *util.TokenPair, error) {
	loginToken, err := s.tokenRepo.FindByToken(token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Unknown login token presented")
			return nil, nil, ErrLinkInvalid
		}
		return nil, nil, err
	}

	now := time.Now()
	if loginToken.ConsumedAt != nil {
		logger.Warn("Consumed login token presented", map[string]interface{}{
			"user_id": loginToken.UserID,
		})
		return nil, nil, ErrLinkInvalid
	}
	if !now.Before(loginToken.ExpiresAt) {
		logger.Warn("Expired login token presented", map[string]interface{}{
			"user_id": loginToken.UserID,
		})
		return nil, nil, ErrLinkExpired
	}

	if err := s.tokenRepo.Consume(loginToken.ID, now); err != nil {
		return nil, nil, err
	}

	user, err := s.userRepo.FindByID(loginToken.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrUserNotFound
		}
		return nil, nil, err
	}

	// Admin status follows the allow-list, so promotions and
	// demotions take effect on the next login.
	isAdmin := s.isAdminEmail(user.Email)
	if user.IsAdmin != isAdmin {
		user.IsAdmin = isAdmin
		if err := s.userRepo.Update(user); err != nil {
			return nil, nil, err
		}
	}

	pair, err := util.GenerateTokenPair(
		user.ID, user.Email, user.IsAdmin,
		s.authCfg.JWTSecret,
		s.authCfg.AccessTokenExpiry,
		s.authCfg.RefreshTokenExpiry,
	)
	if err != nil {
		logger.Error("Failed to generate token pair", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, nil, err
	}

	logger.Info("User logged in via magic link", map[string]interface{}{
		"user_id":  user.ID,
		"email":    user.Email,
		"is_admin": user.IsAdmin,
	})
	return user, pair, nil
}

func (s *authService) isAdminEmail(email string) bool {
	for _, admin := range s.authCfg.AdminEmails {
		if strings.EqualFold(strings.TrimSpace(admin), email) {
			return true
		}
	}
	return false
}

func (s *authService) Logout(ctx context.Context, accessToken string) error {
	logger.Info("Logging out user")

	if err := redis.BlacklistToken(ctx, accessToken, s.authCfg.AccessTokenExpiry); err != nil {
		logger.Error("Failed to blacklist token on logout", err)
		return err
	}
	return nil
}

func (s *authService) GetCurrentUser(userID uint) (*model.User, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}
