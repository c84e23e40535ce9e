package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/terraincognita07/sidetrack/internal/models"
	"github.com/terraincognita07/sidetrack/internal/security"
	"golang.org/x/crypto/bcrypt"
)

const (
	LoginCodeDigits   = 6
	LoginCodeValidity = 10 * time.Minute
)

var (
	ErrLoginCodeCreateFailed = errors.New("failed to generate code")
	ErrLoginCodeRejected     = errors.New("invalid or expired code")
	ErrLoginFailed           = errors.New("login failed")
)

type LoginCodeRepository interface {
	ReplaceUnused(code *models.LoginCode) error
	ListActive(email string, now time.Time) ([]models.LoginCode, error)
	MarkUsed(codeID string) (bool, error)
	DeleteExpired(cutoff time.Time) (int64, error)
}

type LoginUserRepository interface {
	FindOrCreateByEmail(email string) (models.User, error)
}

// CodeMailer delivers a login code to an address.
type CodeMailer interface {
	SendLoginCode(ctx context.Context, email string, code string) error
}

type LoginService struct {
	codes  LoginCodeRepository
	users  LoginUserRepository
	mailer CodeMailer
	cost   int
}

// LoginCodeDelivery reports how a requested code left the server. DevCode is
// only set when no mailer is configured.
type LoginCodeDelivery struct {
	Emailed bool
	DevCode string
}

func NewLoginService(codes LoginCodeRepository, users LoginUserRepository, mailer CodeMailer) *LoginService {
	return &LoginService{codes: codes, users: users, mailer: mailer, cost: bcrypt.DefaultCost}
}

// WithHashCost lowers the bcrypt cost, used by tests.
func (service *LoginService) WithHashCost(cost int) *LoginService {
	service.cost = cost
	return service
}

// RequestLoginCode replaces any unused codes for email with a fresh one. Mail
// failures are logged and do not fail the request.
func (service *LoginService) RequestLoginCode(ctx context.Context, rawEmail string, now time.Time) (LoginCodeDelivery, error) {
	email := NormalizeAuthEmail(rawEmail)
	if email == "" {
		return LoginCodeDelivery{}, ErrAuthEmailInvalid
	}

	code, err := security.NumericCode(LoginCodeDigits)
	if err != nil {
		return LoginCodeDelivery{}, fmt.Errorf("%w: %v", ErrLoginCodeCreateFailed, err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), service.cost)
	if err != nil {
		return LoginCodeDelivery{}, fmt.Errorf("%w: %v", ErrLoginCodeCreateFailed, err)
	}

	record := models.LoginCode{
		Email:     email,
		CodeHash:  string(hash),
		ExpiresAt: now.UTC().Add(LoginCodeValidity),
		CreatedAt: now.UTC(),
	}
	if err := service.codes.ReplaceUnused(&record); err != nil {
		return LoginCodeDelivery{}, fmt.Errorf("%w: %v", ErrLoginCodeCreateFailed, err)
	}

	if service.mailer == nil {
		return LoginCodeDelivery{DevCode: code}, nil
	}
	if err := service.mailer.SendLoginCode(ctx, email, code); err != nil {
		log.Printf("login code mail to %s failed: %v", email, err)
	}
	return LoginCodeDelivery{Emailed: true}, nil
}

// VerifyLoginCode consumes a matching active code and returns the user it
// signs in, creating the account on first use.
func (service *LoginService) VerifyLoginCode(rawEmail string, rawCode string, now time.Time) (models.User, error) {
	email, code, err := NormalizeLoginInput(rawEmail, rawCode)
	if err != nil {
		return models.User{}, err
	}

	active, err := service.codes.ListActive(email, now.UTC())
	if err != nil {
		return models.User{}, fmt.Errorf("%w: %v", ErrLoginFailed, err)
	}

	for _, candidate := range active {
		if bcrypt.CompareHashAndPassword([]byte(candidate.CodeHash), []byte(code)) != nil {
			continue
		}
		consumed, err := service.codes.MarkUsed(candidate.ID)
		if err != nil {
			return models.User{}, fmt.Errorf("%w: %v", ErrLoginFailed, err)
		}
		if !consumed {
			return models.User{}, ErrLoginCodeRejected
		}

		user, err := service.users.FindOrCreateByEmail(email)
		if err != nil {
			return models.User{}, fmt.Errorf("%w: %v", ErrLoginFailed, err)
		}
		return user, nil
	}
	return models.User{}, ErrLoginCodeRejected
}

// PurgeExpired deletes codes that expired before now and returns how many
// were removed.
func (service *LoginService) PurgeExpired(now time.Time) (int64, error) {
	return service.codes.DeleteExpired(now.UTC())
}
