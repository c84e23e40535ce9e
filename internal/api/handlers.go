package api

import (
	"errors"
	"log"
	"time"

	"github.com/terraincognita07/sidetrack/internal/db"
	"github.com/terraincognita07/sidetrack/internal/offline"
	"github.com/terraincognita07/sidetrack/internal/services"
	"gorm.io/gorm"
)

const (
	authTokenTTL = 30 * 24 * time.Hour

	loginAttemptLimit  = 8
	loginAttemptWindow = 15 * time.Minute
)

type Handler struct {
	db           *gorm.DB
	secretKey    []byte
	cookieSecure bool
	now          func() time.Time

	repositories *db.Repositories
	sessions     *services.SessionService
	households   *services.HouseholdService
	sync         *services.SyncGateway
	shares       *services.ShareService
	logins       *services.LoginService
	entries      *services.EntryFactory
	shell        *offline.Controller

	loginLimiter *attemptLimiter
}

// Options carries what NewHandler needs besides the database. Mailer and
// Shell are optional.
type Options struct {
	SecretKey    string
	CookieSecure bool
	AppBaseURL   string
	Mailer       services.CodeMailer
	Shell        *offline.Controller
	Now          func() time.Time
}

func NewHandler(database *gorm.DB, options Options) (*Handler, error) {
	if database == nil {
		return nil, errors.New("database is required")
	}
	if options.SecretKey == "" {
		log.Printf("SECRET_KEY is empty: sign-in and share endpoints will answer 500")
	}
	now := options.Now
	if now == nil {
		now = time.Now
	}

	handler := &Handler{
		db:           database,
		secretKey:    []byte(options.SecretKey),
		cookieSecure: options.CookieSecure,
		now:          now,
		shell:        options.Shell,
		loginLimiter: newAttemptLimiter(loginAttemptLimit, loginAttemptWindow),
	}
	return handler.withDependencies(options), nil
}

func (handler *Handler) withDependencies(options Options) *Handler {
	repositories := db.NewRepositories(handler.db)
	handler.repositories = repositories
	handler.sessions = services.NewSessionService(repositories.Households)
	handler.households = services.NewHouseholdService(repositories.Households, repositories.Invites, handler.now)
	handler.sync = services.NewSyncGateway(repositories.Entries)
	handler.shares = services.NewShareService(repositories.ShareLinks, repositories.Entries, options.AppBaseURL, handler.now)
	handler.logins = services.NewLoginService(repositories.LoginCodes, repositories.Users, options.Mailer)
	handler.entries = services.NewEntryFactory(handler.now)
	return handler
}
