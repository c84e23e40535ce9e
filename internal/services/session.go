package services

import (
	"errors"
	"fmt"

	"github.com/terraincognita07/sidetrack/internal/models"
)

var (
	ErrPatientOnly       = errors.New("only the patient can manage the household")
	ErrOpenSessionFailed = errors.New("open session failed")
)

// Session is the explicit actor context every household operation runs under.
// It is built once at sign-in by SessionService.Open and discarded at sign-out.
type Session struct {
	UserID      string `json:"user_id"`
	Email       string `json:"email"`
	HouseholdID string `json:"household_id"`
	Role        string `json:"role"`
}

func (session *Session) IsPatient() bool {
	return session != nil && session.Role == models.RolePatient
}

func (session *Session) requirePatient() error {
	if !session.IsPatient() {
		return ErrPatientOnly
	}
	return nil
}

type SessionHouseholdRepository interface {
	FindOwnedBy(userID string) (models.Household, bool, error)
	FindActiveMembership(userID string) (models.HouseholdMember, bool, error)
	Create(household *models.Household) error
}

type SessionService struct {
	households SessionHouseholdRepository
}

func NewSessionService(households SessionHouseholdRepository) *SessionService {
	return &SessionService{households: households}
}

// Open resolves the household for user. An owned household wins over a
// membership so patients always land on their own data; a user with neither
// gets a new household and becomes its patient.
func (service *SessionService) Open(user models.User) (*Session, error) {
	session := &Session{UserID: user.ID, Email: user.Email}

	owned, found, err := service.households.FindOwnedBy(user.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOpenSessionFailed, err)
	}
	if found {
		session.HouseholdID = owned.ID
		session.Role = models.RolePatient
		return session, nil
	}

	membership, found, err := service.households.FindActiveMembership(user.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOpenSessionFailed, err)
	}
	if found {
		session.HouseholdID = membership.HouseholdID
		session.Role = membership.Role
		if session.Role == "" {
			session.Role = models.RolePartner
		}
		return session, nil
	}

	household := models.Household{OwnerUserID: user.ID}
	if err := service.households.Create(&household); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOpenSessionFailed, err)
	}
	session.HouseholdID = household.ID
	session.Role = models.RolePatient
	return session, nil
}
