package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/terraincognita07/sidetrack/internal/models"
)

const (
	InviteValidity     = 7 * 24 * time.Hour
	unknownMemberEmail = "Unknown"
)

var (
	ErrInviteEmailInvalid  = errors.New("invite email invalid")
	ErrInviteNotFound      = errors.New("invite not found")
	ErrMemberNotFound      = errors.New("member not found")
	ErrCreateInviteFailed  = errors.New("create invite failed")
	ErrClaimInviteFailed   = errors.New("claim invite failed")
	ErrHouseholdLoadFailed = errors.New("household load failed")
	ErrDisplayNameTooLong  = errors.New("display name too long")
)

const maxDisplayNameLength = 80

type HouseholdRepository interface {
	FindByID(householdID string) (models.Household, bool, error)
	FindMember(householdID string, userID string) (models.HouseholdMember, bool, error)
	AddMember(member *models.HouseholdMember) error
	ReactivateMember(householdID string, userID string, role string) error
	ListActiveMembers(householdID string) ([]models.HouseholdMember, error)
	RemoveMember(householdID string, userID string, removedAt time.Time) (bool, error)
	UpdateDisplayName(householdID string, userID string, displayName string) error
	UpdatePatientName(householdID string, patientName string) error
}

type InviteRepository interface {
	Create(invite *models.HouseholdInvite) error
	ListByHousehold(householdID string) ([]models.HouseholdInvite, error)
	ListAcceptedByHousehold(householdID string) ([]models.HouseholdInvite, error)
	Revoke(householdID string, inviteID string) (bool, error)
	FindLatestActiveByEmail(email string, now time.Time) (models.HouseholdInvite, bool, error)
	MarkAccepted(inviteID string, userID string, acceptedAt time.Time) error
}

type HouseholdService struct {
	households HouseholdRepository
	invites    InviteRepository
	now        func() time.Time
}

// InviteClaim is the household a claimed invite admitted the user to.
type InviteClaim struct {
	HouseholdID string `json:"household_id"`
	Role        string `json:"role"`
}

type MemberView struct {
	UserID      string    `json:"user_id"`
	Role        string    `json:"role"`
	DisplayName string    `json:"display_name"`
	Email       string    `json:"email"`
	CreatedAt   time.Time `json:"created_at"`
}

type DisplayNames struct {
	Patient string `json:"patient"`
	Partner string `json:"partner"`
}

func NewHouseholdService(households HouseholdRepository, invites InviteRepository, now func() time.Time) *HouseholdService {
	if now == nil {
		now = time.Now
	}
	return &HouseholdService{households: households, invites: invites, now: now}
}

func (service *HouseholdService) CreateInvite(session *Session, rawEmail string) (models.HouseholdInvite, error) {
	if err := session.requirePatient(); err != nil {
		return models.HouseholdInvite{}, err
	}
	email := NormalizeAuthEmail(rawEmail)
	if email == "" {
		return models.HouseholdInvite{}, ErrInviteEmailInvalid
	}

	now := service.now().UTC()
	invite := models.HouseholdInvite{
		HouseholdID:  session.HouseholdID,
		InvitedEmail: email,
		Role:         models.RolePartner,
		ExpiresAt:    now.Add(InviteValidity),
		CreatedAt:    now,
	}
	if err := service.invites.Create(&invite); err != nil {
		return models.HouseholdInvite{}, fmt.Errorf("%w: %v", ErrCreateInviteFailed, err)
	}
	return invite, nil
}

func (service *HouseholdService) PendingInvites(session *Session) ([]models.HouseholdInvite, error) {
	if err := session.requirePatient(); err != nil {
		return nil, err
	}
	invites, err := service.invites.ListByHousehold(session.HouseholdID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrHouseholdLoadFailed, err)
	}
	return FilterPendingInvites(invites, service.now()), nil
}

// FilterPendingInvites keeps invites that are unexpired, unaccepted and not
// revoked at now.
func FilterPendingInvites(invites []models.HouseholdInvite, now time.Time) []models.HouseholdInvite {
	pending := make([]models.HouseholdInvite, 0, len(invites))
	for _, invite := range invites {
		if invite.IsPending(now) {
			pending = append(pending, invite)
		}
	}
	return pending
}

func (service *HouseholdService) RevokeInvite(session *Session, inviteID string) error {
	if err := session.requirePatient(); err != nil {
		return err
	}
	revoked, err := service.invites.Revoke(session.HouseholdID, inviteID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrHouseholdLoadFailed, err)
	}
	if !revoked {
		return ErrInviteNotFound
	}
	return nil
}

// ClaimInvite admits user to the household of the newest active invite sent to
// their email. found is false when no such invite exists.
func (service *HouseholdService) ClaimInvite(user models.User) (InviteClaim, bool, error) {
	email := NormalizeAuthEmail(user.Email)
	if email == "" {
		return InviteClaim{}, false, nil
	}
	now := service.now().UTC()

	invite, found, err := service.invites.FindLatestActiveByEmail(email, now)
	if err != nil {
		return InviteClaim{}, false, fmt.Errorf("%w: %v", ErrClaimInviteFailed, err)
	}
	if !found {
		return InviteClaim{}, false, nil
	}

	role := invite.Role
	if role == "" {
		role = models.RolePartner
	}

	member, exists, err := service.households.FindMember(invite.HouseholdID, user.ID)
	if err != nil {
		return InviteClaim{}, false, fmt.Errorf("%w: %v", ErrClaimInviteFailed, err)
	}
	switch {
	case !exists:
		if err := service.households.AddMember(&models.HouseholdMember{
			HouseholdID: invite.HouseholdID,
			UserID:      user.ID,
			Role:        role,
		}); err != nil {
			return InviteClaim{}, false, fmt.Errorf("%w: %v", ErrClaimInviteFailed, err)
		}
	case member.RemovedAt != nil:
		if err := service.households.ReactivateMember(invite.HouseholdID, user.ID, role); err != nil {
			return InviteClaim{}, false, fmt.Errorf("%w: %v", ErrClaimInviteFailed, err)
		}
	}

	if err := service.invites.MarkAccepted(invite.ID, user.ID, now); err != nil {
		return InviteClaim{}, false, fmt.Errorf("%w: %v", ErrClaimInviteFailed, err)
	}
	return InviteClaim{HouseholdID: invite.HouseholdID, Role: role}, true, nil
}

// Members lists active members. Emails come from the invites they accepted.
func (service *HouseholdService) Members(session *Session) ([]MemberView, error) {
	if err := session.requirePatient(); err != nil {
		return nil, err
	}

	members, err := service.households.ListActiveMembers(session.HouseholdID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrHouseholdLoadFailed, err)
	}
	accepted, err := service.invites.ListAcceptedByHousehold(session.HouseholdID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrHouseholdLoadFailed, err)
	}

	emails := make(map[string]string, len(accepted))
	for _, invite := range accepted {
		if invite.AcceptedByUserID != nil {
			emails[*invite.AcceptedByUserID] = invite.InvitedEmail
		}
	}

	views := make([]MemberView, 0, len(members))
	for _, member := range members {
		email, ok := emails[member.UserID]
		if !ok {
			email = unknownMemberEmail
		}
		views = append(views, MemberView{
			UserID:      member.UserID,
			Role:        member.Role,
			DisplayName: member.DisplayName,
			Email:       email,
			CreatedAt:   member.CreatedAt,
		})
	}
	return views, nil
}

func (service *HouseholdService) RemoveMember(session *Session, userID string) error {
	if err := session.requirePatient(); err != nil {
		return err
	}
	removed, err := service.households.RemoveMember(session.HouseholdID, userID, service.now().UTC())
	if err != nil {
		return fmt.Errorf("%w: %v", ErrHouseholdLoadFailed, err)
	}
	if !removed {
		return ErrMemberNotFound
	}
	return nil
}

// SyncDisplayName stores the caller's name: the patient's on the household,
// a partner's on their membership.
func (service *HouseholdService) SyncDisplayName(session *Session, displayName string) error {
	if session == nil || session.HouseholdID == "" {
		return ErrSessionMissing
	}
	displayName = strings.TrimSpace(displayName)
	if len([]rune(displayName)) > maxDisplayNameLength {
		return ErrDisplayNameTooLong
	}

	if session.IsPatient() {
		return service.households.UpdatePatientName(session.HouseholdID, displayName)
	}
	return service.households.UpdateDisplayName(session.HouseholdID, session.UserID, displayName)
}

// DisplayNames returns the patient name and the first named partner.
func (service *HouseholdService) DisplayNames(session *Session) (DisplayNames, error) {
	if session == nil || session.HouseholdID == "" {
		return DisplayNames{}, ErrSessionMissing
	}

	names := DisplayNames{}
	household, found, err := service.households.FindByID(session.HouseholdID)
	if err != nil {
		return DisplayNames{}, fmt.Errorf("%w: %v", ErrHouseholdLoadFailed, err)
	}
	if found {
		names.Patient = household.PatientName
	}

	members, err := service.households.ListActiveMembers(session.HouseholdID)
	if err != nil {
		return DisplayNames{}, fmt.Errorf("%w: %v", ErrHouseholdLoadFailed, err)
	}
	for _, member := range members {
		if member.Role == models.RolePartner && member.DisplayName != "" {
			names.Partner = member.DisplayName
			break
		}
	}
	return names, nil
}
