package services

import (
	"errors"
	"testing"
	"time"

	"github.com/terraincognita07/sidetrack/internal/models"
)

var householdNow = time.Date(2026, time.July, 1, 10, 0, 0, 0, time.UTC)

type memoryHouseholds struct {
	households map[string]models.Household
	members    []models.HouseholdMember
}

func newMemoryHouseholds() *memoryHouseholds {
	return &memoryHouseholds{households: map[string]models.Household{"h1": {ID: "h1", OwnerUserID: "patient"}}}
}

func (repo *memoryHouseholds) FindByID(id string) (models.Household, bool, error) {
	household, ok := repo.households[id]
	return household, ok, nil
}

func (repo *memoryHouseholds) FindMember(householdID string, userID string) (models.HouseholdMember, bool, error) {
	for _, member := range repo.members {
		if member.HouseholdID == householdID && member.UserID == userID {
			return member, true, nil
		}
	}
	return models.HouseholdMember{}, false, nil
}

func (repo *memoryHouseholds) AddMember(member *models.HouseholdMember) error {
	repo.members = append(repo.members, *member)
	return nil
}

func (repo *memoryHouseholds) ReactivateMember(householdID string, userID string, role string) error {
	for index := range repo.members {
		if repo.members[index].HouseholdID == householdID && repo.members[index].UserID == userID {
			repo.members[index].RemovedAt = nil
			repo.members[index].Role = role
		}
	}
	return nil
}

func (repo *memoryHouseholds) ListActiveMembers(householdID string) ([]models.HouseholdMember, error) {
	active := make([]models.HouseholdMember, 0)
	for _, member := range repo.members {
		if member.HouseholdID == householdID && member.RemovedAt == nil {
			active = append(active, member)
		}
	}
	return active, nil
}

func (repo *memoryHouseholds) RemoveMember(householdID string, userID string, removedAt time.Time) (bool, error) {
	for index := range repo.members {
		member := &repo.members[index]
		if member.HouseholdID == householdID && member.UserID == userID && member.RemovedAt == nil {
			member.RemovedAt = &removedAt
			return true, nil
		}
	}
	return false, nil
}

func (repo *memoryHouseholds) UpdateDisplayName(householdID string, userID string, displayName string) error {
	for index := range repo.members {
		if repo.members[index].HouseholdID == householdID && repo.members[index].UserID == userID {
			repo.members[index].DisplayName = displayName
		}
	}
	return nil
}

func (repo *memoryHouseholds) UpdatePatientName(householdID string, patientName string) error {
	household := repo.households[householdID]
	household.PatientName = patientName
	repo.households[householdID] = household
	return nil
}

type memoryInvites struct {
	invites []models.HouseholdInvite
	findErr error
}

func (repo *memoryInvites) Create(invite *models.HouseholdInvite) error {
	invite.ID = "inv-" + invite.InvitedEmail
	repo.invites = append(repo.invites, *invite)
	return nil
}

func (repo *memoryInvites) ListByHousehold(householdID string) ([]models.HouseholdInvite, error) {
	result := make([]models.HouseholdInvite, 0)
	for _, invite := range repo.invites {
		if invite.HouseholdID == householdID {
			result = append(result, invite)
		}
	}
	return result, nil
}

func (repo *memoryInvites) ListAcceptedByHousehold(householdID string) ([]models.HouseholdInvite, error) {
	result := make([]models.HouseholdInvite, 0)
	for _, invite := range repo.invites {
		if invite.HouseholdID == householdID && invite.AcceptedByUserID != nil {
			result = append(result, invite)
		}
	}
	return result, nil
}

func (repo *memoryInvites) Revoke(householdID string, inviteID string) (bool, error) {
	for index := range repo.invites {
		if repo.invites[index].ID == inviteID && repo.invites[index].HouseholdID == householdID {
			repo.invites[index].Revoked = true
			return true, nil
		}
	}
	return false, nil
}

func (repo *memoryInvites) FindLatestActiveByEmail(email string, now time.Time) (models.HouseholdInvite, bool, error) {
	if repo.findErr != nil {
		return models.HouseholdInvite{}, false, repo.findErr
	}
	for index := len(repo.invites) - 1; index >= 0; index-- {
		invite := repo.invites[index]
		if invite.InvitedEmail == email && invite.IsPending(now) {
			return invite, true, nil
		}
	}
	return models.HouseholdInvite{}, false, nil
}

func (repo *memoryInvites) MarkAccepted(inviteID string, userID string, acceptedAt time.Time) error {
	for index := range repo.invites {
		if repo.invites[index].ID == inviteID {
			repo.invites[index].AcceptedAt = &acceptedAt
			repo.invites[index].AcceptedByUserID = &userID
		}
	}
	return nil
}

var (
	patientSession = &Session{UserID: "patient", HouseholdID: "h1", Role: models.RolePatient}
	partnerSession = &Session{UserID: "partner", HouseholdID: "h1", Role: models.RolePartner}
)

func newTestHouseholdService() (*HouseholdService, *memoryHouseholds, *memoryInvites) {
	households := newMemoryHouseholds()
	invites := &memoryInvites{}
	return NewHouseholdService(households, invites, fixedClock(householdNow)), households, invites
}

func TestFilterPendingInvites(t *testing.T) {
	accepted := householdNow.Add(-time.Hour)
	invites := []models.HouseholdInvite{
		{ID: "pending", ExpiresAt: householdNow.Add(time.Hour)},
		{ID: "expired", ExpiresAt: householdNow.Add(-time.Second)},
		{ID: "accepted", ExpiresAt: householdNow.Add(time.Hour), AcceptedAt: &accepted},
		{ID: "revoked", ExpiresAt: householdNow.Add(time.Hour), Revoked: true},
		{ID: "boundary", ExpiresAt: householdNow},
	}

	pending := FilterPendingInvites(invites, householdNow)
	if len(pending) != 1 || pending[0].ID != "pending" {
		t.Fatalf("FilterPendingInvites() = %#v", pending)
	}
}

func TestCreateInviteRequiresPatient(t *testing.T) {
	service, _, _ := newTestHouseholdService()

	if _, err := service.CreateInvite(partnerSession, "friend@example.com"); !errors.Is(err, ErrPatientOnly) {
		t.Fatalf("expected ErrPatientOnly, got %v", err)
	}
	if _, err := service.CreateInvite(patientSession, "nope"); !errors.Is(err, ErrInviteEmailInvalid) {
		t.Fatalf("expected ErrInviteEmailInvalid, got %v", err)
	}

	invite, err := service.CreateInvite(patientSession, " Friend@Example.com ")
	if err != nil {
		t.Fatalf("CreateInvite() unexpected error: %v", err)
	}
	if invite.InvitedEmail != "friend@example.com" || invite.Role != models.RolePartner {
		t.Fatalf("CreateInvite() = %#v", invite)
	}
	if !invite.ExpiresAt.Equal(householdNow.Add(InviteValidity)) {
		t.Fatalf("invite expires at %v", invite.ExpiresAt)
	}
}

func TestClaimInviteJoinsHouseholdAndMembersListEmail(t *testing.T) {
	service, households, _ := newTestHouseholdService()
	if _, err := service.CreateInvite(patientSession, "partner@example.com"); err != nil {
		t.Fatalf("create invite: %v", err)
	}

	claim, found, err := service.ClaimInvite(models.User{ID: "partner", Email: "Partner@example.com"})
	if err != nil || !found {
		t.Fatalf("ClaimInvite() = %v, %v", found, err)
	}
	if claim.HouseholdID != "h1" || claim.Role != models.RolePartner {
		t.Fatalf("ClaimInvite() = %#v", claim)
	}
	if len(households.members) != 1 {
		t.Fatalf("expected one member, got %#v", households.members)
	}

	_, found, err = service.ClaimInvite(models.User{ID: "partner", Email: "partner@example.com"})
	if err != nil || found {
		t.Fatalf("second ClaimInvite() = %v, %v; want no invite", found, err)
	}

	if err := households.AddMember(&models.HouseholdMember{HouseholdID: "h1", UserID: "stranger", Role: models.RolePartner}); err != nil {
		t.Fatalf("add member: %v", err)
	}
	members, err := service.Members(patientSession)
	if err != nil {
		t.Fatalf("Members() unexpected error: %v", err)
	}
	if len(members) != 2 || members[0].Email != "partner@example.com" || members[1].Email != "Unknown" {
		t.Fatalf("Members() = %#v", members)
	}

	if _, err := service.Members(partnerSession); !errors.Is(err, ErrPatientOnly) {
		t.Fatalf("expected ErrPatientOnly, got %v", err)
	}
}

func TestClaimInviteWithoutInvite(t *testing.T) {
	service, _, invites := newTestHouseholdService()

	_, found, err := service.ClaimInvite(models.User{ID: "x", Email: "x@example.com"})
	if err != nil || found {
		t.Fatalf("ClaimInvite() = %v, %v; want not found", found, err)
	}

	invites.findErr = errors.New("timeout")
	if _, _, err := service.ClaimInvite(models.User{ID: "x", Email: "x@example.com"}); !errors.Is(err, ErrClaimInviteFailed) {
		t.Fatalf("expected ErrClaimInviteFailed, got %v", err)
	}
}

func TestRevokeInviteAndPendingList(t *testing.T) {
	service, _, _ := newTestHouseholdService()
	invite, err := service.CreateInvite(patientSession, "a@example.com")
	if err != nil {
		t.Fatalf("create invite: %v", err)
	}
	if _, err := service.CreateInvite(patientSession, "b@example.com"); err != nil {
		t.Fatalf("create invite: %v", err)
	}

	if err := service.RevokeInvite(partnerSession, invite.ID); !errors.Is(err, ErrPatientOnly) {
		t.Fatalf("expected ErrPatientOnly, got %v", err)
	}
	if err := service.RevokeInvite(patientSession, invite.ID); err != nil {
		t.Fatalf("RevokeInvite() unexpected error: %v", err)
	}
	if err := service.RevokeInvite(patientSession, "missing"); !errors.Is(err, ErrInviteNotFound) {
		t.Fatalf("expected ErrInviteNotFound, got %v", err)
	}

	pending, err := service.PendingInvites(patientSession)
	if err != nil {
		t.Fatalf("PendingInvites() unexpected error: %v", err)
	}
	if len(pending) != 1 || pending[0].InvitedEmail != "b@example.com" {
		t.Fatalf("PendingInvites() = %#v", pending)
	}
}

func TestRemoveMemberAndDisplayNames(t *testing.T) {
	service, households, _ := newTestHouseholdService()
	households.members = []models.HouseholdMember{{HouseholdID: "h1", UserID: "partner", Role: models.RolePartner}}

	if err := service.SyncDisplayName(patientSession, "  Ana "); err != nil {
		t.Fatalf("sync patient name: %v", err)
	}
	if err := service.SyncDisplayName(partnerSession, "Ben"); err != nil {
		t.Fatalf("sync partner name: %v", err)
	}
	names, err := service.DisplayNames(partnerSession)
	if err != nil {
		t.Fatalf("DisplayNames() unexpected error: %v", err)
	}
	if names.Patient != "Ana" || names.Partner != "Ben" {
		t.Fatalf("DisplayNames() = %#v", names)
	}

	if err := service.RemoveMember(partnerSession, "partner"); !errors.Is(err, ErrPatientOnly) {
		t.Fatalf("expected ErrPatientOnly, got %v", err)
	}
	if err := service.RemoveMember(patientSession, "partner"); err != nil {
		t.Fatalf("RemoveMember() unexpected error: %v", err)
	}
	if err := service.RemoveMember(patientSession, "partner"); !errors.Is(err, ErrMemberNotFound) {
		t.Fatalf("expected ErrMemberNotFound, got %v", err)
	}
}
