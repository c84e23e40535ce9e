package db

import "gorm.io/gorm"

type Repositories struct {
	Users       *UserRepository
	Households  *HouseholdRepository
	Invites     *InviteRepository
	Entries     *EntryRepository
	ShareLinks  *ShareLinkRepository
	LoginCodes  *LoginCodeRepository
	CachedAsset *CachedResponseRepository
}

func NewRepositories(database *gorm.DB) *Repositories {
	return &Repositories{
		Users:       NewUserRepository(database),
		Households:  NewHouseholdRepository(database),
		Invites:     NewInviteRepository(database),
		Entries:     NewEntryRepository(database),
		ShareLinks:  NewShareLinkRepository(database),
		LoginCodes:  NewLoginCodeRepository(database),
		CachedAsset: NewCachedResponseRepository(database),
	}
}
