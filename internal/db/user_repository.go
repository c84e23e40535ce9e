package db

import (
	"errors"

	"github.com/google/uuid"
	"github.com/terraincognita07/sidetrack/internal/models"
	"gorm.io/gorm"
)

type UserRepository struct {
	database *gorm.DB
}

func NewUserRepository(database *gorm.DB) *UserRepository {
	return &UserRepository{database: database}
}

func (repo *UserRepository) FindByID(userID string) (models.User, bool, error) {
	var user models.User
	err := repo.database.Where("id = ?", userID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.User{}, false, nil
	}
	if err != nil {
		return models.User{}, false, err
	}
	return user, true, nil
}

func (repo *UserRepository) FindByNormalizedEmail(email string) (models.User, bool, error) {
	var user models.User
	err := repo.database.Where("lower(trim(email)) = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.User{}, false, nil
	}
	if err != nil {
		return models.User{}, false, err
	}
	return user, true, nil
}

func (repo *UserRepository) Create(user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	return repo.database.Create(user).Error
}

// FindOrCreateByEmail returns the user registered under email, creating it on
// first sign-in.
func (repo *UserRepository) FindOrCreateByEmail(email string) (models.User, error) {
	user, found, err := repo.FindByNormalizedEmail(email)
	if err != nil {
		return models.User{}, err
	}
	if found {
		return user, nil
	}

	user = models.User{Email: email}
	if err := repo.Create(&user); err != nil {
		return models.User{}, err
	}
	return user, nil
}

// EmailsByIDs maps user ids to their email addresses.
func (repo *UserRepository) EmailsByIDs(userIDs []string) (map[string]string, error) {
	emails := make(map[string]string, len(userIDs))
	if len(userIDs) == 0 {
		return emails, nil
	}

	users := make([]models.User, 0, len(userIDs))
	if err := repo.database.Where("id IN ?", userIDs).Find(&users).Error; err != nil {
		return nil, err
	}
	for _, user := range users {
		emails[user.ID] = user.Email
	}
	return emails, nil
}
