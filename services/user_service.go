package services

import (
	"errors"
	"time"

	"tasknest/tasknest/broker"
	"tasknest/tasknest/database"
	"tasknest/tasknest/models"

	"gorm.io/gorm"
)

type UserServiceInterface interface {
	CreateUser(db *database.Database, username, email, password string) (models.User, error)
	GetUserById(db *database.Database, id uint) (models.User, error)
	GetUsers(db *database.Database, params map[string]interface{}) ([]models.User, error)
	UpdateUser(db *database.Database, id uint, fields map[string]interface{}) (models.User, []string, error)
	DeleteUser(db *database.Database, id uint) error
}

type UserService struct {
	auth AuthServiceInterface
}

func NewUserService(auth AuthServiceInterface) *UserService {
	return &UserService{auth: auth}
}

func (s *UserService) CreateUser(db *database.Database, username, email, password string) (models.User, error) {
	var count int64
	if err := db.DB.Model(&models.User{}).
		Where("username = ? OR email = ?", username, email).
		Count(&count).Error; err != nil {
		return models.User{}, err
	}
	if count > 0 {
		return models.User{}, ErrResourceExists
	}

	hash, err := s.auth.HashPassword(password)
	if err != nil {
		return models.User{}, err
	}

	user := models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		DateCreated:  time.Now().UTC(),
	}

	tx := db.DB.Begin()
	if tx.Error != nil {
		return models.User{}, tx.Error
	}

	if err := tx.Create(&user).Error; err != nil {
		tx.Rollback()
		return models.User{}, err
	}

	event, err := models.NewEvent("user.created", "user", map[string]interface{}{
		"user_id":  user.ID,
		"username": user.Username,
		"email":    user.Email,
	})
	if err != nil {
		tx.Rollback()
		return models.User{}, err
	}

	if err := tx.Create(event).Error; err != nil {
		tx.Rollback()
		return models.User{}, err
	}

	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		return models.User{}, err
	}

	broker.PublishEvent(broker.UserEventsSubject, event)

	user.Tasks = []models.Task{}
	return user, nil
}

func (s *UserService) GetUserById(db *database.Database, id uint) (models.User, error) {
	var user models.User
	if err := db.DB.Preload("Tasks").First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, err
	}
	if user.Tasks == nil {
		user.Tasks = []models.Task{}
	}
	return user, nil
}

func (s *UserService) GetUsers(db *database.Database, params map[string]interface{}) ([]models.User, error) {
	users := []models.User{}
	query := db.DB

	if username, ok := params["username"].(string); ok && username != "" {
		query = query.Where("username = ?", username)
	}
	if email, ok := params["email"].(string); ok && email != "" {
		query = query.Where("email = ?", email)
	}

	if err := query.Preload("Tasks").Find(&users).Error; err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].Tasks == nil {
			users[i].Tasks = []models.Task{}
		}
	}
	return users, nil
}

// UpdateUser applies the allow-listed fields (username, email, password) to
// the user and reports which of them were present in the request. Unknown
// keys are dropped without error; a password change is stored re-hashed.
func (s *UserService) UpdateUser(db *database.Database, id uint, fields map[string]interface{}) (models.User, []string, error) {
	tx := db.DB.Begin()
	if tx.Error != nil {
		return models.User{}, nil, tx.Error
	}

	var user models.User
	if err := tx.Preload("Tasks").First(&user, "id = ?", id).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, nil, ErrUserNotFound
		}
		return models.User{}, nil, err
	}

	updates := map[string]interface{}{}
	changed := []string{}

	if username, ok := fields["username"].(string); ok {
		updates["username"] = username
		user.Username = username
		changed = append(changed, "username")
	}
	if email, ok := fields["email"].(string); ok {
		updates["email"] = email
		user.Email = email
		changed = append(changed, "email")
	}
	if password, ok := fields["password"].(string); ok {
		hash, err := s.auth.HashPassword(password)
		if err != nil {
			tx.Rollback()
			return models.User{}, nil, err
		}
		updates["password_hash"] = hash
		user.PasswordHash = hash
		changed = append(changed, "password")
	}

	if len(updates) > 0 {
		if err := tx.Model(&models.User{}).Where("id = ?", user.ID).Updates(updates).Error; err != nil {
			tx.Rollback()
			return models.User{}, nil, err
		}
	}

	event, err := models.NewEvent("user.updated", "user", map[string]interface{}{
		"user_id":        user.ID,
		"changed_fields": changed,
	})
	if err != nil {
		tx.Rollback()
		return models.User{}, nil, err
	}

	if err := tx.Create(event).Error; err != nil {
		tx.Rollback()
		return models.User{}, nil, err
	}

	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		return models.User{}, nil, err
	}

	broker.PublishEvent(broker.UserEventsSubject, event)

	if user.Tasks == nil {
		user.Tasks = []models.Task{}
	}
	return user, changed, nil
}

// DeleteUser removes the user and every task they own in one transaction,
// so a failure mid-cascade leaves no orphaned tasks behind.
func (s *UserService) DeleteUser(db *database.Database, id uint) error {
	tx := db.DB.Begin()
	if tx.Error != nil {
		return tx.Error
	}

	var user models.User
	if err := tx.First(&user, "id = ?", id).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if err := tx.Where("user_id = ?", user.ID).Delete(&models.Task{}).Error; err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Delete(&user).Error; err != nil {
		tx.Rollback()
		return err
	}

	event, err := models.NewEvent("user.deleted", "user", map[string]interface{}{
		"user_id": user.ID,
	})
	if err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Create(event).Error; err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		return err
	}

	broker.PublishEvent(broker.UserEventsSubject, event)

	return nil
}

var UserServiceInstance UserServiceInterface
