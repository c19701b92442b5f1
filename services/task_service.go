package services

import (
	"errors"
	"strings"
	"time"

	"tasknest/tasknest/broker"
	"tasknest/tasknest/database"
	"tasknest/tasknest/models"

	"gorm.io/gorm"
)

type TaskServiceInterface interface {
	CreateTask(db *database.Database, taskData map[string]interface{}, userID uint) (models.Task, error)
	GetTaskById(db *database.Database, id uint) (models.Task, error)
	GetTasks(db *database.Database, params map[string]interface{}) ([]models.Task, error)
	UpdateTask(db *database.Database, id uint, fields map[string]interface{}) (models.Task, error)
	DeleteTask(db *database.Database, id uint) error
}

type TaskService struct{}

func (s *TaskService) CreateTask(db *database.Database, taskData map[string]interface{}, userID uint) (models.Task, error) {
	title, ok := taskData["title"].(string)
	if !ok || title == "" {
		return models.Task{}, ErrValidation
	}
	description, ok := taskData["description"].(string)
	if !ok {
		return models.Task{}, ErrValidation
	}

	completed := false
	if c, ok := taskData["completed"].(bool); ok {
		completed = c
	}

	task := models.Task{
		Title:       title,
		Description: description,
		Completed:   completed,
		CreatedAt:   time.Now().UTC(),
		UserID:      userID,
	}

	tx := db.DB.Begin()
	if tx.Error != nil {
		return models.Task{}, tx.Error
	}

	if err := tx.Create(&task).Error; err != nil {
		tx.Rollback()
		return models.Task{}, err
	}

	event, err := models.NewEvent("task.created", "task", map[string]interface{}{
		"task_id": task.ID,
		"user_id": task.UserID,
		"title":   task.Title,
	})
	if err != nil {
		tx.Rollback()
		return models.Task{}, err
	}

	if err := tx.Create(event).Error; err != nil {
		tx.Rollback()
		return models.Task{}, err
	}

	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		return models.Task{}, err
	}

	broker.PublishEvent(broker.TaskEventsSubject, event)

	return task, nil
}

func (s *TaskService) GetTaskById(db *database.Database, id uint) (models.Task, error) {
	var task models.Task
	if err := db.DB.First(&task, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Task{}, ErrTaskNotFound
		}
		return models.Task{}, err
	}
	return task, nil
}

func (s *TaskService) GetTasks(db *database.Database, params map[string]interface{}) ([]models.Task, error) {
	tasks := []models.Task{}
	query := db.DB

	// Case-insensitive substring match on title; LOWER/LIKE works on both
	// postgres and sqlite.
	if q, ok := params["q"].(string); ok && q != "" {
		query = query.Where("LOWER(title) LIKE ?", "%"+strings.ToLower(q)+"%")
	}
	if userID, ok := params["user_id"].(uint); ok {
		query = query.Where("user_id = ?", userID)
	}
	if completed, ok := params["completed"].(bool); ok {
		query = query.Where("completed = ?", completed)
	}

	if err := query.Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// UpdateTask applies the allow-listed fields (title, description) and drops
// everything else, including user_id and completed, without error.
func (s *TaskService) UpdateTask(db *database.Database, id uint, fields map[string]interface{}) (models.Task, error) {
	tx := db.DB.Begin()
	if tx.Error != nil {
		return models.Task{}, tx.Error
	}

	var task models.Task
	if err := tx.First(&task, "id = ?", id).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Task{}, ErrTaskNotFound
		}
		return models.Task{}, err
	}

	updates := map[string]interface{}{}
	if title, ok := fields["title"].(string); ok {
		updates["title"] = title
		task.Title = title
	}
	if description, ok := fields["description"].(string); ok {
		updates["description"] = description
		task.Description = description
	}

	if len(updates) > 0 {
		if err := tx.Model(&models.Task{}).Where("id = ?", task.ID).Updates(updates).Error; err != nil {
			tx.Rollback()
			return models.Task{}, err
		}
	}

	event, err := models.NewEvent("task.updated", "task", map[string]interface{}{
		"task_id": task.ID,
		"user_id": task.UserID,
	})
	if err != nil {
		tx.Rollback()
		return models.Task{}, err
	}

	if err := tx.Create(event).Error; err != nil {
		tx.Rollback()
		return models.Task{}, err
	}

	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		return models.Task{}, err
	}

	broker.PublishEvent(broker.TaskEventsSubject, event)

	return task, nil
}

func (s *TaskService) DeleteTask(db *database.Database, id uint) error {
	tx := db.DB.Begin()
	if tx.Error != nil {
		return tx.Error
	}

	var task models.Task
	if err := tx.First(&task, "id = ?", id).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return err
	}

	if err := tx.Delete(&task).Error; err != nil {
		tx.Rollback()
		return err
	}

	event, err := models.NewEvent("task.deleted", "task", map[string]interface{}{
		"task_id": task.ID,
		"user_id": task.UserID,
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

	broker.PublishEvent(broker.TaskEventsSubject, event)

	return nil
}

var TaskServiceInstance TaskServiceInterface = &TaskService{}
