package activity

import (
	"encoding/json"
	"log"

	"github.com/budgetboard-dev/budgetboard/db"
	"github.com/budgetboard-dev/budgetboard/internal/models"
	"gorm.io/datatypes"
)

// Log appends one audit line for a project. It is fire-and-forget: a failed
// insert is logged and never propagated, so it can never roll back or block
// the mutation it describes.
func Log(projectID uint, taskID *uint, userID *uint, action string, details map[string]interface{}) {
	if details == nil {
		details = map[string]interface{}{}
	}

	blob, err := json.Marshal(details)

	if err != nil {
		log.Printf("Activity log error: %v", err)
		return
	}

	entry := models.Activity{
		ProjectID: projectID,
		TaskID:    taskID,
		UserID:    userID,
		Action:    action,
		Details:   datatypes.JSON(blob),
	}

	if err := db.DB.Create(&entry).Error; err != nil {
		log.Printf("Activity log error: %v", err)
	}
}
