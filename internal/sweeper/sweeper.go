package sweeper

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/budgetboard-dev/budgetboard/internal/models"
	"github.com/budgetboard-dev/budgetboard/internal/services"
	"github.com/budgetboard-dev/budgetboard/internal/types"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// runHour is the local hour of day each sweep fires at.
const runHour = 8

var overBudgetRatio = decimal.NewFromFloat(0.80)

// Sweeper runs the daily notification scans. The database handle and clock
// are injected so tests can drive RunOnce against a fixture time.
type Sweeper struct {
	db     *gorm.DB
	now    func() time.Time
	ctx    context.Context
	cancel context.CancelFunc
}

func New(db *gorm.DB, now func() time.Time) *Sweeper {
	ctx, cancel := context.WithCancel(context.Background())
	return &Sweeper{
		db:     db,
		now:    now,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start schedules the daily run. Overlap between runs is not guarded: a run
// is sequential and the next timer is armed only after it finishes.
func (s *Sweeper) Start() {
	log.Println("Starting notification sweeper...")

	go func() {
		for {
			now := s.now()
			next := time.Date(now.Year(), now.Month(), now.Day(), runHour, 0, 0, 0, now.Location())
			if !next.After(now) {
				next = next.AddDate(0, 0, 1)
			}

			timer := time.NewTimer(next.Sub(now))

			select {
			case <-s.ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
				s.RunOnce()
			}
		}
	}()
}

func (s *Sweeper) Stop() {
	s.cancel()
	log.Println("Notification sweeper stopped")
}

// RunOnce performs the three scans. Each recovers its own errors so one
// failing scan never aborts the others.
func (s *Sweeper) RunOnce() {
	if err := s.checkOverdueTasks(); err != nil {
		log.Printf("Error checking overdue tasks: %v", err)
	}

	if err := s.checkUpcomingDeadlines(); err != nil {
		log.Printf("Error checking upcoming deadlines: %v", err)
	}

	if err := s.checkBudgetLimits(); err != nil {
		log.Printf("Error checking budget limits: %v", err)
	}
}

func (s *Sweeper) startOfDay() time.Time {
	now := s.now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}

// checkOverdueTasks notifies the assignee of every incomplete task past its
// due date. Dedup is a same-day containment check on the message text against
// the task title, so a title that is a substring of another can suppress its
// sibling's notification.
func (s *Sweeper) checkOverdueTasks() error {
	today := s.startOfDay()

	var tasks []models.Task

	err := s.db.Preload("Project").
		Where("status != ? AND due_date IS NOT NULL AND due_date < ? AND assigned_to IS NOT NULL",
			types.TaskStatusCompleted, today).
		Find(&tasks).Error

	if err != nil {
		return err
	}

	for _, task := range tasks {
		var existing int64

		err := s.db.Model(&models.Notification{}).
			Where("user_id = ? AND type = ? AND message LIKE ? AND created_at >= ?",
				*task.AssignedTo, types.NotificationOverdue, "%"+task.Title+"%", today).
			Count(&existing).Error

		if err != nil {
			return err
		}

		if existing > 0 {
			continue
		}

		projectID := task.ProjectID
		notification := models.Notification{
			UserID:    *task.AssignedTo,
			ProjectID: &projectID,
			Type:      types.NotificationOverdue,
			Message:   fmt.Sprintf("Task %q in %q is overdue", task.Title, task.Project.Name),
		}

		if err := s.db.Create(&notification).Error; err != nil {
			return err
		}

		services.SendAlert(services.Alert{
			Title:       "Overdue task",
			ProjectName: task.Project.Name,
			Message:     notification.Message,
			Severity:    services.SeverityCritical,
		})
	}

	log.Printf("Checked %d overdue tasks", len(tasks))
	return nil
}

// checkUpcomingDeadlines notifies assignees of tasks due tomorrow. There is
// no dedup here: running the sweep twice in one day notifies twice.
func (s *Sweeper) checkUpcomingDeadlines() error {
	tomorrow := s.startOfDay().AddDate(0, 0, 1)
	dayAfter := tomorrow.AddDate(0, 0, 1)

	var tasks []models.Task

	err := s.db.Preload("Project").
		Where("status != ? AND assigned_to IS NOT NULL AND due_date >= ? AND due_date < ?",
			types.TaskStatusCompleted, tomorrow, dayAfter).
		Find(&tasks).Error

	if err != nil {
		return err
	}

	for _, task := range tasks {
		projectID := task.ProjectID
		notification := models.Notification{
			UserID:    *task.AssignedTo,
			ProjectID: &projectID,
			Type:      types.NotificationDueSoon,
			Message:   fmt.Sprintf("Task %q is due tomorrow in %q", task.Title, task.Project.Name),
		}

		if err := s.db.Create(&notification).Error; err != nil {
			return err
		}
	}

	log.Printf("Sent %d deadline reminders", len(tasks))
	return nil
}

// checkBudgetLimits notifies the owner of every project at or past 80% of
// budget. No dedup, same duplication caveat as the deadline scan.
func (s *Sweeper) checkBudgetLimits() error {
	var projects []models.Project

	if err := s.db.Find(&projects).Error; err != nil {
		return err
	}

	flagged := 0

	for _, project := range projects {
		if !project.TotalBudget.IsPositive() {
			continue
		}

		var amounts []decimal.Decimal

		err := s.db.Model(&models.Expense{}).
			Where("project_id = ?", project.ID).
			Pluck("amount", &amounts).Error

		if err != nil {
			return err
		}

		used := decimal.Sum(decimal.Zero, amounts...)

		if used.Div(project.TotalBudget).LessThan(overBudgetRatio) {
			continue
		}

		flagged++
		pct := used.Div(project.TotalBudget).Mul(decimal.NewFromInt(100)).Round(0).IntPart()
		projectID := project.ID
		notification := models.Notification{
			UserID:    project.OwnerID,
			ProjectID: &projectID,
			Type:      types.NotificationBudgetWarning,
			Message:   fmt.Sprintf("Budget for %q is %d%% used", project.Name, pct),
		}

		if err := s.db.Create(&notification).Error; err != nil {
			return err
		}

		services.SendAlert(services.Alert{
			Title:       "Budget warning",
			ProjectName: project.Name,
			Message:     notification.Message,
			Severity:    services.SeverityWarning,
		})
	}

	log.Printf("Checked %d budget limits", flagged)
	return nil
}
