package budget

import (
	"fmt"

	"github.com/budgetboard-dev/budgetboard/db"
	"github.com/budgetboard-dev/budgetboard/internal/models"
	"github.com/budgetboard-dev/budgetboard/internal/services"
	"github.com/budgetboard-dev/budgetboard/internal/types"
	"github.com/shopspring/decimal"
)

var (
	hundred   = decimal.NewFromInt(100)
	one       = decimal.NewFromInt(1)
	warnRatio = decimal.NewFromFloat(0.80)
)

type Summary struct {
	TotalBudget decimal.Decimal `json:"total_budget"`
	UsedBudget  decimal.Decimal `json:"used_budget"`
	Remaining   decimal.Decimal `json:"remaining"`
	PercentUsed int64           `json:"percent_used"`
}

// UsedBudget recomputes the live expense aggregate for a project. Amounts are
// summed as decimals in Go so repeated fractional additions stay exact on any
// backend.
func UsedBudget(projectID uint) (decimal.Decimal, error) {
	var amounts []decimal.Decimal

	err := db.DB.Model(&models.Expense{}).
		Where("project_id = ?", projectID).
		Pluck("amount", &amounts).Error

	if err != nil {
		return decimal.Zero, err
	}

	return decimal.Sum(decimal.Zero, amounts...), nil
}

// TaskCost sums the expenses linked to one task.
func TaskCost(taskID uint) (decimal.Decimal, error) {
	var amounts []decimal.Decimal

	err := db.DB.Model(&models.Expense{}).
		Where("task_id = ?", taskID).
		Pluck("amount", &amounts).Error

	if err != nil {
		return decimal.Zero, err
	}

	return decimal.Sum(decimal.Zero, amounts...), nil
}

// PercentUsed returns the rounded percentage of budget consumed, 0 when the
// budget itself is 0.
func PercentUsed(used, total decimal.Decimal) int64 {
	if total.IsZero() || total.IsNegative() {
		return 0
	}
	return used.Div(total).Mul(hundred).Round(0).IntPart()
}

func ProjectSummary(project *models.Project) (Summary, error) {
	used, err := UsedBudget(project.ID)

	if err != nil {
		return Summary{}, err
	}

	return Summary{
		TotalBudget: project.TotalBudget,
		UsedBudget:  used,
		Remaining:   project.TotalBudget.Sub(used),
		PercentUsed: PercentUsed(used, project.TotalBudget),
	}, nil
}

// CheckThreshold runs after an expense insert and warns every owner/admin
// member once the project crosses 80% of budget. The guard runs on the raw
// ratio, rounding only for the message text, so 79.6% stays silent and 99.5%
// still warns. The check is a point-in-time read: repeated inserts inside
// [80%,100%) each re-notify, and two concurrent inserts may both warn. That
// matches the at-most-once-effort contract of the write path.
func CheckThreshold(project *models.Project) error {
	if !project.TotalBudget.IsPositive() {
		return nil
	}

	used, err := UsedBudget(project.ID)

	if err != nil {
		return err
	}

	ratio := used.Div(project.TotalBudget)

	if ratio.LessThan(warnRatio) || ratio.GreaterThanOrEqual(one) {
		return nil
	}

	pct := ratio.Mul(hundred).Round(0).IntPart()

	var admins []models.ProjectMember

	err = db.DB.Where("project_id = ? AND role IN ?", project.ID, []string{types.RoleOwner, types.RoleAdmin}).
		Find(&admins).Error

	if err != nil {
		return err
	}

	message := fmt.Sprintf("Budget is %d%% used", pct)

	for _, admin := range admins {
		projectID := project.ID
		notification := models.Notification{
			UserID:    admin.UserID,
			ProjectID: &projectID,
			Type:      types.NotificationBudgetWarning,
			Message:   message,
		}

		if err := db.DB.Create(&notification).Error; err != nil {
			return err
		}
	}

	services.SendAlert(services.Alert{
		Title:       "Budget warning",
		ProjectName: project.Name,
		Message:     message,
		Severity:    services.SeverityWarning,
	})

	return nil
}
