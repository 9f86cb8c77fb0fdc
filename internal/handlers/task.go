package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/kanmind-dev/kanmind/db"
	"github.com/kanmind-dev/kanmind/internal/models"
	"github.com/kanmind-dev/kanmind/internal/permissions"
	"github.com/kanmind-dev/kanmind/internal/projections"
	"github.com/kanmind-dev/kanmind/internal/types"
	"github.com/kanmind-dev/kanmind/internal/utils"
	"gorm.io/gorm"
)

type CreateTaskRequest struct {
	Board       uint    `json:"board" binding:"required"`
	Title       string  `json:"title" binding:"required"`
	Description string  `json:"description"`
	Status      string  `json:"status"`
	Priority    string  `json:"priority"`
	AssigneeID  *uint   `json:"assignee_id"`
	ReviewerID  *uint   `json:"reviewer_id"`
	DueDate     *string `json:"due_date" binding:"omitempty,datetime=2006-01-02"`
}

type UpdateTaskRequest struct {
	Board       *uint   `json:"board"`
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	Priority    *string `json:"priority"`
	AssigneeID  *uint   `json:"assignee_id"`
	ReviewerID  *uint   `json:"reviewer_id"`
	DueDate     *string `json:"due_date" binding:"omitempty,datetime=2006-01-02"`
}

// taskPreloads loads everything the task projection reads.
var taskPreloads = []string{"Assignee.Profile", "Reviewer.Profile", "Comments"}

func taskQuery() *gorm.DB {
	query := db.DB
	for _, preload := range taskPreloads {
		query = query.Preload(preload)
	}
	return query
}

// findTask loads the task from the path parameter and writes the 404/500
// response itself on failure.
func findTask(ctx *gin.Context, preloads ...string) (models.Task, bool) {
	var task models.Task

	query := db.DB
	for _, preload := range preloads {
		query = query.Preload(preload)
	}

	if err := query.First(&task, "id = ?", ctx.Param("task_id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		} else {
			log.Printf("Failed to retrieve task: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve task"})
		}
		return models.Task{}, false
	}

	return task, true
}

// validateTaskRoles checks that a supplied assignee or reviewer is a
// member of the effective board, returning a field-keyed error map. A
// zero id clears the role and is always valid.
func validateTaskRoles(board models.Board, assigneeID, reviewerID *uint) gin.H {
	if assigneeID != nil && *assigneeID != 0 && !permissions.IsBoardMember(board, *assigneeID) {
		return gin.H{"assignee": "Assignee must be a member of the board."}
	}

	if reviewerID != nil && *reviewerID != 0 && !permissions.IsBoardMember(board, *reviewerID) {
		return gin.H{"reviewer": "Reviewer must be a member of the board."}
	}

	return nil
}

// validateTaskEnums checks status and priority against their closed sets.
func validateTaskEnums(status, priority *string) gin.H {
	if status != nil && !types.ValidTaskStatus(*status) {
		return gin.H{"status": "Status must be one of: " + strings.Join(types.TaskStatuses, ", ") + "."}
	}

	if priority != nil && !types.ValidTaskPriority(*priority) {
		return gin.H{"priority": "Priority must be one of: " + strings.Join(types.TaskPriorities, ", ") + "."}
	}

	return nil
}

func CreateTask(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req CreateTaskRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, bindingErrors(err))
		return
	}

	var board models.Board

	if err := db.DB.Preload("Memberships").First(&board, req.Board).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Board not found"})
		} else {
			log.Printf("Failed to retrieve board: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve board"})
		}
		return
	}

	if !permissions.CanCreateTask(board, userID) {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "Only the board owner can create tasks"})
		return
	}

	if fieldErrs := validateTaskRoles(board, req.AssigneeID, req.ReviewerID); fieldErrs != nil {
		ctx.JSON(http.StatusBadRequest, fieldErrs)
		return
	}

	statusPtr, priorityPtr := &req.Status, &req.Priority

	if req.Status == "" {
		statusPtr = nil
	}

	if req.Priority == "" {
		priorityPtr = nil
	}

	if fieldErrs := validateTaskEnums(statusPtr, priorityPtr); fieldErrs != nil {
		ctx.JSON(http.StatusBadRequest, fieldErrs)
		return
	}

	task := models.Task{
		BoardID:     board.ID,
		Title:       req.Title,
		Description: req.Description,
		Status:      types.DefaultTaskStatus,
		Priority:    types.DefaultTaskPriority,
		DueDate:     req.DueDate,
	}

	if req.Status != "" {
		task.Status = req.Status
	}

	if req.Priority != "" {
		task.Priority = req.Priority
	}

	if req.AssigneeID != nil && *req.AssigneeID != 0 {
		task.AssigneeID = req.AssigneeID
	}

	if req.ReviewerID != nil && *req.ReviewerID != 0 {
		task.ReviewerID = req.ReviewerID
	}

	if err := db.DB.Create(&task).Error; err != nil {
		log.Printf("Failed to create task: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create task"})
		return
	}

	var created models.Task

	if err := taskQuery().First(&created, task.ID).Error; err != nil {
		log.Printf("Failed to reload task: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve task"})
		return
	}

	ctx.JSON(http.StatusCreated, projections.Task(created, true))
}

func ListTasks(ctx *gin.Context) {
	if _, err := utils.GetCurrentUserID(ctx); err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	listTasksWhere(ctx, nil)
}

func GetTask(ctx *gin.Context) {
	if _, err := utils.GetCurrentUserID(ctx); err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	task, ok := findTask(ctx, taskPreloads...)

	if !ok {
		return
	}

	ctx.JSON(http.StatusOK, projections.Task(task, true))
}

func UpdateTask(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req UpdateTaskRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, bindingErrors(err))
		return
	}

	task, ok := findTask(ctx, "Board.Memberships")

	if !ok {
		return
	}

	if !permissions.CanUpdateTask(task.Board, userID) {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "Only board members can update tasks"})
		return
	}

	// The board reference is immutable after creation. The effective
	// board for role validation is always the task's current board.
	if req.Board != nil && *req.Board != task.BoardID {
		ctx.JSON(http.StatusBadRequest, gin.H{"board": "Changing the board of a task is not allowed."})
		return
	}

	if fieldErrs := validateTaskRoles(task.Board, req.AssigneeID, req.ReviewerID); fieldErrs != nil {
		ctx.JSON(http.StatusBadRequest, fieldErrs)
		return
	}

	if fieldErrs := validateTaskEnums(req.Status, req.Priority); fieldErrs != nil {
		ctx.JSON(http.StatusBadRequest, fieldErrs)
		return
	}

	updates := make(map[string]interface{})

	if req.Title != nil {
		updates["title"] = *req.Title
	}

	if req.Description != nil {
		updates["description"] = *req.Description
	}

	if req.Status != nil {
		updates["status"] = *req.Status
	}

	if req.Priority != nil {
		updates["priority"] = *req.Priority
	}

	if req.DueDate != nil {
		updates["due_date"] = *req.DueDate
	}

	// Id 0 clears the role.
	if req.AssigneeID != nil {
		if *req.AssigneeID == 0 {
			updates["assignee_id"] = nil
		} else {
			updates["assignee_id"] = *req.AssigneeID
		}
	}

	if req.ReviewerID != nil {
		if *req.ReviewerID == 0 {
			updates["reviewer_id"] = nil
		} else {
			updates["reviewer_id"] = *req.ReviewerID
		}
	}

	if len(updates) > 0 {
		if err := db.DB.Model(&task).Updates(updates).Error; err != nil {
			log.Printf("Failed to update task: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update task"})
			return
		}
	}

	var updated models.Task

	if err := taskQuery().First(&updated, task.ID).Error; err != nil {
		log.Printf("Failed to reload task: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve task"})
		return
	}

	// Partial-update responses keep the thinner write contract and omit
	// the derived comments count.
	withCommentsCount := ctx.Request.Method != http.MethodPatch

	ctx.JSON(http.StatusOK, projections.Task(updated, withCommentsCount))
}

func DeleteTask(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	task, ok := findTask(ctx, "Board")

	if !ok {
		return
	}

	if !permissions.CanDeleteTask(task, task.Board, userID) {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "Only the board owner or the assignee can delete this task"})
		return
	}

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("task_id = ?", task.ID).Delete(&models.TaskComment{}).Error; err != nil {
			return err
		}

		return tx.Unscoped().Delete(&task).Error
	})

	if err != nil {
		log.Printf("Failed to delete task: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete task"})
		return
	}

	ctx.Status(http.StatusNoContent)
}

func AssignedTasks(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	// Global scope: the assignment belongs to the identity regardless of
	// board membership.
	listTasksWhere(ctx, map[string]interface{}{"assignee_id": userID})
}

func ReviewingTasks(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	listTasksWhere(ctx, map[string]interface{}{"reviewer_id": userID})
}

func listTasksWhere(ctx *gin.Context, filter map[string]interface{}) {
	var tasks []models.Task

	query := taskQuery()

	if filter != nil {
		query = query.Where(filter)
	}

	if err := query.Find(&tasks).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve tasks"})
		return
	}

	response := make([]types.TaskResponse, 0, len(tasks))

	for _, task := range tasks {
		response = append(response, projections.Task(task, true))
	}

	ctx.JSON(http.StatusOK, response)
}
