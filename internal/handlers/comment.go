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

type CreateCommentRequest struct {
	Content string `json:"content" binding:"required"`
}

func ListComments(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	task, ok := findTask(ctx, "Board.Memberships")

	if !ok {
		return
	}

	if !permissions.CanViewBoard(task.Board, userID) {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "You do not have permission to view comments for this task"})
		return
	}

	var comments []models.TaskComment

	if err := db.DB.Preload("Author.Profile").Where("task_id = ?", task.ID).Order("created_at ASC").Find(&comments).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve comments"})
		return
	}

	response := make([]types.CommentResponse, 0, len(comments))

	for _, comment := range comments {
		response = append(response, projections.Comment(comment))
	}

	ctx.JSON(http.StatusOK, response)
}

func CreateComment(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	task, ok := findTask(ctx, "Board.Memberships")

	if !ok {
		return
	}

	if !permissions.CanViewBoard(task.Board, userID) {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "You do not have permission to comment on this task"})
		return
	}

	var req CreateCommentRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, bindingErrors(err))
		return
	}

	if strings.TrimSpace(req.Content) == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"content": "Content cannot be empty."})
		return
	}

	// The author is always the requester, never taken from the payload.
	comment := models.TaskComment{
		TaskID:   task.ID,
		AuthorID: userID,
		Content:  req.Content,
	}

	if err := db.DB.Create(&comment).Error; err != nil {
		log.Printf("Failed to create comment: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create comment"})
		return
	}

	var created models.TaskComment

	if err := db.DB.Preload("Author.Profile").First(&created, comment.ID).Error; err != nil {
		log.Printf("Failed to reload comment: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve comment"})
		return
	}

	ctx.JSON(http.StatusCreated, projections.Comment(created))
}

func DeleteComment(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	task, ok := findTask(ctx)

	if !ok {
		return
	}

	var comment models.TaskComment

	if err := db.DB.Where("id = ? AND task_id = ?", ctx.Param("comment_id"), task.ID).First(&comment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Comment not found"})
		} else {
			log.Printf("Failed to retrieve comment: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve comment"})
		}
		return
	}

	if !permissions.CanDeleteComment(comment, userID) {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "You do not have permission to delete this comment"})
		return
	}

	if err := db.DB.Unscoped().Delete(&comment).Error; err != nil {
		log.Printf("Failed to delete comment: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete comment"})
		return
	}

	ctx.Status(http.StatusNoContent)
}
