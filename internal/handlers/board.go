package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kanmind-dev/kanmind/db"
	"github.com/kanmind-dev/kanmind/internal/models"
	"github.com/kanmind-dev/kanmind/internal/permissions"
	"github.com/kanmind-dev/kanmind/internal/projections"
	"github.com/kanmind-dev/kanmind/internal/types"
	"github.com/kanmind-dev/kanmind/internal/utils"
	"gorm.io/gorm"
)

type CreateBoardRequest struct {
	Title   string `json:"title" binding:"required"`
	Members []uint `json:"members"`
}

type UpdateBoardRequest struct {
	Title   *string `json:"title"`
	Members *[]uint `json:"members"`
}

// findBoard loads the board from the path parameter with the given
// preloads and writes the 404/500 response itself on failure.
func findBoard(ctx *gin.Context, preloads ...string) (models.Board, bool) {
	var board models.Board

	query := db.DB
	for _, preload := range preloads {
		query = query.Preload(preload)
	}

	if err := query.First(&board, "id = ?", ctx.Param("board_id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Board not found"})
		} else {
			log.Printf("Failed to retrieve board: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve board"})
		}
		return models.Board{}, false
	}

	return board, true
}

func ListBoards(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var memberBoardIDs []uint

	if err := db.DB.Model(&models.BoardMembership{}).
		Where("user_id = ?", userID).
		Pluck("board_id", &memberBoardIDs).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve boards"})
		return
	}

	var boards []models.Board

	query := db.DB.Preload("Memberships").Preload("Tasks")

	if len(memberBoardIDs) > 0 {
		query = query.Where("owner_id = ? OR id IN ?", userID, memberBoardIDs)
	} else {
		query = query.Where("owner_id = ?", userID)
	}

	if err := query.Find(&boards).Error; err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve boards"})
		return
	}

	response := make([]types.BoardSummary, 0, len(boards))

	for _, board := range boards {
		response = append(response, projections.BoardSummary(board))
	}

	ctx.JSON(http.StatusOK, response)
}

func CreateBoard(ctx *gin.Context) {
	var req CreateBoardRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, bindingErrors(err))
		return
	}

	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	// Unknown member ids are dropped, matching the create contract.
	// Update is stricter and rejects them.
	var members []models.User

	if len(req.Members) > 0 {
		if err := db.DB.Where("id IN ?", req.Members).Find(&members).Error; err != nil {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve members"})
			return
		}
	}

	board := models.Board{
		Title:   req.Title,
		OwnerID: userID,
	}

	for _, member := range members {
		board.Memberships = append(board.Memberships, models.BoardMembership{UserID: member.ID})
	}

	if err := db.DB.Create(&board).Error; err != nil {
		log.Printf("Failed to create board: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create board"})
		return
	}

	ctx.JSON(http.StatusCreated, projections.BoardSummary(board))
}

func GetBoard(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	board, ok := findBoard(ctx,
		"Memberships.User.Profile",
		"Tasks.Assignee.Profile",
		"Tasks.Reviewer.Profile",
		"Tasks.Comments")

	if !ok {
		return
	}

	if !permissions.CanViewBoard(board, userID) {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "You do not have permission to view this board"})
		return
	}

	ctx.JSON(http.StatusOK, projections.BoardDetail(board))
}

func UpdateBoard(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req UpdateBoardRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, bindingErrors(err))
		return
	}

	board, ok := findBoard(ctx, "Memberships")

	if !ok {
		return
	}

	if !permissions.CanViewBoard(board, userID) {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "You do not have permission to update this board"})
		return
	}

	var newMembers []models.User

	if req.Members != nil {
		if len(*req.Members) > 0 {
			if err := db.DB.Where("id IN ?", *req.Members).Find(&newMembers).Error; err != nil {
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve members"})
				return
			}
		}

		if len(newMembers) != len(uniqueIDs(*req.Members)) {
			ctx.JSON(http.StatusBadRequest, gin.H{"members": "Ids not found"})
			return
		}
	}

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if req.Title != nil {
			if err := tx.Model(&board).Update("title", *req.Title).Error; err != nil {
				return err
			}
		}

		if req.Members != nil {
			// Replace the member set wholesale. Old join rows are
			// hard-deleted so the unique index cannot collide with
			// soft-deleted leftovers.
			if err := tx.Unscoped().Where("board_id = ?", board.ID).Delete(&models.BoardMembership{}).Error; err != nil {
				return err
			}

			for _, member := range newMembers {
				membership := models.BoardMembership{UserID: member.ID, BoardID: board.ID}
				if err := tx.Create(&membership).Error; err != nil {
					return err
				}
			}
		}

		return nil
	})

	if err != nil {
		log.Printf("Failed to update board: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update board"})
		return
	}

	var updated models.Board

	if err := db.DB.Preload("Owner.Profile").Preload("Memberships.User.Profile").First(&updated, board.ID).Error; err != nil {
		log.Printf("Failed to reload board: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve board"})
		return
	}

	ctx.JSON(http.StatusOK, projections.BoardUpdated(updated))
}

func DeleteBoard(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	board, ok := findBoard(ctx)

	if !ok {
		return
	}

	if !permissions.CanDeleteBoard(board, userID) {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "Just the owner can delete a board"})
		return
	}

	// The board, its tasks, their comments, and the memberships go in a
	// single transaction so a crash cannot leave orphans behind.
	err = db.DB.Transaction(func(tx *gorm.DB) error {
		var taskIDs []uint

		if err := tx.Model(&models.Task{}).Where("board_id = ?", board.ID).Pluck("id", &taskIDs).Error; err != nil {
			return err
		}

		if len(taskIDs) > 0 {
			if err := tx.Unscoped().Where("task_id IN ?", taskIDs).Delete(&models.TaskComment{}).Error; err != nil {
				return err
			}
		}

		if err := tx.Unscoped().Where("board_id = ?", board.ID).Delete(&models.Task{}).Error; err != nil {
			return err
		}

		if err := tx.Unscoped().Where("board_id = ?", board.ID).Delete(&models.BoardMembership{}).Error; err != nil {
			return err
		}

		return tx.Unscoped().Delete(&board).Error
	})

	if err != nil {
		log.Printf("Failed to delete board: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete board"})
		return
	}

	ctx.Status(http.StatusNoContent)
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))

	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}

	return out
}
