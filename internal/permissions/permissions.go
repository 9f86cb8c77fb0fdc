// Package permissions holds the pure authorization rules for boards,
// tasks, and comments. Every function takes the requesting user's ID plus
// the already-loaded target entity and returns a plain verdict; callers
// decide how to surface Forbidden. Boards must be loaded with their
// Memberships for the membership rules to see the full set.
package permissions

import "github.com/kanmind-dev/kanmind/internal/models"

// IsBoardMember reports whether the user appears in the board's member
// set. The owner is not implicitly a member.
func IsBoardMember(board models.Board, userID uint) bool {
	for _, membership := range board.Memberships {
		if membership.UserID == userID {
			return true
		}
	}
	return false
}

// CanViewBoard allows the owner and every member. Used for board
// retrieve/update and for listing or creating comments on the board's
// tasks.
func CanViewBoard(board models.Board, userID uint) bool {
	return board.OwnerID == userID || IsBoardMember(board, userID)
}

// CanDeleteBoard allows only the owner.
func CanDeleteBoard(board models.Board, userID uint) bool {
	return board.OwnerID == userID
}

// CanCreateTask allows only the owner of the target board.
func CanCreateTask(board models.Board, userID uint) bool {
	return board.OwnerID == userID
}

// CanUpdateTask allows members of the task's board. Ownership alone does
// not grant update rights.
func CanUpdateTask(board models.Board, userID uint) bool {
	return IsBoardMember(board, userID)
}

// CanDeleteTask allows the board owner or the task's current assignee.
func CanDeleteTask(task models.Task, board models.Board, userID uint) bool {
	if board.OwnerID == userID {
		return true
	}
	return task.AssigneeID != nil && *task.AssigneeID == userID
}

// CanDeleteComment allows only the comment's author. Board membership is
// not re-checked at delete time.
func CanDeleteComment(comment models.TaskComment, userID uint) bool {
	return comment.AuthorID == userID
}
