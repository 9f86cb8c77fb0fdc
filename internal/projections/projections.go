// Package projections assembles the read-optimized response shapes from
// loaded entity graphs. All functions are pure: counts are computed from
// the related collections passed in, never cached or stored.
package projections

import (
	"github.com/kanmind-dev/kanmind/internal/models"
	"github.com/kanmind-dev/kanmind/internal/types"
)

// User builds the nested user summary. Requires Profile to be loaded.
func User(user models.User) types.UserSummary {
	return types.UserSummary{
		ID:       user.ID,
		Fullname: user.Profile.FullName,
		Email:    user.Email,
	}
}

func userPtr(user *models.User) *types.UserSummary {
	if user == nil {
		return nil
	}
	summary := User(*user)
	return &summary
}

// BoardSummary computes the board list projection. Requires Memberships
// and Tasks to be loaded; every count is scoped to this board.
func BoardSummary(board models.Board) types.BoardSummary {
	var toDo, highPrio int

	for _, task := range board.Tasks {
		if task.Status == "to-do" {
			toDo++
		}
		if task.Priority == "high" {
			highPrio++
		}
	}

	return types.BoardSummary{
		ID:                 board.ID,
		Title:              board.Title,
		MemberCount:        len(board.Memberships),
		TicketCount:        len(board.Tasks),
		TasksToDoCount:     toDo,
		TasksHighPrioCount: highPrio,
		OwnerID:            board.OwnerID,
	}
}

// BoardDetail builds the full board view with nested member summaries and
// task projections. Requires Memberships.User.Profile and the tasks'
// Assignee/Reviewer profiles and Comments to be loaded.
func BoardDetail(board models.Board) types.BoardDetail {
	members := make([]types.UserSummary, 0, len(board.Memberships))
	for _, membership := range board.Memberships {
		members = append(members, User(membership.User))
	}

	tasks := make([]types.TaskResponse, 0, len(board.Tasks))
	for _, task := range board.Tasks {
		tasks = append(tasks, Task(task, true))
	}

	return types.BoardDetail{
		ID:      board.ID,
		Title:   board.Title,
		OwnerID: board.OwnerID,
		Members: members,
		Tasks:   tasks,
	}
}

// BoardUpdated builds the thinner update response. Requires Owner.Profile
// and Memberships.User.Profile to be loaded.
func BoardUpdated(board models.Board) types.BoardUpdated {
	members := make([]types.UserSummary, 0, len(board.Memberships))
	for _, membership := range board.Memberships {
		members = append(members, User(membership.User))
	}

	return types.BoardUpdated{
		ID:          board.ID,
		Title:       board.Title,
		OwnerData:   User(board.Owner),
		MembersData: members,
	}
}

// Task builds the task projection. Requires Assignee/Reviewer profiles
// and Comments to be loaded. withCommentsCount is false for
// partial-update responses, which omit the derived count.
func Task(task models.Task, withCommentsCount bool) types.TaskResponse {
	response := types.TaskResponse{
		ID:          task.ID,
		Board:       task.BoardID,
		Title:       task.Title,
		Description: task.Description,
		Status:      task.Status,
		Priority:    task.Priority,
		Assignee:    userPtr(task.Assignee),
		Reviewer:    userPtr(task.Reviewer),
		DueDate:     task.DueDate,
	}

	if withCommentsCount {
		count := len(task.Comments)
		response.CommentsCount = &count
	}

	return response
}

// Comment builds the comment view. Requires Author.Profile to be loaded;
// the author is rendered as their full name.
func Comment(comment models.TaskComment) types.CommentResponse {
	return types.CommentResponse{
		ID:        comment.ID,
		Author:    comment.Author.Profile.FullName,
		Content:   comment.Content,
		CreatedAt: comment.CreatedAt,
	}
}
