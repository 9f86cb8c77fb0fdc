package types

import "time"

// AuthResponse is returned by registration and login.
type AuthResponse struct {
	Token    string `json:"token"`
	Fullname string `json:"fullname"`
	Email    string `json:"email"`
	UserID   uint   `json:"user_id"`
}

// UserSummary is the nested user representation used in board and task
// projections and by the email lookup.
type UserSummary struct {
	ID       uint   `json:"id"`
	Fullname string `json:"fullname"`
	Email    string `json:"email"`
}

// BoardSummary carries the derived counts for the board list view. Every
// count characterizes the board itself, never other boards.
type BoardSummary struct {
	ID                 uint   `json:"id"`
	Title              string `json:"title"`
	MemberCount        int    `json:"member_count"`
	TicketCount        int    `json:"ticket_count"`
	TasksToDoCount     int    `json:"tasks_to_do_count"`
	TasksHighPrioCount int    `json:"tasks_high_prio_count"`
	OwnerID            uint   `json:"owner_id"`
}

type BoardDetail struct {
	ID      uint           `json:"id"`
	Title   string         `json:"title"`
	OwnerID uint           `json:"owner_id"`
	Members []UserSummary  `json:"members"`
	Tasks   []TaskResponse `json:"tasks"`
}

// BoardUpdated is the thinner board-update response shape.
type BoardUpdated struct {
	ID          uint          `json:"id"`
	Title       string        `json:"title"`
	OwnerData   UserSummary   `json:"owner_data"`
	MembersData []UserSummary `json:"members_data"`
}

// TaskResponse is the full task projection. CommentsCount is omitted on
// partial-update responses, which keep the thinner write contract.
type TaskResponse struct {
	ID            uint         `json:"id"`
	Board         uint         `json:"board"`
	Title         string       `json:"title"`
	Description   string       `json:"description"`
	Status        string       `json:"status"`
	Priority      string       `json:"priority"`
	Assignee      *UserSummary `json:"assignee"`
	Reviewer      *UserSummary `json:"reviewer"`
	DueDate       *string      `json:"due_date"`
	CommentsCount *int         `json:"comments_count,omitempty"`
}

type CommentResponse struct {
	ID        uint      `json:"id"`
	Author    string    `json:"author"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
