package handlers_test

import (
	"fmt"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/kanmind-dev/kanmind/db"
	"github.com/kanmind-dev/kanmind/internal/models"
)

type userSummary struct {
	ID       uint   `json:"id"`
	Fullname string `json:"fullname"`
	Email    string `json:"email"`
}

type taskResponse struct {
	ID            uint         `json:"id"`
	Board         uint         `json:"board"`
	Title         string       `json:"title"`
	Description   string       `json:"description"`
	Status        string       `json:"status"`
	Priority      string       `json:"priority"`
	Assignee      *userSummary `json:"assignee"`
	Reviewer      *userSummary `json:"reviewer"`
	DueDate       *string      `json:"due_date"`
	CommentsCount *int         `json:"comments_count"`
}

func createTask(t *testing.T, r *gin.Engine, token string, body gin.H) taskResponse {
	t.Helper()

	w := doRequest(t, r, "POST", "/api/tasks", token, body)

	if w.Code != 201 {
		t.Fatalf("Task creation failed with status %d: %s", w.Code, w.Body.String())
	}

	var task taskResponse
	decodeBody(t, w, &task)

	return task
}

// boardWithMember registers an owner and a member, creates a board, and
// returns both tokens, the member id, and the board.
func boardWithMember(t *testing.T, r *gin.Engine) (ownerToken, memberToken string, memberID uint, board boardSummary) {
	t.Helper()

	ownerToken, _ = registerUser(t, r, "Anna Arendt", "anna@test.de")
	memberToken, memberID = registerUser(t, r, "Bernd Brot", "bernd@test.de")
	board = createBoard(t, r, ownerToken, "Sprint Board", []uint{memberID})

	return ownerToken, memberToken, memberID, board
}

func TestCreateTaskDefaults(t *testing.T) {
	r := setupServer(t)

	ownerToken, _, _, board := boardWithMember(t, r)

	task := createTask(t, r, ownerToken, gin.H{"board": board.ID, "title": "Write docs"})

	if task.Status != "to-do" || task.Priority != "medium" {
		t.Errorf("defaults not applied: status=%q priority=%q", task.Status, task.Priority)
	}
	if task.Assignee != nil || task.Reviewer != nil || task.DueDate != nil {
		t.Errorf("optional fields should be empty: %+v", task)
	}
	if task.CommentsCount == nil || *task.CommentsCount != 0 {
		t.Errorf("comments_count should be 0, got %v", task.CommentsCount)
	}
}

func TestCreateTaskWithRoles(t *testing.T) {
	r := setupServer(t)

	ownerToken, _, memberID, board := boardWithMember(t, r)

	task := createTask(t, r, ownerToken, gin.H{
		"board":       board.ID,
		"title":       "Review docs",
		"status":      "review",
		"priority":    "high",
		"assignee_id": memberID,
		"reviewer_id": memberID,
		"due_date":    "2026-09-15",
	})

	if task.Status != "review" || task.Priority != "high" {
		t.Errorf("unexpected status/priority: %+v", task)
	}
	if task.Assignee == nil || task.Assignee.ID != memberID {
		t.Errorf("unexpected assignee: %+v", task.Assignee)
	}
	if task.Reviewer == nil || task.Reviewer.Fullname != "Bernd Brot" {
		t.Errorf("unexpected reviewer: %+v", task.Reviewer)
	}
	if task.DueDate == nil || *task.DueDate != "2026-09-15" {
		t.Errorf("unexpected due_date: %v", task.DueDate)
	}
}

func TestCreateTaskOwnerOnly(t *testing.T) {
	r := setupServer(t)

	_, memberToken, _, board := boardWithMember(t, r)

	w := doRequest(t, r, "POST", "/api/tasks", memberToken, gin.H{"board": board.ID, "title": "Nope"})

	if w.Code != 403 {
		t.Errorf("member create: status = %d, want 403", w.Code)
	}

	ownerToken2, _ := registerUser(t, r, "Carla Conti", "carla@test.de")

	if w := doRequest(t, r, "POST", "/api/tasks", ownerToken2, gin.H{"board": 9999, "title": "Nope"}); w.Code != 404 {
		t.Errorf("unknown board: status = %d, want 404", w.Code)
	}
}

func TestCreateTaskRejectsNonMemberRoles(t *testing.T) {
	r := setupServer(t)

	ownerToken, _, _, board := boardWithMember(t, r)
	_, outsiderID := registerUser(t, r, "Dora Dorn", "dora@test.de")

	w := doRequest(t, r, "POST", "/api/tasks", ownerToken, gin.H{
		"board":       board.ID,
		"title":       "Bad assignee",
		"assignee_id": outsiderID,
	})

	if w.Code != 400 {
		t.Fatalf("status = %d, want 400: %s", w.Code, w.Body.String())
	}

	var fields map[string]string
	decodeBody(t, w, &fields)

	if _, ok := fields["assignee"]; !ok {
		t.Errorf("expected error keyed on assignee, got %v", fields)
	}

	var count int64
	db.DB.Model(&models.Task{}).Count(&count)

	if count != 0 {
		t.Errorf("task count = %d, want 0 after rejected create", count)
	}

	w = doRequest(t, r, "POST", "/api/tasks", ownerToken, gin.H{
		"board":       board.ID,
		"title":       "Bad reviewer",
		"reviewer_id": outsiderID,
	})

	if w.Code != 400 {
		t.Fatalf("status = %d, want 400", w.Code)
	}

	decodeBody(t, w, &fields)

	if _, ok := fields["reviewer"]; !ok {
		t.Errorf("expected error keyed on reviewer, got %v", fields)
	}
}

func TestCreateTaskRejectsInvalidEnum(t *testing.T) {
	r := setupServer(t)

	ownerToken, _, _, board := boardWithMember(t, r)

	w := doRequest(t, r, "POST", "/api/tasks", ownerToken, gin.H{
		"board":  board.ID,
		"title":  "Bad status",
		"status": "blocked",
	})

	if w.Code != 400 {
		t.Fatalf("status = %d, want 400: %s", w.Code, w.Body.String())
	}

	var fields map[string]string
	decodeBody(t, w, &fields)

	if _, ok := fields["status"]; !ok {
		t.Errorf("expected error keyed on status, got %v", fields)
	}

	w = doRequest(t, r, "POST", "/api/tasks", ownerToken, gin.H{
		"board":    board.ID,
		"title":    "Bad priority",
		"priority": "urgent",
	})

	if w.Code != 400 {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestTaskReadForAnyAuthenticated(t *testing.T) {
	r := setupServer(t)

	ownerToken, _, _, board := boardWithMember(t, r)
	outsiderToken, _ := registerUser(t, r, "Dora Dorn", "dora@test.de")

	task := createTask(t, r, ownerToken, gin.H{"board": board.ID, "title": "Public read"})

	// Reads carry no board-membership check.
	w := doRequest(t, r, "GET", fmt.Sprintf("/api/tasks/%d", task.ID), outsiderToken, nil)

	if w.Code != 200 {
		t.Errorf("outsider retrieve: status = %d, want 200", w.Code)
	}

	w = doRequest(t, r, "GET", "/api/tasks", outsiderToken, nil)

	if w.Code != 200 {
		t.Fatalf("outsider list: status = %d, want 200", w.Code)
	}

	var tasks []taskResponse
	decodeBody(t, w, &tasks)

	if len(tasks) != 1 {
		t.Errorf("task list length = %d, want 1", len(tasks))
	}
}

func TestUpdateTaskMemberOnly(t *testing.T) {
	r := setupServer(t)

	ownerToken, memberToken, _, board := boardWithMember(t, r)

	task := createTask(t, r, ownerToken, gin.H{"board": board.ID, "title": "Write docs"})
	path := fmt.Sprintf("/api/tasks/%d", task.ID)

	// The owner is not a member of this board, so even the owner may not
	// update.
	if w := doRequest(t, r, "PATCH", path, ownerToken, gin.H{"title": "Nope"}); w.Code != 403 {
		t.Errorf("non-member owner update: status = %d, want 403", w.Code)
	}

	w := doRequest(t, r, "PATCH", path, memberToken, gin.H{"status": "in-progress"})

	if w.Code != 200 {
		t.Fatalf("member update: status = %d, want 200: %s", w.Code, w.Body.String())
	}

	var updated taskResponse
	decodeBody(t, w, &updated)

	if updated.Status != "in-progress" || updated.Title != "Write docs" {
		t.Errorf("unexpected update result: %+v", updated)
	}
}

func TestUpdateTaskBoardImmutable(t *testing.T) {
	r := setupServer(t)

	ownerToken, memberToken, memberID, board := boardWithMember(t, r)

	other := createBoard(t, r, ownerToken, "Other Board", []uint{memberID})
	task := createTask(t, r, ownerToken, gin.H{"board": board.ID, "title": "Write docs"})

	w := doRequest(t, r, "PATCH", fmt.Sprintf("/api/tasks/%d", task.ID), memberToken, gin.H{"board": other.ID})

	if w.Code != 400 {
		t.Fatalf("status = %d, want 400: %s", w.Code, w.Body.String())
	}

	var fields map[string]string
	decodeBody(t, w, &fields)

	if _, ok := fields["board"]; !ok {
		t.Errorf("expected error keyed on board, got %v", fields)
	}

	var stored models.Task

	if err := db.DB.First(&stored, task.ID).Error; err != nil {
		t.Fatalf("task vanished: %v", err)
	}

	if stored.BoardID != board.ID {
		t.Errorf("board changed to %d, want %d", stored.BoardID, board.ID)
	}

	// Restating the current board is not a change and passes.
	if w := doRequest(t, r, "PATCH", fmt.Sprintf("/api/tasks/%d", task.ID), memberToken, gin.H{"board": board.ID}); w.Code != 200 {
		t.Errorf("same-board update: status = %d, want 200", w.Code)
	}
}

func TestPartialUpdateOmitsCommentsCount(t *testing.T) {
	r := setupServer(t)

	ownerToken, memberToken, _, board := boardWithMember(t, r)

	task := createTask(t, r, ownerToken, gin.H{"board": board.ID, "title": "Write docs"})
	path := fmt.Sprintf("/api/tasks/%d", task.ID)

	w := doRequest(t, r, "PATCH", path, memberToken, gin.H{"title": "Patched"})

	if w.Code != 200 {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var patched taskResponse
	decodeBody(t, w, &patched)

	if patched.CommentsCount != nil {
		t.Errorf("PATCH response should omit comments_count, got %v", *patched.CommentsCount)
	}

	w = doRequest(t, r, "PUT", path, memberToken, gin.H{"title": "Put"})

	if w.Code != 200 {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var put taskResponse
	decodeBody(t, w, &put)

	if put.CommentsCount == nil {
		t.Error("PUT response should include comments_count")
	}
}

func TestUpdateTaskClearsAssignee(t *testing.T) {
	r := setupServer(t)

	ownerToken, memberToken, memberID, board := boardWithMember(t, r)

	task := createTask(t, r, ownerToken, gin.H{
		"board":       board.ID,
		"title":       "Write docs",
		"assignee_id": memberID,
	})

	w := doRequest(t, r, "PUT", fmt.Sprintf("/api/tasks/%d", task.ID), memberToken, gin.H{"assignee_id": 0})

	if w.Code != 200 {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}

	var updated taskResponse
	decodeBody(t, w, &updated)

	if updated.Assignee != nil {
		t.Errorf("assignee should be cleared, got %+v", updated.Assignee)
	}
}

func TestDeleteTaskOwnerOrAssignee(t *testing.T) {
	r := setupServer(t)

	ownerToken, memberToken, memberID, board := boardWithMember(t, r)
	otherToken, otherID := registerUser(t, r, "Carla Conti", "carla@test.de")

	// Make the third user a board member who is not the assignee.
	w := doRequest(t, r, "PATCH", fmt.Sprintf("/api/boards/%d", board.ID), ownerToken, gin.H{
		"members": []uint{memberID, otherID},
	})
	if w.Code != 200 {
		t.Fatalf("membership update failed: %s", w.Body.String())
	}

	task := createTask(t, r, ownerToken, gin.H{
		"board":       board.ID,
		"title":       "Write docs",
		"assignee_id": memberID,
	})
	path := fmt.Sprintf("/api/tasks/%d", task.ID)

	if w := doRequest(t, r, "DELETE", path, otherToken, nil); w.Code != 403 {
		t.Errorf("non-assignee member delete: status = %d, want 403", w.Code)
	}

	if w := doRequest(t, r, "DELETE", path, memberToken, nil); w.Code != 204 {
		t.Errorf("assignee delete: status = %d, want 204", w.Code)
	}

	task = createTask(t, r, ownerToken, gin.H{"board": board.ID, "title": "Another"})

	if w := doRequest(t, r, "DELETE", fmt.Sprintf("/api/tasks/%d", task.ID), ownerToken, nil); w.Code != 204 {
		t.Errorf("owner delete: status = %d, want 204", w.Code)
	}
}

func TestAssignedAndReviewingLookups(t *testing.T) {
	r := setupServer(t)

	ownerToken, memberToken, memberID, board := boardWithMember(t, r)

	createTask(t, r, ownerToken, gin.H{"board": board.ID, "title": "Assigned one", "assignee_id": memberID})
	createTask(t, r, ownerToken, gin.H{"board": board.ID, "title": "Reviewing one", "reviewer_id": memberID})
	createTask(t, r, ownerToken, gin.H{"board": board.ID, "title": "Unrelated"})

	w := doRequest(t, r, "GET", "/api/tasks/assigned-to-me", memberToken, nil)

	if w.Code != 200 {
		t.Fatalf("assigned-to-me: status = %d, want 200", w.Code)
	}

	var assigned []taskResponse
	decodeBody(t, w, &assigned)

	if len(assigned) != 1 || assigned[0].Title != "Assigned one" {
		t.Errorf("unexpected assigned list: %+v", assigned)
	}

	w = doRequest(t, r, "GET", "/api/tasks/reviewing", memberToken, nil)

	if w.Code != 200 {
		t.Fatalf("reviewing: status = %d, want 200", w.Code)
	}

	var reviewing []taskResponse
	decodeBody(t, w, &reviewing)

	if len(reviewing) != 1 || reviewing[0].Title != "Reviewing one" {
		t.Errorf("unexpected reviewing list: %+v", reviewing)
	}

	w = doRequest(t, r, "GET", "/api/tasks/assigned-to-me", ownerToken, nil)

	var none []taskResponse
	decodeBody(t, w, &none)

	if len(none) != 0 {
		t.Errorf("owner has no assignments, got %+v", none)
	}
}
