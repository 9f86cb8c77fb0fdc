package types

import (
	"os"
	"strings"
)

const ContextUserKey = "user"

// Closed sets for task fields. Writes outside these sets are rejected.
var (
	TaskStatuses   = []string{"to-do", "in-progress", "review", "done"}
	TaskPriorities = []string{"low", "medium", "high"}
)

const (
	DefaultTaskStatus   = "to-do"
	DefaultTaskPriority = "medium"
)

func ValidTaskStatus(status string) bool {
	return contains(TaskStatuses, status)
}

func ValidTaskPriority(priority string) bool {
	return contains(TaskPriorities, priority)
}

func contains(set []string, value string) bool {
	for _, v := range set {
		if v == value {
			return true
		}
	}
	return false
}

var (
	// Default allowed origins for development
	defaultOrigins = []string{
		"http://localhost:3000",
		"http://localhost:5173",
	}

	AllowedOrigins = initAllowedOrigins()
)

func initAllowedOrigins() []string {
	origins := make([]string, len(defaultOrigins))
	copy(origins, defaultOrigins)

	if clientURL := os.Getenv("CLIENT_URL"); clientURL != "" {
		origins = append(origins, clientURL)
	}

	if allowedOrigins := os.Getenv("ALLOWED_ORIGINS"); allowedOrigins != "" {
		envOrigins := strings.Split(allowedOrigins, ",")
		for _, origin := range envOrigins {
			trimmed := strings.TrimSpace(origin)
			if trimmed != "" {
				origins = append(origins, trimmed)
			}
		}
	}

	return origins
}
