package middleware

import (
	"regexp"
	"strings"

	"github.com/gofiber/fiber/v3"
)

// Field length limits matching database schema constraints.
const (
	MaxPostIDLen    = 64 // posts.post_id VARCHAR(64)
	MaxSubjectIDLen = 64 // trust_snapshots.subject_id VARCHAR(64)
)

var (
	// postIDRe matches platform post IDs: alphanumeric, dash, underscore.
	postIDRe = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
	// subjectIDRe matches user and page IDs, same alphabet as post IDs.
	subjectIDRe = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
)

// ErrorResponse is a helper that returns a standard API error response.
func ErrorResponse(c fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    code,
			"message": message,
		},
	})
}

// ValidatePostID checks that a post ID is well-formed and within DB limits.
func ValidatePostID(id string) (string, string) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", "postId is required"
	}
	if len(id) > MaxPostIDLen {
		return "", "postId must be at most 64 characters"
	}
	if !postIDRe.MatchString(id) {
		return "", "postId contains invalid characters"
	}
	return id, ""
}

// ValidateSubjectID checks that a user or page ID is well-formed.
func ValidateSubjectID(id string) (string, string) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", "subjectId is required"
	}
	if len(id) > MaxSubjectIDLen {
		return "", "subjectId must be at most 64 characters"
	}
	if !subjectIDRe.MatchString(id) {
		return "", "subjectId contains invalid characters"
	}
	return id, ""
}
