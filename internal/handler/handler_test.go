package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"thundergames/backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{"validation", &service.ValidationError{Field: "name", Message: "'name' is required"}, http.StatusBadRequest, "'name' is required"},
		{"wrapped not found", fmt.Errorf("load: %w", &service.NotFoundError{Resource: "Folder"}), http.StatusNotFound, "Folder not found"},
		{"bare invalid", service.ErrInvalid, http.StatusBadRequest, "Invalid request"},
		{"bare not found", service.ErrNotFound, http.StatusNotFound, "Not found"},
		{"unauthorized", service.ErrUnauthorized, http.StatusUnauthorized, "Invalid credentials"},
		{"unexpected", errors.New("disk on fire"), http.StatusInternalServerError, "Internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, msg := statusFor(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.msg, msg)
		})
	}
}

func TestSafeRedirect(t *testing.T) {
	assert.Equal(t, "/admin_panel/", safeRedirect("/admin_panel/", "/fallback/"))
	assert.Equal(t, "/", safeRedirect("/", "/fallback/"))
	for _, next := range []string{"", "https://evil.example/", "//evil.example", `/\evil.example`, "admin_panel/"} {
		assert.Equal(t, "/fallback/", safeRedirect(next, "/fallback/"), next)
	}
}

func TestParsePagination(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tests := []struct {
		query       string
		page, limit int
	}{
		{"", 1, service.DefaultPageSize},
		{"?page=3&limit=5", 3, 5},
		{"?page=-1&limit=0", 1, service.DefaultPageSize},
		{"?page=x&limit=y", 1, service.DefaultPageSize},
		{"?limit=1000", 1, service.MaxPageSize},
		{"?page=9223372036854775807&limit=100", service.MaxPage, service.MaxPageSize},
	}
	for _, tt := range tests {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/api/games/"+tt.query, nil)
		page, limit := parsePagination(c)
		assert.Equal(t, tt.page, page, tt.query)
		assert.Equal(t, tt.limit, limit, tt.query)
	}
}

func TestNewPaginatedResponse(t *testing.T) {
	resp := NewPaginatedResponse([]int{1, 2}, 5, 1, 2)
	assert.Equal(t, PaginationMeta{TotalItems: 5, TotalPages: 3, CurrentPage: 1, PageSize: 2}, resp.Meta)

	empty := NewPaginatedResponse([]int{}, 0, 1, 20)
	assert.Equal(t, 0, empty.Meta.TotalPages)
}
