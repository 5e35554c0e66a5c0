package dto

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{ErrCodeNotFound, http.StatusNotFound},
		{ErrCodeAlreadyExists, http.StatusConflict},
		{ErrCodeSyncInProgress, http.StatusConflict},
		{ErrCodeRateLimited, http.StatusTooManyRequests},
		{ErrCodeSupplierUnavailable, http.StatusBadGateway},
		{"ERR_NOBODY_KNOWS", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, GetHTTPStatus(tt.code), tt.code)
	}
}

func TestNormalizeErrorCode(t *testing.T) {
	assert.Equal(t, ErrCodeNotFound, NormalizeErrorCode("NOT_FOUND"))
	assert.Equal(t, ErrCodeSyncInProgress, NormalizeErrorCode("SYNC_IN_PROGRESS"))
	assert.Equal(t, "MISSING_TITLE", NormalizeErrorCode("MISSING_TITLE"), "unmapped codes pass through")
}

func TestIsDomainCode(t *testing.T) {
	assert.True(t, IsDomainCode(NormalizeErrorCode("NOT_FOUND")))
	assert.False(t, IsDomainCode("MISSING_TITLE"))
}

func TestListRequestNormalize(t *testing.T) {
	req := ListRequest{Page: 0, PageSize: 0}
	req.Normalize()
	assert.Equal(t, 1, req.Page)
	assert.Equal(t, 20, req.PageSize)

	req = ListRequest{Page: 3, PageSize: 500}
	req.Normalize()
	assert.Equal(t, 3, req.Page)
	assert.Equal(t, 20, req.PageSize)
}

func TestSuccessResponseWithMeta(t *testing.T) {
	resp := NewSuccessResponseWithMeta([]int{1, 2}, 45, 2, 20)
	assert.True(t, resp.Success)
	assert.Equal(t, int64(45), resp.Meta.Total)
	assert.Equal(t, 3, resp.Meta.TotalPages)
}
