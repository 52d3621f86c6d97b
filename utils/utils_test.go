package utils_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"prompteria-api/utils"
)

func TestNormalizeTags(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
		ok   bool
	}{
		{name: "strips hash and space", in: []string{" #writing ", "tone"}, want: []string{"writing", "tone"}, ok: true},
		{name: "only first hash", in: []string{"##x"}, want: []string{"#x"}, ok: true},
		{name: "empty list", in: nil, ok: false},
		{name: "blank tag", in: []string{"a", "  "}, ok: false},
		{name: "bare hash", in: []string{"#"}, ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := utils.NormalizeTags(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsValidEmail(t *testing.T) {
	assert.True(t, utils.IsValidEmail("ann.lee+x@example.co.uk"))
	assert.False(t, utils.IsValidEmail("ann@"))
	assert.False(t, utils.IsValidEmail(""))
}

func TestQueryInt(t *testing.T) {
	gin.SetMode(gin.TestMode)

	for query, want := range map[string]int{"?page=3": 3, "?page=abc": 0, "": 0, "?page=-2": -2} {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/"+query, nil)
		assert.Equal(t, want, utils.QueryInt(c, "page"), query)
	}
}

func TestSendErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	utils.SendError(c, http.StatusNotFound, "Prompt not found")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"message":"Prompt not found"}`, w.Body.String())

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	utils.SendInternalError(c, "Failed to toggle like", errors.New("timeout"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Failed to toggle like","details":"timeout"}`, w.Body.String())
}
