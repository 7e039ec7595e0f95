package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/albazaar/storefront/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupValidator(t *testing.T) {
	// Safe to call more than once
	SetupValidator()
	SetupValidator()

	v, ok := binding.Validator.Engine().(*validator.Validate)
	assert.True(t, ok)
	assert.NotNil(t, v)
}

func newValidationRouter() *gin.Engine {
	type addItemInput struct {
		ProductID string `json:"product_id" binding:"required,notblank"`
		Quantity  int    `json:"quantity" binding:"required,min=1"`
	}

	SetupValidator()
	router := gin.New()
	router.Use(BodyLimit(256))
	router.POST("/test", func(c *gin.Context) {
		var req addItemInput
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	})
	return router
}

func postJSON(router *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", "/test", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.ContentLength = -1
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestFormatValidationErrors(t *testing.T) {
	router := newValidationRouter()

	t.Run("returns field details with json names", func(t *testing.T) {
		w := postJSON(router, `{"product_id": "   ", "quantity": 0}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

		assert.False(t, resp.Success)
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
		assert.Equal(t, "Request validation failed", resp.Error.Message)
		require.Len(t, resp.Error.Details, 2)
		assert.Equal(t, "product_id", resp.Error.Details[0].Field)
		assert.Equal(t, "Must not be blank", resp.Error.Details[0].Message)
		assert.Equal(t, "quantity", resp.Error.Details[1].Field)
	})

	t.Run("reports wrong json types", func(t *testing.T) {
		w := postJSON(router, `{"product_id": "p1", "quantity": "two"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Len(t, resp.Error.Details, 1)
		assert.Equal(t, "quantity", resp.Error.Details[0].Field)
	})

	t.Run("reports malformed json", func(t *testing.T) {
		w := postJSON(router, `{"product_id":`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Malformed JSON body")
	})

	t.Run("answers 413 for oversized streamed bodies", func(t *testing.T) {
		w := postJSON(router, `{"product_id": "`+strings.Repeat("x", 512)+`", "quantity": 1}`)
		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
		assert.Contains(t, w.Body.String(), dto.ErrCodeRequestTooLarge)
	})

	t.Run("returns success for valid input", func(t *testing.T) {
		w := postJSON(router, `{"product_id": "p1", "quantity": 2}`)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestGetValidationMessage(t *testing.T) {
	type checkoutForm struct {
		Name     string `validate:"required"`
		Landmark string `validate:"max=3"`
		OTP      string `validate:"len=6,numeric"`
		Tier     string `validate:"oneof=normal island"`
		Quantity int    `validate:"min=1"`
		Hour     int    `validate:"gte=0,lt=6"`
		Email    string `validate:"email"`
	}

	err := validator.New().Struct(checkoutForm{
		Landmark: "next to the mosque",
		OTP:      "12345",
		Tier:     "air",
		Hour:     7,
		Email:    "nope",
	})
	require.Error(t, err)

	expected := map[string]string{
		"Name":     "This field is required",
		"Landmark": "Must be at most 3 characters",
		"OTP":      "Must be exactly 6 characters",
		"Tier":     "Must be one of: normal island",
		"Quantity": "Must be at least 1",
		"Hour":     "Must be less than 6",
		"Email":    "Invalid value",
	}

	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	require.Len(t, verrs, len(expected))
	for _, e := range verrs {
		want, ok := expected[e.Field()]
		require.True(t, ok, "unexpected field %s", e.Field())
		assert.Equal(t, want, getValidationMessage(e))
	}
}
