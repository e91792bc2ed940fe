package response

import (
	"testing"

	"github.com/go-playground/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusOKWithData(t *testing.T) {
	resp := StatusOKWithData(map[string]string{"token": "abc"})
	assert.Equal(t, StatusOK, resp.Status)
	assert.Empty(t, resp.Error)
	assert.NotNil(t, resp.Data)
}

func TestError(t *testing.T) {
	resp := Error("something broke")
	assert.Equal(t, StatusError, resp.Status)
	assert.Equal(t, "something broke", resp.Error)
}

func TestValidationError(t *testing.T) {
	type request struct {
		Email    string `validate:"required,email"`
		Password string `validate:"required,min=8"`
	}

	validate := validator.New()

	cases := []struct {
		name string
		req  request
		want string
	}{
		{
			name: "missing required fields",
			req:  request{},
			want: "field Email is a required field, field Password is a required field",
		},
		{
			name: "invalid email",
			req:  request{Email: "not-an-email", Password: "longenough"},
			want: "field Email must be a valid email address",
		},
		{
			name: "too short password",
			req:  request{Email: "user@example.com", Password: "short"},
			want: "field Password is too short",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := validate.Struct(tc.req)
			require.Error(t, err)

			validateErr, ok := err.(validator.ValidationErrors)
			require.True(t, ok)

			resp := ValidationError(validateErr)
			assert.Equal(t, StatusError, resp.Status)
			assert.Equal(t, tc.want, resp.Error)
		})
	}
}
