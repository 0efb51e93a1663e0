package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/spec-kit/shop-service/pkg/util/errorutil"
)

func TestValidateReportsFieldsByJSONName(t *testing.T) {
	err := Validate(&RegisterRequest{Email: "not-an-email"})
	require.Error(t, err)

	de := apperrors.ToDomainError(err)
	assert.Equal(t, apperrors.CodeValidationFailed, de.Code)
	assert.Equal(t, 400, de.HTTPStatus)
	assert.Equal(t, "must be a valid email address", de.Details["email"])
	assert.Equal(t, "required", de.Details["password"])
}

func TestValidateProductRequests(t *testing.T) {
	negative := int64(-5)
	err := Validate(&CreateProductRequest{Name: "x", PriceCents: &negative, CategoryID: "nope"})
	de := apperrors.ToDomainError(err)
	require.NotNil(t, de)
	assert.Equal(t, "must be >= 0", de.Details["price_cents"])
	assert.Equal(t, "must be a uuid", de.Details["category_id"])

	err = Validate(&CreateProductRequest{Name: "x", CategoryID: "8c4e2a0e-93c4-4a57-9f7e-0a5a4b1f6d21"})
	de = apperrors.ToDomainError(err)
	require.NotNil(t, de)
	assert.Equal(t, "required", de.Details["price_cents"])

	empty := ""
	assert.Error(t, Validate(&UpdateProductRequest{Name: &empty}))
	assert.NoError(t, Validate(&UpdateProductRequest{}))
}

func TestValidateAcceptsGoodPayload(t *testing.T) {
	assert.NoError(t, Validate(&RegisterRequest{Email: "a@x.com", Password: "Secret123"}))
	assert.NoError(t, Validate(&RefreshRequest{Refresh: "token"}))
}

func TestListQueryOffset(t *testing.T) {
	assert.Equal(t, 0, ListQuery{Page: 1, PageSize: 20}.Offset())
	assert.Equal(t, 40, ListQuery{Page: 3, PageSize: 20}.Offset())
}

func TestListQueryBounds(t *testing.T) {
	assert.NoError(t, Validate(ListQuery{Page: 10000, PageSize: 100}))

	de := apperrors.ToDomainError(Validate(ListQuery{Page: 10001, PageSize: 20}))
	require.NotNil(t, de)
	assert.Equal(t, apperrors.CodeValidationFailed, de.Code)
	assert.Equal(t, "must be <= 10000", de.Details["page"])

	assert.Error(t, Validate(ListQuery{Page: 0, PageSize: 20}))
}
