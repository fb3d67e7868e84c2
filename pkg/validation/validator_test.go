package validation

import (
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type checkoutPayload struct {
	PaymentMethod string `json:"paymentMethod" binding:"required,payment"`
	Password      string `json:"password" binding:"omitempty,pwd"`
}

func engine(t *testing.T) *validator.Validate {
	t.Helper()
	Init()
	v, ok := binding.Validator.Engine().(*validator.Validate)
	require.True(t, ok)
	return v
}

func TestPaymentAlias(t *testing.T) {
	v := engine(t)

	for _, method := range []string{"credit_card", "debit_card", "paypal", "bank_transfer"} {
		assert.NoError(t, v.Struct(checkoutPayload{PaymentMethod: method}), method)
	}

	err := v.Struct(checkoutPayload{PaymentMethod: "cash"})
	require.Error(t, err)
	details := ToDetails(err)
	assert.Equal(t, "must be a known payment method", details["paymentMethod"])
}

func TestPwdAlias(t *testing.T) {
	v := engine(t)

	assert.NoError(t, v.Struct(checkoutPayload{PaymentMethod: "paypal", Password: "longenough"}))

	err := v.Struct(checkoutPayload{PaymentMethod: "paypal", Password: "short"})
	require.Error(t, err)
	details := ToDetails(err)
	assert.Equal(t, "min length 8", details["password"])
}

func TestToDetails_UsesJSONFieldNames(t *testing.T) {
	v := engine(t)

	err := v.Struct(checkoutPayload{})
	require.Error(t, err)
	details := ToDetails(err)
	assert.Contains(t, details, "paymentMethod")
	assert.Equal(t, "is required", details["paymentMethod"])
}

func TestToDetails_NilError(t *testing.T) {
	assert.Nil(t, ToDetails(nil))
}
