package validator

import (
	"regexp"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-playground/validator/v10"
)

// txHashPattern matches a 32-byte hex transaction hash with 0x prefix.
var txHashPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{64}$`)

// New creates a new validator instance with custom validations registered.
// This ensures consistent validation across the application and tests.
//
// Custom tags:
//   - notblank: rejects whitespace-only strings
//   - ethaddr: 20-byte hex address, 0x optional, checksum not enforced
//   - txhash: 0x-prefixed 32-byte hex hash
func New() *validator.Validate {
	v := validator.New()

	_ = v.RegisterValidation("notblank", stringRule(func(s string) bool {
		return strings.TrimSpace(s) != ""
	}))
	_ = v.RegisterValidation("ethaddr", stringRule(common.IsHexAddress))
	_ = v.RegisterValidation("txhash", stringRule(txHashPattern.MatchString))

	return v
}

// stringRule adapts a string predicate. Non-string fields pass so that
// other tags can handle them.
func stringRule(ok func(string) bool) validator.Func {
	return func(fl validator.FieldLevel) bool {
		str, isString := fl.Field().Interface().(string)
		if !isString {
			return true
		}
		return ok(str)
	}
}
