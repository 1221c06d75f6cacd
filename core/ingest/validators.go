package ingest

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/researchops/grantboard/core"
	"github.com/researchops/grantboard/core/grant"
)

var (
	// custom validation tags & texts
	sponsorTypeTag  = "sponsortype"
	sponsorTypeText = "is not a valid sponsor type"

	statusTag  = "grantstatus"
	statusText = "is not a valid grant status"

	gteTag  = "gte"
	gteText = "must be a non-negative number"
)

// InitValidators registers the grant-domain validators and their texts.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(sponsorTypeTag, sponsorTypeValidation)
	core.RegisterCustomTranslation(validate, translator, sponsorTypeTag, sponsorTypeText)

	_ = validate.RegisterValidation(statusTag, statusValidation)
	core.RegisterCustomTranslation(validate, translator, statusTag, statusText)

	core.RegisterCustomTranslation(validate, translator, gteTag, gteText, true)
}

func sponsorTypeValidation(fl validator.FieldLevel) bool {
	return grant.ValidSponsorType(fl.Field().String())
}

func statusValidation(fl validator.FieldLevel) bool {
	return grant.ValidStatus(fl.Field().String())
}
