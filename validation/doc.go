// Package validation checks configuration and query documents before they
// are used.
//
// Struct tag validation uses go-playground/validator. Field names in error
// messages come from mapstructure tags, so they match the keys users write
// in config files:
//
//	type Step struct {
//	    Op    string `mapstructure:"op" validate:"required"`
//	    Count int    `mapstructure:"count" validate:"gte=0"`
//	}
//	err := validation.Validate(step)
//
// For rules that depend on more than one field, collect errors with a
// Validator:
//
//	v := validation.New()
//	v.OneOf("op", step.Op, knownOps)
//	v.Custom(step.Op != "take" || step.Count > 0, "count", "must be positive for take")
//	err := v.Err()
//
// Both report INVALID_ARGUMENT errors whose "fields" detail lists every
// failing field.
package validation
