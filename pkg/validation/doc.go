// Package validation checks request bodies against embedded JSON Schemas.
//
// Every body-carrying route names a schema (for example "server.create" or
// "user.update"). Create schemas reference their update counterpart and add
// the required fields, so both stay in sync. Validation failures come back
// as *Error values listing one FieldError per offending field, with
// messages in the dashboard's locale.
//
//	reg := validation.MustNew()
//	if err := reg.Validate("server.create", doc); err != nil {
//	    // err is *validation.Error
//	}
package validation
