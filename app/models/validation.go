package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"reflect"
	"strings"

	"blogapi/app/apierror"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

const (
	titleRules   = "required,max=200"
	contentRules = "required"
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ParseBody decodes a raw request body that must hold a JSON object.
func ParseBody(raw []byte) (map[string]any, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, apierror.Validation(apierror.MsgInvalidBody)
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, apierror.Validation(apierror.MsgInvalidBody).WithCause(err)
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, apierror.Validation(apierror.MsgInvalidInput)
	}
	return obj, nil
}

// ParseCreatePost validates a create-post body.
func ParseCreatePost(raw []byte) (CreatePostInput, error) {
	obj, err := ParseBody(raw)
	if err != nil {
		return CreatePostInput{}, err
	}
	input := CreatePostInput{
		Title:    trimmedString(obj["title"]),
		Content:  trimmedString(obj["content"]),
		ImageKey: optionalString(obj["imageKey"]),
	}
	if err := check(input); err != nil {
		return CreatePostInput{}, err
	}
	return input, nil
}

// ParseUpdatePost validates an update-post body. Absent fields stay nil in
// the patch; a body of {} is a valid, empty patch.
func ParseUpdatePost(raw []byte) (PostPatch, error) {
	obj, err := ParseBody(raw)
	if err != nil {
		return PostPatch{}, err
	}
	var patch PostPatch
	if v, ok := obj["title"]; ok {
		s := trimmedString(v)
		patch.Title = &s
	}
	if v, ok := obj["content"]; ok {
		s := trimmedString(v)
		patch.Content = &s
	}
	if v, ok := obj["imageKey"]; ok {
		patch.ImageKey = optionalString(v)
	}
	// "required" on a non-nil pointer passes whatever it points to, so the
	// present values are checked one by one with the create rules.
	if patch.Title != nil {
		if err := checkField("title", *patch.Title, titleRules); err != nil {
			return PostPatch{}, err
		}
	}
	if patch.Content != nil {
		if err := checkField("content", *patch.Content, contentRules); err != nil {
			return PostPatch{}, err
		}
	}
	return patch, nil
}

// ParseCreateComment validates a create-comment body.
func ParseCreateComment(raw []byte) (CreateCommentInput, error) {
	obj, err := ParseBody(raw)
	if err != nil {
		return CreateCommentInput{}, err
	}
	input := CreateCommentInput{Content: trimmedString(obj["content"])}
	if err := check(input); err != nil {
		return CreateCommentInput{}, err
	}
	return input, nil
}

// trimmedString returns the trimmed value of v, or "" when v is not a string,
// so that a wrongly typed field fails its "required" rule.
func trimmedString(v any) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(s)
}

// optionalString passes string values through untouched and drops anything else.
func optionalString(v any) *string {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	return &s
}

// check runs the struct rules and reports the first failing field.
func check(input any) error {
	err := validate.Struct(input)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return apierror.Internal(err)
	}
	return apierror.Validation(fieldMessage(fieldErrs[0].Field(), fieldErrs[0].Tag())).WithCause(err)
}

// checkField runs tag against a single value reported as field.
func checkField(field, value, tag string) error {
	err := validate.Var(value, tag)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return apierror.Internal(err)
	}
	return apierror.Validation(fieldMessage(field, fieldErrs[0].Tag())).WithCause(err)
}

func fieldMessage(field, tag string) string {
	switch field {
	case "title":
		if tag == "max" {
			return apierror.MsgTitleTooLong
		}
		return apierror.MsgTitleRequired
	case "content":
		return apierror.MsgContentMissing
	default:
		return apierror.MsgInvalidInput
	}
}
