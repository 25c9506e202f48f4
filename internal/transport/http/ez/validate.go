package ez

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"ai-image-studio/internal/domain"
)

var tagNameOnce sync.Once

// useWireNames 让校验错误里的字段名取 json/form 标签
func useWireNames() {
	tagNameOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			for _, tag := range []string{"json", "form"} {
				name, _, _ := strings.Cut(f.Tag.Get(tag), ",")
				if name == "-" {
					return ""
				}
				if name != "" {
					return name
				}
			}
			return f.Name
		})
	})
}

func init() { useWireNames() }

// BindError 把绑定/校验错误转成第一条失败规则对应的 ValidationError
func BindError(err error) error {
	var ves validator.ValidationErrors
	if errors.As(err, &ves) && len(ves) > 0 {
		fe := ves[0]
		return &domain.ValidationError{Field: fe.Field(), Msg: ruleMessage(fe)}
	}
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		return domain.Invalid("body", "Request body too large")
	}
	var ute *json.UnmarshalTypeError
	if errors.As(err, &ute) {
		return domain.Invalid(ute.Field, "%q must be a %s", ute.Field, ute.Type.Kind())
	}
	return domain.Invalid("body", "Invalid request body")
}

func ruleMessage(fe validator.FieldError) string {
	f := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%q is required", f)
	case "email":
		return fmt.Sprintf("%q must be a valid email", f)
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%q length must be at least %s characters long", f, fe.Param())
		}
		return fmt.Sprintf("%q must be greater than or equal to %s", f, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%q length must be less than or equal to %s characters long", f, fe.Param())
		}
		return fmt.Sprintf("%q must be less than or equal to %s", f, fe.Param())
	case "oneof":
		return fmt.Sprintf("%q must be one of [%s]", f, strings.Join(strings.Fields(fe.Param()), ", "))
	}
	return fmt.Sprintf("%q is invalid", f)
}
