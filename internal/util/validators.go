package util

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var usernamePattern = regexp.MustCompile(`^[\w.@+-]{1,150}$`)

// IsValidUsername 用户名只允许字母、数字以及 @/./+/-/_，最长150个字符
func IsValidUsername(username string) bool {
	return usernamePattern.MatchString(username)
}

// RegisterValidators 字段错误使用 JSON 字段名
func RegisterValidators(v *validator.Validate) {
	v.RegisterTagNameFunc(jsonFieldName)
}

func jsonFieldName(field reflect.StructField) string {
	name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
	switch name {
	case "-":
		return ""
	case "":
		return field.Name
	}
	return name
}
