// Copyright 2024-2025 TrackSpace Technologies
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package utils

import (
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/trackspace/workflow-scheme-service/exception"
)

var validate *validator.Validate

func getValidator() *validator.Validate {
	if validate == nil {
		validate = validator.New()
	}
	return validate
}

// ValidateObject runs struct tag validation and reports missing required fields
// by their json names.
func ValidateObject(object interface{}) error {
	err := getValidator().Struct(object)
	if err == nil {
		return nil
	}
	missingParams := make([]string, 0)
	for _, fieldErr := range err.(validator.ValidationErrors) {
		if fieldErr.Tag() == "required" {
			missingParams = append(missingParams, jsonFieldName(object, fieldErr.StructField()))
		}
	}
	if len(missingParams) == 0 {
		return nil
	}
	return &exception.CustomError{
		Status:  http.StatusBadRequest,
		Code:    exception.RequiredParamsMissing,
		Message: exception.RequiredParamsMissingMsg,
		Params:  map[string]interface{}{"params": strings.Join(missingParams, ", ")},
	}
}

func jsonFieldName(object interface{}, structField string) string {
	objectType := reflect.TypeOf(object)
	if objectType.Kind() == reflect.Pointer {
		objectType = objectType.Elem()
	}
	field, found := objectType.FieldByName(structField)
	if !found {
		return structField
	}
	jsonTag := field.Tag.Get("json")
	switch jsonTag {
	case "-", "":
		return field.Name
	default:
		name := strings.Split(jsonTag, ",")[0]
		if name == "" {
			return field.Name
		}
		return name
	}
}
