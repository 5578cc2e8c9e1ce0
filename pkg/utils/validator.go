package utils

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"task-tracker/domain/models"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once

	locationMu sync.RWMutex
	location   = time.UTC
	clock      = time.Now
)

// SetValidationLocation กำหนด time zone ที่ใช้ตัดสินว่า "วันนี้" คือวันไหน
func SetValidationLocation(loc *time.Location) {
	if loc == nil {
		loc = time.UTC
	}
	locationMu.Lock()
	location = loc
	locationMu.Unlock()
}

// SetValidationClock ใช้ใน test เพื่อ fix เวลา
func SetValidationClock(now func() time.Time) {
	locationMu.Lock()
	clock = now
	locationMu.Unlock()
}

func today() time.Time {
	locationMu.RLock()
	defer locationMu.RUnlock()
	return models.DateOf(clock().In(location))
}

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		_ = validate.RegisterValidation("date", validateDate)
		_ = validate.RegisterValidation("notpast", validateNotPast)
		_ = validate.RegisterValidation("taskstatus", validateTaskStatus)
		_ = validate.RegisterValidation("taskpriority", validateTaskPriority)
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "" || name == "-" {
				name = strings.SplitN(fld.Tag.Get("query"), ",", 2)[0]
			}
			if name == "" || name == "-" {
				return fld.Name
			}
			return name
		})
	})
	return validate
}

func ValidateStruct(s any) error {
	return getValidator().Struct(s)
}

// GetValidationErrors แปลง error จาก validator เป็น field -> message
func GetValidationErrors(err error) map[string]string {
	out := make(map[string]string)
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		out["_"] = err.Error()
		return out
	}
	for _, fe := range validationErrors {
		out[fe.Field()] = validationMessage(fe)
	}
	return out
}

func validationMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must not exceed %s characters", field, fe.Param())
	case "date":
		return fmt.Sprintf("%s must be in YYYY-MM-DD format", field)
	case "notpast":
		return fmt.Sprintf("%s cannot be less than today's date", field)
	case "taskstatus":
		return fmt.Sprintf("%s must be one of: TODO, IN_PROGRESS, DONE", field)
	case "taskpriority":
		return fmt.Sprintf("%s must be one of: LOW, MEDIUM, HIGH", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

func validateDate(fl validator.FieldLevel) bool {
	_, err := models.ParseDate(fl.Field().String())
	return err == nil
}

// validateNotPast ผ่านเมื่อค่าไม่ใช่วันที่ (ให้ tag date รายงานแทน)
func validateNotPast(fl validator.FieldLevel) bool {
	due, err := models.ParseDate(fl.Field().String())
	if err != nil {
		return true
	}
	return !due.Before(today())
}

func validateTaskStatus(fl validator.FieldLevel) bool {
	_, ok := models.ParseTaskStatus(fl.Field().String())
	return ok
}

func validateTaskPriority(fl validator.FieldLevel) bool {
	_, ok := models.ParseTaskPriority(fl.Field().String())
	return ok
}
