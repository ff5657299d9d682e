package availability

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/clinicflow/availability-api/internal/model"
)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		// "role" accepts only the role values the slot engine knows.
		v.RegisterValidation("role", func(fl validator.FieldLevel) bool {
			switch model.Role(fl.Field().String()) {
			case model.RolePatient, model.RoleStaff, model.RoleDoctor, model.RoleAdmin, model.RoleSuperAdmin:
				return true
			}
			return false
		})
	}
}
