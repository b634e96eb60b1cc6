package validator

import (
	"github.com/go-playground/validator/v10"

	"github.com/ikorchynskyi/elastic-stack-provisioner/internal/types"
)

func newValidate() *validator.Validate {
	validate := validator.New()
	validate.RegisterStructValidation(CapacityStructLevelValidation, types.AutoScalingGroup{})
	return validate
}

// CapacityStructLevelValidation enforces min <= desired <= max.
func CapacityStructLevelValidation(sl validator.StructLevel) {
	group := sl.Current().Interface().(types.AutoScalingGroup)

	if group.DesiredCapacity < group.MinSize {
		sl.ReportError(group.DesiredCapacity, "DesiredCapacity", "", "gtefield", "MinSize")
	}

	if group.DesiredCapacity > group.MaxSize {
		sl.ReportError(group.DesiredCapacity, "DesiredCapacity", "", "ltefield", "MaxSize")
	}

	if group.MinSize > group.MaxSize {
		sl.ReportError(group.MinSize, "MinSize", "", "ltefield", "MaxSize")
	}
}

func ValidateStack(stack *types.Stack) error {
	return newValidate().Struct(stack)
}

func ValidateAutoScalingGroup(group *types.AutoScalingGroup) error {
	return newValidate().Struct(group)
}
