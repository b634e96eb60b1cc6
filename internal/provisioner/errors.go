package provisioner

import (
	"errors"
	"fmt"

	"github.com/aws/smithy-go"
)

// Provider error codes of interest
const (
	ErrCodeLaunchTemplateAlreadyExists string = "InvalidLaunchTemplateName.AlreadyExistsException"
	ErrCodeAutoScalingAlreadyExists    string = "AlreadyExists"
)

// Condition is the outcome class of a remote call.
type Condition string

const (
	ConditionNone          Condition = ""
	ConditionAlreadyExists Condition = "AlreadyExists"
	ConditionFatal         Condition = "Fatal"
)

// ErrorCode returns the provider-reported error code, if any.
func ErrorCode(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode()
	}
	return ""
}

// Classify maps a launch template creation error to a Condition.
// Only the launch template name collision is benign; group and policy
// errors are always fatal and are never passed through here.
func Classify(err error) Condition {
	if err == nil {
		return ConditionNone
	}
	if ErrorCode(err) == ErrCodeLaunchTemplateAlreadyExists {
		return ConditionAlreadyExists
	}
	return ConditionFatal
}

// StepError reports the step a run failed at.
type StepError struct {
	Step      Step
	Condition Condition
	Code      string
	Err       error
}

func (e *StepError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s failed (%s): %v", e.Step, e.Code, e.Err)
	}
	return fmt.Sprintf("%s failed: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

func newStepError(step Step, err error) *StepError {
	return &StepError{
		Step:      step,
		Condition: ConditionFatal,
		Code:      ErrorCode(err),
		Err:       err,
	}
}
