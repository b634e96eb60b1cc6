package provisioner

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Condition
	}{
		{name: "nil", err: nil, want: ConditionNone},
		{name: "template exists", err: apiError(ErrCodeLaunchTemplateAlreadyExists), want: ConditionAlreadyExists},
		{name: "wrapped template exists", err: fmt.Errorf("create: %w", apiError(ErrCodeLaunchTemplateAlreadyExists)), want: ConditionAlreadyExists},
		{name: "group exists", err: apiError(ErrCodeAutoScalingAlreadyExists), want: ConditionFatal},
		{name: "permission", err: apiError("UnauthorizedOperation"), want: ConditionFatal},
		{name: "throttling", err: apiError("Throttling"), want: ConditionFatal},
		{name: "message only", err: errors.New(ErrCodeLaunchTemplateAlreadyExists), want: ConditionFatal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}

func TestStepError(t *testing.T) {
	cause := apiError("AccessDenied")
	err := newStepError(StepAutoScalingGroup, cause)

	assert.Equal(t, "EnsureAutoScalingGroup failed (AccessDenied): "+cause.Error(), err.Error())
	assert.Same(t, cause, errors.Unwrap(err))

	plain := newStepError(StepScalingPolicy, errors.New("boom"))
	assert.Equal(t, "EnsureScalingPolicy failed: boom", plain.Error())
	assert.Empty(t, plain.Code)
}
