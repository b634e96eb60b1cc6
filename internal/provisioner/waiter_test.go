package provisioner

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/autoscaling"
	asgtypes "github.com/aws/aws-sdk-go-v2/service/autoscaling/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDescribeGroups struct {
	responses []*autoscaling.DescribeAutoScalingGroupsOutput
	err       error
	inputs    []*autoscaling.DescribeAutoScalingGroupsInput
}

func (f *fakeDescribeGroups) DescribeAutoScalingGroups(ctx context.Context, params *autoscaling.DescribeAutoScalingGroupsInput, optFns ...func(*autoscaling.Options)) (*autoscaling.DescribeAutoScalingGroupsOutput, error) {
	f.inputs = append(f.inputs, params)
	if f.err != nil {
		return nil, f.err
	}
	i := len(f.inputs) - 1
	if i >= len(f.responses) {
		i = len(f.responses) - 1
	}
	return f.responses[i], nil
}

func groupOutput(states ...asgtypes.LifecycleState) *autoscaling.DescribeAutoScalingGroupsOutput {
	instances := make([]asgtypes.Instance, 0, len(states))
	for i, s := range states {
		instances = append(instances, asgtypes.Instance{
			InstanceId:     aws.String("i-" + string(rune('a'+i))),
			LifecycleState: s,
		})
	}
	return &autoscaling.DescribeAutoScalingGroupsOutput{
		AutoScalingGroups: []asgtypes.AutoScalingGroup{
			{
				AutoScalingGroupName: aws.String("asg-A"),
				Instances:            instances,
			},
		},
	}
}

func fastWaiter(o *autoscaling.GroupInServiceWaiterOptions) {
	o.MinDelay = time.Millisecond
	o.MaxDelay = 5 * time.Millisecond
}

func TestGroupInServiceRetryable(t *testing.T) {
	retryable := groupInServiceRetryable(2)
	ctx := context.Background()

	retry, err := retryable(ctx, nil, groupOutput(asgtypes.LifecycleStatePending, asgtypes.LifecycleStateInService), nil)
	require.NoError(t, err)
	assert.True(t, retry)

	retry, err = retryable(ctx, nil, groupOutput(asgtypes.LifecycleStateInService, asgtypes.LifecycleStateInService), nil)
	require.NoError(t, err)
	assert.False(t, retry)

	retry, err = retryable(ctx, nil, &autoscaling.DescribeAutoScalingGroupsOutput{}, nil)
	require.NoError(t, err)
	assert.True(t, retry)

	cause := errors.New("throttled")
	_, err = retryable(ctx, nil, nil, cause)
	assert.ErrorIs(t, err, cause)
}

func TestWaitForGroupInService(t *testing.T) {
	f := newFixture(t, testStack())
	client := &fakeDescribeGroups{
		responses: []*autoscaling.DescribeAutoScalingGroupsOutput{
			groupOutput(asgtypes.LifecycleStatePending, asgtypes.LifecycleStatePending),
			groupOutput(asgtypes.LifecycleStateInService, asgtypes.LifecycleStatePending),
			groupOutput(asgtypes.LifecycleStateInService, asgtypes.LifecycleStateInService),
		},
	}

	err := f.provisioner.WaitForGroupInService(context.Background(), client, time.Second, fastWaiter)
	require.NoError(t, err)

	assert.Len(t, client.inputs, 3)
	assert.Equal(t, []string{"asg-A"}, client.inputs[0].AutoScalingGroupNames)
	assert.Contains(t, f.out.String(), "instances in service")
}

func TestWaitForGroupInService_Timeout(t *testing.T) {
	f := newFixture(t, testStack())
	client := &fakeDescribeGroups{
		responses: []*autoscaling.DescribeAutoScalingGroupsOutput{
			groupOutput(asgtypes.LifecycleStatePending),
		},
	}

	err := f.provisioner.WaitForGroupInService(context.Background(), client, 30*time.Millisecond, fastWaiter)
	assert.Error(t, err)
}

func TestWaitForGroupInService_DescribeError(t *testing.T) {
	f := newFixture(t, testStack())
	cause := apiError("AccessDenied")
	client := &fakeDescribeGroups{err: cause}

	err := f.provisioner.WaitForGroupInService(context.Background(), client, time.Second, fastWaiter)
	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	assert.Len(t, client.inputs, 1)
}

func TestWaitForGroupInService_InvalidOptions(t *testing.T) {
	f := newFixture(t, testStack())
	client := &fakeDescribeGroups{
		responses: []*autoscaling.DescribeAutoScalingGroupsOutput{groupOutput()},
	}

	err := f.provisioner.WaitForGroupInService(context.Background(), client, 0, fastWaiter)
	assert.Error(t, err)

	err = f.provisioner.WaitForGroupInService(context.Background(), client, time.Second, func(o *autoscaling.GroupInServiceWaiterOptions) {
		o.MinDelay = time.Minute
		o.MaxDelay = time.Second
	})
	assert.Error(t, err)
	assert.Empty(t, client.inputs)
}
