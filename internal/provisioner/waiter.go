package provisioner

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/autoscaling"
	asgtypes "github.com/aws/aws-sdk-go-v2/service/autoscaling/types"
	"github.com/jmespath/go-jmespath"
)

const (
	DefaultWaitDuration time.Duration = 10 * time.Minute
)

// groupInServiceRetryable replaces the service-modeled GroupInService check
// with one satisfied once at least minInService instances are InService.
func groupInServiceRetryable(minInService int32) func(context.Context, *autoscaling.DescribeAutoScalingGroupsInput, *autoscaling.DescribeAutoScalingGroupsOutput, error) (bool, error) {
	return func(ctx context.Context, input *autoscaling.DescribeAutoScalingGroupsInput, output *autoscaling.DescribeAutoScalingGroupsOutput, err error) (bool, error) {
		if err != nil {
			return false, err
		}

		pathValue, err := jmespath.Search("AutoScalingGroups[].Instances[].LifecycleState", output)
		if err != nil {
			return false, fmt.Errorf("error evaluating waiter state: %w", err)
		}

		// no instances yet
		if pathValue == nil {
			return minInService > 0, nil
		}

		listOfValues, ok := pathValue.([]interface{})
		if !ok {
			return false, fmt.Errorf("waiter comparator expected list got %T", pathValue)
		}

		var inService int32
		for _, v := range listOfValues {
			value, ok := v.(asgtypes.LifecycleState)
			if !ok {
				return false, fmt.Errorf("waiter comparator expected types.LifecycleState value, got %T", v)
			}

			if value == asgtypes.LifecycleStateInService {
				inService++
			}
		}

		return inService < minInService, nil
	}
}

// WaitForGroupInService blocks until the group created by this run reports
// at least its desired capacity of InService instances.
func (p *Provisioner) WaitForGroupInService(ctx context.Context, client autoscaling.DescribeAutoScalingGroupsAPIClient, maxWaitDur time.Duration, optFns ...func(*autoscaling.GroupInServiceWaiterOptions)) error {
	group := p.stack.AutoScalingGroup

	optFns = append([]func(*autoscaling.GroupInServiceWaiterOptions){
		func(o *autoscaling.GroupInServiceWaiterOptions) {
			o.Retryable = groupInServiceRetryable(group.DesiredCapacity)
		},
	}, optFns...)

	waiter := autoscaling.NewGroupInServiceWaiter(client, optFns...)
	output, err := waiter.WaitForOutput(ctx, &autoscaling.DescribeAutoScalingGroupsInput{
		AutoScalingGroupNames: []string{group.Name},
	}, maxWaitDur)
	if err != nil {
		return fmt.Errorf("waiting for auto scaling group %v: %w", group.Name, err)
	}

	for _, g := range output.AutoScalingGroups {
		instanceIds := make([]string, 0, len(g.Instances))
		for _, i := range g.Instances {
			instanceIds = append(instanceIds, aws.ToString(i.InstanceId))
		}
		p.printer.Printf("Auto Scaling group %v: instances in service %v\n", aws.ToString(g.AutoScalingGroupName), instanceIds)
	}
	return nil
}
