package provisioner

import (
	"encoding/base64"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/autoscaling"
	asgtypes "github.com/aws/aws-sdk-go-v2/service/autoscaling/types"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"github.com/ikorchynskyi/elastic-stack-provisioner/internal/types"
)

const (
	PolicyTypeTargetTracking string = "TargetTrackingScaling"
	resourceTypeGroup        string = "auto-scaling-group"
)

// LaunchTemplateInput builds the CreateLaunchTemplate request for a template spec.
func LaunchTemplateInput(template types.LaunchTemplate, clientToken string) *ec2.CreateLaunchTemplateInput {
	data := &ec2types.RequestLaunchTemplateData{
		ImageId:          aws.String(template.ImageID),
		InstanceType:     ec2types.InstanceType(template.InstanceType),
		KeyName:          aws.String(template.KeyName),
		SecurityGroupIds: append([]string(nil), template.SecurityGroupIDs...),
	}

	if template.UserData != "" {
		data.UserData = aws.String(base64.StdEncoding.EncodeToString([]byte(template.UserData)))
	}

	if len(template.Tags) > 0 {
		tags := make([]ec2types.Tag, 0, len(template.Tags))
		for _, t := range template.Tags {
			tags = append(tags, ec2types.Tag{
				Key:   aws.String(t.Key),
				Value: aws.String(t.Value),
			})
		}
		data.TagSpecifications = []ec2types.LaunchTemplateTagSpecificationRequest{
			{
				ResourceType: ec2types.ResourceTypeInstance,
				Tags:         tags,
			},
		}
	}

	input := &ec2.CreateLaunchTemplateInput{
		LaunchTemplateName: aws.String(template.Name),
		LaunchTemplateData: data,
	}
	if clientToken != "" {
		input.ClientToken = aws.String(clientToken)
	}
	return input
}

// AutoScalingGroupInput builds the CreateAutoScalingGroup request. The group
// always tracks the latest version of the named launch template.
func AutoScalingGroupInput(group types.AutoScalingGroup, templateName string) *autoscaling.CreateAutoScalingGroupInput {
	input := &autoscaling.CreateAutoScalingGroupInput{
		AutoScalingGroupName: aws.String(group.Name),
		LaunchTemplate: &asgtypes.LaunchTemplateSpecification{
			LaunchTemplateName: aws.String(templateName),
			Version:            aws.String(types.LaunchTemplateVersionLatest),
		},
		MinSize:           aws.Int32(group.MinSize),
		MaxSize:           aws.Int32(group.MaxSize),
		DesiredCapacity:   aws.Int32(group.DesiredCapacity),
		VPCZoneIdentifier: aws.String(strings.Join(group.SubnetIDs, ",")),
	}

	if len(group.TargetGroupARNs) > 0 {
		input.TargetGroupARNs = append([]string(nil), group.TargetGroupARNs...)
	}

	for _, t := range group.Tags {
		input.Tags = append(input.Tags, asgtypes.Tag{
			Key:               aws.String(t.Key),
			Value:             aws.String(t.Value),
			PropagateAtLaunch: aws.Bool(t.PropagateAtLaunch),
			ResourceId:        aws.String(group.Name),
			ResourceType:      aws.String(resourceTypeGroup),
		})
	}

	return input
}

// ScalingPolicyInput builds the PutScalingPolicy request for a CPU target
// tracking policy. The cooldown is submitted unchanged as the estimated
// instance warmup, which is what target tracking policies honour.
func ScalingPolicyInput(groupName string, policy types.ScalingPolicy) *autoscaling.PutScalingPolicyInput {
	return &autoscaling.PutScalingPolicyInput{
		AutoScalingGroupName: aws.String(groupName),
		PolicyName:           aws.String(policy.Name),
		PolicyType:           aws.String(PolicyTypeTargetTracking),
		TargetTrackingConfiguration: &asgtypes.TargetTrackingConfiguration{
			PredefinedMetricSpecification: &asgtypes.PredefinedMetricSpecification{
				PredefinedMetricType: asgtypes.MetricTypeASGAverageCPUUtilization,
			},
			TargetValue: aws.Float64(policy.TargetValue),
		},
		EstimatedInstanceWarmup: aws.Int32(aws.ToInt32(policy.Cooldown)),
	}
}
