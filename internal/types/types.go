package types

const (
	// Version selector used by the group to reference its launch template
	LaunchTemplateVersionLatest string = "$Latest"

	DefaultScalingPolicyName string  = "cpu-scale-out"
	DefaultTargetValue       float64 = 50
	DefaultCooldown          int32   = 300
)

// Launch template tag applied to launched instances
type Tag struct {
	// Tag key. Required
	Key string `yaml:"key" validate:"required"`

	// Tag value.
	Value string `yaml:"value"`
}

// Auto Scaling Group tag
type GroupTag struct {
	// Tag key. Required
	Key string `yaml:"key" validate:"required"`

	// Tag value.
	Value string `yaml:"value"`

	// Whether the tag is copied to instances launched by the group.
	PropagateAtLaunch bool `yaml:"propagate-at-launch"`
}

// Launch Template configuration
type LaunchTemplate struct {
	// The name of the launch template. Required
	Name string `yaml:"name" validate:"required"`

	// The AMI ID. Required
	ImageID string `yaml:"image-id" validate:"required"`

	// The instance type. Required
	InstanceType string `yaml:"instance-type" validate:"required"`

	// The name of the key pair. Required
	KeyName string `yaml:"key-name" validate:"required"`

	// Security group IDs. Required
	SecurityGroupIDs []string `yaml:"security-group-ids" validate:"required,gt=0,dive,required"`

	// Plain-text user data, encoded on submission.
	UserData string `yaml:"user-data"`

	// Tags applied to launched instances.
	Tags []Tag `yaml:"tags" validate:"dive"`
}

// Auto Scaling Group configuration
type AutoScalingGroup struct {
	// The name of the group. Required
	Name string `yaml:"name" validate:"required"`

	MinSize         int32 `yaml:"min-size" validate:"gte=0"`
	MaxSize         int32 `yaml:"max-size" validate:"gt=0"`
	DesiredCapacity int32 `yaml:"desired-capacity" validate:"gte=0"`

	// Target group ARNs to register instances with.
	TargetGroupARNs []string `yaml:"target-group-arns" validate:"dive,required"`

	// Subnet IDs defining placement. Required
	SubnetIDs []string `yaml:"subnet-ids" validate:"required,gt=0,dive,required"`

	// Group tags.
	Tags []GroupTag `yaml:"tags" validate:"dive"`
}

// Target tracking scaling policy configuration
type ScalingPolicy struct {
	// The name of the policy. Required
	Name string `yaml:"name" validate:"required"`

	// Target average CPU utilization, in percent.
	TargetValue float64 `yaml:"target-value" validate:"gt=0,lte=100"`

	// Cooldown, in seconds. Unset defaults to DefaultCooldown, zero is kept.
	Cooldown *int32 `yaml:"cooldown" validate:"required,gte=0"`
}

// Elastic Stack configuration
type Stack struct {
	// The name of the stack. Required
	Name *string `yaml:"name" validate:"required,gt=0"`

	// The name of the Region.
	Region *string `yaml:"region" validate:"omitempty,gt=0"`

	// IAM Role ARN to be assumed.
	RoleARN *string `yaml:"role-arn" validate:"omitempty,gt=0"`

	LaunchTemplate   LaunchTemplate   `yaml:"launch-template"`
	AutoScalingGroup AutoScalingGroup `yaml:"auto-scaling-group"`
	ScalingPolicy    ScalingPolicy    `yaml:"scaling-policy"`
}

// SetDefaults fills unset scaling policy fields.
func (s *Stack) SetDefaults() {
	if s.ScalingPolicy.Name == "" {
		s.ScalingPolicy.Name = DefaultScalingPolicyName
	}
	if s.ScalingPolicy.TargetValue == 0 {
		s.ScalingPolicy.TargetValue = DefaultTargetValue
	}
	if s.ScalingPolicy.Cooldown == nil {
		cooldown := DefaultCooldown
		s.ScalingPolicy.Cooldown = &cooldown
	}
}
