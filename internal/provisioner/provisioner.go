package provisioner

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/autoscaling"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/google/uuid"
	"github.com/k0kubun/pp/v3"

	"github.com/ikorchynskyi/elastic-stack-provisioner/internal/types"
	"github.com/ikorchynskyi/elastic-stack-provisioner/internal/validator"
)

// LaunchTemplateAPI is the compute service surface used by the Provisioner.
// *ec2.Client satisfies it.
type LaunchTemplateAPI interface {
	CreateLaunchTemplate(ctx context.Context, params *ec2.CreateLaunchTemplateInput, optFns ...func(*ec2.Options)) (*ec2.CreateLaunchTemplateOutput, error)
}

// AutoScalingAPI is the scaling service surface used by the Provisioner.
// *autoscaling.Client satisfies it.
type AutoScalingAPI interface {
	CreateAutoScalingGroup(ctx context.Context, params *autoscaling.CreateAutoScalingGroupInput, optFns ...func(*autoscaling.Options)) (*autoscaling.CreateAutoScalingGroupOutput, error)
	PutScalingPolicy(ctx context.Context, params *autoscaling.PutScalingPolicyInput, optFns ...func(*autoscaling.Options)) (*autoscaling.PutScalingPolicyOutput, error)
}

// Step names one of the three provisioning operations.
type Step string

const (
	StepLaunchTemplate   Step = "EnsureLaunchTemplate"
	StepAutoScalingGroup Step = "EnsureAutoScalingGroup"
	StepScalingPolicy    Step = "EnsureScalingPolicy"
)

// Phase is a state of a provisioning run.
type Phase string

const (
	PhaseStart         Phase = "Start"
	PhaseTemplateReady Phase = "TemplateReady"
	PhaseGroupReady    Phase = "GroupReady"
	PhasePolicyReady   Phase = "PolicyReady"
	PhaseDone          Phase = "Done"
	PhaseFailed        Phase = "Failed"
)

// TemplateOutcome tells whether the launch template was created by this run.
type TemplateOutcome string

const (
	TemplateCreated  TemplateOutcome = "Created"
	TemplateExisting TemplateOutcome = "Existing"
)

// Report summarizes a provisioning run.
type Report struct {
	RunID string

	// Phase advances Start, TemplateReady, GroupReady, PolicyReady, Done,
	// or moves to Failed from wherever the run stopped.
	Phase Phase

	// Step that failed, empty unless Phase is PhaseFailed.
	FailedStep Step

	Template TemplateOutcome
}

// Provisioner creates the launch template, the Auto Scaling group and its
// scaling policy of a single stack, in that order.
type Provisioner struct {
	stack       types.Stack
	ec2         LaunchTemplateAPI
	autoscaling AutoScalingAPI
	printer     *pp.PrettyPrinter
	runID       string
}

// Option configures a Provisioner.
type Option func(*Provisioner)

// WithPrinter sets the printer progress is reported to.
func WithPrinter(printer *pp.PrettyPrinter) Option {
	return func(p *Provisioner) {
		p.printer = printer
	}
}

// WithRunID overrides the generated run ID.
func WithRunID(runID string) Option {
	return func(p *Provisioner) {
		p.runID = runID
	}
}

// New validates the stack and returns a Provisioner holding its own copy of it.
func New(stack types.Stack, ec2Client LaunchTemplateAPI, autoscalingClient AutoScalingAPI, optFns ...Option) (*Provisioner, error) {
	if ec2Client == nil || autoscalingClient == nil {
		return nil, fmt.Errorf("both EC2 and Auto Scaling clients are required")
	}

	stack = cloneStack(stack)
	if err := validator.ValidateStack(&stack); err != nil {
		return nil, fmt.Errorf("invalid stack: %w", err)
	}

	p := &Provisioner{
		stack:       stack,
		ec2:         ec2Client,
		autoscaling: autoscalingClient,
		printer:     pp.Default,
		runID:       uuid.NewString(),
	}
	for _, fn := range optFns {
		fn(p)
	}
	return p, nil
}

func (p *Provisioner) RunID() string {
	return p.runID
}

// Stack returns a copy of the stack being provisioned.
func (p *Provisioner) Stack() types.Stack {
	return cloneStack(p.stack)
}

// EnsureLaunchTemplate creates the launch template. A name collision is
// tolerated without inspecting or altering the existing template; any
// other error is returned unchanged.
func (p *Provisioner) EnsureLaunchTemplate(ctx context.Context) (TemplateOutcome, error) {
	template := p.stack.LaunchTemplate

	output, err := p.ec2.CreateLaunchTemplate(ctx, LaunchTemplateInput(template, p.runID))
	switch Classify(err) {
	case ConditionNone:
	case ConditionAlreadyExists:
		p.printer.Printf("Launch template %v: already exists\n", template.Name)
		return TemplateExisting, nil
	default:
		return "", err
	}

	if output != nil && output.LaunchTemplate != nil {
		p.printer.Printf("Launch template %v: created %v\n", template.Name, aws.ToString(output.LaunchTemplate.LaunchTemplateId))
	} else {
		p.printer.Printf("Launch template %v: created\n", template.Name)
	}
	return TemplateCreated, nil
}

// EnsureAutoScalingGroup creates the Auto Scaling group from the latest
// version of the stack's launch template. A name collision is fatal.
func (p *Provisioner) EnsureAutoScalingGroup(ctx context.Context) error {
	group := p.stack.AutoScalingGroup
	if err := validator.ValidateAutoScalingGroup(&group); err != nil {
		return fmt.Errorf("invalid auto scaling group %v: %w", group.Name, err)
	}

	if _, err := p.autoscaling.CreateAutoScalingGroup(ctx, AutoScalingGroupInput(group, p.stack.LaunchTemplate.Name)); err != nil {
		return err
	}

	p.printer.Printf(
		"Auto Scaling group %v: created (min %v, desired %v, max %v)\n",
		group.Name, group.MinSize, group.DesiredCapacity, group.MaxSize,
	)
	return nil
}

// EnsureScalingPolicy puts the CPU target tracking policy on the group.
// Whether an existing policy of the same name is updated is up to the API.
func (p *Provisioner) EnsureScalingPolicy(ctx context.Context) error {
	policy := p.stack.ScalingPolicy

	output, err := p.autoscaling.PutScalingPolicy(ctx, ScalingPolicyInput(p.stack.AutoScalingGroup.Name, policy))
	if err != nil {
		return err
	}

	if output != nil && output.PolicyARN != nil {
		p.printer.Printf("Scaling policy %v: applied %v\n", policy.Name, aws.ToString(output.PolicyARN))
	}
	p.printer.Printf(
		"Scaling policy %v: target CPU utilization %v%%, cooldown %vs\n",
		policy.Name, policy.TargetValue, aws.ToInt32(policy.Cooldown),
	)
	return nil
}

// Run executes all steps in order and stops at the first failure. Nothing
// created before a failure is rolled back.
func (p *Provisioner) Run(ctx context.Context) (Report, error) {
	report := Report{
		RunID: p.runID,
		Phase: PhaseStart,
	}
	fail := func(step Step, err error) (Report, error) {
		p.printer.Printf("Stack %v: %v failed after %v\n", *p.stack.Name, step, report.Phase)
		report.Phase = PhaseFailed
		report.FailedStep = step
		return report, newStepError(step, err)
	}

	p.printer.Printf("Stack %v: provisioning run %v\n", *p.stack.Name, p.runID)

	outcome, err := p.EnsureLaunchTemplate(ctx)
	if err != nil {
		return fail(StepLaunchTemplate, err)
	}
	report.Template = outcome
	report.Phase = PhaseTemplateReady

	if err := p.EnsureAutoScalingGroup(ctx); err != nil {
		return fail(StepAutoScalingGroup, err)
	}
	report.Phase = PhaseGroupReady

	if err := p.EnsureScalingPolicy(ctx); err != nil {
		return fail(StepScalingPolicy, err)
	}
	report.Phase = PhasePolicyReady

	report.Phase = PhaseDone
	p.printer.Printf("Stack %v: provisioning has been completed\n", *p.stack.Name)
	return report, nil
}

func cloneStack(stack types.Stack) types.Stack {
	clone := stack
	clone.Name = clonePtr(stack.Name)
	clone.Region = clonePtr(stack.Region)
	clone.RoleARN = clonePtr(stack.RoleARN)
	clone.LaunchTemplate.SecurityGroupIDs = append([]string(nil), stack.LaunchTemplate.SecurityGroupIDs...)
	clone.LaunchTemplate.Tags = append([]types.Tag(nil), stack.LaunchTemplate.Tags...)
	clone.AutoScalingGroup.TargetGroupARNs = append([]string(nil), stack.AutoScalingGroup.TargetGroupARNs...)
	clone.AutoScalingGroup.SubnetIDs = append([]string(nil), stack.AutoScalingGroup.SubnetIDs...)
	clone.AutoScalingGroup.Tags = append([]types.GroupTag(nil), stack.AutoScalingGroup.Tags...)
	if stack.ScalingPolicy.Cooldown != nil {
		clone.ScalingPolicy.Cooldown = aws.Int32(*stack.ScalingPolicy.Cooldown)
	}
	return clone
}

func clonePtr(s *string) *string {
	if s == nil {
		return nil
	}
	return aws.String(*s)
}
