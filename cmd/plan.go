package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ikorchynskyi/elastic-stack-provisioner/internal/provisioner"
	"github.com/ikorchynskyi/elastic-stack-provisioner/internal/types"
)

// planCmd represents the plan command
var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Show the requests provisioning would issue",
	RunE: func(cmd *cobra.Command, args []string) error {
		stack, err := loadStack(viper.GetString("stack"))
		if err != nil {
			return err
		}
		renderPlan(cmd.OutOrStdout(), stack)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(planCmd)
}

// renderPlan writes one row per request, in the order they are issued.
func renderPlan(w io.Writer, stack types.Stack) {
	template := provisioner.LaunchTemplateInput(stack.LaunchTemplate, "")
	group := provisioner.AutoScalingGroupInput(stack.AutoScalingGroup, stack.LaunchTemplate.Name)
	policy := provisioner.ScalingPolicyInput(stack.AutoScalingGroup.Name, stack.ScalingPolicy)

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Step", "Resource", "Name", "Settings"})
	table.SetAutoWrapText(false)
	table.SetAutoMergeCells(false)

	table.Append([]string{
		"1",
		"Launch template",
		aws.ToString(template.LaunchTemplateName),
		strings.Join([]string{
			"image=" + aws.ToString(template.LaunchTemplateData.ImageId),
			"type=" + string(template.LaunchTemplateData.InstanceType),
			"key=" + aws.ToString(template.LaunchTemplateData.KeyName),
			"security-groups=" + strings.Join(template.LaunchTemplateData.SecurityGroupIds, ","),
		}, " "),
	})
	table.Append([]string{
		"2",
		"Auto Scaling group",
		aws.ToString(group.AutoScalingGroupName),
		strings.Join([]string{
			fmt.Sprintf("template=%s@%s", aws.ToString(group.LaunchTemplate.LaunchTemplateName), aws.ToString(group.LaunchTemplate.Version)),
			fmt.Sprintf("min=%d", aws.ToInt32(group.MinSize)),
			fmt.Sprintf("desired=%d", aws.ToInt32(group.DesiredCapacity)),
			fmt.Sprintf("max=%d", aws.ToInt32(group.MaxSize)),
			"subnets=" + aws.ToString(group.VPCZoneIdentifier),
			fmt.Sprintf("target-groups=%d", len(group.TargetGroupARNs)),
		}, " "),
	})
	table.Append([]string{
		"3",
		"Scaling policy",
		aws.ToString(policy.PolicyName),
		strings.Join([]string{
			"metric=" + string(policy.TargetTrackingConfiguration.PredefinedMetricSpecification.PredefinedMetricType),
			fmt.Sprintf("target=%v%%", aws.ToFloat64(policy.TargetTrackingConfiguration.TargetValue)),
			fmt.Sprintf("cooldown=%ds", aws.ToInt32(policy.EstimatedInstanceWarmup)),
		}, " "),
	})

	table.Render()
}
