package cmd

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/autoscaling"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/k0kubun/pp/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ikorchynskyi/elastic-stack-provisioner/internal/provisioner"
	"github.com/ikorchynskyi/elastic-stack-provisioner/internal/types"
)

// autoScalingClient is the Auto Scaling surface used by provision, including
// the readiness wait.
type autoScalingClient interface {
	provisioner.AutoScalingAPI
	autoscaling.DescribeAutoScalingGroupsAPIClient
}

// newClients builds the service clients for a stack.
var newClients = func(ctx context.Context, stack types.Stack) (provisioner.LaunchTemplateAPI, autoScalingClient, error) {
	cfg, err := initAWS(ctx, stack)
	if err != nil {
		return nil, nil, err
	}

	return ec2.NewFromConfig(cfg), autoscaling.NewFromConfig(cfg), nil
}

// provisionCmd represents the provision command
var provisionCmd = &cobra.Command{
	Use:   "provision",
	Short: "Provision elastic stack",
	RunE: func(cmd *cobra.Command, args []string) error {
		stack, err := initStack()
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		ec2Client, autoscalingClient, err := newClients(ctx, stack)
		if err != nil {
			return err
		}

		p, err := provisioner.New(stack, ec2Client, autoscalingClient)
		if err != nil {
			return err
		}

		report, err := p.Run(ctx)
		pp.Printf("Provisioning report: %v\n", report)
		if err != nil {
			return err
		}

		if !viper.GetBool("wait") {
			return nil
		}

		return p.WaitForGroupInService(ctx, autoscalingClient, viper.GetDuration("wait-timeout"), func(o *autoscaling.GroupInServiceWaiterOptions) {
			o.LogWaitAttempts = true
			o.MaxDelay = time.Minute
		})
	},
}

func init() {
	provisionCmd.Flags().Bool("wait", false, "Wait for the group to reach its desired capacity of InService instances")
	provisionCmd.Flags().Duration("wait-timeout", provisioner.DefaultWaitDuration, "Maximum time to wait for the group")
	_ = viper.BindPFlag("wait", provisionCmd.Flags().Lookup("wait"))
	_ = viper.BindPFlag("wait-timeout", provisionCmd.Flags().Lookup("wait-timeout"))

	rootCmd.AddCommand(provisionCmd)
}
