package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials/stscreds"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/k0kubun/pp/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
	"gopkg.in/yaml.v2"

	"github.com/ikorchynskyi/elastic-stack-provisioner/internal/types"
	"github.com/ikorchynskyi/elastic-stack-provisioner/internal/validator"
)

const (
	envPrefix = "ESP"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "elastic-stack-provisioner",
	Short: "EC2 elastic scaling stack provisioner",
	Long: `A CLI application to provision an EC2 elastic scaling stack.

It creates a launch template, an Auto Scaling group launched from it and a
CPU target tracking scaling policy, in that order, and stops at the first failure.
	`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	// Interrupting between steps leaves already created resources in place
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if code := execute(ctx); code != 0 {
		stop()
		os.Exit(code)
	}
}

// execute runs the command line and returns the process exit status.
func execute(ctx context.Context) int {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		return 1
	}
	return 0
}

func init() {
	// DisableDefaultCmd prevents Cobra from creating a default 'completion' command
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	// SilenceUsage is an option to silence usage when an error occurs.
	rootCmd.SilenceUsage = true

	// Persistent flags which will be global for the application.
	rootCmd.PersistentFlags().Bool("debug", false, "Turn on debug logging")
	rootCmd.PersistentFlags().String("stack", "", "Path to a stack spec")

	// Flags may also be set as ESP_DEBUG and ESP_STACK
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("stack", rootCmd.PersistentFlags().Lookup("stack"))

	pp.PrintMapTypes = false
	pp.Default.SetExportedOnly(true)
	pp.Default.SetColoringEnabled(term.IsTerminal(int(os.Stdout.Fd())))
}

// loadStack reads, defaults and validates a stack spec.
func loadStack(stackFile string) (types.Stack, error) {
	var stack types.Stack
	if stackFile == "" {
		return stack, fmt.Errorf("a stack spec is required, set --stack or %s_STACK", envPrefix)
	}

	stackYaml, err := os.ReadFile(stackFile)
	if err != nil {
		return stack, err
	}

	if err = yaml.UnmarshalStrict(stackYaml, &stack); err != nil {
		return stack, fmt.Errorf("error parsing stack spec %v: %w", stackFile, err)
	}

	stack.SetDefaults()

	if err = validator.ValidateStack(&stack); err != nil {
		return stack, err
	}

	return stack, nil
}

func initStack() (types.Stack, error) {
	stack, err := loadStack(viper.GetString("stack"))
	if err != nil {
		return stack, err
	}

	pp.Printf("Elastic stack: %v\n", stack)
	return stack, nil
}

func initAWS(ctx context.Context, stack types.Stack) (aws.Config, error) {
	// Using the SDK's default configuration, loading additional config
	// and credentials values from the environment variables, shared
	// credentials, and shared configuration files
	var clientLogMode aws.ClientLogMode
	if viper.GetBool("debug") {
		clientLogMode = aws.LogRequestWithBody | aws.LogResponseWithBody
	}

	optFns := []func(*config.LoadOptions) error{
		config.WithClientLogMode(clientLogMode),
	}
	if stack.Region != nil {
		optFns = append(optFns, config.WithRegion(*stack.Region))
	}

	cfg, err := config.LoadDefaultConfig(ctx, optFns...)
	if err != nil {
		return cfg, err
	}

	if stack.RoleARN != nil {
		provider := stscreds.NewAssumeRoleProvider(sts.NewFromConfig(cfg), *stack.RoleARN, func(o *stscreds.AssumeRoleOptions) {
			o.RoleSessionName = "elastic-stack-provisioner-" + *stack.Name
		})
		cfg.Credentials = aws.NewCredentialsCache(provider)
	}

	return cfg, nil
}
