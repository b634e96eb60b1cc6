package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const stackSpec = `name: web
region: us-east-1
launch-template:
  name: tmpl-A
  image-id: ami-0abcdef1234567890
  instance-type: t3.micro
  key-name: my-keypair
  security-group-ids: [sg-xxxxxxxx]
  tags:
    - key: Name
      value: AutoScalingInstance
auto-scaling-group:
  name: asg-A
  min-size: 2
  max-size: 5
  desired-capacity: 2
  target-group-arns:
    - arn:aws:elasticloadbalancing:us-east-1:123456789012:targetgroup/my-target-group/abcd1234efgh5678
  subnet-ids: [subnet-xxxxxxx, subnet-yyyyyyy]
  tags:
    - key: Name
      value: AutoScalingGroupInstance
      propagate-at-launch: true
`

func writeStack(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "stack.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadStack(t *testing.T) {
	stack, err := loadStack(writeStack(t, stackSpec))
	require.NoError(t, err)

	assert.Equal(t, "web", *stack.Name)
	assert.Equal(t, "us-east-1", *stack.Region)
	assert.Nil(t, stack.RoleARN)
	assert.Equal(t, "tmpl-A", stack.LaunchTemplate.Name)
	assert.Equal(t, []string{"sg-xxxxxxxx"}, stack.LaunchTemplate.SecurityGroupIDs)
	assert.Equal(t, int32(2), stack.AutoScalingGroup.MinSize)
	assert.Equal(t, int32(5), stack.AutoScalingGroup.MaxSize)
	assert.Equal(t, int32(2), stack.AutoScalingGroup.DesiredCapacity)
	assert.True(t, stack.AutoScalingGroup.Tags[0].PropagateAtLaunch)

	// defaults
	assert.Equal(t, "cpu-scale-out", stack.ScalingPolicy.Name)
	assert.Equal(t, 50.0, stack.ScalingPolicy.TargetValue)
	assert.Equal(t, int32(300), *stack.ScalingPolicy.Cooldown)
}

func TestLoadStack_Errors(t *testing.T) {
	_, err := loadStack("")
	assert.ErrorContains(t, err, "ESP_STACK")

	_, err = loadStack(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = loadStack(writeStack(t, stackSpec+"unknown-key: 1\n"))
	assert.Error(t, err)

	_, err = loadStack(writeStack(t, "name: web\n"))
	assert.Error(t, err)
}

func TestLoadStack_RejectsCapacity(t *testing.T) {
	spec := bytes.Replace([]byte(stackSpec), []byte("desired-capacity: 2"), []byte("desired-capacity: 7"), 1)

	_, err := loadStack(writeStack(t, string(spec)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DesiredCapacity")
}

func TestRenderPlan(t *testing.T) {
	stack, err := loadStack(writeStack(t, stackSpec))
	require.NoError(t, err)

	var out bytes.Buffer
	renderPlan(&out, stack)

	plan := out.String()
	assert.Contains(t, plan, "tmpl-A")
	assert.Contains(t, plan, "template=tmpl-A@$Latest")
	assert.Contains(t, plan, "min=2 desired=2 max=5")
	assert.Contains(t, plan, "subnets=subnet-xxxxxxx,subnet-yyyyyyy")
	assert.Contains(t, plan, "metric=ASGAverageCPUUtilization")
	assert.Contains(t, plan, "target=50%")
	assert.Contains(t, plan, "cooldown=300s")
}
