package main

import "github.com/ikorchynskyi/elastic-stack-provisioner/cmd"

func main() {
	cmd.Execute()
}
