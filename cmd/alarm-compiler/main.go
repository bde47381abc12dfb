// Command alarm-compiler compiles alerts configuration into CloudFormation resources.
package main

import "github.com/oshokin/alarm-compiler/cmd/alarm-compiler/cmd"

func main() {
	cmd.Execute()
}
