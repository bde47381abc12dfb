// Package cfn holds the CloudFormation resource records produced by the compiler.
//
// Property structs carry the exact key names and casing the provisioning engine
// expects; they are marshaled with encoding/json and never renamed.
package cfn
