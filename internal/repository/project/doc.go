// Package project loads a serverless-style service manifest.
//
// The FileRepository reads the manifest from disk and returns a Project,
// which serves the compiler as its Host: functions are listed in manifest
// order and named the way the deployment tool names them.
package project
