// Package hclutil holds small helpers over hashicorp/hcl shared by the script
// loader and the process compiler.
package hclutil
