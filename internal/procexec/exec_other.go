//go:build !unix

package procexec

import "os/exec"

// isolate keeps the default exec.CommandContext behaviour of killing only
// the direct child.
func isolate(cmd *exec.Cmd) {}
