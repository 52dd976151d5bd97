//go:build !windows

package launcher

import "os/exec"

// Children share the parent's terminal; there is no window to suppress.
func hideWindow(*exec.Cmd) {}
