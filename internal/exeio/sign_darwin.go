//go:build darwin

package exeio

import "os/exec"

// stripSignature drops the code signature the scratch copy inherited;
// appending the payload invalidated it anyway. Best effort, since an
// unsigned binary still runs.
func stripSignature(path string) {
	_ = exec.Command("codesign", "--remove-signature", path).Run()
}
