//go:build !linux && !darwin

package exeio

import "errors"

func cloneFile(src, dst string) error {
	return errors.ErrUnsupported
}
