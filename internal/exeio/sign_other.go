//go:build !darwin

package exeio

func stripSignature(string) {}
