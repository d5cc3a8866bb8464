//go:build !unix && !windows

package core

func isEXDEV(error) bool { return false }
