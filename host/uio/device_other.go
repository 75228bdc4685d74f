// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

//go:build !linux

package uio

import "errors"

var errNotLinux = errors.New("uio: not supported on this platform")

// deviceFile is a placeholder on non-Linux platforms; UIO is a Linux-only
// kernel facility.
type deviceFile = *struct{}

func openDeviceFile(number int) (deviceFile, error) {
	return nil, errNotLinux
}

func closeDeviceFile(f deviceFile) error {
	return nil
}

func enumerateDevices() []DeviceDescription {
	return nil
}

func regionSizes(number int) ([]int, error) {
	return nil, errNotLinux
}

func mapRegion(f deviceFile, index, size int) (*Map, error) {
	return nil, errNotLinux
}

func enableInterrupt(f deviceFile) error {
	return errNotLinux
}

func waitInterrupt(f deviceFile) (uint32, error) {
	return 0, errNotLinux
}
