// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

//go:build linux

package uio

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"
)

// deviceFile is the open /dev/uioN handle on Linux.
type deviceFile = *os.File

const sysfsClassUio = "/sys/class/uio"

func openDeviceFile(number int) (deviceFile, error) {
	return os.OpenFile(fmt.Sprintf("/dev/uio%d", number), os.O_RDWR|os.O_SYNC, 0)
}

func closeDeviceFile(f deviceFile) error {
	if f == nil {
		return nil
	}
	return f.Close()
}

func enumerateDevices() []DeviceDescription {
	entries, err := os.ReadDir(sysfsClassUio)
	if err != nil {
		return nil
	}
	var out []DeviceDescription
	for _, e := range entries {
		n, ok := parseUioDirName(e.Name())
		if !ok {
			continue
		}
		name, err := readSysfsLine(filepath.Join(sysfsClassUio, e.Name(), "name"))
		if err != nil {
			continue
		}
		out = append(out, DeviceDescription{number: n, name: name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].number < out[j].number })
	return out
}

func parseUioDirName(name string) (int, bool) {
	if !strings.HasPrefix(name, "uio") {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimPrefix(name, "uio"))
	if err != nil {
		return 0, false
	}
	return n, true
}

func readSysfsLine(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	s := bufio.NewScanner(f)
	if !s.Scan() {
		return "", fmt.Errorf("uio: %s: empty", path)
	}
	return strings.TrimSpace(s.Text()), nil
}

// regionSizes reads /sys/class/uio/uioN/maps/mapP/size for every mapP
// directory present, in index order.
func regionSizes(number int) ([]int, error) {
	base := filepath.Join(sysfsClassUio, fmt.Sprintf("uio%d", number), "maps")
	entries, err := os.ReadDir(base)
	if err != nil {
		return nil, fmt.Errorf("uio: read %s: %w", base, err)
	}
	type indexed struct {
		index int
		size  int
	}
	var found []indexed
	for _, e := range entries {
		if !strings.HasPrefix(e.Name(), "map") {
			continue
		}
		idx, err := strconv.Atoi(strings.TrimPrefix(e.Name(), "map"))
		if err != nil {
			continue
		}
		raw, err := readSysfsLine(filepath.Join(base, e.Name(), "size"))
		if err != nil {
			return nil, err
		}
		size, err := strconv.ParseInt(strings.TrimPrefix(raw, "0x"), 16, 64)
		if err != nil {
			return nil, fmt.Errorf("uio: parse size %q: %w", raw, err)
		}
		found = append(found, indexed{index: idx, size: int(size)})
	}
	sort.Slice(found, func(i, j int) bool { return found[i].index < found[j].index })
	sizes := make([]int, len(found))
	for i, f := range found {
		sizes[i] = f.size
	}
	return sizes, nil
}

var pageSize = os.Getpagesize()

func mapRegion(f deviceFile, index, size int) (*Map, error) {
	offset := int64(index) * int64(pageSize)
	b, err := unix.Mmap(int(f.Fd()), offset, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("uio: mmap: %w", err)
	}
	return &Map{region: b}, nil
}

func enableInterrupt(f deviceFile) error {
	var buf [4]byte
	binary.NativeEndian.PutUint32(buf[:], 1)
	n, err := unix.Write(int(f.Fd()), buf[:])
	if err != nil {
		return fmt.Errorf("uio: enable interrupt: %w", err)
	}
	if n != len(buf) {
		return fmt.Errorf("uio: enable interrupt: short write of %d bytes", n)
	}
	return nil
}

func waitInterrupt(f deviceFile) (uint32, error) {
	var buf [4]byte
	n, err := unix.Read(int(f.Fd()), buf[:])
	if err != nil {
		return 0, fmt.Errorf("uio: wait interrupt: %w", err)
	}
	if n != len(buf) {
		return 0, fmt.Errorf("uio: wait interrupt: short read of %d bytes", n)
	}
	return binary.NativeEndian.Uint32(buf[:]), nil
}
