// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package uio provides user-space access to devices bound to the Linux UIO
// (userspace I/O) subsystem: device enumeration by the name the kernel
// driver registered, memory-mapped register regions, and the interrupt
// enable/wait pair exposed through /dev/uioN.
//
// It plays the same role for this module that host/sysfs plays for periph:
// a thin, direct wrapper over the kernel ABI, with no protocol knowledge of
// its own. streamfifo.FIFO consumes it through the Device/Map interfaces it
// defines, not through this package's concrete types, so it can be faked in
// tests (see streamfifo/streamfifotest).
package uio
