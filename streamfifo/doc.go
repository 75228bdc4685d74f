// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package streamfifo drives a Xilinx/AMD AXI4-Stream FIFO IP core exposed to
// user space via a UIO device.
//
// The peripheral exposes a small AXI-Lite "control" region addressed with
// 32-bit registers, and an optional wide AXI4 "data" region whose data port
// must be accessed with transactions sized to exactly the FIFO's configured
// word width (32, 64 or 128 bits; 256 and 512 bits are recognized but
// refused by the transactional paths, see Width).
//
// FIFO is single-owner and not safe for concurrent use: every operation that
// touches the device takes exclusive use of the handle for its duration.
package streamfifo
