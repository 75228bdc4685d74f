// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Command fifo reads and writes packets through an AXI4-Stream FIFO
// peripheral bound to a UIO device.
package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"periph.io/x/fifo/host/uio"
	"periph.io/x/fifo/streamfifo"
)

var (
	deviceArg string
	interrupt bool
	log       = logrus.StandardLogger()
)

// errDeviceLookup marks a failure to resolve the -d argument to a UIO
// device number: this is the one failure mode the CLI contract exits 1
// for. Every other runtime failure (open, interrupt, FIFO read/write)
// is reported on stderr but exits 0, matching the original tool, which
// only eprintln's on a failed read/write and still returns success.
var errDeviceLookup = errors.New("device lookup failed")

// openFIFO resolves deviceArg against the enumerated UIO devices (falling
// back to parsing it as a decimal UIO number), opens it, arms and waits for
// one interrupt if -i was given, then binds a streamfifo.FIFO to it at
// Width64, matching this tool's historical default.
func openFIFO() (*streamfifo.FIFO, *uio.Device, error) {
	number, ok := uio.Find(deviceArg)
	if !ok {
		return nil, nil, fmt.Errorf("%w: failed to find UIO device %q", errDeviceLookup, deviceArg)
	}
	dev, err := uio.Open(number)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open UIO device: %w", err)
	}

	if interrupt {
		if err := dev.InterruptEnable(); err != nil {
			dev.Close()
			return nil, nil, fmt.Errorf("failed to enable interrupt: %w", err)
		}
		count, err := dev.InterruptWait()
		if err != nil {
			dev.Close()
			return nil, nil, fmt.Errorf("failed to wait for interrupt: %w", err)
		}
		fmt.Printf("Interrupt %d\n", count)
	}

	f, err := streamfifo.New(dev, streamfifo.Width64, log)
	if err != nil {
		dev.Close()
		return nil, nil, fmt.Errorf("failed to load FIFO: %w", err)
	}
	return f, dev, nil
}

func runRead(cmd *cobra.Command, args []string) error {
	words, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid word count %q: %w", args[0], err)
	}

	f, dev, err := openFIFO()
	if err != nil {
		return err
	}
	defer dev.Close()

	buf := make([]byte, words*f.DataWidth().ByteCount())
	n, destination, err := f.ReadBytes(buf)
	if err != nil {
		return fmt.Errorf("FIFO read failed: %w", err)
	}

	w := f.DataWidth().ByteCount()
	for off := 0; off+w <= n; off += w {
		fmt.Printf("%0*x\n", w*2, wordAt(buf[off:off+w]))
	}
	fmt.Printf("destination %02x\n", destination)
	return nil
}

func runWrite(cmd *cobra.Command, args []string) error {
	words, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid word count %q: %w", args[0], err)
	}
	start, err := parseValue(args[1])
	if err != nil {
		return fmt.Errorf("invalid value %q: %w", args[1], err)
	}

	f, dev, err := openFIFO()
	if err != nil {
		return err
	}
	defer dev.Close()

	w := f.DataWidth().ByteCount()
	bits := uint64(f.DataWidth().Bits())
	data := make([]byte, words*w)
	v := start
	for i := 0; i < words; i++ {
		putWord(data[i*w:(i+1)*w], v)
		v = (v + 1) & wrapMask(bits)
	}

	n, err := f.WriteBytes(data, 0)
	if err != nil {
		return fmt.Errorf("FIFO write failed: %w", err)
	}
	fmt.Printf("wrote %d bytes\n", n)
	return nil
}

func parseValue(s string) (uint64, error) {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return strconv.ParseUint(s[2:], 16, 64)
	}
	return strconv.ParseUint(s, 10, 64)
}

func wrapMask(bits uint64) uint64 {
	if bits >= 64 {
		return ^uint64(0)
	}
	return (uint64(1) << bits) - 1
}

func wordAt(b []byte) uint64 {
	var v uint64
	for i := len(b) - 1; i >= 0; i-- {
		v = v<<8 | uint64(b[i])
	}
	return v
}

func putWord(dst []byte, v uint64) {
	for i := range dst {
		dst[i] = byte(v)
		v >>= 8
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "fifo",
		Short:        "Read and write packets through an AXI4-Stream FIFO peripheral",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&deviceArg, "device", "d", "", "UIO device name or number")
	root.PersistentFlags().BoolVarP(&interrupt, "interrupt", "i", false, "arm and wait for one interrupt before running")
	root.MarkPersistentFlagRequired("device")

	read := &cobra.Command{
		Use:   "read <words>",
		Short: "Read from the FIFO",
		Args:  cobra.ExactArgs(1),
		RunE:  runRead,
	}
	write := &cobra.Command{
		Use:   "write <words> <value>",
		Short: "Write to the FIFO",
		Args:  cobra.ExactArgs(2),
		RunE:  runWrite,
	}
	root.AddCommand(read, write)
	return root
}

func main() {
	err := newRootCmd().Execute()
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "fifo: %s.\n", err)
	if errors.Is(err, errDeviceLookup) {
		os.Exit(1)
	}
}
