package stt

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"

	"github.com/mattn/go-shellwords"
)

// Device is one audio capture device reported by the system.
type Device struct {
	Card int
	Name string
}

// SelfTestStatus classifies the outcome of the microphone self-test.
type SelfTestStatus int

const (
	SelfTestOK SelfTestStatus = iota
	// SelfTestNoDevices means the audio stack works but no capture
	// device is attached.
	SelfTestNoDevices
	// SelfTestAccessDenied means a device exists but could not be opened.
	SelfTestAccessDenied
	// SelfTestToolMissing means the recording tool is not installed.
	SelfTestToolMissing
)

// arecord -l prints one line per capture device:
//
//	card 1: Device [USB Audio Device], device 0: USB Audio [USB Audio]
var deviceLineRe = regexp.MustCompile(`^card (\d+): [^\[]*\[([^\]]+)\]`)

// ParseDeviceList extracts capture devices from `arecord -l` output.
func ParseDeviceList(output string) []Device {
	var devices []Device
	for _, line := range strings.Split(output, "\n") {
		m := deviceLineRe.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		card, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		devices = append(devices, Device{Card: card, Name: m[2]})
	}
	return devices
}

// ListDevices runs the configured device listing command and parses its
// output.
func ListDevices(ctx context.Context, command string) ([]Device, error) {
	parser := shellwords.NewParser()
	args, err := parser.Parse(command)
	if err != nil {
		return nil, fmt.Errorf("parse list devices command: %w", err)
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("list devices command empty")
	}

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("list devices failed: %w: %s", err, stderr.String())
	}
	return ParseDeviceList(stdout.String()), nil
}

// ClassifySelfTest turns a device listing outcome into a self-test status
// and a human-readable message.
func ClassifySelfTest(devices []Device, err error) (SelfTestStatus, string) {
	switch {
	case errors.Is(err, exec.ErrNotFound):
		return SelfTestToolMissing, "audio recording tool not installed"
	case err != nil && (strings.Contains(err.Error(), "Permission denied") || strings.Contains(err.Error(), "access")):
		return SelfTestAccessDenied, fmt.Sprintf("cannot access microphone: %v", err)
	case err != nil:
		return SelfTestAccessDenied, fmt.Sprintf("microphone check failed: %v", err)
	case len(devices) == 0:
		return SelfTestNoDevices, "no microphone devices found on system"
	default:
		return SelfTestOK, fmt.Sprintf("microphone ready, found %d audio input device(s)", len(devices))
	}
}
